package match

import (
	"fmt"
	"reflect"

	"github.com/cottand/adt/adt"
	"github.com/cottand/adt/adterr"
)

// Func is a branch built at runtime: it receives the values of
// every binder of its pattern, in Pattern.Binders order
type Func func(fields []any) (any, error)

// Alternative is a Pattern together with its deferred branch.
// The branch only runs if the alternative is selected, and then only once per match.
type Alternative struct {
	pattern *Pattern
	branch  branch
	index   int
}

func (a *Alternative) Pattern() *Pattern { return a.pattern }
func (a *Alternative) String() string    { return a.pattern.ctor }

// bind extracts the fields of scrutinee named by the pattern, in Pattern.Binders order
func (a *Alternative) bind(scrutinee *adt.Value) []any {
	var fields []any
	for i, b := range a.pattern.binders {
		if b != Discard {
			fields = append(fields, scrutinee.Arg(i))
		}
	}
	for _, kw := range a.pattern.kwargs {
		if kw.binder != Discard {
			v, _ := scrutinee.Kwarg(kw.key)
			fields = append(fields, v)
		}
	}
	return fields
}

type branch interface {
	// check reports why the branch cannot receive fields of the given types, if it cannot
	check(fieldTypes []adt.Type) string
	call(fields []any) (any, error)
}

var (
	_ branch = constBranch{}
	_ branch = dynamicBranch{}
	_ branch = (*funcBranch)(nil)
)

var errorType = reflect.TypeFor[error]()

func newBranch(p *Pattern, b any) (branch, error) {
	fn := reflect.ValueOf(b)
	if fn.Kind() != reflect.Func {
		return constBranch{value: b}, nil
	}
	if fn.IsNil() {
		return nil, adterr.New(adterr.Declaration{
			Subject: p.String(),
			Message: fmt.Sprintf("branch is a nil %s", fn.Type()),
		})
	}
	switch b := b.(type) {
	case Func:
		return dynamicBranch{fn: b}, nil
	case func([]any) (any, error):
		return dynamicBranch{fn: b}, nil
	}
	fnType := fn.Type()
	binders := p.Binders()
	if fnType.IsVariadic() || fnType.NumIn() != len(binders) {
		return nil, adterr.New(adterr.NameResolution{
			Pattern: p.String(),
			Detail:  fmt.Sprintf("branch takes %d parameters but the pattern binds %d names %v", fnType.NumIn(), len(binders), binders),
		})
	}
	switch fnType.NumOut() {
	case 0, 1:
	case 2:
		if fnType.Out(1) != errorType {
			return nil, adterr.New(adterr.Declaration{
				Subject: p.String(),
				Message: fmt.Sprintf("the second result of a branch must be an error, got %s", fnType.Out(1)),
			})
		}
	default:
		return nil, adterr.New(adterr.Declaration{
			Subject: p.String(),
			Message: fmt.Sprintf("branches return at most a value and an error, got %d results", fnType.NumOut()),
		})
	}
	return &funcBranch{fn: fn, pattern: p.String()}, nil
}

// constBranch is a branch which is already a value
type constBranch struct {
	value any
}

func (constBranch) check([]adt.Type) string { return "" }

func (b constBranch) call([]any) (any, error) { return b.value, nil }

type dynamicBranch struct {
	fn Func
}

func (dynamicBranch) check([]adt.Type) string { return "" }

func (b dynamicBranch) call(fields []any) (any, error) { return b.fn(fields) }

// funcBranch is a Go func whose parameters are the binders of its pattern
type funcBranch struct {
	fn      reflect.Value
	pattern string
}

func (b *funcBranch) check(fieldTypes []adt.Type) string {
	fnType := b.fn.Type()
	for i, t := range fieldTypes {
		if param := fnType.In(i); !t.AssignableTo(param) {
			return fmt.Sprintf("branch parameter %d has type %s, which cannot hold a field of type %s", i, param, t)
		}
	}
	return ""
}

func (b *funcBranch) call(fields []any) (any, error) {
	fnType := b.fn.Type()
	in := make([]reflect.Value, len(fields))
	for i, field := range fields {
		param := fnType.In(i)
		if field == nil {
			in[i] = reflect.Zero(param)
			continue
		}
		in[i] = reflect.ValueOf(field)
		if !in[i].Type().AssignableTo(param) {
			return nil, adterr.New(adterr.TypeMismatch{
				Constructor: b.pattern,
				Position:    i,
				Expected:    param.String(),
				Actual:      adt.TypeNameOf(field),
				Value:       field,
			})
		}
	}
	out := b.fn.Call(in)
	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		if fnType.Out(0) == errorType {
			return nil, asError(out[0])
		}
		return out[0].Interface(), nil
	default:
		return out[0].Interface(), asError(out[1])
	}
}

func asError(v reflect.Value) error {
	if v.IsNil() {
		return nil
	}
	return v.Interface().(error)
}
