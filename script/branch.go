package script

import (
	"context"
	"fmt"
	"go/ast"
	goparser "go/parser"
	"io"
	"reflect"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/cottand/adt/adt"
	"github.com/cottand/adt/adterr"
	"github.com/cottand/adt/match"
	"github.com/hashicorp/go-set/v3"
	"github.com/pkg/errors"
	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
)

// packages branches can use without importing them
const branchImports = `import (
	"fmt"
	"math"
	"strconv"
	"strings"
)`

// names of the packages in branchImports, which values cannot take
var importedPackages = set.From([]string{"fmt", "math", "strconv", "strings"})

var (
	anyType       = reflect.TypeFor[any]()
	errorType     = reflect.TypeFor[error]()
	undefinedName = regexp.MustCompile(`undefined: (\w+)`)
	resultCount   = regexp.MustCompile(`returns (\d+) values`)
)

// branchCompiler turns branch sources into Go functions, one per alternative,
// all living in the same interpreter
type branchCompiler struct {
	interp *interp.Interpreter
	n      int
}

func newBranchCompiler(ctx context.Context, stdout io.Writer) (*branchCompiler, error) {
	i := interp.New(interp.Options{Stdout: stdout, Stderr: stdout})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, errors.Wrap(err, "loading Go interpreter")
	}
	if _, err := i.EvalWithContext(ctx, branchImports); err != nil {
		return nil, errors.Wrap(err, "loading Go interpreter")
	}
	return &branchCompiler{interp: i}, nil
}

// compiledBranch is a branch function taking the binders of its pattern,
// followed by every value visible to it
type compiledBranch struct {
	fn      reflect.Value
	params  []reflect.Type
	context []any
}

// compile compiles src into a function of the binders of pattern, typed after
// fields when they are known, and of the visible values not shadowed by a binder.
// src is either a single expression, which is returned, or a function body.
func (bc *branchCompiler) compile(
	ctx context.Context,
	pattern *match.Pattern,
	fields []adt.Type,
	visible []namedValue,
	src string,
) (*compiledBranch, error) {
	binders := pattern.Binders()
	b := &compiledBranch{}
	params := make([]string, 0, len(binders)+len(visible))
	for i, binder := range binders {
		t := anyType
		if fields != nil {
			t = paramType(fields[i])
		}
		params = append(params, binder+" "+typeExpr(t))
		b.params = append(b.params, t)
	}
	shadowed := set.From(binders)
	for _, v := range visible {
		if shadowed.Contains(v.name) {
			continue
		}
		t := anyType
		if v.value != nil && expressible(reflect.TypeOf(v.value)) {
			t = reflect.TypeOf(v.value)
		}
		params = append(params, v.name+" "+typeExpr(t))
		b.params = append(b.params, t)
		b.context = append(b.context, v.value)
	}
	signature := strings.Join(params, ", ")

	var err error
	if expr, parseErr := goparser.ParseExpr(src); parseErr == nil && !bc.multiValued(ctx, pattern, signature, expr, src) {
		b.fn, err = bc.define(ctx, pattern, signature, "return "+src)
		if err == nil {
			return b, nil
		}
		if nameErr := asNameResolution(pattern, err); nameErr != nil {
			return nil, nameErr
		}
	}
	fn, stmtErr := bc.define(ctx, pattern, signature, src+"\nreturn nil")
	if stmtErr != nil {
		if nameErr := asNameResolution(pattern, stmtErr); nameErr != nil {
			return nil, nameErr
		}
		if err == nil {
			err = stmtErr
		}
		return nil, errors.Wrapf(err, "compile branch of %s", pattern)
	}
	b.fn = fn
	return b, nil
}

// multiValued reports whether expr is a call returning several values, which
// the interpreter would otherwise accept in a single-value return
func (bc *branchCompiler) multiValued(ctx context.Context, pattern *match.Pattern, signature string, expr ast.Expr, src string) bool {
	if _, ok := expr.(*ast.CallExpr); !ok {
		return false
	}
	_, err := bc.define(ctx, pattern, signature, "_, _ = "+src+"\nreturn nil")
	if err == nil {
		return true
	}
	m := resultCount.FindStringSubmatch(err.Error())
	if m == nil {
		return false
	}
	n, _ := strconv.Atoi(m[1])
	return n > 1
}

func (bc *branchCompiler) define(ctx context.Context, pattern *match.Pattern, signature, body string) (reflect.Value, error) {
	bc.n++
	name := fmt.Sprintf("branch%d", bc.n)
	src := fmt.Sprintf("func %s(%s) interface{} {\n%s\n}", name, signature, body)
	if _, err := bc.interp.EvalWithContext(ctx, src); err != nil {
		logger.Debug("rejected branch", "pattern", pattern.String(), "source", src, "err", err)
		return reflect.Value{}, err
	}
	fn, err := bc.interp.EvalWithContext(ctx, name)
	if err != nil {
		return reflect.Value{}, err
	}
	logger.Debug("compiled branch", "pattern", pattern.String(), "source", src)
	return fn, nil
}

func asNameResolution(pattern *match.Pattern, err error) error {
	m := undefinedName.FindStringSubmatch(err.Error())
	if m == nil {
		return nil
	}
	return adterr.New(adterr.NameResolution{Name: m[1], Pattern: pattern.String()})
}

func (b *compiledBranch) call(fields []any) (result any, err error) {
	values := slices.Concat(fields, b.context)
	if len(values) != len(b.params) {
		return nil, errors.Errorf("branch takes %d values, got %d", len(b.params), len(values))
	}
	args := make([]reflect.Value, len(values))
	for i, v := range values {
		if v == nil {
			args[i] = reflect.Zero(b.params[i])
			continue
		}
		rv := reflect.ValueOf(v)
		if !rv.Type().AssignableTo(b.params[i]) {
			return nil, errors.Errorf("branch parameter %d has type %s, got %s", i, b.params[i], rv.Type())
		}
		args[i] = rv
	}
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("branch panicked: %v", r)
		}
	}()
	out := b.fn.Call(args)
	return out[0].Interface(), nil
}

// paramType is the Go type a branch receives a field of type t as
func paramType(t adt.Type) reflect.Type {
	if t.Instantiation() != nil || !expressible(t.ReflectType()) {
		return anyType
	}
	return t.ReflectType()
}

// expressible reports whether t can be spelled out in a branch
// without importing anything
func expressible(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Slice, reflect.Array, reflect.Pointer:
		return expressible(t.Elem())
	case reflect.Map:
		return expressible(t.Key()) && expressible(t.Elem())
	case reflect.Interface:
		return t == anyType || t == errorType
	}
	return t.PkgPath() == "" && t.Name() != ""
}

func typeExpr(t reflect.Type) string {
	if t == anyType {
		return "interface{}"
	}
	return t.String()
}
