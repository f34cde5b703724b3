package match

import (
	"fmt"
	"go/token"
	"slices"
	"strings"

	"github.com/cottand/adt/adt"
	"github.com/cottand/adt/adterr"
)

// Discard may be used as a binder for fields the branch does not need
const Discard = "_"

// Pattern is the left-hand side of an alternative: a constructor name
// plus the names its fields are bound to
type Pattern struct {
	ctor    string
	binders []string
	kwargs  []kwBinder
	errs    *adterr.Errors
}

// kwBinder binds the keyword field key to binder
type kwBinder struct {
	key, binder string
}

// Ctor is a pattern matching values built by the constructor name,
// binding its positional fields to binders
func Ctor(name string, binders ...string) *Pattern {
	p := &Pattern{ctor: name}
	for i, binder := range binders {
		p.bind(binder, fmt.Sprintf("position %d", i))
		p.binders = append(p.binders, binder)
	}
	return p
}

// Kw binds the keyword field key to binder
func (p *Pattern) Kw(key, binder string) *Pattern {
	if slices.ContainsFunc(p.kwargs, func(kw kwBinder) bool { return kw.key == key }) {
		p.fail(fmt.Sprintf("keyword %q bound twice", key))
		return p
	}
	p.bind(binder, fmt.Sprintf("keyword '%s'", key))
	p.kwargs = append(p.kwargs, kwBinder{key: key, binder: binder})
	return p
}

func (p *Pattern) bind(binder, slot string) {
	if binder == Discard {
		return
	}
	if !token.IsIdentifier(binder) {
		p.fail(fmt.Sprintf("binders must be plain names, got %q at %s", binder, slot))
		return
	}
	if previous, ok := p.slotOf(binder); ok {
		p.fail(fmt.Sprintf("name %q bound twice, at %s and at %s", binder, previous, slot))
	}
}

func (p *Pattern) slotOf(binder string) (string, bool) {
	if i := slices.Index(p.binders, binder); i >= 0 {
		return fmt.Sprintf("position %d", i), true
	}
	for _, kw := range p.kwargs {
		if kw.binder == binder {
			return fmt.Sprintf("keyword '%s'", kw.key), true
		}
	}
	return "", false
}

func (p *Pattern) fail(message string) {
	p.errs = p.errs.With(adterr.New(adterr.Declaration{Subject: p.String(), Message: message}))
}

// Err reports every problem found while building p, if any
func (p *Pattern) Err() error {
	if !p.errs.HasError() {
		return nil
	}
	return p.errs
}

// Constructor is the name of the constructor p matches
func (p *Pattern) Constructor() string { return p.ctor }

func (p *Pattern) NumArgs() int { return len(p.binders) }

// KwargKeys returns the keyword names of p in the order they were bound
func (p *Pattern) KwargKeys() []string {
	keys := make([]string, len(p.kwargs))
	for i, kw := range p.kwargs {
		keys[i] = kw.key
	}
	return keys
}

// Binders are the names a branch receives, in order: positional
// binders first, then keyword binders. Discarded fields are left out.
func (p *Pattern) Binders() []string {
	var names []string
	for _, b := range p.binders {
		if b != Discard {
			names = append(names, b)
		}
	}
	for _, kw := range p.kwargs {
		if kw.binder != Discard {
			names = append(names, kw.binder)
		}
	}
	return names
}

// BinderTypes resolves the type of each binder against ctor, in Binders order.
// It reports false if p does not have the shape of ctor.
func (p *Pattern) BinderTypes(ctor *adt.Constructor) ([]adt.Type, bool) {
	if p.ctor != ctor.Name() || p.NumArgs() != ctor.NumArgs() || !ctor.HasKwargKeys(p.KwargKeys()) {
		return nil, false
	}
	var types []adt.Type
	argTypes := ctor.ArgTypes()
	for i, b := range p.binders {
		if b != Discard {
			types = append(types, argTypes[i])
		}
	}
	for _, kw := range p.kwargs {
		if kw.binder != Discard {
			t, _ := ctor.KwargType(kw.key)
			types = append(types, t)
		}
	}
	return types, true
}

func (p *Pattern) String() string {
	sb := strings.Builder{}
	sb.WriteString(p.ctor)
	sb.WriteString("(")
	sb.WriteString(strings.Join(p.binders, ", "))
	if len(p.binders) > 0 && len(p.kwargs) > 0 {
		sb.WriteString(", ")
	}
	for i, kw := range p.kwargs {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(kw.key + "=" + kw.binder)
	}
	sb.WriteString(")")
	return sb.String()
}
