package adt

import (
	"fmt"
	"slices"
	"strings"

	"github.com/cottand/adt/adterr"
)

// Instantiation is an ADT Definition with every type variable bound to a concrete Type.
//
// There is a single Instantiation per Definition and type tuple,
// so instantiations can be compared with ==.
type Instantiation struct {
	def          *Definition
	types        []Type
	bindings     map[TypeVar]Type
	constructors []*Constructor
}

func newInstantiation(def *Definition, types []Type) *Instantiation {
	bindings := make(map[TypeVar]Type, len(types))
	for i, v := range def.typeVars {
		bindings[v] = types[i]
	}
	return &Instantiation{def: def, types: types, bindings: bindings}
}

func (i *Instantiation) resolveConstructors(p *population) {
	i.constructors = make([]*Constructor, len(i.def.constructors))
	for n, spec := range i.def.constructors {
		ctor := &Constructor{
			spec: spec,
			inst: i,
			args: make([]Type, len(spec.args)),
		}
		for j, arg := range spec.args {
			ctor.args[j] = i.resolve(arg, p)
		}
		for _, kw := range spec.kwargs {
			ctor.kwargs = append(ctor.kwargs, resolvedKeyword{key: kw.Key, typ: i.resolve(kw.Type, p)})
		}
		ctor.kwargKeys = keySet(ctor.KwargKeys())
		i.constructors[n] = ctor
	}
}

// resolve substitutes bound type variables in d. A recursive reference to
// the same type tuple resolves to i itself; any other tuple goes through p.
func (i *Instantiation) resolve(d Descriptor, p *population) Type {
	switch d := d.(type) {
	case Type:
		return d
	case TypeVar:
		return i.bindings[d]
	case Recursive:
		types := make([]Type, len(d.args))
		for n, arg := range d.args {
			types[n] = i.resolve(arg, p)
		}
		if slices.Equal(types, i.types) {
			return i.Type()
		}
		return p.instantiate(i.def, types).Type()
	default:
		panic(fmt.Sprintf("unreachable: unresolvable descriptor %s (a %T) in %s", d, d, i.def.name))
	}
}

func (i *Instantiation) Definition() *Definition { return i.def }

// Types are the concrete types bound to the definition's type variables, in order
func (i *Instantiation) Types() []Type {
	return slices.Clone(i.types)
}

// Binding returns the Type bound to v
func (i *Instantiation) Binding(v TypeVar) (Type, bool) {
	t, ok := i.bindings[v]
	return t, ok
}

// Type is i used as a field or parametrization Type
func (i *Instantiation) Type() Type {
	return Type{inst: i}
}

func (i *Instantiation) Constructors() []*Constructor {
	return slices.Clone(i.constructors)
}

func (i *Instantiation) Lookup(name string) (*Constructor, bool) {
	for _, c := range i.constructors {
		if c.spec.name == name {
			return c, true
		}
	}
	return nil, false
}

// Ctor is like Lookup but panics if i has no constructor called name
func (i *Instantiation) Ctor(name string) *Constructor {
	c, ok := i.Lookup(name)
	if !ok {
		panic(fmt.Sprintf("adt: %s has no constructor %q", i, name))
	}
	return c
}

// New always fails: values of an ADT can only be built through its constructors
func (i *Instantiation) New(...any) (*Value, error) {
	return nil, adterr.New(adterr.DirectInstantiation{ADT: i.def.name, Constructors: i.def.Signatures()})
}

func (i *Instantiation) String() string {
	if len(i.types) == 0 {
		return i.def.name
	}
	names := make([]string, len(i.types))
	for n, t := range i.types {
		names[n] = t.String()
	}
	return i.def.name + "[" + strings.Join(names, ", ") + "]"
}
