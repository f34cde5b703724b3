package adt

import (
	"slices"

	"github.com/cottand/adt/adterr"
)

// Definition is a declared, possibly generic, ADT.
// Definitions are never mutated after Declare returns them.
type Definition struct {
	name         string
	typeVars     []TypeVar
	constructors []*ConstructorSpec
}

func (d *Definition) Name() string   { return d.name }
func (d *Definition) String() string { return d.name }

// TypeVars are the type variables used by the constructors, sorted by index
func (d *Definition) TypeVars() []TypeVar {
	return slices.Clone(d.typeVars)
}

func (d *Definition) Constructors() []*ConstructorSpec {
	return slices.Clone(d.constructors)
}

func (d *Definition) Constructor(name string) (*ConstructorSpec, bool) {
	i := slices.IndexFunc(d.constructors, func(c *ConstructorSpec) bool { return c.name == name })
	if i < 0 {
		return nil, false
	}
	return d.constructors[i], true
}

// Signatures renders every constructor in declaration order, like Cons(_1, List[_1])
func (d *Definition) Signatures() []string {
	sigs := make([]string, len(d.constructors))
	for i, c := range d.constructors {
		sigs[i] = c.String()
	}
	return sigs
}

// Of parametrizes d, binding its type variables in ascending order to types.
//
// Parametrizing the same Definition with equal types always returns the same Instantiation.
func (d *Definition) Of(types ...Type) (*Instantiation, error) {
	if len(types) != len(d.typeVars) {
		got := make([]string, len(types))
		for i, t := range types {
			got[i] = t.String()
		}
		return nil, adterr.New(adterr.ParametrizationCount{ADT: d.name, Expected: len(d.typeVars), Got: got})
	}
	for i, t := range types {
		if t.IsZero() {
			return nil, adterr.New(adterr.Declaration{
				Subject: d.name,
				Message: "invalid type argument for " + d.typeVars[i].String(),
			})
		}
	}
	return cache.instantiate(d, types), nil
}

func (d *Definition) MustOf(types ...Type) *Instantiation {
	inst, err := d.Of(types...)
	if err != nil {
		panic("adt: " + err.Error())
	}
	return inst
}

// New always fails: values of an ADT can only be built through its constructors
func (d *Definition) New(...any) (*Value, error) {
	return nil, adterr.New(adterr.DirectInstantiation{ADT: d.name, Constructors: d.Signatures()})
}
