package adt

import (
	"maps"
	"slices"

	"github.com/cottand/adt/adterr"
	"github.com/cottand/adt/util"
	"github.com/hashicorp/go-set/v3"
)

// Kwargs are the keyword arguments of a constructor call
type Kwargs map[string]any

type resolvedKeyword struct {
	key string
	typ Type
}

// Constructor builds the Values of one constructor of an Instantiation,
// checking every argument against the resolved field types
type Constructor struct {
	spec      *ConstructorSpec
	inst      *Instantiation
	args      []Type
	kwargs    []resolvedKeyword
	kwargKeys *set.Set[string]
}

func (c *Constructor) Name() string                  { return c.spec.name }
func (c *Constructor) Spec() *ConstructorSpec        { return c.spec }
func (c *Constructor) Instantiation() *Instantiation { return c.inst }
func (c *Constructor) NumArgs() int                  { return len(c.args) }

func (c *Constructor) ArgTypes() []Type {
	return slices.Clone(c.args)
}

// KwargKeys returns the keyword names in declaration order
func (c *Constructor) KwargKeys() []string {
	keys := make([]string, len(c.kwargs))
	for i, kw := range c.kwargs {
		keys[i] = kw.key
	}
	return keys
}

func (c *Constructor) KwargType(key string) (Type, bool) {
	for _, kw := range c.kwargs {
		if kw.key == key {
			return kw.typ, true
		}
	}
	return Type{}, false
}

// HasKwargKeys reports whether keys is exactly the set of keyword names of c
func (c *Constructor) HasKwargKeys(keys []string) bool {
	return keySet(keys).Equal(c.kwargKeys)
}

func (c *Constructor) String() string {
	return c.inst.String() + "." + c.spec.name
}

// New calls Construct with args. If the last argument is a Kwargs,
// it is used as the keyword arguments.
func (c *Constructor) New(args ...any) (*Value, error) {
	if len(args) > 0 {
		if kwargs, ok := args[len(args)-1].(Kwargs); ok {
			return c.Construct(args[:len(args)-1], kwargs)
		}
	}
	return c.Construct(args, nil)
}

// Construct checks the positional count, the keyword names and the type of every
// argument, in that order, and returns the new immutable Value.
func (c *Constructor) Construct(args []any, kwargs Kwargs) (*Value, error) {
	if len(args) != len(c.args) {
		return nil, adterr.New(adterr.Arity{Constructor: c.String(), Expected: len(c.args), Got: len(args)})
	}
	gotKeys := util.SetFromSeq(maps.Keys(kwargs), len(kwargs))
	if !gotKeys.Equal(c.kwargKeys) {
		return nil, adterr.New(adterr.KeyMismatch{
			Constructor: c.String(),
			Expected:    sortedKeys(c.kwargKeys),
			Got:         sortedKeys(gotKeys),
		})
	}
	for n, arg := range args {
		if expected := c.args[n]; !expected.Accepts(arg) {
			return nil, adterr.New(adterr.TypeMismatch{
				Constructor: c.String(),
				Position:    n,
				Expected:    expected.String(),
				Actual:      TypeNameOf(arg),
				Value:       arg,
			})
		}
	}
	kwValues := make([]any, len(c.kwargs))
	for n, kw := range c.kwargs {
		arg := kwargs[kw.key]
		if !kw.typ.Accepts(arg) {
			return nil, adterr.New(adterr.TypeMismatch{
				Constructor: c.String(),
				Key:         kw.key,
				Expected:    kw.typ.String(),
				Actual:      TypeNameOf(arg),
				Value:       arg,
			})
		}
		kwValues[n] = arg
	}
	return &Value{ctor: c, args: slices.Clone(args), kwargs: kwValues}, nil
}

// MustNew is like New but panics on error
func (c *Constructor) MustNew(args ...any) *Value {
	v, err := c.New(args...)
	if err != nil {
		panic("adt: " + err.Error())
	}
	return v
}

func keySet(keys []string) *set.Set[string] {
	return util.SetFromSeq(slices.Values(keys), len(keys))
}

func sortedKeys(keys *set.Set[string]) []string {
	sorted := keys.Slice()
	slices.Sort(sorted)
	return sorted
}
