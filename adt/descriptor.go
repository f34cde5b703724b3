package adt

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
)

type Kind uint8

const (
	_ Kind = iota
	KindConcrete
	KindVariable
	KindRecursive
	// KindConstructor is never a valid field descriptor, it only exists so that
	// a constructor misused as a field type can be reported when the declaration closes
	KindConstructor
)

func (k Kind) String() string {
	switch k {
	case KindConcrete:
		return "concrete"
	case KindVariable:
		return "type variable"
	case KindRecursive:
		return "recursive reference"
	case KindConstructor:
		return "constructor"
	default:
		return "invalid"
	}
}

// Descriptor describes the type of a constructor field as it was declared.
//
// It is one of:
//
//	Type:       a concrete Go type or ADT instantiation
//	TypeVar:    a type variable, bound when the ADT is parametrized
//	Recursive:  a reference to the ADT being declared, for self-referential fields
type Descriptor interface {
	Kind() Kind
	String() string
	isDescriptor()
}

var (
	_ Descriptor = Type{}
	_ Descriptor = TypeVar{}
	_ Descriptor = Recursive{}
	_ Descriptor = (*ConstructorSpec)(nil)
)

// Type is a fully resolved type: either a Go type or an ADT Instantiation.
// The zero Type is invalid.
type Type struct {
	goType reflect.Type
	inst   *Instantiation
}

func TypeOf[T any]() Type {
	return Type{goType: reflect.TypeFor[T]()}
}

func GoType(t reflect.Type) Type {
	return Type{goType: t}
}

func (Type) Kind() Kind    { return KindConcrete }
func (Type) isDescriptor() {}

func (t Type) IsZero() bool {
	return t.goType == nil && t.inst == nil
}

// Instantiation returns the ADT instantiation t stands for, or nil if t is a Go type
func (t Type) Instantiation() *Instantiation {
	return t.inst
}

// ReflectType is the Go type values accepted by t have
func (t Type) ReflectType() reflect.Type {
	if t.inst != nil {
		return valuePtrType
	}
	return t.goType
}

func (t Type) String() string {
	switch {
	case t.inst != nil:
		return t.inst.String()
	case t.goType != nil:
		return t.goType.String()
	default:
		return "<invalid>"
	}
}

// Accepts reports whether v may be stored in a field of type t
func (t Type) Accepts(v any) bool {
	if t.inst != nil {
		value, ok := v.(*Value)
		return ok && value != nil && value.ctor.inst == t.inst
	}
	if t.goType == nil {
		return false
	}
	if v == nil {
		return isNillable(t.goType)
	}
	return reflect.TypeOf(v).AssignableTo(t.goType)
}

// AssignableTo reports whether any value accepted by t can be passed as a parameter of type param
func (t Type) AssignableTo(param reflect.Type) bool {
	return t.ReflectType().AssignableTo(param)
}

var valuePtrType = reflect.TypeFor[*Value]()

func isNillable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return true
	default:
		return false
	}
}

// TypeNameOf is the name of v's runtime type as it would appear in a field Type
func TypeNameOf(v any) string {
	switch v := v.(type) {
	case nil:
		return "nil"
	case *Value:
		if v == nil {
			return valuePtrType.String()
		}
		return v.Instantiation().String()
	default:
		return reflect.TypeOf(v).String()
	}
}

const MaxTypeVars = 255

// TypeVar is one of the type variables _1 ... _255.
// Two TypeVar with the same index are the same variable.
type TypeVar struct {
	index int
}

var (
	T1 = Var(1)
	T2 = Var(2)
	T3 = Var(3)
)

// Var returns the type variable _n. Indexes outside 1..MaxTypeVars
// are reported when the declaration using them closes
func Var(n int) TypeVar {
	return TypeVar{index: n}
}

func (TypeVar) Kind() Kind    { return KindVariable }
func (TypeVar) isDescriptor() {}

func (v TypeVar) Index() int          { return v.index }
func (v TypeVar) String() string      { return fmt.Sprintf("_%d", v.index) }
func (v TypeVar) Less(o TypeVar) bool { return v.index < o.index }

func (v TypeVar) valid() bool {
	return v.index >= 1 && v.index <= MaxTypeVars
}

// Recursive refers to an ADT by name from within its own declaration.
// Args are type variables or concrete types, one per type variable of the ADT.
type Recursive struct {
	name string
	args []Descriptor
}

func Ref(name string, args ...Descriptor) Recursive {
	return Recursive{name: name, args: args}
}

func (Recursive) Kind() Kind    { return KindRecursive }
func (Recursive) isDescriptor() {}

func (r Recursive) Name() string { return r.name }

func (r Recursive) Args() []Descriptor {
	return slices.Clone(r.args)
}

func (r Recursive) String() string {
	if len(r.args) == 0 {
		return r.name
	}
	return r.name + "[" + showDescriptors(r.args) + "]"
}

// Equal reports whether two descriptors describe the same type
func Equal(a, b Descriptor) bool {
	switch a := a.(type) {
	case Type:
		b, ok := b.(Type)
		return ok && a == b
	case TypeVar:
		b, ok := b.(TypeVar)
		return ok && a == b
	case Recursive:
		b, ok := b.(Recursive)
		return ok && a.name == b.name && slices.EqualFunc(a.args, b.args, Equal)
	case *ConstructorSpec:
		b, ok := b.(*ConstructorSpec)
		return ok && a == b
	default:
		return a == nil && b == nil
	}
}

func showDescriptors(ds []Descriptor) string {
	shown := make([]string, len(ds))
	for i, d := range ds {
		if d == nil {
			shown[i] = "<nil>"
			continue
		}
		shown[i] = d.String()
	}
	return strings.Join(shown, ", ")
}
