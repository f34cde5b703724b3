package adt

import (
	"fmt"
	"iter"
	"slices"
	"strings"
)

// Value is an immutable instance of an ADT, tagged with the constructor that built it
type Value struct {
	ctor   *Constructor
	args   []any
	kwargs []any // aligned with ctor.kwargs
}

// Tag is the name of the constructor v was built with
func (v *Value) Tag() string { return v.ctor.spec.name }

func (v *Value) Constructor() *Constructor     { return v.ctor }
func (v *Value) Instantiation() *Instantiation { return v.ctor.inst }
func (v *Value) NumArgs() int                  { return len(v.args) }

// Arg returns the positional field at i, and panics if i is out of range
func (v *Value) Arg(i int) any {
	return v.args[i]
}

func (v *Value) Args() []any {
	return slices.Clone(v.args)
}

func (v *Value) Kwarg(key string) (any, bool) {
	for i, kw := range v.ctor.kwargs {
		if kw.key == key {
			return v.kwargs[i], true
		}
	}
	return nil, false
}

// Kwargs iterates over the keyword fields in declaration order
func (v *Value) Kwargs() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		for i, kw := range v.ctor.kwargs {
			if !yield(kw.key, v.kwargs[i]) {
				return
			}
		}
	}
}

func (v *Value) String() string {
	sb := strings.Builder{}
	sb.WriteString(v.ctor.String())
	sb.WriteString("(")
	for i, arg := range v.args {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(fmt.Sprint(arg))
	}
	if len(v.args) > 0 && len(v.kwargs) > 0 {
		sb.WriteString(", ")
	}
	i := 0
	for key, arg := range v.Kwargs() {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(fmt.Sprintf("%s=%v", key, arg))
		i++
	}
	sb.WriteString(")")
	return sb.String()
}
