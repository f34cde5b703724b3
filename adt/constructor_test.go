package adt_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/cottand/adt/adt"
	"github.com/cottand/adt/adterr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructArity(t *testing.T) {
	cons := List.MustOf(intT).Ctor("Cons")
	_, err := cons.New(1)

	var arity adterr.Arity
	require.True(t, errors.As(err, &arity))
	assert.Equal(t, 2, arity.Expected)
	assert.Equal(t, 1, arity.Got)
	assert.Equal(t, "List[int].Cons takes 2 positional arguments but 1 were given", err.Error())
}

func TestConstructKeywordMismatch(t *testing.T) {
	a := Struct.MustOf(intT, floatT).Ctor("A")
	cases := map[string]adt.Kwargs{
		"missing": {"a": 1},
		"extra":   {"a": 1, "b": 2, "c": 3},
		"none":    nil,
	}
	for name, kwargs := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := a.Construct(nil, kwargs)
			var mismatch adterr.KeyMismatch
			require.True(t, errors.As(err, &mismatch), "got %v", err)
			assert.Equal(t, []string{"a", "b"}, mismatch.Expected)
			assert.Len(t, mismatch.Got, len(kwargs))
		})
	}

	_, err := a.Construct(nil, adt.Kwargs{"a": 1})
	assert.Equal(t, "Struct[int, float64].A: mismatched keyword arguments, expected {a, b}, got {a}", err.Error())
}

func TestConstructTypeMismatch(t *testing.T) {
	ints := List.MustOf(intT)
	_, err := ints.Ctor("Cons").New("one", ints.Ctor("Nil").MustNew())

	var mismatch adterr.TypeMismatch
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, 0, mismatch.Position)
	assert.Equal(t, "int", mismatch.Expected)
	assert.Equal(t, "string", mismatch.Actual)
	assert.Equal(t, "one", mismatch.Value)
	assert.Equal(t, "List[int].Cons: expected type 'int' for argument at position 0, got 'string': one", err.Error())

	// a tail from another instantiation is not a List[int]
	strs := List.MustOf(stringT)
	_, err = ints.Ctor("Cons").New(1, strs.Ctor("Nil").MustNew())
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, 1, mismatch.Position)
	assert.Equal(t, "List[int]", mismatch.Expected)
	assert.Equal(t, "List[string]", mismatch.Actual)
}

func TestConstructKeywordTypeMismatch(t *testing.T) {
	b := Struct.MustOf(intT, floatT).Ctor("B")
	_, err := b.New(adt.Kwargs{"a": 1.5, "b": 2})

	var mismatch adterr.TypeMismatch
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, "b", mismatch.Key)
	assert.Equal(t, "float64", mismatch.Expected)
	assert.Equal(t, "int", mismatch.Actual)
	assert.Equal(t, "Struct[int, float64].B: expected type 'float64' for argument at 'b', got 'int': 2", err.Error())
}

func TestConstructChecksArityBeforeTypes(t *testing.T) {
	a := Struct.MustOf(intT, floatT).Ctor("A")
	_, err := a.New("wrong", adt.Kwargs{"a": "x"})
	var arity adterr.Arity
	assert.True(t, errors.As(err, &arity))
}

func TestConstructInterfaceFields(t *testing.T) {
	boxes := adt.MustDeclare("Box", func(d *adt.Decl) {
		d.Constructor("Any", anyT)
		d.Constructor("Err", errorT)
		d.Constructor("Show", stringer)
		d.Constructor("Ints", intsT)
	})
	box := boxes.MustOf()

	for _, v := range []any{1, "two", nil, []string{"x"}} {
		_, err := box.Ctor("Any").New(v)
		assert.NoError(t, err, "any should accept %v", v)
	}

	_, err := box.Ctor("Err").New(errors.New("boom"))
	assert.NoError(t, err)
	_, err = box.Ctor("Err").New(nil)
	assert.NoError(t, err)
	_, err = box.Ctor("Err").New("boom")
	assert.Error(t, err)

	// values themselves are Stringers
	_, err = box.Ctor("Show").New(box.Ctor("Ints").MustNew([]int{1}))
	assert.NoError(t, err)
	_, err = box.Ctor("Ints").New(nil)
	assert.NoError(t, err)
	_, err = box.Ctor("Ints").New([]string{"1"})
	assert.Error(t, err)
}

func TestValueAccessors(t *testing.T) {
	mixed := adt.MustDeclare("Mixed", func(d *adt.Decl) {
		d.Constructor("M", adt.T1).Kw("z", stringT).Kw("a", adt.T1)
	})
	m := mixed.MustOf(intT).Ctor("M")
	v, err := m.New(1, adt.Kwargs{"a": 2, "z": "last"})
	require.NoError(t, err)

	assert.Equal(t, "M", v.Tag())
	assert.Same(t, m, v.Constructor())
	assert.Equal(t, 1, v.NumArgs())
	assert.Equal(t, []any{1}, v.Args())
	z, ok := v.Kwarg("z")
	assert.True(t, ok)
	assert.Equal(t, "last", z)
	_, ok = v.Kwarg("missing")
	assert.False(t, ok)

	var keys []string
	for key := range v.Kwargs() {
		keys = append(keys, key)
	}
	assert.Equal(t, []string{"z", "a"}, keys)
	assert.Equal(t, "Mixed[int].M(1, z=last, a=2)", v.String())
	assert.Equal(t, "M(_1, z=string, a=_1)", m.Spec().String())
}

func TestValuesAreCopied(t *testing.T) {
	pairs := adt.MustDeclare("Copied", func(d *adt.Decl) {
		d.Constructor("C", adt.T1, adt.T1)
	})
	args := []any{1, 2}
	v, err := pairs.MustOf(intT).Ctor("C").Construct(args, nil)
	require.NoError(t, err)
	args[0] = 100
	v.Args()[1] = 200
	assert.Equal(t, []any{1, 2}, v.Args())
}

func ExampleDeclare() {
	list := adt.MustDeclare("List", func(d *adt.Decl) {
		d.Constructor("Nil")
		d.Constructor("Cons", adt.T1, d.Self(adt.T1))
	})
	ints := list.MustOf(adt.TypeOf[int]())
	nil_ := ints.Ctor("Nil").MustNew()
	l := ints.Ctor("Cons").MustNew(1, ints.Ctor("Cons").MustNew(2, nil_))
	fmt.Println(l)

	_, err := list.New(1)
	fmt.Println(err)
	// Output:
	// List[int].Cons(1, List[int].Cons(2, List[int].Nil()))
	// List is an ADT which can only be instantiated through constructors: (Nil(), Cons(_1, List[_1]))
}
