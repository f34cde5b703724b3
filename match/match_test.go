package match_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/cottand/adt/adt"
	"github.com/cottand/adt/adterr"
	"github.com/cottand/adt/match"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	intT   = adt.TypeOf[int]()
	floatT = adt.TypeOf[float64]()
)

var List = adt.MustDeclare("List", func(d *adt.Decl) {
	d.Constructor("Nil")
	d.Constructor("Cons", adt.T1, d.Self(adt.T1))
})

var Either = adt.MustDeclare("Either", func(d *adt.Decl) {
	d.Constructor("Left", adt.T1)
	d.Constructor("Right", adt.T2)
})

var Struct = adt.MustDeclare("Struct", func(d *adt.Decl) {
	d.Constructor("A").Kw("a", adt.T1).Kw("b", adt.T1)
	d.Constructor("B").Kw("a", adt.T2).Kw("b", adt.T2)
})

type unwrapped struct {
	head int
	tail *adt.Value
}

var unwrap = match.MustDeclare(func(c *match.Cases) {
	c.Case(match.Ctor("Nil"), nil)
	c.Case(match.Ctor("Cons", "h", "t"), func(h int, t *adt.Value) unwrapped {
		return unwrapped{head: h, tail: t}
	})
})

func TestUnwrapList(t *testing.T) {
	ints := List.MustOf(intT)
	cons, nil_ := ints.Ctor("Cons"), ints.Ctor("Nil")
	l := cons.MustNew(1, cons.MustNew(2, nil_.MustNew()))

	first, err := match.Match(l, unwrap)
	require.NoError(t, err)
	assert.Equal(t, 1, first.(unwrapped).head)

	second, err := match.Match(first.(unwrapped).tail, unwrap)
	require.NoError(t, err)
	assert.Equal(t, 2, second.(unwrapped).head)
	assert.Equal(t, "Nil", second.(unwrapped).tail.Tag())

	last, err := match.Match(second.(unwrapped).tail, unwrap)
	require.NoError(t, err)
	assert.Nil(t, last)
}

func TestKeywordMatch(t *testing.T) {
	inst := Struct.MustOf(intT, floatT)
	block := match.MustDeclare(func(c *match.Cases) {
		c.Case(match.Ctor("A").Kw("a", "x").Kw("b", "y"), func(x, y int) int { return x + y })
		c.Case(match.Ctor("B").Kw("a", "x").Kw("b", "y"), func(x, y float64) float64 { return x - y })
	})

	a := inst.Ctor("A").MustNew(adt.Kwargs{"a": 1, "b": 2})
	res, err := match.Result[int](a, block)
	require.NoError(t, err)
	assert.Equal(t, 3, res)

	b := inst.Ctor("B").MustNew(adt.Kwargs{"a": 1.5, "b": 2.0})
	resB, err := block.Match(b)
	require.NoError(t, err)
	assert.Equal(t, -0.5, resB)
}

func TestKeywordBindersInAnyOrder(t *testing.T) {
	inst := Struct.MustOf(intT, floatT)
	block := match.MustDeclare(func(c *match.Cases) {
		c.Case(match.Ctor("A").Kw("b", "second").Kw("a", "first"), func(second, first int) []int {
			return []int{first, second}
		})
		c.Case(match.Ctor("B").Kw("a", "_").Kw("b", "_"), "b")
	})
	res, err := block.Match(inst.Ctor("A").MustNew(adt.Kwargs{"a": 1, "b": 2}))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, res)
}

func TestOnlySelectedBranchRuns(t *testing.T) {
	ints := List.MustOf(intT)
	var effects []string
	block := match.MustDeclare(func(c *match.Cases) {
		c.Case(match.Ctor("Nil"), func() { effects = append(effects, "empty") })
		c.Case(match.Ctor("Cons", "_", "_"), func() { effects = append(effects, "not empty") })
	})

	res, err := block.Match(ints.Ctor("Cons").MustNew(1, ints.Ctor("Nil").MustNew()))
	require.NoError(t, err)
	assert.Nil(t, res)
	assert.Equal(t, []string{"not empty"}, effects)

	_, err = block.Match(ints.Ctor("Nil").MustNew())
	require.NoError(t, err)
	assert.Equal(t, []string{"not empty", "empty"}, effects)
}

func TestValidationBeforeExecution(t *testing.T) {
	left := Either.MustOf(intT, floatT).Ctor("Left").MustNew(1)
	cases := map[string]struct {
		alt    func(c *match.Cases)
		reason string
	}{
		"unknown constructor": {
			alt:    func(c *match.Cases) { c.Case(match.Ctor("Middle", "x"), 0) },
			reason: "'Middle' is not a valid constructor of type Either[int, float64]",
		},
		"arity": {
			alt:    func(c *match.Cases) { c.Case(match.Ctor("Right", "x", "y"), 0) },
			reason: "expected 1 positional arguments but received 2",
		},
		"keywords": {
			alt:    func(c *match.Cases) { c.Case(match.Ctor("Right", "x").Kw("k", "y"), 0) },
			reason: "mismatched keyword arguments, expected {} but received {k}",
		},
		"parameter type": {
			alt:    func(c *match.Cases) { c.Case(match.Ctor("Right", "x"), func(x string) string { return x }) },
			reason: "branch parameter 0 has type string, which cannot hold a field of type float64",
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			ran := false
			block, err := match.Declare(func(c *match.Cases) {
				// this alternative would match, but must never run
				c.Case(match.Ctor("Left", "x"), func(x int) int {
					ran = true
					return x
				})
				tc.alt(c)
			})
			require.NoError(t, err)

			_, err = block.Match(left)
			var invalid adterr.MatchValidation
			require.True(t, errors.As(err, &invalid), "got %v", err)
			assert.Equal(t, "Either[int, float64]", invalid.ADT)
			assert.Equal(t, tc.reason, invalid.Reason)
			assert.False(t, ran)
		})
	}
}

func TestNoMatch(t *testing.T) {
	right := Either.MustOf(intT, floatT).Ctor("Right").MustNew(2.5)
	block := match.MustDeclare(func(c *match.Cases) {
		c.Case(match.Ctor("Left", "x"), func(x int) int { return x })
	})
	_, err := block.Match(right)

	var noMatch adterr.NoMatch
	require.True(t, errors.As(err, &noMatch))
	assert.Equal(t, []string{"Left"}, noMatch.Tried)
	assert.Equal(t, "Either[int, float64].Right(2.5)", noMatch.Scrutinee)
	assert.Equal(t, "no alternatives matched the given scrutinee: Either[int, float64].Right(2.5), tried the following constructors:\nLeft", err.Error())

	_, err = block.Match(nil)
	assert.True(t, errors.As(err, &noMatch))
}

func TestLastDeclarationWins(t *testing.T) {
	ints := List.MustOf(intT)
	block := match.MustDeclare(func(c *match.Cases) {
		c.Case(match.Ctor("Nil"), "first nil")
		c.Case(match.Ctor("Cons", "h", "_"), func(h int) int { return h })
		c.Case(match.Ctor("Nil"), "second nil")
	})
	var names []string
	for _, alt := range block.Alternatives() {
		names = append(names, alt.String())
	}
	assert.Equal(t, []string{"Cons", "Nil"}, names)

	res, err := block.Match(ints.Ctor("Nil").MustNew())
	require.NoError(t, err)
	assert.Equal(t, "second nil", res)
}

func TestDuplicateBinders(t *testing.T) {
	_, err := match.Declare(func(c *match.Cases) {
		c.Case(match.Ctor("Cons", "x", "x"), 0)
	})
	var errs *adterr.Errors
	require.True(t, errors.As(err, &errs))
	assert.Contains(t, err.Error(), `name "x" bound twice, at position 0 and at position 1`)

	_, err = match.Declare(func(c *match.Cases) {
		c.Case(match.Ctor("A", "x").Kw("a", "x"), 0)
	})
	assert.ErrorContains(t, err, `name "x" bound twice, at position 0 and at keyword 'a'`)

	_, err = match.Declare(func(c *match.Cases) {
		c.Case(match.Ctor("A", "x + 1"), 0)
	})
	assert.ErrorContains(t, err, "binders must be plain names")
}

func TestBranchParameterCount(t *testing.T) {
	_, err := match.Declare(func(c *match.Cases) {
		c.Case(match.Ctor("Cons", "h", "t"), func(h int) int { return h })
	})
	var unresolved adterr.NameResolution
	require.True(t, errors.As(err, &unresolved))
	assert.Equal(t, "Cons(h, t)", unresolved.Pattern)
	assert.Contains(t, err.Error(), "branch takes 1 parameters but the pattern binds 2 names [h t]")

	_, err = match.Declare(func(c *match.Cases) {
		c.Case(match.Ctor("Nil"), func() (int, int) { return 1, 2 })
	})
	var decl adterr.Declaration
	assert.True(t, errors.As(err, &decl))
}

func TestNilBranchFunc(t *testing.T) {
	var f func(int) int
	_, err := match.Declare(func(c *match.Cases) {
		c.Case(match.Ctor("Left", "x"), f)
	})
	var decl adterr.Declaration
	require.True(t, errors.As(err, &decl), "got %v", err)
	assert.Equal(t, "Left(x)", decl.Subject)
	assert.Contains(t, err.Error(), "branch is a nil func(int) int")

	_, err = match.Declare(func(c *match.Cases) {
		c.Case(match.Ctor("Left", "x"), match.Func(nil))
	})
	assert.True(t, errors.As(err, &decl))

	// an untyped nil is a constant branch
	block, err := match.Declare(func(c *match.Cases) {
		c.Case(match.Ctor("Left", "_"), nil)
	})
	require.NoError(t, err)
	res, err := block.Match(Either.MustOf(intT, floatT).Ctor("Left").MustNew(1))
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestNilPattern(t *testing.T) {
	_, err := match.Declare(func(c *match.Cases) {
		c.Case(match.Ctor("Left", "x"), 0)
		c.Case(nil, 1)
	})
	var decl adterr.Declaration
	require.True(t, errors.As(err, &decl), "got %v", err)
	assert.Equal(t, "alternative 1", decl.Subject)
	assert.Equal(t, "pattern is nil", decl.Message)
}

func TestBranchErrors(t *testing.T) {
	ints := List.MustOf(intT)
	boom := errors.New("boom")
	block := match.MustDeclare(func(c *match.Cases) {
		c.Case(match.Ctor("Nil"), func() error { return boom })
		c.Case(match.Ctor("Cons", "h", "_"), func(h int) (int, error) { return h, nil })
	})
	_, err := block.Match(ints.Ctor("Nil").MustNew())
	assert.ErrorIs(t, err, boom)

	res, err := block.Match(ints.Ctor("Cons").MustNew(7, ints.Ctor("Nil").MustNew()))
	require.NoError(t, err)
	assert.Equal(t, 7, res)
}

func TestDynamicBranch(t *testing.T) {
	inst := Struct.MustOf(intT, floatT)
	block := match.MustDeclare(func(c *match.Cases) {
		c.Case(match.Ctor("A").Kw("a", "x").Kw("b", "y"), match.Func(func(fields []any) (any, error) {
			return fmt.Sprint(fields...), nil
		}))
		c.Case(match.Ctor("B").Kw("a", "x").Kw("b", "_"), func(fields []any) (any, error) {
			return len(fields), nil
		})
	})
	res, err := block.Match(inst.Ctor("A").MustNew(adt.Kwargs{"a": 1, "b": 2}))
	require.NoError(t, err)
	assert.Equal(t, "1 2", res)

	res, err = block.Match(inst.Ctor("B").MustNew(adt.Kwargs{"a": 1.0, "b": 2.0}))
	require.NoError(t, err)
	assert.Equal(t, 1, res)
}

func TestResultType(t *testing.T) {
	ints := List.MustOf(intT)
	_, err := match.Result[string](ints.Ctor("Cons").MustNew(1, ints.Ctor("Nil").MustNew()), unwrap)
	var mismatch adterr.TypeMismatch
	require.True(t, errors.As(err, &mismatch), "got %v", err)
	assert.Equal(t, "Cons", mismatch.Constructor)
	assert.Equal(t, "string", mismatch.Expected)
	assert.Equal(t, "match_test.unwrapped", mismatch.Actual)
	assert.ErrorContains(t, err, "Cons: expected a match result of type 'string', got 'match_test.unwrapped'")

	empty, err := match.Result[string](ints.Ctor("Nil").MustNew(), unwrap)
	require.NoError(t, err)
	assert.Equal(t, "", empty)
}

func ExampleMatch() {
	either := adt.MustDeclare("Either", func(d *adt.Decl) {
		d.Constructor("Left", adt.T1)
		d.Constructor("Right", adt.T2)
	})
	block := match.MustDeclare(func(c *match.Cases) {
		c.Case(match.Ctor("Right", "_"), "nan")
		c.Case(match.Ctor("Left", "x"), func(x int) int { return x + 1 })
	})
	res, _ := match.Match(either.MustOf(adt.TypeOf[int](), adt.TypeOf[float64]()).Ctor("Left").MustNew(1), block)
	fmt.Println(res)
	// Output: 2
}
