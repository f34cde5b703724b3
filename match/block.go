package match

import (
	"fmt"
	"reflect"
	"slices"

	"github.com/cottand/adt/adt"
	"github.com/cottand/adt/adterr"
	"github.com/cottand/adt/internal/log"
	"github.com/cottand/adt/util"
	"github.com/hashicorp/go-set/v3"
)

var logger = log.DefaultLogger.With("section", "match")

// chainNode links an alternative to the one declared before it,
// which is where matching falls through to
type chainNode struct {
	alt      *Alternative
	fallback *chainNode
}

// Cases is handed to the body of Declare to register alternatives
type Cases struct {
	last *chainNode
	n    int
	errs *adterr.Errors
}

// Case declares the alternative pattern >> branch.
//
// branch is evaluated only if the alternative is selected. It may be:
//   - a func taking one parameter per binder of pattern (see Pattern.Binders),
//     returning nothing, a value, or a value and an error
//   - a Func, which receives every binder as a slice
//   - any other value, which is returned as is
func (c *Cases) Case(pattern *Pattern, branch any) {
	if pattern == nil {
		c.errs = c.errs.With(adterr.New(adterr.Declaration{
			Subject: fmt.Sprintf("alternative %d", c.n),
			Message: "pattern is nil",
		}))
		return
	}
	c.errs = c.errs.Merge(pattern.errs)
	b, err := newBranch(pattern, branch)
	if err != nil {
		c.errs = c.errs.With(err.(adterr.Error))
		return
	}
	alt := &Alternative{pattern: pattern, branch: b, index: c.n}
	c.n++
	c.last = &chainNode{alt: alt, fallback: c.last}
}

// resolve walks the fallback chain from the latest alternative back. Only the most
// recent alternative for each constructor survives, and declaration order is kept.
func (c *Cases) resolve() []*Alternative {
	seen := set.New[string](c.n)
	kept := util.Stack[*Alternative]{}
	for node := c.last; node != nil; node = node.fallback {
		if !seen.Insert(node.alt.pattern.ctor) {
			logger.Debug("superseded alternative", "pattern", node.alt.pattern.String(), "index", node.alt.index)
			continue
		}
		kept.Push(node.alt)
	}
	alternatives := make([]*Alternative, 0, kept.Len())
	for alt := range kept.Drain() {
		alternatives = append(alternatives, alt)
	}
	return alternatives
}

// Block is an ordered list of alternatives. It is immutable and can be
// matched against any number of values.
type Block struct {
	alternatives []*Alternative
}

// Declare builds a Block out of the alternatives registered by body,
// which runs exactly once. If the same constructor is matched by several
// alternatives, the last one declared wins.
func Declare(body func(c *Cases)) (*Block, error) {
	c := &Cases{}
	if body != nil {
		body(c)
	}
	if c.errs.HasError() {
		return nil, c.errs
	}
	return &Block{alternatives: c.resolve()}, nil
}

// MustDeclare is like Declare but panics if the block is invalid
func MustDeclare(body func(c *Cases)) *Block {
	b, err := Declare(body)
	if err != nil {
		panic("match: " + err.Error())
	}
	return b
}

func (b *Block) Alternatives() []*Alternative {
	return slices.Clone(b.alternatives)
}

// Validate checks every alternative of b against inst: the constructor must exist
// and the pattern must have its exact shape
func (b *Block) Validate(inst *adt.Instantiation) error {
	for _, alt := range b.alternatives {
		p := alt.pattern
		invalid := func(format string, args ...any) error {
			return adterr.New(adterr.MatchValidation{
				Constructor: p.ctor,
				ADT:         inst.String(),
				Reason:      fmt.Sprintf(format, args...),
			})
		}
		ctor, ok := inst.Lookup(p.ctor)
		if !ok {
			return invalid("'%s' is not a valid constructor of type %s", p.ctor, inst)
		}
		if p.NumArgs() != ctor.NumArgs() {
			return invalid("expected %d positional arguments but received %d", ctor.NumArgs(), p.NumArgs())
		}
		if keys := p.KwargKeys(); !ctor.HasKwargKeys(keys) {
			expected := ctor.KwargKeys()
			slices.Sort(expected)
			slices.Sort(keys)
			return invalid("mismatched keyword arguments, expected %s but received %s", adterr.ShowKeys(expected), adterr.ShowKeys(keys))
		}
		types, _ := p.BinderTypes(ctor)
		if reason := alt.branch.check(types); reason != "" {
			return invalid("%s", reason)
		}
	}
	return nil
}

// Match validates every alternative against the instantiation of scrutinee, then
// evaluates the branch of the first alternative matching its tag, and no other.
func (b *Block) Match(scrutinee *adt.Value) (any, error) {
	if scrutinee == nil {
		return nil, adterr.New(adterr.NoMatch{Scrutinee: "nil", Tried: b.tried()})
	}
	if err := b.Validate(scrutinee.Instantiation()); err != nil {
		return nil, err
	}
	for _, alt := range b.alternatives {
		if alt.pattern.ctor != scrutinee.Tag() {
			continue
		}
		logger.Debug("selected alternative", "pattern", alt.pattern.String(), "scrutinee", scrutinee.String())
		return alt.branch.call(alt.bind(scrutinee))
	}
	return nil, adterr.New(adterr.NoMatch{Scrutinee: scrutinee.String(), Tried: b.tried()})
}

func (b *Block) tried() []string {
	names := make([]string, len(b.alternatives))
	for i, alt := range b.alternatives {
		names[i] = alt.String()
	}
	return names
}

// Match matches scrutinee against block
func Match(scrutinee *adt.Value, block *Block) (any, error) {
	return block.Match(scrutinee)
}

// Result is like Match, but also asserts the type of the result.
// A nil result is returned as the zero T.
func Result[T any](scrutinee *adt.Value, block *Block) (T, error) {
	var zero T
	r, err := block.Match(scrutinee)
	if err != nil || r == nil {
		return zero, err
	}
	t, ok := r.(T)
	if !ok {
		return zero, adterr.New(adterr.TypeMismatch{
			Constructor: scrutinee.Tag(),
			Position:    adterr.ResultPosition,
			Expected:    reflect.TypeFor[T]().String(),
			Actual:      adt.TypeNameOf(r),
			Value:       r,
		})
	}
	return t, nil
}
