package script

import (
	"context"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"

	"github.com/cottand/adt/adt"
	"github.com/cottand/adt/adterr"
	"github.com/cottand/adt/match"
	"github.com/pkg/errors"
)

var builtinTypes = map[string]reflect.Type{
	"bool":       reflect.TypeFor[bool](),
	"int":        reflect.TypeFor[int](),
	"int8":       reflect.TypeFor[int8](),
	"int16":      reflect.TypeFor[int16](),
	"int32":      reflect.TypeFor[int32](),
	"int64":      reflect.TypeFor[int64](),
	"uint":       reflect.TypeFor[uint](),
	"uint8":      reflect.TypeFor[uint8](),
	"uint16":     reflect.TypeFor[uint16](),
	"uint32":     reflect.TypeFor[uint32](),
	"uint64":     reflect.TypeFor[uint64](),
	"float32":    reflect.TypeFor[float32](),
	"float64":    reflect.TypeFor[float64](),
	"complex128": reflect.TypeFor[complex128](),
	"string":     reflect.TypeFor[string](),
	"byte":       reflect.TypeFor[byte](),
	"rune":       reflect.TypeFor[rune](),
	"any":        reflect.TypeFor[any](),
	"error":      reflect.TypeFor[error](),
}

// Program is a compiled Script: its ADTs are declared, its values built,
// and the branches of its matches compiled. Branches only run in Run.
type Program struct {
	definitions []*adt.Definition
	values      []namedValue
	matches     []*compiledMatch
}

type namedValue struct {
	name  string
	value any
}

type compiledMatch struct {
	name      string
	scrutinee *adt.Value
	block     *match.Block
}

type compiler struct {
	defs     map[string]*adt.Definition
	values   map[string]any
	branches *branchCompiler
	program  *Program
}

// Compile declares every type of s, evaluates its values and compiles the
// branches of its matches. Output written by branches goes to stdout.
func (s *Script) Compile(ctx context.Context, stdout io.Writer) (*Program, error) {
	branches, err := newBranchCompiler(ctx, stdout)
	if err != nil {
		return nil, err
	}
	c := &compiler{
		defs:     make(map[string]*adt.Definition, len(s.Types)),
		values:   make(map[string]any, len(s.Values)),
		branches: branches,
		program:  &Program{},
	}
	for _, t := range s.Types {
		def, err := c.declareType(t)
		if err != nil {
			return nil, errors.Wrapf(err, "type %s", t.Name)
		}
		c.defs[def.Name()] = def
		c.program.definitions = append(c.program.definitions, def)
	}
	for _, v := range s.Values {
		value, err := c.evalSource(v.Expr)
		if err != nil {
			return nil, errors.Wrapf(err, "value %s", v.Name)
		}
		logger.Debug("defined value", "name", v.Name, "value", value)
		c.values[v.Name] = value
		c.program.values = append(c.program.values, namedValue{name: v.Name, value: value})
	}
	for i, m := range s.Matches {
		name := m.Name
		if name == "" {
			name = fmt.Sprintf("match %d", i)
		}
		compiled, err := c.compileMatch(ctx, name, m)
		if err != nil {
			return nil, errors.Wrapf(err, "match %s", name)
		}
		c.program.matches = append(c.program.matches, compiled)
	}
	return c.program, nil
}

// Run compiles s and runs every match in order, writing `name = result`
// for each of them to out
func (s *Script) Run(ctx context.Context, out io.Writer) error {
	p, err := s.Compile(ctx, out)
	if err != nil {
		return err
	}
	return p.Run(ctx, out)
}

func (c *compiler) declareType(decl TypeDecl) (*adt.Definition, error) {
	var sigErr error
	def, err := adt.Declare(decl.Name, func(d *adt.Decl) {
		for _, sig := range decl.Constructors {
			if sigErr != nil {
				return
			}
			if err := c.declareConstructor(d, sig); err != nil {
				sigErr = errors.Wrapf(err, "constructor %s", sig)
			}
		}
	})
	if sigErr != nil {
		return nil, sigErr
	}
	if err != nil {
		return nil, err
	}
	logger.Debug("declared type", "name", def.Name(), "signatures", def.Signatures())
	return def, nil
}

func (c *compiler) declareConstructor(d *adt.Decl, sig string) error {
	n, err := parse(sig)
	if err != nil {
		return err
	}
	switch n := n.(type) {
	case *identNode:
		d.Constructor(n.name)
		return nil
	case *callNode:
		name, ok := n.fn.(*identNode)
		if !ok {
			return errors.Errorf("expected a constructor name, found %s", n.fn)
		}
		args := make([]adt.Descriptor, len(n.args))
		for i, arg := range n.args {
			if args[i], err = c.descriptor(d, arg); err != nil {
				return err
			}
		}
		spec := d.Constructor(name.name, args...)
		for _, kw := range n.kwargs {
			desc, err := c.descriptor(d, kw.value)
			if err != nil {
				return err
			}
			spec.Kw(kw.key, desc)
		}
		return nil
	default:
		return errors.Errorf("expected a constructor signature like Cons(_1, List[_1]), found %s", n)
	}
}

// descriptor resolves a field type in the declaration of d: a type variable,
// a reference to d itself, or a concrete type
func (c *compiler) descriptor(d *adt.Decl, n node) (adt.Descriptor, error) {
	switch n := n.(type) {
	case *identNode:
		if index, ok := typeVarIndex(n.name); ok {
			return adt.Var(index), nil
		}
		if n.name == d.Name() {
			return d.Self(), nil
		}
	case *indexNode:
		if base, ok := n.base.(*identNode); ok && base.name == d.Name() {
			args := make([]adt.Descriptor, len(n.args))
			for i, arg := range n.args {
				var err error
				if args[i], err = c.descriptor(d, arg); err != nil {
					return nil, err
				}
			}
			return d.Self(args...), nil
		}
	}
	return c.concreteType(n)
}

func typeVarIndex(name string) (int, bool) {
	digits, ok := strings.CutPrefix(name, adt.ReservedPrefix)
	if !ok || digits == "" {
		return 0, false
	}
	index, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return index, true
}

func (c *compiler) concreteType(n node) (adt.Type, error) {
	if ident, ok := n.(*identNode); ok {
		if t, ok := builtinTypes[ident.name]; ok {
			return adt.GoType(t), nil
		}
	}
	inst, err := c.instantiation(n)
	if err != nil {
		return adt.Type{}, err
	}
	return inst.Type(), nil
}

// instantiation resolves List[int] or a non-parametric ADT name
func (c *compiler) instantiation(n node) (*adt.Instantiation, error) {
	var (
		name string
		args []node
	)
	switch n := n.(type) {
	case *identNode:
		name = n.name
	case *indexNode:
		base, ok := n.base.(*identNode)
		if !ok {
			return nil, errors.Errorf("expected a type name, found %s", n.base)
		}
		name, args = base.name, n.args
	default:
		return nil, errors.Errorf("expected a type, found %s", n)
	}
	def, ok := c.defs[name]
	if !ok {
		return nil, errors.Errorf("unknown type %s", name)
	}
	types := make([]adt.Type, len(args))
	for i, arg := range args {
		var err error
		if types[i], err = c.concreteType(arg); err != nil {
			return nil, err
		}
	}
	return def.Of(types...)
}

func (c *compiler) evalSource(src string) (any, error) {
	n, err := parse(src)
	if err != nil {
		return nil, err
	}
	return c.eval(n)
}

func (c *compiler) eval(n node) (any, error) {
	switch n := n.(type) {
	case *litNode:
		return n.value, nil
	case *identNode:
		switch n.name {
		case "true":
			return true, nil
		case "false":
			return false, nil
		case "nil":
			return nil, nil
		}
		if v, ok := c.values[n.name]; ok {
			return v, nil
		}
		return nil, adterr.New(adterr.NameResolution{Name: n.name})
	case *selectorNode:
		return c.construct(n, nil)
	case *callNode:
		sel, ok := n.fn.(*selectorNode)
		if !ok {
			return nil, errors.Errorf("values are built with qualified constructors like List[int].Nil(), found %s", n.fn)
		}
		return c.construct(sel, n)
	default:
		return nil, errors.Errorf("unexpected expression %s", n)
	}
}

func (c *compiler) construct(sel *selectorNode, call *callNode) (*adt.Value, error) {
	inst, err := c.instantiation(sel.base)
	if err != nil {
		return nil, err
	}
	ctor, ok := inst.Lookup(sel.sel)
	if !ok {
		return nil, adterr.New(adterr.NameResolution{
			Name:   sel.String(),
			Detail: fmt.Sprintf("%s has no constructor %s", inst, sel.sel),
		})
	}
	if call == nil {
		return ctor.Construct(nil, nil)
	}

	argTypes := ctor.ArgTypes()
	args := make([]any, len(call.args))
	for i, arg := range call.args {
		v, err := c.eval(arg)
		if err != nil {
			return nil, err
		}
		if i < len(argTypes) {
			v = convertConstant(arg, v, argTypes[i])
		}
		args[i] = v
	}
	var kwargs adt.Kwargs
	if len(call.kwargs) > 0 {
		kwargs = make(adt.Kwargs, len(call.kwargs))
	}
	for _, kw := range call.kwargs {
		if _, dup := kwargs[kw.key]; dup {
			return nil, errors.Errorf("keyword argument %s given twice", kw.key)
		}
		v, err := c.eval(kw.value)
		if err != nil {
			return nil, err
		}
		if t, ok := ctor.KwargType(kw.key); ok {
			v = convertConstant(kw.value, v, t)
		}
		kwargs[kw.key] = v
	}
	return ctor.Construct(args, kwargs)
}

// convertConstant gives number literals the numeric type of the field they
// are passed to, so that 1 can build a float64 field
func convertConstant(n node, v any, field adt.Type) any {
	if _, ok := n.(*litNode); !ok || v == nil || field.Instantiation() != nil {
		return v
	}
	target := field.ReflectType()
	rv := reflect.ValueOf(v)
	if !isNumeric(rv.Kind()) || !isNumeric(target.Kind()) || !rv.CanConvert(target) {
		return v
	}
	if rv.CanInt() && rv.Int() < 0 && target.Kind() >= reflect.Uint && target.Kind() <= reflect.Uintptr {
		return v
	}
	converted := rv.Convert(target)
	// reject conversions that lose information
	if !converted.CanConvert(rv.Type()) || !converted.Convert(rv.Type()).Equal(rv) {
		return v
	}
	return converted.Interface()
}

func isNumeric(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Complex128
}

func (c *compiler) compileMatch(ctx context.Context, name string, decl MatchDecl) (*compiledMatch, error) {
	v, err := c.evalSource(decl.Value)
	if err != nil {
		return nil, err
	}
	scrutinee, ok := v.(*adt.Value)
	if !ok {
		return nil, errors.Errorf("can only match ADT values, %s is a %s", decl.Value, adt.TypeNameOf(v))
	}

	visible := c.visibleValues()
	var compileErr error
	block, err := match.Declare(func(cases *match.Cases) {
		for _, cd := range decl.Cases {
			if compileErr != nil {
				return
			}
			pattern, err := c.pattern(cd.Pattern)
			if err != nil {
				compileErr = errors.Wrapf(err, "pattern %s", cd.Pattern)
				return
			}
			if err := pattern.Err(); err != nil {
				compileErr = err
				return
			}
			fields := binderTypes(pattern, scrutinee.Instantiation())
			branch, err := c.branches.compile(ctx, pattern, fields, visible, cd.Branch)
			if err != nil {
				compileErr = err
				return
			}
			cases.Case(pattern, match.Func(branch.call))
		}
	})
	if compileErr != nil {
		return nil, compileErr
	}
	if err != nil {
		return nil, err
	}
	return &compiledMatch{name: name, scrutinee: scrutinee, block: block}, nil
}

// visibleValues returns the values visible to branches, in declaration order
func (c *compiler) visibleValues() []namedValue {
	return c.program.values[:len(c.program.values):len(c.program.values)]
}

func (c *compiler) pattern(src string) (*match.Pattern, error) {
	n, err := parse(src)
	if err != nil {
		return nil, err
	}
	switch n := n.(type) {
	case *identNode:
		return match.Ctor(n.name), nil
	case *callNode:
		name, ok := n.fn.(*identNode)
		if !ok {
			return nil, errors.Errorf("patterns match constructors by name, found %s", n.fn)
		}
		binders := make([]string, len(n.args))
		for i, arg := range n.args {
			binders[i] = arg.String()
		}
		p := match.Ctor(name.name, binders...)
		for _, kw := range n.kwargs {
			p.Kw(kw.key, kw.value.String())
		}
		return p, nil
	default:
		return nil, errors.Errorf("expected a pattern like Cons(head, tail), found %s", n)
	}
}

// binderTypes returns the field type bound by each binder of p, or nil if p
// does not fit the shape of its constructor in inst. Such patterns are
// rejected when the block is validated, before any branch runs.
func binderTypes(p *match.Pattern, inst *adt.Instantiation) []adt.Type {
	ctor, ok := inst.Lookup(p.Constructor())
	if !ok {
		return nil
	}
	types, _ := p.BinderTypes(ctor)
	return types
}

// Definitions returns the declared ADTs, in declaration order
func (p *Program) Definitions() []*adt.Definition {
	return p.definitions
}

// Value returns the value declared as name
func (p *Program) Value(name string) (any, bool) {
	for _, v := range p.values {
		if v.name == name {
			return v.value, true
		}
	}
	return nil, false
}

// Validate validates every match block against the value it matches,
// without running any branch
func (p *Program) Validate() error {
	errs := &adterr.Errors{}
	for _, m := range p.matches {
		if err := m.block.Validate(m.scrutinee.Instantiation()); err != nil {
			errs = errs.With(err.(adterr.Error))
		}
	}
	if errs.HasError() {
		return errs
	}
	return nil
}

// Run runs every match in order and writes `name = result` for each of them to out
func (p *Program) Run(ctx context.Context, out io.Writer) error {
	for _, m := range p.matches {
		if err := ctx.Err(); err != nil {
			return err
		}
		result, err := m.block.Match(m.scrutinee)
		if err != nil {
			return errors.Wrapf(err, "match %s", m.name)
		}
		if _, err := fmt.Fprintf(out, "%s = %v\n", m.name, result); err != nil {
			return err
		}
	}
	return nil
}

// WriteDeclarations writes every declared ADT with its constructor
// signatures, then every value, to out
func (p *Program) WriteDeclarations(out io.Writer) error {
	var b strings.Builder
	for _, def := range p.definitions {
		b.WriteString("type ")
		b.WriteString(def.Name())
		if vars := def.TypeVars(); len(vars) > 0 {
			names := make([]string, len(vars))
			for i, v := range vars {
				names[i] = v.String()
			}
			b.WriteString("[" + strings.Join(names, ", ") + "]")
		}
		b.WriteString("\n")
		for _, sig := range def.Signatures() {
			b.WriteString("\t" + sig + "\n")
		}
	}
	for _, v := range p.values {
		fmt.Fprintf(&b, "%s = %v\n", v.name, v.value)
	}
	_, err := io.WriteString(out, b.String())
	return err
}
