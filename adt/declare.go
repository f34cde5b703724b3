package adt

import (
	"fmt"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/cottand/adt/adterr"
	"github.com/cottand/adt/internal/log"
	"github.com/hashicorp/go-set/v3"
)

var logger = log.DefaultLogger.With("section", "adt")

// ReservedPrefix may not start the name of a constructor keyword argument
const ReservedPrefix = "_"

// Keyword is a named field of a constructor
type Keyword struct {
	Key  string
	Type Descriptor
}

// ConstructorSpec is a constructor as it was declared, with
// its field descriptors still unresolved.
//
// It is immutable once the declaration it belongs to has closed.
type ConstructorSpec struct {
	name   string
	args   []Descriptor
	kwargs []Keyword
	// decl is set only while the declaration body runs
	decl *Decl
}

func (*ConstructorSpec) Kind() Kind    { return KindConstructor }
func (*ConstructorSpec) isDescriptor() {}

func (c *ConstructorSpec) Name() string { return c.name }

func (c *ConstructorSpec) Args() []Descriptor {
	return slices.Clone(c.args)
}

func (c *ConstructorSpec) Kwargs() []Keyword {
	return slices.Clone(c.kwargs)
}

// KwargKeys returns the keyword names in declaration order
func (c *ConstructorSpec) KwargKeys() []string {
	keys := make([]string, len(c.kwargs))
	for i, kw := range c.kwargs {
		keys[i] = kw.Key
	}
	return keys
}

// Kw adds the keyword field key to the constructor.
// It may only be called from within the declaration body.
func (c *ConstructorSpec) Kw(key string, t Descriptor) *ConstructorSpec {
	if c.decl == nil {
		panic(fmt.Sprintf("adt: keyword %q added to constructor %s after its declaration closed", key, c.name))
	}
	if strings.HasPrefix(key, ReservedPrefix) {
		c.decl.fail(c.name, fmt.Sprintf("constructor keyword argument names may not begin with an underscore: %q", key))
		return c
	}
	if key == "" {
		c.decl.fail(c.name, "constructor keyword argument names may not be empty")
		return c
	}
	if slices.ContainsFunc(c.kwargs, func(kw Keyword) bool { return kw.Key == key }) {
		c.decl.fail(c.name, fmt.Sprintf("duplicate keyword argument: %q", key))
		return c
	}
	c.kwargs = append(c.kwargs, Keyword{Key: key, Type: t})
	return c
}

func (c *ConstructorSpec) String() string {
	sb := strings.Builder{}
	sb.WriteString(c.name)
	sb.WriteString("(")
	sb.WriteString(showDescriptors(c.args))
	if len(c.args) > 0 && len(c.kwargs) > 0 {
		sb.WriteString(", ")
	}
	for i, kw := range c.kwargs {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(kw.Key)
		sb.WriteString("=")
		sb.WriteString(showDescriptors([]Descriptor{kw.Type}))
	}
	sb.WriteString(")")
	return sb.String()
}

func (c *ConstructorSpec) descriptors() []Descriptor {
	all := slices.Clone(c.args)
	for _, kw := range c.kwargs {
		all = append(all, kw.Type)
	}
	return all
}

// Decl is handed to the body of Declare to register constructors
type Decl struct {
	name         string
	constructors []*ConstructorSpec
	names        *set.Set[string]
	errs         *adterr.Errors
}

func (d *Decl) fail(subject, message string) {
	d.errs = d.errs.With(adterr.New(adterr.Declaration{Subject: subject, Message: message}))
}

// Constructor registers the constructor name with the given positional field types.
// Keyword fields are added with Kw on the result.
func (d *Decl) Constructor(name string, args ...Descriptor) *ConstructorSpec {
	spec := &ConstructorSpec{name: name, args: args, decl: d}
	if !isUpperIdent(name) {
		d.fail(d.name, fmt.Sprintf("constructor names must start with an uppercase letter: %q", name))
		return spec
	}
	if !d.names.Insert(name) {
		d.fail(d.name, fmt.Sprintf("duplicate constructor: %q", name))
		return spec
	}
	d.constructors = append(d.constructors, spec)
	return spec
}

// Self refers to the ADT being declared, parametrized with args
func (d *Decl) Self(args ...Descriptor) Recursive {
	return Ref(d.name, args...)
}

// Name is the name of the ADT being declared
func (d *Decl) Name() string {
	return d.name
}

// Declare builds an ADT Definition named name out of the constructors
// registered by body. body runs exactly once.
//
// Every problem found in the declaration is reported in the returned error,
// which is an *adterr.Errors. Non-parametric ADTs are parametrized straight
// away, so that def.Of() never fails for them.
func Declare(name string, body func(d *Decl)) (*Definition, error) {
	if !isUpperIdent(name) {
		return nil, adterr.New(adterr.Declaration{
			Message: fmt.Sprintf("ADT names must start with an uppercase letter: %q", name),
		})
	}
	d := &Decl{name: name, names: set.New[string](0)}
	if body != nil {
		body(d)
	}
	for _, c := range d.constructors {
		c.decl = nil
	}

	typeVars := collectTypeVars(d.constructors)
	errs := d.errs.Merge(validateConstructors(name, d.constructors, len(typeVars)))
	if errs.HasError() {
		logger.Debug("rejected declaration", "adt", name, "errors", errs)
		return nil, errs
	}

	def := &Definition{
		name:         name,
		typeVars:     typeVars,
		constructors: d.constructors,
	}
	logger.Debug("declared ADT", "adt", name, "typeVars", len(typeVars), "constructors", len(d.constructors))
	if len(typeVars) == 0 {
		if _, err := def.Of(); err != nil {
			return nil, err
		}
	}
	return def, nil
}

// MustDeclare is like Declare but panics if the declaration is invalid.
// It simplifies the declaration of ADTs in package-level variables.
func MustDeclare(name string, body func(d *Decl)) *Definition {
	def, err := Declare(name, body)
	if err != nil {
		panic(fmt.Sprintf("adt: Declare(%q): %v", name, err))
	}
	return def
}

// collectTypeVars returns every type variable used by constructors, sorted
func collectTypeVars(constructors []*ConstructorSpec) []TypeVar {
	seen := set.New[TypeVar](0)
	var visit func(d Descriptor)
	visit = func(d Descriptor) {
		switch d := d.(type) {
		case TypeVar:
			seen.Insert(d)
		case Recursive:
			for _, arg := range d.args {
				visit(arg)
			}
		}
	}
	for _, c := range constructors {
		for _, d := range c.descriptors() {
			visit(d)
		}
	}
	vars := seen.Slice()
	slices.SortFunc(vars, func(a, b TypeVar) int { return a.index - b.index })
	return vars
}

func validateConstructors(adtName string, constructors []*ConstructorSpec, nTypeVars int) *adterr.Errors {
	var errs *adterr.Errors
	fail := func(c *ConstructorSpec, format string, args ...any) {
		errs = errs.With(adterr.New(adterr.Declaration{
			Subject: c.String(),
			Message: fmt.Sprintf(format, args...),
		}))
	}
	for _, c := range constructors {
		for _, t := range c.descriptors() {
			switch t := t.(type) {
			case nil:
				fail(c, "nil field type")
			case Type:
				if t.IsZero() {
					fail(c, "invalid concrete field type")
				}
			case TypeVar:
				if !t.valid() {
					fail(c, "invalid type variable %s, type variables range from _1 to _%d", t, MaxTypeVars)
				}
			case Recursive:
				if t.name != adtName {
					fail(c, "recursive type name must be the same as the type name, %q != %q", t.name, adtName)
					continue
				}
				if len(t.args) != nTypeVars {
					fail(c, "recursive reference %s takes %d type arguments but %s declares %d", t, len(t.args), adtName, nTypeVars)
				}
				for _, arg := range t.args {
					switch arg := arg.(type) {
					case TypeVar:
						if !arg.valid() {
							fail(c, "invalid type variable %s in %s", arg, t)
						}
					case Type:
						if arg.IsZero() {
							fail(c, "invalid concrete type argument in %s", t)
						}
					default:
						fail(c, "recursive type arguments must be type variables or concrete types, got %s", showDescriptors([]Descriptor{arg}))
					}
				}
			case *ConstructorSpec:
				fail(c, "constructor %s has arguments that are other constructors", c)
			}
		}
	}
	return errs
}

func isUpperIdent(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return r != utf8.RuneError && unicode.IsUpper(r)
}
