package adterr

import (
	"fmt"
	"runtime/debug"
	"strings"
)

// enableDebugErrorPrinting makes errors include the frame they were created at when printed
const enableDebugErrorPrinting bool = false
const enableDebugFullStacktrace bool = false

type ErrCode int

const (
	None ErrCode = iota
	DeclarationErr
	ArityErr
	KeyMismatchErr
	TypeMismatchErr
	DirectInstantiationErr
	ParametrizationCountErr
	MatchValidationErr
	NameResolutionErr
	NoMatchErr
)

func (c ErrCode) String() string {
	switch c {
	case DeclarationErr:
		return "declaration"
	case ArityErr:
		return "arity"
	case KeyMismatchErr:
		return "keyword mismatch"
	case TypeMismatchErr:
		return "type mismatch"
	case DirectInstantiationErr:
		return "direct instantiation"
	case ParametrizationCountErr:
		return "parametrization count"
	case MatchValidationErr:
		return "match validation"
	case NameResolutionErr:
		return "name resolution"
	case NoMatchErr:
		return "no match"
	default:
		return "unclassified"
	}
}

// Error is implemented by every failure raised by the adt and match engines.
// All of them are raised at the point of detection and never recovered internally.
type Error interface {
	Error() string
	Code() ErrCode

	withStack([]byte) Error
	getStack() []byte
}

func FormatWithCode(e Error) string {
	if enableDebugErrorPrinting && e.getStack() != nil {
		stack := string(e.getStack())
		if !enableDebugFullStacktrace {
			lines := strings.Split(stack, "\n")
			if len(lines) > 6 {
				stack = lines[6]
			}
		}
		return fmt.Sprintf("%s:(E%03d) %s", stack, e.Code(), e.Error())
	}
	return fmt.Sprintf("(E%03d) %s", e.Code(), e.Error())
}

func New[E Error](err E) Error {
	return err.withStack(debug.Stack())
}

// Stack returns the stack trace captured when e was created through New, if any
func Stack(e Error) []byte {
	return e.getStack()
}

// Declaration is raised while an ADT or a match block is being declared:
// duplicate constructors, reserved keyword names, bad recursive references...
type Declaration struct {
	// Subject is the ADT, constructor or pattern the problem was found in
	Subject string
	Message string
	stack   []byte
}

func (e Declaration) Error() string {
	if e.Subject == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Subject, e.Message)
}
func (e Declaration) Code() ErrCode    { return DeclarationErr }
func (e Declaration) getStack() []byte { return e.stack }
func (e Declaration) withStack(stack []byte) Error {
	e.stack = stack
	return e
}

type Arity struct {
	Constructor string
	Expected    int
	Got         int
	stack       []byte
}

func (e Arity) Error() string {
	return fmt.Sprintf("%s takes %d positional arguments but %d were given", e.Constructor, e.Expected, e.Got)
}
func (e Arity) Code() ErrCode    { return ArityErr }
func (e Arity) getStack() []byte { return e.stack }
func (e Arity) withStack(stack []byte) Error {
	e.stack = stack
	return e
}

type KeyMismatch struct {
	Constructor string
	// Expected and Got are sorted
	Expected []string
	Got      []string
	stack    []byte
}

func (e KeyMismatch) Error() string {
	return fmt.Sprintf("%s: mismatched keyword arguments, expected %s, got %s", e.Constructor, ShowKeys(e.Expected), ShowKeys(e.Got))
}
func (e KeyMismatch) Code() ErrCode    { return KeyMismatchErr }
func (e KeyMismatch) getStack() []byte { return e.stack }
func (e KeyMismatch) withStack(stack []byte) Error {
	e.stack = stack
	return e
}

// ResultPosition is the Position of a TypeMismatch raised for the result of a match
const ResultPosition = -1

type TypeMismatch struct {
	Constructor string
	// Key is empty for positional arguments
	Key      string
	Position int
	Expected string
	Actual   string
	Value    any
	stack    []byte
}

func (e TypeMismatch) Error() string {
	if e.Position == ResultPosition {
		return fmt.Sprintf("%s: expected a match result of type '%s', got '%s': %v", e.Constructor, e.Expected, e.Actual, e.Value)
	}
	if e.Key != "" {
		return fmt.Sprintf("%s: expected type '%s' for argument at '%s', got '%s': %v", e.Constructor, e.Expected, e.Key, e.Actual, e.Value)
	}
	return fmt.Sprintf("%s: expected type '%s' for argument at position %d, got '%s': %v", e.Constructor, e.Expected, e.Position, e.Actual, e.Value)
}
func (e TypeMismatch) Code() ErrCode    { return TypeMismatchErr }
func (e TypeMismatch) getStack() []byte { return e.stack }
func (e TypeMismatch) withStack(stack []byte) Error {
	e.stack = stack
	return e
}

type DirectInstantiation struct {
	ADT string
	// Constructors are the full signatures, in declaration order
	Constructors []string
	stack        []byte
}

func (e DirectInstantiation) Error() string {
	return fmt.Sprintf("%s is an ADT which can only be instantiated through constructors: (%s)", e.ADT, strings.Join(e.Constructors, ", "))
}
func (e DirectInstantiation) Code() ErrCode    { return DirectInstantiationErr }
func (e DirectInstantiation) getStack() []byte { return e.stack }
func (e DirectInstantiation) withStack(stack []byte) Error {
	e.stack = stack
	return e
}

type ParametrizationCount struct {
	ADT      string
	Expected int
	Got      []string
	stack    []byte
}

func (e ParametrizationCount) Error() string {
	return fmt.Sprintf("%s: expected %d types, got %d: [%s]", e.ADT, e.Expected, len(e.Got), strings.Join(e.Got, ", "))
}
func (e ParametrizationCount) Code() ErrCode    { return ParametrizationCountErr }
func (e ParametrizationCount) getStack() []byte { return e.stack }
func (e ParametrizationCount) withStack(stack []byte) Error {
	e.stack = stack
	return e
}

type MatchValidation struct {
	Constructor string
	ADT         string
	Reason      string
	stack       []byte
}

func (e MatchValidation) Error() string {
	return fmt.Sprintf("invalid alternative for '%s' constructor of %s: %s", e.Constructor, e.ADT, e.Reason)
}
func (e MatchValidation) Code() ErrCode    { return MatchValidationErr }
func (e MatchValidation) getStack() []byte { return e.stack }
func (e MatchValidation) withStack(stack []byte) Error {
	e.stack = stack
	return e
}

type NameResolution struct {
	Name string
	// Pattern is the pattern whose branch failed to resolve Name, may be ""
	Pattern string
	Detail  string
	stack   []byte
}

func (e NameResolution) Error() string {
	msg := fmt.Sprintf("name '%s' is not defined", e.Name)
	if e.Name == "" {
		msg = "unresolved names in branch"
	}
	if e.Pattern != "" {
		msg = fmt.Sprintf("%s (in branch of %s)", msg, e.Pattern)
	}
	if e.Detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Detail)
	}
	return msg
}
func (e NameResolution) Code() ErrCode    { return NameResolutionErr }
func (e NameResolution) getStack() []byte { return e.stack }
func (e NameResolution) withStack(stack []byte) Error {
	e.stack = stack
	return e
}

type NoMatch struct {
	Scrutinee string
	Tried     []string
	stack     []byte
}

func (e NoMatch) Error() string {
	return fmt.Sprintf("no alternatives matched the given scrutinee: %s, tried the following constructors:\n%s", e.Scrutinee, strings.Join(e.Tried, "\n"))
}
func (e NoMatch) Code() ErrCode    { return NoMatchErr }
func (e NoMatch) getStack() []byte { return e.stack }
func (e NoMatch) withStack(stack []byte) Error {
	e.stack = stack
	return e
}

// ShowKeys renders a sorted key set as {a, b}
func ShowKeys(keys []string) string {
	return "{" + strings.Join(keys, ", ") + "}"
}
