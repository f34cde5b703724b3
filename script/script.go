// Package script runs declarative ADT scripts: a YAML document declaring
// ADTs, building values out of their constructors, and matching those values
// against blocks of alternatives whose branches are Go code.
//
//	types:
//	  - name: List
//	    constructors: ["Nil()", "Cons(_1, List[_1])"]
//	values:
//	  - name: ls
//	    expr: List[int].Cons(1, List[int].Nil())
//	matches:
//	  - name: head
//	    value: ls
//	    cases:
//	      - pattern: Nil()
//	        branch: 0
//	      - pattern: Cons(h, _)
//	        branch: h
package script

import (
	"fmt"
	"go/token"
	"io"
	"os"
	"strings"

	"github.com/cottand/adt/internal/log"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

var logger = log.DefaultLogger.With("section", "script")

// Script is a parsed, not yet compiled, script document
type Script struct {
	Path    string      `yaml:"-"`
	Types   []TypeDecl  `yaml:"types"`
	Values  []ValueDecl `yaml:"values"`
	Matches []MatchDecl `yaml:"matches"`
}

// TypeDecl declares the ADT Name. Each constructor is a signature like
// Cons(_1, List[_1]) or A(a=_1, b=_1).
type TypeDecl struct {
	Name         string   `yaml:"name"`
	Constructors []string `yaml:"constructors"`
}

// ValueDecl binds Name to the value of Expr, like List[int].Nil()
type ValueDecl struct {
	Name string `yaml:"name"`
	Expr string `yaml:"expr"`
}

// MatchDecl matches the value of Value against Cases, in order
type MatchDecl struct {
	Name  string     `yaml:"name"`
	Value string     `yaml:"value"`
	Cases []CaseDecl `yaml:"cases"`
}

// CaseDecl is one alternative. Branch is a Go expression, or a Go function
// body, which can refer to the binders of Pattern and to every value
// declared before the match.
type CaseDecl struct {
	Pattern string `yaml:"pattern"`
	Branch  string `yaml:"branch"`
}

// ValidationError lists every structural problem of a script document
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString("script validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

// LoadFile reads and validates the script at path
func LoadFile(path string) (*Script, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "script: open")
	}
	defer file.Close()
	s, err := Load(file)
	if err != nil {
		return nil, errors.Wrapf(err, "script %s", path)
	}
	s.Path = path
	return s, nil
}

// Load reads and validates a script document from r. Unknown fields are rejected.
func Load(r io.Reader) (*Script, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var s Script
	if err := decoder.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("script is empty")
		}
		return nil, errors.Wrap(err, "parse")
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Script) validate() error {
	var errs ValidationError
	seenTypes := make(map[string]bool, len(s.Types))
	for i, t := range s.Types {
		if t.Name == "" {
			errs.Issues = append(errs.Issues, fmt.Sprintf("types[%d] must have a name", i))
			continue
		}
		if seenTypes[t.Name] {
			errs.Issues = append(errs.Issues, fmt.Sprintf("type %s is declared twice", t.Name))
		}
		if _, builtin := builtinTypes[t.Name]; builtin {
			errs.Issues = append(errs.Issues, fmt.Sprintf("type %s shadows a builtin type", t.Name))
		}
		seenTypes[t.Name] = true
	}

	seenValues := make(map[string]bool, len(s.Values))
	for i, v := range s.Values {
		if !token.IsIdentifier(v.Name) {
			errs.Issues = append(errs.Issues, fmt.Sprintf("values[%d] has invalid name %q", i, v.Name))
			continue
		}
		if importedPackages.Contains(v.Name) {
			errs.Issues = append(errs.Issues, fmt.Sprintf("value %s shadows the %s package in branches", v.Name, v.Name))
		}
		if seenValues[v.Name] {
			errs.Issues = append(errs.Issues, fmt.Sprintf("value %s is declared twice", v.Name))
		}
		if v.Expr == "" {
			errs.Issues = append(errs.Issues, fmt.Sprintf("value %s must have an expr", v.Name))
		}
		seenValues[v.Name] = true
	}

	for i, m := range s.Matches {
		name := m.Name
		if name == "" {
			name = fmt.Sprintf("matches[%d]", i)
		}
		if m.Value == "" {
			errs.Issues = append(errs.Issues, fmt.Sprintf("%s must have a value to match", name))
		}
		for j, c := range m.Cases {
			if c.Pattern == "" {
				errs.Issues = append(errs.Issues, fmt.Sprintf("%s.cases[%d] must have a pattern", name, j))
			}
		}
	}

	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}
