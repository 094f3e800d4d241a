package parse

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/sur5r/cc65/ctype"
	"github.com/sur5r/cc65/scan"
)

type SymKind int

const (
	SymObject SymKind = iota
	SymFunction
	SymTypedef
	SymEnumerator
	SymParam
)

func (k SymKind) String() string {
	switch k {
	case SymObject:
		return "object"
	case SymFunction:
		return "function"
	case SymTypedef:
		return "typedef"
	case SymEnumerator:
		return "enumerator"
	case SymParam:
		return "parameter"
	}
	return "unknown"
}

// Symbol is an entry of the ordinary identifier namespace.
type Symbol struct {
	Name    string
	Kind    SymKind
	Type    ctype.Encoding
	Storage StorageClass
	Pos     scan.FilePos
	// Value and Prim of an enumerator.
	Value int64
	Prim  ctype.Primitive
	// DefaultType is set on old style parameters that have not been
	// declared yet.
	DefaultType bool
}

// SymbolTable holds ordinary identifiers and tags in nested scopes.
type SymbolTable interface {
	Lookup(name string) *Symbol
	LookupLocal(name string) *Symbol
	LookupTag(name string) *ctype.Tag
	LookupLocalTag(name string) *ctype.Tag
	Define(sym *Symbol) error
	DefineTag(tag *ctype.Tag) error
	Enter()
	Leave()
	// Level is 0 at file scope.
	Level() int
}

type scope struct {
	parent *scope
	kv     map[string]*Symbol
	tags   map[string]*ctype.Tag
}

func newScope(parent *scope) *scope {
	ret := &scope{}
	ret.parent = parent
	ret.kv = make(map[string]*Symbol)
	ret.tags = make(map[string]*ctype.Tag)
	return ret
}

func (s *scope) lookup(k string) *Symbol {
	sym, ok := s.kv[k]
	if ok {
		return sym
	}
	if s.parent != nil {
		return s.parent.lookup(k)
	}
	return nil
}

func (s *scope) lookupTag(k string) *ctype.Tag {
	tag, ok := s.tags[k]
	if ok {
		return tag
	}
	if s.parent != nil {
		return s.parent.lookupTag(k)
	}
	return nil
}

func (s *scope) define(sym *Symbol) error {
	old, ok := s.kv[sym.Name]
	if !ok {
		s.kv[sym.Name] = sym
		return nil
	}
	if old.Kind != sym.Kind {
		return errors.Errorf("Symbol '%s' is already different kind", sym.Name)
	}
	switch old.Kind {
	case SymEnumerator, SymParam:
		return errors.Errorf("Redefinition of '%s'", sym.Name)
	}
	if !old.Type.Equal(sym.Type) {
		return errors.Errorf("Conflicting types for '%s'", sym.Name)
	}
	// A compatible redeclaration keeps the first entry.
	return nil
}

func (s *scope) String() string {
	str := ""
	if s.parent != nil {
		str += s.parent.String() + "\n"
	}
	names := make([]string, 0, len(s.kv))
	for k := range s.kv {
		names = append(names, k)
	}
	sort.Strings(names)
	str += fmt.Sprintf("[%s]", strings.Join(names, " "))
	return str
}

// Scopes is the default SymbolTable.
type Scopes struct {
	cur   *scope
	level int
	// File scope symbols in definition order.
	globals []*Symbol
}

func NewScopes() *Scopes {
	return &Scopes{cur: newScope(nil)}
}

func (s *Scopes) Lookup(name string) *Symbol {
	return s.cur.lookup(name)
}

func (s *Scopes) LookupLocal(name string) *Symbol {
	return s.cur.kv[name]
}

func (s *Scopes) LookupTag(name string) *ctype.Tag {
	return s.cur.lookupTag(name)
}

func (s *Scopes) LookupLocalTag(name string) *ctype.Tag {
	return s.cur.tags[name]
}

func (s *Scopes) Define(sym *Symbol) error {
	_, existed := s.cur.kv[sym.Name]
	if err := s.cur.define(sym); err != nil {
		return err
	}
	if s.level == 0 && !existed {
		s.globals = append(s.globals, sym)
	}
	return nil
}

func (s *Scopes) DefineTag(tag *ctype.Tag) error {
	if _, ok := s.cur.tags[tag.Name]; ok {
		return errors.Errorf("Multiple definition for '%s'", tag)
	}
	s.cur.tags[tag.Name] = tag
	return nil
}

func (s *Scopes) Enter() {
	s.cur = newScope(s.cur)
	s.level++
}

func (s *Scopes) Leave() {
	if s.cur.parent == nil {
		panic("internal error - leaving file scope")
	}
	s.cur = s.cur.parent
	s.level--
}

func (s *Scopes) Level() int {
	return s.level
}

// Globals returns the file scope symbols in the order they were defined.
func (s *Scopes) Globals() []*Symbol {
	return s.globals
}

func (s *Scopes) String() string {
	return s.cur.String()
}
