// Package emit lists parsed declarations, either as text or as JSON.
package emit

import (
	"fmt"
	"io"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/sur5r/cc65/ctype"
	"github.com/sur5r/cc65/parse"
)

// Entry is one declared name.
type Entry struct {
	Name       string   `json:"name"`
	Storage    string   `json:"storage,omitempty"`
	Decl       string   `json:"decl"`
	Type       string   `json:"type"`
	Size       int64    `json:"size"`
	Pos        string   `json:"pos"`
	Definition bool     `json:"definition,omitempty"`
	Init       bool     `json:"init,omitempty"`
	Attributes []string `json:"attributes,omitempty"`
}

// Member is a field of a struct or union, or an enumerator.
type Member struct {
	Name      string `json:"name"`
	Type      string `json:"type,omitempty"`
	Offset    int    `json:"offset"`
	BitOffset int    `json:"bit_offset,omitempty"`
	BitWidth  int    `json:"bit_width,omitempty"`
	Value     *int64 `json:"value,omitempty"`
}

// TagEntry is a struct, union or enum defined in the file.
type TagEntry struct {
	Tag        string   `json:"tag"`
	Size       int      `json:"size"`
	Underlying string   `json:"underlying,omitempty"`
	Members    []Member `json:"members"`
}

// Listing is everything a translation unit declared, in source order.
type Listing struct {
	Tags     []TagEntry `json:"tags"`
	Decls    []Entry    `json:"decls"`
	Errors   int        `json:"errors"`
	Warnings int        `json:"warnings"`
}

// Collect builds the listing of tu. Declarators that only exist because of
// errors are left out.
func Collect(tu *parse.TranslationUnit, target *ctype.Target) *Listing {
	l := &Listing{
		Tags:     []TagEntry{},
		Decls:    []Entry{},
		Errors:   tu.Errors,
		Warnings: tu.Warnings,
	}
	seen := map[*ctype.Tag]bool{}
	for _, decl := range tu.Decls {
		if decl.Spec.Flags.NewTypeDef {
			for _, tag := range definedTags(decl.Spec.Type) {
				if !seen[tag] {
					seen[tag] = true
					l.Tags = append(l.Tags, tagEntry(tag))
				}
			}
		}
		for i, d := range decl.Decls {
			if d.Anonymous || d.Storage&parse.SCFictitious != 0 {
				continue
			}
			// Only storage classes written in source are listed.
			sc := d.Storage.Class()
			if decl.Spec.Flags.DefStorage {
				sc = parse.SCNone
			}
			if d.Storage&parse.SCInline != 0 {
				sc |= parse.SCInline
			}
			e := Entry{
				Name:       d.Ident,
				Storage:    sc.String(),
				Decl:       d.Type.Declare(d.Ident),
				Type:       d.Type.String(),
				Pos:        d.Pos.String(),
				Definition: decl.Body && i == 0,
				Init:       decl.Inits[i],
			}
			if !d.Type.IsFunc() {
				e.Size = target.SizeOf(d.Type)
			}
			for _, a := range d.Attributes {
				e.Attributes = append(e.Attributes, attributeString(a))
			}
			l.Decls = append(l.Decls, e)
		}
	}
	return l
}

// definedTags returns the tag of a specifier together with the anonymous
// tags nested in it.
func definedTags(e ctype.Encoding) []*ctype.Tag {
	tag := e.Base().Tag
	if tag == nil || !tag.Defined {
		return nil
	}
	ret := []*ctype.Tag{tag}
	for _, f := range tag.Fields {
		if f.Anonymous {
			ret = append(ret, definedTags(f.Type)...)
		}
	}
	return ret
}

func tagEntry(tag *ctype.Tag) TagEntry {
	te := TagEntry{
		Tag:     tag.String(),
		Size:    tag.Size,
		Members: []Member{},
	}
	if tag.Kind == ctype.Enum {
		te.Underlying = tag.Underlying.String()
		for _, en := range tag.Enumerators {
			v := en.Value
			te.Members = append(te.Members, Member{Name: en.Name, Type: en.Type.String(), Value: &v})
		}
		return te
	}
	for _, f := range tag.Fields {
		name := f.Name
		if f.Anonymous {
			name = ""
		}
		te.Members = append(te.Members, Member{
			Name:      name,
			Type:      f.Type.Declare(""),
			Offset:    f.Offset,
			BitOffset: f.BitOffset,
			BitWidth:  f.BitWidth,
		})
	}
	return te
}

func attributeString(a parse.Attribute) string {
	if len(a.Args) == 0 {
		return a.Name
	}
	return a.Name + "(" + strings.Join(a.Args, ", ") + ")"
}

type emitter struct {
	o   io.Writer
	err error
}

func (e *emitter) emit(s string, args ...interface{}) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.o, s, args...)
}

func (e *emitter) emiti(s string, args ...interface{}) {
	e.emit("  "+s, args...)
}

// Text writes the listing with one line per tag member and declarator.
func Text(l *Listing, o io.Writer) error {
	e := &emitter{o: o}
	for _, t := range l.Tags {
		e.emitTag(t)
	}
	for _, d := range l.Decls {
		e.emitDecl(d)
	}
	return errors.Wrap(e.err, "writing listing")
}

func (e *emitter) emitTag(t TagEntry) {
	if t.Underlying != "" {
		e.emit("%s size %d underlying %s\n", t.Tag, t.Size, t.Underlying)
	} else {
		e.emit("%s size %d\n", t.Tag, t.Size)
	}
	for _, m := range t.Members {
		switch {
		case m.Value != nil:
			e.emiti("%s = %d\n", m.Name, *m.Value)
		case m.BitWidth != 0:
			e.emiti("+%d.%d:%d %s %s\n", m.Offset, m.BitOffset, m.BitWidth, m.Name, m.Type)
		case m.Name == "":
			e.emiti("+%d %s\n", m.Offset, m.Type)
		default:
			e.emiti("+%d %s %s\n", m.Offset, m.Name, m.Type)
		}
	}
}

func (e *emitter) emitDecl(d Entry) {
	var extra []string
	if d.Definition {
		extra = append(extra, "definition")
	}
	if d.Init {
		extra = append(extra, "initialized")
	}
	extra = append(extra, d.Attributes...)
	if d.Storage != "" {
		e.emit("%s ", d.Storage)
	}
	e.emit("%s; // %s", d.Decl, d.Type)
	if len(extra) > 0 {
		e.emit(" [%s]", strings.Join(extra, ", "))
	}
	e.emit("\n")
}

// JSON writes the listing as indented JSON.
func JSON(l *Listing, o io.Writer) error {
	enc := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(o)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(l), "encoding listing")
}
