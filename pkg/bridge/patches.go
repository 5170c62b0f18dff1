package bridge

import (
	"fmt"
	"io"
	"strings"

	"github.com/vango-dev/tooltip/pkg/dom/memdom"
	"github.com/vango-dev/tooltip/pkg/render"
)

// recorder turns document mutations into patches. Consecutive style
// changes to one element are merged into a single patch.
type recorder struct {
	patches []Patch
	err     error
}

func (r *recorder) record(m memdom.Mutation) {
	switch m.Kind {
	case memdom.MutationInsert:
		var b strings.Builder
		if err := writeMarkup(&b, m.Target); err != nil && r.err == nil {
			r.err = err
		}
		after := ""
		if m.After != nil {
			after = m.After.ID()
		}
		r.patches = append(r.patches, Patch{Op: OpInsert, ID: m.Target.ID(), After: after, HTML: b.String()})

	case memdom.MutationRemove:
		r.patches = append(r.patches, Patch{Op: OpRemove, ID: m.Target.ID()})

	case memdom.MutationStyle:
		// Inserted markup carries the current styles.
		if !m.Target.Connected() {
			return
		}
		p := r.styleTarget(m.Target.ID())
		if m.Removed {
			delete(p.Set, m.Style)
			p.Clear = appendUnique(p.Clear, m.Style)
			return
		}
		if p.Set == nil {
			p.Set = make(map[string]string)
		}
		p.Set[m.Style] = m.Value
		p.Clear = without(p.Clear, m.Style)
	}
}

// styleTarget returns the trailing style patch for id, appending one if
// the last patch is for something else.
func (r *recorder) styleTarget(id string) *Patch {
	if n := len(r.patches); n > 0 {
		last := &r.patches[n-1]
		if last.Op == OpStyle && last.ID == id {
			return last
		}
	}
	r.patches = append(r.patches, Patch{Op: OpStyle, ID: id})
	return &r.patches[len(r.patches)-1]
}

// flush returns the recorded patches and resets the recorder.
func (r *recorder) flush() ([]Patch, error) {
	patches, err := r.patches, r.err
	r.patches, r.err = nil, nil
	return patches, err
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}

func without(list []string, s string) []string {
	out := list[:0]
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// writeMarkup renders an element subtree. Every element carries its id so
// later patches can address it; element content is rendered before the
// child elements.
func writeMarkup(w io.Writer, e *memdom.Element) error {
	if _, err := fmt.Fprintf(w, `<%s id="%s"`, e.Tag(), render.EscapeAttr(e.ID())); err != nil {
		return err
	}
	if class := e.Class(); class != "" {
		if _, err := fmt.Fprintf(w, ` class="%s"`, render.EscapeAttr(class)); err != nil {
			return err
		}
	}
	if names := e.StyleNames(); len(names) > 0 {
		decls := make([]string, 0, len(names))
		for _, name := range names {
			v, _ := e.Style(name)
			decls = append(decls, name+": "+v)
		}
		if _, err := fmt.Fprintf(w, ` style="%s"`, render.EscapeAttr(strings.Join(decls, "; "))); err != nil {
			return err
		}
	}
	if _, err := io.WriteString(w, ">"); err != nil {
		return err
	}
	if err := render.Write(w, e.Content()); err != nil {
		return err
	}
	for _, child := range e.Children() {
		if err := writeMarkup(w, child); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "</%s>", e.Tag())
	return err
}
