package checklist

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrUnknownPath    = errors.New("unknown checklist path")
	ErrInvalidVerdict = errors.New("invalid verdict")
	ErrNotVerdictPath = errors.New("path has no verdict")
)

type Leaf struct {
	Verdict Verdict `json:"status"`
	Comment string  `json:"comment"`
}

// History is the verdict-less product history section.
type History struct {
	EffectiveDate string `json:"dateMiseEnService"`
	Comment       string `json:"comment"`
}

// Tree holds one leaf per template path. Trees are values: every update
// returns a new Tree and leaves the receiver untouched.
type Tree struct {
	Type     EquipmentType
	History  History
	Sections map[string]map[string]Leaf
}

// NewTree returns a tree with every leaf at its template default.
func NewTree(tmpl *Template) Tree {
	return Hydrate(nil, tmpl)
}

// Hydrate builds a complete tree from a possibly partial stored object. Every
// template path is copied when the stored leaf carries a known verdict code and
// replaced by the template default otherwise. Keys the template does not know
// are dropped.
func Hydrate(raw map[string]any, tmpl *Template) Tree {
	t := Tree{Type: tmpl.Type, Sections: make(map[string]map[string]Leaf, len(tmpl.Sections))}
	if hist, ok := raw[HistorySection].(map[string]any); ok {
		t.History.EffectiveDate, _ = hist["dateMiseEnService"].(string)
		t.History.Comment, _ = hist["comment"].(string)
	}
	for _, s := range tmpl.Sections {
		rawSection, _ := raw[s.Name].(map[string]any)
		leaves := make(map[string]Leaf, len(s.Leaves))
		for _, l := range s.Leaves {
			leaves[l.Name] = hydrateLeaf(rawSection[l.Name], l)
		}
		t.Sections[s.Name] = leaves
	}
	return t
}

func hydrateLeaf(raw any, spec LeafSpec) Leaf {
	m, ok := raw.(map[string]any)
	if !ok {
		return Leaf{Verdict: spec.Default}
	}
	code, _ := m["status"].(string)
	v := Verdict(code)
	if !v.Valid() {
		return Leaf{Verdict: spec.Default}
	}
	comment, _ := m["comment"].(string)
	return Leaf{Verdict: v, Comment: comment}
}

// HydrateJSON decodes stored checklist JSON and hydrates it. Empty or
// undecodable input yields the all-defaults tree.
func HydrateJSON(data []byte, tmpl *Template) Tree {
	raw, err := DecodeRaw(data)
	if err != nil {
		return NewTree(tmpl)
	}
	return Hydrate(raw, tmpl)
}

func DecodeRaw(data []byte) (map[string]any, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return map[string]any{}, nil
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode checklist: %w", err)
	}
	if raw == nil {
		raw = map[string]any{}
	}
	return raw, nil
}

func (t Tree) template() *Template {
	tmpl, err := TemplateFor(t.Type)
	if err != nil {
		return nil
	}
	return tmpl
}

// Leaf returns the stored leaf, or the template default when absent.
func (t Tree) Leaf(p FieldPath) Leaf {
	if section, leaf, ok := p.Split(); ok {
		if l, ok := t.Sections[section][leaf]; ok {
			return l
		}
	}
	if tmpl := t.template(); tmpl != nil {
		return tmpl.DefaultLeaf(p)
	}
	return Leaf{Verdict: VerdictValid}
}

// SetVerdict returns a copy of t with the leaf at p replaced. A nil comment
// keeps the existing comment.
func (t Tree) SetVerdict(p FieldPath, v Verdict, comment *string) (Tree, error) {
	if p.IsHistory() {
		return t, ErrNotVerdictPath
	}
	if !v.Valid() {
		return t, fmt.Errorf("%w: %q", ErrInvalidVerdict, v)
	}
	section, leaf, err := t.resolve(p)
	if err != nil {
		return t, err
	}
	next := t.Clone()
	prev := t.Leaf(p)
	l := Leaf{Verdict: v, Comment: prev.Comment}
	if comment != nil {
		l.Comment = *comment
	}
	next.Sections[section][leaf] = l
	return next, nil
}

// SetComment writes a comment without touching the verdict. The history
// comment path is handled here rather than through verdict lookup.
func (t Tree) SetComment(p FieldPath, comment string) (Tree, error) {
	if p.IsHistory() {
		next := t.Clone()
		next.History.Comment = comment
		return next, nil
	}
	return t.SetVerdict(p, t.Leaf(p).Verdict, &comment)
}

// Comment reads the comment at p, including the history comment path.
func (t Tree) Comment(p FieldPath) (string, error) {
	if p.IsHistory() {
		return t.History.Comment, nil
	}
	if _, _, err := t.resolve(p); err != nil {
		return "", err
	}
	return t.Leaf(p).Comment, nil
}

func (t Tree) resolve(p FieldPath) (string, string, error) {
	section, leaf, ok := p.Split()
	if !ok {
		return "", "", fmt.Errorf("%w: %q", ErrUnknownPath, p)
	}
	tmpl := t.template()
	if tmpl == nil {
		return "", "", fmt.Errorf("%w: %q", ErrUnknownPath, p)
	}
	if _, ok := tmpl.Leaf(p); !ok {
		return "", "", fmt.Errorf("%w: %q", ErrUnknownPath, p)
	}
	return section, leaf, nil
}

func (t Tree) Clone() Tree {
	out := Tree{Type: t.Type, History: t.History, Sections: make(map[string]map[string]Leaf, len(t.Sections))}
	for name, leaves := range t.Sections {
		cp := make(map[string]Leaf, len(leaves))
		for k, v := range leaves {
			cp[k] = v
		}
		out.Sections[name] = cp
	}
	return out
}

// Raw renders the tree in its stored shape.
func (t Tree) Raw() map[string]any {
	out := make(map[string]any, len(t.Sections)+1)
	out[HistorySection] = map[string]any{
		"dateMiseEnService": t.History.EffectiveDate,
		"comment":           t.History.Comment,
	}
	for name, leaves := range t.Sections {
		sec := make(map[string]any, len(leaves))
		for k, l := range leaves {
			sec[k] = map[string]any{"status": string(l.Verdict), "comment": l.Comment}
		}
		out[name] = sec
	}
	return out
}

func (t Tree) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Raw())
}

// Count tallies verdicts across all leaves.
func (t Tree) Count() map[Verdict]int {
	out := map[Verdict]int{}
	for _, leaves := range t.Sections {
		for _, l := range leaves {
			out[l.Verdict]++
		}
	}
	return out
}
