package checklist

import (
	"fmt"
	"strings"
)

// EquipmentType selects the checklist template of a record. The set is closed.
type EquipmentType string

const (
	TypeHarness EquipmentType = "harnais"
	TypeHelmet  EquipmentType = "casque"
)

func ParseEquipmentType(raw string) (EquipmentType, error) {
	switch EquipmentType(strings.ToLower(strings.TrimSpace(raw))) {
	case TypeHarness, "harness":
		return TypeHarness, nil
	case TypeHelmet, "helmet":
		return TypeHelmet, nil
	default:
		return "", fmt.Errorf("unknown equipment type %q", raw)
	}
}

type LeafSpec struct {
	Name         string
	Label        string
	Instructions string
	Default      Verdict
	// Visible reports whether the verdict control is shown for this type. The
	// leaf is part of the data model either way.
	Visible bool
}

type SectionSpec struct {
	Name   string
	Title  string
	Leaves []LeafSpec
}

type Template struct {
	Type     EquipmentType
	Title    string
	Sections []SectionSpec

	leaves map[FieldPath]LeafSpec
}

func newTemplate(t EquipmentType, title string, sections ...SectionSpec) *Template {
	tmpl := &Template{Type: t, Title: title, Sections: sections, leaves: map[FieldPath]LeafSpec{}}
	for _, s := range sections {
		if s.Name == HistorySection {
			panic("checklist: history section is implicit")
		}
		for _, l := range s.Leaves {
			p := Build(s.Name, l.Name)
			if _, dup := tmpl.leaves[p]; dup {
				panic("checklist: duplicate leaf " + string(p))
			}
			if !l.Default.Valid() {
				panic("checklist: bad default for " + string(p))
			}
			tmpl.leaves[p] = l
		}
	}
	return tmpl
}

// SectionCount includes the history section.
func (t *Template) SectionCount() int { return len(t.Sections) + 1 }

// Paths lists every verdict-bearing leaf in template order.
func (t *Template) Paths() []FieldPath {
	out := make([]FieldPath, 0, len(t.leaves))
	for _, s := range t.Sections {
		for _, l := range s.Leaves {
			out = append(out, Build(s.Name, l.Name))
		}
	}
	return out
}

func (t *Template) Leaf(p FieldPath) (LeafSpec, bool) {
	l, ok := t.leaves[p]
	return l, ok
}

func (t *Template) Section(name string) (SectionSpec, bool) {
	for _, s := range t.Sections {
		if s.Name == name {
			return s, true
		}
	}
	return SectionSpec{}, false
}

// DefaultLeaf is the value a leaf takes when it is missing or malformed.
func (t *Template) DefaultLeaf(p FieldPath) Leaf {
	if l, ok := t.leaves[p]; ok {
		return Leaf{Verdict: l.Default}
	}
	return Leaf{Verdict: VerdictValid}
}

var templates = map[EquipmentType]*Template{
	TypeHarness: harnessTemplate,
	TypeHelmet:  helmetTemplate,
}

func TemplateFor(t EquipmentType) (*Template, error) {
	tmpl, ok := templates[t]
	if !ok {
		return nil, fmt.Errorf("no checklist template for equipment type %q", t)
	}
	return tmpl, nil
}

func MustTemplate(t EquipmentType) *Template {
	tmpl, err := TemplateFor(t)
	if err != nil {
		panic(err)
	}
	return tmpl
}

func Types() []EquipmentType { return []EquipmentType{TypeHarness, TypeHelmet} }
