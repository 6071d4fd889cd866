package checklist

import (
	"errors"
	"fmt"
	"sort"
	"unicode/utf8"
)

var (
	ErrUnknownToken = errors.New("word is not a token of the item text")
	ErrEditorClosed = errors.New("comment editor is not open")
)

// Editor is the inline comment editor of one path. Draft is the unsaved
// buffer; Caret is where focus lands when the editor opens.
type Editor struct {
	Open  bool   `json:"open"`
	Draft string `json:"draft"`
	Caret int    `json:"caret"`
}

// EntryState is the render view of one path.
type EntryState struct {
	Path         FieldPath `json:"path"`
	Leaf         Leaf      `json:"leaf"`
	Editor       Editor    `json:"editor"`
	Instructions string    `json:"instructions,omitempty"`
	Tokens       []string  `json:"tokens,omitempty"`
	Struck       []string  `json:"struck,omitempty"`
	Visible      bool      `json:"visible"`
}

type entry struct {
	spec   LeafSpec
	leaf   Leaf
	editor Editor
	// struck keeps explicit false flags so stored maps round-trip verbatim.
	struck map[string]bool
	// stored names the words the loaded map had an entry for.
	stored map[string]bool
}

// Sheet is the editing aggregate of one record: for each path it holds the
// leaf together with its editor state and struck words, so every annotation
// is keyed by exactly one FieldPath. A Sheet is not safe for concurrent use.
type Sheet struct {
	tmpl    *Template
	history History
	// The history comment has an editor but no verdict.
	historyEditor Editor
	entries       map[FieldPath]*entry
	// Stored strike entries that no template token owns; written back verbatim.
	orphans map[string]map[string]bool
}

func NewSheet(tree Tree, crossedOut map[string]map[string]bool) (*Sheet, error) {
	tmpl, err := TemplateFor(tree.Type)
	if err != nil {
		return nil, err
	}
	tree = Hydrate(tree.Raw(), tmpl)
	s := &Sheet{
		tmpl:    tmpl,
		history: tree.History,
		entries: make(map[FieldPath]*entry, len(tmpl.leaves)),
		orphans: map[string]map[string]bool{},
	}
	for _, p := range tmpl.Paths() {
		spec, _ := tmpl.Leaf(p)
		s.entries[p] = &entry{spec: spec, leaf: tree.Leaf(p), struck: map[string]bool{}, stored: map[string]bool{}}
	}
	for key, words := range crossedOut {
		e := s.entries[FieldPath(key)]
		for word, on := range words {
			switch {
			case e != nil && hasToken(e.spec.Instructions, word):
				e.struck[word] = on
				e.stored[word] = true
			default:
				if s.orphans[key] == nil {
					s.orphans[key] = map[string]bool{}
				}
				s.orphans[key][word] = on
			}
		}
	}
	return s, nil
}

func (s *Sheet) Template() *Template { return s.tmpl }

func (s *Sheet) entry(p FieldPath) (*entry, error) {
	e, ok := s.entries[p]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPath, p)
	}
	return e, nil
}

// Tree exports the checklist values.
func (s *Sheet) Tree() Tree {
	t := Tree{Type: s.tmpl.Type, History: s.history, Sections: make(map[string]map[string]Leaf, len(s.tmpl.Sections))}
	for _, sec := range s.tmpl.Sections {
		leaves := make(map[string]Leaf, len(sec.Leaves))
		for _, l := range sec.Leaves {
			leaves[l.Name] = s.entries[Build(sec.Name, l.Name)].leaf
		}
		t.Sections[sec.Name] = leaves
	}
	return t
}

// CrossedOutWords exports the strike map in its stored shape, explicit false
// flags and orphaned entries included.
func (s *Sheet) CrossedOutWords() map[string]map[string]bool {
	out := make(map[string]map[string]bool, len(s.entries)+len(s.orphans))
	for key, words := range s.orphans {
		cp := make(map[string]bool, len(words))
		for w, on := range words {
			cp[w] = on
		}
		out[key] = cp
	}
	for p, e := range s.entries {
		if len(e.struck) == 0 {
			continue
		}
		cp := out[string(p)]
		if cp == nil {
			cp = make(map[string]bool, len(e.struck))
		}
		for w, on := range e.struck {
			cp[w] = on
		}
		out[string(p)] = cp
	}
	return out
}

func (s *Sheet) Leaf(p FieldPath) (Leaf, error) {
	e, err := s.entry(p)
	if err != nil {
		return Leaf{}, err
	}
	return e.leaf, nil
}

func (s *Sheet) SetVerdict(p FieldPath, v Verdict, comment *string) error {
	if p.IsHistory() {
		return ErrNotVerdictPath
	}
	if !v.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidVerdict, v)
	}
	e, err := s.entry(p)
	if err != nil {
		return err
	}
	l := Leaf{Verdict: v, Comment: e.leaf.Comment}
	if comment != nil {
		l.Comment = *comment
	}
	e.leaf = l
	return nil
}

func (s *Sheet) History() History { return s.history }

func (s *Sheet) SetHistoryDate(date string) { s.history.EffectiveDate = date }

func (s *Sheet) editor(p FieldPath) (*Editor, string, error) {
	if p.IsHistory() {
		return &s.historyEditor, s.history.Comment, nil
	}
	e, err := s.entry(p)
	if err != nil {
		return nil, "", err
	}
	return &e.editor, e.leaf.Comment, nil
}

// ToggleComment opens or closes the comment editor of p. Opening seeds the
// draft from the saved comment and puts the caret at its end; closing drops
// the draft without saving it.
func (s *Sheet) ToggleComment(p FieldPath) (Editor, error) {
	ed, saved, err := s.editor(p)
	if err != nil {
		return Editor{}, err
	}
	if ed.Open {
		*ed = Editor{}
		return *ed, nil
	}
	*ed = Editor{Open: true, Draft: saved, Caret: utf8.RuneCountInString(saved)}
	return *ed, nil
}

func (s *Sheet) UpdateDraft(p FieldPath, text string) error {
	ed, _, err := s.editor(p)
	if err != nil {
		return err
	}
	if !ed.Open {
		return ErrEditorClosed
	}
	ed.Draft = text
	ed.Caret = utf8.RuneCountInString(text)
	return nil
}

// CommitComment saves the draft as the comment of p, keeping whatever verdict
// the leaf has now, and closes the editor.
func (s *Sheet) CommitComment(p FieldPath) error {
	ed, _, err := s.editor(p)
	if err != nil {
		return err
	}
	if !ed.Open {
		return ErrEditorClosed
	}
	draft := ed.Draft
	if p.IsHistory() {
		s.history.Comment = draft
	} else {
		e := s.entries[p]
		if err := s.SetVerdict(p, e.leaf.Verdict, &draft); err != nil {
			return err
		}
	}
	*ed = Editor{}
	return nil
}

// ToggleWord flips the struck flag of word under p and reports the new value.
// Toggling twice restores the previous strike map.
func (s *Sheet) ToggleWord(p FieldPath, word string) (bool, error) {
	e, err := s.entry(p)
	if err != nil {
		return false, err
	}
	if !hasToken(e.spec.Instructions, word) {
		return false, fmt.Errorf("%w: %q under %q", ErrUnknownToken, word, p)
	}
	if e.struck[word] {
		if e.stored[word] {
			e.struck[word] = false
		} else {
			delete(e.struck, word)
		}
		return false, nil
	}
	e.struck[word] = true
	return true, nil
}

func (s *Sheet) Struck(p FieldPath) []string {
	e, ok := s.entries[p]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(e.struck))
	for w, on := range e.struck {
		if on {
			out = append(out, w)
		}
	}
	sort.Strings(out)
	return out
}

// State returns the render view of every path in template order, history
// comment first.
func (s *Sheet) State() []EntryState {
	out := make([]EntryState, 0, len(s.entries)+1)
	out = append(out, EntryState{
		Path:    HistoryCommentPath,
		Leaf:    Leaf{Comment: s.history.Comment},
		Editor:  s.historyEditor,
		Visible: true,
	})
	for _, p := range s.tmpl.Paths() {
		e := s.entries[p]
		out = append(out, EntryState{
			Path:         p,
			Leaf:         e.leaf,
			Editor:       e.editor,
			Instructions: e.spec.Instructions,
			Tokens:       Tokenize(e.spec.Instructions),
			Struck:       s.Struck(p),
			Visible:      e.spec.Visible,
		})
	}
	return out
}
