package checklist

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func TestFieldPathRoundTrip(t *testing.T) {
	cases := []struct{ section, leaf string }{
		{"etatSangles", "coutureSecurite"},
		{"calotin", "etat"},
		{"a", "b"},
	}
	for _, tc := range cases {
		s, l, ok := Parse(string(Build(tc.section, tc.leaf)))
		if !ok || s != tc.section || l != tc.leaf {
			t.Fatalf("round trip %q/%q: got=(%q,%q,%v)", tc.section, tc.leaf, s, l, ok)
		}
	}
}

func TestParseRejectsOpaqueKeys(t *testing.T) {
	for _, key := range []string{"", "nodot", "a.b.c", ".leaf", "section.", "."} {
		if _, _, ok := Parse(key); ok {
			t.Fatalf("Parse(%q) accepted", key)
		}
	}
	if !HistoryCommentPath.IsHistory() {
		t.Fatalf("history path not recognised")
	}
}

func TestTemplateSectionCounts(t *testing.T) {
	if got := MustTemplate(TypeHarness).SectionCount(); got != 8 {
		t.Fatalf("harness sections: got=%d want=8", got)
	}
	if got := MustTemplate(TypeHelmet).SectionCount(); got != 11 {
		t.Fatalf("helmet sections: got=%d want=11", got)
	}
	spec, ok := MustTemplate(TypeHelmet).Leaf("observationsPrealables.dureeVieNonDepassee")
	if !ok || spec.Visible {
		t.Fatalf("helmet lifetime control should exist and be hidden: %+v ok=%v", spec, ok)
	}
}

func TestHydrateFillsDefaultsAndIsIdempotent(t *testing.T) {
	tmpl := MustTemplate(TypeHarness)
	raw, err := DecodeRaw([]byte(`{
		"etatSangles": {
			"coutureSecurite": {"status": "X", "comment": "fil coupé"},
			"ceintureCuisseBretelles": {"status": "bogus", "comment": "lost"}
		},
		"unknownSection": {"x": {"status": "V"}},
		"antecedentProduit": {"dateMiseEnService": "01/02/2020", "comment": "chute"}
	}`))
	if err != nil {
		t.Fatalf("DecodeRaw: %v", err)
	}

	tree := Hydrate(raw, tmpl)
	if got := tree.Leaf("etatSangles.coutureSecurite"); got != (Leaf{Verdict: VerdictInvalid, Comment: "fil coupé"}) {
		t.Fatalf("kept leaf: %+v", got)
	}
	if got := tree.Leaf("etatSangles.ceintureCuisseBretelles"); got != (Leaf{Verdict: VerdictValid}) {
		t.Fatalf("malformed leaf should fall back to default: %+v", got)
	}
	if got := tree.Leaf("etatSangles.indicateurArretChute"); got.Verdict != VerdictNotApplicable {
		t.Fatalf("missing leaf should take NA default: %+v", got)
	}
	if _, ok := tree.Sections["unknownSection"]; ok {
		t.Fatalf("unknown section survived hydrate")
	}
	if tree.History.Comment != "chute" || tree.History.EffectiveDate != "01/02/2020" {
		t.Fatalf("history: %+v", tree.History)
	}
	for _, p := range tmpl.Paths() {
		s, l, _ := p.Split()
		if _, ok := tree.Sections[s][l]; !ok {
			t.Fatalf("path %q missing after hydrate", p)
		}
	}

	again := Hydrate(tree.Raw(), tmpl)
	if !reflect.DeepEqual(tree, again) {
		t.Fatalf("hydrate not idempotent")
	}

	data, err := json.Marshal(tree)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !reflect.DeepEqual(HydrateJSON(data, tmpl), tree) {
		t.Fatalf("JSON reload differs")
	}
}

func TestSetVerdictPreservesCommentWhenOmitted(t *testing.T) {
	tmpl := MustTemplate(TypeHelmet)
	base := NewTree(tmpl)
	p := FieldPath("jugulaire.sangle")

	note := "brûlure"
	withNote, err := base.SetVerdict(p, VerdictInvalid, &note)
	if err != nil {
		t.Fatalf("SetVerdict: %v", err)
	}
	if got := withNote.Leaf(p); got != (Leaf{Verdict: VerdictInvalid, Comment: note}) {
		t.Fatalf("got %+v", got)
	}
	if base.Leaf(p).Comment != "" {
		t.Fatalf("SetVerdict mutated the receiver")
	}

	for _, v := range []Verdict{VerdictValid, VerdictNotApplicable, VerdictInvalid} {
		next, err := withNote.SetVerdict(p, v, nil)
		if err != nil {
			t.Fatalf("SetVerdict(%s): %v", v, err)
		}
		if got := next.Leaf(p); got != (Leaf{Verdict: v, Comment: note}) {
			t.Fatalf("verdict %s: got %+v", v, got)
		}
	}

	if _, err := base.SetVerdict("nope.nope", VerdictValid, nil); !errors.Is(err, ErrUnknownPath) {
		t.Fatalf("unknown path: %v", err)
	}
	if _, err := base.SetVerdict(p, "Z", nil); !errors.Is(err, ErrInvalidVerdict) {
		t.Fatalf("bad verdict: %v", err)
	}
	if _, err := base.SetVerdict(HistoryCommentPath, VerdictValid, nil); !errors.Is(err, ErrNotVerdictPath) {
		t.Fatalf("history path: %v", err)
	}
}

func TestTokenizeSplitsOnPunctuation(t *testing.T) {
	got := Tokenize("Marque/Fissure (points-d'ancrage). Usure")
	want := []string{"Marque", "Fissure", "points", "d'ancrage", "Usure"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Tokenize: got=%q want=%q", got, want)
	}
}

func TestSheetToggleWordIsInvolution(t *testing.T) {
	stored := map[string]map[string]bool{
		"pointsAttache.metalliques": {"Fissure": true},
		"legacy.key":                {"old": false},
	}
	sheet, err := NewSheet(NewTree(MustTemplate(TypeHarness)), stored)
	if err != nil {
		t.Fatalf("NewSheet: %v", err)
	}
	before := sheet.CrossedOutWords()

	p := FieldPath("pointsAttache.metalliques")
	for _, word := range []string{"Corrosion", "Fissure"} {
		if _, err := sheet.ToggleWord(p, word); err != nil {
			t.Fatalf("ToggleWord: %v", err)
		}
		if _, err := sheet.ToggleWord(p, word); err != nil {
			t.Fatalf("ToggleWord: %v", err)
		}
		if after := sheet.CrossedOutWords(); !reflect.DeepEqual(before, after) {
			t.Fatalf("double toggle of %q changed map: before=%v after=%v", word, before, after)
		}
	}
	if _, ok := before["legacy.key"]; !ok {
		t.Fatalf("orphan entry dropped")
	}
	if _, err := sheet.ToggleWord(p, "Coupure"); !errors.Is(err, ErrUnknownToken) {
		t.Fatalf("unknown token: %v", err)
	}
}

func TestSheetKeepsExplicitFalseFlags(t *testing.T) {
	stored := map[string]map[string]bool{
		"etatSangles.coutureSecurite": {"Fil": false, "usé": true},
	}
	sheet, err := NewSheet(NewTree(MustTemplate(TypeHarness)), stored)
	if err != nil {
		t.Fatalf("NewSheet: %v", err)
	}
	if got := sheet.CrossedOutWords(); !reflect.DeepEqual(got, stored) {
		t.Fatalf("round trip: want=%v got=%v", stored, got)
	}

	p := FieldPath("etatSangles.coutureSecurite")
	if got := sheet.Struck(p); !reflect.DeepEqual(got, []string{"usé"}) {
		t.Fatalf("Struck: %q", got)
	}
	on, err := sheet.ToggleWord(p, "Fil")
	if err != nil || !on {
		t.Fatalf("ToggleWord Fil: on=%v err=%v", on, err)
	}
	if on, _ := sheet.ToggleWord(p, "usé"); on {
		t.Fatalf("usé should clear")
	}
	want := map[string]map[string]bool{
		"etatSangles.coutureSecurite": {"Fil": true, "usé": false},
	}
	if got := sheet.CrossedOutWords(); !reflect.DeepEqual(got, want) {
		t.Fatalf("after toggles: want=%v got=%v", want, got)
	}
}

func TestSheetCommentEditorLifecycle(t *testing.T) {
	tmpl := MustTemplate(TypeHarness)
	p := FieldPath("etatSangles.coutureSecurite")
	saved := "ok"
	tree, _ := NewTree(tmpl).SetVerdict(p, VerdictInvalid, &saved)
	sheet, err := NewSheet(tree, nil)
	if err != nil {
		t.Fatalf("NewSheet: %v", err)
	}

	ed, _ := sheet.ToggleComment(p)
	if !ed.Open || ed.Draft != "ok" || ed.Caret != 2 {
		t.Fatalf("open editor: %+v", ed)
	}
	if err := sheet.UpdateDraft(p, "discard me"); err != nil {
		t.Fatalf("UpdateDraft: %v", err)
	}
	ed, _ = sheet.ToggleComment(p)
	if ed.Open {
		t.Fatalf("editor still open")
	}
	if l, _ := sheet.Leaf(p); l.Comment != "ok" {
		t.Fatalf("closing wrote the draft: %+v", l)
	}

	ed, _ = sheet.ToggleComment(p)
	if ed.Draft != "ok" {
		t.Fatalf("reopen should seed from saved comment, got %q", ed.Draft)
	}
	_ = sheet.UpdateDraft(p, "coupure nette")
	if err := sheet.CommitComment(p); err != nil {
		t.Fatalf("CommitComment: %v", err)
	}
	if l, _ := sheet.Leaf(p); l != (Leaf{Verdict: VerdictInvalid, Comment: "coupure nette"}) {
		t.Fatalf("commit changed verdict or lost comment: %+v", l)
	}
	if err := sheet.CommitComment(p); !errors.Is(err, ErrEditorClosed) {
		t.Fatalf("commit on closed editor: %v", err)
	}

	if _, err := sheet.ToggleComment(HistoryCommentPath); err != nil {
		t.Fatalf("history toggle: %v", err)
	}
	_ = sheet.UpdateDraft(HistoryCommentPath, "aucune chute")
	if err := sheet.CommitComment(HistoryCommentPath); err != nil {
		t.Fatalf("history commit: %v", err)
	}
	if sheet.Tree().History.Comment != "aucune chute" {
		t.Fatalf("history comment not saved")
	}
}
