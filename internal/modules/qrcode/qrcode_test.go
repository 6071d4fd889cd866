package qrcode

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"strings"
	"testing"

	"github.com/google/uuid"
	goqr "github.com/skip2/go-qrcode"

	"github.com/DavidAtikpo/irata-sub002/internal/domain/inspection"
	"github.com/DavidAtikpo/irata-sub002/internal/modules/reconcile"
	"github.com/DavidAtikpo/irata-sub002/internal/platform/apierr"
)

type fakeLookup struct {
	profiles map[string]*inspection.Profile
	err      error
	calls    int
}

func (f *fakeLookup) LookupProfile(ctx context.Context, code string) (*inspection.Profile, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.profiles[code]
	if !ok {
		return nil, ErrProfileNotFound
	}
	return p, nil
}

func TestSlugAndPublicURL(t *testing.T) {
	if got := Slug("  Harnais Élingue – N°12 "); got != "harnais-elingue-n-12" {
		t.Fatalf("Slug: got=%q", got)
	}
	id := uuid.MustParse("3f1c1a5e-9a53-4c57-9b2e-0b6a9a0f6d11")
	u := PublicURL("https://epi.example.com/", id, "H-001")
	if u != "https://epi.example.com/inspection/3f1c1a5e-9a53-4c57-9b2e-0b6a9a0f6d11-h-001" {
		t.Fatalf("PublicURL: %s", u)
	}
	got, ok := ParseSlug(u[strings.LastIndex(u, "/")+1:])
	if !ok || got != id {
		t.Fatalf("ParseSlug: got=%s ok=%v", got, ok)
	}
	if _, ok := ParseSlug("not-a-record"); ok {
		t.Fatalf("ParseSlug accepted garbage")
	}
}

func TestRenderProducesSizedPNG(t *testing.T) {
	r, err := NewRenderer(RenderConfig{Size: 256}, nil)
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	img := r.Render("https://epi.example.com/inspection/abc-h-001")
	if img.Degraded || len(img.PNG) == 0 {
		t.Fatalf("unexpected degraded render: %+v", img.URL)
	}
	decoded, err := png.Decode(bytes.NewReader(img.PNG))
	if err != nil {
		t.Fatalf("png decode: %v", err)
	}
	if b := decoded.Bounds(); b.Dx() != 256 || b.Dy() != 256 {
		t.Fatalf("bounds: %v", b)
	}
}

func TestRenderDegradesToFallbackURL(t *testing.T) {
	r, err := NewRenderer(RenderConfig{}, nil)
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	content := strings.Repeat("x", 4000)
	img := r.Render(content)
	if !img.Degraded {
		t.Fatalf("oversized payload should degrade")
	}
	if !strings.HasPrefix(img.URL, DefaultFallbackBase+"?") || !strings.Contains(img.URL, "size=300x300") {
		t.Fatalf("fallback url: %s", img.URL)
	}
}

func TestScanReadsPlainCode(t *testing.T) {
	want := "https://host/equipment/ABC123"
	data, err := goqr.Encode(want, goqr.Medium, 256)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := Scan(data)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if got != want {
		t.Fatalf("Scan: got=%q want=%q", got, want)
	}
}

func TestScanBlankImageIsDecodeError(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, 64, 64))); err != nil {
		t.Fatalf("png: %v", err)
	}
	_, err := Scan(buf.Bytes())
	if !errors.Is(err, ErrNoCode) || apierr.KindOf(err) != apierr.KindDecode {
		t.Fatalf("blank image: %v", err)
	}
	if _, err := Scan([]byte("not an image")); apierr.KindOf(err) != apierr.KindDecode {
		t.Fatalf("garbage bytes: %v", err)
	}
}

func TestProfileScanFillsEmptyRecord(t *testing.T) {
	lookup := &fakeLookup{profiles: map[string]*inspection.Profile{
		"ABC123": {Code: "ABC123", ReferenceInterne: "H-001", NumeroSerie: "SN9", Normes: "EN361"},
	}}
	res, err := NewDecoder(lookup, nil).DecodeText(context.Background(), "https://host/equipment/ABC123")
	if err != nil {
		t.Fatalf("DecodeText: %v", err)
	}
	if res.Kind != PayloadProfile || res.Code != "ABC123" {
		t.Fatalf("classification: %+v", res)
	}
	rec := reconcile.Reconcile(inspection.Record{}, res.Patch, reconcile.SourceQR)
	if rec.ReferenceInterne != "H-001" || rec.NumeroSerie != "SN9" || rec.NormesCertificat != "EN361" || rec.Normes != "EN361" {
		t.Fatalf("record: %+v", rec)
	}
}

func TestProfileLookupFailures(t *testing.T) {
	dec := NewDecoder(&fakeLookup{}, nil)
	_, err := dec.DecodeText(context.Background(), "https://host/qr-equipment/NOPE")
	if !errors.Is(err, ErrProfileNotFound) || apierr.KindOf(err) != apierr.KindDecode {
		t.Fatalf("missing profile: %v", err)
	}

	dec = NewDecoder(&fakeLookup{err: errors.New("connection refused")}, nil)
	_, err = dec.DecodeText(context.Background(), "/equipment/ABC123")
	if apierr.KindOf(err) != apierr.KindTransfer {
		t.Fatalf("network failure: %v", err)
	}
}

func TestLegacyPayloads(t *testing.T) {
	dec := NewDecoder(nil, nil)
	res, err := dec.DecodeText(context.Background(), `{"reference":"R-7","date":"01/02/2019","normesCertificat":"EN397","serial":1}`)
	if err != nil {
		t.Fatalf("DecodeText: %v", err)
	}
	if res.Kind != PayloadJSON {
		t.Fatalf("kind: %s", res.Kind)
	}
	p := res.Patch
	if p.ReferenceInterne == nil || *p.ReferenceInterne != "R-7" {
		t.Fatalf("reference alias not mapped")
	}
	if p.DateAchat != nil || p.DateFabrication == nil || *p.DateFabrication != "01/02/2019" {
		t.Fatalf("date mapped to the wrong slot: %+v", p)
	}
	if p.Normes == nil || *p.NormesCertificat != "EN397" {
		t.Fatalf("standards not mapped to both slots")
	}

	res, err = dec.DecodeText(context.Background(), "SERIAL:XYZ;BATCH:9")
	if err != nil {
		t.Fatalf("DecodeText: %v", err)
	}
	if res.Kind != PayloadRaw || res.Patch.RawText == nil || *res.Patch.RawText != "SERIAL:XYZ;BATCH:9" {
		t.Fatalf("raw fallback: %+v", res)
	}

	res, _ = dec.DecodeText(context.Background(), `{"unrelated":true}`)
	if res.Patch.RawText == nil {
		t.Fatalf("empty projection should keep raw text")
	}

	lookup := &fakeLookup{}
	res, err = NewDecoder(lookup, nil).DecodeText(context.Background(),
		`{"referenceInterne":"H-7","pdfUrl":"https://cdn.example.com/equipment/cert-7.pdf"}`)
	if err != nil {
		t.Fatalf("legacy payload with an equipment link: %v", err)
	}
	if lookup.calls != 0 {
		t.Fatalf("embedded link triggered %d profile lookups", lookup.calls)
	}
	if res.Kind != PayloadJSON || res.Patch.PdfURL == nil || *res.Patch.PdfURL != "https://cdn.example.com/equipment/cert-7.pdf" {
		t.Fatalf("legacy fields lost: %+v", res)
	}
}

func TestProfileCodeNeedsWholePayload(t *testing.T) {
	cases := []struct {
		raw  string
		code string
		ok   bool
	}{
		{"https://host/equipment/ABC123", "ABC123", true},
		{"https://host/qr-equipment/ABC123/?src=label", "ABC123", true},
		{"/equipment/ABC123", "ABC123", true},
		{"https://host/equipment/ABC123/history", "", false},
		{"https://host/equipments/ABC123", "", false},
		{`see https://host/equipment/ABC123`, "", false},
		{`{"pdfUrl":"https://host/equipment/x.pdf"}`, "", false},
	}
	for _, tc := range cases {
		code, ok := ProfileCode(tc.raw)
		if ok != tc.ok || code != tc.code {
			t.Fatalf("ProfileCode(%q): got=(%q,%v) want=(%q,%v)", tc.raw, code, ok, tc.code, tc.ok)
		}
	}
}
