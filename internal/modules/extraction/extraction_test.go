package extraction

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/DavidAtikpo/irata-sub002/internal/platform/apierr"
	"github.com/DavidAtikpo/irata-sub002/internal/platform/gcp"
)

const certificate = `DÉCLARATION DE CONFORMITÉ
Harnais AVAO BOD conforme aux normes EN 361:2002, EN 358 et en 813
Norme: EN ISO 12402-5
Voir la notice technique N°C71 pour l'utilisation
Référence fabricant : Petzl C71AAA`

func TestStandards(t *testing.T) {
	got := Standards(certificate)
	want := []string{"EN 361:2002", "EN 358", "EN 813", "EN ISO 12402-5"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Standards: got=%q want=%q", got, want)
	}
}

func TestParseByPurpose(t *testing.T) {
	cert := Parse(certificate, false)
	if cert.Normes == "" || cert.Normes != cert.NormesCertificat || cert.DocumentsReference != "" {
		t.Fatalf("certificate parse: %+v", cert)
	}
	ref := Parse(certificate, true)
	if ref.Normes != "" {
		t.Fatalf("reference parse filled standards")
	}
	want := "Voir la notice technique N°C71 pour l'utilisation\nRéférence fabricant : Petzl C71AAA"
	if ref.DocumentsReference != want {
		t.Fatalf("reference lines: got=%q", ref.DocumentsReference)
	}
	if ref.RawText == "" {
		t.Fatalf("raw text dropped")
	}
}

type fakeDocument struct {
	res *gcp.DocAIResult
	err error
}

func (f fakeDocument) ProcessBytes(ctx context.Context, req gcp.DocAIProcessBytesRequest) (*gcp.DocAIResult, error) {
	return f.res, f.err
}
func (fakeDocument) Close() error { return nil }

func TestExtractRoutesAndClassifies(t *testing.T) {
	doc := fakeDocument{res: &gcp.DocAIResult{
		PrimaryText: "Certificat",
		Forms:       []gcp.FormField{{Name: "Normes", Value: "EN 397"}},
		Confidence:  0.9,
	}}
	e := NewExtractor(doc, nil, nil)
	d, err := e.Extract(context.Background(), []byte("%PDF"), "application/pdf", false)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if d.Normes != "EN 397" || d.Confidence != 0.9 {
		t.Fatalf("extracted: %+v", d)
	}

	if _, err := e.Extract(context.Background(), []byte{1}, "image/png", false); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("missing vision backend: %v", err)
	}
	if _, err := e.Extract(context.Background(), []byte{1}, "text/plain", false); apierr.KindOf(err) != apierr.KindDecode {
		t.Fatalf("unsupported type: %v", err)
	}

	bad := NewExtractor(fakeDocument{err: fmt.Errorf("documentai ProcessDocument: %w", status.Error(codes.InvalidArgument, "corrupt pdf"))}, nil, nil)
	if _, err := bad.Extract(context.Background(), []byte("x"), "application/pdf", false); apierr.KindOf(err) != apierr.KindDecode {
		t.Fatalf("invalid document: %v", err)
	}
	down := NewExtractor(fakeDocument{err: status.Error(codes.Unavailable, "down")}, nil, nil)
	if _, err := down.Extract(context.Background(), []byte("x"), "application/pdf", false); apierr.KindOf(err) != apierr.KindTransfer {
		t.Fatalf("backend down: %v", err)
	}
}
