package reconcile

import (
	"fmt"
	"strings"

	"github.com/DavidAtikpo/irata-sub002/internal/domain/inspection"
)

// Source names where a patch came from.
type Source string

const (
	SourceManual Source = "manual"
	SourceQR     Source = "qr"
	SourcePDF    Source = "pdf"
)

func ParseSource(raw string) (Source, error) {
	switch Source(strings.ToLower(strings.TrimSpace(raw))) {
	case SourceManual, "":
		return SourceManual, nil
	case SourceQR:
		return SourceQR, nil
	case SourcePDF, "pdf-extract", "pdfextract":
		return SourcePDF, nil
	default:
		return "", fmt.Errorf("unknown patch source %q", raw)
	}
}

// Patch is a partial record. A nil field means the source has no opinion.
type Patch struct {
	BatchID *string `json:"batchId,omitempty"`

	ReferenceInterne    *string `json:"referenceInterne,omitempty"`
	TypeEquipement      *string `json:"typeEquipement,omitempty"`
	NumeroSerie         *string `json:"numeroSerie,omitempty"`
	NumeroSerieTop      *string `json:"numeroSerieTop,omitempty"`
	NumeroSerieCuissard *string `json:"numeroSerieCuissard,omitempty"`
	Fabricant           *string `json:"fabricant,omitempty"`
	Signataire          *string `json:"signataire,omitempty"`

	DateFabrication         *string `json:"dateFabrication,omitempty"`
	DateAchat               *string `json:"dateAchat,omitempty"`
	DateControle            *string `json:"dateControle,omitempty"`
	DateProchaineInspection *string `json:"dateProchaineInspection,omitempty"`

	Normes             *string `json:"normes,omitempty"`
	NormesCertificat   *string `json:"normesCertificat,omitempty"`
	DocumentsReference *string `json:"documentsReference,omitempty"`

	PdfURL               *string `json:"pdfUrl,omitempty"`
	PhotoURL             *string `json:"photo,omitempty"`
	QRCodeURL            *string `json:"qrCode,omitempty"`
	ReferenceDocumentURL *string `json:"referenceDocumentUrl,omitempty"`
	DateAchatImageURL    *string `json:"dateAchatImage,omitempty"`

	CertificateURL   *string `json:"certificateUrl,omitempty"`
	SignatureDataURI *string `json:"digitalSignature,omitempty"`

	Etat *string `json:"etat,omitempty"`

	// RawText keeps an undecodable QR payload.
	RawText *string `json:"rawText,omitempty"`
}

// Policy is how a non-manual source may write a field. Manual input always wins.
type Policy int

const (
	Never Policy = iota
	FillEmpty
	Always
)

type rule struct {
	name   string
	patch  func(*Patch) *string
	target func(*inspection.Record) *string
	qr     Policy
	pdf    Policy
}

// rules is the precedence table. Etat is handled apart because it toggles the
// override flag.
var rules = []rule{
	{"batchId", func(p *Patch) *string { return p.BatchID }, func(r *inspection.Record) *string { return &r.BatchID }, Never, Never},

	{"referenceInterne", func(p *Patch) *string { return p.ReferenceInterne }, func(r *inspection.Record) *string { return &r.ReferenceInterne }, FillEmpty, Never},
	{"typeEquipement", func(p *Patch) *string { return p.TypeEquipement }, func(r *inspection.Record) *string { return &r.TypeEquipement }, FillEmpty, Never},
	{"numeroSerie", func(p *Patch) *string { return p.NumeroSerie }, func(r *inspection.Record) *string { return &r.NumeroSerie }, FillEmpty, Never},
	{"numeroSerieTop", func(p *Patch) *string { return p.NumeroSerieTop }, func(r *inspection.Record) *string { return &r.NumeroSerieTop }, FillEmpty, Never},
	{"numeroSerieCuissard", func(p *Patch) *string { return p.NumeroSerieCuissard }, func(r *inspection.Record) *string { return &r.NumeroSerieCuissard }, FillEmpty, Never},
	{"fabricant", func(p *Patch) *string { return p.Fabricant }, func(r *inspection.Record) *string { return &r.Fabricant }, FillEmpty, Never},
	{"signataire", func(p *Patch) *string { return p.Signataire }, func(r *inspection.Record) *string { return &r.Signataire }, FillEmpty, Never},

	{"dateFabrication", func(p *Patch) *string { return p.DateFabrication }, func(r *inspection.Record) *string { return &r.DateFabrication }, FillEmpty, Never},
	{"dateControle", func(p *Patch) *string { return p.DateControle }, func(r *inspection.Record) *string { return &r.DateControle }, FillEmpty, Never},
	// A QR "date" is a manufacturing date; it never lands on the purchase date.
	{"dateAchat", func(p *Patch) *string { return p.DateAchat }, func(r *inspection.Record) *string { return &r.DateAchat }, Never, Never},
	{"dateProchaineInspection", func(p *Patch) *string { return p.DateProchaineInspection }, func(r *inspection.Record) *string { return &r.DateProchaineInspection }, Never, Never},

	{"normes", func(p *Patch) *string { return p.Normes }, func(r *inspection.Record) *string { return &r.Normes }, FillEmpty, FillEmpty},
	{"normesCertificat", func(p *Patch) *string { return p.NormesCertificat }, func(r *inspection.Record) *string { return &r.NormesCertificat }, FillEmpty, FillEmpty},
	{"documentsReference", func(p *Patch) *string { return p.DocumentsReference }, func(r *inspection.Record) *string { return &r.DocumentsReference }, Never, FillEmpty},

	// The source PDF slot; the control certificate lives in the signature block.
	{"pdfUrl", func(p *Patch) *string { return p.PdfURL }, func(r *inspection.Record) *string { return &r.PdfURL }, FillEmpty, Always},
	{"photo", func(p *Patch) *string { return p.PhotoURL }, func(r *inspection.Record) *string { return &r.PhotoURL }, Never, Never},
	{"qrCode", func(p *Patch) *string { return p.QRCodeURL }, func(r *inspection.Record) *string { return &r.QRCodeURL }, Never, Never},
	{"referenceDocumentUrl", func(p *Patch) *string { return p.ReferenceDocumentURL }, func(r *inspection.Record) *string { return &r.ReferenceDocumentURL }, Never, Never},
	{"dateAchatImage", func(p *Patch) *string { return p.DateAchatImageURL }, func(r *inspection.Record) *string { return &r.DateAchatImageURL }, Never, Never},

	{"certificateUrl", func(p *Patch) *string { return p.CertificateURL }, func(r *inspection.Record) *string { return &r.CertificateURL }, Never, Never},
	{"digitalSignature", func(p *Patch) *string { return p.SignatureDataURI }, func(r *inspection.Record) *string { return &r.SignatureDataURI }, Never, Never},

	{"qrRawText", func(p *Patch) *string { return p.RawText }, func(r *inspection.Record) *string { return &r.QRRawText }, Always, Never},
}

func (r rule) policy(src Source) Policy {
	switch src {
	case SourceManual:
		return Always
	case SourceQR:
		return r.qr
	case SourcePDF:
		return r.pdf
	default:
		return Never
	}
}

// Reconcile merges p into cur under the precedence table and returns the new
// record. It never fails: fields the source may not write are ignored, and
// non-manual sources cannot fill a field with an empty value.
func Reconcile(cur inspection.Record, p Patch, src Source) inspection.Record {
	next := cur
	for _, r := range rules {
		v := r.patch(&p)
		if v == nil {
			continue
		}
		dst := r.target(&next)
		switch r.policy(src) {
		case Always:
			if src != SourceManual && strings.TrimSpace(*v) == "" {
				continue
			}
			*dst = *v
		case FillEmpty:
			if strings.TrimSpace(*dst) == "" && strings.TrimSpace(*v) != "" {
				*dst = *v
			}
		}
	}
	if src != SourceManual {
		return next
	}
	switch {
	case p.Etat != nil && inspection.State(*p.Etat).Valid():
		next.Etat = inspection.State(*p.Etat)
		next.EtatOverride = true
	case p.Etat != nil && *p.Etat == "":
		next.EtatOverride = false
	case next.DateProchaineInspection != cur.DateProchaineInspection:
		// A new due date brings back the derived default.
		next.EtatOverride = false
	}
	return next
}

// Changed lists the fields that differ between two records, by JSON name.
func Changed(a, b inspection.Record) []string {
	var out []string
	for _, r := range rules {
		if *r.target(&a) != *r.target(&b) {
			out = append(out, r.name)
		}
	}
	if a.Etat != b.Etat {
		out = append(out, "etat")
	}
	return out
}

// Fields lists the field names p carries an opinion on.
func (p Patch) Fields() []string {
	var out []string
	for _, r := range rules {
		if r.patch(&p) != nil {
			out = append(out, r.name)
		}
	}
	if p.Etat != nil {
		out = append(out, "etat")
	}
	return out
}

func (p Patch) Empty() bool { return len(p.Fields()) == 0 }

func String(s string) *string { return &s }
