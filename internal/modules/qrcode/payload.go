package qrcode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/DavidAtikpo/irata-sub002/internal/domain/inspection"
	"github.com/DavidAtikpo/irata-sub002/internal/modules/reconcile"
	"github.com/DavidAtikpo/irata-sub002/internal/platform/apierr"
	"github.com/DavidAtikpo/irata-sub002/internal/platform/logger"
)

var ErrProfileNotFound = errors.New("equipment profile not found")

// ProfileLookup resolves an equipment code to its registered profile.
// Implementations return ErrProfileNotFound for unknown codes.
type ProfileLookup interface {
	LookupProfile(ctx context.Context, code string) (*inspection.Profile, error)
}

type PayloadKind string

const (
	PayloadProfile PayloadKind = "profile"
	PayloadJSON    PayloadKind = "json"
	PayloadRaw     PayloadKind = "raw"
)

var profileRef = regexp.MustCompile(`^/(?:qr-)?equipment/([^/?#]+)/?$`)

// ProfileCode returns the equipment code of a profile-reference payload. The
// whole payload must be a URL or path; a link embedded in JSON is not one.
func ProfileCode(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.ContainsAny(raw, " \t\n{}\"") {
		return "", false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	m := profileRef.FindStringSubmatch(u.Path)
	if m == nil {
		return "", false
	}
	return m[1], true
}

type Result struct {
	Raw     string              `json:"raw"`
	Kind    PayloadKind         `json:"kind"`
	Code    string              `json:"code,omitempty"`
	Profile *inspection.Profile `json:"profile,omitempty"`
	Patch   reconcile.Patch     `json:"patch"`
}

type Decoder struct {
	lookup ProfileLookup
	log    *logger.Logger
}

func NewDecoder(lookup ProfileLookup, log *logger.Logger) *Decoder {
	if log == nil {
		log = logger.Nop()
	}
	return &Decoder{lookup: lookup, log: log.With("module", "QRDecoder")}
}

// DecodeImage scans data and classifies the payload.
func (d *Decoder) DecodeImage(ctx context.Context, data []byte) (*Result, error) {
	raw, err := Scan(data)
	if err != nil {
		return nil, err
	}
	return d.DecodeText(ctx, raw)
}

// DecodeText turns a scanned payload into a QR-source patch. A profile
// reference must resolve; a failed lookup is returned, never an empty patch.
func (d *Decoder) DecodeText(ctx context.Context, raw string) (*Result, error) {
	raw = strings.TrimSpace(raw)
	if code, ok := ProfileCode(raw); ok {
		if d.lookup == nil {
			return nil, apierr.Transfer(0, "profile_lookup_unavailable", errors.New("no equipment lookup configured"))
		}
		p, err := d.lookup.LookupProfile(ctx, code)
		if err != nil {
			d.log.Warn("Equipment lookup failed", "code", code, "error", err)
			if _, ok := apierr.As(err); ok {
				return nil, err
			}
			if errors.Is(err, ErrProfileNotFound) {
				return nil, apierr.Decode("profile_not_found", fmt.Errorf("%w: %s", ErrProfileNotFound, code))
			}
			return nil, apierr.Transfer(0, "profile_lookup_failed", fmt.Errorf("lookup %s: %w", code, err))
		}
		if p == nil {
			return nil, apierr.Decode("profile_not_found", fmt.Errorf("%w: %s", ErrProfileNotFound, code))
		}
		return &Result{Raw: raw, Kind: PayloadProfile, Code: code, Profile: p, Patch: ProjectProfile(*p)}, nil
	}

	if patch, ok := parseLegacy(raw); ok {
		return &Result{Raw: raw, Kind: PayloadJSON, Patch: patch}, nil
	}
	return &Result{Raw: raw, Kind: PayloadRaw, Patch: reconcile.Patch{RawText: reconcile.String(raw)}}, nil
}

// ProjectProfile maps a profile onto the record shape. The combined standards
// text feeds both standards slots.
func ProjectProfile(p inspection.Profile) reconcile.Patch {
	std := p.Standards()
	return reconcile.Patch{
		ReferenceInterne: nonEmpty(p.ReferenceInterne),
		NumeroSerie:      nonEmpty(p.NumeroSerie),
		Fabricant:        nonEmpty(p.Fabricant),
		Normes:           nonEmpty(std),
		NormesCertificat: nonEmpty(std),
		DateControle:     nonEmpty(p.DateControle),
		Signataire:       nonEmpty(p.Signataire),
		TypeEquipement:   nonEmpty(p.Produit),
		PdfURL:           nonEmpty(p.CertificateURL),
	}
}

// legacyKeys maps the embedded payload keys, first match wins. The generic
// "date" key is a manufacturing date.
var legacyKeys = []struct {
	keys []string
	set  func(*reconcile.Patch, *string)
}{
	{[]string{"referenceInterne", "reference"}, func(p *reconcile.Patch, v *string) { p.ReferenceInterne = v }},
	{[]string{"numeroSerie"}, func(p *reconcile.Patch, v *string) { p.NumeroSerie = v }},
	{[]string{"fabricant"}, func(p *reconcile.Patch, v *string) { p.Fabricant = v }},
	{[]string{"date", "dateFabrication"}, func(p *reconcile.Patch, v *string) { p.DateFabrication = v }},
	{[]string{"signataire"}, func(p *reconcile.Patch, v *string) { p.Signataire = v }},
	{[]string{"produit", "typeEquipement"}, func(p *reconcile.Patch, v *string) { p.TypeEquipement = v }},
	{[]string{"pdfUrl"}, func(p *reconcile.Patch, v *string) { p.PdfURL = v }},
	{[]string{"normes", "normesCertificat"}, func(p *reconcile.Patch, v *string) {
		p.Normes = v
		p.NormesCertificat = v
	}},
}

func parseLegacy(raw string) (reconcile.Patch, bool) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(raw), &obj); err != nil || obj == nil {
		return reconcile.Patch{}, false
	}
	var patch reconcile.Patch
	for _, k := range legacyKeys {
		for _, key := range k.keys {
			if s, ok := stringify(obj[key]); ok && s != "" {
				k.set(&patch, reconcile.String(s))
				break
			}
		}
	}
	if patch.Empty() {
		patch.RawText = reconcile.String(raw)
	}
	return patch, true
}

func stringify(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return strings.TrimSpace(t), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return "", false
		}
		return string(b), true
	}
}

func nonEmpty(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
