package qrcode

import (
	"bytes"
	"fmt"
	"image/color"
	"net/url"
	"os"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	goqr "github.com/skip2/go-qrcode"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"

	"github.com/DavidAtikpo/irata-sub002/internal/platform/logger"
)

const DefaultFallbackBase = "https://api.qrserver.com/v1/create-qr-code/"

type RenderConfig struct {
	Size           int
	Primary        string
	Secondary      string
	PrimaryColor   color.Color
	SecondaryColor color.Color
	FontPath       string
	FallbackBase   string
}

// Image is a rendered code. When Degraded is set PNG is empty and URL points
// at a plain code from the fallback generator.
type Image struct {
	Content  string `json:"content"`
	PNG      []byte `json:"-"`
	URL      string `json:"url,omitempty"`
	Degraded bool   `json:"degraded"`
}

type Renderer struct {
	cfg  RenderConfig
	face font.Face
	log  *logger.Logger
}

func NewRenderer(cfg RenderConfig, log *logger.Logger) (*Renderer, error) {
	if cfg.Size <= 0 {
		cfg.Size = 300
	}
	if strings.TrimSpace(cfg.Primary) == "" && strings.TrimSpace(cfg.Secondary) == "" {
		cfg.Primary, cfg.Secondary = "EPI", "CHECK"
	}
	if cfg.PrimaryColor == nil {
		cfg.PrimaryColor = color.NRGBA{R: 0x1d, G: 0x4e, B: 0xd8, A: 0xff}
	}
	if cfg.SecondaryColor == nil {
		cfg.SecondaryColor = color.NRGBA{R: 0xea, G: 0x58, B: 0x0c, A: 0xff}
	}
	if strings.TrimSpace(cfg.FallbackBase) == "" {
		cfg.FallbackBase = DefaultFallbackBase
	}
	if log == nil {
		log = logger.Nop()
	}
	face, err := loadFontFace(cfg.FontPath, float64(cfg.Size)/14)
	if err != nil {
		return nil, fmt.Errorf("could not load wordmark font: %w", err)
	}
	return &Renderer{cfg: cfg, face: face, log: log.With("module", "QRRenderer")}, nil
}

// Render draws the branded code for content. It does not fail: any drawing
// error degrades to a fallback image URL.
func (r *Renderer) Render(content string) Image {
	png, err := r.draw(content)
	if err != nil {
		r.log.Warn("QR render failed, using fallback", "error", err)
		return Image{Content: content, URL: FallbackURL(r.cfg.FallbackBase, content, r.cfg.Size), Degraded: true}
	}
	return Image{Content: content, PNG: png}
}

func (r *Renderer) draw(content string) ([]byte, error) {
	code, err := goqr.New(content, goqr.Highest)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	size := r.cfg.Size
	dc := gg.NewContext(size, size)
	dc.DrawImage(code.Image(size), 0, 0)

	dc.SetFontFace(r.face)
	pw, th := dc.MeasureString(r.cfg.Primary)
	sw, _ := dc.MeasureString(r.cfg.Secondary)
	gap := th / 4
	if r.cfg.Primary == "" || r.cfg.Secondary == "" {
		gap = 0
	}
	total := pw + gap + sw
	pad := th / 2
	cx, cy := float64(size)/2, float64(size)/2

	// The patch stays under the ~30% a Highest-level code can lose.
	dc.SetColor(color.White)
	dc.DrawRoundedRectangle(cx-total/2-pad, cy-th/2-pad, total+2*pad, th+2*pad, pad/2)
	dc.Fill()

	x := cx - total/2
	dc.SetColor(r.cfg.PrimaryColor)
	dc.DrawStringAnchored(r.cfg.Primary, x, cy, 0, 0.35)
	dc.SetColor(r.cfg.SecondaryColor)
	dc.DrawStringAnchored(r.cfg.Secondary, x+pw+gap, cy, 0, 0.35)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// FallbackURL is a plain, non-branded code served by an external generator.
func FallbackURL(base, content string, size int) string {
	if size <= 0 {
		size = 300
	}
	q := url.Values{}
	q.Set("size", fmt.Sprintf("%dx%d", size, size))
	q.Set("data", content)
	return strings.TrimRight(base, "?") + "?" + q.Encode()
}

func loadFontFace(fontPath string, size float64) (font.Face, error) {
	fontBytes := gobold.TTF
	if strings.TrimSpace(fontPath) != "" {
		b, err := os.ReadFile(fontPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read font file: %w", err)
		}
		fontBytes = b
	}
	parsedFont, err := truetype.Parse(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TTF: %w", err)
	}
	return truetype.NewFace(parsedFont, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	}), nil
}
