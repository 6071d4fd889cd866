package extraction

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/DavidAtikpo/irata-sub002/internal/platform/apierr"
	"github.com/DavidAtikpo/irata-sub002/internal/platform/gcp"
	"github.com/DavidAtikpo/irata-sub002/internal/platform/logger"
)

var ErrUnavailable = errors.New("text extraction is not configured")

// Extractor reads text out of uploaded documents. PDFs go through Document AI,
// images through Vision OCR. Either backend may be nil.
type Extractor struct {
	doc    gcp.Document
	vision gcp.Vision
	log    *logger.Logger
}

func NewExtractor(doc gcp.Document, vision gcp.Vision, log *logger.Logger) *Extractor {
	if log == nil {
		log = logger.Nop()
	}
	return &Extractor{doc: doc, vision: vision, log: log.With("module", "Extractor")}
}

// Text returns the document text and the backend's confidence.
func (e *Extractor) Text(ctx context.Context, data []byte, mimeType string) (string, float64, error) {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	switch {
	case mimeType == "application/pdf":
		if e == nil || e.doc == nil {
			return "", 0, ErrUnavailable
		}
		res, err := e.doc.ProcessBytes(ctx, gcp.DocAIProcessBytesRequest{MimeType: mimeType, Data: data})
		if err != nil {
			return "", 0, classify(err)
		}
		text := res.PrimaryText
		for _, f := range res.Forms {
			text += "\n" + f.Name + ": " + f.Value
		}
		return text, res.Confidence, nil
	case strings.HasPrefix(mimeType, "image/"):
		if e == nil || e.vision == nil {
			return "", 0, ErrUnavailable
		}
		res, err := e.vision.OCRImageBytes(ctx, data, mimeType)
		if err != nil {
			return "", 0, classify(err)
		}
		return res.PrimaryText, res.Confidence, nil
	default:
		return "", 0, apierr.Decode("unsupported_document", fmt.Errorf("cannot extract text from %q", mimeType))
	}
}

// Extract reads data and parses it for the given upload purpose.
func (e *Extractor) Extract(ctx context.Context, data []byte, mimeType string, reference bool) (*Data, error) {
	text, conf, err := e.Text(ctx, data, mimeType)
	if err != nil {
		return nil, err
	}
	d := Parse(text, reference)
	d.Confidence = conf
	e.log.Debug("Extracted document text", "mime_type", mimeType, "chars", len(text), "standards", d.Normes)
	return &d, nil
}

func classify(err error) error {
	switch status.Code(err) {
	case codes.InvalidArgument, codes.FailedPrecondition, codes.OutOfRange:
		return apierr.Decode("unreadable_document", err)
	default:
		return apierr.Transfer(0, "extraction_failed", err)
	}
}
