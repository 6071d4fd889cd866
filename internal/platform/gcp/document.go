package gcp

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"google.golang.org/api/option"
	"google.golang.org/protobuf/types/known/fieldmaskpb"

	"github.com/DavidAtikpo/irata-sub002/internal/platform/ctxutil"
	"github.com/DavidAtikpo/irata-sub002/internal/platform/logger"
)

// Document extracts text from certificate PDFs.
type Document interface {
	ProcessBytes(ctx context.Context, req DocAIProcessBytesRequest) (*DocAIResult, error)
	Close() error
}

type DocAIProcessBytesRequest struct {
	MimeType string
	Data     []byte
	// FieldMask limits the returned document; empty means everything.
	FieldMask []string
}

type DocAIResult struct {
	Provider    string      `json:"provider"`
	Processor   string      `json:"processor"`
	MimeType    string      `json:"mime_type"`
	PrimaryText string      `json:"primary_text"`
	Pages       []PageText  `json:"pages,omitempty"`
	Forms       []FormField `json:"forms,omitempty"`
	Confidence  float64     `json:"confidence"`
}

type PageText struct {
	PageNumber int     `json:"page_number"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// FormField is a key/value pair a form parser found on a page.
type FormField struct {
	PageNumber int    `json:"page_number"`
	Name       string `json:"name"`
	Value      string `json:"value"`
}

type DocumentConfig struct {
	ProjectID        string
	Location         string
	ProcessorID      string
	ProcessorVersion string
}

type documentService struct {
	log       *logger.Logger
	docClient *documentai.DocumentProcessorClient
	processor string
}

// defaultFieldMask keeps responses small; page images are never needed.
var defaultFieldMask = []string{"text", "pages.page_number", "pages.layout", "pages.paragraphs", "pages.form_fields"}

func NewDocument(cfg DocumentConfig, log *logger.Logger) (Document, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	slog := log.With("service", "gcp.Document")

	location := strings.TrimSpace(cfg.Location)
	if location == "" {
		location = strings.TrimSpace(os.Getenv("DOCUMENTAI_LOCATION"))
	}
	if location == "" {
		location = "eu"
	}
	name := processorName(cfg.ProjectID, location, cfg.ProcessorID, cfg.ProcessorVersion)
	if name == "" {
		return nil, fmt.Errorf("documentai processor not configured")
	}
	endpoint := fmt.Sprintf("%s-documentai.googleapis.com:443", location)

	// DocumentAI needs a regional endpoint.
	docOpts := append([]option.ClientOption{option.WithEndpoint(endpoint)}, clientOptions(os.LookupEnv)...)
	c, err := documentai.NewDocumentProcessorClient(context.Background(), docOpts...)
	if err != nil {
		return nil, fmt.Errorf("documentai client: %w", err)
	}

	slog.Info("Document AI initialized", "endpoint", endpoint, "processor", name)
	return &documentService{log: slog, docClient: c, processor: name}, nil
}

func (s *documentService) Close() error {
	if s == nil || s.docClient == nil {
		return nil
	}
	return s.docClient.Close()
}

func (s *documentService) ProcessBytes(ctx context.Context, req DocAIProcessBytesRequest) (*DocAIResult, error) {
	ctx = ctxutil.Default(ctx)
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	if req.MimeType == "" {
		req.MimeType = "application/pdf"
	}
	if len(req.Data) == 0 {
		return &DocAIResult{Provider: "gcp_documentai", Processor: s.processor, MimeType: req.MimeType}, nil
	}
	mask := req.FieldMask
	if len(mask) == 0 {
		mask = defaultFieldMask
	}

	r := &documentaipb.ProcessRequest{
		Name: s.processor,
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  req.Data,
				MimeType: req.MimeType,
			},
		},
		FieldMask: &fieldmaskpb.FieldMask{Paths: mask},
	}

	resp, err := s.docClient.ProcessDocument(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("documentai ProcessDocument: %w", err)
	}
	if resp == nil || resp.Document == nil {
		return &DocAIResult{Provider: "gcp_documentai", Processor: s.processor, MimeType: req.MimeType}, nil
	}
	return buildDocAIResult(resp.Document, s.processor, req.MimeType), nil
}

func buildDocAIResult(doc *documentaipb.Document, processor string, mimeType string) *DocAIResult {
	out := &DocAIResult{
		Provider:  "gcp_documentai",
		Processor: processor,
		MimeType:  mimeType,
	}
	if doc == nil {
		return out
	}
	out.PrimaryText = strings.TrimSpace(doc.Text)

	var confSum float64
	confN := 0
	for _, p := range doc.Pages {
		if p == nil {
			continue
		}
		pageNum := int(p.PageNumber)

		var pageText strings.Builder
		for _, para := range p.Paragraphs {
			if para == nil || para.Layout == nil || para.Layout.TextAnchor == nil {
				continue
			}
			t := strings.TrimSpace(textFromAnchor(doc.Text, para.Layout.TextAnchor))
			if t == "" {
				continue
			}
			pageText.WriteString(t)
			pageText.WriteString("\n")
		}
		conf := 0.0
		if p.Layout != nil && p.Layout.Confidence > 0 {
			conf = float64(p.Layout.Confidence)
			confSum += conf
			confN++
		}
		if pt := strings.TrimSpace(pageText.String()); pt != "" {
			out.Pages = append(out.Pages, PageText{PageNumber: pageNum, Text: pt, Confidence: conf})
		}

		for _, ff := range p.FormFields {
			if ff == nil {
				continue
			}
			var k, v string
			if ff.FieldName != nil && ff.FieldName.TextAnchor != nil {
				k = collapseWhitespace(textFromAnchor(doc.Text, ff.FieldName.TextAnchor))
			}
			if ff.FieldValue != nil && ff.FieldValue.TextAnchor != nil {
				v = collapseWhitespace(textFromAnchor(doc.Text, ff.FieldValue.TextAnchor))
			}
			if k == "" && v == "" {
				continue
			}
			out.Forms = append(out.Forms, FormField{PageNumber: pageNum, Name: strings.TrimSuffix(k, ":"), Value: v})
		}
	}
	if confN > 0 {
		out.Confidence = confSum / float64(confN)
	}

	// Some processors populate doc.Text but omit page paragraphs.
	if len(out.Pages) == 0 && out.PrimaryText != "" {
		out.Pages = append(out.Pages, PageText{PageNumber: 1, Text: out.PrimaryText, Confidence: out.Confidence})
	}
	return out
}

func textFromAnchor(full string, anchor *documentaipb.Document_TextAnchor) string {
	if anchor == nil || len(anchor.TextSegments) == 0 || full == "" {
		return ""
	}
	var b strings.Builder
	for _, seg := range anchor.TextSegments {
		if seg == nil {
			continue
		}
		start := int(seg.StartIndex)
		end := int(seg.EndIndex)
		if start < 0 {
			start = 0
		}
		if end > len(full) {
			end = len(full)
		}
		if start >= end {
			continue
		}
		b.WriteString(full[start:end])
	}
	return b.String()
}

func processorName(project, location, processorID, version string) string {
	project = strings.TrimSpace(project)
	location = strings.TrimSpace(location)
	processorID = strings.TrimSpace(processorID)
	version = strings.TrimSpace(version)

	if project == "" || location == "" || processorID == "" {
		return ""
	}
	base := fmt.Sprintf("projects/%s/locations/%s/processors/%s", project, location, processorID)
	if version != "" {
		return base + "/processorVersions/" + version
	}
	return base
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(strings.ReplaceAll(s, "\u00a0", " ")), " ")
}
