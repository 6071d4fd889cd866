package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/DavidAtikpo/irata-sub002/internal/modules/extraction"
	"github.com/DavidAtikpo/irata-sub002/internal/platform/apierr"
	"github.com/DavidAtikpo/irata-sub002/internal/platform/dbctx"
	"github.com/DavidAtikpo/irata-sub002/internal/platform/gcp"
	"github.com/DavidAtikpo/irata-sub002/internal/platform/logger"
)

// UploadKind is the slot an uploaded file is meant for.
type UploadKind string

const (
	UploadPhoto       UploadKind = "photo"
	UploadQRCode      UploadKind = "qrcode"
	UploadPDF         UploadKind = "pdf"
	UploadReference   UploadKind = "reference"
	UploadDateAchat   UploadKind = "dateAchat"
	UploadSignature   UploadKind = "signature"
	UploadCertificate UploadKind = "certificate"
)

func ParseUploadKind(raw string) (UploadKind, error) {
	k := UploadKind(strings.TrimSpace(raw))
	switch k {
	case UploadPhoto, UploadQRCode, UploadPDF, UploadReference, UploadDateAchat, UploadSignature, UploadCertificate:
		return k, nil
	}
	return "", apierr.Validation("unknown_upload_type", fmt.Errorf("unknown upload type %q", raw))
}

// extracts reports whether uploads of k go through text extraction.
func (k UploadKind) extracts() bool { return k == UploadPDF || k == UploadReference }

type UploadResult struct {
	URL           string           `json:"url"`
	ExtractedData *extraction.Data `json:"extractedData,omitempty"`
}

// Uploader is the upload collaborator.
type Uploader interface {
	Upload(ctx context.Context, kind UploadKind, filename string, data []byte) (*UploadResult, error)
}

// DocumentExtractor is the part of the extractor the upload path needs.
type DocumentExtractor interface {
	Extract(ctx context.Context, data []byte, mimeType string, reference bool) (*extraction.Data, error)
}

type bucketUploader struct {
	log       *logger.Logger
	bucket    gcp.BucketService
	extractor DocumentExtractor
	maxBytes  int64
}

func NewBucketUploader(baseLog *logger.Logger, bucket gcp.BucketService, extractor DocumentExtractor, maxBytes int64) Uploader {
	return &bucketUploader{
		log:       baseLog.With("service", "BucketUploader"),
		bucket:    bucket,
		extractor: extractor,
		maxBytes:  maxBytes,
	}
}

func (u *bucketUploader) Upload(ctx context.Context, kind UploadKind, filename string, data []byte) (*UploadResult, error) {
	if len(data) == 0 {
		return nil, apierr.Validation("empty_file", errors.New("uploaded file is empty"))
	}
	if u.maxBytes > 0 && int64(len(data)) > u.maxBytes {
		return nil, apierr.TooLarge(fmt.Errorf("file is %d bytes, limit %d", len(data), u.maxBytes))
	}

	ext := strings.ToLower(filepath.Ext(filename))
	key := fmt.Sprintf("inspections/%s/%s%s", kind, uuid.NewString(), ext)
	if err := u.bucket.UploadFile(dbctx.For(ctx), gcp.BucketCategoryUpload, key, bytes.NewReader(data)); err != nil {
		u.log.Error("UploadFile failed", "kind", kind, "storage_key", key, "error", err)
		return nil, apierr.Transfer(0, "upload_failed", err)
	}
	out := &UploadResult{URL: u.bucket.GetPublicURL(gcp.BucketCategoryUpload, key)}

	if kind.extracts() && u.extractor != nil {
		mimeType := gcp.ContentTypeForKey(key)
		if mimeType == "" {
			mimeType = http.DetectContentType(data)
		}
		extracted, err := u.extractor.Extract(ctx, data, mimeType, kind == UploadReference)
		switch {
		case err == nil:
			out.ExtractedData = extracted
		case !errors.Is(err, extraction.ErrUnavailable):
			// The file is stored; a failed extraction only loses the prefill.
			u.log.Warn("extraction failed", "kind", kind, "storage_key", key, "error", err)
		}
	}
	return out, nil
}

var ErrStorageUnavailable = errors.New("object storage is not configured")

type unavailableUploader struct{}

// NewUnavailableUploader rejects every upload. It stands in when no bucket
// is configured so the rest of the editor keeps working.
func NewUnavailableUploader() Uploader { return unavailableUploader{} }

func (unavailableUploader) Upload(context.Context, UploadKind, string, []byte) (*UploadResult, error) {
	return nil, apierr.Transfer(http.StatusServiceUnavailable, "storage_unavailable", ErrStorageUnavailable)
}
