package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/DavidAtikpo/irata-sub002/internal/modules/extraction"
	"github.com/DavidAtikpo/irata-sub002/internal/platform/apierr"
	"github.com/DavidAtikpo/irata-sub002/internal/platform/logger"
)

func TestBucketUploaderLimitsAndExtracts(t *testing.T) {
	bucket := &fakeBucket{}
	ex := fakeExtractor{data: &extraction.Data{Normes: "EN 397"}}
	up := NewBucketUploader(logger.Nop(), bucket, ex, 8)

	if _, err := up.Upload(context.Background(), UploadPDF, "big.pdf", []byte("123456789")); !apierr.IsTooLarge(err) {
		t.Fatalf("expected too large, got %v", err)
	}
	if _, err := up.Upload(context.Background(), UploadPDF, "empty.pdf", nil); apierr.KindOf(err) != apierr.KindValidation {
		t.Fatalf("expected validation error for empty file, got %v", err)
	}

	res, err := up.Upload(context.Background(), UploadPDF, "cert.PDF", []byte("%PDF"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if !strings.HasPrefix(res.URL, "https://cdn.test/inspections/pdf/") || !strings.HasSuffix(res.URL, ".pdf") {
		t.Fatalf("url: %s", res.URL)
	}
	if res.ExtractedData == nil || res.ExtractedData.Normes != "EN 397" {
		t.Fatalf("extracted data: %+v", res.ExtractedData)
	}

	photo, err := up.Upload(context.Background(), UploadPhoto, "p.jpg", []byte("jpg"))
	if err != nil || photo.ExtractedData != nil {
		t.Fatalf("photo upload: %+v %v", photo, err)
	}
}

func TestBucketUploaderKeepsFileWhenExtractionFails(t *testing.T) {
	up := NewBucketUploader(logger.Nop(), &fakeBucket{}, fakeExtractor{err: errors.New("docai down")}, 0)
	res, err := up.Upload(context.Background(), UploadReference, "ref.pdf", []byte("%PDF"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if res.URL == "" || res.ExtractedData != nil {
		t.Fatalf("result: %+v", res)
	}

	failing := NewBucketUploader(logger.Nop(), &fakeBucket{err: errors.New("gcs down")}, nil, 0)
	if _, err := failing.Upload(context.Background(), UploadPhoto, "p.jpg", []byte("x")); apierr.KindOf(err) != apierr.KindTransfer {
		t.Fatalf("expected transfer error, got %v", err)
	}
}

func TestParseUploadKind(t *testing.T) {
	for _, k := range []string{"photo", "qrcode", "pdf", "reference", "dateAchat", "signature", "certificate"} {
		if _, err := ParseUploadKind(k); err != nil {
			t.Fatalf("ParseUploadKind(%q): %v", k, err)
		}
	}
	if _, err := ParseUploadKind("video"); err == nil {
		t.Fatalf("unknown kind accepted")
	}
}

func TestUnavailableUploaderReportsTransfer(t *testing.T) {
	_, err := NewUnavailableUploader().Upload(context.Background(), UploadPhoto, "a.jpg", []byte("x"))
	if !errors.Is(err, ErrStorageUnavailable) || apierr.KindOf(err) != apierr.KindTransfer {
		t.Fatalf("unexpected error: %v", err)
	}
}
