package app

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/DavidAtikpo/irata-sub002/internal/platform/dbctx"
	"github.com/DavidAtikpo/irata-sub002/internal/platform/gcp"
	"github.com/DavidAtikpo/irata-sub002/internal/platform/logger"
)

type stubBucket struct{}

func (stubBucket) UploadFile(dbctx.Context, gcp.BucketCategory, string, io.Reader) error { return nil }
func (stubBucket) DeleteFile(dbctx.Context, gcp.BucketCategory, string) error            { return nil }
func (stubBucket) DownloadFile(context.Context, gcp.BucketCategory, string) (io.ReadCloser, error) {
	return nil, errors.New("not implemented")
}
func (stubBucket) GetPublicURL(_ gcp.BucketCategory, key string) string { return "https://cdn.test/" + key }

func TestClassifyStorageProviderBootstrapError(t *testing.T) {
	cases := []struct {
		name string
		src  error
		want StorageProviderBootstrapErrorCode
	}{
		{"invalid mode", &gcp.ObjectStorageConfigError{Code: gcp.ObjectStorageConfigErrorInvalidMode}, StorageProviderBootstrapErrorInvalidMode},
		{"missing host", &gcp.ObjectStorageConfigError{Code: gcp.ObjectStorageConfigErrorMissingEmulatorHost}, StorageProviderBootstrapErrorMissingEmulatorHost},
		{"invalid host", &gcp.ObjectStorageConfigError{Code: gcp.ObjectStorageConfigErrorInvalidEmulatorHost}, StorageProviderBootstrapErrorInvalidEmulatorHost},
		{"connect", errors.New("dial tcp: refused"), StorageProviderBootstrapErrorConnectFailed},
	}
	for _, tc := range cases {
		err := classifyStorageProviderBootstrapError(gcp.ObjectStorageConfig{Mode: gcp.ObjectStorageModeGCS}, tc.src)
		var got *StorageProviderBootstrapError
		if !errors.As(err, &got) {
			t.Fatalf("%s: expected StorageProviderBootstrapError, got=%T", tc.name, err)
		}
		if got.Code != tc.want {
			t.Fatalf("%s: code want=%q got=%q", tc.name, tc.want, got.Code)
		}
		if !errors.Is(err, tc.src) {
			t.Fatalf("%s: cause lost", tc.name)
		}
	}
}

func TestResolveBucketServiceSkipsWithoutBucket(t *testing.T) {
	bucket, err := resolveBucketService(logger.Nop(), StorageConfig{})
	if err != nil || bucket != nil {
		t.Fatalf("expected no bucket and no error, got %v %v", bucket, err)
	}
}

func TestResolveBucketServiceRejectsBadMode(t *testing.T) {
	_, err := resolveBucketService(logger.Nop(), StorageConfig{UploadBucket: "b", Mode: "s3"})
	if got := storageProviderBootstrapErrorCode(err); got != StorageProviderBootstrapErrorInvalidMode {
		t.Fatalf("code: %q (%v)", got, err)
	}
}

func TestResolveBucketServicePassesConfig(t *testing.T) {
	orig := newBucketServiceWithConfig
	t.Cleanup(func() { newBucketServiceWithConfig = orig })

	var gotCfg gcp.BucketConfig
	var gotMode gcp.ObjectStorageMode
	newBucketServiceWithConfig = func(_ *logger.Logger, cfg gcp.BucketConfig, storageCfg gcp.ObjectStorageConfig) (gcp.BucketService, error) {
		gotCfg, gotMode = cfg, storageCfg.Mode
		return stubBucket{}, nil
	}

	bucket, err := resolveBucketService(logger.Nop(), StorageConfig{
		UploadBucket: "uploads",
		QRCodeBucket: "codes",
		Mode:         "gcs_emulator",
		EmulatorHost: "http://fake-gcs:4443",
	})
	if err != nil || bucket == nil {
		t.Fatalf("resolve: %v", err)
	}
	if gotCfg.UploadBucket != "uploads" || gotCfg.QRCodeBucket != "codes" || gotMode != gcp.ObjectStorageModeGCSEmulator {
		t.Fatalf("config not passed: %+v mode=%q", gotCfg, gotMode)
	}

	newBucketServiceWithConfig = func(*logger.Logger, gcp.BucketConfig, gcp.ObjectStorageConfig) (gcp.BucketService, error) {
		return nil, errors.New("connection refused")
	}
	_, err = resolveBucketService(logger.Nop(), StorageConfig{UploadBucket: "uploads"})
	if got := storageProviderBootstrapErrorCode(err); got != StorageProviderBootstrapErrorConnectFailed {
		t.Fatalf("code: %q", got)
	}
}
