package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/DavidAtikpo/irata-sub002/internal/domain/inspection"
	"github.com/DavidAtikpo/irata-sub002/internal/modules/extraction"
	"github.com/DavidAtikpo/irata-sub002/internal/modules/propagation"
	"github.com/DavidAtikpo/irata-sub002/internal/modules/qrcode"
	"github.com/DavidAtikpo/irata-sub002/internal/platform/apierr"
	"github.com/DavidAtikpo/irata-sub002/internal/platform/dbctx"
	"github.com/DavidAtikpo/irata-sub002/internal/platform/gcp"
)

type memStore struct {
	mu   sync.Mutex
	recs map[uuid.UUID]inspection.Record
}

func newMemStore() *memStore { return &memStore{recs: map[uuid.UUID]inspection.Record{}} }

func (m *memStore) Get(ctx context.Context, id uuid.UUID) (*inspection.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.recs[id]
	if !ok {
		return nil, apierr.New(404, "record_not_found", ErrRecordNotFound)
	}
	return &r, nil
}

func (m *memStore) Create(ctx context.Context, rec *inspection.Record) (*inspection.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recs[rec.ID] = *rec
	out := *rec
	return &out, nil
}

func (m *memStore) Update(ctx context.Context, rec *inspection.Record) (*inspection.Record, error) {
	return m.Create(ctx, rec)
}

type fakeUploader struct {
	mu      sync.Mutex
	calls   int
	err     error
	gate    chan struct{}
	started chan struct{}
	data    *extraction.Data
}

func (f *fakeUploader) Upload(ctx context.Context, kind UploadKind, filename string, data []byte) (*UploadResult, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.gate != nil && kind == UploadPhoto {
		f.started <- struct{}{}
		<-f.gate
	}
	if f.err != nil {
		return nil, f.err
	}
	return &UploadResult{URL: fmt.Sprintf("https://cdn.test/%s/%s", kind, filename), ExtractedData: f.data}, nil
}

type countingPublisher struct {
	calls atomic.Int32
	err   error
}

func (p *countingPublisher) PublishArtifact(ctx context.Context, a propagation.Artifact) (int, error) {
	p.calls.Add(1)
	if p.err != nil {
		return 0, p.err
	}
	return 1, nil
}

type fakeLookup map[string]inspection.Profile

func (f fakeLookup) LookupProfile(ctx context.Context, code string) (*inspection.Profile, error) {
	p, ok := f[code]
	if !ok {
		return nil, qrcode.ErrProfileNotFound
	}
	return &p, nil
}

type fakeBucket struct {
	mu      sync.Mutex
	objects map[string][]byte
	err     error
}

func (b *fakeBucket) UploadFile(dbc dbctx.Context, category gcp.BucketCategory, key string, file io.Reader) error {
	if b.err != nil {
		return b.err
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.objects == nil {
		b.objects = map[string][]byte{}
	}
	b.objects[string(category)+"/"+key] = data
	return nil
}

func (b *fakeBucket) DeleteFile(dbc dbctx.Context, category gcp.BucketCategory, key string) error {
	return nil
}

func (b *fakeBucket) DownloadFile(ctx context.Context, category gcp.BucketCategory, key string) (io.ReadCloser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.objects[string(category)+"/"+key]
	if !ok {
		return nil, errors.New("not found")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (b *fakeBucket) GetPublicURL(category gcp.BucketCategory, key string) string {
	return "https://cdn.test/" + key
}

type fakeExtractor struct {
	data *extraction.Data
	err  error
}

func (f fakeExtractor) Extract(ctx context.Context, data []byte, mimeType string, reference bool) (*extraction.Data, error) {
	return f.data, f.err
}
