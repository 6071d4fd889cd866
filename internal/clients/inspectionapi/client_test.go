package inspectionapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DavidAtikpo/irata-sub002/internal/domain/inspection"
	"github.com/DavidAtikpo/irata-sub002/internal/modules/propagation"
	"github.com/DavidAtikpo/irata-sub002/internal/modules/qrcode"
	"github.com/DavidAtikpo/irata-sub002/internal/platform/apierr"
	"github.com/DavidAtikpo/irata-sub002/internal/platform/logger"
	"github.com/DavidAtikpo/irata-sub002/internal/services"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL, 2*time.Second, logger.Nop())
}

func TestLookupProfile(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/equipment-profile/ABC123":
			_ = json.NewEncoder(w).Encode(inspection.Profile{Code: "ABC123", ReferenceInterne: "H-001"})
		case "/api/equipment-profile/BOOM":
			w.WriteHeader(http.StatusBadGateway)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	p, err := c.LookupProfile(context.Background(), "ABC123")
	require.NoError(t, err)
	assert.Equal(t, "H-001", p.ReferenceInterne)

	_, err = c.LookupProfile(context.Background(), "NOPE")
	assert.True(t, errors.Is(err, qrcode.ErrProfileNotFound))

	_, err = c.LookupProfile(context.Background(), "BOOM")
	assert.Equal(t, apierr.KindTransfer, apierr.KindOf(err))
}

func TestUploadSurfacesTooLargeWithoutRetry(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		if r.FormValue("type") == "pdf" {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}
		f, _, err := r.FormFile("file")
		require.NoError(t, err)
		body, _ := io.ReadAll(f)
		assert.Equal(t, "jpeg-bytes", string(body))
		_ = json.NewEncoder(w).Encode(services.UploadResult{URL: "https://cdn.test/p.jpg"})
	})

	res, err := c.Upload(context.Background(), services.UploadPhoto, "p.jpg", []byte("jpeg-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.test/p.jpg", res.URL)

	_, err = c.Upload(context.Background(), services.UploadPDF, "big.pdf", []byte("%PDF"))
	assert.True(t, apierr.IsTooLarge(err))
	assert.Equal(t, int32(2), calls.Load())
}

func TestErrorEnvelopeKindIsKept(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error":{"message":"referenceInterne is required","code":"reference_required","kind":"validation"}}`))
	})
	_, err := c.Create(context.Background(), &inspection.Record{EquipmentType: "harnais"})
	ae, ok := apierr.As(err)
	require.True(t, ok)
	assert.Equal(t, apierr.KindValidation, ae.Kind)
	assert.Equal(t, "reference_required", ae.Code)
}

func TestPublishArtifactCallsOnceOn500(t *testing.T) {
	var calls atomic.Int32
	var path string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		path = r.URL.Path
		w.WriteHeader(http.StatusInternalServerError)
	})
	_, err := c.PublishArtifact(context.Background(), propagation.Artifact{SourceID: uuid.New(), Kind: propagation.KindCertificate, CertificateURL: "u"})
	require.Error(t, err)
	assert.Equal(t, apierr.KindBroadcast, apierr.KindOf(err))
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, "/api/inspections/broadcast/certificate", path)
}

func TestRecordRoundTrip(t *testing.T) {
	id := uuid.New()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var rec inspection.Record
		if r.Method == http.MethodPut {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&rec))
			assert.Equal(t, "/api/inspections/"+id.String(), r.URL.Path)
			assert.JSONEq(t, `{"pointsAttache.metalliques":{"Fissure":true}}`, string(rec.CrossedOutWords))
		}
		rec.ID = id
		rec.ReferenceInterne = "H-1"
		_ = json.NewEncoder(w).Encode(rec)
	})
	out, err := c.Update(context.Background(), &inspection.Record{
		ID:              id,
		CrossedOutWords: []byte(`{"pointsAttache.metalliques":{"Fissure":true}}`),
	})
	require.NoError(t, err)
	assert.Equal(t, "H-1", out.ReferenceInterne)

	got, err := c.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
}
