package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/DavidAtikpo/irata-sub002/internal/data/repos"
	"github.com/DavidAtikpo/irata-sub002/internal/data/repos/testutil"
	"github.com/DavidAtikpo/irata-sub002/internal/domain/inspection"
	httpH "github.com/DavidAtikpo/irata-sub002/internal/http/handlers"
	"github.com/DavidAtikpo/irata-sub002/internal/http/response"
	"github.com/DavidAtikpo/irata-sub002/internal/modules/checklist"
	"github.com/DavidAtikpo/irata-sub002/internal/modules/propagation"
	"github.com/DavidAtikpo/irata-sub002/internal/modules/qrcode"
	"github.com/DavidAtikpo/irata-sub002/internal/realtime/bus"
	"github.com/DavidAtikpo/irata-sub002/internal/services"
)

const testMaxUpload = 1 << 10

type stubUploader struct{}

func (stubUploader) Upload(_ context.Context, kind services.UploadKind, filename string, _ []byte) (*services.UploadResult, error) {
	return &services.UploadResult{URL: "https://cdn.test/" + string(kind) + "/" + filename}, nil
}

type testServer struct {
	engine *gin.Engine
	db     *gorm.DB
	bc     *propagation.Broadcaster
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := testutil.Logger(t)
	conn := testutil.DB(t)

	recordRepo := repos.NewRecordRepo(conn, log)
	records := services.NewRecordService(log, recordRepo)
	profiles := services.NewProfileService(log, repos.NewProfileRepo(conn, log))
	pub := services.NewLocalPublisher(log, recordRepo, bus.NewLocalBus())
	bc := propagation.NewBroadcaster(pub, time.Second, log)
	decoder := qrcode.NewDecoder(profiles, log)
	sessions := services.NewInspectionService(log, records, stubUploader{}, decoder, nil, nil, bc, "https://epi.test")

	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	engine := NewRouter(RouterConfig{
		Log:              log,
		MaxBodyBytes:     testMaxUpload * 4,
		HealthHandler:    httpH.NewHealthHandler(sqlDB),
		RecordHandler:    httpH.NewRecordHandler(log, records),
		ProfileHandler:   httpH.NewProfileHandler(profiles),
		UploadHandler:    httpH.NewUploadHandler(log, stubUploader{}, decoder, testMaxUpload),
		BroadcastHandler: httpH.NewBroadcastHandler(log, pub),
		SessionHandler:   httpH.NewSessionHandler(log, sessions, testMaxUpload),
	})
	return &testServer{engine: engine, db: conn, bc: bc}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) multipart(t *testing.T, path, kind string, file []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if kind != "" {
		_ = w.WriteField("type", kind)
	}
	fw, err := w.CreateFormFile("file", "scan.pdf")
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	_, _ = fw.Write(file)
	_ = w.Close()

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status: got=%d want=%d body=%s", rec.Code, want, rec.Body.String())
	}
}

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/healthcheck", nil)
	expectStatus(t, rec, http.StatusOK)
	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatalf("request id not attached")
	}
}

func TestEditingSessionRoundTrip(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/inspections/sessions", map[string]string{"equipmentType": "harnais", "batchId": "B-7"})
	expectStatus(t, rec, http.StatusCreated)
	view := decode[services.SessionView](t, rec)
	id := view.Record.ID.String()
	base := "/api/inspections/" + id

	rec = s.do(t, http.MethodPost, base+"/save", nil)
	expectStatus(t, rec, http.StatusUnprocessableEntity)
	if env := decode[response.ErrorEnvelope](t, rec); env.Error.Kind != "validation" {
		t.Fatalf("save without reference: %+v", env.Error)
	}

	rec = s.do(t, http.MethodPatch, base+"/reconcile", map[string]any{"source": "manual", "patch": map[string]string{"referenceInterne": "H-9"}})
	expectStatus(t, rec, http.StatusOK)

	rec = s.do(t, http.MethodPatch, base+"/reconcile", map[string]any{"source": "pdf", "patch": map[string]string{"normes": "EN361"}})
	expectStatus(t, rec, http.StatusUnprocessableEntity)

	path := "etatSangles.coutureSecurite"
	rec = s.do(t, http.MethodPut, base+"/verdict", map[string]any{"path": path, "verdict": "x", "comment": "fil coupé"})
	expectStatus(t, rec, http.StatusOK)

	rec = s.do(t, http.MethodPut, base+"/comment/draft", map[string]string{"path": path, "text": "nope"})
	expectStatus(t, rec, http.StatusConflict)

	rec = s.do(t, http.MethodPost, base+"/save", nil)
	expectStatus(t, rec, http.StatusOK)

	rec = s.do(t, http.MethodGet, base, nil)
	expectStatus(t, rec, http.StatusOK)
	stored := decode[inspection.Record](t, rec)
	tree := checklist.HydrateJSON(stored.InspectionData, checklist.MustTemplate(checklist.TypeHarness))
	if got := tree.Leaf(checklist.FieldPath(path)); got != (checklist.Leaf{Verdict: checklist.VerdictInvalid, Comment: "fil coupé"}) {
		t.Fatalf("stored leaf: %+v", got)
	}

	rec = s.do(t, http.MethodGet, "/inspection/"+id+"-h-9", nil)
	expectStatus(t, rec, http.StatusOK)
	if !strings.Contains(rec.Body.String(), `"referenceInterne":"H-9"`) {
		t.Fatalf("public view: %s", rec.Body.String())
	}
	rec = s.do(t, http.MethodGet, "/inspection/"+id+"-old-name", nil)
	expectStatus(t, rec, http.StatusMovedPermanently)

	rec = s.do(t, http.MethodGet, base+"/export.xlsx", nil)
	expectStatus(t, rec, http.StatusOK)
	if !strings.HasPrefix(rec.Header().Get("Content-Type"), "application/vnd.openxmlformats") {
		t.Fatalf("export content type: %q", rec.Header().Get("Content-Type"))
	}

	rec = s.do(t, http.MethodGet, base+"/qrcode", nil)
	expectStatus(t, rec, http.StatusOK)
	if img := decode[qrcode.Image](t, rec); !img.Degraded || img.Content != "https://epi.test/inspection/"+id+"-h-9" {
		t.Fatalf("qr image: %+v", img)
	}
}

func TestProfileEndpointsAndQRTextScan(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/equipment-profiles", map[string]string{"code": "ABC", "referenceInterne": "H-001", "numeroSerie": "SN9"})
	expectStatus(t, rec, http.StatusCreated)
	rec = s.do(t, http.MethodPost, "/api/equipment-profiles", map[string]string{"code": "ABC"})
	expectStatus(t, rec, http.StatusConflict)
	rec = s.do(t, http.MethodGet, "/api/equipment-profile/ABC", nil)
	expectStatus(t, rec, http.StatusOK)
	rec = s.do(t, http.MethodGet, "/api/equipment-profile/NOPE", nil)
	expectStatus(t, rec, http.StatusNotFound)

	rec = s.do(t, http.MethodPost, "/api/inspections/sessions", map[string]string{"equipmentType": "harnais"})
	expectStatus(t, rec, http.StatusCreated)
	id := decode[services.SessionView](t, rec).Record.ID.String()

	rec = s.do(t, http.MethodPost, "/api/inspections/"+id+"/qr-scan", map[string]string{"text": "https://epi.test/equipment/ABC"})
	expectStatus(t, rec, http.StatusOK)
	out := decode[struct {
		Session services.SessionView `json:"session"`
	}](t, rec)
	if out.Session.Record.ReferenceInterne != "H-001" || out.Session.Record.NumeroSerie != "SN9" {
		t.Fatalf("scan not applied: %+v", out.Session.Record)
	}

	rec = s.do(t, http.MethodPost, "/api/inspections/"+id+"/qr-scan", map[string]string{"text": "https://epi.test/equipment/NOPE"})
	expectStatus(t, rec, http.StatusUnprocessableEntity)
	if env := decode[response.ErrorEnvelope](t, rec); env.Error.Kind != "decode" {
		t.Fatalf("unknown profile: %+v", env.Error)
	}
}

func TestUploadLimitsAndKinds(t *testing.T) {
	s := newTestServer(t)

	rec := s.multipart(t, "/api/uploads", "pdf", []byte("%PDF-1.4"))
	expectStatus(t, rec, http.StatusOK)
	if res := decode[services.UploadResult](t, rec); res.URL != "https://cdn.test/pdf/scan.pdf" {
		t.Fatalf("upload url: %q", res.URL)
	}

	rec = s.multipart(t, "/api/uploads", "pdf", bytes.Repeat([]byte("a"), testMaxUpload+1))
	expectStatus(t, rec, http.StatusRequestEntityTooLarge)
	if env := decode[response.ErrorEnvelope](t, rec); env.Error.Code != "file_too_large" {
		t.Fatalf("too large: %+v", env.Error)
	}

	rec = s.multipart(t, "/api/uploads", "video", []byte("x"))
	expectStatus(t, rec, http.StatusUnprocessableEntity)
}

func TestBroadcastEndpoints(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	src := testutil.SeedRecord(t, ctx, s.db, "harnais", "B-1", "H-1")
	sib := testutil.SeedRecord(t, ctx, s.db, "harnais", "B-1", "H-2")
	other := testutil.SeedRecord(t, ctx, s.db, "harnais", "B-2", "H-3")

	body := map[string]any{"sourceId": src.ID, "certificateUrl": "https://cdn.test/cert.pdf"}
	for i := 0; i < 2; i++ {
		rec := s.do(t, http.MethodPost, "/api/inspections/broadcast/certificate", body)
		expectStatus(t, rec, http.StatusOK)
		if got := decode[map[string]int](t, rec)["updated"]; got != 1 {
			t.Fatalf("updated: got=%d want=1", got)
		}
	}

	var got inspection.Record
	if err := s.db.First(&got, "id = ?", sib.ID).Error; err != nil {
		t.Fatalf("load sibling: %v", err)
	}
	if got.CertificateURL != "https://cdn.test/cert.pdf" {
		t.Fatalf("sibling certificate: %q", got.CertificateURL)
	}
	if err := s.db.First(&got, "id = ?", other.ID).Error; err != nil {
		t.Fatalf("load other: %v", err)
	}
	if got.CertificateURL != "" {
		t.Fatalf("other batch touched: %q", got.CertificateURL)
	}

	rec := s.do(t, http.MethodPost, "/api/inspections/broadcast/certificate", map[string]any{"sourceId": uuid.New(), "certificateUrl": "x"})
	expectStatus(t, rec, http.StatusNotFound)
	rec = s.do(t, http.MethodPost, "/api/inspections/broadcast/signature", map[string]any{"sourceId": src.ID})
	expectStatus(t, rec, http.StatusUnprocessableEntity)
}
