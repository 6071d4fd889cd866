package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/DavidAtikpo/irata-sub002/internal/domain/inspection"
	"github.com/DavidAtikpo/irata-sub002/internal/modules/checklist"
	"github.com/DavidAtikpo/irata-sub002/internal/modules/export"
	"github.com/DavidAtikpo/irata-sub002/internal/modules/propagation"
	"github.com/DavidAtikpo/irata-sub002/internal/modules/qrcode"
	"github.com/DavidAtikpo/irata-sub002/internal/modules/reconcile"
	"github.com/DavidAtikpo/irata-sub002/internal/platform/apierr"
	"github.com/DavidAtikpo/irata-sub002/internal/platform/dbctx"
	"github.com/DavidAtikpo/irata-sub002/internal/platform/gcp"
	"github.com/DavidAtikpo/irata-sub002/internal/platform/logger"
	"github.com/DavidAtikpo/irata-sub002/internal/realtime"
)

var (
	ErrUploadInFlight = errors.New("an upload of this kind is already in progress")
	ErrBadSignature   = errors.New("signature must be an image data URI")
)

// SessionView is what the editor renders after every operation.
type SessionView struct {
	Record  inspection.Record      `json:"record"`
	Title   string                 `json:"title"`
	Entries []checklist.EntryState `json:"entries"`
	Stored  bool                   `json:"stored"`
}

type session struct {
	mu     sync.Mutex
	record inspection.Record
	sheet  *checklist.Sheet
	// stored is false until the first save creates the record.
	stored bool
}

type InspectionService interface {
	Start(equipmentType, batchID string) (*SessionView, error)
	Open(ctx context.Context, id uuid.UUID) (*SessionView, error)
	SetVerdict(ctx context.Context, id uuid.UUID, p checklist.FieldPath, v checklist.Verdict, comment *string) (*SessionView, error)
	ToggleComment(ctx context.Context, id uuid.UUID, p checklist.FieldPath) (checklist.Editor, error)
	UpdateDraft(ctx context.Context, id uuid.UUID, p checklist.FieldPath, text string) error
	CommitComment(ctx context.Context, id uuid.UUID, p checklist.FieldPath) (*SessionView, error)
	ToggleWord(ctx context.Context, id uuid.UUID, p checklist.FieldPath, word string) (bool, error)
	SetHistoryDate(ctx context.Context, id uuid.UUID, date string) (*SessionView, error)
	ApplyManual(ctx context.Context, id uuid.UUID, patch reconcile.Patch) (*SessionView, error)
	ScanQR(ctx context.Context, id uuid.UUID, image []byte) (*qrcode.Result, *SessionView, error)
	ScanQRText(ctx context.Context, id uuid.UUID, raw string) (*qrcode.Result, *SessionView, error)
	Upload(ctx context.Context, id uuid.UUID, kind UploadKind, filename string, data []byte) (*UploadResult, *SessionView, error)
	Sign(ctx context.Context, id uuid.UUID, dataURI string) (*SessionView, error)
	Save(ctx context.Context, id uuid.UUID) (*inspection.Record, error)
	QRCode(ctx context.Context, id uuid.UUID) (qrcode.Image, error)
	Export(ctx context.Context, id uuid.UUID) ([]byte, error)
	Close(id uuid.UUID)
	HandleEvent(ctx context.Context, evt realtime.Event)
}

type inspectionService struct {
	log         *logger.Logger
	store       RecordStore
	uploader    Uploader
	decoder     *qrcode.Decoder
	renderer    *qrcode.Renderer
	qrBucket    gcp.BucketService
	broadcaster *propagation.Broadcaster
	origin      string
	now         func() time.Time

	mu       sync.Mutex
	sessions map[uuid.UUID]*session
	inflight map[string]*semaphore.Weighted
}

func NewInspectionService(
	baseLog *logger.Logger,
	store RecordStore,
	uploader Uploader,
	decoder *qrcode.Decoder,
	renderer *qrcode.Renderer,
	qrBucket gcp.BucketService,
	broadcaster *propagation.Broadcaster,
	publicOrigin string,
) InspectionService {
	return &inspectionService{
		log:         baseLog.With("service", "InspectionService"),
		store:       store,
		uploader:    uploader,
		decoder:     decoder,
		renderer:    renderer,
		qrBucket:    qrBucket,
		broadcaster: broadcaster,
		origin:      publicOrigin,
		now:         time.Now,
		sessions:    map[uuid.UUID]*session{},
		inflight:    map[string]*semaphore.Weighted{},
	}
}

func newSession(rec inspection.Record, stored bool) (*session, error) {
	t, err := checklist.ParseEquipmentType(rec.EquipmentType)
	if err != nil {
		return nil, apierr.Validation("unknown_equipment_type", err)
	}
	rec.EquipmentType = string(t)
	tree := checklist.HydrateJSON(rec.InspectionData, checklist.MustTemplate(t))

	var crossed map[string]map[string]bool
	if len(rec.CrossedOutWords) > 0 {
		if err := json.Unmarshal(rec.CrossedOutWords, &crossed); err != nil {
			return nil, apierr.Validation("bad_crossed_out_words", fmt.Errorf("decode crossedOutWords: %w", err))
		}
	}
	sheet, err := checklist.NewSheet(tree, crossed)
	if err != nil {
		return nil, err
	}
	return &session{record: rec, sheet: sheet, stored: stored}, nil
}

func (s *inspectionService) Start(equipmentType, batchID string) (*SessionView, error) {
	rec := inspection.Record{
		ID:            uuid.New(),
		EquipmentType: equipmentType,
		BatchID:       strings.TrimSpace(batchID),
	}
	rec = reconcile.Settle(rec, rec, s.now())
	sess, err := newSession(rec, false)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.sessions[rec.ID] = sess
	s.mu.Unlock()
	s.log.Debug("Editing session started", "record_id", rec.ID, "equipment_type", sess.record.EquipmentType)
	return sess.view(), nil
}

func (s *inspectionService) Open(ctx context.Context, id uuid.UUID) (*SessionView, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.view(), nil
}

// session returns the open session of id, loading it from the store on first
// use.
func (s *inspectionService) session(ctx context.Context, id uuid.UUID) (*session, error) {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	s.mu.Unlock()
	if ok {
		return sess, nil
	}

	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	loaded, err := newSession(*rec, true)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.sessions[id]; ok {
		return existing, nil
	}
	s.sessions[id] = loaded
	return loaded, nil
}

// edit runs fn under the session lock and returns the refreshed view.
func (s *inspectionService) edit(ctx context.Context, id uuid.UUID, fn func(*session) error) (*SessionView, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := fn(sess); err != nil {
		return nil, err
	}
	return sess.view(), nil
}

func (s *inspectionService) SetVerdict(ctx context.Context, id uuid.UUID, p checklist.FieldPath, v checklist.Verdict, comment *string) (*SessionView, error) {
	return s.edit(ctx, id, func(sess *session) error {
		return checklistError(sess.sheet.SetVerdict(p, v, comment))
	})
}

func (s *inspectionService) ToggleComment(ctx context.Context, id uuid.UUID, p checklist.FieldPath) (checklist.Editor, error) {
	var ed checklist.Editor
	_, err := s.edit(ctx, id, func(sess *session) error {
		var err error
		ed, err = sess.sheet.ToggleComment(p)
		return checklistError(err)
	})
	return ed, err
}

func (s *inspectionService) UpdateDraft(ctx context.Context, id uuid.UUID, p checklist.FieldPath, text string) error {
	_, err := s.edit(ctx, id, func(sess *session) error {
		return checklistError(sess.sheet.UpdateDraft(p, text))
	})
	return err
}

func (s *inspectionService) CommitComment(ctx context.Context, id uuid.UUID, p checklist.FieldPath) (*SessionView, error) {
	return s.edit(ctx, id, func(sess *session) error {
		return checklistError(sess.sheet.CommitComment(p))
	})
}

func (s *inspectionService) ToggleWord(ctx context.Context, id uuid.UUID, p checklist.FieldPath, word string) (bool, error) {
	var on bool
	_, err := s.edit(ctx, id, func(sess *session) error {
		var err error
		on, err = sess.sheet.ToggleWord(p, word)
		return checklistError(err)
	})
	return on, err
}

func (s *inspectionService) SetHistoryDate(ctx context.Context, id uuid.UUID, date string) (*SessionView, error) {
	return s.edit(ctx, id, func(sess *session) error {
		sess.sheet.SetHistoryDate(strings.TrimSpace(date))
		return nil
	})
}

func (s *inspectionService) ApplyManual(ctx context.Context, id uuid.UUID, patch reconcile.Patch) (*SessionView, error) {
	return s.edit(ctx, id, func(sess *session) error {
		if patch.Etat != nil && *patch.Etat != "" && !inspection.State(*patch.Etat).Valid() {
			return apierr.Validation("invalid_state", fmt.Errorf("unknown state %q", *patch.Etat))
		}
		sess.record = reconcile.Apply(sess.record, patch, reconcile.SourceManual, s.now())
		return nil
	})
}

func (s *inspectionService) ScanQR(ctx context.Context, id uuid.UUID, image []byte) (*qrcode.Result, *SessionView, error) {
	if _, err := s.session(ctx, id); err != nil {
		return nil, nil, err
	}
	res, err := s.decoder.DecodeImage(ctx, image)
	if err != nil {
		return nil, nil, err
	}
	return s.applyQR(ctx, id, res)
}

func (s *inspectionService) ScanQRText(ctx context.Context, id uuid.UUID, raw string) (*qrcode.Result, *SessionView, error) {
	if _, err := s.session(ctx, id); err != nil {
		return nil, nil, err
	}
	res, err := s.decoder.DecodeText(ctx, raw)
	if err != nil {
		return nil, nil, err
	}
	return s.applyQR(ctx, id, res)
}

func (s *inspectionService) applyQR(ctx context.Context, id uuid.UUID, res *qrcode.Result) (*qrcode.Result, *SessionView, error) {
	view, err := s.edit(ctx, id, func(sess *session) error {
		before := sess.record
		sess.record = reconcile.Apply(sess.record, res.Patch, reconcile.SourceQR, s.now())
		s.log.Info("QR payload applied",
			"record_id", id,
			"payload_kind", res.Kind,
			"changed", reconcile.Changed(before, sess.record),
		)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return res, view, nil
}

// acquireUpload takes the in-flight slot of (id, kind). A second upload of the
// same kind fails fast instead of racing the first for the same slot.
func (s *inspectionService) acquireUpload(id uuid.UUID, kind UploadKind) (func(), error) {
	key := id.String() + ":" + string(kind)
	s.mu.Lock()
	sem, ok := s.inflight[key]
	if !ok {
		sem = semaphore.NewWeighted(1)
		s.inflight[key] = sem
	}
	s.mu.Unlock()
	if !sem.TryAcquire(1) {
		return nil, apierr.New(409, "upload_in_flight", fmt.Errorf("%w: %s", ErrUploadInFlight, kind))
	}
	return func() { sem.Release(1) }, nil
}

// uploadPatches splits an upload result into the operator's own slot write and
// the extracted prefill, which reconciles as a PDF source.
func uploadPatches(kind UploadKind, res *UploadResult) (manual, extracted reconcile.Patch) {
	url := reconcile.String(res.URL)
	switch kind {
	case UploadPhoto:
		manual.PhotoURL = url
	case UploadQRCode:
		manual.QRCodeURL = url
	case UploadDateAchat:
		manual.DateAchatImageURL = url
	case UploadReference:
		manual.ReferenceDocumentURL = url
	case UploadSignature:
		manual.SignatureDataURI = url
	case UploadCertificate:
		manual.CertificateURL = url
	case UploadPDF:
		extracted.PdfURL = url
	}
	if d := res.ExtractedData; d != nil {
		if d.Normes != "" {
			extracted.Normes = reconcile.String(d.Normes)
		}
		if d.NormesCertificat != "" {
			extracted.NormesCertificat = reconcile.String(d.NormesCertificat)
		}
		if d.DocumentsReference != "" {
			extracted.DocumentsReference = reconcile.String(d.DocumentsReference)
		}
	}
	return manual, extracted
}

// Upload stores a file and merges it into the record. Certificate and
// signature uploads are saved straight away and then broadcast to siblings.
// A failed upload leaves the record untouched.
func (s *inspectionService) Upload(ctx context.Context, id uuid.UUID, kind UploadKind, filename string, data []byte) (*UploadResult, *SessionView, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	release, err := s.acquireUpload(id, kind)
	if err != nil {
		return nil, nil, err
	}
	defer release()

	res, err := s.uploader.Upload(ctx, kind, filename, data)
	if err != nil {
		s.log.Warn("Upload failed", "record_id", id, "kind", kind, "error", err)
		return nil, nil, err
	}

	sess.mu.Lock()
	now := s.now()
	prev := sess.record
	manual, extracted := uploadPatches(kind, res)
	next := reconcile.Apply(sess.record, manual, reconcile.SourceManual, now)
	next = reconcile.Apply(next, extracted, reconcile.SourcePDF, now)

	var artifact *propagation.Artifact
	switch kind {
	case UploadCertificate:
		artifact = &propagation.Artifact{SourceID: id, Kind: propagation.KindCertificate, CertificateURL: res.URL}
	case UploadSignature:
		signedAt := now.UTC()
		next.SignedAt = &signedAt
		artifact = &propagation.Artifact{SourceID: id, Kind: propagation.KindSignature, SignatureDataURI: res.URL, SignedAt: &signedAt}
	}
	sess.record = next

	if artifact != nil {
		if _, err := s.saveLocked(ctx, sess); err != nil {
			sess.record = prev
			sess.mu.Unlock()
			return nil, nil, err
		}
	}
	view := sess.view()
	sess.mu.Unlock()

	if artifact != nil {
		s.broadcaster.Trigger(*artifact)
	}
	return res, view, nil
}

// Sign records a captured signature, saves and broadcasts it.
func (s *inspectionService) Sign(ctx context.Context, id uuid.UUID, dataURI string) (*SessionView, error) {
	dataURI = strings.TrimSpace(dataURI)
	if !strings.HasPrefix(dataURI, "data:image/") {
		return nil, apierr.Validation("bad_signature", ErrBadSignature)
	}
	sess, err := s.session(ctx, id)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	prev := sess.record
	signedAt := s.now().UTC()
	sess.record = reconcile.Apply(sess.record, reconcile.Patch{SignatureDataURI: &dataURI}, reconcile.SourceManual, signedAt)
	sess.record.SignedAt = &signedAt
	if _, err := s.saveLocked(ctx, sess); err != nil {
		sess.record = prev
		sess.mu.Unlock()
		return nil, err
	}
	view := sess.view()
	sess.mu.Unlock()

	s.broadcaster.Trigger(propagation.Artifact{
		SourceID:         id,
		Kind:             propagation.KindSignature,
		SignatureDataURI: dataURI,
		SignedAt:         &signedAt,
	})
	return view, nil
}

func (s *inspectionService) Save(ctx context.Context, id uuid.UUID) (*inspection.Record, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return s.saveLocked(ctx, sess)
}

func (s *inspectionService) saveLocked(ctx context.Context, sess *session) (*inspection.Record, error) {
	if strings.TrimSpace(sess.record.ReferenceInterne) == "" {
		return nil, apierr.Validation("reference_required", errors.New("referenceInterne is required"))
	}
	rec, err := sess.snapshot()
	if err != nil {
		return nil, err
	}

	var out *inspection.Record
	if sess.stored {
		out, err = s.store.Update(ctx, &rec)
	} else {
		out, err = s.store.Create(ctx, &rec)
	}
	if err != nil {
		s.log.Error("Save failed", "record_id", rec.ID, "error", err)
		if _, ok := apierr.As(err); ok {
			return nil, err
		}
		return nil, apierr.Transfer(0, "persistence_failed", err)
	}
	sess.stored = true
	sess.record = *out
	s.log.Info("Inspection saved", "record_id", out.ID, "etat", out.Etat)
	return out, nil
}

func (s *inspectionService) QRCode(ctx context.Context, id uuid.UUID) (qrcode.Image, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return qrcode.Image{}, err
	}
	sess.mu.Lock()
	url := qrcode.PublicURL(s.origin, id, sess.record.ReferenceInterne)
	sess.mu.Unlock()
	if s.renderer == nil {
		return qrcode.Image{Content: url, URL: qrcode.FallbackURL(qrcode.DefaultFallbackBase, url, 300), Degraded: true}, nil
	}
	img := s.renderer.Render(url)
	if img.Degraded || s.qrBucket == nil {
		return img, nil
	}
	key := fmt.Sprintf("qrcodes/%s.png", id)
	if err := s.qrBucket.UploadFile(dbctx.For(ctx), gcp.BucketCategoryQRCode, key, bytes.NewReader(img.PNG)); err != nil {
		// The PNG is still returned inline.
		s.log.Warn("QR code not stored", "record_id", id, "error", err)
		return img, nil
	}
	img.URL = s.qrBucket.GetPublicURL(gcp.BucketCategoryQRCode, key)
	return img, nil
}

func (s *inspectionService) Export(ctx context.Context, id uuid.UUID) ([]byte, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return export.Workbook(sess.record, sess.sheet)
}

func (s *inspectionService) Close(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	prefix := id.String() + ":"
	for key := range s.inflight {
		if strings.HasPrefix(key, prefix) {
			delete(s.inflight, key)
		}
	}
}

// HandleEvent refreshes the signature block of open sessions whose records
// were updated by a sibling broadcast.
func (s *inspectionService) HandleEvent(ctx context.Context, evt realtime.Event) {
	if evt.Event != realtime.EventRecordPropagated {
		return
	}
	for _, id := range evt.RecordIDs {
		s.mu.Lock()
		sess, ok := s.sessions[id]
		s.mu.Unlock()
		if !ok {
			continue
		}
		rec, err := s.store.Get(ctx, id)
		if err != nil {
			s.log.Warn("refresh after propagation failed", "record_id", id, "error", err)
			continue
		}
		sess.mu.Lock()
		sess.record.SignatureBlock = rec.SignatureBlock
		sess.mu.Unlock()
	}
}

// snapshot writes the sheet back into a copy of the record.
func (sess *session) snapshot() (inspection.Record, error) {
	rec := sess.record
	data, err := json.Marshal(sess.sheet.Tree())
	if err != nil {
		return rec, fmt.Errorf("encode checklist: %w", err)
	}
	crossed, err := json.Marshal(sess.sheet.CrossedOutWords())
	if err != nil {
		return rec, fmt.Errorf("encode crossed out words: %w", err)
	}
	rec.InspectionData = data
	rec.CrossedOutWords = crossed
	return rec, nil
}

func (sess *session) view() *SessionView {
	rec, _ := sess.snapshot()
	return &SessionView{
		Record:  rec,
		Title:   sess.sheet.Template().Title,
		Entries: sess.sheet.State(),
		Stored:  sess.stored,
	}
}

func checklistError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, checklist.ErrUnknownPath),
		errors.Is(err, checklist.ErrInvalidVerdict),
		errors.Is(err, checklist.ErrNotVerdictPath),
		errors.Is(err, checklist.ErrUnknownToken):
		return apierr.Validation("bad_checklist_input", err)
	case errors.Is(err, checklist.ErrEditorClosed):
		return apierr.New(409, "editor_closed", err)
	default:
		return err
	}
}
