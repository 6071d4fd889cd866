package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/DavidAtikpo/irata-sub002/internal/http/response"
	"github.com/DavidAtikpo/irata-sub002/internal/modules/checklist"
	"github.com/DavidAtikpo/irata-sub002/internal/modules/reconcile"
	"github.com/DavidAtikpo/irata-sub002/internal/platform/apierr"
	"github.com/DavidAtikpo/irata-sub002/internal/platform/logger"
	"github.com/DavidAtikpo/irata-sub002/internal/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// SessionHandler exposes the editing session of one record.
type SessionHandler struct {
	log      *logger.Logger
	sessions services.InspectionService
	maxBytes int64
}

func NewSessionHandler(log *logger.Logger, sessions services.InspectionService, maxBytes int64) *SessionHandler {
	return &SessionHandler{log: log.With("handler", "SessionHandler"), sessions: sessions, maxBytes: maxBytes}
}

type startRequest struct {
	EquipmentType string `json:"equipmentType"`
	BatchID       string `json:"batchId"`
}

type pathRequest struct {
	Path checklist.FieldPath `json:"path"`
}

type verdictRequest struct {
	Path    checklist.FieldPath `json:"path"`
	Verdict string              `json:"verdict"`
	Comment *string             `json:"comment"`
}

type draftRequest struct {
	Path checklist.FieldPath `json:"path"`
	Text string              `json:"text"`
}

type strikeRequest struct {
	Path checklist.FieldPath `json:"path"`
	Word string              `json:"word"`
}

type historyDateRequest struct {
	Date string `json:"date"`
}

type reconcileRequest struct {
	Source string          `json:"source"`
	Patch  reconcile.Patch `json:"patch"`
}

type scanTextRequest struct {
	Text string `json:"text"`
}

type signRequest struct {
	Signature string `json:"digitalSignature"`
}

// POST /api/inspections/sessions
func (h *SessionHandler) Start(c *gin.Context) {
	var req startRequest
	if err := bindJSON(c, &req); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	view, err := h.sessions.Start(req.EquipmentType, req.BatchID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, view)
}

// GET /api/inspections/:id/session
func (h *SessionHandler) Open(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	view, err := h.sessions.Open(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, view)
}

// DELETE /api/inspections/:id/session
func (h *SessionHandler) Close(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	h.sessions.Close(id)
	c.Status(http.StatusNoContent)
}

// PUT /api/inspections/:id/verdict
func (h *SessionHandler) SetVerdict(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	var req verdictRequest
	if err := bindJSON(c, &req); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	v, ok := checklist.ParseVerdict(req.Verdict)
	if !ok {
		response.RespondAPIError(c, apierr.Validation("invalid_verdict", checklist.ErrInvalidVerdict))
		return
	}
	view, err := h.sessions.SetVerdict(c.Request.Context(), id, req.Path, v, req.Comment)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, view)
}

// POST /api/inspections/:id/comment/toggle
func (h *SessionHandler) ToggleComment(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	var req pathRequest
	if err := bindJSON(c, &req); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	ed, err := h.sessions.ToggleComment(c.Request.Context(), id, req.Path)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"path": req.Path, "editor": ed})
}

// PUT /api/inspections/:id/comment/draft
func (h *SessionHandler) UpdateDraft(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	var req draftRequest
	if err := bindJSON(c, &req); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	if err := h.sessions.UpdateDraft(c.Request.Context(), id, req.Path, req.Text); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /api/inspections/:id/comment/commit
func (h *SessionHandler) CommitComment(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	var req pathRequest
	if err := bindJSON(c, &req); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	view, err := h.sessions.CommitComment(c.Request.Context(), id, req.Path)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, view)
}

// POST /api/inspections/:id/strike
func (h *SessionHandler) ToggleWord(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	var req strikeRequest
	if err := bindJSON(c, &req); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	struck, err := h.sessions.ToggleWord(c.Request.Context(), id, req.Path, req.Word)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"path": req.Path, "word": req.Word, "struck": struck})
}

// PUT /api/inspections/:id/history-date
func (h *SessionHandler) SetHistoryDate(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	var req historyDateRequest
	if err := bindJSON(c, &req); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	view, err := h.sessions.SetHistoryDate(c.Request.Context(), id, req.Date)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, view)
}

// PATCH /api/inspections/:id/reconcile
//
// Only manual patches are accepted here; QR and PDF patches come from the
// scan and upload endpoints.
func (h *SessionHandler) Reconcile(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	var req reconcileRequest
	if err := bindJSON(c, &req); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	src, err := reconcile.ParseSource(req.Source)
	if err != nil {
		response.RespondAPIError(c, apierr.Validation("unknown_source", err))
		return
	}
	if src != reconcile.SourceManual {
		response.RespondAPIError(c, apierr.Validation("source_not_allowed", errors.New("only manual patches can be posted")))
		return
	}
	view, err := h.sessions.ApplyManual(c.Request.Context(), id, req.Patch)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, view)
}

// POST /api/inspections/:id/qr-scan
//
// Accepts either a multipart image under "file" or JSON {"text": ...} when
// the client decoded the code itself.
func (h *SessionHandler) ScanQR(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		data, _, err := readFile(c, h.maxBytes)
		if err != nil {
			response.RespondAPIError(c, err)
			return
		}
		res, view, err := h.sessions.ScanQR(c.Request.Context(), id, data)
		if err != nil {
			response.RespondAPIError(c, err)
			return
		}
		response.RespondOK(c, gin.H{"scan": res, "session": view})
		return
	}
	var req scanTextRequest
	if err := bindJSON(c, &req); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	res, view, err := h.sessions.ScanQRText(c.Request.Context(), id, req.Text)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"scan": res, "session": view})
}

// POST /api/inspections/:id/upload
func (h *SessionHandler) Upload(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	data, name, err := readFile(c, h.maxBytes)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	kind, err := services.ParseUploadKind(c.PostForm("type"))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	res, view, err := h.sessions.Upload(c.Request.Context(), id, kind, name, data)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"upload": res, "session": view})
}

// POST /api/inspections/:id/sign
func (h *SessionHandler) Sign(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	var req signRequest
	if err := bindJSON(c, &req); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	view, err := h.sessions.Sign(c.Request.Context(), id, req.Signature)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, view)
}

// POST /api/inspections/:id/save
func (h *SessionHandler) Save(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	rec, err := h.sessions.Save(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, rec)
}

// GET /api/inspections/:id/qrcode
//
// Returns the PNG when asked for an image and the rendering succeeded,
// JSON otherwise.
func (h *SessionHandler) QRCode(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	img, err := h.sessions.QRCode(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	wantPNG := c.Query("format") == "png" || strings.Contains(c.GetHeader("Accept"), "image/png")
	if wantPNG && !img.Degraded && len(img.PNG) > 0 {
		c.Data(http.StatusOK, "image/png", img.PNG)
		return
	}
	response.RespondOK(c, img)
}

// GET /api/inspections/:id/export.xlsx
func (h *SessionHandler) Export(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	data, err := h.sessions.Export(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="inspection-`+id.String()+`.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, data)
}
