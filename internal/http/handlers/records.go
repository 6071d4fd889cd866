package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/DavidAtikpo/irata-sub002/internal/domain/inspection"
	"github.com/DavidAtikpo/irata-sub002/internal/http/response"
	"github.com/DavidAtikpo/irata-sub002/internal/modules/qrcode"
	"github.com/DavidAtikpo/irata-sub002/internal/platform/logger"
	"github.com/DavidAtikpo/irata-sub002/internal/services"
)

type RecordHandler struct {
	log     *logger.Logger
	records services.RecordService
}

func NewRecordHandler(log *logger.Logger, records services.RecordService) *RecordHandler {
	return &RecordHandler{log: log.With("handler", "RecordHandler"), records: records}
}

// GET /api/inspections?type=
func (h *RecordHandler) List(c *gin.Context) {
	out, err := h.records.List(c.Request.Context(), c.Query("type"))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /api/inspections/:id
func (h *RecordHandler) Get(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	rec, err := h.records.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, rec)
}

// POST /api/inspections
func (h *RecordHandler) Create(c *gin.Context) {
	var rec inspection.Record
	if err := bindJSON(c, &rec); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	out, err := h.records.Create(c.Request.Context(), &rec)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, out)
}

// PUT /api/inspections/:id
func (h *RecordHandler) Update(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	var rec inspection.Record
	if err := bindJSON(c, &rec); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	rec.ID = id
	out, err := h.records.Update(c.Request.Context(), &rec)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /inspection/:slug
//
// Public read-only view of a saved record, reached from a printed code.
func (h *RecordHandler) Public(c *gin.Context) {
	id, ok := qrcode.ParseSlug(c.Param("slug"))
	if !ok {
		response.RespondError(c, http.StatusNotFound, "record_not_found", nil)
		return
	}
	rec, err := h.records.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	if want := qrcode.Slug(rec.ReferenceInterne); want != "" {
		if got := strings.TrimPrefix(strings.TrimPrefix(c.Param("slug"), id.String()), "-"); got != "" && got != want {
			c.Redirect(http.StatusMovedPermanently, "/inspection/"+id.String()+"-"+want)
			return
		}
	}
	response.RespondOK(c, publicView(rec))
}

type publicRecord struct {
	ID                      string           `json:"id"`
	EquipmentType           string           `json:"equipmentType"`
	ReferenceInterne        string           `json:"referenceInterne"`
	TypeEquipement          string           `json:"typeEquipement"`
	NumeroSerie             string           `json:"numeroSerie"`
	Fabricant               string           `json:"fabricant"`
	DateControle            string           `json:"dateControle"`
	DateProchaineInspection string           `json:"dateProchaineInspection"`
	Etat                    inspection.State `json:"etat"`
	PhotoURL                string           `json:"photo,omitempty"`
	CertificateURL          string           `json:"certificateUrl,omitempty"`
	Signed                  bool             `json:"signed"`
}

func publicView(rec *inspection.Record) publicRecord {
	return publicRecord{
		ID:                      rec.ID.String(),
		EquipmentType:           rec.EquipmentType,
		ReferenceInterne:        rec.ReferenceInterne,
		TypeEquipement:          rec.TypeEquipement,
		NumeroSerie:             rec.NumeroSerie,
		Fabricant:               rec.Fabricant,
		DateControle:            rec.DateControle,
		DateProchaineInspection: rec.DateProchaineInspection,
		Etat:                    rec.Etat,
		PhotoURL:                rec.PhotoURL,
		CertificateURL:          rec.CertificateURL,
		Signed:                  rec.SignatureDataURI != "",
	}
}

