package handlers

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/DavidAtikpo/irata-sub002/internal/http/response"
	"github.com/DavidAtikpo/irata-sub002/internal/modules/propagation"
	"github.com/DavidAtikpo/irata-sub002/internal/platform/apierr"
	"github.com/DavidAtikpo/irata-sub002/internal/platform/logger"
)

// BroadcastHandler serves the sibling fan-out endpoints. Both are idempotent:
// replaying a call rewrites the same values.
type BroadcastHandler struct {
	log *logger.Logger
	pub propagation.Publisher
}

func NewBroadcastHandler(log *logger.Logger, pub propagation.Publisher) *BroadcastHandler {
	return &BroadcastHandler{log: log.With("handler", "BroadcastHandler"), pub: pub}
}

// POST /api/inspections/broadcast/certificate
func (h *BroadcastHandler) Certificate(c *gin.Context) {
	h.publish(c, propagation.KindCertificate)
}

// POST /api/inspections/broadcast/signature
func (h *BroadcastHandler) Signature(c *gin.Context) {
	h.publish(c, propagation.KindSignature)
}

func (h *BroadcastHandler) publish(c *gin.Context, kind propagation.Kind) {
	var a propagation.Artifact
	if err := bindJSON(c, &a); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	a.Kind = kind
	if err := validateArtifact(a); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	n, err := h.pub.PublishArtifact(c.Request.Context(), a)
	if err != nil {
		h.log.Warn("broadcast failed", "source_id", a.SourceID, "kind", kind, "error", err)
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"updated": n})
}

func validateArtifact(a propagation.Artifact) error {
	if a.SourceID == uuid.Nil {
		return apierr.Validation("source_required", errors.New("sourceId is required"))
	}
	switch a.Kind {
	case propagation.KindCertificate:
		if strings.TrimSpace(a.CertificateURL) == "" {
			return apierr.Validation("certificate_required", errors.New("certificateUrl is required"))
		}
	case propagation.KindSignature:
		if strings.TrimSpace(a.SignatureDataURI) == "" {
			return apierr.Validation("signature_required", errors.New("digitalSignature is required"))
		}
	}
	return nil
}
