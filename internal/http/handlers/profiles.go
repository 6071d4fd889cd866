package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DavidAtikpo/irata-sub002/internal/domain/inspection"
	"github.com/DavidAtikpo/irata-sub002/internal/http/response"
	"github.com/DavidAtikpo/irata-sub002/internal/modules/qrcode"
	"github.com/DavidAtikpo/irata-sub002/internal/platform/apierr"
	"github.com/DavidAtikpo/irata-sub002/internal/services"
)

type ProfileHandler struct {
	profiles services.ProfileService
}

func NewProfileHandler(profiles services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// GET /api/equipment-profile/:code
func (h *ProfileHandler) Get(c *gin.Context) {
	p, err := h.profiles.LookupProfile(c.Request.Context(), c.Param("code"))
	if err != nil {
		if errors.Is(err, qrcode.ErrProfileNotFound) {
			err = apierr.New(http.StatusNotFound, "profile_not_found", err)
		}
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, p)
}

// POST /api/equipment-profiles
func (h *ProfileHandler) Register(c *gin.Context) {
	var p inspection.Profile
	if err := bindJSON(c, &p); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	out, err := h.profiles.Register(c.Request.Context(), &p)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, out)
}
