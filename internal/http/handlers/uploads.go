package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/DavidAtikpo/irata-sub002/internal/http/response"
	"github.com/DavidAtikpo/irata-sub002/internal/modules/qrcode"
	"github.com/DavidAtikpo/irata-sub002/internal/platform/logger"
	"github.com/DavidAtikpo/irata-sub002/internal/services"
)

type UploadHandler struct {
	log      *logger.Logger
	uploader services.Uploader
	decoder  *qrcode.Decoder
	maxBytes int64
}

func NewUploadHandler(log *logger.Logger, uploader services.Uploader, decoder *qrcode.Decoder, maxBytes int64) *UploadHandler {
	return &UploadHandler{
		log:      log.With("handler", "UploadHandler"),
		uploader: uploader,
		decoder:  decoder,
		maxBytes: maxBytes,
	}
}

// POST /api/uploads
func (h *UploadHandler) Upload(c *gin.Context) {
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
	res, err := h.uploader.Upload(c.Request.Context(), kind, name, data)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, res)
}

// POST /api/qr/decode
func (h *UploadHandler) DecodeQR(c *gin.Context) {
	data, _, err := readFile(c, h.maxBytes)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	res, err := h.decoder.DecodeImage(c.Request.Context(), data)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, res)
}
