package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/DavidAtikpo/irata-sub002/internal/http/handlers"
	httpMW "github.com/DavidAtikpo/irata-sub002/internal/http/middleware"
	"github.com/DavidAtikpo/irata-sub002/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	AllowedOrigins []string
	// MaxBodyBytes caps every request body; uploads add their own per-file limit.
	MaxBodyBytes int64

	HealthHandler    *httpH.HealthHandler
	RecordHandler    *httpH.RecordHandler
	ProfileHandler   *httpH.ProfileHandler
	UploadHandler    *httpH.UploadHandler
	BroadcastHandler *httpH.BroadcastHandler
	SessionHandler   *httpH.SessionHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS(cfg.AllowedOrigins...))
	r.Use(httpMW.LimitBody(cfg.MaxBodyBytes))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	// Public record view (printed codes)
	if cfg.RecordHandler != nil {
		r.GET("/inspection/:slug", cfg.RecordHandler.Public)
	}

	api := r.Group("/api")
	{
		// Uploads
		if cfg.UploadHandler != nil {
			api.POST("/uploads", cfg.UploadHandler.Upload)
			api.POST("/qr/decode", cfg.UploadHandler.DecodeQR)
		}

		// Equipment profiles
		if cfg.ProfileHandler != nil {
			api.GET("/equipment-profile/:code", cfg.ProfileHandler.Get)
			api.POST("/equipment-profiles", cfg.ProfileHandler.Register)
		}

		// Records
		if cfg.RecordHandler != nil {
			api.GET("/inspections", cfg.RecordHandler.List)
			api.POST("/inspections", cfg.RecordHandler.Create)
			api.GET("/inspections/:id", cfg.RecordHandler.Get)
			api.PUT("/inspections/:id", cfg.RecordHandler.Update)
		}

		// Sibling propagation
		if cfg.BroadcastHandler != nil {
			api.POST("/inspections/broadcast/certificate", cfg.BroadcastHandler.Certificate)
			api.POST("/inspections/broadcast/signature", cfg.BroadcastHandler.Signature)
		}

		// Editing sessions
		if h := cfg.SessionHandler; h != nil {
			api.POST("/inspections/sessions", h.Start)
			api.GET("/inspections/:id/session", h.Open)
			api.DELETE("/inspections/:id/session", h.Close)
			api.PUT("/inspections/:id/verdict", h.SetVerdict)
			api.POST("/inspections/:id/comment/toggle", h.ToggleComment)
			api.PUT("/inspections/:id/comment/draft", h.UpdateDraft)
			api.POST("/inspections/:id/comment/commit", h.CommitComment)
			api.POST("/inspections/:id/strike", h.ToggleWord)
			api.PUT("/inspections/:id/history-date", h.SetHistoryDate)
			api.PATCH("/inspections/:id/reconcile", h.Reconcile)
			api.POST("/inspections/:id/qr-scan", h.ScanQR)
			api.POST("/inspections/:id/upload", h.Upload)
			api.POST("/inspections/:id/sign", h.Sign)
			api.POST("/inspections/:id/save", h.Save)
			api.GET("/inspections/:id/qrcode", h.QRCode)
			api.GET("/inspections/:id/export.xlsx", h.Export)
		}
	}

	return r
}
