package app

import (
	"github.com/gin-gonic/gin"

	"github.com/DavidAtikpo/irata-sub002/internal/http"
	httpH "github.com/DavidAtikpo/irata-sub002/internal/http/handlers"
	"github.com/DavidAtikpo/irata-sub002/internal/observability"
	"github.com/DavidAtikpo/irata-sub002/internal/platform/logger"
)

// multipartSlack covers form boundaries and extra fields around the file.
const multipartSlack = 1 << 20

type Handlers struct {
	Health    *httpH.HealthHandler
	Record    *httpH.RecordHandler
	Profile   *httpH.ProfileHandler
	Upload    *httpH.UploadHandler
	Broadcast *httpH.BroadcastHandler
	Session   *httpH.SessionHandler
}

func wireHandlers(log *logger.Logger, cfg Config, services Services, db httpH.Pinger) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:    httpH.NewHealthHandler(db),
		Record:    httpH.NewRecordHandler(log, services.Records),
		Profile:   httpH.NewProfileHandler(services.Profiles),
		Upload:    httpH.NewUploadHandler(log, services.Uploader, services.Decoder, cfg.MaxUploadBytes),
		Broadcast: httpH.NewBroadcastHandler(log, services.Publisher),
		Session:   httpH.NewSessionHandler(log, services.Inspections, cfg.MaxUploadBytes),
	}
}

func wireRouter(log *logger.Logger, cfg Config, handlers Handlers) *gin.Engine {
	serviceName := ""
	if cfg.Otel.Enabled {
		serviceName = observability.DefaultServiceName
	}
	return http.NewRouter(http.RouterConfig{
		Log:              log,
		ServiceName:      serviceName,
		AllowedOrigins:   cfg.AllowedOrigins,
		MaxBodyBytes:     cfg.MaxUploadBytes + multipartSlack,
		HealthHandler:    handlers.Health,
		RecordHandler:    handlers.Record,
		ProfileHandler:   handlers.Profile,
		UploadHandler:    handlers.Upload,
		BroadcastHandler: handlers.Broadcast,
		SessionHandler:   handlers.Session,
	})
}
