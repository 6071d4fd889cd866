package app

import (
	"fmt"

	"github.com/DavidAtikpo/irata-sub002/internal/modules/extraction"
	"github.com/DavidAtikpo/irata-sub002/internal/modules/propagation"
	"github.com/DavidAtikpo/irata-sub002/internal/modules/qrcode"
	"github.com/DavidAtikpo/irata-sub002/internal/platform/logger"
	"github.com/DavidAtikpo/irata-sub002/internal/services"
)

type Services struct {
	Records     services.RecordService
	Profiles    services.ProfileService
	Uploader    services.Uploader
	Publisher   propagation.Publisher
	Broadcaster *propagation.Broadcaster
	Decoder     *qrcode.Decoder
	Inspections services.InspectionService
}

func wireServices(log *logger.Logger, cfg Config, reposet Repos, clients Clients) (Services, error) {
	log.Info("Wiring services...")

	records := services.NewRecordService(log, reposet.Record)
	profiles := services.NewProfileService(log, reposet.Profile)

	var uploader services.Uploader
	if clients.GcpBucket != nil {
		extractor := extraction.NewExtractor(clients.GcpDocument, clients.GcpVision, log)
		uploader = services.NewBucketUploader(log, clients.GcpBucket, extractor, cfg.MaxUploadBytes)
	} else {
		uploader = services.NewUnavailableUploader()
	}

	// The narrow broadcast endpoints always fan out locally; the session
	// broadcaster goes remote when another instance owns persistence.
	local := services.NewLocalPublisher(log, reposet.Record, clients.EventBus)
	var pub propagation.Publisher = local
	if clients.Remote != nil {
		pub = clients.Remote
	}
	broadcaster := propagation.NewBroadcaster(pub, cfg.BroadcastTimeout(), log)

	decoder := qrcode.NewDecoder(profiles, log)
	renderer, err := qrcode.NewRenderer(qrcode.RenderConfig{
		Size:         cfg.QR.Size,
		Primary:      cfg.QR.Primary,
		Secondary:    cfg.QR.Secondary,
		FontPath:     cfg.QR.FontPath,
		FallbackBase: cfg.QR.FallbackBase,
	}, log)
	if err != nil {
		return Services{}, fmt.Errorf("init qr renderer: %w", err)
	}

	inspections := services.NewInspectionService(
		log,
		records,
		uploader,
		decoder,
		renderer,
		clients.GcpBucket,
		broadcaster,
		cfg.PublicOrigin,
	)

	return Services{
		Records:     records,
		Profiles:    profiles,
		Uploader:    uploader,
		Publisher:   local,
		Broadcaster: broadcaster,
		Decoder:     decoder,
		Inspections: inspections,
	}, nil
}
