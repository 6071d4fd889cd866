package app

import (
	"fmt"

	"github.com/DavidAtikpo/irata-sub002/internal/clients/inspectionapi"
	"github.com/DavidAtikpo/irata-sub002/internal/platform/gcp"
	"github.com/DavidAtikpo/irata-sub002/internal/platform/logger"
	"github.com/DavidAtikpo/irata-sub002/internal/realtime/bus"
)

type Clients struct {
	EventBus    bus.Bus
	GcpBucket   gcp.BucketService
	GcpDocument gcp.Document
	GcpVision   gcp.Vision
	// Remote is set when propagation goes through another API instance.
	Remote *inspectionapi.Client
}

func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")
	var c Clients

	// Redis
	if cfg.Redis.Addr != "" {
		b, err := bus.NewRedisBus(log, bus.RedisConfig{Addr: cfg.Redis.Addr, Channel: cfg.Redis.Channel})
		if err != nil {
			return Clients{}, fmt.Errorf("init redis event bus: %w", err)
		}
		c.EventBus = b
	} else {
		c.EventBus = bus.NewLocalBus()
	}

	// Gcs
	bucket, err := resolveBucketService(log, cfg.Storage)
	if err != nil {
		c.Close()
		return Clients{}, fmt.Errorf("init bucket client: %w", err)
	}
	c.GcpBucket = bucket

	// Gcp
	if cfg.DocumentAIEnabled() {
		doc, err := gcp.NewDocument(gcp.DocumentConfig{
			ProjectID:        cfg.DocumentAI.ProjectID,
			Location:         cfg.DocumentAI.Location,
			ProcessorID:      cfg.DocumentAI.ProcessorID,
			ProcessorVersion: cfg.DocumentAI.ProcessorVersion,
		}, log)
		if err != nil {
			c.Close()
			return Clients{}, fmt.Errorf("init document client: %w", err)
		}
		c.GcpDocument = doc
	}
	if cfg.Vision {
		vision, err := gcp.NewVision(log)
		if err != nil {
			c.Close()
			return Clients{}, fmt.Errorf("init vision client: %w", err)
		}
		c.GcpVision = vision
	}

	// Remote broadcast
	if cfg.BroadcastBaseURL != "" {
		c.Remote = inspectionapi.New(cfg.BroadcastBaseURL, cfg.BroadcastTimeout(), log)
	}
	return c, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.EventBus != nil {
		_ = c.EventBus.Close()
	}
	if c.GcpDocument != nil {
		_ = c.GcpDocument.Close()
	}
	if c.GcpVision != nil {
		_ = c.GcpVision.Close()
	}
}
