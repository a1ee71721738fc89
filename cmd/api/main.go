package main

import (
	"context"
	"encoding/json"
	"log"
	"path"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"attachapi/internal/config"
	"attachapi/internal/database"
	"attachapi/internal/database/migration"
	handlers "attachapi/internal/http/handler"
	"attachapi/internal/http/middleware"
	"attachapi/internal/otel"
	"attachapi/internal/repository/postgres"
	"attachapi/internal/service"
	"attachapi/internal/storage"
)

func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	loc := time.UTC

	ctx := context.Background()

	// Initialize OpenTelemetry tracing (no-op when OTEL_SDK_DISABLED=true)
	shutdownTracing, err := otel.Init(ctx, loc)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(shutdownCtx)
	}()

	// Initialize PostgreSQL connection (with pooling via database/sql)
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, loc, cfg.Database.Host); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// One S3 client shared by every store facade
	client, err := storage.NewMinIOClient(storage.MinIOConfig{
		Endpoint:   cfg.S3.Endpoint,
		AccessKey:  cfg.S3.AccessKey,
		SecretKey:  cfg.S3.SecretKey,
		Region:     cfg.S3.Region,
		UseSSL:     cfg.S3.UseSSL,
		Accelerate: cfg.S3.Accelerate,
	})
	if err != nil {
		log.Fatalf("failed to initialize object storage client: %v", err)
	}

	// Permanent attachment store
	store, err := storage.NewS3(storage.S3Config{
		Bucket:          cfg.S3.Bucket,
		Prefix:          cfg.S3.Prefix,
		Public:          cfg.S3.Public,
		Host:            cfg.S3.Host,
		UploadOptions:   uploadDefaults(cfg.S3),
		Encryption:      encryptionOptions(cfg.S3),
		UploadThreshold: cfg.S3.UploadThreshold,
		CopyThreshold:   cfg.S3.CopyThreshold,
		Client:          client,
	})
	if err != nil {
		log.Fatalf("failed to initialize attachment store: %v", err)
	}

	// Scratch store sharing the bucket under its own prefix, swept periodically
	cacheStore, err := storage.NewS3(storage.S3Config{
		Bucket:     cfg.S3.Bucket,
		Prefix:     path.Join(cfg.S3.Prefix, cfg.Cache.Prefix),
		Encryption: encryptionOptions(cfg.S3),
		Client:     client,
	})
	if err != nil {
		log.Fatalf("failed to initialize cache store: %v", err)
	}
	go sweepCache(ctx, cacheStore, cfg.Cache, loc)

	// Initialize repositories and services
	repo := postgres.NewAttachmentPostgres(db)
	svc := service.NewAttachmentService(store, repo)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
	})

	// Register global middleware
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	// JSON Logger middleware for structured request logs
	app.Use(middleware.Logger())
	app.Use(otelfiber.Middleware())

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	promMW, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		log.Fatalf("failed to register prometheus metrics: %v", err)
	}
	app.Use(promMW.Handler())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// Register HTTP routes with injected service
	handlers.RegisterRoutes(app, db, svc)

	addr := ":" + cfg.Port

	if err := app.Listen(addr); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}

// uploadDefaults maps static upload settings into storage options applied to
// every stored object.
func uploadDefaults(c config.S3Config) storage.Options {
	opts := storage.Options{}
	if c.ACL != "" {
		opts["acl"] = c.ACL
	}
	if c.CacheControl != "" {
		opts["cache_control"] = c.CacheControl
	}
	if len(opts) == 0 {
		return nil
	}
	return opts
}

func encryptionOptions(c config.S3Config) storage.Options {
	if c.SSE == "" {
		return nil
	}
	opts := storage.Options{"sse": c.SSE}
	if c.SSEKMSKeyID != "" {
		opts["sse_kms_key_id"] = c.SSEKMSKeyID
	}
	return opts
}

// sweepCache periodically removes cache objects older than the configured
// max age.
func sweepCache(ctx context.Context, cache storage.Storage, cfg config.CacheConfig, loc *time.Location) {
	maxAge := time.Duration(cfg.MaxAgeSec) * time.Second
	interval := time.Duration(cfg.SweepIntervalSec) * time.Second
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		start := time.Now()
		cutoff := time.Now().Add(-maxAge)
		err := cache.Clear(ctx, func(obj storage.ObjectInfo) bool {
			return obj.LastModified.Before(cutoff)
		})

		entry := map[string]any{
			"ts":          time.Now().In(loc).Format(time.RFC3339Nano),
			"component":   "cache_sweeper",
			"event":       "cache_sweep",
			"duration_ms": time.Since(start).Milliseconds(),
			"level":       "info",
			"status":      "success",
		}
		if err != nil {
			entry["level"] = "error"
			entry["status"] = "error"
			entry["error_message"] = err.Error()
		}
		if b, mErr := json.Marshal(entry); mErr == nil {
			log.SetFlags(0)
			log.Println(string(b))
		}
	}
}
