// Package server initializes and runs the gallery server: configuration,
// logging, the state store, the gallery core and the HTTP surface, with
// graceful shutdown on OS signals.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/duogallery/duogallery/internal/logging"
	"github.com/duogallery/duogallery/internal/server/auth"
	"github.com/duogallery/duogallery/internal/server/blob"
	"github.com/duogallery/duogallery/internal/server/config"
	"github.com/duogallery/duogallery/internal/server/gallery"
	"github.com/duogallery/duogallery/internal/server/httpapi"
	"github.com/duogallery/duogallery/internal/server/statestore"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	gallery *gallery.Service
	http    *httpapi.Server
}

func NewApp(c *config.Config) (*App, error) {

	slogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slogger)

	store, err := newStateStore(c)
	if err != nil {
		return nil, fmt.Errorf("state store init error: %w", err)
	}

	creds, err := auth.ParseCredentials(c.GalleryUsers)
	if err != nil {
		return nil, fmt.Errorf("credentials error: %w", err)
	}

	blobs := blob.NewS3Store(blob.Config{
		RootUser:     c.S3RootUser,
		RootPassword: c.S3RootPassword,
		Bucket:       c.S3Bucket,
		Region:       c.S3Region,
		BaseEndpoint: c.S3BaseEndpoint,
	})

	svc := gallery.NewService(store, logger, gallery.Limits{
		MaxTotalBytes:    c.MaxTotalBytes,
		MaxUploadsPerDay: c.MaxUploadsPerDay,
	})

	// janitor blob cleanup is best effort and must not block the sweep
	svc.OnPurge = func(purged gallery.PurgedBlob) {
		go func() {
			ctx := context.Background()
			for _, key := range []string{purged.StorageKey, purged.ThumbnailKey} {
				if key == "" {
					continue
				}
				if err := blobs.Delete(ctx, key); err != nil {
					logger.Warn(ctx, "blob delete failed", "key", key, "error", err.Error())
				}
			}
		}()
	}

	httpServer := httpapi.NewServer(c.EndpointAddrHTTP, logger, svc, blobs, creds,
		c.SecretKey, c.AccessTokenValidityDuration)

	return &App{config: c, logger: logger, gallery: svc, http: httpServer}, nil
}

// newStateStore selects Postgres when a DSN is configured, otherwise the
// local file snapshot.
func newStateStore(c *config.Config) (statestore.Store, error) {
	if c.DatabaseDSN != "" {
		return statestore.NewPostgresStore(c.DatabaseDSN)
	}
	return statestore.NewFileStore(c.StatePath)
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.http.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()
}
