// Package httpapi exposes the gallery protocol as JSON over HTTP. It is
// glue only: admission, lifecycle and accounting rules all live in the
// gallery package.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/duogallery/duogallery/internal/logging"
	"github.com/duogallery/duogallery/internal/server/auth"
	"github.com/duogallery/duogallery/internal/server/blob"
	"github.com/duogallery/duogallery/internal/server/gallery"
	"github.com/gin-gonic/gin"
)

type Server struct {
	address       string
	logger        logging.Logger
	gallery       *gallery.Service
	blobs         blob.Store
	creds         auth.Credentials
	jwtSecret     []byte
	tokenValidity time.Duration
}

func NewServer(address string, l logging.Logger, svc *gallery.Service, blobs blob.Store,
	creds auth.Credentials, secretKey string, tokenValidity time.Duration) *Server {
	return &Server{
		address:       address,
		logger:        l.With("module", "http_server"),
		gallery:       svc,
		blobs:         blobs,
		creds:         creds,
		jwtSecret:     []byte(secretKey),
		tokenValidity: tokenValidity,
	}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.POST("/login", s.loginHandler)

	authed := r.Group("")
	authed.Use(s.bearerMiddleware())
	authed.POST("/gallery/reserve", s.reserveHandler)
	authed.POST("/gallery/commit", s.commitHandler)
	authed.GET("/gallery/photos", s.listActiveHandler)
	authed.GET("/gallery/recycle", s.listDeletedHandler)
	authed.POST("/gallery/photos/:id/favorite", s.favoriteHandler)
	authed.POST("/gallery/photos/:id/note", s.noteHandler)
	authed.POST("/gallery/photos/:id/album-day", s.albumDayHandler)
	authed.DELETE("/gallery/photos/:id", s.softDeleteHandler)
	authed.POST("/gallery/photos/:id/restore", s.restoreHandler)
	authed.DELETE("/gallery/recycle/:id", s.purgeHandler)
	authed.GET("/usage", s.usageHandler)

	return r
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.address,
		Handler: s.Router(),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
