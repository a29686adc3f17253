package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/duogallery/duogallery/internal/common"
	"github.com/duogallery/duogallery/internal/server/auth"
	"github.com/duogallery/duogallery/internal/server/blob"
	"github.com/duogallery/duogallery/internal/server/gallery"
	"github.com/duogallery/duogallery/internal/server/models"
	"github.com/gin-gonic/gin"
)

// writeError maps the gallery error taxonomy onto HTTP statuses. Internal
// failures are reported generically; everything else carries its reason.
func (s *Server) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrorValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, common.ErrorQuotaExceeded):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
	case errors.Is(err, common.ErrorNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, common.ErrorAlreadyCommitted), errors.Is(err, common.ErrorNotDeleted):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, common.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	default:
		s.logger.Error(c.Request.Context(), err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func (s *Server) loginHandler(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.creds.Check(req.Username, req.Password); err != nil {
		s.writeError(c, err)
		return
	}

	token, err := auth.GenerateToken(req.Username, s.jwtSecret, s.tokenValidity)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

type uploadTarget struct {
	StorageKey         string `json:"storageKey"`
	ThumbnailKey       string `json:"thumbnailKey"`
	UploadURL          string `json:"uploadUrl"`
	ThumbnailUploadURL string `json:"thumbnailUploadUrl"`
}

func (s *Server) reserveHandler(c *gin.Context) {
	var req struct {
		FileCount        int   `json:"fileCount"`
		TotalSizeBytes   int64 `json:"totalSizeBytes"`
		MaxTotalBytes    int64 `json:"maxTotalBytes"`
		MaxUploadsPerDay int   `json:"maxUploadsPerDay"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reservation, err := s.gallery.Reserve(c.Request.Context(), gallery.ReserveRequest{
		FileCount:      req.FileCount,
		TotalSizeBytes: req.TotalSizeBytes,
		Limits: gallery.Limits{
			MaxTotalBytes:    req.MaxTotalBytes,
			MaxUploadsPerDay: req.MaxUploadsPerDay,
		},
	})
	if err != nil {
		s.writeError(c, err)
		return
	}

	uploads := make([]uploadTarget, 0, req.FileCount)
	for i := 0; i < req.FileCount; i++ {
		storageKey, thumbKey := blob.UploadKeys(time.Now())
		putURL, err := s.blobs.PresignPut(c.Request.Context(), storageKey)
		if err != nil {
			s.writeError(c, err)
			return
		}
		thumbURL, err := s.blobs.PresignPut(c.Request.Context(), thumbKey)
		if err != nil {
			s.writeError(c, err)
			return
		}
		uploads = append(uploads, uploadTarget{
			StorageKey:         storageKey,
			ThumbnailKey:       thumbKey,
			UploadURL:          putURL,
			ThumbnailUploadURL: thumbURL,
		})
	}

	c.JSON(http.StatusOK, gin.H{"reservationId": reservation.ID, "uploads": uploads})
}

func (s *Server) commitHandler(c *gin.Context) {
	var req struct {
		ReservationID string              `json:"reservationId"`
		Photos        []models.PhotoDraft `json:"photos"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// the uploader is whoever holds the token, not whatever the body says
	for i := range req.Photos {
		req.Photos[i].UploaderID = currentUser(c)
	}

	if err := s.gallery.Commit(c.Request.Context(), req.ReservationID, req.Photos); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// photoView is a PhotoRecord plus presigned view URLs.
type photoView struct {
	models.PhotoRecord
	URL          string `json:"url,omitempty"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
}

func (s *Server) photoViews(ctx context.Context, photos []models.PhotoRecord) []photoView {
	views := make([]photoView, 0, len(photos))
	for _, p := range photos {
		view := photoView{PhotoRecord: p}
		// view URLs are best effort; a signing hiccup should not hide the gallery
		if url, err := s.blobs.PresignGet(ctx, p.StorageKey); err == nil {
			view.URL = url
		} else {
			s.logger.Warn(ctx, "presign get failed", "key", p.StorageKey, "error", err.Error())
		}
		if p.ThumbnailKey != "" {
			if url, err := s.blobs.PresignGet(ctx, p.ThumbnailKey); err == nil {
				view.ThumbnailURL = url
			}
		}
		views = append(views, view)
	}
	return views
}

func (s *Server) listActiveHandler(c *gin.Context) {
	listing, err := s.gallery.ListActive(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"photos":      s.photoViews(c.Request.Context(), listing.Photos),
		"totalBytes":  listing.TotalBytes,
		"totalPhotos": listing.TotalPhotos,
	})
}

func (s *Server) listDeletedHandler(c *gin.Context) {
	listing, err := s.gallery.ListDeleted(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"photos":      s.photoViews(c.Request.Context(), listing.Photos),
		"totalBytes":  listing.TotalBytes,
		"totalPhotos": listing.TotalPhotos,
	})
}

func (s *Server) favoriteHandler(c *gin.Context) {
	set, err := s.gallery.ToggleFavorite(c.Request.Context(), c.Param("id"), currentUser(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"favoritedBy": set})
}

func (s *Server) noteHandler(c *gin.Context) {
	var req struct {
		Text string `json:"text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.gallery.EditNote(c.Request.Context(), c.Param("id"), req.Text, currentUser(c)); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) albumDayHandler(c *gin.Context) {
	var req struct {
		Day string `json:"day" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.gallery.EditAlbumDay(c.Request.Context(), c.Param("id"), req.Day); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) softDeleteHandler(c *gin.Context) {
	if err := s.gallery.SoftDelete(c.Request.Context(), c.Param("id")); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) restoreHandler(c *gin.Context) {
	if err := s.gallery.Restore(c.Request.Context(), c.Param("id")); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) purgeHandler(c *gin.Context) {
	purged, err := s.gallery.Purge(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}

	s.deleteBlobs(c.Request.Context(), purged)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// deleteBlobs removes the underlying objects after a purge. Failures are
// logged, not surfaced: the metadata and accounting are already final.
func (s *Server) deleteBlobs(ctx context.Context, purged gallery.PurgedBlob) {
	for _, key := range []string{purged.StorageKey, purged.ThumbnailKey} {
		if key == "" {
			continue
		}
		if err := s.blobs.Delete(ctx, key); err != nil {
			s.logger.Warn(ctx, "blob delete failed", "key", key, "error", err.Error())
		}
	}
}

func (s *Server) usageHandler(c *gin.Context) {
	usage, err := s.gallery.Usage(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, usage)
}
