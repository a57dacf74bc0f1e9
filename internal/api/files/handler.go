package files

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"buildtactical/database"
	"buildtactical/internal/domain/files"
	"buildtactical/internal/domain/tracking"
	"buildtactical/internal/infra/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	maxUploadBytes = 25 << 20 // 25 MiB
	presignTTL     = 15 * time.Minute
)

// Handler serves attachment upload, listing and download-URL signing over
// the configured bucket.
type Handler struct {
	store *storage.Client
}

func NewHandler(store *storage.Client) *Handler {
	return &Handler{store: store}
}

func (h *Handler) available(c *gin.Context) bool {
	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "File storage not configured"})
		return false
	}
	return true
}

// POST /files — multipart upload, optional project_id form field.
func (h *Handler) Upload(c *gin.Context) {
	if !h.available(c) {
		return
	}
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing file"})
		return
	}
	if fileHeader.Size > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File too large"})
		return
	}

	var projectID *uint
	if raw := c.PostForm("project_id"); raw != "" {
		id64, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project_id"})
			return
		}
		id := uint(id64)
		var n int64
		database.DB.Model(&tracking.Project{}).
			Where("id = ? AND owner_id = ?", id, userID).Count(&n)
		if n == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
			return
		}
		projectID = &id
	}

	src, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file"})
		return
	}
	defer src.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := fmt.Sprintf("user/%d/%s-%s", userID, uuid.NewString(), fileHeader.Filename)
	if err := h.store.Upload(c.Request.Context(), key, contentType, src); err != nil {
		slog.Error("attachment upload failed", "key", key, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Upload failed"})
		return
	}

	att := files.Attachment{
		OwnerID:     userID,
		ProjectID:   projectID,
		FileName:    fileHeader.Filename,
		ContentType: contentType,
		SizeBytes:   fileHeader.Size,
		StorageKey:  key,
	}
	if err := database.DB.Create(&att).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record attachment"})
		return
	}

	c.JSON(http.StatusCreated, att)
}

// GET /files — the caller's attachments, optionally filtered by project.
func (h *Handler) List(c *gin.Context) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	q := database.DB.Where("owner_id = ?", userID).Order("created_at DESC")
	if raw := c.Query("project_id"); raw != "" {
		q = q.Where("project_id = ?", raw)
	}

	var list []files.Attachment
	if err := q.Find(&list).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load attachments"})
		return
	}

	c.JSON(http.StatusOK, list)
}

// GET /files/:id/url — a time-limited download URL.
func (h *Handler) SignURL(c *gin.Context) {
	if !h.available(c) {
		return
	}
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var att files.Attachment
	if err := database.DB.
		Where("id = ? AND owner_id = ?", c.Param("id"), userID).
		First(&att).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Attachment not found"})
		return
	}

	url, err := h.store.PresignGet(c.Request.Context(), att.StorageKey, presignTTL)
	if err != nil {
		slog.Error("attachment presign failed", "key", att.StorageKey, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sign URL"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url, "expires_in_seconds": int(presignTTL.Seconds())})
}
