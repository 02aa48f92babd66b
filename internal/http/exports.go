package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"inkwell/internal/service"
)

type SnapshotResponse struct {
	Key          string  `json:"key"`
	Location     string  `json:"location"`
	Size         int64   `json:"size"`
	LastModified *string `json:"last_modified,omitempty"`
	URL          string  `json:"url,omitempty"`
	PostCount    int     `json:"post_count,omitempty"`
}

func (h *Handler) createExport(c *gin.Context) {
	if h.archive == nil {
		h.respondError(c, service.ErrArchiveDisabled)
		return
	}
	snap, err := h.archive.Export(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.logger.WithField("location", snap.Location).Info("posts exported")
	c.JSON(http.StatusCreated, snapshotToResponse(*snap))
}

func (h *Handler) listExports(c *gin.Context) {
	if h.archive == nil {
		h.respondError(c, service.ErrArchiveDisabled)
		return
	}
	snaps, err := h.archive.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := make([]SnapshotResponse, len(snaps))
	for i := range snaps {
		resp[i] = snapshotToResponse(snaps[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) purgeExports(c *gin.Context) {
	if h.archive == nil {
		h.respondError(c, service.ErrArchiveDisabled)
		return
	}
	if err := h.archive.Purge(c.Request.Context()); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Exports removed"})
}

func snapshotToResponse(s service.Snapshot) SnapshotResponse {
	resp := SnapshotResponse{
		Key:       s.Key,
		Location:  s.Location,
		Size:      s.Size,
		URL:       s.URL,
		PostCount: s.PostCount,
	}
	if s.LastModified != nil && !s.LastModified.IsZero() {
		v := s.LastModified.Format(time.RFC3339)
		resp.LastModified = &v
	}
	return resp
}
