// Package adminpanel is the HTTP read/update façade over the record store.
package adminpanel

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"w3bbot/internal/models"
	"w3bbot/internal/moderation"
	"w3bbot/internal/storage"
)

type Server struct {
	store  *storage.Store
	mirror moderation.Mirror
	log    *zap.Logger
}

func NewServer(store *storage.Store, mirror moderation.Mirror, log *zap.Logger) *Server {
	return &Server{store: store, mirror: mirror, log: log}
}

func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", s.health)

	api := r.Group("/api")
	{
		api.GET("/applications", s.listApplications)
		api.GET("/applications/:id", s.getApplication)
		api.POST("/applications/:id/status", s.updateStatus)
		api.GET("/stats", s.stats)
	}
	return r
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC().Format(time.RFC3339)})
}

func (s *Server) listApplications(c *gin.Context) {
	apps, err := s.store.ListApplications(c.Request.Context())
	if err != nil {
		s.log.Error("failed to list applications", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}
	c.JSON(http.StatusOK, apps)
}

func (s *Server) getApplication(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	app, err := s.store.GetApplication(c.Request.Context(), id)
	if err == storage.ErrNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "application not found"})
		return
	}
	if err != nil {
		s.log.Error("failed to load application", zap.Uint("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}
	c.JSON(http.StatusOK, app)
}

type statusRequest struct {
	Status     models.ApplicationStatus `json:"status"`
	AdminNotes string                   `json:"adminNotes"`
}

func (s *Server) updateStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	if req.Status != models.StatusApproved && req.Status != models.StatusRejected {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}

	n, err := s.store.UpdateApplicationStatus(c.Request.Context(), id, req.Status, req.AdminNotes)
	if err != nil {
		s.log.Error("failed to update status", zap.Uint("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}
	if n == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "application not found"})
		return
	}

	go func() {
		if err := s.mirror.RecordStatusChange(context.Background(), id, req.Status); err != nil {
			s.log.Warn("sheets mirror failed for status change", zap.Uint("id", id), zap.Error(err))
		}
	}()

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) stats(c *gin.Context) {
	stats, err := s.store.CountByStatus(c.Request.Context())
	if err != nil {
		s.log.Error("failed to compute stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return uint(id), true
}
