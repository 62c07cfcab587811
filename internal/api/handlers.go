package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

type processRequest struct {
	Content    string `json:"content" binding:"required"`
	DatabaseID string `json:"database_id"`
}

type processResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (s *Server) handleProcess(c *gin.Context) {
	var req processRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, processResponse{
			Success: false,
			Message: "请求格式错误: " + err.Error(),
		})
		return
	}

	databaseID := req.DatabaseID
	if databaseID == "" {
		databaseID = s.defaultDatabase
	}
	if databaseID == "" {
		c.JSON(http.StatusBadRequest, processResponse{
			Success: false,
			Message: "缺少database_id",
		})
		return
	}

	result := s.processor.Process(c.Request.Context(), req.Content, databaseID)

	c.JSON(http.StatusOK, processResponse{
		Success: result.Success,
		Message: result.Message,
		Data:    result.Data,
	})
}

type healthResponse struct {
	Status  string                 `json:"status"`
	Service string                 `json:"service"`
	Version string                 `json:"version"`
	Uptime  string                 `json:"uptime"`
	Checks  map[string]CheckResult `json:"checks,omitempty"`
}

func (s *Server) handleHealth(c *gin.Context) {
	response := healthResponse{
		Status:  "healthy",
		Service: serviceName,
		Version: serviceVersion,
		Uptime:  time.Since(s.started).Truncate(time.Second).String(),
	}

	if len(s.checks) > 0 {
		response.Checks = make(map[string]CheckResult, len(s.checks))
		for name, check := range s.checks {
			result := check()
			response.Checks[name] = result
			if result.Status == "unhealthy" {
				response.Status = "unhealthy"
			} else if result.Status == "degraded" && response.Status == "healthy" {
				response.Status = "degraded"
			}
		}
	}

	status := http.StatusOK
	if response.Status == "unhealthy" {
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, response)
}

func (s *Server) handlePublications(c *gin.Context) {
	if s.history == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "publish history is not configured"})
		return
	}

	limit := 20
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	publications, err := s.history.Recent(c.Request.Context(), limit)
	if err != nil {
		if s.logger != nil {
			s.logger.Error("list publications failed", "error", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to list publications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": publications})
}
