package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"llamachat/internal/common"
	"llamachat/internal/httpapi/middleware"
	"llamachat/internal/stats"
)

type statisticsReq struct {
	Query  string `json:"query" binding:"required,min=1"`
	Source string `json:"source"`
}

// CreateStatistics generates and persists a statistics answer. The companion
// chat mirror is best-effort: its failure is logged and swallowed, the
// statistics row alone decides the outcome.
func (h *Handler) CreateStatistics(c *gin.Context) {
	uid, ok := middleware.UserID(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "invalid token")
		return
	}

	var req statisticsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid request body")
		return
	}
	if req.Source == "" {
		req.Source = stats.DefaultSource
	}

	result := h.StatsSvc.Generate(c.Request.Context(), req.Query, req.Source, nil, 0.7)

	row := &stats.Request{
		UserID:      uid,
		RequestInfo: req.Query,
		Response:    result.Response,
		Source:      result.Source,
	}
	if err := h.StatsRepo.Create(c.Request.Context(), row); err != nil {
		h.Log.Error("persist statistics request failed", "error", err)
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}

	if err := h.ChatSvc.CreateMirror(c.Request.Context(), uid, req.Query, result.Response); err != nil {
		h.Log.Warn("companion chat for statistics request failed",
			"statistics_id", row.ID, "error", err)
	}

	common.JSON(c, http.StatusCreated, gin.H{
		"id":           row.ID,
		"request_info": row.RequestInfo,
		"response":     row.Response,
		"source":       row.Source,
		"created_at":   row.CreatedAt,
	})
}

func (h *Handler) ListStatistics(c *gin.Context) {
	uid, ok := middleware.UserID(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "invalid token")
		return
	}

	rows, err := h.StatsRepo.ListByUser(c.Request.Context(), uid)
	if err != nil {
		h.Log.Error("list statistics failed", "error", err)
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}

	common.OK(c, gin.H{"requests": rows})
}

func (h *Handler) GetStatistics(c *gin.Context) {
	uid, ok := middleware.UserID(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "invalid token")
		return
	}

	id, err := strconv.ParseUint(c.Param("request_id"), 10, 64)
	if err != nil {
		common.Fail(c, http.StatusBadRequest, 10004, "invalid request id")
		return
	}

	row, err := h.StatsRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			failNotFound(c, "statistics request not found")
			return
		}
		h.Log.Error("get statistics failed", "error", err)
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}
	if row.UserID != uid {
		// hide existence
		failNotFound(c, "statistics request not found")
		return
	}

	common.OK(c, row)
}
