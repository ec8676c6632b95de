package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"socialdemo/internal/app"
	"socialdemo/internal/content"
)

// ItemLister reads back what a run created.
type ItemLister interface {
	ListItems(ctx context.Context, runID string) ([]*content.Item, error)
}

type Handlers struct {
	runs  *Registry
	items ItemLister
}

func NewHandlers(runs *Registry, items ItemLister) *Handlers {
	return &Handlers{runs: runs, items: items}
}

func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

func (h *Handlers) CreateRun(c *gin.Context) {
	var req app.GenerationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid request body: " + err.Error(),
		})
		return
	}

	run, err := h.runs.Submit(req)
	if errors.Is(err, app.ErrInvalidRequest) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"data": run,
	})
}

func (h *Handlers) GetRun(c *gin.Context) {
	run, err := h.runs.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": run,
	})
}

func (h *Handlers) ListRuns(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"data": h.runs.List(),
	})
}

func (h *Handlers) ListRunItems(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.runs.Get(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": err.Error(),
		})
		return
	}

	items, err := h.items.ListItems(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to list items: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": items,
	})
}
