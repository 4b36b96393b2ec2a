// Package api exposes the asset registry over HTTP.
package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/itam-dev/itam-store/pkg/schema"
	"github.com/itam-dev/itam-store/pkg/sdk"
)

type Handler struct {
	Registry sdk.AssetRegistry
}

// Register mounts every registry operation under the given group.
// The daemon and the handler tests share this table.
func (h *Handler) Register(g *gin.RouterGroup) {
	g.GET("/assets", h.ListAssets)
	g.POST("/assets", h.CreateAsset)
	g.GET("/assets/:id", h.GetAsset)
	g.PUT("/assets/:id", h.UpdateAsset)
	g.DELETE("/assets/:id", h.DeleteAsset)
	g.POST("/assets/bulk-delete", h.BulkDelete)
	g.POST("/assets/bulk-status", h.BulkStatus)
	g.GET("/assets/:id/history", h.AssetHistory)
	g.GET("/history", h.FullHistory)
	g.GET("/stats", h.GetStats)
	g.GET("/export", h.Export)
	g.POST("/import", h.Import)
}

func (h *Handler) ListAssets(c *gin.Context) {
	assets, err := h.Registry.ListAssets()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, assets)
}

func (h *Handler) CreateAsset(c *gin.Context) {
	var input schema.AssetInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	asset, err := h.Registry.AddAsset(input)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, asset)
}

func (h *Handler) GetAsset(c *gin.Context) {
	asset, err := h.Registry.GetAssetByID(c.Param("id"))
	if err != nil {
		if errors.Is(err, sdk.ErrAssetNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, asset)
}

// UpdateAsset answers 200 even when the id is unknown: the registry's
// documented contract makes that a silent no-op, not an error.
func (h *Handler) UpdateAsset(c *gin.Context) {
	var input schema.AssetInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.Registry.UpdateAsset(c.Param("id"), input); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func (h *Handler) DeleteAsset(c *gin.Context) {
	if err := h.Registry.DeleteAsset(c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func (h *Handler) BulkDelete(c *gin.Context) {
	var input struct {
		IDs []string `json:"ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.Registry.BulkDeleteAssets(input.IDs); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func (h *Handler) BulkStatus(c *gin.Context) {
	var input struct {
		IDs    []string           `json:"ids" binding:"required"`
		Status schema.AssetStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.Registry.BulkUpdateStatus(input.IDs, input.Status); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func (h *Handler) AssetHistory(c *gin.Context) {
	entries, err := h.Registry.GetAssetHistory(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if entries == nil {
		entries = []schema.HistoryEntry{}
	}
	c.JSON(http.StatusOK, entries)
}

func (h *Handler) FullHistory(c *gin.Context) {
	entries, err := h.Registry.History()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if entries == nil {
		entries = []schema.HistoryEntry{}
	}
	c.JSON(http.StatusOK, entries)
}

func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.Registry.Stats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) Export(c *gin.Context) {
	snap, err := h.Registry.Snapshot()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Disposition", "attachment; filename=itam-export.json")
	c.JSON(http.StatusOK, snap)
}

// Import replaces the asset collection with the uploaded document. This is the
// backup/restore escape hatch: it skips the mutation API's history logging.
func (h *Handler) Import(c *gin.Context) {
	var assets []schema.Asset
	if err := c.ShouldBindJSON(&assets); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.Registry.ReplaceAssets(assets); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "imported": len(assets)})
}
