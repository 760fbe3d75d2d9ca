package api

import (
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"immoeliza/server/config"
	"immoeliza/server/internal/database"
	"immoeliza/server/internal/models"
)

// CleaningRunner triggers a cleaning run on demand
type CleaningRunner interface {
	Run() (*models.RunReport, error)
}

type Handler struct {
	db     *database.Database
	runner CleaningRunner
	logger *logrus.Logger
}

// ListingsQuery holds the supported /api/listings filters
type ListingsQuery struct {
	Province string `form:"province"`
	MinPrice string `form:"minPrice"`
	MaxPrice string `form:"maxPrice"`
}

func NewHandler(db *database.Database, runner CleaningRunner, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}

	return &Handler{
		db:     db,
		runner: runner,
		logger: logger,
	}
}

func (h *Handler) GetListings(c *gin.Context) {
	var query ListingsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.logger.WithError(err).Error("Failed to parse listing filters")
	}

	limitStr := c.DefaultQuery("limit", "100")
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 {
		limit = 100
	}

	listings, err := h.db.GetListings(query.Province, query.MinPrice, query.MaxPrice, limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get listings")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get listings"})
		return
	}

	c.JSON(http.StatusOK, listings)
}

func (h *Handler) GetStats(c *gin.Context) {
	province := c.Query("province")
	stats, err := h.db.GetListingStats(province)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get listing stats")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get listing stats"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetProvinces returns the supported provinces plus per-province statistics
func (h *Handler) GetProvinces(c *gin.Context) {
	stats, err := h.db.GetProvinceStats()
	if err != nil {
		h.logger.WithError(err).Error("Failed to get province stats")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get province stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"provinces": config.SupportedProvinces,
		"stats":     stats,
	})
}

// GetProvince returns statistics for a single province addressed by its slug
func (h *Handler) GetProvince(c *gin.Context) {
	slug := c.Param("province")
	name := config.ResolveProvinceSlug(slug)
	if name == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown province"})
		return
	}

	exists, err := h.db.ProvinceExists(name)
	if err != nil {
		h.logger.WithError(err).Error("Failed to check province")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check province"})
		return
	}
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "No listings found for province"})
		return
	}

	stats, err := h.db.GetListingStats(name)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get province stats")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get province stats"})
		return
	}

	province := config.GetProvinceByName(name)
	c.JSON(http.StatusOK, gin.H{
		"province": province,
		"stats":    stats,
	})
}

func (h *Handler) GetRuns(c *gin.Context) {
	limitStr := c.DefaultQuery("limit", "20")
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 {
		limit = 20
	}

	runs, err := h.db.GetRuns(limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get cleaning runs")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get cleaning runs"})
		return
	}

	c.JSON(http.StatusOK, runs)
}

// TriggerClean starts a cleaning run and blocks until it finishes
func (h *Handler) TriggerClean(c *gin.Context) {
	if h.runner == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Cleaning runner is not configured"})
		return
	}

	report, err := h.runner.Run()
	if err != nil {
		h.logger.WithError(err).Error("Cleaning run failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cleaning run failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"report": report,
	})
}
