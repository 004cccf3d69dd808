package api

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/wokaidabaoma/econ-site/internal/appstore"
	"github.com/wokaidabaoma/econ-site/internal/config"
	"github.com/wokaidabaoma/econ-site/internal/deadline"
	"github.com/wokaidabaoma/econ-site/internal/favorites"
	"github.com/wokaidabaoma/econ-site/internal/feed"
	"github.com/wokaidabaoma/econ-site/internal/importer"
	"github.com/wokaidabaoma/econ-site/internal/logger"
	"github.com/wokaidabaoma/econ-site/internal/model"
	pkgerrors "github.com/wokaidabaoma/econ-site/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type Handler struct {
	loader    *feed.Loader
	favorites *favorites.Store
	apps      *appstore.Store
	cfg       *config.Config
	log       zerolog.Logger
}

func NewHandler(
	loader *feed.Loader,
	favoriteStore *favorites.Store,
	appStore *appstore.Store,
	cfg *config.Config,
) *Handler {
	return &Handler{
		loader:    loader,
		favorites: favoriteStore,
		apps:      appStore,
		cfg:       cfg,
		log:       logger.Get(),
	}
}

func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": h.cfg.App.Name,
		"version": h.cfg.App.Version,
	})
}

// GetCatalog fetches the catalog feed. Every call re-fetches; the feed is
// the source of truth and nothing is cached server-side.
func (h *Handler) GetCatalog(c *gin.Context) {
	rows, err := h.loader.Load(c.Request.Context())
	if err != nil {
		var ferr pkgerrors.FeedError
		if errors.As(err, &ferr) {
			c.JSON(http.StatusBadGateway, gin.H{
				"error":    ferr.Message(),
				"cause":    ferr.Cause,
				"attempts": ferr.Attempts,
			})
			return
		}
		h.log.Error().Err(err).Msg("Catalog load failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count": len(rows),
		"rows":  rows,
	})
}

// ImportCatalogFile ingests an uploaded catalog copy (csv or xlsx).
func (h *Handler) ImportCatalogFile(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing file upload"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not open uploaded file"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read uploaded file"})
		return
	}

	var strategy feed.ParsingStrategy
	switch strings.ToLower(filepath.Ext(fileHeader.Filename)) {
	case ".xlsx", ".xlsm":
		strategy = feed.NewExcelStrategy()
	default:
		strategy = feed.NewCSVStrategy()
	}

	rows, err := strategy.Parse(c.Request.Context(), data)
	if err != nil {
		h.log.Warn().Err(err).Str("filename", fileHeader.Filename).Msg("Uploaded catalog unparsable")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not parse uploaded file"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count": len(rows),
		"rows":  rows,
	})
}

func (h *Handler) ListFavorites(c *gin.Context) {
	records, err := h.favorites.List(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list favorites")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":     len(records),
		"favorites": records,
	})
}

func (h *Handler) AddFavorite(c *gin.Context) {
	var req model.FavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	key, err := h.favorites.Add(c.Request.Context(), req.Row, req.SelectedColumns)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": key})
}

func (h *Handler) RemoveFavorite(c *gin.Context) {
	if err := h.favorites.Remove(c.Request.Context(), c.Param("key")); err != nil {
		h.log.Error().Err(err).Str("key", c.Param("key")).Msg("Failed to remove favorite")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": c.Param("key")})
}

func (h *Handler) ListApplications(c *gin.Context) {
	apps, err := h.apps.List(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list applications")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":        len(apps),
		"applications": apps,
	})
}

func (h *Handler) AddApplication(c *gin.Context) {
	var app model.EnhancedApplication
	if err := c.ShouldBindJSON(&app); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if app.University == "" || app.ProgramName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "university and programName are required"})
		return
	}

	added, err := h.apps.Add(c.Request.Context(), app)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to add application")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusCreated, added)
}

func (h *Handler) UpdateApplication(c *gin.Context) {
	var patch model.ApplicationPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	updated, err := h.apps.Update(c.Request.Context(), c.Param("id"), patch)
	if errors.Is(err, pkgerrors.ErrApplicationNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Application not found"})
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("id", c.Param("id")).Msg("Failed to update application")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) SetApplicationStatus(c *gin.Context) {
	var req model.StatusChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if !validStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown application status", "status": req.Status})
		return
	}

	updated, err := h.apps.SetStatus(c.Request.Context(), c.Param("id"), req.Status, req.Notes)
	if errors.Is(err, pkgerrors.ErrApplicationNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Application not found"})
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("id", c.Param("id")).Msg("Failed to change status")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, updated)
}

func validStatus(status model.ApplicationStatus) bool {
	for _, s := range model.AllStatuses {
		if s == status {
			return true
		}
	}
	return false
}

func (h *Handler) DeleteApplication(c *gin.Context) {
	if err := h.apps.Remove(c.Request.Context(), c.Param("id")); err != nil {
		h.log.Error().Err(err).Str("id", c.Param("id")).Msg("Failed to delete application")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": c.Param("id")})
}

// ImportFromFavorites converts every saved favorite into a tracked
// application, skipping programs that are already tracked.
func (h *Handler) ImportFromFavorites(c *gin.Context) {
	records, err := h.favorites.List(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list favorites for import")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	imp := importer.New(deadline.NewParser(time.Now()))
	converted := imp.Import(records)

	added, err := h.apps.MergeImported(c.Request.Context(), converted)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to merge imported applications")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	h.log.Info().Int("favorites", len(records)).Int("added", added).Msg("Favorites imported")
	c.JSON(http.StatusOK, gin.H{
		"favorites": len(records),
		"added":     added,
		"skipped":   len(converted) - added,
	})
}

func (h *Handler) GetStatistics(c *gin.Context) {
	stats, err := h.apps.Statistics(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to compute statistics")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) ListRecommenders(c *gin.Context) {
	recommenders, err := h.apps.Recommenders(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list recommenders")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":        len(recommenders),
		"recommenders": recommenders,
	})
}

func (h *Handler) AddRecommender(c *gin.Context) {
	var r model.Recommender
	if err := c.ShouldBindJSON(&r); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	added, err := h.apps.AddRecommender(c.Request.Context(), r)
	var verr pkgerrors.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message, "field": verr.Field})
		return
	}
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to add recommender")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusCreated, added)
}

// ParseDeadline exposes the deadline text parser, returning the structured
// result plus the round options a picker would show. Clients must
// percent-encode the text parameter; a raw ";" makes net/url drop the pair.
func (h *Handler) ParseDeadline(c *gin.Context) {
	text := c.Query("text")
	parsed := deadline.Parse(text)
	c.JSON(http.StatusOK, gin.H{
		"parsed":  parsed,
		"options": deadline.RoundOptions(parsed),
	})
}
