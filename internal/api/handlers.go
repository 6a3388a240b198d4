package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"mandi/server/config"
	"mandi/server/internal/gateway"
	"mandi/server/internal/models"
	"mandi/server/internal/prices"
	"mandi/server/internal/ranking"
	"mandi/server/internal/search"
	"mandi/server/internal/session"
)

type PriceFetcher interface {
	FetchAll(ctx context.Context, filters prices.Filters) ([]models.RawPriceRecord, error)
}

type Handler struct {
	sessions *session.Manager
	fetcher  PriceFetcher
	logger   *logrus.Logger
	now      func() time.Time
}

type SearchRequest struct {
	Location string `json:"location"`
	Crop     string `json:"crop"`
}

// DeviceLocationRequest carries either a browser position or the browser's
// geolocation error code
type DeviceLocationRequest struct {
	Lat       *float64 `json:"lat"`
	Lon       *float64 `json:"lon"`
	ErrorCode *int     `json:"error_code"`
}

func NewHandler(sessions *session.Manager, fetcher PriceFetcher, logger *logrus.Logger) *Handler {
	return &Handler{
		sessions: sessions,
		fetcher:  fetcher,
		logger:   logger,
		now:      time.Now,
	}
}

func (h *Handler) CreateSession(c *gin.Context) {
	s, err := h.sessions.Create()
	if err != nil {
		h.logger.WithError(err).Error("Failed to create session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"session_id": s.ID})
}

func (h *Handler) DeleteSession(c *gin.Context) {
	if err := h.sessions.Close(c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) SetDeviceLocation(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	var req DeviceLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Error("Failed to parse device location")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if req.ErrorCode != nil {
		c.JSON(http.StatusOK, gin.H{"message": ranking.GeolocationMessage(ranking.GeolocationCode(*req.ErrorCode))})
		return
	}
	if req.Lat == nil || req.Lon == nil || *req.Lat < -90 || *req.Lat > 90 || *req.Lon < -180 || *req.Lon > 180 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lon must be valid coordinates"})
		return
	}

	coords := models.Coordinates{Lat: *req.Lat, Lon: *req.Lon}
	state := s.SetDeviceLocation(coords)
	c.JSON(http.StatusOK, ranking.DeviceLocationView(coords, state))
}

func (h *Handler) LocationSuggestions(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	suggestions := s.Resolver().Suggest(c.Request.Context(), c.Query("q"))
	if suggestions == nil {
		suggestions = []models.LocationSuggestion{}
	}
	c.JSON(http.StatusOK, gin.H{"suggestions": suggestions})
}

func (h *Handler) CropSuggestions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"suggestions": ranking.CropSuggestions(c.Query("q"))})
}

func (h *Handler) Search(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Error("Failed to parse search request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	result, err := s.Search(c.Request.Context(), req.Location, req.Crop)
	if err != nil {
		h.fail(c, err)
		return
	}

	if c.Query("format") == "geojson" {
		c.JSON(http.StatusOK, ranking.FeatureCollection(result))
		return
	}
	c.JSON(http.StatusOK, ranking.RankedView(result, strings.TrimSpace(req.Crop)))
}

func (h *Handler) Progress(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.Progress())
}

func (h *Handler) Cancel(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"cancelled": s.Cancel()})
}

// GetPrices serves the simple table: state and crop filters go upstream, the
// optional lat/lon only feed the approximate distance column
func (h *Handler) GetPrices(c *gin.Context) {
	var filters prices.Filters
	if err := c.ShouldBindQuery(&filters); err != nil {
		h.logger.WithError(err).Error("Failed to parse price filters")
	}
	filters.State = strings.TrimSpace(filters.State)
	filters.Commodity = strings.TrimSpace(filters.Commodity)
	if filters.State == config.AllStates {
		filters.State = ""
	}

	user, err := parseUserCoordinates(c.Query("lat"), c.Query("lon"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lon must be valid coordinates"})
		return
	}

	raw, err := h.fetcher.FetchAll(c.Request.Context(), filters)
	if err != nil {
		h.logger.WithError(err).WithFields(logrus.Fields{
			"state": filters.State,
			"crop":  filters.Commodity,
		}).Error("Failed to fetch prices")
		c.JSON(statusFor(err), gin.H{"error": "Failed to fetch data. Please try again."})
		return
	}

	records := prices.Validate(raw, h.now())
	c.JSON(http.StatusOK, ranking.TableView(records, filters, user))
}

func (h *Handler) GetStates(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"states": config.States})
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": h.sessions.Len()})
}

func (h *Handler) session(c *gin.Context) (*session.Session, bool) {
	s, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return nil, false
	}
	return s, true
}

func (h *Handler) fail(c *gin.Context, err error) {
	status := statusFor(err)
	entry := h.logger.WithError(err).WithFields(logrus.Fields{
		"path":   c.FullPath(),
		"status": status,
	})
	if status >= http.StatusInternalServerError {
		entry.Error("Request failed")
	} else {
		entry.Info("Request rejected")
	}

	message := ranking.UserMessage(err)
	if errors.Is(err, session.ErrNotFound) {
		message = "Session not found"
	}
	c.JSON(status, gin.H{"error": message})
}

func statusFor(err error) int {
	var apiErr *gateway.APIError
	switch {
	case errors.Is(err, search.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, search.ErrLocationNotFound),
		errors.Is(err, search.ErrNoDataForCrop),
		errors.Is(err, gateway.ErrNotFound),
		errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, gateway.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, search.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, search.ErrCancelled):
		return http.StatusConflict
	case errors.As(err, &apiErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// parseUserCoordinates returns nil when neither value is given
func parseUserCoordinates(lat, lon string) (*models.Coordinates, error) {
	if lat == "" && lon == "" {
		return nil, nil
	}
	la, err := strconv.ParseFloat(lat, 64)
	if err != nil {
		return nil, err
	}
	lo, err := strconv.ParseFloat(lon, 64)
	if err != nil {
		return nil, err
	}
	if la < -90 || la > 90 || lo < -180 || lo > 180 {
		return nil, errors.New("coordinates out of range")
	}
	return &models.Coordinates{Lat: la, Lon: lo}, nil
}
