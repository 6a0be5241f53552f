// Package handler exposes the forge API over HTTP.
package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/weemadscotsman/3d-forge-demo-game-maker/internal/models"
	"github.com/weemadscotsman/3d-forge-demo-game-maker/internal/service"
)

// APIError is the JSON body returned for every failed request.
type APIError struct {
	Message string `json:"message"`
}

type refineGameRequest struct {
	Instruction string `json:"instruction" binding:"required"`
}

// GameHandler translates between HTTP and the game service.
type GameHandler struct {
	service service.GameService
	logger  *zap.Logger
}

func NewGameHandler(svc service.GameService, logger *zap.Logger) *GameHandler {
	return &GameHandler{
		service: svc,
		logger:  logger.Named("GameHandler"),
	}
}

// RegisterRoutes attaches the API surface to the router.
func (h *GameHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/health", h.health)

	games := router.Group("/api/v1/games")
	{
		games.POST("", h.createGame)
		games.GET("/:id", h.getGame)
		games.POST("/:id/refine", h.refineGame)
		games.GET("/:id/revisions", h.listRevisions)
	}
}

func (h *GameHandler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *GameHandler) createGame(c *gin.Context) {
	var prefs models.UserPreferences
	if err := c.ShouldBindJSON(&prefs); err != nil {
		h.logger.Warn("Invalid request body for createGame", zap.Error(err))
		handleServiceError(c, fmt.Errorf("%w: %v", models.ErrInvalidInput, err), h.logger)
		return
	}

	game, err := h.service.CreateGame(c.Request.Context(), prefs)
	if err != nil {
		handleServiceError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, game)
}

func (h *GameHandler) getGame(c *gin.Context) {
	id, ok := h.gameIDParam(c)
	if !ok {
		return
	}

	game, err := h.service.GetGame(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, game)
}

func (h *GameHandler) refineGame(c *gin.Context) {
	id, ok := h.gameIDParam(c)
	if !ok {
		return
	}

	var req refineGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid request body for refineGame", zap.String("gameID", id.String()), zap.Error(err))
		handleServiceError(c, fmt.Errorf("%w: %v", models.ErrInvalidInput, err), h.logger)
		return
	}

	game, err := h.service.RefineGame(c.Request.Context(), id, req.Instruction)
	if err != nil {
		handleServiceError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, game)
}

func (h *GameHandler) listRevisions(c *gin.Context) {
	id, ok := h.gameIDParam(c)
	if !ok {
		return
	}

	revisions, err := h.service.ListRevisions(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, revisions)
}

// gameIDParam parses the :id path parameter, responding 400 on a bad value.
func (h *GameHandler) gameIDParam(c *gin.Context) (uuid.UUID, bool) {
	idStr := c.Param("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		h.logger.Warn("Invalid game ID format", zap.String("id", idStr), zap.Error(err))
		c.AbortWithStatusJSON(http.StatusBadRequest, APIError{Message: "Invalid game ID format"})
		return uuid.Nil, false
	}
	return id, true
}

// handleServiceError maps service errors onto HTTP status codes. Generation
// failures keep their message verbatim so the client can show the phase and
// cause; anything unrecognized becomes an opaque 500.
func handleServiceError(c *gin.Context, err error, logger *zap.Logger) {
	var (
		validationErr *models.ValidationError
		malformedErr  *models.MalformedResponseError
		providerErr   *models.ProviderError
	)

	switch {
	case errors.Is(err, models.ErrInvalidInput), errors.Is(err, models.ErrEmptyInstruction):
		c.AbortWithStatusJSON(http.StatusBadRequest, APIError{Message: err.Error()})
	case errors.Is(err, models.ErrGameNotFound), errors.Is(err, models.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, APIError{Message: "Game not found"})
	case errors.Is(err, models.ErrNoArtifact),
		errors.As(err, &validationErr),
		errors.As(err, &malformedErr),
		errors.As(err, &providerErr):
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, APIError{Message: err.Error()})
	default:
		logger.Error("Unhandled service error", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, APIError{Message: "An unexpected internal error occurred"})
	}
}
