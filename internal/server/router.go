package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/mymovieslab/mymovies/internal/movies"
	"go.uber.org/zap"
)

var errMissingMoviesService = errors.New("movies service dependency required")

const malformedBodyMessage = "There was an error trying to process the JSON data"

// Dependencies carries the collaborators the HTTP layer is constructed with.
type Dependencies struct {
	MoviesService *movies.Service
	Logger        *zap.Logger
	CORSOrigins   []string
}

// NewHTTPHandler wires the movie catalog routes onto a gin engine.
func NewHTTPHandler(deps Dependencies) (http.Handler, error) {
	if deps.MoviesService == nil {
		return nil, errMissingMoviesService
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	origins := deps.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestIDMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))

	handler := &httpHandler{
		moviesService: deps.MoviesService,
		logger:        logger,
	}

	catalog := router.Group("/api/movies")
	catalog.GET("", handler.handleListMovies)
	catalog.POST("", handler.handleCreateMovie)
	catalog.GET("/:imdbId", handler.handleGetMovie)
	catalog.PUT("/:imdbId", handler.handleUpdateMovie)
	catalog.PUT("/:imdbId/rating", handler.handleUpdateRating)
	catalog.PUT("/:imdbId/name", handler.handleUpdateName)
	catalog.PUT("/:imdbId/imdbid", handler.handleUpdateImdbID)
	catalog.PUT("/:imdbId/seen", handler.handleMarkSeen)
	catalog.PUT("/:imdbId/unseen", handler.handleMarkUnseen)
	catalog.DELETE("/:imdbId", handler.handleDeleteMovie)

	return router, nil
}

type httpHandler struct {
	moviesService *movies.Service
	logger        *zap.Logger
}

type moviePayload struct {
	ID     int64  `json:"id"`
	ImdbID string `json:"imdbId"`
	Name   string `json:"name"`
	Seen   bool   `json:"seen"`
	Rating int    `json:"rating"`
}

func toMoviePayload(movie movies.Movie) moviePayload {
	return moviePayload{
		ID:     movie.ID,
		ImdbID: movie.ImdbID,
		Name:   movie.Name,
		Seen:   movie.Seen,
		Rating: movie.Rating,
	}
}

func (h *httpHandler) handleListMovies(c *gin.Context) {
	found, err := h.moviesService.List(c.Request.Context(), c.Query("name"))
	if err != nil {
		h.renderServiceError(c, err)
		return
	}
	if len(found) == 0 {
		c.Status(http.StatusNoContent)
		return
	}

	payloads := make([]moviePayload, 0, len(found))
	for _, movie := range found {
		payloads = append(payloads, toMoviePayload(movie))
	}
	c.JSON(http.StatusOK, payloads)
}

func (h *httpHandler) handleGetMovie(c *gin.Context) {
	found, err := h.moviesService.Get(c.Request.Context(), c.Param("imdbId"))
	if err != nil {
		h.renderServiceError(c, err)
		return
	}
	if found == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, toMoviePayload(*found))
}

func (h *httpHandler) handleCreateMovie(c *gin.Context) {
	var request moviePayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.String(http.StatusBadRequest, malformedBodyMessage)
		return
	}

	candidate := movies.Movie{
		ImdbID: request.ImdbID,
		Name:   request.Name,
		Seen:   request.Seen,
		Rating: request.Rating,
	}
	if _, err := h.moviesService.Create(c.Request.Context(), candidate); err != nil {
		h.renderServiceError(c, err)
		return
	}
	c.String(http.StatusCreated, "Movie is saved successfully")
}

func (h *httpHandler) handleUpdateMovie(c *gin.Context) {
	var request moviePayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.String(http.StatusBadRequest, malformedBodyMessage)
		return
	}

	replacement := movies.Movie{
		ImdbID: request.ImdbID,
		Name:   request.Name,
		Seen:   request.Seen,
		Rating: request.Rating,
	}
	if err := h.moviesService.Update(c.Request.Context(), c.Param("imdbId"), replacement); err != nil {
		h.renderServiceError(c, err)
		return
	}
	c.String(http.StatusOK, "Movie was updated successfully")
}

func (h *httpHandler) handleUpdateRating(c *gin.Context) {
	rating, err := decodeJSONInt(c)
	if err != nil {
		c.String(http.StatusBadRequest, malformedBodyMessage)
		return
	}

	if err := h.moviesService.UpdateRating(c.Request.Context(), c.Param("imdbId"), rating); err != nil {
		h.renderServiceError(c, err)
		return
	}
	c.String(http.StatusOK, "Movie rating was updated successfully")
}

func (h *httpHandler) handleUpdateName(c *gin.Context) {
	name, err := decodeJSONString(c)
	if err != nil {
		c.String(http.StatusBadRequest, malformedBodyMessage)
		return
	}

	if err := h.moviesService.UpdateName(c.Request.Context(), c.Param("imdbId"), name); err != nil {
		h.renderServiceError(c, err)
		return
	}
	c.String(http.StatusOK, "Movie name was updated successfully")
}

func (h *httpHandler) handleUpdateImdbID(c *gin.Context) {
	newImdbID, err := decodeJSONString(c)
	if err != nil {
		c.String(http.StatusBadRequest, malformedBodyMessage)
		return
	}

	if err := h.moviesService.UpdateImdbID(c.Request.Context(), c.Param("imdbId"), newImdbID); err != nil {
		h.renderServiceError(c, err)
		return
	}
	c.String(http.StatusOK, "Movie IMDB id was updated successfully")
}

func (h *httpHandler) handleMarkSeen(c *gin.Context) {
	rating, err := decodeJSONInt(c)
	if err != nil {
		c.String(http.StatusBadRequest, malformedBodyMessage)
		return
	}

	if err := h.moviesService.MarkSeen(c.Request.Context(), c.Param("imdbId"), rating); err != nil {
		h.renderServiceError(c, err)
		return
	}
	c.String(http.StatusOK, "Movie seen status and rating updated successfully")
}

func (h *httpHandler) handleMarkUnseen(c *gin.Context) {
	if err := h.moviesService.MarkUnseen(c.Request.Context(), c.Param("imdbId")); err != nil {
		h.renderServiceError(c, err)
		return
	}
	c.String(http.StatusOK, "Movie seen status and rating removed successfully")
}

func (h *httpHandler) handleDeleteMovie(c *gin.Context) {
	if err := h.moviesService.Delete(c.Request.Context(), c.Param("imdbId")); err != nil {
		h.renderServiceError(c, err)
		return
	}
	c.String(http.StatusOK, "Movie is deleted successfully")
}

// renderServiceError maps the catalog error kinds onto the wire contract.
// Every kind is request-scoped: nothing here terminates the process.
func (h *httpHandler) renderServiceError(c *gin.Context, err error) {
	var validationErr *movies.ValidationError
	switch {
	case errors.Is(err, movies.ErrNotFound):
		c.String(http.StatusNotFound, "Movie not found")
	case errors.Is(err, movies.ErrAlreadyExists):
		c.String(http.StatusConflict, "Movie already exists")
	case errors.As(err, &validationErr):
		c.String(http.StatusForbidden, "Action violated the following rule(s): "+strings.Join(validationErr.Violations, ", "))
	case errors.Is(err, movies.ErrIntegrityConflict):
		h.logger.Warn("potentially malicious action detected",
			zap.String("request_id", c.GetString(requestIDContextKey)))
		c.String(http.StatusForbidden, "Potentially malicious action detected")
	default:
		h.logger.Error("movie operation failed",
			zap.String("request_id", c.GetString(requestIDContextKey)),
			zap.Error(err))
		c.String(http.StatusInternalServerError, "Internal server error")
	}
}

// decodeJSONInt reads a bare JSON integer body, e.g. `7`.
func decodeJSONInt(c *gin.Context) (int, error) {
	var value int
	if err := json.NewDecoder(c.Request.Body).Decode(&value); err != nil {
		return 0, err
	}
	return value, nil
}

// decodeJSONString reads a bare JSON string body, e.g. `"tt0133093"`.
func decodeJSONString(c *gin.Context) (string, error) {
	var value string
	if err := json.NewDecoder(c.Request.Body).Decode(&value); err != nil {
		return "", err
	}
	return value, nil
}
