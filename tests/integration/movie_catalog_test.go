package integration_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mymovieslab/mymovies/internal/database"
	"github.com/mymovieslab/mymovies/internal/movies"
	"github.com/mymovieslab/mymovies/internal/server"
	"go.uber.org/zap"
)

const jsonContentType = "application/json"

type moviePayload struct {
	ID     int64  `json:"id"`
	ImdbID string `json:"imdbId"`
	Name   string `json:"name"`
	Seen   bool   `json:"seen"`
	Rating int    `json:"rating"`
}

func newCatalogHandler(testContext *testing.T) http.Handler {
	testContext.Helper()
	gin.SetMode(gin.TestMode)

	databasePath := filepath.Join(testContext.TempDir(), "catalog.db")
	db, err := database.OpenSQLite(databasePath, zap.NewNop())
	if err != nil {
		testContext.Fatalf("failed to open sqlite: %v", err)
	}

	moviesService, err := movies.NewService(movies.ServiceConfig{Database: db})
	if err != nil {
		testContext.Fatalf("failed to construct service: %v", err)
	}

	handler, err := server.NewHTTPHandler(server.Dependencies{MoviesService: moviesService})
	if err != nil {
		testContext.Fatalf("failed to construct handler: %v", err)
	}
	return handler
}

func doRequest(handler http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var request *http.Request
	if body == "" {
		request = httptest.NewRequest(method, target, http.NoBody)
	} else {
		request = httptest.NewRequest(method, target, strings.NewReader(body))
		request.Header.Set("Content-Type", jsonContentType)
	}
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	return recorder
}

func TestMovieLifecycleOverHTTP(testContext *testing.T) {
	handler := newCatalogHandler(testContext)

	createBody := `{"imdbId":"tt10872600","name":"Spider-Man: No Way Home","seen":true,"rating":10}`
	created := doRequest(handler, http.MethodPost, "/api/movies", createBody)
	if created.Code != http.StatusCreated {
		testContext.Fatalf("expected create to return %d, got %d: %s", http.StatusCreated, created.Code, created.Body.String())
	}

	fetched := doRequest(handler, http.MethodGet, "/api/movies/tt10872600", "")
	if fetched.Code != http.StatusOK {
		testContext.Fatalf("expected get to return %d, got %d", http.StatusOK, fetched.Code)
	}
	var payload moviePayload
	if err := json.Unmarshal(fetched.Body.Bytes(), &payload); err != nil {
		testContext.Fatalf("failed to decode movie: %v", err)
	}
	if payload.ImdbID != "tt10872600" || payload.Name != "Spider-Man: No Way Home" || !payload.Seen || payload.Rating != 10 {
		testContext.Fatalf("unexpected movie payload: %+v", payload)
	}
	if payload.ID == 0 {
		testContext.Fatalf("expected store-assigned internal id")
	}

	unseen := doRequest(handler, http.MethodPut, "/api/movies/tt10872600/unseen", "")
	if unseen.Code != http.StatusOK {
		testContext.Fatalf("expected unseen to return %d, got %d", http.StatusOK, unseen.Code)
	}
	refetched := doRequest(handler, http.MethodGet, "/api/movies/tt10872600", "")
	if err := json.Unmarshal(refetched.Body.Bytes(), &payload); err != nil {
		testContext.Fatalf("failed to decode movie: %v", err)
	}
	if payload.Seen || payload.Rating != 0 {
		testContext.Fatalf("expected unseen movie without rating, got %+v", payload)
	}

	seen := doRequest(handler, http.MethodPut, "/api/movies/tt10872600/seen", "8")
	if seen.Code != http.StatusOK {
		testContext.Fatalf("expected seen to return %d, got %d", http.StatusOK, seen.Code)
	}
	refetched = doRequest(handler, http.MethodGet, "/api/movies/tt10872600", "")
	if err := json.Unmarshal(refetched.Body.Bytes(), &payload); err != nil {
		testContext.Fatalf("failed to decode movie: %v", err)
	}
	if !payload.Seen || payload.Rating != 8 {
		testContext.Fatalf("expected seen movie with rating 8, got %+v", payload)
	}

	deleted := doRequest(handler, http.MethodDelete, "/api/movies/tt10872600", "")
	if deleted.Code != http.StatusOK {
		testContext.Fatalf("expected delete to return %d, got %d", http.StatusOK, deleted.Code)
	}

	emptied := doRequest(handler, http.MethodGet, "/api/movies", "")
	if emptied.Code != http.StatusNoContent {
		testContext.Fatalf("expected empty catalog to return %d, got %d", http.StatusNoContent, emptied.Code)
	}
}

func TestDuplicateCreateIsRejectedOverHTTP(testContext *testing.T) {
	handler := newCatalogHandler(testContext)

	body := `{"imdbId":"tt0133093","name":"The Matrix","seen":true,"rating":9}`
	first := doRequest(handler, http.MethodPost, "/api/movies", body)
	if first.Code != http.StatusCreated {
		testContext.Fatalf("expected first create to succeed, got %d", first.Code)
	}

	second := doRequest(handler, http.MethodPost, "/api/movies", body)
	if second.Code != http.StatusConflict {
		testContext.Fatalf("expected duplicate create to return %d, got %d", http.StatusConflict, second.Code)
	}
	if second.Body.String() != "Movie already exists" {
		testContext.Fatalf("unexpected response body: %s", second.Body.String())
	}
}
