package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/bookmarks/pkg/bookmarks/errx"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func setupTestRouter(log *zap.Logger, handler gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), Logger(log), Recovery())
	r.GET("/test", handler)
	return r
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		kind errx.Kind
		want int
	}{
		{errx.Invalid, http.StatusBadRequest},
		{errx.Unauthorized, http.StatusUnauthorized},
		{errx.NotFound, http.StatusNotFound},
		{errx.Conflict, http.StatusConflict},
		{errx.Internal, http.StatusInternalServerError},
		{errx.Unknown, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := StatusFor(tt.kind); got != tt.want {
			t.Errorf("StatusFor(%v) = %d, want %d", tt.kind, got, tt.want)
		}
	}
}

func TestErrorUsesKindMessage(t *testing.T) {
	router := setupTestRouter(zap.NewNop(), func(c *gin.Context) {
		Error(c, errx.E("outer", errx.Conflict, errx.New("inner", errx.Conflict, "URL already exists")))
	})

	req, _ := http.NewRequest("GET", "/test", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusConflict {
		t.Errorf("Expected status 409, got %d", resp.Code)
	}
	var body map[string]string
	json.Unmarshal(resp.Body.Bytes(), &body)
	if body["error"] != "URL already exists" {
		t.Errorf("Expected error message 'URL already exists', got %q", body["error"])
	}
}

func TestErrorHidesInternals(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	router := setupTestRouter(zap.New(core), func(c *gin.Context) {
		Error(c, errors.New("pq: connection refused to 10.0.0.1"))
	})

	req, _ := http.NewRequest("GET", "/test", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", resp.Code)
	}
	var body map[string]string
	json.Unmarshal(resp.Body.Bytes(), &body)
	if body["error"] != "Internal server error" {
		t.Errorf("Expected generic message, got %q", body["error"])
	}
	if logs.FilterMessage("request failed").Len() != 1 {
		t.Error("Expected the internal error to be logged")
	}
}

func TestRecovery(t *testing.T) {
	router := setupTestRouter(zap.NewNop(), func(c *gin.Context) {
		panic("boom")
	})

	req, _ := http.NewRequest("GET", "/test", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", resp.Code)
	}
	var body map[string]string
	json.Unmarshal(resp.Body.Bytes(), &body)
	if body["error"] != "Internal server error" {
		t.Errorf("Expected generic message, got %q", body["error"])
	}
}

func TestRequestID(t *testing.T) {
	router := setupTestRouter(zap.NewNop(), func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})

	req, _ := http.NewRequest("GET", "/test", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	generated := resp.Header().Get(RequestIDHeader)
	if generated == "" || resp.Body.String() != generated {
		t.Errorf("Expected generated request id echoed, got header %q body %q", generated, resp.Body.String())
	}

	req, _ = http.NewRequest("GET", "/test", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Header().Get(RequestIDHeader) != "abc-123" {
		t.Errorf("Expected incoming request id to be reused, got %q", resp.Header().Get(RequestIDHeader))
	}
}

func TestLoggerWritesRequestLine(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	router := setupTestRouter(zap.New(core), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	req, _ := http.NewRequest("GET", "/test", nil)
	router.ServeHTTP(httptest.NewRecorder(), req)

	entries := logs.FilterMessage("http_request").All()
	if len(entries) != 1 {
		t.Fatalf("Expected 1 request log line, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["status"] != int64(http.StatusNoContent) {
		t.Errorf("Expected status field 204, got %v", fields["status"])
	}
	if id, _ := fields["request_id"].(string); id == "" {
		t.Error("Expected request_id field")
	}
}
