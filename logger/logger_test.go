package logger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func captureLogs() *observer.ObservedLogs {
	core, logs := observer.New(zap.InfoLevel)
	Log = zap.New(core)
	return logs
}

func requestIDField(t *testing.T, entry observer.LoggedEntry) string {
	t.Helper()
	for _, f := range entry.Context {
		if f.Key == "request_id" {
			return f.String
		}
	}
	t.Fatalf("no request_id field in %+v", entry.Context)
	return ""
}

func TestRequestIDReachesHandlerLogs(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logs := captureLogs()

	router := gin.New()
	router.Use(RequestLogger())
	router.GET("/ping", func(c *gin.Context) {
		Info(c.Request.Context(), "handler ran")
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "req-42")
	router.ServeHTTP(httptest.NewRecorder(), req)

	entries := logs.FilterMessage("handler ran").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 handler log, got %d", len(entries))
	}
	if got := requestIDField(t, entries[0]); got != "req-42" {
		t.Fatalf("handler log carries request_id %q, want req-42", got)
	}

	completed := logs.FilterMessage("Request completed").All()
	if len(completed) != 1 {
		t.Fatalf("expected 1 completion log, got %d", len(completed))
	}
}

func TestRequestIDGeneratedWhenHeaderMissing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logs := captureLogs()

	router := gin.New()
	router.Use(RequestLogger())
	router.GET("/ping", func(c *gin.Context) {
		Warn(c.Request.Context(), "no header")
		c.Status(http.StatusNoContent)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping", nil))

	entries := logs.FilterMessage("no header").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log, got %d", len(entries))
	}
	if got := requestIDField(t, entries[0]); got == "" || got == "unknown" {
		t.Fatalf("expected a generated request id, got %q", got)
	}
}

func TestBareContextFallsBackToUnknown(t *testing.T) {
	logs := captureLogs()

	Error(context.Background(), "outside a request", nil)

	entries := logs.FilterMessage("outside a request").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log, got %d", len(entries))
	}
	if got := requestIDField(t, entries[0]); got != "unknown" {
		t.Fatalf("expected unknown request id, got %q", got)
	}
}
