package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func loggedRequest(t *testing.T, status int, path, route string) *observer.ObservedLogs {
	t.Helper()
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.DebugLevel)

	r := gin.New()
	r.Use(RequestLogger(zap.New(core)))
	r.GET(route, func(c *gin.Context) { c.Status(status) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return logs
}

func TestRequestLoggerTagsParticipant(t *testing.T) {
	logs := loggedRequest(t, http.StatusOK, "/dashboard/participant/p-7", "/dashboard/participant/:id")

	entries := logs.FilterMessage("Motor API request served").All()
	if len(entries) != 1 {
		t.Fatalf("expected one served entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["participant_id"] != "p-7" {
		t.Errorf("expected participant_id p-7, got %v", fields["participant_id"])
	}
	if fields["route"] != "/dashboard/participant/:id" {
		t.Errorf("expected route template, got %v", fields["route"])
	}
}

func TestRequestLoggerLevelsByStatus(t *testing.T) {
	logs := loggedRequest(t, http.StatusBadRequest, "/motor/config", "/motor/config")
	if got := logs.FilterMessage("Motor API request rejected").Len(); got != 1 {
		t.Fatalf("expected one warn entry for a 4xx, got %d", got)
	}

	logs = loggedRequest(t, http.StatusInternalServerError, "/motor/config", "/motor/config")
	if got := logs.FilterMessage("Motor API request failed").Len(); got != 1 {
		t.Fatalf("expected one error entry for a 5xx, got %d", got)
	}
}
