package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"aura/internal/config"
)

func TestEngineConfigServesTunables(t *testing.T) {
	gin.SetMode(gin.TestMode)
	config.Conf = &config.Config{
		Telemetry: config.TelemetryConfig{SampleHz: 60, BatchSize: 20, BatchTimeoutMs: 2000},
	}

	r := gin.New()
	r.GET("/motor/config", NewMotorHandler(zap.NewNop()).EngineConfig)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/motor/config", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding config response: %v", err)
	}
	if body["sampleHz"] != 60.0 || body["batchSize"] != 20.0 || body["batchTimeoutMs"] != 2000.0 {
		t.Errorf("configured tunables not served: %v", body)
	}
	// Unset tunables come back as engine defaults, never zero.
	if body["sampleCap"] != 1000.0 {
		t.Errorf("expected default sample cap 1000, got %v", body["sampleCap"])
	}
}

func bindRoundSummary(t *testing.T, payload string) (roundSummaryRequest, error) {
	t.Helper()
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/motor/summary/round", strings.NewReader(payload))
	c.Request.Header.Set("Content-Type", "application/json")
	var req roundSummaryRequest
	err := c.ShouldBindJSON(&req)
	return req, err
}

func TestRoundSummaryRequestAllowsRoundZero(t *testing.T) {
	gin.SetMode(gin.TestMode)

	req, err := bindRoundSummary(t, `{"sessionId":"s1","participantId":"p1","round":0}`)
	if err != nil {
		t.Fatalf("round 0 must bind: %v", err)
	}
	if req.Round == nil || *req.Round != 0 {
		t.Fatalf("expected round 0, got %v", req.Round)
	}
}

func TestRoundSummaryRequestRequiresRound(t *testing.T) {
	gin.SetMode(gin.TestMode)

	if _, err := bindRoundSummary(t, `{"sessionId":"s1","participantId":"p1"}`); err == nil {
		t.Fatal("expected binding error when round is absent")
	}
}
