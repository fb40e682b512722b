// Copyright (c) 2024-2026 PathwiseAI
// Author: Prashant Srivastav <prashant@pathwise.ai>
//
// Licensed under GPL-2.0 with Pathwise Additional Terms.
// See LICENSE.md or contact sales@pathwise.ai for commercial usage.

package interview_api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	internal_session "github.com/pathwiseai/api/interview-api/internal/session"
	internal_type "github.com/pathwiseai/api/interview-api/internal/type"
	"github.com/pathwiseai/config"
	"github.com/pathwiseai/pkg/commons"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubController scripts the session engine for handler tests.
type stubController struct {
	startID    string
	startErr   error
	started    []internal_type.InterviewContext
	stopped    int
	muted      bool
	muteErr    error
	phase      internal_session.Phase
	loudness   int
	sessionID  string
	lastErr    error
	interim    map[internal_type.Speaker]string
	transcript []internal_type.TranscriptEntry
}

func (s *stubController) Start(_ context.Context, ictx internal_type.InterviewContext) (string, error) {
	s.started = append(s.started, ictx)
	return s.startID, s.startErr
}

func (s *stubController) Stop()                         { s.stopped++ }
func (s *stubController) Phase() internal_session.Phase { return s.phase }
func (s *stubController) Loudness() int                 { return s.loudness }
func (s *stubController) Muted() bool                   { return s.muted }
func (s *stubController) SessionID() string             { return s.sessionID }
func (s *stubController) LastError() error              { return s.lastErr }

func (s *stubController) ToggleMute() (bool, error) {
	if s.muteErr != nil {
		return false, s.muteErr
	}
	s.muted = !s.muted
	return s.muted, nil
}

func (s *stubController) Interim(speaker internal_type.Speaker) string { return s.interim[speaker] }

func (s *stubController) Transcript() []internal_type.TranscriptEntry { return s.transcript }

func newTestRouter(t *testing.T, stub *stubController) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger, err := commons.NewApplicationLogger(commons.Name("test-interview-api"))
	require.NoError(t, err)

	cfg := &config.AppConfig{Name: "interview-engine", Version: "test"}
	api := New(cfg, logger, stub)

	engine := gin.New()
	v1 := engine.Group("v1/interview")
	v1.POST("/start", api.Start)
	v1.POST("/stop", api.Stop)
	v1.POST("/mute", api.ToggleMute)
	v1.GET("/status", api.Status)
	v1.GET("/transcript", api.Transcript)
	return engine
}

func doJSON(t *testing.T, engine *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	decoded := map[string]interface{}{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	}
	return rec, decoded
}

func TestStartReturnsSessionID(t *testing.T) {
	stub := &stubController{startID: "sess-42", phase: internal_session.PhaseActive}
	engine := newTestRouter(t, stub)

	rec, body := doJSON(t, engine, http.MethodPost, "/v1/interview/start", internal_type.InterviewContext{
		Role:            "SRE",
		AnalysisSummary: "Ops heavy background.",
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "sess-42", body["session_id"])
	require.Len(t, stub.started, 1)
	assert.Equal(t, "SRE", stub.started[0].Role)
}

func TestStartRejectsBadJSON(t *testing.T) {
	stub := &stubController{}
	engine := newTestRouter(t, stub)

	req := httptest.NewRequest(http.MethodPost, "/v1/interview/start", bytes.NewBufferString("{broken"))
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, stub.started)
}

func TestStartErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"precondition", &internal_type.PreconditionError{Missing: "role"}, http.StatusBadRequest},
		{"connect", &internal_type.ConnectError{Endpoint: "wss://x", Err: errors.New("refused")}, http.StatusBadGateway},
		{"device", &internal_type.DeviceError{Op: "open input", Err: errors.New("busy")}, http.StatusServiceUnavailable},
		{"aborted by stop", internal_session.ErrStartAborted, http.StatusConflict},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubController{startErr: tt.err}
			engine := newTestRouter(t, stub)

			rec, body := doJSON(t, engine, http.MethodPost, "/v1/interview/start", internal_type.InterviewContext{
				Role:            "SRE",
				AnalysisSummary: "x",
			})
			assert.Equal(t, tt.code, rec.Code)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestStopAlwaysSucceeds(t *testing.T) {
	stub := &stubController{phase: internal_session.PhaseClosed}
	engine := newTestRouter(t, stub)

	rec, body := doJSON(t, engine, http.MethodPost, "/v1/interview/stop", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, string(internal_session.PhaseClosed), body["phase"])
	assert.Equal(t, 1, stub.stopped)
}

func TestToggleMute(t *testing.T) {
	stub := &stubController{}
	engine := newTestRouter(t, stub)

	rec, body := doJSON(t, engine, http.MethodPost, "/v1/interview/mute", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["muted"])

	rec, body = doJSON(t, engine, http.MethodPost, "/v1/interview/mute", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, body["muted"])
}

func TestToggleMuteWithoutSession(t *testing.T) {
	stub := &stubController{muteErr: &internal_type.PreconditionError{Missing: "active session"}}
	engine := newTestRouter(t, stub)

	rec, _ := doJSON(t, engine, http.MethodPost, "/v1/interview/mute", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatus(t *testing.T) {
	stub := &stubController{
		phase:     internal_session.PhaseActive,
		sessionID: "sess-7",
		loudness:  42,
		muted:     true,
	}
	engine := newTestRouter(t, stub)

	rec, body := doJSON(t, engine, http.MethodGet, "/v1/interview/status", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "active", body["phase"])
	assert.Equal(t, "sess-7", body["session_id"])
	assert.Equal(t, float64(42), body["loudness"])
	assert.Equal(t, true, body["muted"])
	assert.NotContains(t, body, "last_error")
}

func TestStatusIncludesLastError(t *testing.T) {
	stub := &stubController{
		phase:   internal_session.PhaseError,
		lastErr: &internal_type.TransportError{Description: "agent backend unavailable"},
	}
	engine := newTestRouter(t, stub)

	rec, body := doJSON(t, engine, http.MethodGet, "/v1/interview/status", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, body["last_error"], "agent backend unavailable")
}

func TestTranscript(t *testing.T) {
	stub := &stubController{
		transcript: []internal_type.TranscriptEntry{
			{Speaker: internal_type.SpeakerUser, Text: "I scaled it.", Finalized: true},
		},
		interim: map[internal_type.Speaker]string{
			internal_type.SpeakerAgent: "And how did",
		},
	}
	engine := newTestRouter(t, stub)

	rec, body := doJSON(t, engine, http.MethodGet, "/v1/interview/transcript", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	entries := body["entries"].([]interface{})
	require.Len(t, entries, 1)
	entry := entries[0].(map[string]interface{})
	assert.Equal(t, "user", entry["speaker"])
	assert.Equal(t, "I scaled it.", entry["text"])

	interim := body["interim"].(map[string]interface{})
	assert.Equal(t, "And how did", interim["agent"])
	assert.Equal(t, "", interim["user"])
}

func TestTranscriptEmptyIsArrayNotNull(t *testing.T) {
	stub := &stubController{}
	engine := newTestRouter(t, stub)

	rec, _ := doJSON(t, engine, http.MethodGet, "/v1/interview/transcript", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"entries":[]`)
}
