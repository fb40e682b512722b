// Copyright (c) 2024-2026 PathwiseAI
// Author: Prashant Srivastav <prashant@pathwise.ai>
//
// Licensed under GPL-2.0 with Pathwise Additional Terms.
// See LICENSE.md or contact sales@pathwise.ai for commercial usage.

package interview_api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	internal_session "github.com/pathwiseai/api/interview-api/internal/session"
	internal_type "github.com/pathwiseai/api/interview-api/internal/type"
	"github.com/pathwiseai/config"
	"github.com/pathwiseai/pkg/commons"
)

// SessionController is the slice of the session engine the HTTP surface
// needs.
type SessionController interface {
	Start(ctx context.Context, ictx internal_type.InterviewContext) (string, error)
	Stop()
	ToggleMute() (bool, error)
	Phase() internal_session.Phase
	Loudness() int
	Muted() bool
	SessionID() string
	LastError() error
	Interim(speaker internal_type.Speaker) string
	Transcript() []internal_type.TranscriptEntry
}

// InterviewApi exposes the voice interview session over HTTP for the web
// client: start/stop, mute, live status polling and the transcript.
type InterviewApi struct {
	cfg        *config.AppConfig
	logger     commons.Logger
	controller SessionController
}

func New(cfg *config.AppConfig, logger commons.Logger, controller SessionController) *InterviewApi {
	return &InterviewApi{
		cfg:        cfg,
		logger:     logger,
		controller: controller,
	}
}

// Start begins a new interview session.
//
// @Router /v1/interview/start [post]
// @Summary Start a voice interview session
// @Description Connects to the interview agent and goes live. The request
// body is the interview brief from the resume-analysis step.
// @Produce json
// @Success 200 {object} gin.H
// @Failure 400 {object} gin.H
// @Failure 502 {object} gin.H
// @Failure 503 {object} gin.H
func (iApi *InterviewApi) Start(c *gin.Context) {
	var ictx internal_type.InterviewContext
	if err := c.ShouldBindJSON(&ictx); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid interview context payload"})
		return
	}

	// Sessions outlive the HTTP request that starts them.
	id, err := iApi.controller.Start(context.Background(), ictx)
	if err != nil {
		iApi.logger.Errorf("Failed to start interview session: %v", err)
		c.JSON(startStatusCode(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id": id,
		"phase":      iApi.controller.Phase(),
	})
}

// startStatusCode maps a session start failure onto an HTTP status.
func startStatusCode(err error) int {
	var preErr *internal_type.PreconditionError
	if errors.As(err, &preErr) {
		return http.StatusBadRequest
	}
	if errors.Is(err, internal_session.ErrStartAborted) {
		return http.StatusConflict
	}
	var connErr *internal_type.ConnectError
	if errors.As(err, &connErr) {
		return http.StatusBadGateway
	}
	var devErr *internal_type.DeviceError
	if errors.As(err, &devErr) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// Stop ends the live session. Safe to call at any time.
//
// @Router /v1/interview/stop [post]
// @Summary Stop the live interview session
// @Produce json
// @Success 200 {object} gin.H
func (iApi *InterviewApi) Stop(c *gin.Context) {
	iApi.controller.Stop()
	c.JSON(http.StatusOK, gin.H{"phase": iApi.controller.Phase()})
}

// ToggleMute flips microphone transmission for the live session.
//
// @Router /v1/interview/mute [post]
// @Summary Toggle microphone mute
// @Produce json
// @Success 200 {object} gin.H
// @Failure 400 {object} gin.H
func (iApi *InterviewApi) ToggleMute(c *gin.Context) {
	muted, err := iApi.controller.ToggleMute()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"muted": muted})
}

// Status reports the live phase, mic loudness and mute flag. The web client
// polls this to drive the in-call UI.
//
// @Router /v1/interview/status [get]
// @Summary Live session status
// @Produce json
// @Success 200 {object} gin.H
func (iApi *InterviewApi) Status(c *gin.Context) {
	status := gin.H{
		"phase":      iApi.controller.Phase(),
		"session_id": iApi.controller.SessionID(),
		"loudness":   iApi.controller.Loudness(),
		"muted":      iApi.controller.Muted(),
	}
	if err := iApi.controller.LastError(); err != nil {
		status["last_error"] = err.Error()
	}
	c.JSON(http.StatusOK, status)
}

// Transcript returns the finalized transcript plus both speakers' in-progress
// text.
//
// @Router /v1/interview/transcript [get]
// @Summary Session transcript
// @Produce json
// @Success 200 {object} gin.H
func (iApi *InterviewApi) Transcript(c *gin.Context) {
	entries := iApi.controller.Transcript()
	if entries == nil {
		entries = []internal_type.TranscriptEntry{}
	}
	c.JSON(http.StatusOK, gin.H{
		"entries": entries,
		"interim": gin.H{
			"user":  iApi.controller.Interim(internal_type.SpeakerUser),
			"agent": iApi.controller.Interim(internal_type.SpeakerAgent),
		},
	})
}
