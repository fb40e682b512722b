// Copyright (c) 2024-2026 PathwiseAI
// Author: Prashant Srivastav <prashant@pathwise.ai>
//
// Licensed under GPL-2.0 with Pathwise Additional Terms.
// See LICENSE.md or contact sales@pathwise.ai for commercial usage.

package internal_transcript

import (
	"strings"
	"sync"

	internal_type "github.com/pathwiseai/api/interview-api/internal/type"
	"github.com/pathwiseai/pkg/commons"
	"github.com/pathwiseai/pkg/utils"
)

// Aggregator folds streaming recognition deltas into a turn-ordered
// transcript. Each speaker has an in-progress buffer that accumulates deltas
// until a turn boundary, at which point both buffers are finalized and
// appended to the transcript: the user's utterance first, then the agent's
// reply.
//
// All methods are safe for concurrent use; the receive loop writes while API
// handlers read.
type Aggregator struct {
	logger commons.Logger

	mu      sync.Mutex
	user    strings.Builder
	agent   strings.Builder
	entries []internal_type.TranscriptEntry
}

// NewAggregator returns an empty aggregator. Both speakers start idle.
func NewAggregator(logger commons.Logger) *Aggregator {
	return &Aggregator{logger: logger}
}

// Delta appends a recognition fragment to the speaker's in-progress buffer.
// Fragments concatenate in arrival order with no separator; the recognizer
// owns spacing.
func (a *Aggregator) Delta(speaker internal_type.Speaker, text string) {
	if text == "" {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	switch speaker {
	case internal_type.SpeakerUser:
		a.user.WriteString(text)
	case internal_type.SpeakerAgent:
		a.agent.WriteString(text)
	default:
		a.logger.Warnw("transcript delta for unknown speaker, dropping", "speaker", speaker)
	}
}

// Interim returns the not-yet-finalized text for one speaker.
func (a *Aggregator) Interim(speaker internal_type.Speaker) string {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch speaker {
	case internal_type.SpeakerUser:
		return a.user.String()
	case internal_type.SpeakerAgent:
		return a.agent.String()
	}
	return ""
}

// CompleteTurn finalizes both in-progress buffers into transcript entries,
// user before agent, and returns the entries it appended. Whitespace-only
// buffers produce no entry. Calling it with both buffers empty is a no-op, so
// duplicate turn boundaries from the upstream service are harmless.
func (a *Aggregator) CompleteTurn() []internal_type.TranscriptEntry {
	a.mu.Lock()
	defer a.mu.Unlock()

	var appended []internal_type.TranscriptEntry
	for _, side := range []struct {
		speaker internal_type.Speaker
		buf     *strings.Builder
	}{
		{internal_type.SpeakerUser, &a.user},
		{internal_type.SpeakerAgent, &a.agent},
	} {
		text := side.buf.String()
		side.buf.Reset()
		if utils.IsEmpty(text) {
			continue
		}
		entry := internal_type.TranscriptEntry{
			Speaker:   side.speaker,
			Text:      text,
			Finalized: true,
		}
		a.entries = append(a.entries, entry)
		appended = append(appended, entry)
	}
	return appended
}

// Entries returns a copy of the finalized transcript in turn order.
func (a *Aggregator) Entries() []internal_type.TranscriptEntry {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]internal_type.TranscriptEntry, len(a.entries))
	copy(out, a.entries)
	return out
}

// Reset discards the transcript and both in-progress buffers.
func (a *Aggregator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.user.Reset()
	a.agent.Reset()
	a.entries = nil
}
