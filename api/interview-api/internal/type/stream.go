// Copyright (c) 2024-2026 PathwiseAI
// Author: Prashant Srivastav <prashant@pathwise.ai>
//
// Licensed under GPL-2.0 with Pathwise Additional Terms.
// See LICENSE.md or contact sales@pathwise.ai for commercial usage.

package internal_type

import "time"

// Stream is the marker for every message flowing through a session's event
// loop. Transport implementations produce Stream values; the session
// controller consumes each exactly once, in arrival order.
type Stream interface{}

// Speaker identifies which side of the conversation produced a transcript.
type Speaker string

const (
	SpeakerUser  Speaker = "user"
	SpeakerAgent Speaker = "agent"
)

// =============================================================================
// Transport message union
// =============================================================================

// AudioChunk is a block of encoded agent speech for playback.
type AudioChunk struct {
	Audio []byte
	Time  time.Time
}

// TranscriptDelta is a streaming partial-transcript fragment for one speaker.
type TranscriptDelta struct {
	Speaker Speaker
	Text    string
}

// TurnComplete signals a conversational turn boundary: all non-empty
// transcript buffers are finalized.
type TurnComplete struct{}

// Interrupted signals that the agent was barged-in on by new user speech.
// Scheduled agent audio must stop immediately.
type Interrupted struct{}

// Closed signals that the transport shut down cleanly.
type Closed struct {
	Reason string
}

// Fault signals a transport-level failure that aborts the session.
type Fault struct {
	Description string
}

// =============================================================================
// Session data model
// =============================================================================

// TranscriptEntry is one finalized (or in-progress) turn of speech.
type TranscriptEntry struct {
	Speaker   Speaker `json:"speaker"`
	Text      string  `json:"text"`
	Finalized bool    `json:"finalized"`
}

// InterviewContext is the precondition input supplied at session start: the
// prior resume-analysis result the interview agent is briefed with. Starting
// a session without it is a caller error, not a transport failure.
type InterviewContext struct {
	Role            string   `json:"role"`
	AnalysisSummary string   `json:"analysis_summary"`
	Skills          []string `json:"skills"`
}
