// Copyright (c) 2024-2026 PathwiseAI
// Author: Prashant Srivastav <prashant@pathwise.ai>
//
// Licensed under GPL-2.0 with Pathwise Additional Terms.
// See LICENSE.md or contact sales@pathwise.ai for commercial usage.

package channel_agentlink

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	internal_type "github.com/pathwiseai/api/interview-api/internal/type"
	"github.com/pathwiseai/pkg/commons"
	"github.com/pathwiseai/pkg/utils"
)

// =============================================================================
// Wire message types
// =============================================================================

// ALMessageType defines the type of message and what data structure to expect
type ALMessageType string

const (
	// Request types (client -> server)
	ALTypeSessionBegin ALMessageType = "session.begin" // Data: ALSessionBeginData
	ALTypeAudio        ALMessageType = "audio"         // Data: ALAudioData, bidirectional

	// Response types (server -> client)
	ALTypeTranscriptDelta ALMessageType = "transcript.delta" // Data: ALTranscriptDeltaData
	ALTypeTurnComplete    ALMessageType = "turn.complete"    // Data: nil
	ALTypeInterruption    ALMessageType = "interruption"     // Data: nil
	ALTypeSessionClosed   ALMessageType = "session.closed"   // Data: ALSessionClosedData
	ALTypeError           ALMessageType = "error"            // Data: ALErrorData

	// Control types (bidirectional)
	ALTypePing ALMessageType = "ping" // Data: nil
	ALTypePong ALMessageType = "pong" // Data: nil
)

// ALRequest represents an outgoing message with typed data
type ALRequest struct {
	Type      ALMessageType `json:"type"`
	Timestamp int64         `json:"timestamp"`
	Data      interface{}   `json:"data,omitempty"`
}

// ALResponse represents an incoming message with typed data
type ALResponse struct {
	Type ALMessageType   `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// ALSessionBeginData briefs the remote agent before any audio flows.
// Used with: ALTypeSessionBegin
type ALSessionBeginData struct {
	Role            string   `json:"role"`
	AnalysisSummary string   `json:"analysis_summary"`
	Skills          []string `json:"skills,omitempty"`
	SampleRate      int      `json:"sample_rate"`
	Encoding        string   `json:"encoding"`
}

// ALAudioData carries one encoded audio frame in either direction.
// Used with: ALTypeAudio
type ALAudioData struct {
	Audio     []byte `json:"audio"`
	Timestamp int64  `json:"timestamp,omitempty"`
}

// ALTranscriptDeltaData is a streaming recognition fragment.
// Used with: ALTypeTranscriptDelta
type ALTranscriptDeltaData struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

// ALSessionClosedData carries the remote close reason.
// Used with: ALTypeSessionClosed
type ALSessionClosedData struct {
	Reason string `json:"reason,omitempty"`
}

// ALErrorData carries a remote failure.
// Used with: ALTypeError
type ALErrorData struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// =============================================================================
// Transport
// =============================================================================

// inboundBuffer bounds the queue between the reader goroutine and Recv. Audio
// overflow drops frames rather than stalling the socket.
const inboundBuffer = 500

// Config carries the connection settings for the interview agent endpoint.
type Config struct {
	URL              string
	APIKey           string
	Headers          map[string]string
	Params           map[string]string
	SampleRate       int
	HandshakeTimeout time.Duration
}

// agentLink is the websocket transport to the remote interview agent. JSON
// envelopes in both directions; a reader goroutine fans inbound envelopes
// into a bounded queue that Recv drains in arrival order.
type agentLink struct {
	logger commons.Logger
	config Config
	ictx   internal_type.InterviewContext

	writeMu sync.Mutex // serializes socket writes

	mu         sync.Mutex
	connection *websocket.Conn
	closed     bool

	inbound  chan internal_type.Stream
	done     chan struct{}
	doneOnce sync.Once
}

// NewTransport builds an unopened transport for one interview session. The
// interview context is sent as the session.begin brief during Open.
func NewTransport(logger commons.Logger, config Config, ictx internal_type.InterviewContext) internal_type.Transport {
	if config.HandshakeTimeout <= 0 {
		config.HandshakeTimeout = 30 * time.Second
	}
	return &agentLink{
		logger:  logger,
		config:  config,
		ictx:    ictx,
		inbound: make(chan internal_type.Stream, inboundBuffer),
		done:    make(chan struct{}),
	}
}

// Open dials the agent endpoint, sends the session brief and starts the
// reader. Fails with a *ConnectError.
func (t *agentLink) Open(ctx context.Context) error {
	start := time.Now()

	headers := http.Header{}
	if t.config.APIKey != "" {
		headers.Set("Authorization", "Bearer "+t.config.APIKey)
	}
	for key, value := range t.config.Headers {
		headers.Set(key, value)
	}

	wsURL, err := url.Parse(t.config.URL)
	if err != nil {
		return &internal_type.ConnectError{Endpoint: t.config.URL, Err: err}
	}
	query := wsURL.Query()
	query.Set("sample_rate", strconv.Itoa(t.config.SampleRate))
	for key, value := range t.config.Params {
		query.Set(key, value)
	}
	wsURL.RawQuery = query.Encode()

	dialer := websocket.Dialer{
		HandshakeTimeout: t.config.HandshakeTimeout,
	}
	conn, _, err := dialer.DialContext(ctx, wsURL.String(), headers)
	if err != nil {
		return &internal_type.ConnectError{Endpoint: t.config.URL, Err: err}
	}

	conn.SetReadLimit(10 * 1024 * 1024) // 10MB max message size
	conn.SetPongHandler(func(appData string) error {
		t.logger.Debugf("Received pong from agent endpoint")
		return nil
	})

	t.mu.Lock()
	t.connection = conn
	t.mu.Unlock()

	brief := ALRequest{
		Type:      ALTypeSessionBegin,
		Timestamp: time.Now().UnixMilli(),
		Data: ALSessionBeginData{
			Role:            t.ictx.Role,
			AnalysisSummary: t.ictx.AnalysisSummary,
			Skills:          t.ictx.Skills,
			SampleRate:      t.config.SampleRate,
			Encoding:        "linear16",
		},
	}
	if err := t.writeEnvelope(brief); err != nil {
		t.Close()
		return &internal_type.ConnectError{Endpoint: t.config.URL, Err: err}
	}

	utils.Go(ctx, t.readerLoop)

	t.logger.Benchmark("AgentLink.Open", time.Since(start))
	return nil
}

// Send delivers one outbound audio frame. Failures are reported as a
// *SendError; the caller drops the frame and moves on.
func (t *agentLink) Send(frame []byte) error {
	err := t.writeEnvelope(ALRequest{
		Type:      ALTypeAudio,
		Timestamp: time.Now().UnixMilli(),
		Data:      ALAudioData{Audio: frame},
	})
	if err != nil {
		return &internal_type.SendError{Err: err}
	}
	return nil
}

// Recv returns the next inbound message in arrival order, draining anything
// already queued before reporting io.EOF after shutdown.
func (t *agentLink) Recv() (internal_type.Stream, error) {
	select {
	case msg := <-t.inbound:
		return msg, nil
	default:
	}

	select {
	case msg := <-t.inbound:
		return msg, nil
	case <-t.done:
		select {
		case msg := <-t.inbound:
			return msg, nil
		default:
			return nil, io.EOF
		}
	}
}

// Close performs the websocket close handshake and releases the connection.
// Idempotent; safe to call concurrently with Send and Recv.
func (t *agentLink) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	conn := t.connection
	t.connection = nil
	t.mu.Unlock()

	if conn != nil {
		t.writeMu.Lock()
		err := conn.WriteMessage(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		)
		t.writeMu.Unlock()
		if err != nil {
			t.logger.Debugw("failed to send close message", "error", err)
		}
		if err := conn.Close(); err != nil {
			t.logger.Debugw("failed to close websocket connection", "error", err)
		}
	}

	t.markDone()
	return nil
}

// =============================================================================
// Internals
// =============================================================================

// writeEnvelope marshals and writes one envelope under the write lock.
func (t *agentLink) writeEnvelope(msg ALRequest) error {
	t.mu.Lock()
	conn := t.connection
	closed := t.closed
	t.mu.Unlock()

	if closed || conn == nil {
		return fmt.Errorf("transport is not open")
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal envelope: %w", err)
	}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("failed to write envelope: %w", err)
	}
	return nil
}

// readerLoop pumps inbound envelopes until the connection drops or a terminal
// envelope arrives. The terminal message (Closed or Fault) is always queued
// before Recv starts reporting io.EOF.
func (t *agentLink) readerLoop() {
	for {
		t.mu.Lock()
		conn := t.connection
		t.mu.Unlock()
		if conn == nil {
			t.markDone()
			return
		}

		_, payload, err := conn.ReadMessage()
		if err != nil {
			if t.isClosed() {
				// Local Close interrupted the read; nothing to report.
				t.markDone()
				return
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				t.push(internal_type.Closed{Reason: "connection closed"})
			} else {
				t.push(internal_type.Fault{Description: err.Error()})
			}
			t.markDone()
			return
		}

		var envelope ALResponse
		if err := json.Unmarshal(payload, &envelope); err != nil {
			t.logger.Warnw("failed to unmarshal inbound envelope, dropping", "error", err)
			continue
		}

		if terminal := t.dispatch(envelope); terminal {
			t.markDone()
			return
		}
	}
}

// dispatch converts one envelope into a session message. Returns true when
// the envelope ends the stream.
func (t *agentLink) dispatch(envelope ALResponse) bool {
	switch envelope.Type {
	case ALTypeAudio:
		var data ALAudioData
		if err := json.Unmarshal(envelope.Data, &data); err != nil {
			t.logger.Warnw("failed to parse audio data, dropping", "error", err)
			return false
		}
		t.push(internal_type.AudioChunk{
			Audio: data.Audio,
			Time:  time.UnixMilli(data.Timestamp),
		})

	case ALTypeTranscriptDelta:
		var data ALTranscriptDeltaData
		if err := json.Unmarshal(envelope.Data, &data); err != nil {
			t.logger.Warnw("failed to parse transcript delta, dropping", "error", err)
			return false
		}
		t.push(internal_type.TranscriptDelta{
			Speaker: internal_type.Speaker(data.Speaker),
			Text:    data.Text,
		})

	case ALTypeTurnComplete:
		t.push(internal_type.TurnComplete{})

	case ALTypeInterruption:
		t.push(internal_type.Interrupted{})

	case ALTypeSessionClosed:
		var data ALSessionClosedData
		if err := json.Unmarshal(envelope.Data, &data); err != nil {
			data.Reason = "remote close"
		}
		t.push(internal_type.Closed{Reason: data.Reason})
		return true

	case ALTypeError:
		var data ALErrorData
		if err := json.Unmarshal(envelope.Data, &data); err != nil {
			data.Message = "unparseable error envelope"
		}
		t.push(internal_type.Fault{Description: data.Message})
		return true

	case ALTypePing:
		if err := t.writeEnvelope(ALRequest{
			Type:      ALTypePong,
			Timestamp: time.Now().UnixMilli(),
		}); err != nil {
			t.logger.Debugw("failed to answer ping", "error", err)
		}

	case ALTypePong:
		t.logger.Debugf("Received pong envelope")

	default:
		t.logger.Warnw("unknown inbound envelope type, dropping", "type", envelope.Type)
	}
	return false
}

// push queues one message for Recv. The queue is bounded; when the consumer
// falls behind, audio is droppable but terminal and transcript messages are
// not, so those evict the oldest queued message instead.
func (t *agentLink) push(msg internal_type.Stream) {
	select {
	case t.inbound <- msg:
		return
	default:
	}

	if _, droppable := msg.(internal_type.AudioChunk); droppable {
		t.logger.Warnw("inbound buffer full, dropping audio chunk")
		return
	}

	// Make room: audio at the head of the queue is the least valuable.
	select {
	case <-t.inbound:
	default:
	}
	select {
	case t.inbound <- msg:
	default:
		t.logger.Warnw("inbound buffer full, dropping message")
	}
}

func (t *agentLink) isClosed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

func (t *agentLink) markDone() {
	t.doneOnce.Do(func() { close(t.done) })
}
