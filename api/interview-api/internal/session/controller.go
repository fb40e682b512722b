// Copyright (c) 2024-2026 PathwiseAI
// Author: Prashant Srivastav <prashant@pathwise.ai>
//
// Licensed under GPL-2.0 with Pathwise Additional Terms.
// See LICENSE.md or contact sales@pathwise.ai for commercial usage.

package internal_session

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	internal_audio "github.com/pathwiseai/api/interview-api/internal/audio"
	internal_capture "github.com/pathwiseai/api/interview-api/internal/capture"
	internal_playback "github.com/pathwiseai/api/interview-api/internal/playback"
	internal_transcript "github.com/pathwiseai/api/interview-api/internal/transcript"
	internal_type "github.com/pathwiseai/api/interview-api/internal/type"
	"github.com/pathwiseai/pkg/commons"
	"github.com/pathwiseai/pkg/utils"
)

// Phase is the session lifecycle state.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseConnecting Phase = "connecting"
	PhaseActive     Phase = "active"
	PhaseClosing    Phase = "closing"
	PhaseClosed     Phase = "closed"
	PhaseError      Phase = "error"
)

// ErrStartAborted is returned by Start when a Stop landed during the connect
// window and prevented the session from going active.
var ErrStartAborted = errors.New("session start aborted by stop")

// Factories let the controller own the lifetime of its collaborators while
// callers decide the concrete implementations (real devices in production,
// fakes in tests).
type (
	TransportFactory func(ictx internal_type.InterviewContext) internal_type.Transport
	DeviceFactory    func() internal_type.InputDevice
	SinkFactory      func() (internal_type.PlaybackSink, error)
)

// Options carries the audio formats and collaborator factories for a
// controller.
type Options struct {
	CaptureConfig *internal_audio.Config
	WireConfig    *internal_audio.Config
	FrameSize     int

	NewTransport TransportFactory
	NewDevice    DeviceFactory
	NewSink      SinkFactory
}

// session bundles the per-session collaborators so a stale receive loop can
// never touch the resources of a newer session.
type session struct {
	id         string
	transport  internal_type.Transport
	pipeline   *internal_capture.Pipeline
	scheduler  *internal_playback.Scheduler
	aggregator *internal_transcript.Aggregator
	closed     bool
}

// Controller drives one voice interview session at a time through
// idle → connecting → active → closing → closed/error. Starting while a
// session is live tears the old one down first; Stop from any phase is safe.
//
// Teardown is strictly ordered: capture stops first so no frame hits a dying
// transport, then the transport closes, then playback flushes, then the
// transcript buffers reset.
type Controller struct {
	logger commons.Logger
	opts   Options

	// startMu serializes Start end to end, connect window included, so two
	// overlapping starts can never both build a session.
	startMu sync.Mutex

	mu             sync.Mutex
	phase          Phase
	current        *session
	lastErr        error
	lastTranscript []internal_type.TranscriptEntry
	startAborted   bool
	startCancel    context.CancelFunc
}

// NewController builds an idle controller.
func NewController(logger commons.Logger, opts Options) *Controller {
	if opts.FrameSize <= 0 {
		opts.FrameSize = internal_capture.DefaultFrameSize
	}
	return &Controller{
		logger: logger,
		opts:   opts,
		phase:  PhaseIdle,
	}
}

// Start validates the interview context, connects the transport and the
// output device concurrently, acquires the microphone and goes active. It
// returns the new session's identifier.
//
// A *PreconditionError means the caller must supply the missing input; no
// resources were touched. A Stop issued while connecting aborts the start:
// everything built so far is released and ErrStartAborted comes back. Any
// other failure settles the controller in the error phase with everything
// released.
func (c *Controller) Start(ctx context.Context, ictx internal_type.InterviewContext) (string, error) {
	if utils.IsEmpty(ictx.Role) {
		return "", &internal_type.PreconditionError{Missing: "role"}
	}
	if utils.IsEmpty(ictx.AnalysisSummary) {
		return "", &internal_type.PreconditionError{Missing: "analysis_summary"}
	}

	c.startMu.Lock()
	defer c.startMu.Unlock()

	// Re-entrant start replaces the live session.
	c.mu.Lock()
	old := c.current
	c.mu.Unlock()
	if old != nil {
		c.logger.Infow("replacing live session", "session_id", old.id)
		c.teardown(old, PhaseIdle, nil)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	c.mu.Lock()
	c.phase = PhaseConnecting
	c.startAborted = false
	c.startCancel = cancel
	c.mu.Unlock()

	transport := c.opts.NewTransport(ictx)
	var sink internal_type.PlaybackSink

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return transport.Open(gctx)
	})
	g.Go(func() error {
		s, err := c.opts.NewSink()
		if err != nil {
			return &internal_type.DeviceError{Op: "open output", Err: err}
		}
		sink = s
		return nil
	})
	if err := g.Wait(); err != nil {
		if closeErr := transport.Close(); closeErr != nil {
			c.logger.Warnw("failed to close transport after aborted start", "error", closeErr)
		}
		if sink != nil {
			if closeErr := sink.Close(); closeErr != nil {
				c.logger.Warnw("failed to close sink after aborted start", "error", closeErr)
			}
		}
		if c.abortRequested() {
			c.settle(PhaseClosed, nil)
			c.logger.Infow("session start aborted by stop")
			return "", ErrStartAborted
		}
		c.recordFailure(err)
		return "", err
	}

	scheduler := internal_playback.NewScheduler(c.logger, sink, c.opts.WireConfig)
	pipeline := internal_capture.NewPipeline(
		c.logger,
		c.opts.NewDevice(),
		transport,
		c.opts.CaptureConfig,
		c.opts.WireConfig,
		c.opts.FrameSize,
	)

	if err := pipeline.Start(); err != nil {
		if closeErr := transport.Close(); closeErr != nil {
			c.logger.Warnw("failed to close transport after aborted start", "error", closeErr)
		}
		scheduler.Close()
		c.recordFailure(err)
		return "", err
	}

	sess := &session{
		id:         uuid.NewString(),
		transport:  transport,
		pipeline:   pipeline,
		scheduler:  scheduler,
		aggregator: internal_transcript.NewAggregator(c.logger),
	}

	c.mu.Lock()
	if c.startAborted {
		c.mu.Unlock()
		pipeline.Stop()
		if closeErr := transport.Close(); closeErr != nil {
			c.logger.Warnw("failed to close transport after aborted start", "error", closeErr)
		}
		scheduler.Close()
		c.settle(PhaseClosed, nil)
		c.logger.Infow("session start aborted by stop")
		return "", ErrStartAborted
	}
	c.current = sess
	c.phase = PhaseActive
	c.lastErr = nil
	c.startCancel = nil
	c.mu.Unlock()

	sess.scheduler.Reset()
	utils.Go(context.Background(), func() { c.runLoop(sess) })

	c.logger.Infow("session active",
		"session_id", sess.id,
		"role", ictx.Role,
	)
	return sess.id, nil
}

// runLoop consumes the transport until it signals closure or fails. Runs once
// per session on its own goroutine.
func (c *Controller) runLoop(s *session) {
	for {
		msg, err := s.transport.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				c.teardown(s, PhaseClosed, nil)
			} else {
				c.teardown(s, PhaseError, err)
			}
			return
		}

		switch m := msg.(type) {
		case internal_type.AudioChunk:
			if err := s.scheduler.Enqueue(m.Audio); err != nil {
				var formatErr *internal_type.FormatError
				if errors.As(err, &formatErr) {
					// Malformed chunk: discard, keep going.
					c.logger.Debugw("discarding malformed audio chunk",
						"session_id", s.id,
						"error", err,
					)
					continue
				}
				c.teardown(s, PhaseError, err)
				return
			}

		case internal_type.TranscriptDelta:
			s.aggregator.Delta(m.Speaker, m.Text)

		case internal_type.TurnComplete:
			entries := s.aggregator.CompleteTurn()
			if len(entries) > 0 {
				c.logger.Debugw("turn finalized",
					"session_id", s.id,
					"entries", len(entries),
				)
			}

		case internal_type.Interrupted:
			s.scheduler.Flush()

		case internal_type.Closed:
			c.logger.Infow("session closed by remote",
				"session_id", s.id,
				"reason", m.Reason,
			)
			c.teardown(s, PhaseClosed, nil)
			return

		case internal_type.Fault:
			c.teardown(s, PhaseError, &internal_type.TransportError{Description: m.Description})
			return

		default:
			c.logger.Warnw("unhandled transport message", "session_id", s.id)
		}
	}
}

// Stop ends the live session if there is one. A stop that lands while a start
// is still connecting aborts that start instead, so the session never goes
// active. Safe from any phase, any number of times.
func (c *Controller) Stop() {
	c.mu.Lock()
	sess := c.current
	if sess == nil {
		if c.phase == PhaseConnecting {
			c.startAborted = true
			if c.startCancel != nil {
				c.startCancel()
			}
		}
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()
	c.teardown(sess, PhaseClosed, nil)
}

// teardown releases one session's resources exactly once, in order, and
// settles the controller into final. No-op for a session that is no longer
// current or already torn down.
func (c *Controller) teardown(s *session, final Phase, cause error) {
	c.mu.Lock()
	if c.current != s || s.closed {
		c.mu.Unlock()
		return
	}
	s.closed = true
	c.phase = PhaseClosing
	c.mu.Unlock()

	s.pipeline.Stop()
	if err := s.transport.Close(); err != nil {
		c.logger.Warnw("failed to close transport", "session_id", s.id, "error", err)
	}
	s.scheduler.Close()

	transcript := s.aggregator.Entries()
	s.aggregator.Reset()

	c.mu.Lock()
	c.current = nil
	c.phase = final
	c.lastErr = cause
	c.lastTranscript = transcript
	c.mu.Unlock()

	if cause != nil {
		c.logger.Errorw("session ended with error", "session_id", s.id, "error", cause)
	} else {
		c.logger.Infow("session ended", "session_id", s.id)
	}
}

// recordFailure settles a failed start in the error phase with the cause
// observable.
func (c *Controller) recordFailure(err error) {
	c.settle(PhaseError, err)
	c.logger.Errorw("session start failed", "error", err)
}

// settle parks the controller in a terminal phase after a start that never
// produced a live session.
func (c *Controller) settle(final Phase, cause error) {
	c.mu.Lock()
	c.phase = final
	c.lastErr = cause
	c.startCancel = nil
	c.mu.Unlock()
}

func (c *Controller) abortRequested() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.startAborted
}

// =============================================================================
// Observers
// =============================================================================

// Phase returns the current lifecycle phase.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// SessionID returns the live session's identifier, or "" when none is live.
func (c *Controller) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return ""
	}
	return c.current.id
}

// LastError returns the error that ended or aborted the most recent session,
// nil after a clean close.
func (c *Controller) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Loudness returns the microphone level in [0, 100]; 0 when no session is
// live.
func (c *Controller) Loudness() int {
	c.mu.Lock()
	sess := c.current
	c.mu.Unlock()
	if sess == nil {
		return 0
	}
	return sess.pipeline.Level()
}

// Muted reports whether capture transmission is muted.
func (c *Controller) Muted() bool {
	c.mu.Lock()
	sess := c.current
	c.mu.Unlock()
	if sess == nil {
		return false
	}
	return sess.pipeline.Muted()
}

// ToggleMute flips the mute flag and returns the new state. Fails when no
// session is live.
func (c *Controller) ToggleMute() (bool, error) {
	c.mu.Lock()
	sess := c.current
	c.mu.Unlock()
	if sess == nil {
		return false, &internal_type.PreconditionError{Missing: "active session"}
	}
	muted := !sess.pipeline.Muted()
	sess.pipeline.SetMuted(muted)
	return muted, nil
}

// Interim returns the in-progress transcript text for one speaker.
func (c *Controller) Interim(speaker internal_type.Speaker) string {
	c.mu.Lock()
	sess := c.current
	c.mu.Unlock()
	if sess == nil {
		return ""
	}
	return sess.aggregator.Interim(speaker)
}

// Transcript returns the finalized transcript of the live session, or the
// final transcript of the most recently ended one.
func (c *Controller) Transcript() []internal_type.TranscriptEntry {
	c.mu.Lock()
	sess := c.current
	if sess == nil {
		out := make([]internal_type.TranscriptEntry, len(c.lastTranscript))
		copy(out, c.lastTranscript)
		c.mu.Unlock()
		return out
	}
	c.mu.Unlock()
	return sess.aggregator.Entries()
}
