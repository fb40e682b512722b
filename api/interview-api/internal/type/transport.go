// Copyright (c) 2024-2026 PathwiseAI
// Author: Prashant Srivastav <prashant@pathwise.ai>
//
// Licensed under GPL-2.0 with Pathwise Additional Terms.
// See LICENSE.md or contact sales@pathwise.ai for commercial usage.

package internal_type

import "context"

// Transport is the opaque bidirectional channel to the remote interview
// agent. It accepts outbound media frames and delivers inbound messages
// (audio chunks, transcript deltas, turn boundaries, interruption and
// close/error signals) through Recv in arrival order.
type Transport interface {
	// Open establishes the connection. Blocks until the handshake completes
	// or fails with a *ConnectError. Must be called exactly once.
	Open(ctx context.Context) error

	// Send delivers one encoded outbound audio frame. A *SendError is
	// non-fatal: the frame is dropped and the session continues. Safe for
	// concurrent use with Recv.
	Send(frame []byte) error

	// Recv returns the next inbound message, or io.EOF once the transport
	// is closed. A Closed or Fault message is always delivered before EOF.
	Recv() (Stream, error)

	// Close shuts the connection down. Idempotent; outstanding sends are
	// abandoned, not awaited.
	Close() error
}
