// Copyright (c) 2024-2026 PathwiseAI
// Author: Prashant Srivastav <prashant@pathwise.ai>
//
// Licensed under GPL-2.0 with Pathwise Additional Terms.
// See LICENSE.md or contact sales@pathwise.ai for commercial usage.

package internal_type

import "fmt"

// PreconditionError indicates the caller started a session without the
// required interview context. Recoverable: supply the input and retry.
type PreconditionError struct {
	Missing string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("missing required precondition: %s", e.Missing)
}

// DeviceError indicates the microphone or speaker could not be acquired or
// failed mid-session. Fatal to the session; never retried automatically.
type DeviceError struct {
	Op  string
	Err error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("audio device failure during %s: %v", e.Op, e.Err)
}

func (e *DeviceError) Unwrap() error { return e.Err }

// ConnectError indicates the transport handshake with the remote agent
// endpoint failed. Aborts the whole session.
type ConnectError struct {
	Endpoint string
	Err      error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("failed to connect to %s: %v", e.Endpoint, e.Err)
}

func (e *ConnectError) Unwrap() error { return e.Err }

// SendError indicates a single outbound frame could not be delivered.
// Non-fatal: audio is lossy-tolerant and the frame is simply dropped.
type SendError struct {
	Err error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("failed to send frame: %v", e.Err)
}

func (e *SendError) Unwrap() error { return e.Err }

// TransportError carries an error signaled by the remote endpoint itself.
// Aborts the whole session.
type TransportError struct {
	Description string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error: %s", e.Description)
}

// FormatError indicates a malformed audio payload. The offending chunk is
// discarded and the session continues.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("malformed audio payload: %s", e.Reason)
}
