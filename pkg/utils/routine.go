package utils

import (
	"context"
	"log"
	"runtime/debug"
)

// Go runs fn on a new goroutine with panic recovery. A panicking background
// loop must never take the whole process down with it; the panic is logged
// with its stack and the goroutine exits.
func Go(ctx context.Context, fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("recovered panic in goroutine: %v\n%s", r, debug.Stack())
			}
		}()
		if ctx != nil && ctx.Err() != nil {
			return
		}
		fn()
	}()
}
