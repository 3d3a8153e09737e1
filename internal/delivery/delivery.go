// Package delivery defines the contract every transport entry point
// (HTTP today, websocket gateway later) has to satisfy.
package delivery

import "context"

// Delivery is a long-running transport that serves requests until the
// context or the process stops it.
type Delivery interface {
	Serve(ctx context.Context) error
}
