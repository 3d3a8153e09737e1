// Package lifecycle holds shared process lifecycle constants.
package lifecycle

import "time"

// DefaultTimeout bounds graceful shutdown of long-lived resources such as the
// HTTP server and the mongo client.
const DefaultTimeout = 10 * time.Second
