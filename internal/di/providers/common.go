// Package providers contains dependency injection providers for the Notable server.
package providers

import "time"

// shutdownTimeout bounds graceful shutdown of long-lived components.
const shutdownTimeout = 30 * time.Second
