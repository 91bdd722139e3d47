package util

import (
	"io"
	"log/slog"
)

// CloseFunc closes c from a defer, logging instead of returning the error.
func CloseFunc(c io.Closer, what string) {
	if err := c.Close(); err != nil {
		slog.Warn("close failed", "what", what, "err", err)
	}
}
