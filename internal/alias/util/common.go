package util

import (
	"io"
	"log/slog"
)

// CloseFunc closes c and logs a failure; meant for defer on read paths
// where a close error changes nothing.
func CloseFunc(c io.Closer, name string) {
	if err := c.Close(); err != nil {
		slog.Warn("close failed", "name", name, "err", err)
	}
}
