//go:build linux

package winloop

import (
	"log/slog"

	"winloop/internal/driver"
	"winloop/internal/x11"
)

func newPlatformDriver(logger *slog.Logger) (driver.Loop, error) {
	return x11.NewLoop(logger)
}
