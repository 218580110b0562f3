//go:build windows

package winloop

import (
	"log/slog"

	"winloop/internal/driver"
	"winloop/internal/win32"
)

func newPlatformDriver(logger *slog.Logger) (driver.Loop, error) {
	return win32.NewLoop(logger)
}
