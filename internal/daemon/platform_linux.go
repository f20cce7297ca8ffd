//go:build linux

package daemon

import (
	"github.com/1broseidon/dragsense/internal/keyboard"
	"github.com/1broseidon/dragsense/internal/platform"
	"github.com/1broseidon/dragsense/internal/pointer"
	"github.com/1broseidon/dragsense/internal/screen"
)

func newPlatformBackend() (platform.Backend, error) {
	return platform.NewX11Backend()
}

func newPlatformSource(monitors func() []screen.Monitor) pointer.Source {
	return pointer.NewX11Source(monitors)
}

func newPlatformKeySource() keyboard.Source {
	return keyboard.NewX11Source()
}
