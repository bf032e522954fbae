// Package util provides common utility functions and constants used across the
// pitunnel-manager application. This package is intentionally kept dependency-free
// (no imports from other internal/* packages) to serve as a shared foundation
// without introducing circular dependencies.
package util

import "time"

const (
	// DefaultRefreshSeconds is the fallback interval (in seconds) for the TUI
	// menu's periodic process re-discovery. This value is used when:
	//   - The user's config.yaml has an invalid or missing refresh_seconds value.
	//   - The application config has not been loaded yet.
	//
	// A 5-second interval keeps the running-tunnel list close to live without
	// spawning a ps/status subprocess several times a second.
	// Used by: internal/ui/ui.go (tickCmd, clampRefresh) and
	//          internal/appconfig/config.go (Default, Load).
	DefaultRefreshSeconds = 5

	// DefaultReloadSettle is the pause between removing every persistent
	// definition and relaunching the first one during a reload-all pass.
	// The external binary deletes definitions and stops their processes
	// asynchronously; relaunching immediately tends to race the old process
	// for the listening port. Two seconds matches the interval the binary's
	// own restart path waits.
	// Used by: internal/appconfig/config.go (Default) and internal/tunnel
	// (Manager settle delay).
	DefaultReloadSettle = 2 * time.Second

	// DefaultLaunchPace is the delay inserted between consecutive detached
	// launches during reload-all, so simultaneous tunnel start-ups do not
	// contend for the external service's registration endpoint.
	// Used by: internal/appconfig/config.go (Default) and internal/tunnel
	// (Manager pace delay).
	DefaultLaunchPace = 500 * time.Millisecond

	// StatusPause is how long user-visible operation results remain on
	// screen before the menu redraws over them in non-TUI contexts.
	StatusPause = 2 * time.Second
)
