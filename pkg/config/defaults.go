package config

import "time"

// Input defaults.
const (
	DefaultInputScale = 100.0
)

// Chart defaults.
const (
	DefaultShowLogo               = true
	DefaultLogoSize               = 300
	DefaultNumberOfThresholdLines = 2
)

// Logging defaults.
const (
	DefaultLogLevel = "info"
)

// Server defaults.
const (
	DefaultServerHost         = "0.0.0.0"
	DefaultServerPort         = 8080
	DefaultServerReadTimeout  = 30 * time.Second
	DefaultServerWriteTimeout = 30 * time.Second
	DefaultServerIdleTimeout  = 60 * time.Second
)

// DefaultThresholdLines returns the reference lines drawn when none are
// configured.
func DefaultThresholdLines() []ThresholdLine {
	return []ThresholdLine{
		{Value: 25, Color: "red"},
		{Value: 50, Color: "#cccc00"},
	}
}
