package main

import (
	"os"

	"github.com/fatih/color"
)

// styles holds color formatters for command output
type styles struct {
	name    *color.Color
	address *color.Color
	failure *color.Color
	muted   *color.Color
}

// newStyles creates color formatters; enabled=false respects --no-color
// and the NO_COLOR environment variable.
func newStyles(enabled bool) *styles {
	s := &styles{
		name:    color.New(color.Bold, color.FgHiBlue),
		address: color.New(color.FgHiGreen),
		failure: color.New(color.FgRed),
		muted:   color.New(color.FgHiBlack),
	}

	if !enabled || os.Getenv("NO_COLOR") != "" {
		s.name.DisableColor()
		s.address.DisableColor()
		s.failure.DisableColor()
		s.muted.DisableColor()
	}

	return s
}
