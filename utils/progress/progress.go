// Copyright 2025 The MetaGeo Authors
// SPDX-License-Identifier: Apache-2.0

// Package progress shows a progress bar on stderr when it is a terminal.
package progress

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
)

// Bar is a progress bar that does nothing when stderr is not a terminal.
// The zero value and a nil *Bar are both usable.
type Bar struct {
	bar *progressbar.ProgressBar
}

// New returns a bar for total steps; total -1 shows a spinner with a count.
func New(total int64, description string) *Bar {
	if !isatty.IsTerminal(os.Stderr.Fd()) {
		return &Bar{}
	}

	return &Bar{
		bar: progressbar.NewOptions64(
			total,
			progressbar.OptionSetDescription(description),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		),
	}
}

// Add advances the bar by n steps.
func (b *Bar) Add(n int) {
	if b == nil || b.bar == nil {
		return
	}

	_ = b.bar.Add(n)
}

// Finish completes and clears the bar.
func (b *Bar) Finish() {
	if b == nil || b.bar == nil {
		return
	}

	_ = b.bar.Finish()
}
