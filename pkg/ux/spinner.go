// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ux

import (
	"fmt"
	"sync"
	"time"
)

// SpinnerStyle selects the animation frames
type SpinnerStyle int

const (
	SpinnerDots SpinnerStyle = iota
	SpinnerFan
)

var spinnerFrames = map[SpinnerStyle][]string{
	SpinnerDots: {"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
	SpinnerFan:  {"◴", "◷", "◶", "◵"},
}

// Spinner animates a long-running step on a single terminal line, used
// while a dataset loads or the rule engine runs. In machine mode it
// degrades to one PROGRESS line so parsers never see ANSI redraws.
type Spinner struct {
	mu      sync.Mutex
	message string
	style   SpinnerStyle
	running bool
	stop    chan struct{}
	done    chan struct{}
}

// NewSpinner returns a dots spinner with the given message.
func NewSpinner(message string) *Spinner {
	return &Spinner{
		message: message,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// WithStyle selects the animation frames, returning the spinner for chaining.
func (s *Spinner) WithStyle(style SpinnerStyle) *Spinner {
	s.style = style
	return s
}

// Start launches the render loop. A second Start is a no-op.
func (s *Spinner) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	if GetPersonality().Level == PersonalityMachine {
		fmt.Printf("PROGRESS: %s\n", s.message)
		return
	}

	go s.render()
}

func (s *Spinner) render() {
	frames := spinnerFrames[s.style]
	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()

	frame := 0
	for {
		select {
		case <-s.stop:
			// Clear the animation line before the next print lands
			fmt.Print("\r\033[K")
			close(s.done)
			return
		case <-ticker.C:
			s.mu.Lock()
			msg := s.message
			s.mu.Unlock()
			fmt.Printf("\r%s %s", Styles.Highlight.Render(frames[frame]), msg)
			frame = (frame + 1) % len(frames)
		}
	}
}

// UpdateMessage swaps the text without restarting the animation, so one
// spinner can narrate consecutive steps.
func (s *Spinner) UpdateMessage(message string) {
	s.mu.Lock()
	s.message = message
	s.mu.Unlock()
}

// Stop clears the animation line. Safe to call when Start never ran.
func (s *Spinner) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	if GetPersonality().Level == PersonalityMachine {
		return
	}

	close(s.stop)
	<-s.done
}

// StopWithSuccess stops the spinner and prints a success marker.
func (s *Spinner) StopWithSuccess(message string) {
	s.Stop()
	Success(message)
}

// StopWithError stops the spinner and prints an error marker.
func (s *Spinner) StopWithError(message string) {
	s.Stop()
	Error(message)
}

// WithSpinner animates message while fn runs and reports its outcome.
func WithSpinner(message string, fn func() error) error {
	spin := NewSpinner(message)
	spin.Start()

	if err := fn(); err != nil {
		spin.StopWithError(fmt.Sprintf("%s: %v", message, err))
		return err
	}

	spin.StopWithSuccess(message)
	return nil
}
