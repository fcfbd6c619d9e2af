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
	"os"
	"sync"
	"testing"
)

// =============================================================================
// GetPersonality / SetPersonality Tests
// =============================================================================

func TestSetPersonality_AndGet(t *testing.T) {
	// Save original personality
	orig := GetPersonality()
	defer SetPersonality(orig)

	custom := Personality{
		Level: PersonalityMinimal,
		Theme: "custom",
	}
	SetPersonality(custom)

	retrieved := GetPersonality()
	if retrieved.Level != PersonalityMinimal {
		t.Errorf("expected level %v, got %v", PersonalityMinimal, retrieved.Level)
	}
	if retrieved.Theme != "custom" {
		t.Errorf("expected theme 'custom', got %q", retrieved.Theme)
	}
}

// =============================================================================
// SetPersonalityLevel Tests
// =============================================================================

func TestSetPersonalityLevel(t *testing.T) {
	orig := GetPersonality()
	defer SetPersonality(orig)

	levels := []PersonalityLevel{
		PersonalityFull,
		PersonalityStandard,
		PersonalityMinimal,
		PersonalityMachine,
	}
	for _, level := range levels {
		t.Run(string(level), func(t *testing.T) {
			SetPersonalityLevel(level)
			if got := GetPersonality().Level; got != level {
				t.Errorf("Level = %v, want %v", got, level)
			}
		})
	}
}

// =============================================================================
// ParsePersonalityLevel Tests
// =============================================================================

func TestParsePersonalityLevel(t *testing.T) {
	tests := []struct {
		in   string
		want PersonalityLevel
	}{
		{"full", PersonalityFull},
		{"f", PersonalityFull},
		{"FULL", PersonalityFull},
		{"standard", PersonalityStandard},
		{"std", PersonalityStandard},
		{"s", PersonalityStandard},
		{"minimal", PersonalityMinimal},
		{"min", PersonalityMinimal},
		{"m", PersonalityMinimal},
		{"machine", PersonalityMachine},
		{"quiet", PersonalityMachine},
		{"q", PersonalityMachine},
		{"nonsense", PersonalityStandard},
		{"", PersonalityStandard},
	}

	for _, tt := range tests {
		name := tt.in
		if name == "" {
			name = "empty"
		}
		t.Run(name, func(t *testing.T) {
			got := ParsePersonalityLevel(tt.in)
			if got != tt.want {
				t.Errorf("ParsePersonalityLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

// =============================================================================
// InitPersonality Tests
// =============================================================================

func TestInitPersonality_WithEnvVar(t *testing.T) {
	orig := GetPersonality()
	defer SetPersonality(orig)

	t.Setenv("AIRSIDE_PERSONALITY", "minimal")
	InitPersonality()

	if got := GetPersonality().Level; got != PersonalityMinimal {
		t.Errorf("Level = %v, want PersonalityMinimal", got)
	}
}

func TestInitPersonality_WithEnvVar_Machine(t *testing.T) {
	orig := GetPersonality()
	defer SetPersonality(orig)

	t.Setenv("AIRSIDE_PERSONALITY", "machine")
	InitPersonality()

	if got := GetPersonality().Level; got != PersonalityMachine {
		t.Errorf("Level = %v, want PersonalityMachine", got)
	}
}

func TestInitPersonality_NoEnvVar(t *testing.T) {
	orig := GetPersonality()
	defer SetPersonality(orig)

	t.Setenv("AIRSIDE_PERSONALITY", "")
	os.Unsetenv("AIRSIDE_PERSONALITY")
	InitPersonality()

	// Under `go test` stdout is typically not a terminal, so the level
	// lands on machine; otherwise standard.
	got := GetPersonality().Level
	if got != PersonalityMachine && got != PersonalityStandard {
		t.Errorf("Level = %v, want machine or standard", got)
	}
}

// =============================================================================
// Terminal / Capability Tests
// =============================================================================

func TestIsTerminal(t *testing.T) {
	// Just verify it doesn't panic; the result depends on the environment.
	_ = isTerminal()
}

func TestIsInteractive_MachineMode(t *testing.T) {
	orig := GetPersonality()
	defer SetPersonality(orig)

	SetPersonalityLevel(PersonalityMachine)
	if IsInteractive() {
		t.Error("IsInteractive() = true in machine mode, want false")
	}
}

func TestShouldShowProgress(t *testing.T) {
	orig := GetPersonality()
	defer SetPersonality(orig)

	tests := []struct {
		level PersonalityLevel
		want  bool
	}{
		{PersonalityFull, true},
		{PersonalityStandard, true},
		{PersonalityMinimal, true},
		{PersonalityMachine, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.level), func(t *testing.T) {
			SetPersonalityLevel(tt.level)
			if got := ShouldShowProgress(); got != tt.want {
				t.Errorf("ShouldShowProgress() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestShouldShowColors(t *testing.T) {
	orig := GetPersonality()
	defer SetPersonality(orig)

	SetPersonalityLevel(PersonalityMachine)
	if ShouldShowColors() {
		t.Error("ShouldShowColors() = true in machine mode, want false")
	}

	SetPersonalityLevel(PersonalityFull)
	if !ShouldShowColors() {
		t.Error("ShouldShowColors() = false in full mode, want true")
	}
}

// =============================================================================
// Defaults and Constants
// =============================================================================

func TestDefaultPersonality(t *testing.T) {
	p := DefaultPersonality()
	if p.Level != PersonalityStandard {
		t.Errorf("default Level = %v, want PersonalityStandard", p.Level)
	}
	if p.Theme != "default" {
		t.Errorf("default Theme = %v, want default", p.Theme)
	}
}

func TestPersonalityLevel_Values(t *testing.T) {
	if PersonalityFull != "full" {
		t.Errorf("PersonalityFull = %v, want full", PersonalityFull)
	}
	if PersonalityStandard != "standard" {
		t.Errorf("PersonalityStandard = %v, want standard", PersonalityStandard)
	}
	if PersonalityMinimal != "minimal" {
		t.Errorf("PersonalityMinimal = %v, want minimal", PersonalityMinimal)
	}
	if PersonalityMachine != "machine" {
		t.Errorf("PersonalityMachine = %v, want machine", PersonalityMachine)
	}
}

func TestPersonality_ConcurrentAccess(t *testing.T) {
	orig := GetPersonality()
	defer SetPersonality(orig)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			if n%2 == 0 {
				SetPersonalityLevel(PersonalityMinimal)
			} else {
				_ = GetPersonality()
			}
		}(i)
	}
	wg.Wait()
}
