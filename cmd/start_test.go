package cmd

import (
	"errors"
	"testing"

	"github.com/xvierd/fuzzle/internal/domain"
)

func TestStartCmd(t *testing.T) {
	t.Run("start command structure", func(t *testing.T) {
		if startCmd.Use != "start [minutes]" {
			t.Errorf("startCmd.Use = %q, want %q", startCmd.Use, "start [minutes]")
		}
		if startCmd.Short != "Start a study session" {
			t.Errorf("startCmd.Short = %q, want %q", startCmd.Short, "Start a study session")
		}
	})

	t.Run("start rejects extra args", func(t *testing.T) {
		if err := startCmd.Args(startCmd, []string{"25", "30"}); err == nil {
			t.Error("expected an error for two arguments")
		}
	})
}

func TestParseMinutesArg(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    int
		wantErr bool
	}{
		{"default", nil, 60, false},
		{"explicit", []string{"25"}, 25, false},
		{"max", []string{"120"}, 120, false},
		{"off step", []string{"27"}, 0, true},
		{"too short", []string{"0"}, 0, true},
		{"too long", []string{"125"}, 0, true},
		{"not a number", []string{"soon"}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseMinutesArg(tt.args, 60)
			if tt.wantErr {
				if !errors.Is(err, domain.ErrInvalidDuration) {
					t.Errorf("parseMinutesArg(%v) err = %v, want ErrInvalidDuration", tt.args, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseMinutesArg(%v) unexpected error: %v", tt.args, err)
			}
			if got != tt.want {
				t.Errorf("parseMinutesArg(%v) = %d, want %d", tt.args, got, tt.want)
			}
		})
	}
}
