package auction

import (
	"errors"
	"testing"
	"time"
)

func TestEndTime(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		code string
		want time.Duration
	}{
		{"2h", 2 * time.Hour},
		{"1d", 24 * time.Hour},
		{"1.5d", 36 * time.Hour},
	}

	for _, tt := range tests {
		end, err := EndTime(tt.code, now)
		if err != nil {
			t.Errorf("EndTime(%q): %v", tt.code, err)
			continue
		}
		if got := end.Sub(now); got != tt.want {
			t.Errorf("EndTime(%q) = now+%v, want now+%v", tt.code, got, tt.want)
		}
	}
}

func TestEndTimeInvalid(t *testing.T) {
	now := time.Now()

	for _, code := range []string{"", "3h", "2d", "1,5d", "1.5D", "forever"} {
		if _, err := EndTime(code, now); !errors.Is(err, ErrInvalidDuration) {
			t.Errorf("EndTime(%q): expected ErrInvalidDuration, got %v", code, err)
		}
	}
}
