package auction

import "time"

// durations maps the allowed auction duration codes to their lengths.
var durations = map[string]time.Duration{
	"2h":   2 * time.Hour,
	"1d":   24 * time.Hour,
	"1.5d": 36 * time.Hour,
}

// EndTime resolves an auction duration code to an end time relative to now.
// Only the enumerated codes are accepted.
func EndTime(code string, now time.Time) (time.Time, error) {
	d, ok := durations[code]
	if !ok {
		return time.Time{}, ErrInvalidDuration
	}
	return now.Add(d), nil
}
