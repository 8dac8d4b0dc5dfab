package utils

import (
	"fmt"
	"strconv"
	"time"
)

// ParseTimestamp accepts either an RFC3339 string or unix epoch milliseconds,
// which is what mobile clients usually send.
func ParseTimestamp(timestamp string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, timestamp)
	if err == nil {
		return t, nil
	}
	millis, errMillis := strconv.ParseInt(timestamp, 10, 64)
	if errMillis != nil {
		return time.Time{}, fmt.Errorf("unsupported timestamp format: %s", timestamp)
	}
	return time.UnixMilli(millis), nil
}

// IsFresh reports whether t is no older than window at now, and no more than
// skew ahead of it. A zero t is never fresh.
func IsFresh(t, now time.Time, window, skew time.Duration) bool {
	if t.IsZero() {
		return false
	}
	age := now.Sub(t)
	return age >= -skew && age <= window
}
