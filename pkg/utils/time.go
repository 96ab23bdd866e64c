package utils

import "time"

// NowUnixMillis returns the current time in Unix milliseconds.
func NowUnixMillis() int64 {
	return time.Now().UnixMilli()
}

// FromUnixMillis converts a Unix-millisecond stamp back into a time.Time.
// A zero stamp yields the zero time.
func FromUnixMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}
