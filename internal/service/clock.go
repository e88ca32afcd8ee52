package service

import "time"

func utcNow() time.Time {
	return time.Now().UTC()
}

// normalizePublishTime stores times in UTC at second precision and clamps past values to now.
func normalizePublishTime(requested, now time.Time) time.Time {
	now = now.UTC().Truncate(time.Second)
	if requested.IsZero() {
		return now
	}
	requested = requested.UTC().Truncate(time.Second)
	if requested.Before(now) {
		return now
	}
	return requested
}
