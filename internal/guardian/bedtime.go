package guardian

import "time"

// MinutesOfDay converts a wall-clock time to minutes since local midnight.
func MinutesOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// MinutesPastBedtime returns how many minutes the current time-of-day lies
// past the bedtime-of-day, handling the midnight wrap. Both values are mapped
// onto a common 48-hour line: anything in the early-morning half (< 12:00) is
// treated as belonging to "tonight" by adding 24h, so a bedtime of 01:00
// compares correctly against a current time of 03:00 the same night.
//
// The heuristic assumes a session never runs more than ~12 hours past the
// boundary, which holds for single-night hyperfocus episodes.
func MinutesPastBedtime(nowMinutes, bedtimeMinutes int) int {
	nowAdj := nowMinutes
	if nowAdj < 12*60 {
		nowAdj += 1440
	}
	bedAdj := bedtimeMinutes
	if bedAdj < 12*60 {
		bedAdj += 1440
	}
	if nowAdj > bedAdj {
		return nowAdj - bedAdj
	}
	return 0
}

// SecondsToBedtime returns the seconds from now until the next occurrence of
// the bedtime-of-day, at least 1.
func SecondsToBedtime(now time.Time, bedtimeMinutes int) int {
	toBed := bedtimeMinutes - MinutesOfDay(now)
	if toBed < 0 {
		toBed += 1440 // already past today's bedtime, aim for tomorrow's
	}
	secs := toBed*60 - now.Second()
	if secs < 1 {
		secs = 1
	}
	return secs
}

// BreakRemainder returns the time left until the next break boundary,
// keeping the cadence phase-locked to session start: a session resumed at
// elapsed=50m with a 45m interval has 40m left, not a fresh 45m.
func BreakRemainder(elapsed, interval time.Duration) time.Duration {
	if interval <= 0 {
		return 0
	}
	rem := interval - (elapsed % interval)
	return rem
}
