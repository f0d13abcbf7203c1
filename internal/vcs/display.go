package vcs

import (
	"fmt"
	"regexp"
	"time"
)

var ansiEscape = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// StripDisplayHints removes the ANSI colour sequences embedded in
// CommitLogForFzf output.
func StripDisplayHints(s string) string {
	return ansiEscape.ReplaceAllString(s, "")
}

// RelativeTime renders the age of t as seen from now.
func RelativeTime(now, t time.Time) string {
	return relativeSeconds(int64(now.Sub(t) / time.Second))
}

func relativeSeconds(secs int64) string {
	if secs < 0 {
		return "in the future"
	}
	if secs < 60 {
		return fmt.Sprintf("%d seconds ago", secs)
	}
	mins := secs / 60
	if mins < 60 {
		return plural(mins, "minute")
	}
	hours := mins / 60
	if hours < 24 {
		return plural(hours, "hour")
	}
	days := hours / 24
	if days < 7 {
		return plural(days, "day")
	}
	if days < 30 {
		return plural(days/7, "week")
	}
	if days < 365 {
		return plural(days/30, "month")
	}
	return plural(days/365, "year")
}

func plural(n int64, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s ago", n, unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}

// ShortID truncates a hash to n characters.
func ShortID(id string, n int) string {
	if len(id) <= n {
		return id
	}
	return id[:n]
}
