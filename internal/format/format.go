// Package format holds the small pure formatting helpers used when
// rendering message items.
package format

import "time"

// SubjectLimit is the maximum number of runes shown for a subject line.
const SubjectLimit = 15

// Ellipsis marks a truncated subject.
const Ellipsis = "…"

// Truncate bounds s to SubjectLimit runes. Short strings are returned
// unchanged; longer ones are cut to exactly SubjectLimit runes with an
// ellipsis appended. Truncation is rune-safe so multi-byte subjects
// never get split mid-character.
func Truncate(s string) string {
	runes := []rune(s)
	if len(runes) <= SubjectLimit {
		return s
	}
	return string(runes[:SubjectLimit]) + Ellipsis
}

// timeLayout is the display format for message receive times.
const timeLayout = "15:04 02.01.2006"

// Time renders a Unix timestamp as "HH:MM DD.MM.YYYY" in the local zone.
func Time(unix int64) string {
	return TimeIn(unix, time.Local)
}

// TimeIn renders a Unix timestamp as "HH:MM DD.MM.YYYY" in loc.
func TimeIn(unix int64, loc *time.Location) string {
	return time.Unix(unix, 0).In(loc).Format(timeLayout)
}

// ISO renders a Unix timestamp as an ISO-8601 string in the local zone.
// It references the same instant as Time for the same input.
func ISO(unix int64) string {
	return ISOIn(unix, time.Local)
}

// ISOIn renders a Unix timestamp as an ISO-8601 string in loc.
func ISOIn(unix int64, loc *time.Location) string {
	return time.Unix(unix, 0).In(loc).Format(time.RFC3339)
}
