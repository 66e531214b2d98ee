package task

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// durationToken matches one "<number><unit>" token, e.g. "2h", "30m", "1.5h".
var durationToken = regexp.MustCompile(`(\d+\.?\d*)\s*([hm])`)

// ParseMinutes scans a duration string for hour/minute tokens and sums them
// into total minutes. Unrecognized text is ignored; "2h 30m" yields 150,
// garbage yields 0. Used for aggregate statistics only; the estimate and
// spent_time fields themselves stay opaque strings.
func ParseMinutes(s string) int {
	if s == "" {
		return 0
	}
	total := 0.0
	for _, m := range durationToken.FindAllStringSubmatch(strings.ToLower(s), -1) {
		value, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		if m[2] == "h" {
			total += value * 60
		} else {
			total += value
		}
	}
	return int(total)
}

// FormatMinutes renders minutes back into the "2h 30m" form used in stat
// details.
func FormatMinutes(minutes int) string {
	if minutes < 60 {
		if minutes > 0 {
			return fmt.Sprintf("%dm", minutes)
		}
		return "0h"
	}
	hours := minutes / 60
	rem := minutes % 60
	if rem == 0 {
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%dh %dm", hours, rem)
}
