package jsonld

import (
	"fmt"
	"regexp"
	"strconv"
)

var durationRe = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+(?:\.\d+)?)S)?)?$`)

// parseDuration converts an ISO-8601 duration (the only form accepted
// upstream) to whole seconds. Weeks, months and years are out of range for
// recipe durations and are rejected.
func parseDuration(s string) (int, error) {
	m := durationRe.FindStringSubmatch(s)
	if m == nil || (m[1] == "" && m[2] == "" && m[3] == "" && m[4] == "") {
		return 0, fmt.Errorf("invalid ISO-8601 duration %q", s)
	}

	seconds := 0
	if m[1] != "" {
		d, _ := strconv.Atoi(m[1])
		seconds += d * 24 * 3600
	}
	if m[2] != "" {
		h, _ := strconv.Atoi(m[2])
		seconds += h * 3600
	}
	if m[3] != "" {
		min, _ := strconv.Atoi(m[3])
		seconds += min * 60
	}
	if m[4] != "" {
		sec, _ := strconv.ParseFloat(m[4], 64)
		seconds += int(sec)
	}
	return seconds, nil
}
