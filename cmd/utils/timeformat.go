package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// To12Hour converts a 24-hour "HH:MM" string to "h:MM AM" / "h:MM PM".
// Hour 0 maps to 12 AM and hour 12 to 12 PM. Input that does not look like
// a 24-hour clock time is returned unchanged.
func To12Hour(t string) string {
	hour, min, ok := splitClock(t)
	if !ok || hour > 23 || min > 59 {
		return t
	}
	period := "AM"
	switch {
	case hour == 0:
		hour = 12
	case hour == 12:
		period = "PM"
	case hour > 12:
		hour -= 12
		period = "PM"
	}
	return fmt.Sprintf("%d:%02d %s", hour, min, period)
}

// To24Hour converts "h:MM AM|PM" back to a 24-hour "HH:MM" string. Input not
// matching the expected pattern is returned unchanged, never an error.
func To24Hour(t string) string {
	parts := strings.SplitN(t, " ", 2)
	if len(parts) != 2 {
		return t
	}
	period := strings.ToUpper(strings.TrimSpace(parts[1]))
	if period != "AM" && period != "PM" {
		return t
	}
	hour, min, ok := splitClock(parts[0])
	if !ok || hour < 1 || hour > 12 || min > 59 {
		return t
	}
	if period == "AM" && hour == 12 {
		hour = 0
	} else if period == "PM" && hour != 12 {
		hour += 12
	}
	return fmt.Sprintf("%02d:%02d", hour, min)
}

func splitClock(s string) (hour, min int, ok bool) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 {
		return 0, 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 {
		return 0, 0, false
	}
	return h, m, true
}
