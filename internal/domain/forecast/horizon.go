package forecast

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// DefaultHorizon is used when a request does not name one
const DefaultHorizon = "4w"

var horizonPattern = regexp.MustCompile(`^[1-9][0-9]*[wd]$`)

// ParseHorizon turns "30d" or "4w" into a number of days
func ParseHorizon(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		s = DefaultHorizon
	}
	if !horizonPattern.MatchString(s) {
		return 0, fmt.Errorf("%w: %q, use a number followed by d or w", ErrInvalidHorizon, s)
	}

	n, err := strconv.Atoi(s[:len(s)-1])
	if err != nil || n > MaxHorizonDays {
		return 0, fmt.Errorf("%w: %q exceeds %d days", ErrInvalidHorizon, s, MaxHorizonDays)
	}

	days := n
	if s[len(s)-1] == 'w' {
		days = n * 7
	}
	if days > MaxHorizonDays {
		return 0, fmt.Errorf("%w: %q exceeds %d days", ErrInvalidHorizon, s, MaxHorizonDays)
	}
	return days, nil
}
