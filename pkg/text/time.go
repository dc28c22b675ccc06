package text

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

const (
	// maxTimeComponents is the number of components in "hh:mm:ss".
	maxTimeComponents = 3
	secondsPerUnit    = 60
)

// TimeInfo is the playback position and length reported by a player, in seconds.
// A nil field means the player did not report a usable value.
type TimeInfo struct {
	CurrentTime *int
	Duration    *int
}

// NewTimeInfo sanitizes raw player values with EscapeBadTimeValues.
func NewTimeInfo(currentTime, duration any) TimeInfo {
	var info TimeInfo
	if v, ok := EscapeBadTimeValues(currentTime); ok {
		info.CurrentTime = &v
	}
	if v, ok := EscapeBadTimeValues(duration); ok {
		info.Duration = &v
	}
	return info
}

// StringToSeconds converts "hh:mm:ss", "mm:ss" or "ss", optionally prefixed with a single
// "-", to a signed number of seconds. Anything else yields 0.
func StringToSeconds(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}

	sign := 1
	if strings.HasPrefix(s, "-") {
		sign = -1
		s = s[1:]
	}

	parts := strings.Split(s, ":")
	if len(parts) > maxTimeComponents {
		return 0
	}

	total := 0
	for _, part := range parts {
		if !isDigits(part) {
			return 0
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return 0
		}
		total = total*secondsPerUnit + n
	}

	return sign * total
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// EscapeBadTimeValues turns a player-reported numeric time into whole seconds.
// NaN, infinities, values outside the int range and non-numeric inputs report false.
// Halves round up, so 2.5 becomes 3 and -2.5 becomes -2.
func EscapeBadTimeValues(v any) (int, bool) {
	var f float64
	switch n := v.(type) {
	case int:
		return n, true
	case int8:
		return int(n), true
	case int16:
		return int(n), true
	case int32:
		return int(n), true
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint8:
		return int(n), true
	case uint16:
		return int(n), true
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	case float32:
		f = float64(n)
	case float64:
		f = n
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}

	rounded := math.Floor(f + 0.5)
	if rounded >= math.MaxInt || rounded < math.MinInt {
		return 0, false
	}

	return int(rounded), true
}
