// Package formatting parses loosely formatted values: human-readable byte
// sizes from configuration and JSON documents embedded in model output.
package formatting

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Sizes are base-1024 regardless of spelling: "K", "KB", and "KiB" all
// mean 1024 bytes.
var multipliers = map[string]int{
	"":  0,
	"K": 1,
	"M": 2,
	"G": 3,
	"T": 4,
	"P": 5,
	"E": 6,
}

// ParseBytes parses a size such as "1MB", "512 KiB", or "64k" into a byte
// count. A bare number is bytes. Fractions are allowed ("1.5MB"); results
// that overflow int64 are rejected.
func ParseBytes(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty byte size")
	}

	split := strings.IndexFunc(s, func(r rune) bool {
		return !unicode.IsDigit(r) && r != '.'
	})
	num, unit := s, ""
	if split >= 0 {
		num, unit = s[:split], strings.TrimSpace(s[split:])
	}
	if num == "" {
		return 0, fmt.Errorf("invalid byte size: %q", s)
	}

	value, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid byte size %q: %w", s, err)
	}

	exp, ok := multipliers[normalizeUnit(unit)]
	if !ok {
		return 0, fmt.Errorf("unknown byte size unit: %q", unit)
	}

	bytes := value * math.Pow(1024, float64(exp))
	if bytes >= math.MaxInt64 {
		return 0, fmt.Errorf("byte size out of range: %q", s)
	}
	return int64(bytes), nil
}

// FormatBytes renders n using the largest whole unit, e.g. 1048576 as
// "1MB" and 1536 as "1.5KB".
func FormatBytes(n int64) string {
	if n < 1024 {
		return strconv.FormatInt(n, 10) + "B"
	}

	value := float64(n)
	suffixes := []string{"KB", "MB", "GB", "TB", "PB", "EB"}
	i := -1
	for value >= 1024 && i < len(suffixes)-1 {
		value /= 1024
		i++
	}
	return strconv.FormatFloat(value, 'f', -1, 64) + suffixes[i]
}

func normalizeUnit(unit string) string {
	u := strings.ToUpper(unit)
	u = strings.TrimSuffix(u, "IB")
	if u == "B" {
		return ""
	}
	return strings.TrimSuffix(u, "B")
}
