package types

import (
	"math"
	"strconv"
	"strings"
)

// ToLikeCount coerces a tabular like_count cell to a non-negative integer.
// Blank, malformed and negative values become 0; decimals are truncated.
func ToLikeCount(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n < 0 {
			return 0
		}
		return n
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int64(f)
}
