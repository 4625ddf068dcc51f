package utils

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenerateNumber builds document numbers such as RSV-20240101-1a2b3c4d.
func GenerateNumber(prefix string, at time.Time) string {
	suffix := strings.ToUpper(uuid.New().String()[:8])
	return prefix + "-" + at.UTC().Format("20060102") + "-" + suffix
}

// RoundMoney rounds to two decimals.
func RoundMoney(v float64) float64 {
	if v < 0 {
		return -RoundMoney(-v)
	}
	return float64(int64(v*100+0.5)) / 100
}

func Ptr[T any](v T) *T {
	return &v
}
