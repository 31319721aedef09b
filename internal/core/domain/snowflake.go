package domain

import (
	"strconv"
	"time"
)

// Discord epoch, milliseconds since Unix epoch.
const snowflakeEpoch = 1420070400000

// SnowflakeTime extracts the creation timestamp encoded in a message ID.
func SnowflakeTime(id string) (time.Time, error) {
	n, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		return time.Time{}, err
	}

	ms := int64(n>>22) + snowflakeEpoch
	return time.UnixMilli(ms).UTC(), nil
}

// CompareSnowflakes orders two message IDs chronologically, returning -1, 0
// or 1. Snowflakes are monotonically increasing, so numeric order is
// creation order.
func CompareSnowflakes(a, b string) int {
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
