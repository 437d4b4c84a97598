package epoch

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

const Layout = "2006-01-02 15:04:05"

// 9999-12-31 23:59:59 UTC
const maxTimestamp = 253402300799

var ErrInvalidTimestamp = errors.New("invalid timestamp")

// Format renders a decimal Unix timestamp label as UTC calendar time.
func Format(label string) (string, error) {
	if label == "" {
		return "", fmt.Errorf("%w: empty label", ErrInvalidTimestamp)
	}
	for _, c := range label {
		if c < '0' || c > '9' {
			return "", fmt.Errorf("%w: %q is not decimal", ErrInvalidTimestamp, label)
		}
	}

	ts, err := strconv.ParseInt(label, 10, 64)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidTimestamp, err)
	}
	if ts > maxTimestamp {
		return "", fmt.Errorf("%w: %d is past year 9999", ErrInvalidTimestamp, ts)
	}

	return time.Unix(ts, 0).UTC().Format(Layout), nil
}
