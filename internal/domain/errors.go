package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrUserNotFound means the hints did not match any user
	ErrUserNotFound = errors.New("user not found")
	// ErrLookupRejected wraps RPC errors returned by Telegram for a lookup
	ErrLookupRejected = errors.New("lookup rejected by telegram")
)

// FloodWaitError is returned when Telegram asks the caller to back off
type FloodWaitError struct {
	Wait time.Duration
}

func (e *FloodWaitError) Error() string {
	return fmt.Sprintf("flood wait %s", e.Wait)
}

// AsFloodWait extracts the requested back-off from err
func AsFloodWait(err error) (time.Duration, bool) {
	var floodErr *FloodWaitError
	if errors.As(err, &floodErr) {
		return floodErr.Wait, true
	}
	return 0, false
}
