package records

import (
	"errors"
	"fmt"
)

var ErrRecordNotFound = errors.New("record not found")

// RecordFetchError reports a failed lookup against the tracking API.
type RecordFetchError struct {
	BatchNumber string
	StatusCode  int
	Err         error
}

func (e *RecordFetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch record %q: upstream status %d: %v", e.BatchNumber, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch record %q: %v", e.BatchNumber, e.Err)
}

func (e *RecordFetchError) Unwrap() error {
	return e.Err
}

// NotFound reports whether the batch is unknown upstream.
func (e *RecordFetchError) NotFound() bool {
	return errors.Is(e.Err, ErrRecordNotFound)
}
