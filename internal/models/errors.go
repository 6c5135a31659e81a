package models

import (
	"errors"
	"fmt"
)

var ErrUnknownRecordType = errors.New("unknown record type")

// ValidationError reports the first input field that failed its schema check.
// It is raised before anything is persisted
type ValidationError struct {
	RecordType RecordType
	Field      string
	Reason     string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s record: field %q %s", e.RecordType, e.Field, e.Reason)
}

// TransportError describes a failed batch transmission for one plot group
type TransportError struct {
	RecordType RecordType
	PlotID     string
	StatusCode int // 0 when the request never produced a response
	Body       string
	Retryable  bool
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Body != "":
		return fmt.Sprintf("ingest %s/%s rejected with status %d: %s", e.RecordType, e.PlotID, e.StatusCode, e.Body)
	case e.StatusCode != 0:
		return fmt.Sprintf("ingest %s/%s rejected with status %d", e.RecordType, e.PlotID, e.StatusCode)
	default:
		return fmt.Sprintf("ingest %s/%s failed: %v", e.RecordType, e.PlotID, e.Err)
	}
}

func (e *TransportError) Unwrap() error { return e.Err }

// StoreIOError wraps a failure of the local durable store. Operations that hit it
// cannot vouch for any durability guarantee and must surface it to the caller
type StoreIOError struct {
	Op  string
	Key string
	Err error
}

func (e *StoreIOError) Error() string {
	return fmt.Sprintf("store %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StoreIOError) Unwrap() error { return e.Err }

// IsRetryable reports whether err is a transport failure worth another attempt
func IsRetryable(err error) bool {
	var te *TransportError
	if errors.As(err, &te) {
		return te.Retryable
	}
	return false
}
