package models

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument marks a parameter outside its bound
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrBusy is returned when another job already holds the execution slot
	ErrBusy = errors.New("server busy: only one inference at a time, please retry shortly")
	// ErrWorkerUnavailable covers a compute process that failed to spawn, died mid-job or never answered
	ErrWorkerUnavailable = errors.New("worker unavailable")
)

// ValidationError names the offending field
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Msg)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidArgument
}
