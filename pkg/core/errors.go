package core

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrConfiguration    = errors.New("configuration error")
	ErrSourceRead       = errors.New("source read error")
	ErrAuthentication   = errors.New("authentication failed")
	ErrDestinationWrite = errors.New("destination write failed")
	ErrDuplicateCheck   = errors.New("duplicate check failed")
	ErrNotFound         = errors.New("not found")
)

// ConfigurationError reports a missing or malformed setting. It is fatal.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %s: %s", e.Field, e.Reason)
}

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// SourceReadError reports a single record that could not be read or decoded.
// The record is dropped; the batch continues.
type SourceReadError struct {
	Source Source
	Origin string
	Err    error
}

func (e *SourceReadError) Error() string {
	return fmt.Sprintf("read %s record %s: %v", e.Source, e.Origin, e.Err)
}

func (e *SourceReadError) Unwrap() error        { return e.Err }
func (e *SourceReadError) Is(target error) bool { return target == ErrSourceRead }

// AuthenticationError reports a source that could not authenticate.
// The source contributes zero notes; other sources proceed.
type AuthenticationError struct {
	Source Source
	Err    error
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authenticate %s: %v", e.Source, e.Err)
}

func (e *AuthenticationError) Unwrap() error        { return e.Err }
func (e *AuthenticationError) Is(target error) bool { return target == ErrAuthentication }

// DestinationWriteError reports a failed create, update or archive call.
type DestinationWriteError struct {
	Op     string
	Target string
	Err    error
}

func (e *DestinationWriteError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Op, e.Target, e.Err)
}

func (e *DestinationWriteError) Unwrap() error        { return e.Err }
func (e *DestinationWriteError) Is(target error) bool { return target == ErrDestinationWrite }
