package apperrors

import (
	"errors"
	"strings"
)

type Kind string

const (
	KindUnsuitableDirectory Kind = "unsuitable_directory"
	KindStartFailure        Kind = "start_failure"
	KindStopFailure         Kind = "stop_failure"
	KindConfig              Kind = "config"
)

type Error struct {
	Kind Kind
	// SafeMessage is intended for user-facing output and logs.
	SafeMessage string
	// Cause keeps the original internal error for troubleshooting.
	Cause error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if msg := strings.TrimSpace(e.SafeMessage); msg != "" {
		return msg
	}
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return "unknown error"
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func defaultSafeMessage(kind Kind) string {
	switch kind {
	case KindUnsuitableDirectory:
		return "The selected folder cannot be used as a database location."
	case KindStartFailure:
		return "The database could not be started."
	case KindStopFailure:
		return "The database did not stop cleanly."
	case KindConfig:
		return "The configuration file could not be read."
	default:
		return "Operation failed."
	}
}

func New(kind Kind, safeMessage string, cause error) error {
	msg := strings.TrimSpace(safeMessage)
	if msg == "" {
		msg = defaultSafeMessage(kind)
	}
	return &Error{
		Kind:        kind,
		SafeMessage: msg,
		Cause:       cause,
	}
}

// UnsuitableDirectory reports why path cannot become the database directory.
func UnsuitableDirectory(path, reason string, cause error) error {
	msg := defaultSafeMessage(KindUnsuitableDirectory)
	if reason = strings.TrimSpace(reason); reason != "" {
		msg = "Unsuitable folder " + path + ": " + reason
	}
	return New(KindUnsuitableDirectory, msg, cause)
}

func StartFailure(err error) error {
	if kind, ok := KindOf(err); ok && kind == KindStartFailure {
		return err
	}
	msg := defaultSafeMessage(KindStartFailure)
	if err != nil {
		msg = msg + " " + PublicMessage(err)
	}
	return New(KindStartFailure, msg, err)
}

func StopFailure(err error) error {
	return New(KindStopFailure, "", err)
}

func Config(err error) error {
	return New(KindConfig, "", err)
}

func KindOf(err error) (Kind, bool) {
	var e *Error
	if !errors.As(err, &e) {
		return "", false
	}
	return e.Kind, true
}

func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

func PublicMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Error()
	}
	return err.Error()
}

// Recoverable reports whether the caller can fall back and continue without
// user remediation.
func Recoverable(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == KindUnsuitableDirectory || e.Kind == KindStopFailure || e.Kind == KindConfig
}
