package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a catalog failure.
type Kind string

const (
	// KindNotFound means the catalog has no entity for the request.
	KindNotFound Kind = "not_found"
	// KindTransient covers timeouts and busy replies that outlived retries.
	KindTransient Kind = "transient"
	// KindFatal covers auth, session, ban and protocol failures.
	KindFatal Kind = "fatal"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrTransient = errors.New("transient failure")
	ErrFatal     = errors.New("fatal catalog error")
)

// Error tags a catalog failure with its kind and, when known, the reply code.
type Error struct {
	Op   string
	Kind Kind
	Code int
	Err  error
}

func (e *Error) Error() string {
	parts := make([]string, 0, 3)
	if op := strings.TrimSpace(e.Op); op != "" {
		parts = append(parts, op)
	}
	if e.Code != 0 {
		parts = append(parts, fmt.Sprintf("code %d", e.Code))
	}
	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	} else {
		parts = append(parts, e.marker().Error())
	}
	return strings.Join(parts, ": ")
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel that corresponds to the error's kind.
func (e *Error) Is(target error) bool {
	return target == e.marker()
}

func (e *Error) marker() error {
	switch e.Kind {
	case KindNotFound:
		return ErrNotFound
	case KindTransient:
		return ErrTransient
	default:
		return ErrFatal
	}
}

// NewError builds a tagged error.
func NewError(kind Kind, op string, code int, err error) error {
	return &Error{Op: op, Kind: kind, Code: code, Err: err}
}

// NotFound tags a missing entity.
func NotFound(op string, code int) error {
	return &Error{Op: op, Kind: KindNotFound, Code: code}
}

// KindOf reports the kind of err. Untagged errors are fatal; nil has no kind.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var tagged *Error
	if errors.As(err, &tagged) {
		if tagged.Kind == "" {
			return KindFatal
		}
		return tagged.Kind
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrTransient):
		return KindTransient
	default:
		return KindFatal
	}
}

// IsNotFound reports whether err means the catalog has no such entity.
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}
