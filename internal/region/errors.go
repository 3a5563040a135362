package region

import (
	"errors"
	"fmt"
)

// Kind identifies a region validation or lookup failure.
type Kind int

const (
	KindAlreadyExists Kind = iota + 1
	KindIllegalName
	KindNameTooLong
	KindDescriptionTooLong
	KindQuotaExceeded
	KindAreaExceeded
	KindOverlap
	KindDifferentWorlds
	KindNotFound
)

var kindNames = map[Kind]string{
	KindAlreadyExists:      "already_exists",
	KindIllegalName:        "illegal_name",
	KindNameTooLong:        "name_too_long",
	KindDescriptionTooLong: "description_too_long",
	KindQuotaExceeded:      "quota_exceeded",
	KindAreaExceeded:       "area_exceeded",
	KindOverlap:            "overlap",
	KindDifferentWorlds:    "different_worlds",
	KindNotFound:           "not_found",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Class groups kinds the way callers report them.
type Class int

const (
	ClassValidation Class = iota + 1
	ClassConflict
	ClassNotFound
)

// Error is returned by Store for every rejected request. The store state
// is unchanged when an Error is returned.
type Error struct {
	Kind Kind
	// Limit is the configured maximum for quota/area/length kinds.
	Limit int64
}

func (e *Error) Error() string {
	if e.Limit > 0 {
		return fmt.Sprintf("region: %s (max %d)", e.Kind, e.Limit)
	}
	return "region: " + e.Kind.String()
}

// Is matches any *Error of the same Kind, so errors.Is(err, ErrOverlap)
// works regardless of Limit.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// Class returns the reporting class of the error.
func (e *Error) Class() Class {
	switch e.Kind {
	case KindIllegalName, KindNameTooLong, KindDescriptionTooLong, KindDifferentWorlds:
		return ClassValidation
	case KindNotFound:
		return ClassNotFound
	default:
		return ClassConflict
	}
}

var (
	ErrAlreadyExists      = &Error{Kind: KindAlreadyExists}
	ErrIllegalName        = &Error{Kind: KindIllegalName}
	ErrNameTooLong        = &Error{Kind: KindNameTooLong}
	ErrDescriptionTooLong = &Error{Kind: KindDescriptionTooLong}
	ErrQuotaExceeded      = &Error{Kind: KindQuotaExceeded}
	ErrAreaExceeded       = &Error{Kind: KindAreaExceeded}
	ErrOverlap            = &Error{Kind: KindOverlap}
	ErrDifferentWorlds    = &Error{Kind: KindDifferentWorlds}
	ErrNotFound           = &Error{Kind: KindNotFound}
)

func limitErr(k Kind, limit int64) error {
	return &Error{Kind: k, Limit: limit}
}

// PersistenceError reports a failed save or delete. The in-memory change
// has already been applied and is not rolled back.
type PersistenceError struct {
	Op       string // "save" or "delete"
	RegionID string
	Name     string
	Err      error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s region %q (%s): %v", e.Op, e.Name, e.RegionID, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
