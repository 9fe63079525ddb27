package bondgraph

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	ErrBondNotFound     = errors.New("bond not found")
	ErrSiteOutOfRange   = errors.New("site out of range")
	ErrSelfBond         = errors.New("site cannot bond to itself")
	ErrDuplicateBond    = errors.New("sites are already bonded")
	ErrNotWaterRule     = errors.New("site violates the water rule")
	ErrDegreeSumChanged = errors.New("site degree sum differs from neighbour count")
)

// GraphError provides structured error information for bond graph operations.
type GraphError struct {
	Op      string // Operation that failed (e.g., "ReverseBond", "InvertPath")
	Entity  string // "bond" or "site"
	From    int    // Bond donor, or the site for site errors
	To      int    // Bond acceptor (bond errors only)
	Cause   error  // Underlying error
	Context string // Additional context
}

// Error implements the error interface.
func (e *GraphError) Error() string {
	var subject string
	switch e.Entity {
	case "bond":
		subject = fmt.Sprintf("bond %d->%d", e.From, e.To)
	case "site":
		subject = fmt.Sprintf("site %d", e.From)
	default:
		subject = e.Entity
	}
	if e.Context != "" {
		return fmt.Sprintf("%s %s (%s): %v", e.Op, subject, e.Context, e.Cause)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, subject, e.Cause)
}

// Unwrap returns the underlying cause for error chain support.
func (e *GraphError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target error matches this error's cause.
func (e *GraphError) Is(target error) bool {
	if target == nil {
		return false
	}
	return errors.Is(e.Cause, target)
}

func bondError(op string, from, to int, cause error) error {
	return &GraphError{Op: op, Entity: "bond", From: from, To: to, Cause: cause}
}

func siteError(op string, site int, cause error, context string) error {
	return &GraphError{Op: op, Entity: "site", From: site, Cause: cause, Context: context}
}

// IsBondNotFound returns true if the error reports a missing directed bond.
func IsBondNotFound(err error) bool {
	return errors.Is(err, ErrBondNotFound)
}
