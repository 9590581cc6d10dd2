package resolver

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrAmbiguousMatch means a fragment matched more than one name.
	ErrAmbiguousMatch = errors.New("ambiguous card match")
	// ErrNoMatch means a fragment matched nothing, even after correction.
	ErrNoMatch = errors.New("no card match")
)

// MatchError describes why a fragment failed to resolve.
type MatchError struct {
	Fragment   string
	Corrected  string
	Candidates []string
	Err        error
}

func (e *MatchError) Error() string {
	if len(e.Candidates) > 0 {
		return fmt.Sprintf("%v for %q: %s", e.Err, e.Fragment, strings.Join(e.Candidates, ", "))
	}
	return fmt.Sprintf("%v for %q", e.Err, e.Fragment)
}

func (e *MatchError) Unwrap() error {
	return e.Err
}
