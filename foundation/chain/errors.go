package chain

import "errors"

// Set of error variables the engines can branch on. The read path keeps
// a missing record distinct from a timed out call so callers can choose
// between a terminal rejection and a retry.
var (
	ErrNotFound = errors.New("not found on chain")
	ErrTimeout  = errors.New("chain call timed out")
)
