package engine

import "fmt"

// Kind classifies the reasons Step or New can fail, so callers can branch
// on the failure mode with errors.As instead of string matching.
type Kind int

const (
	// InvalidInput covers malformed constructor arguments: mismatched
	// image/mask dimensions, a non-positive patch radius, and so on.
	InvalidInput Kind = iota
	// NoSourcePatches means the source patch index is empty — inpainting
	// cannot proceed because no fully-valid patch exists anywhere.
	NoSourcePatches
	// PriorityDesync means TopKTargets returned a pixel that is no
	// longer on the boundary, which would indicate a missed field
	// update between iterations.
	PriorityDesync
	// AllCandidatesRejected means every ranked candidate for a target was
	// vetoed by the acceptance visitor.
	AllCandidatesRejected
	// UserQuit means an interactive VerificationUI asked to abort.
	UserQuit
	// InternalInvariant covers any other condition the engine's own
	// bookkeeping should have prevented.
	InternalInvariant
)

func (k Kind) String() string {
	switch k {
	case InvalidInput:
		return "invalid input"
	case NoSourcePatches:
		return "no source patches"
	case PriorityDesync:
		return "priority desync"
	case AllCandidatesRejected:
		return "all candidates rejected"
	case UserQuit:
		return "user quit"
	case InternalInvariant:
		return "internal invariant violated"
	default:
		return "unknown"
	}
}

// CoreError is the error type every exported engine function returns,
// carrying a Kind so callers can distinguish failure modes with
// errors.As without parsing message text.
type CoreError struct {
	Kind Kind
	Msg  string
	err  error
}

func (e *CoreError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *CoreError) Unwrap() error { return e.err }

func newError(kind Kind, msg string) *CoreError {
	return &CoreError{Kind: kind, Msg: msg}
}

func wrapError(kind Kind, msg string, err error) *CoreError {
	return &CoreError{Kind: kind, Msg: msg, err: err}
}
