package sim

import "errors"

// Sentinel errors, following the teacher's errors.Is-compatible,
// package-level Err* convention.
var (
	ErrInvalidArgument = errors.New("sim: invalid argument")
	ErrAlreadyMember   = errors.New("sim: agent already a member of a population")
	ErrNotMember       = errors.New("sim: agent not a member of this population")
)
