package prompts

import "errors"

// Error kinds surfaced by the engine. Callers distinguish them with errors.Is;
// every returned error wraps exactly one of these when it is a policy failure.
var (
	// ErrNotFound means the id resolves to neither an override nor a catalog entry.
	ErrNotFound = errors.New("not found")

	// ErrVersionNotFound means a rollback target is absent from the history.
	ErrVersionNotFound = errors.New("version not found")

	// ErrValidation covers missing commit messages, bad ids and id collisions.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidOperation means the operation does not apply to this kind of
	// block. The message names the operation to use instead.
	ErrInvalidOperation = errors.New("invalid operation")

	// ErrConflict means the stored version changed between read and write.
	ErrConflict = errors.New("conflict")
)
