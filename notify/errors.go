package notify

import "errors"

var (
	// ErrInvalidNotice is returned when a notice is missing required data.
	ErrInvalidNotice = errors.New("invalid notice")
	// ErrMissingSubject is returned when a notice has no subject record to
	// notify about.
	ErrMissingSubject = errors.New("notice missing subject record")
	// ErrUnknownCategory is returned for a category outside the known set.
	ErrUnknownCategory = errors.New("unknown notification category")
	// ErrNotFound is returned by loaders when the referenced record no
	// longer exists.
	ErrNotFound = errors.New("record not found")
	// ErrNilDependency is returned by constructors given a nil collaborator.
	ErrNilDependency = errors.New("nil dependency")
)
