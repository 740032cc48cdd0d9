package document

import "errors"

var (
	// ErrMemberNotFound is the panic value (wrapped) of the Must lookups
	// when a referenced member no longer exists.
	ErrMemberNotFound = errors.New("document: member not found")

	// ErrWrongMemberType is the panic value (wrapped) of MustFindLayer and
	// MustFindFolder when the member has the other kind.
	ErrWrongMemberType = errors.New("document: member has the wrong type")
)
