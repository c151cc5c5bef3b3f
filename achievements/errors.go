package achievements

import "errors"

var (
	// ErrCollaboratorUnavailable means a data source failed while the
	// snapshot was built. The run is aborted, the gate is still released.
	ErrCollaboratorUnavailable = errors.New("collaborator unavailable")

	// ErrMalformedInput means a rule could not interpret the snapshot. The
	// rule is skipped and the sweep continues.
	ErrMalformedInput = errors.New("malformed input data")

	// ErrConfiguration means the catalog and the rule registry disagree.
	// It is only returned at startup.
	ErrConfiguration = errors.New("achievement configuration error")

	// ErrPoolClosed is returned when work is submitted after Close.
	ErrPoolClosed = errors.New("evaluation pool closed")
)
