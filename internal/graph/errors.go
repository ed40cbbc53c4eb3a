package graph

import (
	"errors"
)

// Sentinel errors returned by graph operations. Callers branch on these
// with errors.Is; the wrapped messages carry the offending ids.
var (
	ErrNodeNotFound           = errors.New("node not found")
	ErrEdgeNotFound           = errors.New("edge not found")
	ErrCorrespondenceNotFound = errors.New("correspondence not found")
	ErrSerialization          = errors.New("malformed graph document")
)
