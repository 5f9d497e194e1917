package build

import "errors"

// Sentinel errors describing how a pass ended. They are wrapped with the
// underlying document errors at the call site.
var (
	ErrDocumentsFailed = errors.New("plantbuild: one or more documents failed")
	ErrNoOutputName    = errors.New("plantbuild: no output name could be derived")
)
