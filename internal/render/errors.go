package render

import "errors"

var (
	// ErrBinaryNotFound indicates the configured plantuml executable is missing.
	ErrBinaryNotFound = errors.New("plantuml executable not found")

	// ErrBinaryFailed indicates the plantuml executable exited with a non-zero status.
	ErrBinaryFailed = errors.New("plantuml execution failed")

	// ErrBadStatus indicates the rendering server answered with a non-200 status.
	ErrBadStatus = errors.New("unexpected server response status")

	// ErrTransport indicates the rendering server could not be reached.
	ErrTransport = errors.New("render server transport failure")

	// ErrWriteOutput indicates the rendered artifact could not be written.
	ErrWriteOutput = errors.New("failed to write rendered output")

	// ErrUnknownMode indicates a render mode with no backend.
	ErrUnknownMode = errors.New("unknown render mode")
)
