package include

import "errors"

var (
	// ErrUnresolved indicates an included file does not exist or cannot be read.
	ErrUnresolved = errors.New("include could not be resolved")

	// ErrInvalidIncludeSub indicates an !includesub directive without exactly one '!' separator.
	ErrInvalidIncludeSub = errors.New("invalid !includesub syntax")

	// ErrUnknownInclude indicates an !include style directive of no recognized form.
	ErrUnknownInclude = errors.New("unknown include type")

	// ErrCircular indicates a file that is already being expanded was included again.
	ErrCircular = errors.New("circular include")

	// ErrDepthExceeded indicates the include nesting limit was reached.
	ErrDepthExceeded = errors.New("include depth exceeded")
)
