// Package errors provides the classified error type used across plantbuild.
//
// A ClassifiedError carries a category (config, include, render, ...), a severity
// and a retry strategy, plus structured context such as the offending path or
// directive. The fluent ErrorBuilder keeps construction uniform:
//
//	err := errors.IncludeError("include could not be resolved").
//		WithContext("path", incPath).
//		WithCause(include.ErrUnresolved).
//		Build()
//
// The CLI adapter maps categories to process exit codes.
package errors
