package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassifiedError(t *testing.T) {
	t.Run("Basic error creation", func(t *testing.T) {
		err := NewError(CategoryConfig, "invalid configuration").
			WithSeverity(SeverityFatal).
			WithContext("file", "plantbuild.yaml").
			Build()

		if err.Category() != CategoryConfig {
			t.Errorf("expected category %s, got %s", CategoryConfig, err.Category())
		}
		if err.Severity() != SeverityFatal {
			t.Errorf("expected severity %s, got %s", SeverityFatal, err.Severity())
		}
		file, exists := err.Context().GetString("file")
		if !exists || file != "plantbuild.yaml" {
			t.Errorf("expected context file=plantbuild.yaml, got %v", file)
		}
	})

	t.Run("Error detection", func(t *testing.T) {
		err := ConfigError("test error").Build()

		if !IsClassified(err) {
			t.Error("expected error to be classified")
		}
		if !HasCategory(err, CategoryConfig) {
			t.Error("expected error to have config category")
		}
		if err.CanRetry() {
			t.Error("expected config error to not be retryable")
		}
		if !err.IsFatal() {
			t.Error("expected config error to be fatal")
		}
	})

	t.Run("Include errors fail the document only", func(t *testing.T) {
		err := IncludeError("include could not be resolved").Build()
		if err.IsFatal() {
			t.Error("include errors must not abort the pass")
		}
		if IsFatal(err) {
			t.Error("IsFatal() = true for include error")
		}
	})
}

func TestClassifiedError_Message(t *testing.T) {
	cause := errors.New("no such file")
	err := IncludeError("include could not be resolved").
		WithContext("path", "/tmp/x.puml").
		WithContext("directive", "!include x.puml").
		WithCause(cause).
		Build()

	want := "[include:error] include could not be resolved (directive=!include x.puml, path=/tmp/x.puml): no such file"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !errors.Is(err, cause) {
		t.Error("expected error to wrap cause")
	}
}

func TestAsClassified_Wrapped(t *testing.T) {
	inner := RenderError("bad status").WithContext("status", 500).Build()
	wrapped := fmt.Errorf("diagram a.puml: %w", inner)

	got, ok := AsClassified(wrapped)
	if !ok {
		t.Fatal("expected classified error in chain")
	}
	if got.Category() != CategoryRender {
		t.Errorf("category = %s, want %s", got.Category(), CategoryRender)
	}
	if GetCategory(errors.New("plain")) != CategoryInternal {
		t.Error("plain errors should map to internal category")
	}
	if !IsFatal(errors.New("plain")) {
		t.Error("plain errors are fatal")
	}
	if IsFatal(nil) {
		t.Error("nil is not fatal")
	}
}

func TestWithContext_DoesNotMutateOriginal(t *testing.T) {
	base := NetworkError("request failed").Build()
	derived := base.WithContext("url", "https://example.com")

	if _, ok := base.Context().Get("url"); ok {
		t.Error("original error context was mutated")
	}
	if v, _ := derived.Context().GetString("url"); v != "https://example.com" {
		t.Errorf("derived url = %q", v)
	}
	if !derived.CanRetry() {
		t.Error("network errors are retryable")
	}
}
