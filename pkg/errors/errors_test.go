package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrRecipeNotFound, "recipe 'api' not found")

	if err.Code != ErrRecipeNotFound {
		t.Errorf("Code = %v, want %v", err.Code, ErrRecipeNotFound)
	}

	want := "[RECIPE_NOT_FOUND] recipe 'api' not found"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestNewf(t *testing.T) {
	err := Newf(ErrAlreadyExists, "file %q already exists", "config.yml")

	if err.Message != `file "config.yml" already exists` {
		t.Errorf("Message = %q", err.Message)
	}
}

func TestWrap(t *testing.T) {
	t.Run("wraps underlying error", func(t *testing.T) {
		inner := fmt.Errorf("permission denied")
		err := Wrap(inner, ErrFileAccess, "cannot read file")

		if !stderrors.Is(err, inner) {
			t.Error("wrapped error should match errors.Is on the inner error")
		}

		want := "[FILE_ACCESS] cannot read file: permission denied"
		if err.Error() != want {
			t.Errorf("Error() = %q, want %q", err.Error(), want)
		}
	})

	t.Run("nil error returns nil", func(t *testing.T) {
		if err := Wrap(nil, ErrInternal, "ignored"); err != nil {
			t.Errorf("Wrap(nil) = %v, want nil", err)
		}
	})
}

func TestIsErrorCode(t *testing.T) {
	err := New(ErrMarkerNotFound, "marker missing")

	if !IsErrorCode(err, ErrMarkerNotFound) {
		t.Error("IsErrorCode should match the error's own code")
	}
	if IsErrorCode(err, ErrRegistryClosed) {
		t.Error("IsErrorCode should not match a different code")
	}
	if IsErrorCode(fmt.Errorf("plain"), ErrMarkerNotFound) {
		t.Error("IsErrorCode should not match a plain error")
	}
}

func TestIsErrorCodeThroughWrapping(t *testing.T) {
	inner := New(ErrDuplicateDependency, "conflicting constraint for 'redis'")
	outer := Wrapf(inner, ErrDuplicateDependency, "recipe %q: operation %d failed", "cache", 2)

	if !IsErrorCode(outer, ErrDuplicateDependency) {
		t.Error("code should survive wrapping")
	}
	if !stderrors.Is(outer, inner) {
		t.Error("errors.Is should see through the wrap")
	}
}

func TestGetErrorCode(t *testing.T) {
	if got := GetErrorCode(New(ErrInstallFailed, "bundler exited 1")); got != ErrInstallFailed {
		t.Errorf("GetErrorCode = %v, want %v", got, ErrInstallFailed)
	}
	if got := GetErrorCode(fmt.Errorf("plain")); got != ErrUnknown {
		t.Errorf("GetErrorCode(plain) = %v, want %v", got, ErrUnknown)
	}
}

func TestWithDetail(t *testing.T) {
	err := New(ErrRecipeParse, "missing field").
		WithDetail("recipe", "db/postgres").
		WithDetail("opIndex", 3)

	details := GetErrorDetails(err)
	if details["recipe"] != "db/postgres" {
		t.Errorf("details[recipe] = %v", details["recipe"])
	}
	if details["opIndex"] != 3 {
		t.Errorf("details[opIndex] = %v", details["opIndex"])
	}
}
