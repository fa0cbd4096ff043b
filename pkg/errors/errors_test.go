package errors

import (
	"errors"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidColumn, "no column named %q", "species")

	if err.Code != ErrCodeInvalidColumn {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidColumn)
	}

	if err.Message != `no column named "species"` {
		t.Errorf("Message = %v, want %v", err.Message, `no column named "species"`)
	}

	expected := `INVALID_COLUMN: no column named "species"`
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeInternal, cause, "rendering chart")

	if err.Code != ErrCodeInternal {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInternal)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	// Test Unwrap
	unwrapped := errors.Unwrap(err)
	if unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	// Test errors.Is with wrapped error
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      New(ErrCodeDegenerateTotal, "test"),
			code:     ErrCodeDegenerateTotal,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeDegenerateTotal, "test"),
			code:     ErrCodeNegativeValue,
			expected: false,
		},
		{
			name:     "wrapped error",
			err:      Wrap(ErrCodeInternal, New(ErrCodeInvalidInput, "inner"), "outer"),
			code:     ErrCodeInternal,
			expected: true,
		},
		{
			name:     "plain error",
			err:      errors.New("plain"),
			code:     ErrCodeInternal,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	if code := GetCode(New(ErrCodeInvalidPalette, "bad hex")); code != ErrCodeInvalidPalette {
		t.Errorf("GetCode() = %v, want %v", code, ErrCodeInvalidPalette)
	}
	if code := GetCode(errors.New("plain")); code != "" {
		t.Errorf("GetCode() = %v, want empty", code)
	}
}

func TestUserMessage(t *testing.T) {
	if msg := UserMessage(New(ErrCodeInvalidConfig, "width must be positive")); msg != "width must be positive" {
		t.Errorf("UserMessage() = %v, want %v", msg, "width must be positive")
	}
	if msg := UserMessage(errors.New("plain failure")); msg != "plain failure" {
		t.Errorf("UserMessage() = %v, want %v", msg, "plain failure")
	}
}
