package cli

import (
	"errors"
	"fmt"
	"testing"
)

func TestUserErr_Nil(t *testing.T) {
	if UserErr(nil) != nil {
		t.Error("UserErr(nil) should be nil")
	}
}

func TestIsUserError(t *testing.T) {
	base := errors.New("missing required configuration")
	wrapped := UserErr(base)

	if !IsUserError(wrapped) {
		t.Error("IsUserError(UserErr(err)) = false, want true")
	}
	if IsUserError(base) {
		t.Error("IsUserError on a plain error = true, want false")
	}
	if !IsUserError(fmt.Errorf("outer: %w", wrapped)) {
		t.Error("IsUserError should see through wrapping")
	}
	if !errors.Is(wrapped, base) {
		t.Error("UserError should unwrap to its cause")
	}
}
