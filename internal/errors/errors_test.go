package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestHTTPStatusMapping(t *testing.T) {
	tests := []struct {
		err    *FiraError
		status int
	}{
		{ErrProjectNotFound("p1"), 404},
		{ErrProjectExists("p1"), 409},
		{ErrTaskNotFound("p1", "t1"), 404},
		{ErrTaskExists("t1"), 409},
		{ErrTaskConflict("t1", "p1/done/t2.md"), 409},
		{ErrMissingID(), 400},
		{ErrInvalidRequest("bad json"), 400},
		{ErrIO("write task", stderrors.New("disk full")), 500},
	}

	for _, tt := range tests {
		if got := tt.err.HTTPStatus(); got != tt.status {
			t.Errorf("%s: expected status %d, got %d", tt.err.Code, tt.status, got)
		}
	}
}

func TestErrorMessageIncludesCause(t *testing.T) {
	cause := stderrors.New("permission denied")
	err := ErrIO("delete task file", cause)

	if !strings.Contains(err.Error(), "permission denied") {
		t.Errorf("expected cause in message, got %q", err.Error())
	}
	if !stderrors.Is(stderrors.Unwrap(err), cause) {
		t.Error("expected Unwrap to return cause")
	}
}

func TestIsMatchesOnCode(t *testing.T) {
	wrapped := fmt.Errorf("update failed: %w", ErrTaskNotFound("p1", "t1"))

	if !stderrors.Is(wrapped, ErrTaskNotFound("other", "other")) {
		t.Error("expected errors.Is to match on code")
	}
	if stderrors.Is(wrapped, ErrTaskExists("t1")) {
		t.Error("expected errors.Is to reject different code")
	}
}

func TestMarshalJSONIncludesCause(t *testing.T) {
	err := ErrIO("read task", stderrors.New("boom"))
	data, merr := json.Marshal(err)
	if merr != nil {
		t.Fatalf("marshal: %v", merr)
	}

	var decoded map[string]string
	if derr := json.Unmarshal(data, &decoded); derr != nil {
		t.Fatalf("unmarshal: %v", derr)
	}
	if decoded["code"] != string(CodeIOFailure) {
		t.Errorf("expected code %s, got %s", CodeIOFailure, decoded["code"])
	}
	if decoded["cause"] != "boom" {
		t.Errorf("expected cause 'boom', got %q", decoded["cause"])
	}
}
