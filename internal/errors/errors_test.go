package errors

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: "",
		},
		{
			name:     "simple error",
			err:      errors.New("something went wrong"),
			expected: "Error: something went wrong",
		},
		{
			name:     "unreachable server",
			err:      &RemoteError{Op: "list habits", Method: "GET", Path: "/habits", Err: errors.New("connection refused")},
			expected: "Error: could not reach server",
		},
		{
			name:     "rejected with message",
			err:      &RemoteError{Op: "create habit", Method: "POST", Path: "/habits", StatusCode: 409, Message: "duplicate title"},
			expected: "Error: server rejected the request: duplicate title",
		},
		{
			name:     "not found",
			err:      &NotFoundError{ID: "h9"},
			expected: `Error: habit "h9" not found`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Format(tt.err)
			if result != tt.expected {
				t.Errorf("Format(%v) = %q, want %q", tt.err, result, tt.expected)
			}
		})
	}
}

func TestFormatf(t *testing.T) {
	result := Formatf("failed to load %s", "habits")
	if result != "Error: failed to load habits" {
		t.Errorf("Formatf() = %q, want %q", result, "Error: failed to load habits")
	}
}

func TestClassify(t *testing.T) {
	remote := &RemoteError{Op: "delete habit", StatusCode: 500}
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, KindUnknown},
		{"plain", errors.New("boom"), KindUnknown},
		{"validation", NewValidationError("title", "is required"), KindValidation},
		{"auth wrapping remote", &AuthError{Op: "login", Message: "Invalid credentials", Err: remote}, KindAuth},
		{"remote", remote, KindRemote},
		{"wrapped remote", fmt.Errorf("refreshing: %w", remote), KindRemote},
		{"not found", &NotFoundError{ID: "x"}, KindNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUserMessage_DistinguishesUnreachableFromRejected(t *testing.T) {
	unreachable := &AuthError{
		Op:  "login",
		Err: &RemoteError{Op: "login", Method: "POST", Path: "/login", Err: errors.New("dial tcp: refused")},
	}
	rejected := &AuthError{
		Op:      "login",
		Message: "Invalid credentials",
		Err:     &RemoteError{Op: "login", Method: "POST", Path: "/login", StatusCode: 401, Message: "Invalid credentials"},
	}

	if got := UserMessage(unreachable); got != "login failed: could not reach server" {
		t.Errorf("UserMessage(unreachable) = %q", got)
	}
	if got := UserMessage(rejected); got != "login failed: Invalid credentials" {
		t.Errorf("UserMessage(rejected) = %q", got)
	}
}

func TestRemoteError_Predicates(t *testing.T) {
	e := &RemoteError{StatusCode: 401}
	if e.Unreachable() || !e.Rejected() || !e.Unauthorized() {
		t.Errorf("401 predicates wrong: unreachable=%v rejected=%v unauthorized=%v",
			e.Unreachable(), e.Rejected(), e.Unauthorized())
	}

	malformed := &RemoteError{StatusCode: 200, Message: "bad body"}
	if malformed.Rejected() {
		t.Error("a 2xx with an undecodable body is not a rejection")
	}
	if got := UserMessage(malformed); !strings.HasPrefix(got, "invalid response from server") {
		t.Errorf("UserMessage(malformed) = %q", got)
	}
}

func TestValidationError_OrNil(t *testing.T) {
	var empty ValidationError
	if empty.OrNil() != nil {
		t.Error("OrNil() on empty ValidationError should be nil")
	}

	v := &ValidationError{}
	v.Add("title", "must be at least 3 characters")
	v.Add("description", "is required")
	err := v.OrNil()
	if err == nil {
		t.Fatal("OrNil() should return the error when issues exist")
	}
	want := "invalid input: title must be at least 3 characters; description is required"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

// TestFatal tests the Fatal function using exec helper process
func TestFatal(t *testing.T) {
	if os.Getenv("GO_TEST_FATAL") == "1" {
		Fatal(errors.New("test error"))
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=^TestFatal$")
	cmd.Env = append(os.Environ(), "GO_TEST_FATAL=1")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if e, ok := err.(*exec.ExitError); ok && !e.Success() {
		if e.ExitCode() != 1 {
			t.Errorf("Fatal() exit code = %d, want 1", e.ExitCode())
		}
		stderrStr := stderr.String()
		if !strings.Contains(stderrStr, "Error: test error") {
			t.Errorf("Fatal() stderr = %q, want to contain %q", stderrStr, "Error: test error")
		}
	} else {
		t.Errorf("Fatal() did not exit with error: %v", err)
	}
}

// TestFatal_NilError tests that Fatal does nothing when passed a nil error
func TestFatal_NilError(t *testing.T) {
	if os.Getenv("GO_TEST_FATAL_NIL") == "1" {
		Fatal(nil)
		os.Exit(0)
	}

	cmd := exec.Command(os.Args[0], "-test.run=^TestFatal_NilError$")
	cmd.Env = append(os.Environ(), "GO_TEST_FATAL_NIL=1")

	if err := cmd.Run(); err != nil {
		t.Errorf("Fatal(nil) should not exit, but got error: %v", err)
	}
}
