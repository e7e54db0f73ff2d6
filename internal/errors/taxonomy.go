package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/julianstephens/habitsync/internal/constants"
)

// Kind names one branch of the closed error taxonomy.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindAuth
	KindRemote
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindRemote:
		return "remote"
	case KindNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// FieldIssue is one rejected input field.
type FieldIssue struct {
	Field   string
	Message string
}

// ValidationError is detected on the client before any network call.
type ValidationError struct {
	Issues []FieldIssue
}

// NewValidationError builds a ValidationError with a single issue.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Issues: []FieldIssue{{Field: field, Message: message}}}
}

// Add appends an issue.
func (e *ValidationError) Add(field, message string) {
	e.Issues = append(e.Issues, FieldIssue{Field: field, Message: message})
}

// HasIssues reports whether any field was rejected.
func (e *ValidationError) HasIssues() bool {
	return e != nil && len(e.Issues) > 0
}

// OrNil returns e as an error, or nil when there are no issues.
func (e *ValidationError) OrNil() error {
	if !e.HasIssues() {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		parts[i] = fmt.Sprintf("%s %s", issue.Field, issue.Message)
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

// RemoteError is a failed call to the remote service: a transport failure
// (StatusCode 0) or a non-2xx response.
type RemoteError struct {
	Op         string
	Method     string
	Path       string
	StatusCode int
	Message    string
	Err        error
}

func (e *RemoteError) Error() string {
	if e.Unreachable() {
		return fmt.Sprintf("%s: %s %s %s: %v", e.Op, constants.MsgUnreachable, e.Method, e.Path, e.Err)
	}
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("%s: %s %s returned %d: %s", e.Op, e.Method, e.Path, e.StatusCode, msg)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// Unreachable reports a transport failure: the server never answered.
func (e *RemoteError) Unreachable() bool { return e.StatusCode == 0 }

// Rejected reports that the server answered with a non-2xx status.
func (e *RemoteError) Rejected() bool {
	return e.StatusCode != 0 && (e.StatusCode < 200 || e.StatusCode >= 300)
}

// Unauthorized reports that the server refused the session token.
func (e *RemoteError) Unauthorized() bool { return e.StatusCode == http.StatusUnauthorized }

// AuthError is a rejected or failed login/signup.
type AuthError struct {
	Op      string
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s failed: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s failed: %s", e.Op, e.Message)
}

func (e *AuthError) Unwrap() error { return e.Err }

// Unreachable reports whether the auth call never reached the server.
func (e *AuthError) Unreachable() bool {
	var remote *RemoteError
	return stderrors.As(e.Err, &remote) && remote.Unreachable()
}

// NotFoundError reports a habit id absent from the local cache.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("habit %q not found", e.ID)
}

// Classify maps err onto the taxonomy.
func Classify(err error) Kind {
	var (
		validation *ValidationError
		auth       *AuthError
		remote     *RemoteError
		notFound   *NotFoundError
	)
	switch {
	case err == nil:
		return KindUnknown
	case stderrors.As(err, &validation):
		return KindValidation
	case stderrors.As(err, &auth):
		return KindAuth
	case stderrors.As(err, &notFound):
		return KindNotFound
	case stderrors.As(err, &remote):
		return KindRemote
	default:
		return KindUnknown
	}
}

// UserMessage renders err for display, separating "could not reach server"
// from "server rejected the request".
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var (
		validation *ValidationError
		auth       *AuthError
		remote     *RemoteError
		notFound   *NotFoundError
	)
	switch {
	case stderrors.As(err, &validation):
		return validation.Error()
	case stderrors.As(err, &auth):
		if auth.Unreachable() {
			return fmt.Sprintf("%s failed: %s", auth.Op, constants.MsgUnreachable)
		}
		return fmt.Sprintf("%s failed: %s", auth.Op, auth.Message)
	case stderrors.As(err, &notFound):
		return notFound.Error()
	case stderrors.As(err, &remote):
		return remoteMessage(remote)
	default:
		return err.Error()
	}
}

func remoteMessage(e *RemoteError) string {
	switch {
	case e.Unreachable():
		return constants.MsgUnreachable
	case e.Unauthorized():
		return fmt.Sprintf("%s: session expired or revoked (%s)", constants.MsgRejected, constants.MsgLoginRequired)
	case !e.Rejected():
		return fmt.Sprintf("invalid response from server: %s", e.Message)
	case e.Message != "":
		return fmt.Sprintf("%s: %s", constants.MsgRejected, e.Message)
	default:
		return fmt.Sprintf("%s (status %d)", constants.MsgRejected, e.StatusCode)
	}
}
