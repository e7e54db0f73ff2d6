package api

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	apperrors "github.com/julianstephens/habitsync/internal/errors"
	"github.com/julianstephens/habitsync/internal/models"
	"github.com/julianstephens/habitsync/internal/testutil/fakeapi"
)

type staticToken string

func (t staticToken) Token() string { return string(t) }

func newFake(t *testing.T) (*fakeapi.Server, *Client) {
	t.Helper()
	srv := fakeapi.New()
	t.Cleanup(srv.Close)
	return srv, NewClient(srv.URL, 5*time.Second)
}

func TestAuthGateway_LoginSendsNoBearer(t *testing.T) {
	srv, client := newFake(t)
	userID := srv.AddUser("alice", "alice@example.com", "pw")

	resp, err := NewAuthGateway(client).Login(context.Background(), models.LoginRequest{Username: "alice", Password: "pw"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if resp.Token == "" {
		t.Error("Login() returned empty token")
	}
	if resp.UserID != userID {
		t.Errorf("Login() UserID = %q, want %q", resp.UserID, userID)
	}

	rec, ok := srv.LastRequest(http.MethodPost, "/login")
	if !ok {
		t.Fatal("no /login request recorded")
	}
	if rec.Authorization != "" {
		t.Errorf("login carried Authorization header %q", rec.Authorization)
	}
	if rec.RequestID == "" {
		t.Error("login carried no request id")
	}
}

func TestAuthGateway_LoginRejected(t *testing.T) {
	srv, client := newFake(t)
	srv.AddUser("alice", "alice@example.com", "pw")

	_, err := NewAuthGateway(client).Login(context.Background(), models.LoginRequest{Username: "alice", Password: "wrong"})

	var remote *apperrors.RemoteError
	if !stderrors.As(err, &remote) {
		t.Fatalf("Login() error = %v, want *RemoteError", err)
	}
	if remote.StatusCode != http.StatusUnauthorized {
		t.Errorf("StatusCode = %d, want 401", remote.StatusCode)
	}
	if remote.Message != "Invalid credentials" {
		t.Errorf("Message = %q, want %q", remote.Message, "Invalid credentials")
	}
}

func TestAuthGateway_SignupConflict(t *testing.T) {
	srv, client := newFake(t)
	srv.AddUser("alice", "alice@example.com", "pw")

	_, err := NewAuthGateway(client).Signup(context.Background(), models.SignupRequest{
		Username: "alice",
		Email:    "other@example.com",
		Password: "pw",
	})

	var remote *apperrors.RemoteError
	if !stderrors.As(err, &remote) || remote.StatusCode != http.StatusConflict {
		t.Fatalf("Signup() error = %v, want 409 RemoteError", err)
	}
}

func TestHabitGateway_AttachesBearer(t *testing.T) {
	srv, client := newFake(t)
	userID := srv.AddUser("alice", "alice@example.com", "pw")
	token := fakeapi.TokenFor(userID, time.Hour)
	srv.AddHabit(userID, "Read", "Read twenty pages", models.FrequencyDaily)

	habits, err := NewHabitGateway(client, staticToken(token)).List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(habits) != 1 || habits[0].Title != "Read" {
		t.Errorf("List() = %+v, want one habit titled Read", habits)
	}

	rec, _ := srv.LastRequest(http.MethodGet, "/habits")
	if rec.Authorization != "Bearer "+token {
		t.Errorf("Authorization = %q, want bearer token", rec.Authorization)
	}
}

func TestHabitGateway_EmptyTokenIsUnauthorized(t *testing.T) {
	srv, client := newFake(t)

	_, err := NewHabitGateway(client, staticToken("")).List(context.Background())

	var remote *apperrors.RemoteError
	if !stderrors.As(err, &remote) || !remote.Unauthorized() {
		t.Fatalf("List() error = %v, want 401 RemoteError", err)
	}
	rec, _ := srv.LastRequest(http.MethodGet, "/habits")
	if rec.Authorization != "" {
		t.Errorf("Authorization = %q, want none", rec.Authorization)
	}
}

func TestHabitGateway_ListEmptyIsNonNil(t *testing.T) {
	srv, client := newFake(t)
	userID := srv.AddUser("bob", "bob@example.com", "pw")

	habits, err := NewHabitGateway(client, staticToken(fakeapi.TokenFor(userID, time.Hour))).List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if habits == nil || len(habits) != 0 {
		t.Errorf("List() = %#v, want empty non-nil slice", habits)
	}
}

func TestHabitGateway_CRUD(t *testing.T) {
	srv, client := newFake(t)
	userID := srv.AddUser("alice", "alice@example.com", "pw")
	gw := NewHabitGateway(client, staticToken(fakeapi.TokenFor(userID, time.Hour)))
	ctx := context.Background()

	created, err := gw.Create(ctx, models.HabitCreateRequest{
		Title:       "Meditate",
		Description: "Ten minutes of quiet",
		Frequency:   models.FrequencyDaily,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.ID == "" || created.OwnerID != userID {
		t.Errorf("Create() = %+v, want server id and owner", created)
	}

	title := "Meditate daily"
	updated, err := gw.Update(ctx, created.ID, models.HabitUpdateRequest{Title: &title})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Title != title || updated.Description != created.Description {
		t.Errorf("Update() = %+v", updated)
	}

	rec, _ := srv.LastRequest(http.MethodPut, "/habits/"+created.ID)
	var sent map[string]interface{}
	if err := json.Unmarshal(rec.Body, &sent); err != nil {
		t.Fatalf("decode update body: %v", err)
	}
	if _, ok := sent["description"]; ok {
		t.Errorf("update body %s carried an unset field", rec.Body)
	}

	entry, err := gw.LogCompletion(ctx, created.ID, models.LogCompletionRequest{Date: "2024-05-01", Status: true})
	if err != nil {
		t.Fatalf("LogCompletion() error = %v", err)
	}
	if entry.HabitID != created.ID || entry.Day() != "2024-05-01" || !entry.Status {
		t.Errorf("LogCompletion() = %+v", entry)
	}

	progress, err := gw.Progress(ctx, created.ID)
	if err != nil {
		t.Fatalf("Progress() error = %v", err)
	}
	if progress.TotalDays != 1 || progress.CompletedDays != 1 || progress.CompletionPercentage != 100 {
		t.Errorf("Progress() = %+v", progress)
	}

	if err := gw.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if got := srv.Habits(userID); len(got) != 0 {
		t.Errorf("server still holds %d habits after delete", len(got))
	}
}

func TestHabitGateway_UpdateUnknownIsNotFound(t *testing.T) {
	srv, client := newFake(t)
	userID := srv.AddUser("alice", "alice@example.com", "pw")
	gw := NewHabitGateway(client, staticToken(fakeapi.TokenFor(userID, time.Hour)))

	title := "Anything"
	_, err := gw.Update(context.Background(), "missing", models.HabitUpdateRequest{Title: &title})

	var remote *apperrors.RemoteError
	if !stderrors.As(err, &remote) || remote.StatusCode != http.StatusNotFound {
		t.Fatalf("Update() error = %v, want 404 RemoteError", err)
	}
	if remote.Message != "Habit not found" {
		t.Errorf("Message = %q", remote.Message)
	}
}

func TestClient_ErrorBodies(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		contentType string
		body        string
		wantMessage string
	}{
		{"json string", http.StatusBadRequest, "application/json", `"Invalid date"`, "Invalid date"},
		{"message field", http.StatusConflict, "application/json", `{"message":"already exists"}`, "already exists"},
		{"error field", http.StatusForbidden, "application/json", `{"error":"forbidden"}`, "forbidden"},
		{"plain text", http.StatusInternalServerError, "text/plain", "boom", "boom"},
		{"empty", http.StatusBadGateway, "text/plain", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", tt.contentType)
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			err := NewClient(srv.URL, time.Second).do(context.Background(), request{
				op:     "get thing",
				method: http.MethodGet,
				path:   "/call",
			}, nil)

			var remote *apperrors.RemoteError
			if !stderrors.As(err, &remote) {
				t.Fatalf("do() error = %v, want *RemoteError", err)
			}
			if remote.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", remote.StatusCode, tt.status)
			}
			if remote.Message != tt.wantMessage {
				t.Errorf("Message = %q, want %q", remote.Message, tt.wantMessage)
			}
			if !remote.Rejected() || remote.Unreachable() {
				t.Errorf("Rejected() = %v, Unreachable() = %v", remote.Rejected(), remote.Unreachable())
			}
		})
	}
}

func TestClient_LongPlainTextIsTruncated(t *testing.T) {
	got := serverMessage([]byte(strings.Repeat("x", 500)))
	if len(got) != 203 || !strings.HasSuffix(got, "...") {
		t.Errorf("serverMessage() length = %d, want 203 with ellipsis", len(got))
	}
}

func TestClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewAuthGateway(NewClient(url, time.Second)).Login(context.Background(), models.LoginRequest{Username: "a", Password: "b"})

	var remote *apperrors.RemoteError
	if !stderrors.As(err, &remote) {
		t.Fatalf("Login() error = %v, want *RemoteError", err)
	}
	if !remote.Unreachable() {
		t.Errorf("Unreachable() = false, status %d", remote.StatusCode)
	}
	if got := apperrors.UserMessage(err); got != "could not reach server" {
		t.Errorf("UserMessage() = %q", got)
	}
}

func TestClient_InvalidJSONOnSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	_, err := NewHabitGateway(NewClient(srv.URL, time.Second), staticToken("t")).List(context.Background())

	var remote *apperrors.RemoteError
	if !stderrors.As(err, &remote) {
		t.Fatalf("List() error = %v, want *RemoteError", err)
	}
	if remote.StatusCode != http.StatusOK || remote.Rejected() || remote.Unreachable() {
		t.Errorf("got status %d rejected=%v unreachable=%v", remote.StatusCode, remote.Rejected(), remote.Unreachable())
	}
}

func TestClient_NoContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	err := NewHabitGateway(NewClient(srv.URL, time.Second), staticToken("t")).Delete(context.Background(), "abc")
	if err != nil {
		t.Errorf("Delete() error = %v", err)
	}
}

func TestHabitPath_EscapesID(t *testing.T) {
	if got := habitPath("a/b c", "/log"); got != "/habits/a%2Fb%20c/log" {
		t.Errorf("habitPath() = %q", got)
	}
}

func TestClient_Timeout(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	err := NewClient(srv.URL, 50*time.Millisecond).do(context.Background(), request{
		op:     "slow call",
		method: http.MethodGet,
		path:   "/slow",
	}, nil)

	var remote *apperrors.RemoteError
	if !stderrors.As(err, &remote) || !remote.Unreachable() {
		t.Fatalf("do() error = %v, want unreachable RemoteError", err)
	}
}

func TestClient_TruncatesOnRuneBoundary(t *testing.T) {
	got := serverMessage([]byte("a" + strings.Repeat("é", 150)))
	if !utf8.ValidString(got) {
		t.Errorf("serverMessage() cut a rune: %q", got)
	}
	if !strings.HasSuffix(got, "...") || len(got) > 203 {
		t.Errorf("serverMessage() length = %d, want at most 203 with ellipsis", len(got))
	}
}

func TestHabitGateway_EmptySuccessBodyIsRemoteError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	gw := NewHabitGateway(NewClient(srv.URL, time.Second), staticToken("t"))
	ctx := context.Background()
	name := "Stretch"

	calls := []struct {
		name string
		call func() error
	}{
		{"create", func() error {
			_, err := gw.Create(ctx, models.HabitCreateRequest{Title: "Stretch", Description: "Ten minutes of yoga", Frequency: models.FrequencyDaily})
			return err
		}},
		{"update", func() error {
			_, err := gw.Update(ctx, "h1", models.HabitUpdateRequest{Title: &name})
			return err
		}},
		{"log completion", func() error {
			_, err := gw.LogCompletion(ctx, "h1", models.LogCompletionRequest{Date: "2024-01-15", Status: true})
			return err
		}},
	}

	for _, tt := range calls {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			var remote *apperrors.RemoteError
			if !stderrors.As(err, &remote) {
				t.Fatalf("error = %v, want *RemoteError", err)
			}
			if remote.StatusCode != http.StatusCreated || remote.Rejected() || remote.Unreachable() {
				t.Errorf("got status %d rejected=%v unreachable=%v", remote.StatusCode, remote.Rejected(), remote.Unreachable())
			}
		})
	}
}

func TestHabitGateway_HabitWithoutIDIsRemoteError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"title":"Stretch","description":"Ten minutes of yoga","frequency":"daily"}`))
	}))
	defer srv.Close()

	name := "Stretch"
	_, err := NewHabitGateway(NewClient(srv.URL, time.Second), staticToken("t")).
		Update(context.Background(), "h1", models.HabitUpdateRequest{Title: &name})

	var remote *apperrors.RemoteError
	if !stderrors.As(err, &remote) {
		t.Fatalf("Update() error = %v, want *RemoteError", err)
	}
	if remote.StatusCode != http.StatusOK || !strings.Contains(remote.Message, "no habit id") {
		t.Errorf("StatusCode = %d, Message = %q", remote.StatusCode, remote.Message)
	}
}
