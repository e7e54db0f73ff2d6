package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/julianstephens/habitsync/internal/constants"
)

func TestNavigator_PrintsHintByDefault(t *testing.T) {
	out := &bytes.Buffer{}
	nav := NewNavigator(out)

	nav.ToLogin()

	if got := strings.TrimSpace(out.String()); got != constants.MsgLoggedOut {
		t.Errorf("output = %q, want %q", got, constants.MsgLoggedOut)
	}
}

func TestNavigator_Redirect(t *testing.T) {
	out := &bytes.Buffer{}
	nav := NewNavigator(out)

	var redirected int
	restore := nav.Redirect(func() { redirected++ })
	nav.ToLogin()
	restore()
	nav.ToLogin()

	if redirected != 1 {
		t.Errorf("redirect called %d times, want 1", redirected)
	}
	if strings.Count(out.String(), constants.MsgLoggedOut) != 1 {
		t.Errorf("output = %q, want one hint after restore", out.String())
	}
}

func TestContext_Defaults(t *testing.T) {
	ctx := &Context{}
	if ctx.Ctx() == nil {
		t.Error("Ctx() = nil")
	}
	if ctx.Writer() == nil {
		t.Error("Writer() = nil")
	}
}
