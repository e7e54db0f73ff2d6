package cli

import (
	"fmt"
	"io"
	"sync"

	"github.com/julianstephens/habitsync/internal/constants"
)

// Navigator handles the post-logout "go to login" signal. By default it
// prints a hint; an interactive front end can take over with Redirect.
type Navigator struct {
	out io.Writer

	mu       sync.Mutex
	redirect func()
}

// NewNavigator creates a Navigator that prints to out.
func NewNavigator(out io.Writer) *Navigator {
	return &Navigator{out: out}
}

// ToLogin implements session.Navigator.
func (n *Navigator) ToLogin() {
	n.mu.Lock()
	redirect := n.redirect
	n.mu.Unlock()

	if redirect != nil {
		redirect()
		return
	}
	fmt.Fprintln(n.out, constants.MsgLoggedOut)
}

// Redirect routes ToLogin to fn until the returned restore func is called.
func (n *Navigator) Redirect(fn func()) (restore func()) {
	n.mu.Lock()
	prev := n.redirect
	n.redirect = fn
	n.mu.Unlock()

	return func() {
		n.mu.Lock()
		n.redirect = prev
		n.mu.Unlock()
	}
}
