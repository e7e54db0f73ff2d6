package constants

// User-facing messages shared by the CLI and TUI.
const (
	MsgUnreachable   = "could not reach server"
	MsgRejected      = "server rejected the request"
	MsgLoginRequired = "not logged in. Run 'habitsync login' to sign in"
	MsgLoggedOut     = "Logged out. Run 'habitsync login' to sign in again."
)
