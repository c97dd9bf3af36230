package service

import "bricklabels.dev/internal/protocol"

// commandError aborts a workflow with a protocol code and exactly one
// user-facing message. An empty message means abort silently.
type commandError struct {
	code string
	msg  string
}

func (e *commandError) Error() string {
	if e.msg == "" {
		return e.code
	}
	return e.code + ": " + e.msg
}

func cmdErr(code, msg string) *commandError {
	return &commandError{code: code, msg: msg}
}

var (
	errTimedOut = cmdErr(protocol.ErrTimedOut,
		"You did not interact with a brick in time. Please try again.")
	// A newer command from the same player took over the wait slot;
	// the abandoned workflow aborts without messaging the player.
	errSuperseded = cmdErr(protocol.ErrSuperseded, "")
	errWorldQuery = cmdErr(protocol.ErrWorldQuery,
		"Could not read brick data there. Please try again.")
)
