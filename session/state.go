package session

import "github.com/zeropapel/zeropapel-go/users"

// Status classifies the session. It starts at StatusLoading and moves
// between StatusAuthenticated and StatusAnonymous for the lifetime of
// the process; there is no terminal state.
type Status int

const (
	StatusLoading Status = iota
	StatusAuthenticated
	StatusAnonymous
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusAuthenticated:
		return "authenticated"
	case StatusAnonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

// Snapshot is the consumer-facing view of the session published on
// every committed transition.
type Snapshot struct {
	Status   Status
	User     *users.User
	LoggedIn bool
}

// Result is the outcome of a network-backed session operation. Errors
// never escape the session boundary; they are folded into a Result
// and, where required, a state transition.
type Result struct {
	OK      bool
	User    *users.User
	Message string
}
