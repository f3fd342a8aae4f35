package credentials

// Pair holds the two opaque bearer credentials issued by the platform.
// Access authorizes ordinary API calls and is short-lived; Refresh is
// longer-lived and is only ever presented to the refresh endpoint.
// Either field may be empty.
type Pair struct {
	Access  string
	Refresh string
}

// Empty reports whether no credential at all is held.
func (p Pair) Empty() bool {
	return p.Access == "" && p.Refresh == ""
}

// Store persists the credential pair across process restarts. Writes
// must be visible to subsequent reads within the same process with no
// eventual-consistency window. Values are opaque strings; expiry is
// enforced by the server, not by the store.
type Store interface {
	Set(pair Pair) error
	Get() (Pair, error)
	Clear() error
}
