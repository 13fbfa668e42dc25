package domain

// Actor is the principal attached to a request: either an authenticated
// account resolved from a bearer token, or Anonymous.
type Actor struct {
	ID            string
	Username      string
	IsAdmin       bool
	Authenticated bool
}

// Anonymous is the zero actor used when no valid credential was presented.
var Anonymous = Actor{}
