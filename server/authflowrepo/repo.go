package authflowrepo

import "time"

// AuthFlowState is what the login redirect needs to remember until the callback.
type AuthFlowState struct {
	CodeVerifier string
	Nonce        string
	ReturnURL    string
	CreatedAt    time.Time
}

type Repo interface {
	Upsert(state string, authState *AuthFlowState) error
	// Take returns the state and removes it; a state can be redeemed once.
	Take(state string) (*AuthFlowState, error)
	Purge(olderThan time.Time) int
}
