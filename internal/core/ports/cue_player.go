package ports

// CuePlayer renders user-facing alert cues. The core decides which cue fires
// and when; the presentation layer decides what a cue looks or sounds like.
type CuePlayer interface {
	PlayUrgent()
	PlaySubtle()
}

// TokenSource yields the current session token and epoch. Async results must
// be discarded when the epoch observed at request start no longer matches.
type TokenSource interface {
	// Token returns the current access token, or false when no session exists.
	Token() (string, bool)

	// Epoch increases on every login, logout, and restore failure.
	Epoch() uint64
}
