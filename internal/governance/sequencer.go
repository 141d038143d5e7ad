package governance

import "sync/atomic"

// Sequencer guards list views against stale responses. Each re-fetch
// takes a token from Next before issuing its request; the response is
// applied only when Current(token) still holds, so a slow response to
// an older filter state can never overwrite a fresher one.
type Sequencer struct {
	generation atomic.Uint64
}

// Next issues the token for a new request, invalidating all earlier
// tokens.
func (s *Sequencer) Next() uint64 {
	return s.generation.Add(1)
}

// Current reports whether token is still the latest issued.
func (s *Sequencer) Current(token uint64) bool {
	return s.generation.Load() == token
}
