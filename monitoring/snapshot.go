package monitoring

import "sync"

// A RankSnapshot holds the state a rank published last. A published value is
// read by the server while the rank keeps working, so the rank must not
// change it after publishing.
type RankSnapshot struct {
	lock  sync.Mutex
	state any
}

// Publish replaces the state that the monitor reports.
func (s *RankSnapshot) Publish(state any) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.state = state
}

// Load returns the state published last, or nil if none was published.
func (s *RankSnapshot) Load() any {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.state
}
