package booking

import "sync"

// inflightSet tracks identities with a pending operation so that two calls
// for the same booking, room or payment cannot race each other. Distinct
// identities proceed concurrently.
type inflightSet struct {
	pending sync.Map
}

// acquire marks the identity as pending. Returns false if an operation for
// it is already in flight.
func (s *inflightSet) acquire(id string) bool {
	_, loaded := s.pending.LoadOrStore(id, struct{}{})
	return !loaded
}

func (s *inflightSet) release(id string) {
	s.pending.Delete(id)
}
