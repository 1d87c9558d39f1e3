package mapping

import "sync"

// Store holds the live profile. Readers always get a complete copy, writers replace
// or edit it under the lock and subscribers get the latest value.
type Store struct {
	mutex       sync.RWMutex
	profile     Profile
	subscribers []chan Profile
}

func NewStore(p Profile) *Store {
	return &Store{profile: p}
}

func (s *Store) Load() Profile {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.profile
}

func (s *Store) Set(p Profile) {
	s.Update(func(dst *Profile) {
		*dst = p
	})
}

// Update applies edit to a copy of the profile and swaps it in.
func (s *Store) Update(edit func(p *Profile)) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	next := s.profile
	edit(&next)
	s.profile = next

	// notify never blocks, sending under the lock keeps subscribers in update order
	for _, c := range s.subscribers {
		notify(c, next)
	}
}

// Subscribe returns a channel receiving the profile after every change.
// Slow receivers only see the most recent value.
func (s *Store) Subscribe() <-chan Profile {
	c := make(chan Profile, 1)
	s.mutex.Lock()
	s.subscribers = append(s.subscribers, c)
	s.mutex.Unlock()
	return c
}

func notify(c chan Profile, p Profile) {
	for {
		select {
		case c <- p:
			return
		default:
		}
		select {
		case <-c:
		default:
		}
	}
}
