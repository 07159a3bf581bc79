package services

import (
	"fmt"
	"sync"

	"github.com/singhastra/microfeedx/models"
)

// profileSet is the in-memory ProfileStore shared across service tests.
type profileSet struct {
	mu       sync.Mutex
	profiles map[string]models.Profile
	byName   map[string]string
}

func newProfileSet(ids ...string) *profileSet {
	s := &profileSet{profiles: map[string]models.Profile{}, byName: map[string]string{}}
	for _, id := range ids {
		s.put(models.Profile{ID: id, Username: "user_" + id})
	}
	return s
}

func (s *profileSet) put(p models.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.ID] = p
	s.byName[p.Username] = p.ID
}

func (s *profileSet) CreateProfile(p *models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.byName[p.Username]; taken {
		return fmt.Errorf("duplicate username: %w", ErrDuplicate)
	}
	s.profiles[p.ID] = *p
	s.byName[p.Username] = p.ID
	return nil
}

func (s *profileSet) GetProfile(id string) (models.Profile, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[id]
	return p, ok, nil
}

func (s *profileSet) GetProfileByUsername(username string) (models.Profile, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byName[username]
	if !ok {
		return models.Profile{}, false, nil
	}
	return s.profiles[id], true, nil
}

func (s *profileSet) ProfileExists(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.profiles[id]
	return ok, nil
}
