package users

import "sync"

// Store holds users in insertion order. Ids come from a counter that
// only moves forward.
type Store struct {
	mu      sync.RWMutex
	users   []User
	counter int
}

func NewStore() *Store {
	return &Store{users: make([]User, 0)}
}

// List returns a copy of all users in insertion order.
func (s *Store) List() []User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]User, len(s.users))
	copy(out, s.users)
	return out
}

func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

func (s *Store) GetByID(id int) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (s *Store) Create(in CreateInput) User {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counter++
	u := User{
		ID:      s.counter,
		Name:    in.Name,
		Surname: in.Surname,
		Age:     in.Age,
	}
	s.users = append(s.users, u)
	return u
}
