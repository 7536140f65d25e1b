package rooms

import (
	"fmt"
	"sync"
)

// Store is the registry of live rooms. Rooms live for the lifetime of the
// process; there is no eviction.
type Store struct {
	mu    sync.Mutex
	rooms map[string]*Room
}

func NewStore() *Store {
	return &Store{
		rooms: make(map[string]*Room),
	}
}

// Create registers a new room under a freshly generated code, regenerating
// on the (rare) collision with a live room.
func (s *Store) Create(hostUserID int, venueTitle, venueLogo string, venueID int) (*Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := 0; i < 10; i++ {
		code, err := GenerateCode()
		if err != nil {
			return nil, fmt.Errorf("generating room code: %w", err)
		}
		if _, exists := s.rooms[code]; exists {
			continue
		}

		room := newRoom(code, hostUserID, venueTitle, venueLogo, venueID)
		s.rooms[code] = room
		return room, nil
	}
	return nil, fmt.Errorf("failed to generate unique room code after 10 attempts")
}

func (s *Store) Get(code string) *Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rooms[code]
}

func (s *Store) List() []*Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]*Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		list = append(list, r)
	}
	return list
}
