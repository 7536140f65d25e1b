package rooms

import (
	"sync"
	"testing"
)

func TestNewStore(t *testing.T) {
	s := NewStore()
	if s == nil {
		t.Fatal("NewStore() returned nil")
	}
	if len(s.List()) != 0 {
		t.Error("new store should have no rooms")
	}
}

func TestStore_Create(t *testing.T) {
	s := NewStore()
	room, err := s.Create(1, "The Crown", "/logos/crown.png", 7)
	if err != nil {
		t.Fatal(err)
	}
	if room == nil {
		t.Fatal("Create() returned nil room")
	}
	if len(room.Code) != codeLength {
		t.Errorf("room code length = %d, want %d", len(room.Code), codeLength)
	}
	if room.HostUserID != 1 {
		t.Errorf("HostUserID = %d, want 1", room.HostUserID)
	}
	if room.VenueID != 7 {
		t.Errorf("VenueID = %d, want 7", room.VenueID)
	}
	if room.State() != StateLobby {
		t.Errorf("state = %q, want %q", room.State(), StateLobby)
	}
	if room.CurrentIndex() != -1 {
		t.Errorf("currentIndex = %d, want -1", room.CurrentIndex())
	}
	if room.Hub == nil {
		t.Error("room Hub should not be nil")
	}
	title, logo := room.Branding()
	if title != "The Crown" || logo != "/logos/crown.png" {
		t.Errorf("branding = %q, %q", title, logo)
	}
}

func TestStore_Get(t *testing.T) {
	s := NewStore()
	room, _ := s.Create(1, "", "", 0)

	got := s.Get(room.Code)
	if got == nil {
		t.Fatal("Get() returned nil for existing room")
	}
	if got.Code != room.Code {
		t.Errorf("Code = %q, want %q", got.Code, room.Code)
	}

	if s.Get("ZZZZZZ") != nil {
		t.Error("Get() should return nil for nonexistent room")
	}
}

func TestStore_List(t *testing.T) {
	s := NewStore()
	s.Create(1, "", "", 0)
	s.Create(2, "", "", 0)

	list := s.List()
	if len(list) != 2 {
		t.Errorf("List() returned %d rooms, want 2", len(list))
	}
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s := NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Create(1, "", "", 0)
		}()
	}
	wg.Wait()

	if got := len(s.List()); got != 50 {
		t.Errorf("concurrent creates: got %d rooms, want 50", got)
	}
}

func TestStore_CodesUniqueAcrossManyRooms(t *testing.T) {
	s := NewStore()
	seen := make(map[string]bool, 10000)

	for i := 0; i < 10000; i++ {
		room, err := s.Create(1, "", "", 0)
		if err != nil {
			t.Fatalf("Create() #%d error: %v", i, err)
		}
		if seen[room.Code] {
			t.Fatalf("duplicate live room code %q at creation #%d", room.Code, i)
		}
		seen[room.Code] = true
	}
}

func TestStore_RoomIsolation(t *testing.T) {
	s := NewStore()
	room1, _ := s.Create(1, "", "", 0)
	room2, _ := s.Create(2, "", "", 0)

	room1.AddTeam("Alice's Army")
	room2.AddTeam("Bob's Brigade")

	if got := len(room1.Roster()); got != 1 {
		t.Errorf("room1 roster = %d teams, want 1", got)
	}
	if got := len(room2.Roster()); got != 1 {
		t.Errorf("room2 roster = %d teams, want 1", got)
	}
	if room1.Roster()[0].Name != "Alice's Army" {
		t.Error("room1 should only have Alice's Army")
	}
}
