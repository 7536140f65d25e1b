package rooms

import (
	"sync"
	"time"

	"trivianight/internal/hub"
)

type State string

const (
	StateLobby    = State("lobby")
	StateAsking   = State("asking")
	StateLocked   = State("locked")
	StateRevealed = State("revealed")
	StateFinished = State("finished")
)

type Team struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Score int    `json:"score"`

	joinOrder int
}

type Answer struct {
	TeamID      string
	QuestionID  string
	Option      int
	SubmittedAt int64
	MsRemaining int64
}

// Room is one live trivia session. All mutable state is guarded by mu, and
// every operation is a single critical section: one inbound message is
// handled end-to-end before the next one touches the room.
type Room struct {
	Code       string
	HostUserID int
	VenueID    int
	CreatedAt  time.Time
	Hub        *hub.Hub

	mu            sync.Mutex
	quizID        int // 0 means no quiz selected
	state         State
	currentIndex  int
	questionEndAt int64
	venueTitle    string
	venueLogo     string
	teams         map[string]*Team
	answers       map[string]map[string]*Answer
	joined        int
}

func newRoom(code string, hostUserID int, venueTitle, venueLogo string, venueID int) *Room {
	return &Room{
		Code:         code,
		HostUserID:   hostUserID,
		VenueID:      venueID,
		CreatedAt:    time.Now(),
		Hub:          hub.NewHub(),
		state:        StateLobby,
		currentIndex: -1,
		venueTitle:   venueTitle,
		venueLogo:    venueLogo,
		teams:        make(map[string]*Team),
		answers:      make(map[string]map[string]*Answer),
	}
}

func (r *Room) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// QuizID returns the selected quiz id, or false when none is set.
func (r *Room) QuizID() (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.quizID, r.quizID != 0
}

func (r *Room) CurrentIndex() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.currentIndex
}

func (r *Room) QuestionEndAt() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.questionEndAt
}

func (r *Room) Branding() (title, logo string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.venueTitle, r.venueLogo
}
