package session

import "trivianight/internal/rooms"

// Inbound is the envelope for client messages, dispatched by Type. Pointer
// fields distinguish "absent" from zero values where the contract needs it.
type Inbound struct {
	Type        string `json:"type"`
	Role        string `json:"role,omitempty"`
	RoomID      string `json:"roomId,omitempty"`
	TeamName    string `json:"teamName,omitempty"`
	QuizID      *int   `json:"quizId,omitempty"`
	Title       string `json:"title,omitempty"`
	Logo        string `json:"logo,omitempty"`
	Index       *int   `json:"index,omitempty"`
	TimeLimitMs int    `json:"timeLimitMs,omitempty"`
	Option      *int   `json:"option,omitempty"`
}

type ErrorMsg struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type RoomInit struct {
	Type         string       `json:"type"`
	RoomID       string       `json:"roomId"`
	State        string       `json:"state"`
	QuizID       int          `json:"quizId,omitempty"`
	CurrentIndex int          `json:"currentIndex"`
	Teams        []rooms.Team `json:"teams"`
}

type TeamsUpdate struct {
	Type  string       `json:"type"`
	Teams []rooms.Team `json:"teams"`
}

type TeamJoined struct {
	Type   string `json:"type"`
	TeamID string `json:"teamId"`
	RoomID string `json:"roomId"`
}

type Branding struct {
	Type       string `json:"type"`
	VenueTitle string `json:"venueTitle"`
	VenueLogo  string `json:"venueLogo"`
}

type QuizSet struct {
	Type   string `json:"type"`
	QuizID int    `json:"quizId"`
}

type QuestionPrompt struct {
	Type          string   `json:"type"`
	QuestionID    string   `json:"questionId"`
	Text          string   `json:"text"`
	Options       []string `json:"options"`
	ImageURL      string   `json:"imageUrl"`
	QuestionEndAt int64    `json:"questionEndAt"`
}

type QuestionLocked struct {
	Type       string `json:"type"`
	QuestionID string `json:"questionId"`
}

type ResultsSummary struct {
	Type         string            `json:"type"`
	QuestionID   string            `json:"questionId"`
	CorrectIndex int               `json:"correctIndex"`
	Counts       []int             `json:"counts"`
	Leaderboard  []rooms.TeamScore `json:"leaderboard"`
}

type Winner struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

type QuizFinished struct {
	Type    string   `json:"type"`
	Winners []Winner `json:"winners"`
}

type AnswersProgress struct {
	Type       string `json:"type"`
	QuestionID string `json:"questionId"`
	Counts     []int  `json:"counts"`
	Answered   int    `json:"answered"`
	TeamsTotal int    `json:"teamsTotal"`
}

type AnswerAccepted struct {
	Type        string `json:"type"`
	RemainingMs int64  `json:"remainingMs"`
}

type AnswerRejected struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}
