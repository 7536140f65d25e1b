package rooms

import (
	"errors"
	"sort"

	"github.com/google/uuid"

	"trivianight/internal/quiz"
)

// Rejection reasons double as wire-level reason strings, so their text is
// part of the client contract.
var (
	ErrNoQuiz           = errors.New("no quiz set")
	ErrNoMoreQuestions  = errors.New("no more questions")
	ErrNoActiveQuestion = errors.New("no active question")
	ErrAlreadyRevealed  = errors.New("already revealed")
	ErrLate             = errors.New("late")
	ErrAlreadyAnswered  = errors.New("already answered")
	ErrInvalidOption    = errors.New("invalid option")
	ErrUnknownTeam      = errors.New("unknown team")
)

// QuestionStart describes a newly asked question. Correctness is never part
// of it; the answer index stays server-side until reveal.
type QuestionStart struct {
	Index      int
	QuestionID string
	Text       string
	Options    []string
	ImageURL   string
	EndAt      int64
}

type TeamScore struct {
	TeamID string `json:"teamId"`
	Name   string `json:"name"`
	Score  int    `json:"score"`
}

type RevealResult struct {
	QuestionID   string
	CorrectIndex int
	Counts       []int
	Leaderboard  []TeamScore
}

type AnswerResult struct {
	QuestionID  string
	MsRemaining int64
	Counts      []int
	Answered    int
	TeamsTotal  int
}

// SetQuiz selects a quiz and resets the session to the lobby. Answer
// buckets from a previously played quiz are intentionally kept; they stay
// addressable by their question ids.
func (r *Room) SetQuiz(q *quiz.Quiz) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.quizID = q.ID
	r.currentIndex = -1
	r.state = StateLobby
}

// SetBrand updates venue branding; valid in any state.
func (r *Room) SetBrand(title, logo string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.venueTitle = title
	r.venueLogo = logo
}

// StartQuestion moves the room into the asking state. A nil index advances
// to the next question; an explicit index jumps to it. An out-of-range
// index fails without touching state or the current index. timeLimitMs <= 0
// means the question's own limit.
func (r *Room) StartQuestion(q *quiz.Quiz, index *int, timeLimitMs int, now int64) (*QuestionStart, error) {
	if q == nil {
		return nil, ErrNoQuiz
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.currentIndex + 1
	if index != nil {
		idx = *index
	}
	if idx < 0 || idx >= len(q.Questions) {
		return nil, ErrNoMoreQuestions
	}

	question := q.Questions[idx]
	limit := timeLimitMs
	if limit <= 0 {
		limit = question.TimeLimitMs
	}

	r.currentIndex = idx
	r.questionEndAt = now + int64(limit)
	r.state = StateAsking
	if _, ok := r.answers[question.ID]; !ok {
		r.answers[question.ID] = make(map[string]*Answer)
	}

	return &QuestionStart{
		Index:      idx,
		QuestionID: question.ID,
		Text:       question.Text,
		Options:    question.Options,
		ImageURL:   question.ImageURL,
		EndAt:      r.questionEndAt,
	}, nil
}

// Lock closes the current question to new answers. Lateness is still judged
// by the wall-clock deadline; locking only moves the state machine on.
func (r *Room) Lock(q *quiz.Quiz) (questionID string, err error) {
	if q == nil {
		return "", ErrNoQuiz
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateAsking || r.currentIndex < 0 || r.currentIndex >= len(q.Questions) {
		return "", ErrNoActiveQuestion
	}
	r.state = StateLocked
	return q.Questions[r.currentIndex].ID, nil
}

// Reveal tallies the current question's bucket and credits correct answers.
// It refuses to run twice for the same question: outside asking/locked it
// fails without touching any score.
func (r *Room) Reveal(q *quiz.Quiz) (*RevealResult, error) {
	if q == nil {
		return nil, ErrNoQuiz
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.currentIndex < 0 || r.currentIndex >= len(q.Questions) {
		return nil, ErrNoActiveQuestion
	}
	if r.state != StateAsking && r.state != StateLocked {
		return nil, ErrAlreadyRevealed
	}

	question := q.Questions[r.currentIndex]
	bucket := r.answers[question.ID]

	counts := make([]int, len(question.Options))
	for _, a := range bucket {
		counts[a.Option]++
		if a.Option == question.Answer {
			if team, ok := r.teams[a.TeamID]; ok {
				team.Score += Score(true, int64(question.TimeLimitMs), a.MsRemaining)
			}
		}
	}

	r.state = StateRevealed
	return &RevealResult{
		QuestionID:   question.ID,
		CorrectIndex: question.Answer,
		Counts:       counts,
		Leaderboard:  r.leaderboardLocked(),
	}, nil
}

// Finish ends the session and returns the top three teams by score.
func (r *Room) Finish() []TeamScore {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.state = StateFinished
	board := r.leaderboardLocked()
	if len(board) > 3 {
		board = board[:3]
	}
	return board
}

// SubmitAnswer records one team's answer to the current question, at most
// once per team per question.
func (r *Room) SubmitAnswer(q *quiz.Quiz, teamID string, option int, now int64) (*AnswerResult, error) {
	if q == nil {
		return nil, ErrNoQuiz
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.currentIndex < 0 || r.currentIndex >= len(q.Questions) {
		return nil, ErrNoActiveQuestion
	}
	question := q.Questions[r.currentIndex]

	if r.state != StateAsking || now > r.questionEndAt {
		return nil, ErrLate
	}
	if _, ok := r.teams[teamID]; !ok {
		return nil, ErrUnknownTeam
	}
	if option < 0 || option >= len(question.Options) {
		return nil, ErrInvalidOption
	}

	bucket := r.answers[question.ID]
	if bucket == nil {
		bucket = make(map[string]*Answer)
		r.answers[question.ID] = bucket
	}
	if _, ok := bucket[teamID]; ok {
		return nil, ErrAlreadyAnswered
	}

	remaining := r.questionEndAt - now
	if remaining < 0 {
		remaining = 0
	}
	bucket[teamID] = &Answer{
		TeamID:      teamID,
		QuestionID:  question.ID,
		Option:      option,
		SubmittedAt: now,
		MsRemaining: remaining,
	}

	counts := make([]int, len(question.Options))
	for _, a := range bucket {
		counts[a.Option]++
	}

	return &AnswerResult{
		QuestionID:  question.ID,
		MsRemaining: remaining,
		Counts:      counts,
		Answered:    len(bucket),
		TeamsTotal:  len(r.teams),
	}, nil
}

// BucketAnswer returns a team's stored answer for a question, if any.
func (r *Room) BucketAnswer(questionID, teamID string) (*Answer, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	bucket, ok := r.answers[questionID]
	if !ok {
		return nil, false
	}
	a, ok := bucket[teamID]
	return a, ok
}

// AddTeam creates a roster entry with a server-generated unique id.
func (r *Room) AddTeam(name string) *Team {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.joined++
	team := &Team{
		ID:        uuid.NewString(),
		Name:      name,
		joinOrder: r.joined,
	}
	r.teams[team.ID] = team
	return team
}

// RemoveTeam forgets a team entirely, score included.
func (r *Room) RemoveTeam(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.teams[id]; !ok {
		return false
	}
	delete(r.teams, id)
	return true
}

func (r *Room) Team(id string) (*Team, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.teams[id]
	return t, ok
}

// Roster lists teams in join order, for teams:update broadcasts.
func (r *Room) Roster() []Team {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := make([]*Team, 0, len(r.teams))
	for _, t := range r.teams {
		list = append(list, t)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].joinOrder < list[j].joinOrder })

	out := make([]Team, len(list))
	for i, t := range list {
		out[i] = *t
	}
	return out
}

// Leaderboard lists teams by score descending; ties keep join order.
func (r *Room) Leaderboard() []TeamScore {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.leaderboardLocked()
}

func (r *Room) leaderboardLocked() []TeamScore {
	list := make([]*Team, 0, len(r.teams))
	for _, t := range r.teams {
		list = append(list, t)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Score != list[j].Score {
			return list[i].Score > list[j].Score
		}
		return list[i].joinOrder < list[j].joinOrder
	})

	out := make([]TeamScore, len(list))
	for i, t := range list {
		out[i] = TeamScore{TeamID: t.ID, Name: t.Name, Score: t.Score}
	}
	return out
}
