package session

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/coder/websocket"

	"trivianight/internal/hub"
	"trivianight/internal/quiz"
	"trivianight/internal/rooms"
)

// Gateway is the WebSocket entry point to the room hub. Each connection
// declares a role and room in its first message, then exchanges typed
// messages until it disconnects. Errors never cross a connection boundary:
// a misbehaving client only ever affects itself.
type Gateway struct {
	Rooms   *rooms.Store
	Catalog *quiz.Catalog

	now func() int64
}

func NewGateway(store *rooms.Store, catalog *quiz.Catalog) *Gateway {
	return &Gateway{
		Rooms:   store,
		Catalog: catalog,
		now:     func() int64 { return time.Now().UnixMilli() },
	}
}

// HandleWS upgrades the connection and runs its message loop to completion.
func (g *Gateway) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		log.Printf("[WS] Accept error: %v\n", err)
		return
	}

	ctx := r.Context()

	var init Inbound
	if err := readJSON(ctx, conn, &init); err != nil {
		conn.Close(websocket.StatusPolicyViolation, "invalid handshake")
		return
	}

	room, client, role, ok := g.register(ctx, conn, init)
	if !ok {
		return
	}
	defer g.cleanup(room, client)

	go client.WritePump(ctx)
	g.pushInit(room, client, role, init)

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			// Closed or broken connection; cleanup happens in the defer.
			return
		}
		var msg Inbound
		if err := json.Unmarshal(data, &msg); err != nil {
			room.Hub.Send(client, ErrorMsg{Type: "error", Message: "malformed message"})
			conn.Close(websocket.StatusUnsupportedData, "malformed message")
			return
		}
		g.dispatch(room, client, role, msg)
	}
}

// register validates the handshake and attaches the connection to its room.
// On failure it writes an error message directly and closes the connection.
func (g *Gateway) register(ctx context.Context, conn *websocket.Conn, init Inbound) (*rooms.Room, *hub.Client, hub.Role, bool) {
	fail := func(message string) (*rooms.Room, *hub.Client, hub.Role, bool) {
		writeJSON(ctx, conn, ErrorMsg{Type: "error", Message: message})
		conn.Close(websocket.StatusPolicyViolation, message)
		return nil, nil, "", false
	}

	role := hub.Role(init.Role)
	if role != hub.RoleHost && role != hub.RoleTeam && role != hub.RoleDisplay {
		return fail("invalid role")
	}
	if init.RoomID == "" {
		return fail("missing roomId")
	}
	room := g.Rooms.Get(init.RoomID)
	if room == nil {
		return fail("room not found")
	}

	client := hub.NewClient(conn)
	switch role {
	case hub.RoleHost:
		room.Hub.AddHost(client)
	case hub.RoleDisplay:
		room.Hub.AddDisplay(client)
	case hub.RoleTeam:
		name := init.TeamName
		if name == "" {
			name = "Team"
		}
		team := room.AddTeam(name)
		room.Hub.AddTeam(team.ID, client)
	}
	return room, client, role, true
}

// pushInit sends the role-appropriate initial state once the write pump is
// running.
func (g *Gateway) pushInit(room *rooms.Room, client *hub.Client, role hub.Role, init Inbound) {
	switch role {
	case hub.RoleHost:
		quizID, _ := room.QuizID()
		room.Hub.Send(client, RoomInit{
			Type:         "room:init",
			RoomID:       room.Code,
			State:        string(room.State()),
			QuizID:       quizID,
			CurrentIndex: room.CurrentIndex(),
			Teams:        room.Roster(),
		})
	case hub.RoleTeam:
		room.Hub.Broadcast(TeamsUpdate{Type: "teams:update", Teams: room.Roster()})
		teamID, _ := room.Hub.TeamID(client)
		room.Hub.Send(client, TeamJoined{Type: "team:joined", TeamID: teamID, RoomID: room.Code})
	case hub.RoleDisplay:
		title, logo := room.Branding()
		room.Hub.Send(client, Branding{Type: "branding", VenueTitle: title, VenueLogo: logo})
	}
}

// cleanup detaches the connection. A team connection takes its roster entry
// (and score) with it.
func (g *Gateway) cleanup(room *rooms.Room, client *hub.Client) {
	role, teamID := room.Hub.Remove(client)
	if role == hub.RoleTeam && room.RemoveTeam(teamID) {
		room.Hub.Broadcast(TeamsUpdate{Type: "teams:update", Teams: room.Roster()})
	}
}

// dispatch routes one inbound message. Unknown types are ignored so newer
// clients can talk to older servers.
func (g *Gateway) dispatch(room *rooms.Room, client *hub.Client, role hub.Role, msg Inbound) {
	switch msg.Type {
	case "host:set_quiz":
		if role == hub.RoleHost {
			g.handleSetQuiz(room, client, msg)
		}
	case "host:set_brand":
		if role == hub.RoleHost {
			room.SetBrand(msg.Title, msg.Logo)
			title, logo := room.Branding()
			room.Hub.Broadcast(Branding{Type: "branding", VenueTitle: title, VenueLogo: logo})
		}
	case "host:start_question":
		if role == hub.RoleHost {
			g.handleStartQuestion(room, client, msg)
		}
	case "host:lock":
		if role == hub.RoleHost {
			g.handleLock(room, client)
		}
	case "host:reveal":
		if role == hub.RoleHost {
			g.handleReveal(room, client)
		}
	case "host:finish":
		if role == hub.RoleHost {
			winners := room.Finish()
			out := make([]Winner, len(winners))
			for i, w := range winners {
				out[i] = Winner{Name: w.Name, Score: w.Score}
			}
			room.Hub.Broadcast(QuizFinished{Type: "quiz:finished", Winners: out})
		}
	case "team:answer":
		if role == hub.RoleTeam {
			g.handleAnswer(room, client, msg)
		}
	}
}

func (g *Gateway) handleSetQuiz(room *rooms.Room, client *hub.Client, msg Inbound) {
	if msg.QuizID == nil {
		room.Hub.Send(client, ErrorMsg{Type: "error", Message: "quiz not found"})
		return
	}
	q, ok := g.Catalog.Get(*msg.QuizID)
	if !ok {
		room.Hub.Send(client, ErrorMsg{Type: "error", Message: "quiz not found"})
		return
	}
	room.SetQuiz(q)
	room.Hub.Broadcast(QuizSet{Type: "quiz:set", QuizID: q.ID})
}

// currentQuiz resolves the room's quiz through the catalog. The room only
// holds the id; a quiz that has vanished from the catalog fails here
// explicitly instead of replaying stale questions.
func (g *Gateway) currentQuiz(room *rooms.Room, client *hub.Client) (*quiz.Quiz, bool) {
	qid, ok := room.QuizID()
	if !ok {
		room.Hub.Send(client, ErrorMsg{Type: "error", Message: rooms.ErrNoQuiz.Error()})
		return nil, false
	}
	q, ok := g.Catalog.Get(qid)
	if !ok {
		room.Hub.Send(client, ErrorMsg{Type: "error", Message: "quiz not found"})
		return nil, false
	}
	return q, true
}

func (g *Gateway) handleStartQuestion(room *rooms.Room, client *hub.Client, msg Inbound) {
	q, ok := g.currentQuiz(room, client)
	if !ok {
		return
	}
	start, err := room.StartQuestion(q, msg.Index, msg.TimeLimitMs, g.now())
	if err != nil {
		room.Hub.Send(client, ErrorMsg{Type: "error", Message: err.Error()})
		return
	}
	room.Hub.Broadcast(QuestionPrompt{
		Type:          "question:prompt",
		QuestionID:    start.QuestionID,
		Text:          start.Text,
		Options:       start.Options,
		ImageURL:      start.ImageURL,
		QuestionEndAt: start.EndAt,
	})
}

func (g *Gateway) handleLock(room *rooms.Room, client *hub.Client) {
	q, ok := g.currentQuiz(room, client)
	if !ok {
		return
	}
	questionID, err := room.Lock(q)
	if err != nil {
		room.Hub.Send(client, ErrorMsg{Type: "error", Message: err.Error()})
		return
	}
	room.Hub.Broadcast(QuestionLocked{Type: "question:locked", QuestionID: questionID})
}

func (g *Gateway) handleReveal(room *rooms.Room, client *hub.Client) {
	q, ok := g.currentQuiz(room, client)
	if !ok {
		return
	}
	result, err := room.Reveal(q)
	if err != nil {
		room.Hub.Send(client, ErrorMsg{Type: "error", Message: err.Error()})
		return
	}
	room.Hub.Broadcast(ResultsSummary{
		Type:         "results:summary",
		QuestionID:   result.QuestionID,
		CorrectIndex: result.CorrectIndex,
		Counts:       result.Counts,
		Leaderboard:  result.Leaderboard,
	})
}

func (g *Gateway) handleAnswer(room *rooms.Room, client *hub.Client, msg Inbound) {
	qid, ok := room.QuizID()
	if !ok {
		return
	}
	q, ok := g.Catalog.Get(qid)
	if !ok {
		return
	}
	teamID, ok := room.Hub.TeamID(client)
	if !ok {
		return
	}
	if msg.Option == nil {
		room.Hub.Send(client, AnswerRejected{Type: "answer:rejected", Reason: rooms.ErrInvalidOption.Error()})
		return
	}

	result, err := room.SubmitAnswer(q, teamID, *msg.Option, g.now())
	switch err {
	case nil:
	case rooms.ErrNoActiveQuestion, rooms.ErrUnknownTeam:
		// No question selected yet, or the team vanished mid-flight.
		return
	case rooms.ErrLate, rooms.ErrAlreadyAnswered, rooms.ErrInvalidOption:
		room.Hub.Send(client, AnswerRejected{Type: "answer:rejected", Reason: err.Error()})
		return
	default:
		room.Hub.Send(client, ErrorMsg{Type: "error", Message: err.Error()})
		return
	}

	room.Hub.Send(client, AnswerAccepted{Type: "answer:accepted", RemainingMs: result.MsRemaining})
	room.Hub.PushHosts(AnswersProgress{
		Type:       "answers:progress",
		QuestionID: result.QuestionID,
		Counts:     result.Counts,
		Answered:   result.Answered,
		TeamsTotal: result.TeamsTotal,
	})
}

func readJSON(ctx context.Context, conn *websocket.Conn, v any) error {
	_, data, err := conn.Read(ctx)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func writeJSON(ctx context.Context, conn *websocket.Conn, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = conn.Write(ctx, websocket.MessageText, data)
}
