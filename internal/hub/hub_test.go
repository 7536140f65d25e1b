package hub

import (
	"encoding/json"
	"testing"
	"time"
)

type testMsg struct {
	Type string `json:"type"`
	Body string `json:"body,omitempty"`
}

func recv(t *testing.T, c *Client) testMsg {
	t.Helper()
	select {
	case data := <-c.Send:
		var got testMsg
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		return got
	case <-time.After(100 * time.Millisecond):
		t.Fatal("no message received")
		return testMsg{}
	}
}

func expectNothing(t *testing.T, c *Client) {
	t.Helper()
	select {
	case data := <-c.Send:
		t.Fatalf("unexpected message: %s", data)
	default:
	}
}

func TestHub_BroadcastReachesAllRoles(t *testing.T) {
	h := NewHub()
	host := NewClient(nil)
	team := NewClient(nil)
	display := NewClient(nil)

	h.AddHost(host)
	h.AddTeam("t1", team)
	h.AddDisplay(display)

	h.Broadcast(testMsg{Type: "branding", Body: "The Crown"})

	for _, c := range []*Client{host, team, display} {
		got := recv(t, c)
		if got.Type != "branding" || got.Body != "The Crown" {
			t.Fatalf("unexpected message: %+v", got)
		}
	}
}

func TestHub_PushHostsOnly(t *testing.T) {
	h := NewHub()
	host := NewClient(nil)
	team := NewClient(nil)
	display := NewClient(nil)

	h.AddHost(host)
	h.AddTeam("t1", team)
	h.AddDisplay(display)

	h.PushHosts(testMsg{Type: "answers:progress"})

	if got := recv(t, host); got.Type != "answers:progress" {
		t.Fatalf("host got: %+v", got)
	}
	expectNothing(t, team)
	expectNothing(t, display)
}

func TestHub_SendUnicast(t *testing.T) {
	h := NewHub()
	a := NewClient(nil)
	b := NewClient(nil)
	h.AddTeam("a", a)
	h.AddTeam("b", b)

	h.Send(a, testMsg{Type: "answer:accepted"})

	if got := recv(t, a); got.Type != "answer:accepted" {
		t.Fatalf("a got: %+v", got)
	}
	expectNothing(t, b)
}

func TestHub_TeamID(t *testing.T) {
	h := NewHub()
	c := NewClient(nil)
	h.AddTeam("t42", c)

	id, ok := h.TeamID(c)
	if !ok || id != "t42" {
		t.Errorf("TeamID() = %q, %v, want t42, true", id, ok)
	}

	if _, ok := h.TeamID(NewClient(nil)); ok {
		t.Error("TeamID() for unknown client should report false")
	}
}

func TestHub_Remove(t *testing.T) {
	h := NewHub()
	host := NewClient(nil)
	team := NewClient(nil)
	h.AddHost(host)
	h.AddTeam("t1", team)

	role, teamID := h.Remove(team)
	if role != RoleTeam || teamID != "t1" {
		t.Errorf("Remove() = %q, %q, want team, t1", role, teamID)
	}

	// Send channel should be closed.
	if _, ok := <-team.Send; ok {
		t.Error("removed client's Send should be closed")
	}

	hosts, teams, displays := h.Counts()
	if hosts != 1 || teams != 0 || displays != 0 {
		t.Errorf("Counts() = %d, %d, %d, want 1, 0, 0", hosts, teams, displays)
	}
}

func TestHub_RemoveUnattached(t *testing.T) {
	h := NewHub()
	role, teamID := h.Remove(NewClient(nil))
	if role != "" || teamID != "" {
		t.Errorf("Remove() on unattached client = %q, %q, want empty", role, teamID)
	}
}

func TestHub_BroadcastSkipsRemovedClient(t *testing.T) {
	h := NewHub()
	stays := NewClient(nil)
	leaves := NewClient(nil)
	h.AddTeam("stays", stays)
	h.AddTeam("leaves", leaves)

	h.Remove(leaves)
	h.Broadcast(testMsg{Type: "teams:update"})

	if got := recv(t, stays); got.Type != "teams:update" {
		t.Fatalf("remaining client got: %+v", got)
	}
	// The removed client's closed channel must not panic the broadcast and
	// must not receive anything.
	if _, ok := <-leaves.Send; ok {
		t.Error("removed client should not receive broadcasts")
	}
}

func TestHub_BroadcastDropsWhenFull(t *testing.T) {
	h := NewHub()
	c := &Client{Send: make(chan []byte, 1)}
	h.AddTeam("t1", c)

	c.Send <- []byte("filler")

	// Must not block; the message is dropped for the saturated client.
	h.Broadcast(testMsg{Type: "question:prompt"})

	if data := <-c.Send; string(data) != "filler" {
		t.Fatalf("expected filler, got: %s", data)
	}
	expectNothing(t, c)
}

func TestHub_BroadcastFailureIsolation(t *testing.T) {
	h := NewHub()
	dead := &Client{Send: make(chan []byte)}
	close(dead.Send)
	alive := NewClient(nil)

	h.AddTeam("dead", dead)
	h.AddTeam("alive", alive)

	// A closed recipient channel must not prevent delivery to the others.
	h.Broadcast(testMsg{Type: "question:locked"})

	if got := recv(t, alive); got.Type != "question:locked" {
		t.Fatalf("alive client got: %+v", got)
	}
}
