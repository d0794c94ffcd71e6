package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	apperrors "quizpanel/pkg/errors"

	"github.com/gorilla/websocket"
)

type staticScores struct {
	board *Scoreboard
}

func (s staticScores) GetFriendsScores(_ context.Context, uniqueID string) (*Scoreboard, error) {
	if uniqueID != s.board.Session.UniqueID {
		return nil, apperrors.NotFound("Session not found")
	}
	return s.board, nil
}

func startHub(t *testing.T, scores ScoreSource) (*Hub, string) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(scores)
	go hub.Run(ctx)

	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.RegisterClient(conn, r.URL.Query().Get("session"))
	}))
	t.Cleanup(func() {
		server.Close()
		cancel()
	})
	return hub, "ws" + strings.TrimPrefix(server.URL, "http")
}

func dialHub(t *testing.T, url, uniqueID string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url+"/?session="+uniqueID, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn, expect string) json.RawMessage {
	t.Helper()
	var msg struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if msg.Type != expect {
		t.Fatalf("expected %s, got %s", expect, msg.Type)
	}
	return msg.Payload
}

func TestHubSyncsScoresOnConnect(t *testing.T) {
	board := &Scoreboard{
		Session: ScoreboardSession{UniqueID: "ROOM0001", UserName: "Host", QuizTitle: "Capitals"},
		Friends: []FriendScore{{FriendName: "Alice", TotalAnswers: 1, CorrectAnswers: 1, ScorePercentage: 100}},
	}
	_, url := startHub(t, staticScores{board: board})

	conn := dialHub(t, url, "room0001")
	payload := readMessage(t, conn, MessageScoresSync)

	var got Scoreboard
	if err := json.Unmarshal(payload, &got); err != nil {
		t.Fatalf("decode scoreboard: %v", err)
	}
	if got.Session.UniqueID != "ROOM0001" || len(got.Friends) != 1 || got.Friends[0].FriendName != "Alice" {
		t.Fatalf("unexpected scoreboard %+v", got)
	}

	if err := conn.WriteJSON(Message{Type: "ping"}); err != nil {
		t.Fatalf("write ping: %v", err)
	}
	readMessage(t, conn, MessagePong)

	if err := conn.WriteJSON(Message{Type: "request_scores"}); err != nil {
		t.Fatalf("write request: %v", err)
	}
	readMessage(t, conn, MessageScoresSync)
}

func TestHubReportsUnknownSession(t *testing.T) {
	board := &Scoreboard{Session: ScoreboardSession{UniqueID: "ROOM0001"}}
	_, url := startHub(t, staticScores{board: board})

	conn := dialHub(t, url, "OTHER001")
	readMessage(t, conn, MessageError)
}

func TestHubBroadcastsOnlyToSessionWatchers(t *testing.T) {
	board := &Scoreboard{Session: ScoreboardSession{UniqueID: "ROOM0001"}, Friends: []FriendScore{}}
	other := &Scoreboard{Session: ScoreboardSession{UniqueID: "ROOM0002"}, Friends: []FriendScore{}}
	hub, url := startHub(t, multiScores{board, other})

	watcher := dialHub(t, url, "ROOM0001")
	bystander := dialHub(t, url, "ROOM0002")
	readMessage(t, watcher, MessageScoresSync)
	readMessage(t, bystander, MessageScoresSync)

	if n := hub.ConnectedCount("room0001"); n != 1 {
		t.Fatalf("expected 1 watcher, got %d", n)
	}

	hub.NotifyFriendJoined(context.Background(), "ROOM0001", "Alice")
	payload := readMessage(t, watcher, MessageFriendJoined)
	if !strings.Contains(string(payload), "Alice") {
		t.Fatalf("unexpected payload %s", payload)
	}
	readMessage(t, watcher, MessageScoresUpdated)

	// The other session only sees its own events
	if sent := hub.BroadcastToSession("ROOM0002", MessageFriendRemoved, map[string]string{"friend_name": "Bob"}); sent != 1 {
		t.Fatalf("expected 1 delivery, got %d", sent)
	}
	readMessage(t, bystander, MessageFriendRemoved)
}

func TestHubUnregistersClosedClients(t *testing.T) {
	board := &Scoreboard{Session: ScoreboardSession{UniqueID: "ROOM0001"}, Friends: []FriendScore{}}
	hub, url := startHub(t, staticScores{board: board})

	conn := dialHub(t, url, "ROOM0001")
	readMessage(t, conn, MessageScoresSync)
	conn.Close()

	deadline := time.Now().Add(5 * time.Second)
	for hub.ConnectedCount("ROOM0001") != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("client was not unregistered")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

type multiScores []*Scoreboard

func (m multiScores) GetFriendsScores(_ context.Context, uniqueID string) (*Scoreboard, error) {
	for _, b := range m {
		if b.Session.UniqueID == uniqueID {
			return b, nil
		}
	}
	return nil, apperrors.NotFound("Session not found")
}
