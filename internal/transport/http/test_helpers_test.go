package http

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-relay/internal/config"
	"github.com/vovakirdan/wirechat-relay/internal/core"
	"github.com/vovakirdan/wirechat-relay/internal/proto"
)

// rawOutbound mirrors proto.Outbound with the payload left undecoded.
type rawOutbound struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
	Error *proto.Error    `json:"error"`
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Addr = ":0"
	cfg.ReadHeaderTimeout = time.Second
	cfg.ShutdownTimeout = time.Second
	return cfg
}

func startTestServer(t *testing.T, cfg config.Config) (*httptest.Server, *core.Hub) {
	t.Helper()

	hub := core.NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)

	disabledLogger := zerolog.New(nil)
	server := NewServer(hub, &cfg, &disabledLogger)

	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)

	return ts, hub
}

func wsURL(ts *httptest.Server) string {
	return strings.Replace(ts.URL, "http", "ws", 1) + "/ws"
}

// testConn is a dialed websocket with its assigned session id.
type testConn struct {
	t         *testing.T
	ctx       context.Context
	conn      *websocket.Conn
	sessionID string
}

func dial(t *testing.T, ctx context.Context, url string) *testConn {
	t.Helper()

	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "done") })

	tc := &testConn{t: t, ctx: ctx, conn: conn}
	var session proto.Session
	tc.expect(proto.OutboundSession, &session)
	if session.SessionID == "" {
		t.Fatalf("empty session id")
	}
	tc.sessionID = session.SessionID
	return tc
}

func (c *testConn) send(event string, data any) {
	c.t.Helper()

	inbound := proto.Inbound{Event: event}
	if data != nil {
		payload, err := json.Marshal(data)
		if err != nil {
			c.t.Fatalf("marshal %s: %v", event, err)
		}
		inbound.Data = payload
	}
	if err := wsjson.Write(c.ctx, c.conn, inbound); err != nil {
		c.t.Fatalf("send %s: %v", event, err)
	}
}

func (c *testConn) read() rawOutbound {
	c.t.Helper()

	var out rawOutbound
	if err := wsjson.Read(c.ctx, c.conn, &out); err != nil {
		c.t.Fatalf("read outbound: %v", err)
	}
	return out
}

// expect reads the next frame, requires it to be event and decodes its data into v.
func (c *testConn) expect(event string, v any) rawOutbound {
	c.t.Helper()

	out := c.read()
	if out.Event != event {
		c.t.Fatalf("expected %s, got %s (%s)", event, out.Event, string(out.Data))
	}
	if v != nil {
		if err := json.Unmarshal(out.Data, v); err != nil {
			c.t.Fatalf("decode %s: %v", event, err)
		}
	}
	return out
}

func (c *testConn) createRoom() string {
	c.t.Helper()

	c.send(proto.InboundCreateRoom, nil)
	var code string
	c.expect(proto.OutboundRoomCreated, &code)
	return code
}

// join joins code and consumes joined-room plus the user-joined broadcast.
func (c *testConn) join(code string) (proto.JoinedRoom, int) {
	c.t.Helper()

	c.send(proto.InboundJoinRoom, code)
	var joined proto.JoinedRoom
	c.expect(proto.OutboundJoinedRoom, &joined)
	var count int
	c.expect(proto.OutboundUserJoined, &count)
	return joined, count
}
