package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/vovakirdan/wirechat-relay/internal/proto"
)

// frame mirrors proto.Outbound with the payload left raw for decoding per event.
type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
	Error *proto.Error    `json:"error"`
}

func main() {
	if err := run(); err != nil {
		log.Printf("ws_chat: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:3000/ws", "WebSocket address")
	room := flag.String("room", "", "room code to join; empty creates a new room")
	token := flag.String("token", "", "JWT passed as ?token= when auth is enabled")
	flag.Parse()

	baseCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(baseCtx)
	defer cancel()

	url := *addr
	if *token != "" {
		url += "?token=" + *token
	}
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	if *room == "" {
		if err := wsjson.Write(ctx, conn, proto.Inbound{Event: proto.InboundCreateRoom}); err != nil {
			return fmt.Errorf("create room: %w", err)
		}
	} else if err := join(ctx, conn, *room); err != nil {
		return err
	}

	joined := make(chan string, 1)
	go func() {
		defer cancel()
		readLoop(ctx, conn, joined)
	}()

	var code string
	select {
	case code = <-joined:
	case <-ctx.Done():
		return nil
	}

	fmt.Printf("Connected to %s in room %s\n", *addr, code)
	fmt.Println("Type messages and press Enter to send. Ctrl+C to exit.")

	writeLoop(ctx, conn, code)
	return nil
}

func join(ctx context.Context, conn *websocket.Conn, code string) error {
	payload, err := json.Marshal(code)
	if err != nil {
		return fmt.Errorf("marshal join: %w", err)
	}
	if err := wsjson.Write(ctx, conn, proto.Inbound{Event: proto.InboundJoinRoom, Data: payload}); err != nil {
		return fmt.Errorf("join room: %w", err)
	}
	return nil
}

func readLoop(ctx context.Context, conn *websocket.Conn, joined chan<- string) {
	var self string
	for {
		var f frame
		if err := wsjson.Read(ctx, conn, &f); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return
			}
			log.Printf("read error: %v", err)
			return
		}

		switch f.Event {
		case proto.OutboundSession:
			var s proto.Session
			if err := json.Unmarshal(f.Data, &s); err == nil {
				self = s.SessionID
			}
		case proto.OutboundRoomCreated:
			var code string
			if err := json.Unmarshal(f.Data, &code); err != nil {
				log.Printf("unmarshal room-created: %v", err)
				continue
			}
			fmt.Printf("Created room %s, share this code with your peer\n", code)
			if err := join(ctx, conn, code); err != nil {
				log.Print(err)
				return
			}
		case proto.OutboundJoinedRoom:
			var evt proto.JoinedRoom
			if err := json.Unmarshal(f.Data, &evt); err != nil {
				log.Printf("unmarshal joined-room: %v", err)
				continue
			}
			for _, msg := range evt.Messages {
				printMessage(msg, self)
			}
			select {
			case joined <- evt.RoomCode:
			default:
			}
		case proto.OutboundUserJoined, proto.OutboundUserLeft:
			var count int
			if err := json.Unmarshal(f.Data, &count); err != nil {
				log.Printf("unmarshal %s: %v", f.Event, err)
				continue
			}
			fmt.Printf("* %s, %d in room\n", strings.ReplaceAll(f.Event, "-", " "), count)
		case proto.OutboundNewMessage:
			var msg proto.Message
			if err := json.Unmarshal(f.Data, &msg); err != nil {
				log.Printf("unmarshal new-message: %v", err)
				continue
			}
			printMessage(msg, self)
		case proto.OutboundError:
			if f.Error != nil {
				fmt.Printf("! %s (%s)\n", f.Error.Msg, f.Error.Code)
			} else {
				fmt.Printf("! %s\n", string(f.Data))
			}
		default:
			fmt.Printf("event=%s data=%s\n", f.Event, string(f.Data))
		}
	}
}

func printMessage(msg proto.Message, self string) {
	who := "peer"
	if msg.Sender == self {
		who = "you"
	}
	fmt.Printf("[%s] %s: %s\n", msg.Timestamp.Local().Format("15:04:05"), who, msg.Content)
}

func writeLoop(ctx context.Context, conn *websocket.Conn, room string) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			text := strings.TrimSpace(line)
			if text == "" {
				continue
			}

			payload, err := json.Marshal(proto.SendMessageData{RoomCode: room, Message: text})
			if err != nil {
				log.Printf("marshal msg: %v", err)
				return
			}
			if err := wsjson.Write(ctx, conn, proto.Inbound{Event: proto.InboundSendMessage, Data: payload}); err != nil {
				log.Printf("send error: %v", err)
				return
			}
		}
	}
}
