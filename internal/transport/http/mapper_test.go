package http

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/vovakirdan/wirechat-relay/internal/core"
	"github.com/vovakirdan/wirechat-relay/internal/proto"
)

func TestInboundToCommand(t *testing.T) {
	tests := []struct {
		name     string
		inbound  proto.Inbound
		wantKind core.CommandKind
		wantRoom string
		wantText string
		wantErr  bool
	}{
		{
			name:     "create room",
			inbound:  proto.Inbound{Event: proto.InboundCreateRoom},
			wantKind: core.CommandCreateRoom,
		},
		{
			name:     "join normalizes code",
			inbound:  proto.Inbound{Event: proto.InboundJoinRoom, Data: json.RawMessage(`" ab12cd "`)},
			wantKind: core.CommandJoinRoom,
			wantRoom: "AB12CD",
		},
		{
			name:    "join with object payload",
			inbound: proto.Inbound{Event: proto.InboundJoinRoom, Data: json.RawMessage(`{"roomCode":"AB12CD"}`)},
			wantErr: true,
		},
		{
			name:     "send message",
			inbound:  proto.Inbound{Event: proto.InboundSendMessage, Data: json.RawMessage(`{"roomCode":"ab12cd","message":"hi"}`)},
			wantKind: core.CommandSendMessage,
			wantRoom: "AB12CD",
			wantText: "hi",
		},
		{
			name:    "send message missing payload",
			inbound: proto.Inbound{Event: proto.InboundSendMessage},
			wantErr: true,
		},
		{
			name:    "unknown",
			inbound: proto.Inbound{Event: "leave-room"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, protoErr := inboundToCommand(tt.inbound)
			if tt.wantErr {
				if protoErr == nil || protoErr.Code != core.ErrCodeBadRequest {
					t.Fatalf("expected bad_request, got %+v", protoErr)
				}
				return
			}
			if protoErr != nil {
				t.Fatalf("unexpected error: %+v", protoErr)
			}
			if cmd.Kind != tt.wantKind || cmd.Room != tt.wantRoom || cmd.Content != tt.wantText {
				t.Fatalf("unexpected command: %+v", cmd)
			}
		})
	}
}

func TestOutboundFromEventPayloads(t *testing.T) {
	ts := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	msg := core.Message{ID: "m1", Room: "AB12CD", Sender: "s1", Content: "hi", Timestamp: ts}

	tests := []struct {
		name  string
		event *core.Event
		want  string
	}{
		{"room created", &core.Event{Kind: core.EventRoomCreated, Room: "AB12CD"},
			`{"event":"room-created","data":"AB12CD"}`},
		{"joined empty room", &core.Event{Kind: core.EventJoinedRoom, Room: "AB12CD"},
			`{"event":"joined-room","data":{"roomCode":"AB12CD","messages":[]}}`},
		{"user joined", &core.Event{Kind: core.EventUserJoined, Count: 2},
			`{"event":"user-joined","data":2}`},
		{"user left to zero", &core.Event{Kind: core.EventUserLeft, Count: 0},
			`{"event":"user-left","data":0}`},
		{"new message", &core.Event{Kind: core.EventNewMessage, Message: msg},
			`{"event":"new-message","data":{"id":"m1","content":"hi","sender":"s1","timestamp":"2024-05-01T10:00:00Z"}}`},
		{"error", &core.Event{Kind: core.EventError, Error: &core.CoreError{Code: core.ErrCodeRoomFull, Message: "Room is full"}},
			`{"event":"error","data":"Room is full","error":{"code":"room_full","msg":"Room is full"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(outboundFromEvent(tt.event))
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			if string(got) != tt.want {
				t.Fatalf("got %s\nwant %s", got, tt.want)
			}
		})
	}
}
