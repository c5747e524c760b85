package http

import (
	"encoding/json"

	"github.com/vovakirdan/wirechat-relay/internal/core"
	"github.com/vovakirdan/wirechat-relay/internal/proto"
)

func badRequest(msg string) *proto.Error {
	return &proto.Error{Code: core.ErrCodeBadRequest, Msg: msg}
}

func inboundToCommand(inbound proto.Inbound) (*core.Command, *proto.Error) {
	switch inbound.Event {
	case proto.InboundCreateRoom:
		return &core.Command{Kind: core.CommandCreateRoom}, nil
	case proto.InboundJoinRoom:
		var code string
		if err := json.Unmarshal(inbound.Data, &code); err != nil {
			return nil, badRequest("roomCode must be a string")
		}
		if code = core.NormalizeRoomCode(code); code == "" {
			return nil, badRequest("roomCode is required")
		}
		return &core.Command{Kind: core.CommandJoinRoom, Room: code}, nil
	case proto.InboundSendMessage:
		var msg proto.SendMessageData
		if err := json.Unmarshal(inbound.Data, &msg); err != nil {
			return nil, badRequest("invalid send-message payload")
		}
		code := core.NormalizeRoomCode(msg.RoomCode)
		if code == "" {
			return nil, badRequest("roomCode is required")
		}
		return &core.Command{Kind: core.CommandSendMessage, Room: code, Content: msg.Message}, nil
	default:
		return nil, badRequest("unknown event")
	}
}

func messageFromCore(msg core.Message) proto.Message {
	return proto.Message{
		ID:        msg.ID,
		Content:   msg.Content,
		Sender:    msg.Sender,
		Timestamp: msg.Timestamp,
	}
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventRoomCreated:
		return proto.Outbound{Event: proto.OutboundRoomCreated, Data: event.Room}
	case core.EventJoinedRoom:
		messages := make([]proto.Message, 0, len(event.Messages))
		for _, msg := range event.Messages {
			messages = append(messages, messageFromCore(msg))
		}
		return proto.Outbound{
			Event: proto.OutboundJoinedRoom,
			Data:  proto.JoinedRoom{RoomCode: event.Room, Messages: messages},
		}
	case core.EventUserJoined:
		return proto.Outbound{Event: proto.OutboundUserJoined, Data: event.Count}
	case core.EventUserLeft:
		return proto.Outbound{Event: proto.OutboundUserLeft, Data: event.Count}
	case core.EventNewMessage:
		return proto.Outbound{Event: proto.OutboundNewMessage, Data: messageFromCore(event.Message)}
	case core.EventError:
		if event.Error == nil {
			return errorOutbound(&proto.Error{Code: "unknown", Msg: "unknown error"})
		}
		return errorOutbound(&proto.Error{Code: event.Error.Code, Msg: event.Error.Message})
	default:
		return errorOutbound(&proto.Error{Code: "unknown", Msg: "unknown event"})
	}
}

// errorOutbound carries the message both as data, for clients that only read
// the payload, and as a coded error.
func errorOutbound(e *proto.Error) proto.Outbound {
	return proto.Outbound{Event: proto.OutboundError, Data: e.Msg, Error: e}
}
