// Package codec serializes and deserializes the wire frames: a single
// JSON object or a JSON array of objects, each branching on "type" into a
// method or reply packet. It injects the discriminator fields (type, seq)
// on the way out and propagates a Scene's sceneID into its embedded
// controls on the way in, since the server omits it there.
package codec

import (
	"encoding/json"
	"fmt"

	"codeberg.org/algopatterns/gameinteractive/internal/ierrors"
)

// PacketType is the wire-level discriminator.
type PacketType string

const (
	PacketTypeMethod PacketType = "method"
	PacketTypeReply  PacketType = "reply"
)

// ReplyErrorBody is the structured error shape a ReplyPacket carries when
// the request failed.
type ReplyErrorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Path    string `json:"path,omitempty"`
}

// MethodPacket is an outbound or inbound method call.
type MethodPacket struct {
	ID      uint32            `json:"id"`
	Method  InteractiveMethod `json:"method"`
	Params  json.RawMessage   `json:"params,omitempty"`
	Discard bool              `json:"discard,omitempty"`
	Seq     uint32            `json:"seq,omitempty"`
}

// wireMethodPacket mirrors MethodPacket with the "type" discriminator and
// a raw string for Method, so unknown wire methods round-trip through
// MethodUnknown instead of failing json.Unmarshal.
type wireMethodPacket struct {
	Type    PacketType      `json:"type"`
	ID      uint32          `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
	Discard bool            `json:"discard,omitempty"`
	Seq     uint32          `json:"seq,omitempty"`
}

// ReplyPacket is a reply to a previously sent MethodPacket. Exactly one of
// Result or Error is set.
type ReplyPacket struct {
	ID     uint32          `json:"id"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *ReplyErrorBody `json:"error,omitempty"`
	Seq    uint32          `json:"seq,omitempty"`
}

type wireReplyPacket struct {
	Type   PacketType      `json:"type"`
	ID     uint32          `json:"id"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *ReplyErrorBody `json:"error,omitempty"`
	Seq    uint32          `json:"seq,omitempty"`
}

// EncodeMethod serializes a MethodPacket as a canonical frame: unset
// optional fields (Params, Discard when false, Seq when 0) are simply
// omitted by the struct tags above, never emitted as null.
func EncodeMethod(p MethodPacket) ([]byte, error) {
	wire := wireMethodPacket{
		Type:    PacketTypeMethod,
		ID:      p.ID,
		Method:  string(p.Method),
		Params:  p.Params,
		Discard: p.Discard,
		Seq:     p.Seq,
	}
	return json.Marshal(wire)
}

// EncodeReply serializes a ReplyPacket the same way EncodeMethod does.
// The core never originates these (it doesn't implement the server side),
// but keeping it symmetric lets tests round-trip a reply without a second
// bespoke marshaler.
func EncodeReply(p ReplyPacket) ([]byte, error) {
	wire := wireReplyPacket{
		Type:   PacketTypeReply,
		ID:     p.ID,
		Result: p.Result,
		Error:  p.Error,
		Seq:    p.Seq,
	}
	return json.Marshal(wire)
}

// Frame is one decoded element of an inbound text frame: exactly one of
// Method or Reply is non-nil.
type Frame struct {
	Method *MethodPacket
	Reply  *ReplyPacket
}

// typeProbe reads just the "type" discriminator, to decide which wire
// struct the rest of the element unmarshals into.
type typeProbe struct {
	Type PacketType `json:"type"`
}

// Decode parses a single inbound WebSocket text frame, which is either a
// single packet object or a JSON array of packet objects.
// Elements with an unrecognized "type" are dropped with a warning
// (returned as a ProtocolError in the errs slice) rather than aborting the
// whole frame — a malformed sibling element must not take down its
// neighbors.
func Decode(raw []byte) (frames []Frame, errs []error) {
	trimmed := firstNonSpace(raw)
	if trimmed == '[' {
		var elements []json.RawMessage
		if err := json.Unmarshal(raw, &elements); err != nil {
			return nil, []error{&ierrors.ProtocolError{Detail: fmt.Sprintf("decode frame array: %v", err)}}
		}
		for _, el := range elements {
			f, err := decodeElement(el)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			frames = append(frames, f)
		}
		return frames, errs
	}

	f, err := decodeElement(raw)
	if err != nil {
		return nil, []error{err}
	}
	return []Frame{f}, nil
}

func decodeElement(raw json.RawMessage) (Frame, error) {
	var probe typeProbe
	if err := json.Unmarshal(raw, &probe); err != nil {
		return Frame{}, &ierrors.ProtocolError{Detail: fmt.Sprintf("decode packet type: %v", err)}
	}

	switch probe.Type {
	case PacketTypeMethod:
		var wire wireMethodPacket
		if err := json.Unmarshal(raw, &wire); err != nil {
			return Frame{}, &ierrors.ProtocolError{Detail: fmt.Sprintf("decode method packet: %v", err)}
		}
		return Frame{Method: &MethodPacket{
			ID:      wire.ID,
			Method:  ParseMethod(wire.Method),
			Params:  wire.Params,
			Discard: wire.Discard,
			Seq:     wire.Seq,
		}}, nil
	case PacketTypeReply:
		var wire wireReplyPacket
		if err := json.Unmarshal(raw, &wire); err != nil {
			return Frame{}, &ierrors.ProtocolError{Detail: fmt.Sprintf("decode reply packet: %v", err)}
		}
		return Frame{Reply: &ReplyPacket{
			ID:     wire.ID,
			Result: wire.Result,
			Error:  wire.Error,
			Seq:    wire.Seq,
		}}, nil
	default:
		return Frame{}, &ierrors.ProtocolError{Detail: fmt.Sprintf("unknown packet type %q", probe.Type)}
	}
}

func firstNonSpace(raw []byte) byte {
	for _, b := range raw {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		default:
			return b
		}
	}
	return 0
}
