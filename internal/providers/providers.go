// Package providers implements the four resource service providers: thin
// typed layers over the correlator that marshal resource values to wire
// params, issue one RPC (or one per scene, for controls), and decode the
// reply back into resource values. This package holds no local cache and
// no self-syncing resource objects; every call is a fresh round trip.
package providers

import (
	"context"
	"encoding/json"
	"fmt"

	"codeberg.org/algopatterns/gameinteractive/internal/codec"
	"codeberg.org/algopatterns/gameinteractive/internal/ierrors"
)

// Sender is the narrow correlator contract every provider needs.
type Sender interface {
	Send(ctx context.Context, method codec.InteractiveMethod, params any, discard bool) (json.RawMessage, error)
}

func decodeMany[T any](raw json.RawMessage, field string, decodeOne func(json.RawMessage) (T, error)) ([]T, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, &ierrors.ProtocolError{Detail: fmt.Sprintf("decode %s reply: %v", field, err)}
	}

	var elements []json.RawMessage
	if body, ok := envelope[field]; ok {
		if err := json.Unmarshal(body, &elements); err != nil {
			return nil, &ierrors.ProtocolError{Detail: fmt.Sprintf("decode %s array: %v", field, err)}
		}
	}

	out := make([]T, 0, len(elements))
	for _, el := range elements {
		v, err := decodeOne(el)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// booleanResult mirrors the {"success": bool} reply shape deleteScene and
// deleteGroup return.
type booleanResult struct {
	Success bool `json:"success"`
}

func decodeSuccess(raw json.RawMessage) (bool, error) {
	var result booleanResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return false, &ierrors.ProtocolError{Detail: fmt.Sprintf("decode success reply: %v", err)}
	}
	return result.Success, nil
}

func encodeMany[T any](items []T, encode func(T) ([]byte, error)) ([]json.RawMessage, error) {
	out := make([]json.RawMessage, 0, len(items))
	for _, item := range items {
		b, err := encode(item)
		if err != nil {
			return nil, err
		}
		out = append(out, json.RawMessage(b))
	}
	return out, nil
}
