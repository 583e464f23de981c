package providers

import (
	"context"

	"codeberg.org/algopatterns/gameinteractive/internal/codec"
	"codeberg.org/algopatterns/gameinteractive/internal/resource"
)

// getActiveParticipantsParams mirrors the getActiveParticipants wire
// params.
type getActiveParticipantsParams struct {
	Since int64 `json:"since"`
}

// ParticipantService is the participant provider and ready handshake.
type ParticipantService struct {
	sender Sender
}

// NewParticipantService constructs a participant provider over sender.
func NewParticipantService(sender Sender) *ParticipantService {
	return &ParticipantService{sender: sender}
}

// GetAllParticipants returns every participant connected to the
// integration.
func (s *ParticipantService) GetAllParticipants(ctx context.Context) ([]resource.Participant, error) {
	raw, err := s.sender.Send(ctx, codec.MethodGetAllParticipants, nil, false)
	if err != nil {
		return nil, err
	}
	return decodeMany(raw, "participants", codec.DecodeParticipant)
}

// GetActiveParticipants returns participants whose last input arrived
// after sinceEpochMs.
func (s *ParticipantService) GetActiveParticipants(ctx context.Context, sinceEpochMs int64) ([]resource.Participant, error) {
	params := getActiveParticipantsParams{Since: sinceEpochMs}
	raw, err := s.sender.Send(ctx, codec.MethodGetActiveParticipants, params, false)
	if err != nil {
		return nil, err
	}
	return decodeMany(raw, "participants", codec.DecodeParticipant)
}

// Update pushes bulk edits (group reassignment, disable/enable, meta) for
// participants.
func (s *ParticipantService) Update(ctx context.Context, participants ...resource.Participant) ([]resource.Participant, error) {
	wire, err := encodeMany(participants, codec.EncodeParticipant)
	if err != nil {
		return nil, err
	}
	params := map[string]any{"participants": wire}
	raw, err := s.sender.Send(ctx, codec.MethodUpdateParticipants, params, false)
	if err != nil {
		return nil, err
	}
	return decodeMany(raw, "participants", codec.DecodeParticipant)
}

// readyParams mirrors the ready wire params: a single boolean flag.
type readyParams struct {
	IsReady bool `json:"isReady"`
}

// Ready sets the integration's readiness; the server only routes
// participant input once ready(true) has been acknowledged.
func (s *ParticipantService) Ready(ctx context.Context, isReady bool) error {
	_, err := s.sender.Send(ctx, codec.MethodReady, readyParams{IsReady: isReady}, false)
	return err
}
