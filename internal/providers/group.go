package providers

import (
	"context"

	"codeberg.org/algopatterns/gameinteractive/internal/codec"
	"codeberg.org/algopatterns/gameinteractive/internal/ierrors"
	"codeberg.org/algopatterns/gameinteractive/internal/resource"
)

// deleteGroupParams mirrors the deleteGroup wire params.
type deleteGroupParams struct {
	GroupID         string `json:"groupID"`
	ReassignGroupID string `json:"reassignGroupID"`
}

// GroupService is the group provider, a mirror of SceneService.
type GroupService struct {
	sender Sender
}

// NewGroupService constructs a group provider over sender.
func NewGroupService(sender Sender) *GroupService {
	return &GroupService{sender: sender}
}

// GetGroups returns every group known to the integration.
func (s *GroupService) GetGroups(ctx context.Context) ([]resource.Group, error) {
	raw, err := s.sender.Send(ctx, codec.MethodGetGroups, nil, false)
	if err != nil {
		return nil, err
	}
	return decodeMany(raw, "groups", codec.DecodeGroup)
}

// Create sends groups to the server and returns them back with any
// server-filled defaults applied.
func (s *GroupService) Create(ctx context.Context, groups ...resource.Group) ([]resource.Group, error) {
	wire, err := encodeMany(groups, codec.EncodeGroup)
	if err != nil {
		return nil, err
	}
	params := map[string]any{"groups": wire}
	raw, err := s.sender.Send(ctx, codec.MethodCreateGroups, params, false)
	if err != nil {
		return nil, err
	}
	return decodeMany(raw, "groups", codec.DecodeGroup)
}

// Update pushes field changes for groups and returns the updated set.
func (s *GroupService) Update(ctx context.Context, groups ...resource.Group) ([]resource.Group, error) {
	wire, err := encodeMany(groups, codec.EncodeGroup)
	if err != nil {
		return nil, err
	}
	params := map[string]any{"groups": wire}
	raw, err := s.sender.Send(ctx, codec.MethodUpdateGroups, params, false)
	if err != nil {
		return nil, err
	}
	return decodeMany(raw, "groups", codec.DecodeGroup)
}

// Delete removes groupID, reassigning its participants to reassignGroupID
// (defaulting to "default"). Deleting "default" is rejected locally with
// 4018, the same tie-break SceneService.Delete applies.
func (s *GroupService) Delete(ctx context.Context, groupID string, reassignGroupID string) (bool, error) {
	if reassignGroupID == "" {
		reassignGroupID = resource.DefaultGroupID
	}
	if groupID == resource.DefaultGroupID {
		return false, &ierrors.ReplyError{Code: 4018, Message: "cannot delete the default group"}
	}

	params := deleteGroupParams{GroupID: groupID, ReassignGroupID: reassignGroupID}
	raw, err := s.sender.Send(ctx, codec.MethodDeleteGroup, params, false)
	if err != nil {
		return false, err
	}
	return decodeSuccess(raw)
}
