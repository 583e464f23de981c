package providers

import (
	"context"

	"codeberg.org/algopatterns/gameinteractive/internal/codec"
	"codeberg.org/algopatterns/gameinteractive/internal/ierrors"
	"codeberg.org/algopatterns/gameinteractive/internal/resource"
)

// deleteSceneParams mirrors the deleteScene wire params.
type deleteSceneParams struct {
	SceneID         string `json:"sceneID"`
	ReassignSceneID string `json:"reassignSceneID"`
}

// SceneService is the scene provider.
type SceneService struct {
	sender Sender
}

// NewSceneService constructs a scene provider over sender.
func NewSceneService(sender Sender) *SceneService {
	return &SceneService{sender: sender}
}

// GetScenes returns every scene known to the integration.
func (s *SceneService) GetScenes(ctx context.Context) ([]resource.Scene, error) {
	raw, err := s.sender.Send(ctx, codec.MethodGetScenes, nil, false)
	if err != nil {
		return nil, err
	}
	return decodeMany(raw, "scenes", codec.DecodeScene)
}

// Create sends scenes to the server and returns them back with any
// server-filled defaults applied.
func (s *SceneService) Create(ctx context.Context, scenes ...resource.Scene) ([]resource.Scene, error) {
	wire, err := encodeMany(scenes, codec.EncodeScene)
	if err != nil {
		return nil, err
	}
	params := map[string]any{"scenes": wire}
	raw, err := s.sender.Send(ctx, codec.MethodCreateScenes, params, false)
	if err != nil {
		return nil, err
	}
	return decodeMany(raw, "scenes", codec.DecodeScene)
}

// Update pushes field changes for scenes and returns the updated set; the
// caller reconciles local objects via resource.SyncScene.
func (s *SceneService) Update(ctx context.Context, scenes ...resource.Scene) ([]resource.Scene, error) {
	wire, err := encodeMany(scenes, codec.EncodeScene)
	if err != nil {
		return nil, err
	}
	params := map[string]any{"scenes": wire}
	raw, err := s.sender.Send(ctx, codec.MethodUpdateScenes, params, false)
	if err != nil {
		return nil, err
	}
	return decodeMany(raw, "scenes", codec.DecodeScene)
}

// Delete removes sceneID, reassigning its participants and groups to
// reassignSceneID (defaulting to "default" when empty). Deleting "default"
// itself, or reassigning a scene to the one being deleted, are rejected
// locally with the server's documented codes 4018/4010 — failing fast
// here saves a round trip for a request the server would reject anyway.
func (s *SceneService) Delete(ctx context.Context, sceneID string, reassignSceneID string) (bool, error) {
	if reassignSceneID == "" {
		reassignSceneID = resource.DefaultSceneID
	}
	if sceneID == resource.DefaultSceneID {
		return false, &ierrors.ReplyError{Code: 4018, Message: "cannot delete the default scene"}
	}
	if reassignSceneID == sceneID {
		return false, &ierrors.ReplyError{Code: 4010, Message: "cannot reassign a scene to itself"}
	}

	params := deleteSceneParams{SceneID: sceneID, ReassignSceneID: reassignSceneID}
	raw, err := s.sender.Send(ctx, codec.MethodDeleteScene, params, false)
	if err != nil {
		return false, err
	}
	return decodeSuccess(raw)
}
