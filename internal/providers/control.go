package providers

import (
	"context"
	"encoding/json"

	"codeberg.org/algopatterns/gameinteractive/internal/codec"
	"codeberg.org/algopatterns/gameinteractive/internal/ierrors"
	"codeberg.org/algopatterns/gameinteractive/internal/logger"
	"codeberg.org/algopatterns/gameinteractive/internal/resource"
)

// deleteControlsParams mirrors the deleteControls wire params.
type deleteControlsParams struct {
	SceneID    string   `json:"sceneID"`
	ControlIDs []string `json:"controlIDs"`
}

// SceneCompletion reports the outcome of a scene-scoped control mutation:
// either the controls the server accepted for that scene, or the error the
// server (or local validation) returned for it. Create and Update return one
// of these per scene they touched, so a failure on one scene never erases
// the controls another scene already committed.
type SceneCompletion struct {
	SceneID  string
	Controls []resource.Control
	Err      error
}

// ControlService is the control provider. Unlike scenes and groups it has
// no single getControls RPC on the wire — the method catalog has none — so
// GetControls is implemented by fetching every scene and flattening their
// embedded controls.
type ControlService struct {
	sender Sender
	scenes *SceneService
}

// NewControlService constructs a control provider over sender, reusing a
// SceneService to implement GetControls' cross-scene aggregation.
func NewControlService(sender Sender) *ControlService {
	return &ControlService{sender: sender, scenes: NewSceneService(sender)}
}

// GetControls aggregates controls across every scene.
func (s *ControlService) GetControls(ctx context.Context) ([]resource.Control, error) {
	scenes, err := s.scenes.GetScenes(ctx)
	if err != nil {
		return nil, err
	}
	var out []resource.Control
	for _, scene := range scenes {
		out = append(out, scene.Controls...)
	}
	return out, nil
}

// groupBySceneID partitions controls by their SceneID, preserving the
// order controls first appear in within each group.
func groupBySceneID(controls []resource.Control) map[string][]resource.Control {
	bySceneID := make(map[string][]resource.Control)
	for _, c := range controls {
		bySceneID[c.SceneID] = append(bySceneID[c.SceneID], c)
	}
	return bySceneID
}

// Create groups controls by their SceneID and issues one createControls
// call per scene, since the wire protocol scopes control creation to a
// single scene per call. A control with no position set is never sent: the
// server rejects positionless controls outright, so this fails fast
// locally with PositionRequiredError before any network round trip. Every
// scene gets its own completion in the returned map: a failing scene
// reports its error there without discarding the controls a different
// scene already had accepted.
func (s *ControlService) Create(ctx context.Context, controls ...resource.Control) (map[string]SceneCompletion, error) {
	for _, c := range controls {
		if !c.HasAnyPosition() {
			return nil, &ierrors.PositionRequiredError{ControlID: c.ControlID}
		}
	}

	out := make(map[string]SceneCompletion)
	for sceneID, group := range groupBySceneID(controls) {
		out[sceneID] = s.createScene(ctx, sceneID, group)
	}
	return out, nil
}

func (s *ControlService) createScene(ctx context.Context, sceneID string, group []resource.Control) SceneCompletion {
	wire, err := encodeMany(group, codec.EncodeControl)
	if err != nil {
		return SceneCompletion{SceneID: sceneID, Err: err}
	}
	raw, err := s.sender.Send(ctx, codec.MethodCreateControls, map[string]any{
		"sceneID":  sceneID,
		"controls": wire,
	}, false)
	if err != nil {
		logger.Debug("createControls failed for scene", logger.AttrSceneID, sceneID, "error", err)
		return SceneCompletion{SceneID: sceneID, Err: err}
	}
	decoded, err := decodeMany(raw, "controls", func(el json.RawMessage) (resource.Control, error) {
		return codec.DecodeControl(el, sceneID)
	})
	if err != nil {
		return SceneCompletion{SceneID: sceneID, Err: err}
	}
	return SceneCompletion{SceneID: sceneID, Controls: decoded}
}

// Update behaves like Create, preserving the per-scene grouping and
// per-scene completion reporting.
func (s *ControlService) Update(ctx context.Context, controls ...resource.Control) (map[string]SceneCompletion, error) {
	out := make(map[string]SceneCompletion)
	for sceneID, group := range groupBySceneID(controls) {
		out[sceneID] = s.updateScene(ctx, sceneID, group)
	}
	return out, nil
}

func (s *ControlService) updateScene(ctx context.Context, sceneID string, group []resource.Control) SceneCompletion {
	wire, err := encodeMany(group, codec.EncodeControl)
	if err != nil {
		return SceneCompletion{SceneID: sceneID, Err: err}
	}
	raw, err := s.sender.Send(ctx, codec.MethodUpdateControls, map[string]any{
		"sceneID":  sceneID,
		"controls": wire,
	}, false)
	if err != nil {
		logger.Debug("updateControls failed for scene", logger.AttrSceneID, sceneID, "error", err)
		return SceneCompletion{SceneID: sceneID, Err: err}
	}
	decoded, err := decodeMany(raw, "controls", func(el json.RawMessage) (resource.Control, error) {
		return codec.DecodeControl(el, sceneID)
	})
	if err != nil {
		return SceneCompletion{SceneID: sceneID, Err: err}
	}
	return SceneCompletion{SceneID: sceneID, Controls: decoded}
}

// Delete removes controls grouped by scene, one deleteControls call per
// scene.
func (s *ControlService) Delete(ctx context.Context, controls ...resource.Control) (bool, error) {
	bySceneID := groupBySceneID(controls)
	success := true
	for sceneID, group := range bySceneID {
		ids := make([]string, len(group))
		for i, c := range group {
			ids[i] = c.ControlID
		}
		raw, err := s.sender.Send(ctx, codec.MethodDeleteControls, deleteControlsParams{
			SceneID:    sceneID,
			ControlIDs: ids,
		}, false)
		if err != nil {
			return false, err
		}
		ok, err := decodeSuccess(raw)
		if err != nil {
			return false, err
		}
		success = success && ok
	}
	return success, nil
}
