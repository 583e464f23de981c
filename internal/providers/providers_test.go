package providers

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/algopatterns/gameinteractive/internal/codec"
	"codeberg.org/algopatterns/gameinteractive/internal/ierrors"
	"codeberg.org/algopatterns/gameinteractive/internal/resource"
)

// scriptedSender replays one canned reply per call, recording every
// method/params pair it was asked to send. replyFn, when set, picks the
// reply from the call itself instead of call order — the control service
// iterates its per-scene groups in map order, so order-indexed replies
// would be flaky there.
type scriptedSender struct {
	calls   []call
	replies []json.RawMessage
	errs    []error
	replyFn func(c call) (json.RawMessage, error)
	i       int
}

type call struct {
	method codec.InteractiveMethod
	params any
}

// sceneID digs the "sceneID" param out of a recorded call, for replyFn
// implementations keyed by scene.
func (c call) sceneID() string {
	if m, ok := c.params.(map[string]any); ok {
		if id, ok := m["sceneID"].(string); ok {
			return id
		}
	}
	return ""
}

func (s *scriptedSender) Send(_ context.Context, method codec.InteractiveMethod, params any, _ bool) (json.RawMessage, error) {
	rec := call{method: method, params: params}
	s.calls = append(s.calls, rec)
	if s.replyFn != nil {
		return s.replyFn(rec)
	}
	idx := s.i
	s.i++
	var reply json.RawMessage
	var err error
	if idx < len(s.replies) {
		reply = s.replies[idx]
	}
	if idx < len(s.errs) {
		err = s.errs[idx]
	}
	return reply, err
}

func TestSceneServiceGetScenes(t *testing.T) {
	sender := &scriptedSender{replies: []json.RawMessage{
		json.RawMessage(`{"scenes":[{"sceneID":"default"},{"sceneID":"lobby"}]}`),
	}}
	svc := NewSceneService(sender)

	scenes, err := svc.GetScenes(context.Background())
	require.NoError(t, err)
	require.Len(t, scenes, 2)
	assert.Equal(t, "default", scenes[0].SceneID)
	assert.Equal(t, "lobby", scenes[1].SceneID)
	assert.Equal(t, codec.MethodGetScenes, sender.calls[0].method)
}

func TestSceneServiceDeleteRejectsDefaultLocally(t *testing.T) {
	sender := &scriptedSender{}
	svc := NewSceneService(sender)

	_, err := svc.Delete(context.Background(), resource.DefaultSceneID, "")
	require.Error(t, err)

	var replyErr *ierrors.ReplyError
	require.ErrorAs(t, err, &replyErr)
	assert.Equal(t, 4018, replyErr.Code)
	assert.Empty(t, sender.calls, "should fail fast without a round trip")
}

func TestSceneServiceDeleteRejectsSelfReassignLocally(t *testing.T) {
	sender := &scriptedSender{}
	svc := NewSceneService(sender)

	_, err := svc.Delete(context.Background(), "lobby", "lobby")
	require.Error(t, err)

	var replyErr *ierrors.ReplyError
	require.ErrorAs(t, err, &replyErr)
	assert.Equal(t, 4010, replyErr.Code)
}

func TestSceneServiceDeleteDefaultsReassignToDefault(t *testing.T) {
	sender := &scriptedSender{replies: []json.RawMessage{json.RawMessage(`{"success":true}`)}}
	svc := NewSceneService(sender)

	ok, err := svc.Delete(context.Background(), "lobby", "")
	require.NoError(t, err)
	assert.True(t, ok)

	require.Len(t, sender.calls, 1)
	params, isParams := sender.calls[0].params.(deleteSceneParams)
	require.True(t, isParams)
	assert.Equal(t, resource.DefaultSceneID, params.ReassignSceneID)
}

func TestGroupServiceDeleteRejectsDefaultLocally(t *testing.T) {
	sender := &scriptedSender{}
	svc := NewGroupService(sender)

	_, err := svc.Delete(context.Background(), resource.DefaultGroupID, "")
	require.Error(t, err)
	var replyErr *ierrors.ReplyError
	require.ErrorAs(t, err, &replyErr)
	assert.Equal(t, 4018, replyErr.Code)
}

func TestGroupServiceCreate(t *testing.T) {
	sender := &scriptedSender{replies: []json.RawMessage{
		json.RawMessage(`{"groups":[{"groupID":"team-a","sceneID":"default"}]}`),
	}}
	svc := NewGroupService(sender)

	groups, err := svc.Create(context.Background(), resource.Group{GroupID: "team-a"})
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "team-a", groups[0].GroupID)
	assert.Equal(t, codec.MethodCreateGroups, sender.calls[0].method)
}

func TestControlServiceCreateRejectsPositionlessControlLocally(t *testing.T) {
	sender := &scriptedSender{}
	svc := NewControlService(sender)

	_, err := svc.Create(context.Background(), resource.Control{ControlID: "btn1", SceneID: "default", Kind: resource.ControlKindButton})
	require.Error(t, err)

	var posErr *ierrors.PositionRequiredError
	require.ErrorAs(t, err, &posErr)
	assert.Equal(t, "btn1", posErr.ControlID)
	assert.Empty(t, sender.calls)
}

func TestControlServiceCreateGroupsBySceneID(t *testing.T) {
	sender := &scriptedSender{
		replyFn: func(c call) (json.RawMessage, error) {
			if c.sceneID() == "scene-a" {
				return json.RawMessage(`{"controls":[{"controlID":"btn1","kind":"button"}]}`), nil
			}
			return json.RawMessage(`{"controls":[{"controlID":"btn2","kind":"button"}]}`), nil
		},
	}
	svc := NewControlService(sender)

	button := func(id, sceneID string) resource.Control {
		c := resource.Control{ControlID: id, SceneID: sceneID, Kind: resource.ControlKindButton, Button: &resource.ButtonAttrs{}}
		c.SetPosition(resource.ControlPosition{CanvasSize: resource.CanvasSmall, Width: 10, Height: 10})
		return c
	}

	completions, err := svc.Create(context.Background(), button("btn1", "scene-a"), button("btn2", "scene-b"))
	require.NoError(t, err)
	require.Len(t, completions, 2)
	assert.Len(t, sender.calls, 2, "one createControls call per distinct sceneID")
	for _, c := range sender.calls {
		assert.Equal(t, codec.MethodCreateControls, c.method)
	}
	sceneA, ok := completions["scene-a"]
	require.True(t, ok)
	require.NoError(t, sceneA.Err)
	require.Len(t, sceneA.Controls, 1)
	assert.Equal(t, "btn1", sceneA.Controls[0].ControlID)

	sceneB, ok := completions["scene-b"]
	require.True(t, ok)
	require.NoError(t, sceneB.Err)
	require.Len(t, sceneB.Controls, 1)
	assert.Equal(t, "btn2", sceneB.Controls[0].ControlID)
}

func TestControlServiceCreatePreservesSuccessfulScenesOnOneSceneFailure(t *testing.T) {
	sender := &scriptedSender{
		replyFn: func(c call) (json.RawMessage, error) {
			if c.sceneID() == "scene-b" {
				return nil, errors.New("scene-b rejected")
			}
			return json.RawMessage(`{"controls":[{"controlID":"btn1","kind":"button"}]}`), nil
		},
	}
	svc := NewControlService(sender)

	button := func(id, sceneID string) resource.Control {
		c := resource.Control{ControlID: id, SceneID: sceneID, Kind: resource.ControlKindButton, Button: &resource.ButtonAttrs{}}
		c.SetPosition(resource.ControlPosition{CanvasSize: resource.CanvasSmall, Width: 10, Height: 10})
		return c
	}

	completions, err := svc.Create(context.Background(), button("btn1", "scene-a"), button("btn2", "scene-b"))
	require.NoError(t, err, "a per-scene failure must not fail the whole call")
	require.Len(t, completions, 2)

	var succeeded, failed int
	for _, c := range completions {
		switch {
		case c.Err == nil:
			succeeded++
			assert.Len(t, c.Controls, 1)
		default:
			failed++
		}
	}
	assert.Equal(t, 1, succeeded, "the scene that succeeded must keep its result")
	assert.Equal(t, 1, failed)
}

func TestControlServiceGetControlsAggregatesAcrossScenes(t *testing.T) {
	sender := &scriptedSender{replies: []json.RawMessage{
		json.RawMessage(`{"scenes":[
			{"sceneID":"default","controls":[{"controlID":"btn1","kind":"button"}]},
			{"sceneID":"lobby","controls":[{"controlID":"btn2","kind":"button"}]}
		]}`),
	}}
	svc := NewControlService(sender)

	controls, err := svc.GetControls(context.Background())
	require.NoError(t, err)
	require.Len(t, controls, 2)
	assert.Equal(t, "btn1", controls[0].ControlID)
	assert.Equal(t, "btn2", controls[1].ControlID)
}

func TestParticipantServiceGetActiveParticipants(t *testing.T) {
	sender := &scriptedSender{replies: []json.RawMessage{
		json.RawMessage(`{"participants":[{"sessionID":"p1","lastInputAt":5000}]}`),
	}}
	svc := NewParticipantService(sender)

	participants, err := svc.GetActiveParticipants(context.Background(), 1000)
	require.NoError(t, err)
	require.Len(t, participants, 1)
	assert.Equal(t, "p1", participants[0].SessionID)
	assert.Equal(t, codec.MethodGetActiveParticipants, sender.calls[0].method)
}

func TestParticipantServiceReady(t *testing.T) {
	sender := &scriptedSender{replies: []json.RawMessage{json.RawMessage(`{}`)}}
	svc := NewParticipantService(sender)

	err := svc.Ready(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, sender.calls, 1)
	assert.Equal(t, codec.MethodReady, sender.calls[0].method)
	params, ok := sender.calls[0].params.(readyParams)
	require.True(t, ok)
	assert.True(t, params.IsReady)
}

func TestParticipantServiceUpdate(t *testing.T) {
	sender := &scriptedSender{replies: []json.RawMessage{
		json.RawMessage(`{"participants":[{"sessionID":"p1","groupID":"team-a"}]}`),
	}}
	svc := NewParticipantService(sender)

	updated, err := svc.Update(context.Background(), resource.Participant{SessionID: "p1", GroupID: "team-a"})
	require.NoError(t, err)
	require.Len(t, updated, 1)
	assert.Equal(t, "team-a", updated[0].GroupID)
}
