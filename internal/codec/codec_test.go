package codec

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/algopatterns/gameinteractive/internal/resource"
)

func TestEncodeDecodeMethodRoundTrip(t *testing.T) {
	original := MethodPacket{
		ID:      7,
		Method:  MethodCreateScenes,
		Params:  json.RawMessage(`{"sceneID":"s1"}`),
		Discard: false,
		Seq:     42,
	}

	bytes, err := EncodeMethod(original)
	require.NoError(t, err)

	frames, errs := Decode(bytes)
	require.Empty(t, errs)
	require.Len(t, frames, 1)
	require.NotNil(t, frames[0].Method)

	decoded := frames[0].Method
	assert.Equal(t, original.ID, decoded.ID)
	assert.Equal(t, original.Method, decoded.Method)
	assert.Equal(t, original.Discard, decoded.Discard)
	assert.JSONEq(t, string(original.Params), string(decoded.Params))
}

func TestDecodeUnknownMethodFallsBackToSentinel(t *testing.T) {
	raw := []byte(`{"type":"method","id":1,"method":"someFutureMethod"}`)
	frames, errs := Decode(raw)
	require.Empty(t, errs)
	require.Len(t, frames, 1)
	assert.Equal(t, MethodUnknown, frames[0].Method.Method)
}

func TestDecodeArrayOfFrames(t *testing.T) {
	raw := []byte(`[{"type":"method","id":1,"method":"getTime"},{"type":"reply","id":1,"result":123}]`)
	frames, errs := Decode(raw)
	require.Empty(t, errs)
	require.Len(t, frames, 2)
	assert.NotNil(t, frames[0].Method)
	assert.NotNil(t, frames[1].Reply)
}

func TestDecodeDropsUnrecognizedSiblingElement(t *testing.T) {
	raw := []byte(`[{"type":"bogus"},{"type":"reply","id":2,"result":1}]`)
	frames, errs := Decode(raw)
	require.Len(t, errs, 1)
	require.Len(t, frames, 1)
	assert.NotNil(t, frames[0].Reply)
}

func TestReplyWithErrorOmitsResult(t *testing.T) {
	reply := ReplyPacket{ID: 9, Error: &ReplyErrorBody{Code: 4011, Message: "duplicate scene"}}
	bytes, err := EncodeReply(reply)
	require.NoError(t, err)

	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(bytes, &m))
	_, hasResult := m["result"]
	assert.False(t, hasResult)
	_, hasError := m["error"]
	assert.True(t, hasError)
}

func TestDecodeScenePropagatesSceneIDIntoControls(t *testing.T) {
	raw := json.RawMessage(`{
		"sceneID": "lobby",
		"controls": [
			{"controlID": "b1", "kind": "button", "text": "Go"},
			{"controlID": "b2", "kind": "button", "text": "Stop"}
		]
	}`)

	scene, err := DecodeScene(raw)
	require.NoError(t, err)
	require.Len(t, scene.Controls, 2)

	for _, c := range scene.Controls {
		assert.Equal(t, "lobby", c.SceneID)
	}
}

func TestEncodeDecodeControlRoundTripButton(t *testing.T) {
	original := resource.Control{
		ControlID: "b1",
		SceneID:   "default",
		Kind:      resource.ControlKindButton,
		Button: &resource.ButtonAttrs{
			KeyCode: 32,
			Text:    "Jump",
			Cost:    10,
		},
	}
	original.SetPosition(resource.ControlPosition{CanvasSize: resource.CanvasSmall, Width: 10, Height: 10})

	bytes, err := EncodeControl(original)
	require.NoError(t, err)

	decoded, err := DecodeControl(bytes, "")
	require.NoError(t, err)

	assert.Equal(t, original.ControlID, decoded.ControlID)
	assert.Equal(t, original.Kind, decoded.Kind)
	require.NotNil(t, decoded.Button)
	assert.Equal(t, 32, decoded.Button.KeyCode)
	assert.Equal(t, "Jump", decoded.Button.Text)
	assert.Len(t, decoded.Positions, 1)
}

func TestDecodeControlUnknownKindIsProtocolError(t *testing.T) {
	raw := json.RawMessage(`{"controlID":"x","kind":"hologram"}`)
	_, err := DecodeControl(raw, "default")
	require.Error(t, err)
}

func TestDecodeGroupRewritesEmptySceneToDefault(t *testing.T) {
	raw := json.RawMessage(`{"groupID":"vips"}`)
	g, err := DecodeGroup(raw)
	require.NoError(t, err)
	assert.Equal(t, resource.DefaultSceneID, g.SceneID)
}

func TestDecodeControlInputDispatchesByEvent(t *testing.T) {
	raw := json.RawMessage(`{"controlID":"b1","event":"mousedown","button":0}`)
	decoded, err := DecodeControlInput("p1", raw)
	require.NoError(t, err)

	mouse, ok := decoded.(resource.MouseInput)
	require.True(t, ok)
	assert.Equal(t, "p1", mouse.ParticipantID)
	assert.Equal(t, "b1", mouse.ControlID)
	assert.Equal(t, 0, mouse.Button)
}

func TestDecodeControlInputUnknownEventIsGeneric(t *testing.T) {
	raw := json.RawMessage(`{"controlID":"b1","event":"wiggle"}`)
	decoded, err := DecodeControlInput("p1", raw)
	require.NoError(t, err)

	_, ok := decoded.(resource.GenericInput)
	assert.True(t, ok)
}
