package resource

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSceneEqualityByID(t *testing.T) {
	tests := []struct {
		name  string
		a     Scene
		b     Scene
		equal bool
	}{
		{
			name:  "same scene ID, different meta",
			a:     Scene{SceneID: "s1", Meta: Meta{"k": nil}},
			b:     Scene{SceneID: "s1"},
			equal: true,
		},
		{
			name:  "different scene IDs",
			a:     Scene{SceneID: "s1"},
			b:     Scene{SceneID: "s2"},
			equal: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.equal, tt.a.Equal(tt.b))
		})
	}
}

func TestDefaultSceneAndGroup(t *testing.T) {
	assert.True(t, Scene{SceneID: "default"}.IsDefault())
	assert.False(t, Scene{SceneID: "s1"}.IsDefault())
	assert.True(t, Group{GroupID: "default"}.IsDefault())
	assert.False(t, Group{GroupID: "g1"}.IsDefault())
}

func TestNormalizeGroupAssignment(t *testing.T) {
	assert.Equal(t, "default", NormalizeGroupAssignment(""))
	assert.Equal(t, "vips", NormalizeGroupAssignment("vips"))
}

func TestControlPositionAtMostOnePerCanvasSize(t *testing.T) {
	c := Control{ControlID: "b1", Kind: ControlKindButton}

	c.SetPosition(ControlPosition{CanvasSize: CanvasSmall, Width: 10, Height: 10})
	c.SetPosition(ControlPosition{CanvasSize: CanvasSmall, Width: 20, Height: 20})
	c.SetPosition(ControlPosition{CanvasSize: CanvasLarge, Width: 50, Height: 50})

	assert.Len(t, c.Positions, 2)
	assert.Equal(t, float64(20), c.Positions[CanvasSmall].Width)
	assert.True(t, c.HasAnyPosition())
}

func TestControlWithNoPositionsHasNone(t *testing.T) {
	c := Control{ControlID: "b1", Kind: ControlKindButton}
	assert.False(t, c.HasAnyPosition())
}

func TestParticipantActiveSince(t *testing.T) {
	p := Participant{SessionID: "p1", LastInputAt: 1000}
	assert.True(t, p.ActiveSince(500))
	assert.True(t, p.ActiveSince(1000))
	assert.False(t, p.ActiveSince(1001))
}

func TestSyncSceneIdempotent(t *testing.T) {
	local := Scene{SceneID: "s1", Meta: Meta{"old": nil}}
	server := Scene{SceneID: "s1", Meta: Meta{"new": nil}}

	once := SyncScene(local, server)
	twice := SyncScene(once, server)

	assert.Equal(t, once, twice)
	assert.Equal(t, server, once)
}

func TestSyncSceneLeavesMismatchedIdentityAlone(t *testing.T) {
	local := Scene{SceneID: "s1"}
	server := Scene{SceneID: "s2"}

	assert.Equal(t, local, SyncScene(local, server))
}

func TestReconcileScenesDropsMissingAndAppendsNew(t *testing.T) {
	local := []Scene{
		{SceneID: "s1", Meta: Meta{"stale": nil}},
		{SceneID: "gone"},
	}
	server := []Scene{
		{SceneID: "s1", Meta: Meta{"fresh": nil}},
		{SceneID: "s3"},
	}

	out := ReconcileScenes(local, server)

	assert.Len(t, out, 2)
	assert.Equal(t, server[0], out[0])
	assert.Equal(t, server[1], out[1])
}
