package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tickworld/server/internal/entity"
)

func TestDroppedObjRevealsThenDespawns(t *testing.T) {
	w := newTestWorld(t, nil)
	p, _ := login(t, w, "alice")

	obj := w.DropObj(p, objRope, 1, 5)
	require.NotNil(t, obj)
	assert.Equal(t, p.Hash64(), obj.Receiver)
	assert.Same(t, obj, w.GetObj(0, p.X, p.Z, objRope, p.Hash64()))

	for range RevealTicks {
		w.ProcessZones()
	}
	assert.Equal(t, entity.NoReceiver, obj.Receiver, "public after the reveal")
	assert.True(t, obj.IsActive())

	for range 5 {
		w.ProcessZones()
	}
	assert.False(t, obj.IsActive())
	assert.Nil(t, w.GetObj(0, p.X, p.Z, objRope, entity.NoReceiver))
}

func TestDelayedObjAppearsLater(t *testing.T) {
	w := newTestWorld(t, nil)
	obj := entity.NewObj(0, 3205, 3205, entity.Despawn, objRope, 1)
	w.AddObjDelayed(obj, entity.NoReceiver, 50, 2)

	w.ProcessDelayedObjs()
	assert.Nil(t, w.GetObj(0, 3205, 3205, objRope, entity.NoReceiver))
	w.ProcessDelayedObjs()
	assert.Same(t, obj, w.GetObj(0, 3205, 3205, objRope, entity.NoReceiver))
}
