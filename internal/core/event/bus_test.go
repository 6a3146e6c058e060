package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventsArriveNextTick(t *testing.T) {
	b := NewBus()
	var got []string
	Subscribe(b, func(ev PlayerLoggedIn) { got = append(got, ev.Username) })

	Emit(b, PlayerLoggedIn{Username: "alice"})
	Emit(b, PlayerLoggedIn{Username: "bob"})
	assert.Equal(t, 2, b.Pending())
	b.DispatchAll()
	assert.Empty(t, got, "nothing is current before the swap")

	b.SwapBuffers()
	assert.Zero(t, b.Pending())
	b.DispatchAll()
	assert.Equal(t, []string{"alice", "bob"}, got)

	b.SwapBuffers()
	b.DispatchAll()
	assert.Len(t, got, 2, "events are delivered once")
}

func TestSubscribersOnlySeeTheirType(t *testing.T) {
	b := NewBus()
	ins, outs := 0, 0
	Subscribe(b, func(PlayerLoggedIn) { ins++ })
	Subscribe(b, func(PlayerLoggedOut) { outs++ })
	Subscribe(b, func(PlayerLoggedOut) { outs++ })

	Emit(b, PlayerLoggedOut{Username: "alice"})
	b.SwapBuffers()
	b.DispatchAll()
	assert.Zero(t, ins)
	assert.Equal(t, 2, outs)
}
