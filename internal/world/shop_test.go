package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func shopWorld(t *testing.T) (*World, *Player, *wealthLog) {
	t.Helper()
	w := newTestWorld(t, nil)
	log := &wealthLog{}
	w.wealth = log
	p, _ := login(t, w, "alice")
	p.Inv(InvBackpack).Add(ObjCoins, 100, -1, true, false)
	return w, p, log
}

func TestShopNeedsOpenShop(t *testing.T) {
	w, p, _ := shopWorld(t)
	_, err := w.BuyFromShop(p, objPot, 1)
	assert.ErrorIs(t, err, ErrShopClosed)
	_, err = w.SellToShop(p, objPot, 1)
	assert.ErrorIs(t, err, ErrShopClosed)

	assert.False(t, w.OpenShop(p, 999, 300))
}

func TestBuyFromShop(t *testing.T) {
	w, p, log := shopWorld(t)
	require.True(t, w.OpenShop(p, invStore, 300))
	assert.Equal(t, 300, p.ModalMain())

	n, err := w.BuyFromShop(p, objPot, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	bp := p.Inv(InvBackpack)
	assert.Equal(t, 97, bp.ItemCount(ObjCoins))
	assert.Equal(t, 3, bp.ItemCount(objPot))
	assert.Equal(t, 2, w.Shop(invStore).ItemCount(objPot))

	n, err = w.BuyFromShop(p, objPot, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, n, "limited by stock")
	assert.True(t, w.Shop(invStore).Contains(objPot), "stock keeps its slot at zero")

	_, err = w.BuyFromShop(p, objPot, 1)
	assert.ErrorIs(t, err, ErrNotInStock)

	require.Len(t, *log, 2)
	assert.Equal(t, WealthEvent{Username: "alice", Shop: invStore, Obj: objPot, Count: 3, Coins: 3, Buy: true}, (*log)[0])
}

func TestBuyNeedsCoins(t *testing.T) {
	w, p, _ := shopWorld(t)
	p.Inv(InvBackpack).Remove(ObjCoins, 99, -1, true)
	require.True(t, w.OpenShop(p, invStore, 300))

	n, err := w.BuyFromShop(p, objPot, 5)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 0, p.Inv(InvBackpack).ItemCount(ObjCoins))

	_, err = w.BuyFromShop(p, objPot, 1)
	assert.ErrorIs(t, err, ErrNotEnoughCoins)
}

func TestSellToShop(t *testing.T) {
	w, p, log := shopWorld(t)
	bp := p.Inv(InvBackpack)
	bp.Add(objDagger, 1, -1, true, false)
	require.True(t, w.OpenShop(p, invStore, 300))

	n, err := w.SellToShop(p, objDagger, 5)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 106, bp.ItemCount(ObjCoins), "60% of a cost of 10")
	assert.False(t, bp.Contains(objDagger))
	assert.Equal(t, 1, w.Shop(invStore).ItemCount(objDagger))

	_, err = w.SellToShop(p, ObjCoins, 1)
	assert.ErrorIs(t, err, ErrShopWontBuy)

	n, err = w.SellToShop(p, objRope, 1)
	require.NoError(t, err)
	assert.Zero(t, n, "nothing to sell")

	require.Len(t, *log, 1)
	assert.Equal(t, -6, (*log)[0].Coins)
	assert.False(t, (*log)[0].Buy)
}

func TestRestockShops(t *testing.T) {
	w, p, _ := shopWorld(t)
	p.Inv(InvBackpack).Add(objDagger, 1, -1, true, false)
	require.True(t, w.OpenShop(p, invStore, 300))
	_, err := w.BuyFromShop(p, objPot, 3)
	require.NoError(t, err)
	_, err = w.SellToShop(p, objDagger, 1)
	require.NoError(t, err)
	shop := w.Shop(invStore)

	w.tick = 5
	w.RestockShops()
	assert.Equal(t, 3, shop.ItemCount(objPot))
	assert.Equal(t, 1, shop.ItemCount(objDagger))

	w.tick = 6
	w.RestockShops()
	assert.Equal(t, 3, shop.ItemCount(objPot), "off-rate ticks leave stock alone")

	w.tick = 100
	w.RestockShops()
	assert.Equal(t, 4, shop.ItemCount(objPot))
	assert.False(t, shop.Contains(objDagger), "unstocked objs drift out")
}

func TestOpenShopOutput(t *testing.T) {
	w := newTestWorld(t, nil)
	p, c := login(t, w, "alice")
	settle(w, p)
	c.reset()

	require.True(t, w.OpenShop(p, invStore, 300))
	require.NoError(t, tickOutput(w, p))
	assert.Contains(t, c.types(), "if_openmain")
	assert.Contains(t, c.types(), "update_inv_full")

	w.CleanupPlayer(p)
	w.CleanupShops()
	c.reset()
	p.CloseModal()
	require.NoError(t, tickOutput(w, p))
	assert.Contains(t, c.types(), "if_close")
	_, err := w.BuyFromShop(p, objPot, 1)
	assert.ErrorIs(t, err, ErrShopClosed)
}
