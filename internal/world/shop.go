package world

import (
	"errors"

	"go.uber.org/zap"

	"github.com/tickworld/server/internal/data"
	"github.com/tickworld/server/internal/inventory"
)

// ObjCoins is the currency obj.
const ObjCoins = 995

// restockRate is how often objs a shop does not stock drift back to zero.
const restockRate = 100

var (
	ErrShopClosed     = errors.New("no shop open")
	ErrNotInStock     = errors.New("shop is out of stock")
	ErrNotEnoughCoins = errors.New("not enough coins")
	ErrInventoryFull  = errors.New("inventory full")
	ErrShopWontBuy    = errors.New("shop will not buy that")
	ErrShopFull       = errors.New("shop is full")
)

// WealthEvent records coins changing hands with a shop.
type WealthEvent struct {
	Tick     int64
	Username string
	Shop     int
	Obj      int
	Count    int
	Coins    int  // coins paid by the player, negative when paid to them
	Buy      bool // player bought from the shop
}

// WealthRecorder stores trade records. RecordWealth is called on the tick
// goroutine and must not block.
type WealthRecorder interface {
	RecordWealth(ev WealthEvent)
}

// Shop returns the shared stock for a shop inventory type, creating and
// filling it on first use. It returns nil for unknown types.
func (w *World) Shop(typ int) *inventory.Inventory {
	if shop, ok := w.shops[typ]; ok {
		return shop
	}
	t := w.Stores.Invs.Get(typ)
	if t == nil {
		return nil
	}
	shop := inventory.New(typ, t.Size, inventory.StackAlways, nil)
	ids := make([]int, 0, len(t.Stock))
	for _, s := range t.Stock {
		ids = append(ids, s.Obj)
	}
	shop.SetStock(ids)
	for i, s := range t.Stock {
		if i < shop.Capacity {
			shop.Set(i, &inventory.Item{ID: s.Obj, Count: s.Count})
		}
	}
	w.shops[typ] = shop
	return shop
}

// OpenShop shows a shop to the player on interface com.
func (w *World) OpenShop(p *Player, typ, com int) bool {
	shop := w.Shop(typ)
	if shop == nil {
		return false
	}
	p.OpenMainModal(com)
	p.OpenShop = typ
	p.Write(invFull(shop))
	p.Inv(InvBackpack).Update = true
	return true
}

// BuyFromShop buys up to count of obj from the player's open shop. It
// returns how many were bought.
func (w *World) BuyFromShop(p *Player, obj, count int) (int, error) {
	shop, t, err := w.openShopOf(p)
	if err != nil {
		return 0, err
	}
	ot := w.Stores.Objs.Get(obj)
	if ot == nil {
		return 0, ErrNotInStock
	}
	count = min(count, shop.ItemCount(obj))
	if count <= 0 {
		return 0, ErrNotInStock
	}
	bp := p.Inv(InvBackpack)
	each := max(ot.Cost*t.SellPct/100, 1)
	count = min(count, bp.ItemCount(ObjCoins)/each)
	if count <= 0 {
		return 0, ErrNotEnoughCoins
	}
	count = min(count, bp.Add(obj, count, -1, false, true).Completed)
	if count <= 0 {
		return 0, ErrInventoryFull
	}

	cost := each * count
	bp.Remove(ObjCoins, cost, -1, true)
	bp.Add(obj, count, -1, false, false)
	shop.Remove(obj, count, -1, false)
	w.recordWealth(WealthEvent{Username: p.Username, Shop: t.ID, Obj: obj, Count: count, Coins: cost, Buy: true})
	return count, nil
}

// SellToShop sells up to count of obj from the backpack to the open shop.
func (w *World) SellToShop(p *Player, obj, count int) (int, error) {
	shop, t, err := w.openShopOf(p)
	if err != nil {
		return 0, err
	}
	ot := w.Stores.Objs.Get(obj)
	if ot == nil || obj == ObjCoins || (!t.AllStock && !shop.IsStock(obj)) {
		return 0, ErrShopWontBuy
	}
	bp := p.Inv(InvBackpack)
	count = min(count, bp.ItemCount(obj))
	if count <= 0 {
		return 0, nil
	}
	if shop.Add(obj, count, -1, true, true).Failed() {
		return 0, ErrShopFull
	}
	paid := 0
	if ot.Cost > 0 {
		paid = max(ot.Cost*t.BuyPct/100, 0) * count
	}
	removed := bp.Remove(obj, count, -1, false).Completed
	if paid > 0 && bp.Add(ObjCoins, paid, -1, true, false).Failed() {
		bp.Add(obj, removed, -1, false, false)
		return 0, ErrInventoryFull
	}
	shop.Add(obj, removed, -1, false, false)
	w.recordWealth(WealthEvent{Username: p.Username, Shop: t.ID, Obj: obj, Count: removed, Coins: -paid})
	return removed, nil
}

func (w *World) openShopOf(p *Player) (*inventory.Inventory, *data.InvType, error) {
	if p.OpenShop == -1 {
		return nil, nil, ErrShopClosed
	}
	shop := w.Shop(p.OpenShop)
	t := w.Stores.Invs.Get(p.OpenShop)
	if shop == nil || t == nil {
		return nil, nil, ErrShopClosed
	}
	return shop, t, nil
}

func (w *World) recordWealth(ev WealthEvent) {
	ev.Tick = w.tick
	w.log.Debug("shop trade",
		zap.String("username", ev.Username),
		zap.Int("shop", ev.Shop),
		zap.Int("obj", ev.Obj),
		zap.Int("count", ev.Count),
		zap.Int("coins", ev.Coins),
		zap.Bool("buy", ev.Buy),
	)
	if w.wealth != nil {
		w.wealth.RecordWealth(ev)
	}
}

// RestockShops moves every shop one step toward its stock targets for
// entries due this tick. Objs a shop does not stock drift down to zero.
func (w *World) RestockShops() {
	for typ, shop := range w.shops {
		t := w.Stores.Invs.Get(typ)
		if t == nil || !t.Restock {
			continue
		}
		for slot, it := range shop.Items() {
			if it == nil {
				continue
			}
			target, rate := 0, restockRate
			if s, ok := t.StockFor(it.ID); ok {
				target, rate = s.Count, s.Rate
			}
			if rate <= 0 || w.tick%int64(rate) != 0 {
				continue
			}
			switch {
			case it.Count < target:
				shop.Set(slot, &inventory.Item{ID: it.ID, Count: it.Count + 1})
			case it.Count > target:
				shop.Remove(it.ID, 1, slot, true)
			}
		}
	}
}
