package scripting

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/tickworld/server/internal/entity"
	"github.com/tickworld/server/internal/textutil"
	"github.com/tickworld/server/internal/world"
)

const ctxType = "ctx"

// ctxMethods are the calls a handler can make on its ctx argument.
// Player-only calls are no-ops when the handler has no player.
var ctxMethods = map[string]lua.LGFunction{
	"trigger":  ctxTrigger,
	"tick":     ctxTick,
	"last_int": ctxLastInt,
	"text":     ctxText,
	"arg":      ctxArg,
	"random":   ctxRandom,

	"name":      ctxName,
	"staff":     ctxStaff,
	"mes":       ctxMes,
	"say":       ctxSay,
	"anim":      ctxAnim,
	"spotanim":  ctxSpotAnim,
	"coord":     ctxCoord,
	"tele":      ctxTele,
	"delay":     ctxDelay,
	"queue":     ctxQueue,
	"getvar":    ctxGetVar,
	"setvar":    ctxSetVar,
	"stat":      ctxStat,
	"base_stat": ctxBaseStat,
	"stat_add":  ctxStatAdd,
	"give_xp":   ctxGiveXP,

	"selection": ctxSelection,
	"inv_total": ctxInvTotal,
	"inv_add":   ctxInvAdd,
	"inv_del":   ctxInvDel,
	"drop":      ctxDrop,

	"open_main":  ctxOpenMain,
	"close":      ctxClose,
	"open_shop":  ctxOpenShop,
	"buy":        ctxBuy,
	"sell":       ctxSell,
	"broadcast":  ctxBroadcast,
	"npc_type":   ctxNpcType,
	"npc_say":    ctxNpcSay,
	"npc_anim":   ctxNpcAnim,
	"npc_stat":   ctxNpcStat,
	"npc_queue":  ctxNpcQueue,
	"hit_npc":    ctxHitNpc,
	"hit_player": ctxHitPlayer,
}

func checkCtx(L *lua.LState) *world.ScriptContext {
	ud := L.CheckUserData(1)
	if c, ok := ud.Value.(*world.ScriptContext); ok {
		return c
	}
	L.ArgError(1, "ctx expected")
	return nil
}

// player is the player the handler acts for: the trigger's own player, or
// the target of an npc handler.
func player(c *world.ScriptContext) *world.Player {
	if c.Player != nil {
		return c.Player
	}
	if c.Target != nil && c.Target.Kind() == entity.KindPlayer {
		if p, ok := c.World.Players.Get(c.Target.ID()); ok {
			return p
		}
	}
	return nil
}

// npc is the handler's own npc, or the npc the player is interacting with.
func npc(c *world.ScriptContext) *world.Npc {
	if c.Npc != nil {
		return c.Npc
	}
	if c.Target != nil && c.Target.Kind() == entity.KindNpc {
		if n, ok := c.World.Npcs.Get(c.Target.ID()); ok && n.IsValid() {
			return n
		}
	}
	return nil
}

// objArg reads an obj given by id or debug name.
func objArg(L *lua.LState, c *world.ScriptContext, n int) int {
	switch v := L.Get(n).(type) {
	case lua.LNumber:
		return int(v)
	case lua.LString:
		if id := c.World.Stores.Objs.ID(string(v)); id != -1 {
			return id
		}
		L.ArgError(n, "unknown obj "+string(v))
	default:
		L.ArgError(n, "obj id or name expected")
	}
	return -1
}

func statArg(L *lua.LState, n int) int {
	var stat int
	if v, ok := L.Get(n).(lua.LNumber); ok {
		stat = int(v)
	} else {
		stat = world.ParseStat(L.CheckString(n))
	}
	if stat < 0 || stat >= world.StatCount {
		L.ArgError(n, "unknown stat")
	}
	return stat
}

func ctxTrigger(L *lua.LState) int {
	L.Push(lua.LString(checkCtx(L).Trigger.String()))
	return 1
}

func ctxTick(L *lua.LState) int {
	L.Push(lua.LNumber(checkCtx(L).World.Tick()))
	return 1
}

func ctxLastInt(L *lua.LState) int {
	L.Push(lua.LNumber(checkCtx(L).LastInt))
	return 1
}

func ctxText(L *lua.LState) int {
	L.Push(lua.LString(checkCtx(L).Text))
	return 1
}

// arg(i) is the i-th (1-based) queue or event argument, or nil.
func ctxArg(L *lua.LState) int {
	c := checkCtx(L)
	i := L.CheckInt(2)
	if i < 1 || i > len(c.Args) {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LNumber(c.Args[i-1]))
	return 1
}

// random(n) is uniform in [0, n).
func ctxRandom(L *lua.LState) int {
	c := checkCtx(L)
	n := L.CheckInt(2)
	if n <= 0 {
		L.Push(lua.LNumber(0))
		return 1
	}
	L.Push(lua.LNumber(c.World.Rand().Intn(n)))
	return 1
}

func ctxName(L *lua.LState) int {
	if p := player(checkCtx(L)); p != nil {
		L.Push(lua.LString(textutil.DisplayName(p.Username)))
		return 1
	}
	L.Push(lua.LNil)
	return 1
}

func ctxStaff(L *lua.LState) int {
	if p := player(checkCtx(L)); p != nil {
		L.Push(lua.LNumber(p.StaffModLevel))
		return 1
	}
	L.Push(lua.LNumber(0))
	return 1
}

func ctxMes(L *lua.LState) int {
	c := checkCtx(L)
	text := L.CheckString(2)
	if p := player(c); p != nil {
		p.MessageGame(text)
	}
	return 0
}

// say makes the handler's own entity speak overhead.
func ctxSay(L *lua.LState) int {
	c := checkCtx(L)
	text := L.CheckString(2)
	switch {
	case c.Npc != nil:
		c.Npc.Say(text)
	case c.Player != nil:
		c.Player.Say(text)
	}
	return 0
}

func ctxAnim(L *lua.LState) int {
	c := checkCtx(L)
	seq, delay := L.CheckInt(2), L.OptInt(3, 0)
	switch {
	case c.Npc != nil:
		c.Npc.PlayAnimation(seq, delay)
	case c.Player != nil:
		c.Player.PlayAnimation(seq, delay)
	}
	return 0
}

func ctxSpotAnim(L *lua.LState) int {
	c := checkCtx(L)
	id, height, delay := L.CheckInt(2), L.OptInt(3, 0), L.OptInt(4, 0)
	switch {
	case c.Npc != nil:
		c.Npc.SpotAnim(id, height, delay)
	case c.Player != nil:
		c.Player.SpotAnim(id, height, delay)
	}
	return 0
}

// coord returns x, z and level of the handler's entity.
func ctxCoord(L *lua.LState) int {
	c := checkCtx(L)
	if c.Self == nil {
		L.Push(lua.LNil)
		return 1
	}
	e := c.Self.Base()
	L.Push(lua.LNumber(e.X))
	L.Push(lua.LNumber(e.Z))
	L.Push(lua.LNumber(e.Level))
	return 3
}

func ctxTele(L *lua.LState) int {
	c := checkCtx(L)
	x, z := L.CheckInt(2), L.CheckInt(3)
	if p := player(c); p != nil {
		p.Teleport(x, z, L.OptInt(4, p.Level))
	}
	return 0
}

func ctxDelay(L *lua.LState) int {
	c := checkCtx(L)
	ticks := L.CheckInt(2)
	switch {
	case c.Npc != nil:
		c.Npc.Delay(c.World.Tick(), ticks)
	case c.Player != nil:
		c.Player.Delay(c.World.Tick(), ticks)
	}
	return 0
}

func intArgs(L *lua.LState, from int) []int {
	var args []int
	for i := from; i <= L.GetTop(); i++ {
		args = append(args, L.CheckInt(i))
	}
	return args
}

// queue(id, delay, ...) queues a normal script for the player.
func ctxQueue(L *lua.LState) int {
	c := checkCtx(L)
	id, delay := L.CheckInt(2), L.CheckInt(3)
	if p := player(c); p != nil {
		p.Enqueue(world.QueueNormal, id, delay, intArgs(L, 4)...)
	}
	return 0
}

func ctxGetVar(L *lua.LState) int {
	c := checkCtx(L)
	id := L.CheckInt(2)
	if p := player(c); p != nil {
		L.Push(lua.LNumber(p.GetVar(id)))
		return 1
	}
	L.Push(lua.LNumber(0))
	return 1
}

func ctxSetVar(L *lua.LState) int {
	c := checkCtx(L)
	id, value := L.CheckInt(2), L.CheckInt(3)
	if p := player(c); p != nil {
		p.SetVar(id, value)
	}
	return 0
}

func ctxStat(L *lua.LState) int {
	c := checkCtx(L)
	stat := statArg(L, 2)
	if p := player(c); p != nil {
		L.Push(lua.LNumber(p.Levels[stat]))
		return 1
	}
	L.Push(lua.LNumber(0))
	return 1
}

func ctxBaseStat(L *lua.LState) int {
	c := checkCtx(L)
	stat := statArg(L, 2)
	if p := player(c); p != nil {
		L.Push(lua.LNumber(p.BaseLevels[stat]))
		return 1
	}
	L.Push(lua.LNumber(0))
	return 1
}

// stat_add(stat, delta) boosts or drains the current level.
func ctxStatAdd(L *lua.LState) int {
	c := checkCtx(L)
	stat, delta := statArg(L, 2), L.CheckInt(3)
	if p := player(c); p != nil {
		p.ChangeStat(stat, delta)
	}
	return 0
}

// give_xp(stat, xp) adds experience in tenths and reports a level up.
func ctxGiveXP(L *lua.LState) int {
	c := checkCtx(L)
	stat, xp := statArg(L, 2), L.CheckInt(3)
	if p := player(c); p != nil {
		L.Push(lua.LBool(p.GiveStat(stat, xp)))
		return 1
	}
	L.Push(lua.LFalse)
	return 1
}

// selection returns obj, slot and component of the last held item action.
func ctxSelection(L *lua.LState) int {
	p := player(checkCtx(L))
	if p == nil {
		L.Push(lua.LNil)
		return 1
	}
	s := p.Selection
	L.Push(lua.LNumber(s.Obj))
	L.Push(lua.LNumber(s.Slot))
	L.Push(lua.LNumber(s.Com))
	return 3
}

func ctxInvTotal(L *lua.LState) int {
	c := checkCtx(L)
	obj := objArg(L, c, 2)
	if p := player(c); p != nil {
		L.Push(lua.LNumber(p.Inv(world.InvBackpack).ItemCount(obj)))
		return 1
	}
	L.Push(lua.LNumber(0))
	return 1
}

// inv_add(obj, count) returns how many fitted in the backpack.
func ctxInvAdd(L *lua.LState) int {
	c := checkCtx(L)
	obj, count := objArg(L, c, 2), L.OptInt(3, 1)
	if p := player(c); p != nil && c.World.Stores.Objs.Get(obj) != nil {
		L.Push(lua.LNumber(p.Inv(world.InvBackpack).Add(obj, count, -1, false, false).Completed))
		return 1
	}
	L.Push(lua.LNumber(0))
	return 1
}

// inv_del(obj, count) returns how many were removed.
func ctxInvDel(L *lua.LState) int {
	c := checkCtx(L)
	obj, count := objArg(L, c, 2), L.OptInt(3, 1)
	if p := player(c); p != nil {
		L.Push(lua.LNumber(p.Inv(world.InvBackpack).Remove(obj, count, -1, false).Completed))
		return 1
	}
	L.Push(lua.LNumber(0))
	return 1
}

// drop(obj, count, duration) puts a private obj under the player.
func ctxDrop(L *lua.LState) int {
	c := checkCtx(L)
	obj, count, duration := objArg(L, c, 2), L.OptInt(3, 1), L.OptInt(4, 200)
	if p := player(c); p != nil {
		c.World.DropObj(p, obj, count, duration)
	}
	return 0
}

// chat(com, fn) opens a chat dialog; fn gets a ctx whose last_int is the
// answer.
func (e *Engine) ctxChat(L *lua.LState) int {
	c := checkCtx(L)
	com := L.CheckInt(2)
	fn := L.CheckFunction(3)
	p := player(c)
	if p == nil {
		return 0
	}
	p.OpenChatModal(com, func(next *world.ScriptContext) { e.call(fn, next) })
	return 0
}

func ctxOpenMain(L *lua.LState) int {
	c := checkCtx(L)
	com := L.CheckInt(2)
	if p := player(c); p != nil {
		p.OpenMainModal(com)
	}
	return 0
}

func ctxClose(L *lua.LState) int {
	if p := player(checkCtx(L)); p != nil {
		p.CloseModal()
	}
	return 0
}

// open_shop(inv, com) reports whether the shop exists.
func ctxOpenShop(L *lua.LState) int {
	c := checkCtx(L)
	inv, com := L.CheckInt(2), L.CheckInt(3)
	p := player(c)
	L.Push(lua.LBool(p != nil && c.World.OpenShop(p, inv, com)))
	return 1
}

func trade(L *lua.LState, fn func(w *world.World, p *world.Player, obj, count int) (int, error)) int {
	c := checkCtx(L)
	obj, count := objArg(L, c, 2), L.OptInt(3, 1)
	p := player(c)
	if p == nil {
		L.Push(lua.LNumber(0))
		return 1
	}
	n, err := fn(c.World, p, obj, count)
	L.Push(lua.LNumber(n))
	if err != nil {
		L.Push(lua.LString(err.Error()))
		return 2
	}
	return 1
}

// buy(obj, count) returns the count bought and an error string on failure.
func ctxBuy(L *lua.LState) int {
	return trade(L, (*world.World).BuyFromShop)
}

func ctxSell(L *lua.LState) int {
	return trade(L, (*world.World).SellToShop)
}

func ctxBroadcast(L *lua.LState) int {
	c := checkCtx(L)
	c.World.Broadcast(L.CheckString(2))
	return 0
}

func ctxNpcType(L *lua.LState) int {
	if n := npc(checkCtx(L)); n != nil {
		L.Push(lua.LNumber(n.Type))
		return 1
	}
	L.Push(lua.LNil)
	return 1
}

func ctxNpcSay(L *lua.LState) int {
	c := checkCtx(L)
	text := L.CheckString(2)
	if n := npc(c); n != nil {
		n.Say(text)
	}
	return 0
}

func ctxNpcAnim(L *lua.LState) int {
	c := checkCtx(L)
	seq, delay := L.CheckInt(2), L.OptInt(3, 0)
	if n := npc(c); n != nil {
		n.PlayAnimation(seq, delay)
	}
	return 0
}

// npc_stat(i) is the npc's current level for stat index i (0 attack .. 5
// magic).
func ctxNpcStat(L *lua.LState) int {
	c := checkCtx(L)
	i := L.CheckInt(2)
	if n := npc(c); n != nil && i >= 0 && i < world.NpcStatCount {
		L.Push(lua.LNumber(n.Levels[i]))
		return 1
	}
	L.Push(lua.LNumber(0))
	return 1
}

func ctxNpcQueue(L *lua.LState) int {
	c := checkCtx(L)
	id, delay := L.CheckInt(2), L.CheckInt(3)
	if n := npc(c); n != nil {
		n.Enqueue(id, delay, intArgs(L, 4)...)
	}
	return 0
}

// hit_npc(amount, type) damages the npc on behalf of the player and
// reports whether it died.
func ctxHitNpc(L *lua.LState) int {
	c := checkCtx(L)
	amount, typ := L.CheckInt(2), L.OptInt(3, 0)
	n := npc(c)
	if n == nil {
		L.Push(lua.LFalse)
		return 1
	}
	L.Push(lua.LBool(c.World.HitNpc(n, player(c), amount, typ)))
	return 1
}

// hit_player(amount, type) damages the player an npc handler targets.
func ctxHitPlayer(L *lua.LState) int {
	c := checkCtx(L)
	amount, typ := L.CheckInt(2), L.OptInt(3, 0)
	if p := player(c); p != nil {
		p.ApplyDamage(amount, typ)
	}
	return 0
}
