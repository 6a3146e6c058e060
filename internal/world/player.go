package world

import (
	"slices"

	"github.com/tickworld/server/internal/coord"
	"github.com/tickworld/server/internal/entity"
	"github.com/tickworld/server/internal/inventory"
	"github.com/tickworld/server/internal/net/packet"
	"github.com/tickworld/server/internal/textutil"
)

// Player info masks.
const (
	PlayerAppearance = 0x1
	PlayerAnim       = 0x2
	PlayerFaceEntity = 0x4
	PlayerSay        = 0x8
	PlayerDamage     = 0x10
	PlayerFaceCoord  = 0x20
	PlayerChat       = 0x40
	PlayerExactMove  = 0x100
	PlayerSpotanim   = 0x200
)

// Inventories every player carries.
const (
	InvBackpack = 93
	InvWorn     = 94
	InvBank     = 95
)

var defaultInvSizes = map[int]int{
	InvBackpack: 28,
	InvWorn:     14,
	InvBank:     352,
}

const (
	MaxRunEnergy = 10000
	MaxFriends   = 200
	MaxIgnores   = 100
	VarCount     = 256

	runDrain = 67
)

// Client is the transport side of a logged-in player. Receive never blocks;
// it reports false once the inbound queue is empty.
type Client interface {
	Receive() ([]byte, bool)
	Write(msg packet.Message)
	Flush() error
	IsConnected() bool
	Close()
	RemoteAddr() string
}

// InvFactory builds an empty inventory of the given type.
type InvFactory func(typ int) *inventory.Inventory

// ChatMessage is a public chat line shown over the player's head.
type ChatMessage struct {
	Text   string
	Color  int
	Effect int
}

// Player is a logged-in user. All fields are owned by the tick goroutine.
type Player struct {
	entity.PathingEntity

	Username      string // canonical
	hash64        int64
	StaffModLevel int
	client        Client
	out           *packet.Writer
	messages      []*packet.Reader

	Stats       [StatCount]int // experience, tenths
	Levels      [StatCount]int
	BaseLevels  [StatCount]int
	CombatLevel int
	Vars        [VarCount]int
	RunEnergy   int
	Run         bool
	runInput    bool // ctrl held on the last move click
	Invs        map[int]*inventory.Inventory
	newInv      InvFactory
	Friends     []int64
	Ignores     []int64
	MutedUntil  int64
	ChatMessage *ChatMessage

	queue       []*QueueRequest
	weakQueue   []*QueueRequest
	engineQueue []*QueueRequest
	timers      map[int]*Timer

	modalMain         int
	modalChat         int
	modalSide         int
	refreshModalClose bool
	Protect           bool
	OpenShop          int // shop inventory type, -1 when closed
	Selection         Selection
	resume            Resume

	area *BuildArea

	LastResponse      int64 // tick a message last arrived
	LastConnected     int64 // tick the client was last seen connected
	LoginTick         int64
	lastEnergyShown   int
	requestLogout     bool
	requestIdleLogout bool
	idleSince         int64 // tick the idle request arrived, -1 none
	loggingOut        bool
}

// NewPlayer builds a fresh level-1 character at the given position.
func NewPlayer(nav entity.Navigator, username string, x, z, level int, newInv InvFactory) *Player {
	p := &Player{
		PathingEntity: entity.NewPathingEntity(nav, entity.PathingOptions{
			Kind:         entity.KindPlayer,
			Level:        level,
			X:            x,
			Z:            z,
			Width:        1,
			Length:       1,
			Lifecycle:    entity.Forever,
			MoveRestrict: entity.RestrictNormal,
			BlockWalk:    entity.BlockWalkNpc,
			MoveStrategy: entity.Smart,
			DefaultSpeed: entity.Walk,
			CoordMask:    PlayerFaceCoord,
			EntityMask:   PlayerFaceEntity,
		}),
		Username:        username,
		hash64:          textutil.ToBase37(username),
		out:             packet.NewWriter(),
		RunEnergy:       MaxRunEnergy,
		Invs:            make(map[int]*inventory.Inventory),
		newInv:          newInv,
		timers:          make(map[int]*Timer),
		modalMain:       -1,
		modalChat:       -1,
		modalSide:       -1,
		OpenShop:        -1,
		lastEnergyShown: -1,
		idleSince:       -1,
	}
	for stat := range StatCount {
		p.Levels[stat] = 1
		p.BaseLevels[stat] = 1
	}
	p.Stats[StatHitpoints] = ExpForLevel(10)
	p.Levels[StatHitpoints] = 10
	p.BaseLevels[StatHitpoints] = 10
	p.CombatLevel = CombatLevel(&p.BaseLevels)
	p.syncHealth()
	for typ := range defaultInvSizes {
		p.Inv(typ)
	}
	p.area = newBuildArea()
	return p
}

func (p *Player) Hash64() int64 { return p.hash64 }

func (p *Player) Origin() (x, z int) { return p.area.OriginX, p.area.OriginZ }

// Write buffers a message for this tick's output.
func (p *Player) Write(msg packet.Message) { p.out.Write(msg) }

// Pending reports how many messages are buffered for output.
func (p *Player) Pending() int { return p.out.Len() }

func (p *Player) Client() Client { return p.client }

func (p *Player) SetClient(c Client) { p.client = c }

func (p *Player) IsClientConnected() bool {
	return p.client != nil && p.client.IsConnected()
}

// Area is the player's visible zone window.
func (p *Player) Area() *BuildArea { return p.area }

// QueueMessage stores an inbound message until the input phase decodes it.
func (p *Player) QueueMessage(r *packet.Reader) { p.messages = append(p.messages, r) }

// DecodeIn hands queued messages to handle in arrival order. Once a
// category reaches its limit, its remaining messages wait for the next tick.
func (p *Player) DecodeIn(userLimit, clientLimit int, handle func(r *packet.Reader)) {
	users, clients := 0, 0
	kept := p.messages[:0]
	for _, r := range p.messages {
		if packet.IsUserEvent(r.Type()) {
			if users >= userLimit {
				kept = append(kept, r)
				continue
			}
			users++
		} else {
			if clients >= clientLimit {
				kept = append(kept, r)
				continue
			}
			clients++
		}
		handle(r)
	}
	clear(p.messages[len(kept):])
	p.messages = kept
}

// FlushOut sends everything buffered this tick to the client.
func (p *Player) FlushOut() error {
	msgs := p.out.Drain()
	if p.client == nil {
		return nil
	}
	for _, msg := range msgs {
		p.client.Write(msg)
	}
	return p.client.Flush()
}

// Inv returns an inventory, creating it on first use.
func (p *Player) Inv(typ int) *inventory.Inventory {
	if inv, ok := p.Invs[typ]; ok {
		return inv
	}
	if p.newInv == nil {
		return nil
	}
	inv := p.newInv(typ)
	p.Invs[typ] = inv
	return inv
}

// Modal state.

func (p *Player) OpenMainModal(com int) {
	if p.modalMain == com {
		return
	}
	p.modalMain = com
	p.Write(packet.IfOpenMain{Component: com})
}

func (p *Player) CloseModal() {
	if !p.ContainsModal() {
		return
	}
	p.modalMain, p.modalChat, p.modalSide = -1, -1, -1
	p.OpenShop = -1
	p.resume = nil
	p.refreshModalClose = true
}

func (p *Player) ContainsModal() bool {
	return p.modalMain != -1 || p.modalChat != -1 || p.modalSide != -1
}

func (p *Player) ModalMain() int { return p.modalMain }

// Busy is true while delayed or looking at an interface.
func (p *Player) Busy() bool { return p.Delayed || p.ContainsModal() }

// CanAccess reports whether scripts may start new actions for the player.
func (p *Player) CanAccess() bool { return !p.Protect && !p.Busy() }

// Delay stalls the player until tick now+ticks.
func (p *Player) Delay(now int64, ticks int) {
	p.Delayed = true
	p.DelayedUntil = now + int64(ticks)
}

// Queues and timers.

func (p *Player) Enqueue(kind QueueKind, id, delay int, args ...int) {
	req := &QueueRequest{Kind: kind, ID: id, Args: args, Delay: delay, LastInt: -1}
	switch kind {
	case QueueWeak:
		p.weakQueue = append(p.weakQueue, req)
	case QueueEngine:
		p.engineQueue = append(p.engineQueue, req)
	default:
		p.queue = append(p.queue, req)
	}
}

// ClearWeakQueue drops weak requests; any new action does this.
func (p *Player) ClearWeakQueue() {
	clear(p.weakQueue)
	p.weakQueue = p.weakQueue[:0]
}

// QueueLen counts pending requests of every kind.
func (p *Player) QueueLen() int {
	return len(p.queue) + len(p.weakQueue) + len(p.engineQueue)
}

func (p *Player) SetTimer(kind TimerKind, id, interval int) {
	p.timers[id] = &Timer{Kind: kind, ID: id, Interval: interval}
}

func (p *Player) ClearTimer(id int) { delete(p.timers, id) }

func (p *Player) HasTimer(id int) bool {
	_, ok := p.timers[id]
	return ok
}

// Stats.

// GiveStat adds experience in tenths and reports whether the base level
// went up.
func (p *Player) GiveStat(stat, xp int) bool {
	if stat < 0 || stat >= StatCount || xp <= 0 {
		return false
	}
	p.Stats[stat] = min(MaxExp, p.Stats[stat]+xp)
	before := p.BaseLevels[stat]
	after := LevelForExp(p.Stats[stat])
	levelled := after > before
	if levelled {
		p.BaseLevels[stat] = after
		p.Levels[stat] += after - before
		p.refreshCombatLevel()
		if stat == StatHitpoints {
			p.syncHealth()
		}
	}
	p.writeStat(stat)
	return levelled
}

// SetLevel forces a stat to a level, resetting its experience to match.
func (p *Player) SetLevel(stat, level int) {
	if stat < 0 || stat >= StatCount {
		return
	}
	level = max(1, min(level, MaxLevel))
	p.Stats[stat] = ExpForLevel(level)
	p.BaseLevels[stat] = level
	p.Levels[stat] = level
	p.refreshCombatLevel()
	if stat == StatHitpoints {
		p.syncHealth()
	}
	p.writeStat(stat)
}

// ChangeStat boosts or drains the current level without touching experience.
func (p *Player) ChangeStat(stat, delta int) {
	if stat < 0 || stat >= StatCount {
		return
	}
	p.Levels[stat] = max(0, min(p.Levels[stat]+delta, 255))
	if stat == StatHitpoints {
		p.syncHealth()
	}
	p.writeStat(stat)
}

func (p *Player) writeStat(stat int) {
	p.Write(packet.UpdateStat{Stat: stat, Level: p.Levels[stat], BaseLevel: p.BaseLevels[stat], Exp: p.Stats[stat]})
}

func (p *Player) refreshCombatLevel() {
	if lvl := CombatLevel(&p.BaseLevels); lvl != p.CombatLevel {
		p.CombatLevel = lvl
		p.Masks |= PlayerAppearance
	}
}

func (p *Player) syncHealth() {
	p.CurrentHealth = p.Levels[StatHitpoints]
	p.MaxHealth = p.BaseLevels[StatHitpoints]
}

// ApplyDamage hits the player, never below zero hitpoints.
func (p *Player) ApplyDamage(amount, typ int) {
	amount = max(0, min(amount, p.Levels[StatHitpoints]))
	p.Levels[StatHitpoints] -= amount
	p.DamageTaken = amount
	p.DamageType = typ
	p.syncHealth()
	p.Masks |= PlayerDamage
	p.writeStat(StatHitpoints)
}

// Display.

func (p *Player) Say(text string) {
	p.Chat = text
	p.Masks |= PlayerSay
}

func (p *Player) PublicChat(msg ChatMessage) {
	p.ChatMessage = &msg
	p.Masks |= PlayerChat
}

func (p *Player) PlayAnimation(seq, delay int) {
	p.AnimID = seq
	p.AnimDelay = delay
	p.Masks |= PlayerAnim
}

func (p *Player) SpotAnim(id, height, delay int) {
	p.GraphicID = id
	p.GraphicHeight = height
	p.GraphicDelay = delay
	p.Masks |= PlayerSpotanim
}

func (p *Player) MessageGame(text string) { p.Write(packet.MessageGame{Text: text}) }

func (p *Player) IsMuted(now int64) bool { return p.MutedUntil > now }

// Vars.

func (p *Player) GetVar(id int) int {
	if id < 0 || id >= VarCount {
		return 0
	}
	return p.Vars[id]
}

func (p *Player) SetVar(id, value int) {
	if id < 0 || id >= VarCount {
		return
	}
	p.Vars[id] = value
}

// Run energy.

// SetRunInput records whether ctrl was held on the latest move click; it
// inverts the run toggle for that walk.
func (p *Player) SetRunInput(ctrl bool) { p.runInput = ctrl }

func (p *Player) wantsRun() bool {
	return p.Run != p.runInput && p.RunEnergy >= runDrain
}

// processEnergy drains for a run step taken this tick and recovers
// otherwise.
func (p *Player) processEnergy() {
	if p.RunDir != coord.None {
		p.RunEnergy = max(0, p.RunEnergy-runDrain)
		if p.RunEnergy < runDrain {
			p.Run = false
			p.runInput = false
		}
	} else if p.RunEnergy < MaxRunEnergy {
		p.RunEnergy = min(MaxRunEnergy, p.RunEnergy+8+p.BaseLevels[StatAgility]/6)
	}
	if shown := p.RunEnergy / 100; shown != p.lastEnergyShown {
		p.lastEnergyShown = shown
		p.Write(packet.UpdateRunEnergy{Energy: shown})
	}
}

// Social lists hold base37 name hashes.

func (p *Player) AddFriend(hash int64) bool {
	if hash <= 0 || len(p.Friends) >= MaxFriends || slices.Contains(p.Friends, hash) {
		return false
	}
	p.Friends = append(p.Friends, hash)
	return true
}

func (p *Player) RemoveFriend(hash int64) bool {
	i := slices.Index(p.Friends, hash)
	if i == -1 {
		return false
	}
	p.Friends = slices.Delete(p.Friends, i, i+1)
	return true
}

func (p *Player) AddIgnore(hash int64) bool {
	if hash <= 0 || len(p.Ignores) >= MaxIgnores || slices.Contains(p.Ignores, hash) {
		return false
	}
	p.Ignores = append(p.Ignores, hash)
	return true
}

func (p *Player) RemoveIgnore(hash int64) bool {
	i := slices.Index(p.Ignores, hash)
	if i == -1 {
		return false
	}
	p.Ignores = slices.Delete(p.Ignores, i, i+1)
	return true
}

func (p *Player) IsIgnoring(hash int64) bool { return slices.Contains(p.Ignores, hash) }

func (p *Player) IsFriend(hash int64) bool { return slices.Contains(p.Friends, hash) }

// Logout requests.

// RequestLogout asks for a clean logout at the next logout phase.
func (p *Player) RequestLogout() { p.requestLogout = true }

// RequestIdleLogout is sent by the client after a period without input.
func (p *Player) RequestIdleLogout() { p.requestIdleLogout = true }

func (p *Player) LoggingOut() bool { return p.loggingOut }
