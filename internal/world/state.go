package world

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tickworld/server/internal/config"
	"github.com/tickworld/server/internal/data"
	"github.com/tickworld/server/internal/entity"
	"github.com/tickworld/server/internal/gamemap"
	"github.com/tickworld/server/internal/inventory"
	"github.com/tickworld/server/internal/net/packet"
	"github.com/tickworld/server/internal/script"
	"github.com/tickworld/server/internal/textutil"
	"github.com/tickworld/server/internal/zone"
)

var (
	ErrWorldFull     = errors.New("world is full")
	ErrAlreadyOnline = errors.New("player already online")
	ErrShuttingDown  = errors.New("world is shutting down")
)

// Login rejection codes sent in login_reject.
const (
	RejectInvalidCredentials = 1
	RejectAlreadyOnline      = 2
	RejectWorldFull          = 3
	RejectBanned             = 4
	RejectRateLimited        = 5
	RejectServerError        = 6
	RejectShuttingDown       = 7
)

// Saver persists player snapshots.
type Saver interface {
	SavePlayer(ctx context.Context, username string, snapshot []byte) error
}

// LoginRequest is an authenticated player waiting for a world slot.
// Snapshot is nil for a new character.
type LoginRequest struct {
	Username      string
	StaffModLevel int
	Snapshot      []byte
	MutedTicks    int64 // remaining mute from the account store
	Client        Client
}

// Options wires a World to its collaborators. Saver and Wealth may be nil.
type Options struct {
	Config      config.WorldConfig
	NodeID      int
	Map         *gamemap.GameMap
	Stores      *data.Stores
	Scripts     *Scripts
	Saver       Saver
	Wealth      WealthRecorder
	SaveTimeout time.Duration
	Rand        *rand.Rand
	Log         *zap.Logger
}

// World owns every entity and all per-tick state. Everything except
// QueueLogin runs on the tick goroutine.
type World struct {
	cfg     config.WorldConfig
	NodeID  int
	Map     *gamemap.GameMap
	Stores  *data.Stores
	Scripts *Scripts

	Players *entity.List[*Player]
	Npcs    *entity.List[*Npc]

	tick         int64
	tracker      *entity.Tracker
	objDelayed   []*delayedObj
	npcEvents    []npcEvent
	trackedZones map[int32]*zone.Zone         // zones with events queued this tick
	shops        map[int]*inventory.Inventory // inv type → shared shop stock
	byHash       map[int64]int                // name hash → pid

	pendingMu sync.Mutex
	pending   []LoginRequest

	shutdown     bool
	shutdownTick int64 // -1 when no reboot is scheduled

	saver       Saver
	saves       saveOrder
	wealth      WealthRecorder
	saveTimeout time.Duration
	rng         *rand.Rand
	log         *zap.Logger
}

func New(opts Options) *World {
	if opts.Scripts == nil {
		opts.Scripts = NewScripts()
	}
	if opts.Stores == nil {
		opts.Stores = &data.Stores{}
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.SaveTimeout <= 0 {
		opts.SaveTimeout = 5 * time.Second
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	return &World{
		cfg:          opts.Config,
		NodeID:       opts.NodeID,
		Map:          opts.Map,
		Stores:       opts.Stores,
		Scripts:      opts.Scripts,
		Players:      entity.NewPlayerList[*Player](opts.Config.MaxPlayers),
		Npcs:         entity.NewNpcList[*Npc](opts.Config.MaxNpcs),
		tracker:      entity.NewTracker(),
		trackedZones: make(map[int32]*zone.Zone),
		shops:        make(map[int]*inventory.Inventory),
		byHash:       make(map[int64]int),
		shutdownTick: -1,
		saver:        opts.Saver,
		wealth:       opts.Wealth,
		saveTimeout:  opts.SaveTimeout,
		rng:          opts.Rand,
		log:          opts.Log,
	}
}

func (w *World) Config() config.WorldConfig { return w.cfg }
func (w *World) Log() *zap.Logger           { return w.log }
func (w *World) Rand() *rand.Rand           { return w.rng }

// Tick is the current tick number.
func (w *World) Tick() int64 { return w.tick }

// AdvanceTick starts a new cycle. The engine calls it once before phase 1.
func (w *World) AdvanceTick() int64 {
	w.tick++
	return w.tick
}

// Tracker exposes the loc/obj lifecycle events.
func (w *World) Tracker() *entity.Tracker { return w.tracker }

// Reload swaps in freshly loaded config tables.
func (w *World) Reload(stores *data.Stores) {
	w.Stores = stores
	w.log.Info("config tables reloaded", zap.Int64("tick", w.tick))
}

// SafeRun calls fn and converts a panic into an error so one entity cannot
// abort a phase.
func SafeRun(fn func()) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = &PanicError{Value: rec}
		}
	}()
	fn()
	return nil
}

// PanicError wraps a recovered panic value.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string { return fmt.Sprintf("panic: %v", e.Value) }

// Players.

// QueueLogin hands an authenticated player to the next login phase. Safe
// for concurrent use.
func (w *World) QueueLogin(req LoginRequest) {
	w.pendingMu.Lock()
	w.pending = append(w.pending, req)
	w.pendingMu.Unlock()
}

// TakeLogins drains the pending login list.
func (w *World) TakeLogins() []LoginRequest {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()
	out := w.pending
	w.pending = nil
	return out
}

// PlayerByHash finds an online player by name hash.
func (w *World) PlayerByHash(hash int64) (*Player, bool) {
	pid, ok := w.byHash[hash]
	if !ok {
		return nil, false
	}
	return w.Players.Get(pid)
}

// PlayerByName finds an online player by canonical username.
func (w *World) PlayerByName(name string) (*Player, bool) {
	for _, p := range w.Players.All() {
		if p.Username == name {
			return p, true
		}
	}
	return nil, false
}

func (w *World) IsOnline(hash int64) bool {
	_, ok := w.byHash[hash]
	return ok
}

// NewPlayer builds a player bound to this world's map and inventory configs.
func (w *World) NewPlayer(username string) *Player {
	return NewPlayer(w.Map, username, w.cfg.StartX, w.cfg.StartZ, w.cfg.StartLevel, w.newInv)
}

func (w *World) newInv(typ int) *inventory.Inventory {
	size, ok := defaultInvSizes[typ]
	mode := inventory.StackNormal
	if t := w.Stores.Invs.Get(typ); t != nil {
		size = t.Size
		if t.StackAll {
			mode = inventory.StackAlways
		}
	} else if !ok {
		size = 1
	}
	return inventory.New(typ, size, mode, w.stackable)
}

func (w *World) stackable(id int) bool {
	o := w.Stores.Objs.Get(id)
	return o != nil && (o.Stackable || o.IsCert())
}

// AddPlayer places a player into the pool and its zone. The caller has
// already checked capacity.
func (w *World) AddPlayer(p *Player) int {
	pid := w.Players.Next(p.StaffModLevel > 0)
	w.Players.Set(pid, p)
	p.Index = pid
	p.SetActive(true)
	p.LoginTick = w.tick
	p.LastResponse = w.tick
	p.LastConnected = w.tick
	w.byHash[p.hash64] = pid
	w.Map.Zone(p.X, p.Z, p.Level).EnterPlayer(pid)
	p.AddCollision()
	p.Tele = true
	p.Jump = true
	p.MoveSpeed = entity.Instant
	return pid
}

// RemovePlayer vacates the player's slot. It does not save.
func (w *World) RemovePlayer(p *Player) {
	if p.Index == -1 {
		return
	}
	p.RemoveCollision()
	w.Map.Zone(p.X, p.Z, p.Level).LeavePlayer(p.Index)
	w.Players.Remove(p.Index)
	if pid, ok := w.byHash[p.hash64]; ok && pid == p.Index {
		delete(w.byHash, p.hash64)
	}
	p.Index = -1
	p.SetActive(false)
	p.ClearInteraction()
}

// Login admits one pending player. Rejections are reported to the client
// and returned.
func (w *World) Login(req LoginRequest) (*Player, error) {
	hash := textutil.ToBase37(req.Username)
	if w.IsOnline(hash) {
		w.rejectLogin(req, RejectAlreadyOnline, "already logged in")
		return nil, ErrAlreadyOnline
	}
	if w.shutdown {
		w.rejectLogin(req, RejectShuttingDown, "server is restarting")
		return nil, ErrShuttingDown
	}
	if w.Players.Count() >= w.cfg.MaxPlayers {
		w.rejectLogin(req, RejectWorldFull, "world is full")
		return nil, ErrWorldFull
	}

	p := w.NewPlayer(req.Username)
	p.StaffModLevel = req.StaffModLevel
	p.SetClient(req.Client)
	if req.Snapshot != nil {
		if err := p.Load(req.Snapshot); err != nil {
			w.log.Error("snapshot load failed, starting fresh", zap.String("username", req.Username), zap.Error(err))
			p = w.NewPlayer(req.Username)
			p.StaffModLevel = req.StaffModLevel
			p.SetClient(req.Client)
		}
	}

	// The account store owns mutes; a snapshot's tick count is stale after a restart.
	p.MutedUntil = w.tick + max(req.MutedTicks, 0)

	pid := w.AddPlayer(p)
	p.Write(packet.LoginAccept{Pid: pid, StaffModLevel: p.StaffModLevel})
	w.sendInitialState(p)
	w.runPlayer(p, script.Login, -1, -1, nil)
	if w.shutdownTick != -1 {
		p.Write(packet.UpdateRebootTimer{Ticks: int(w.shutdownTick - w.tick)})
	}
	w.notifyFriends(p, true)
	w.log.Info("player logged in",
		zap.String("username", p.Username),
		zap.Int("pid", pid),
		zap.Int("players", w.Players.Count()),
	)
	return p, nil
}

func (w *World) rejectLogin(req LoginRequest, code int, reason string) {
	if req.Client == nil {
		return
	}
	req.Client.Write(packet.LoginReject{Code: code, Reason: reason})
	_ = req.Client.Flush()
	req.Client.Close()
}

func (w *World) sendInitialState(p *Player) {
	for stat := range StatCount {
		p.writeStat(stat)
	}
	for _, inv := range p.Invs {
		inv.Update = true
	}
	for _, hash := range p.Friends {
		w.writeFriend(p, hash)
	}
	w.writeIgnores(p)
}

// Logout runs the logout trigger, saves and vacates the slot. The save is
// synchronous so a quick relog reads the latest state.
func (w *World) Logout(p *Player) {
	p.loggingOut = true
	p.CloseModal()
	w.runPlayer(p, script.Logout, -1, -1, nil)
	w.SavePlayer(p)
	w.notifyFriends(p, false)
	w.RemovePlayer(p)
	if c := p.Client(); c != nil {
		c.Write(packet.Logout{})
		_ = c.Flush()
		c.Close()
	}
	w.log.Info("player logged out",
		zap.String("username", p.Username),
		zap.Int("players", w.Players.Count()),
	)
}

// Shutdown.

// ScheduleShutdown starts the reboot countdown and tells every player.
func (w *World) ScheduleShutdown(ticks int) {
	ticks = max(ticks, 0)
	w.shutdownTick = w.tick + int64(ticks)
	for _, p := range w.Players.All() {
		p.Write(packet.UpdateRebootTimer{Ticks: ticks})
	}
	w.log.Warn("shutdown scheduled", zap.Int64("tick", w.tick), zap.Int("ticks", ticks))
}

// ProcessShutdown raises the shutdown flag once the countdown ends.
func (w *World) ProcessShutdown() {
	if w.shutdownTick != -1 && w.tick >= w.shutdownTick && !w.shutdown {
		w.shutdown = true
		w.log.Warn("shutdown started, logging out all players", zap.Int("players", w.Players.Count()))
	}
}

func (w *World) ShuttingDown() bool { return w.shutdown }

// ShutdownComplete reports whether the loop may stop.
func (w *World) ShutdownComplete() bool { return w.shutdown && w.Players.Count() == 0 }

// Broadcast sends a game message to every player.
func (w *World) Broadcast(text string) {
	for _, p := range w.Players.All() {
		p.MessageGame(text)
	}
}
