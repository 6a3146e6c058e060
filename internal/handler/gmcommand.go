package handler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tickworld/server/internal/entity"
	"github.com/tickworld/server/internal/net/packet"
	"github.com/tickworld/server/internal/textutil"
	"github.com/tickworld/server/internal/world"
)

// Staff levels required for each command group.
const (
	StaffModerator = 2
	StaffAdmin     = 3
	StaffDeveloper = 4
)

const (
	maxCommand       = 80
	minTickRate      = 20 * time.Millisecond
	spawnLifetime    = 500 // ticks a spawned npc or loc stays
	giveManyAmount   = 1000
	centrepieceShape = 10
)

type gmCommand struct {
	level int
	run   func(p *world.Player, args []string, deps *Deps)
}

var gmCommands map[string]gmCommand

func init() {
	gmCommands = map[string]gmCommand{
		"speed":  {StaffDeveloper, gmSpeed},
		"fly":    {StaffDeveloper, gmFly},
		"naive":  {StaffDeveloper, gmNaive},
		"reload": {StaffDeveloper, gmReload},

		"setvar":      {StaffAdmin, gmSetVar},
		"getvar":      {StaffAdmin, gmGetVar},
		"give":        {StaffAdmin, gmGive},
		"givemany":    {StaffAdmin, gmGiveMany},
		"setstat":     {StaffAdmin, gmSetStat},
		"advancestat": {StaffAdmin, gmAdvanceStat},
		"minme":       {StaffAdmin, gmMinMe},
		"npcadd":      {StaffAdmin, gmNpcAdd},
		"locadd":      {StaffAdmin, gmLocAdd},
		"teleother":   {StaffAdmin, gmTeleOther},
		"broadcast":   {StaffAdmin, gmBroadcast},
		"reboot":      {StaffAdmin, gmReboot},
		"slowreboot":  {StaffAdmin, gmSlowReboot},
		"serverdrop":  {StaffAdmin, gmServerDrop},

		"tele":     {StaffModerator, gmTele},
		"teleto":   {StaffModerator, gmTeleTo},
		"getcoord": {StaffModerator, gmGetCoord},
		"kick":     {StaffModerator, gmKick},
		"ban":      {StaffModerator, gmBan},
		"mute":     {StaffModerator, gmMute},
	}
}

// HandleClientCheat processes client_cheat, a "::" command typed into chat.
// Built-in commands run when the player's staff level allows; anything else
// is handed to content through the client_cheat trigger.
func HandleClientCheat(p *world.Player, r *packet.Reader, deps *Deps) {
	var m packet.ClientCheat
	if !decode(p, r, &m, deps) {
		return
	}
	if p.StaffModLevel < StaffModerator || len(m.Command) > maxCommand {
		return
	}
	parts := strings.Fields(m.Command)
	if len(parts) == 0 {
		return
	}

	deps.Log.Info("admin command", zap.String("username", p.Username), zap.String("command", m.Command))

	name := strings.ToLower(parts[0])
	if cmd, ok := gmCommands[name]; ok && p.StaffModLevel >= cmd.level {
		cmd.run(p, parts[1:], deps)
		return
	}
	deps.World.RunCheat(p, m.Command)
}

// --- Helpers ---

func gmMsg(p *world.Player, msg string) {
	p.MessageGame(msg)
}

func gmMsgf(p *world.Player, format string, a ...any) {
	gmMsg(p, fmt.Sprintf(format, a...))
}

// resolveID accepts a numeric id or a debug name.
func resolveID(arg string, byName func(string) int, exists func(int) bool) int {
	if id, err := strconv.Atoi(arg); err == nil {
		if exists(id) {
			return id
		}
		return -1
	}
	return byName(arg)
}

func resolveObj(arg string, deps *Deps) int {
	objs := deps.World.Stores.Objs
	return resolveID(arg, objs.ID, func(id int) bool { return objs.Get(id) != nil })
}

func resolveNpc(arg string, deps *Deps) int {
	npcs := deps.World.Stores.Npcs
	return resolveID(arg, npcs.ID, func(id int) bool { return npcs.Get(id) != nil })
}

func resolveLoc(arg string, deps *Deps) int {
	locs := deps.World.Stores.Locs
	return resolveID(arg, locs.ID, func(id int) bool { return locs.Get(id) != nil })
}

func resolveStat(arg string) int {
	if id, err := strconv.Atoi(arg); err == nil {
		if id >= 0 && id < world.StatCount {
			return id
		}
		return -1
	}
	return world.ParseStat(arg)
}

func onlinePlayer(p *world.Player, name string, deps *Deps) *world.Player {
	other, ok := deps.World.PlayerByName(textutil.CanonicalName(name))
	if !ok {
		gmMsgf(p, "Player %s not found.", name)
		return nil
	}
	return other
}

// teleport moves a player after dropping whatever they were doing.
func teleport(p *world.Player, x, z, level int, deps *Deps) bool {
	if !deps.World.Map.IsZoneAllocated(level, x, z) {
		return false
	}
	p.CloseModal()
	p.ClearInteraction()
	p.ClearWaypoints()
	p.Teleport(x, z, level)
	return true
}

// minutesToTicks converts a sanction length to game ticks.
func minutesToTicks(minutes int, deps *Deps) int64 {
	rate := deps.TickRate
	if rate <= 0 {
		rate = 600 * time.Millisecond
	}
	return int64(time.Duration(minutes) * time.Minute / rate)
}

// --- Developer ---

func gmSpeed(p *world.Player, args []string, deps *Deps) {
	if len(args) < 1 {
		gmMsg(p, "Usage: ::speed <ms>")
		return
	}
	ms, err := strconv.Atoi(args[0])
	rate := time.Duration(ms) * time.Millisecond
	if err != nil || rate < minTickRate {
		gmMsg(p, "Usage: ::speed <ms> (min 20)")
		return
	}
	if deps.SetTickRate == nil {
		gmMsg(p, "Tick rate cannot be changed on this server.")
		return
	}
	deps.SetTickRate(rate)
	gmMsgf(p, "Tick rate set to %dms.", ms)
}

func toggleStrategy(p *world.Player, s entity.MoveStrategy, label string) {
	if p.MoveStrategy == s {
		p.MoveStrategy = entity.Smart
		gmMsgf(p, "%s mode: OFF", label)
		return
	}
	p.MoveStrategy = s
	gmMsgf(p, "%s mode: ON", label)
}

func gmFly(p *world.Player, _ []string, _ *Deps)   { toggleStrategy(p, entity.Fly, "Fly") }
func gmNaive(p *world.Player, _ []string, _ *Deps) { toggleStrategy(p, entity.Naive, "Naive") }

func gmReload(p *world.Player, _ []string, deps *Deps) {
	if deps.Reload == nil {
		gmMsg(p, "Reload is not available.")
		return
	}
	if err := deps.Reload(); err != nil {
		deps.Log.Error("reload failed", zap.String("username", p.Username), zap.Error(err))
		gmMsg(p, "Reload failed: "+err.Error())
		return
	}
	gmMsg(p, "Configs reloaded.")
}

// --- Admin ---

func gmSetVar(p *world.Player, args []string, _ *Deps) {
	if len(args) < 2 {
		gmMsg(p, "Usage: ::setvar <id> <value>")
		return
	}
	id, err1 := strconv.Atoi(args[0])
	value, err2 := strconv.Atoi(args[1])
	if err1 != nil || err2 != nil || id < 0 || id >= world.VarCount {
		gmMsgf(p, "Unknown variable: %s", args[0])
		return
	}
	p.SetVar(id, value)
	gmMsgf(p, "Set var[%d] = %d", id, value)
}

func gmGetVar(p *world.Player, args []string, _ *Deps) {
	if len(args) < 1 {
		gmMsg(p, "Usage: ::getvar <id>")
		return
	}
	id, err := strconv.Atoi(args[0])
	if err != nil || id < 0 || id >= world.VarCount {
		gmMsgf(p, "Unknown variable: %s", args[0])
		return
	}
	gmMsgf(p, "var[%d] = %d", id, p.GetVar(id))
}

func give(p *world.Player, arg string, amount int, deps *Deps) {
	obj := resolveObj(arg, deps)
	if obj == -1 {
		gmMsgf(p, "Unknown item: %s", arg)
		return
	}
	tx := p.Inv(world.InvBackpack).Add(obj, amount, -1, false, false)
	if tx.Completed == 0 {
		gmMsg(p, "Inventory full.")
		return
	}
	gmMsgf(p, "Gave %dx %s", tx.Completed, deps.World.Stores.Objs.Get(obj).Name)
}

func gmGive(p *world.Player, args []string, deps *Deps) {
	if len(args) < 1 {
		gmMsg(p, "Usage: ::give <item> [amount]")
		return
	}
	amount := 1
	if len(args) >= 2 {
		if n, err := strconv.Atoi(args[1]); err == nil && n > 0 {
			amount = n
		}
	}
	give(p, args[0], amount, deps)
}

func gmGiveMany(p *world.Player, args []string, deps *Deps) {
	if len(args) < 1 {
		gmMsg(p, "Usage: ::givemany <item>")
		return
	}
	give(p, args[0], giveManyAmount, deps)
}

func statLevelArgs(p *world.Player, args []string, usage string) (stat, level int, ok bool) {
	if len(args) < 2 {
		gmMsg(p, usage)
		return 0, 0, false
	}
	stat = resolveStat(args[0])
	if stat == -1 {
		gmMsgf(p, "Unknown skill: %s", args[0])
		return 0, 0, false
	}
	level, err := strconv.Atoi(args[1])
	if err != nil {
		level = 1
	}
	return stat, max(1, min(level, world.MaxLevel)), true
}

func gmSetStat(p *world.Player, args []string, _ *Deps) {
	stat, level, ok := statLevelArgs(p, args, "Usage: ::setstat <skill> <level>")
	if !ok {
		return
	}
	p.SetLevel(stat, level)
	gmMsgf(p, "Set %s to level %d", world.StatName(stat), level)
}

func gmAdvanceStat(p *world.Player, args []string, _ *Deps) {
	stat, level, ok := statLevelArgs(p, args, "Usage: ::advancestat <skill> <level>")
	if !ok {
		return
	}
	if xp := world.ExpForLevel(level) - p.Stats[stat]; xp > 0 {
		p.GiveStat(stat, xp)
	}
	gmMsgf(p, "Advanced %s to level %d", world.StatName(stat), p.BaseLevels[stat])
}

func gmMinMe(p *world.Player, _ []string, _ *Deps) {
	for stat := range world.StatCount {
		level := 1
		if stat == world.StatHitpoints {
			level = 10
		}
		p.SetLevel(stat, level)
	}
	gmMsg(p, "All stats reset to minimum.")
}

func gmNpcAdd(p *world.Player, args []string, deps *Deps) {
	if len(args) < 1 {
		gmMsg(p, "Usage: ::npcadd <npc>")
		return
	}
	id := resolveNpc(args[0], deps)
	if id == -1 {
		gmMsgf(p, "Unknown NPC: %s", args[0])
		return
	}
	w := deps.World
	t := w.Stores.Npcs.Get(id)
	n := world.NewNpc(w.Map, t, p.Level, p.X, p.Z, entity.Despawn)
	if err := w.AddNpc(n, spawnLifetime); err != nil {
		if errors.Is(err, world.ErrWorldFull) {
			gmMsg(p, "No free npc slots.")
			return
		}
		gmMsg(p, "Spawn failed: "+err.Error())
		return
	}
	gmMsgf(p, "Spawned NPC: %s (id=%d)", t.Name, id)
}

func gmLocAdd(p *world.Player, args []string, deps *Deps) {
	if len(args) < 1 {
		gmMsg(p, "Usage: ::locadd <loc>")
		return
	}
	id := resolveLoc(args[0], deps)
	if id == -1 {
		gmMsgf(p, "Unknown loc: %s", args[0])
		return
	}
	t := deps.World.Stores.Locs.Get(id)
	loc := entity.NewLoc(p.Level, p.X, p.Z, t.Width, t.Length, entity.Despawn, id, centrepieceShape, 0)
	deps.World.AddLoc(loc, spawnLifetime)
	gmMsgf(p, "Spawned loc: %s (id=%d)", t.Name, id)
}

func gmTeleOther(p *world.Player, args []string, deps *Deps) {
	if len(args) < 1 {
		gmMsg(p, "Usage: ::teleother <username>")
		return
	}
	other := onlinePlayer(p, args[0], deps)
	if other == nil {
		return
	}
	teleport(other, p.X, p.Z, p.Level, deps)
	gmMsgf(p, "Teleported %s to your location.", other.Username)
}

func gmBroadcast(p *world.Player, args []string, deps *Deps) {
	if len(args) < 1 {
		gmMsg(p, "Usage: ::broadcast <message>")
		return
	}
	deps.World.Broadcast("[Server] " + strings.Join(args, " "))
}

func gmReboot(p *world.Player, _ []string, deps *Deps) {
	gmMsg(p, "Initiating immediate reboot...")
	deps.World.ScheduleShutdown(0)
}

func gmSlowReboot(p *world.Player, args []string, deps *Deps) {
	if len(args) < 1 {
		gmMsg(p, "Usage: ::slowreboot <seconds>")
		return
	}
	seconds, err := strconv.Atoi(args[0])
	if err != nil || seconds <= 0 {
		return
	}
	rate := deps.TickRate
	if rate <= 0 {
		rate = 600 * time.Millisecond
	}
	period := time.Duration(seconds) * time.Second
	ticks := int((period + rate - 1) / rate)
	deps.World.ScheduleShutdown(ticks)
	gmMsgf(p, "Reboot in %ds (%d ticks).", seconds, ticks)
}

func gmServerDrop(p *world.Player, _ []string, _ *Deps) {
	gmMsg(p, "Dropping connection...")
	if c := p.Client(); c != nil {
		c.Close()
	}
}

// --- Moderator ---

func gmTele(p *world.Player, args []string, deps *Deps) {
	if len(args) < 1 {
		gmMsg(p, "Usage: ::tele <level,mx,mz[,lx,lz]>")
		return
	}
	fields := strings.Split(args[0], ",")
	if len(fields) < 3 {
		gmMsg(p, "Invalid coord format. Use: level,mx,mz[,lx,lz]")
		return
	}
	nums := make([]int, len(fields))
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			gmMsg(p, "Invalid coord format. Use: level,mx,mz[,lx,lz]")
			return
		}
		nums[i] = n
	}
	level := max(0, min(nums[0], 3))
	mx := max(0, min(nums[1], 255))
	mz := max(0, min(nums[2], 255))
	lx, lz := 32, 32
	if len(nums) >= 4 {
		lx = max(0, min(nums[3], 63))
	}
	if len(nums) >= 5 {
		lz = max(0, min(nums[4], 63))
	}
	if !teleport(p, mx<<6+lx, mz<<6+lz, level, deps) {
		gmMsg(p, "There is no map there.")
		return
	}
	gmMsgf(p, "Teleported to %d,%d,%d,%d,%d", level, mx, mz, lx, lz)
}

func gmTeleTo(p *world.Player, args []string, deps *Deps) {
	if len(args) < 1 {
		gmMsg(p, "Usage: ::teleto <username>")
		return
	}
	other := onlinePlayer(p, args[0], deps)
	if other == nil {
		return
	}
	teleport(p, other.X, other.Z, other.Level, deps)
	gmMsgf(p, "Teleported to %s.", other.Username)
}

func gmGetCoord(p *world.Player, _ []string, _ *Deps) {
	gmMsgf(p, "Coord: %d,%d,%d,%d,%d (abs: %d,%d)", p.Level, p.X>>6, p.Z>>6, p.X&63, p.Z&63, p.X, p.Z)
}

// kick closes whatever holds the player so the logout goes through on the
// next logout phase.
func kick(other *world.Player) {
	other.CloseModal()
	other.ClearInteraction()
	other.RequestLogout()
}

func gmKick(p *world.Player, args []string, deps *Deps) {
	if len(args) < 1 {
		gmMsg(p, "Usage: ::kick <username>")
		return
	}
	if other := onlinePlayer(p, args[0], deps); other != nil {
		kick(other)
		gmMsgf(p, "Kicked %s.", other.Username)
	}
}

func sanctionArgs(p *world.Player, args []string, usage string) (name string, minutes int, ok bool) {
	if len(args) < 2 {
		gmMsg(p, usage)
		return "", 0, false
	}
	minutes, err := strconv.Atoi(args[len(args)-1])
	if err != nil || minutes <= 0 {
		gmMsg(p, usage)
		return "", 0, false
	}
	// names may contain spaces
	return strings.Join(args[:len(args)-1], " "), minutes, true
}

func gmBan(p *world.Player, args []string, deps *Deps) {
	name, minutes, ok := sanctionArgs(p, args, "Usage: ::ban <username> <minutes>")
	if !ok {
		return
	}
	name = textutil.CanonicalName(name)
	if other, online := deps.World.PlayerByName(name); online {
		kick(other)
	}
	if deps.Moderation != nil {
		deps.Moderation.Ban(name, time.Now().Add(time.Duration(minutes)*time.Minute), p.Username)
	}
	deps.Log.Info("player banned", zap.String("by", p.Username), zap.String("target", name), zap.Int("minutes", minutes))
	gmMsgf(p, "Banned %s for %d minutes.", name, minutes)
}

func gmMute(p *world.Player, args []string, deps *Deps) {
	name, minutes, ok := sanctionArgs(p, args, "Usage: ::mute <username> <minutes>")
	if !ok {
		return
	}
	name = textutil.CanonicalName(name)
	if other, online := deps.World.PlayerByName(name); online {
		other.MutedUntil = deps.World.Tick() + minutesToTicks(minutes, deps)
		other.MessageGame("You have been muted.")
	}
	if deps.Moderation != nil {
		deps.Moderation.Mute(name, time.Now().Add(time.Duration(minutes)*time.Minute), p.Username)
	}
	deps.Log.Info("player muted", zap.String("by", p.Username), zap.String("target", name), zap.Int("minutes", minutes))
	gmMsgf(p, "Muted %s for %d minutes.", name, minutes)
}
