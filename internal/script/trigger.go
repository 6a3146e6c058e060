// Package script maps trigger points to content handlers.
package script

import "strings"

// Trigger identifies a point where content can hook in. Numbered ranges
// (op1-op5, queue1-queue20) are contiguous so callers can add an offset.
type Trigger int

const (
	Proc Trigger = iota
	Label

	OpNpc1
	OpNpc2
	OpNpc3
	OpNpc4
	OpNpc5
	OpNpcU
	OpNpcT
	ApNpc1
	ApNpc2
	ApNpc3
	ApNpc4
	ApNpc5
	ApNpcU
	ApNpcT

	OpLoc1
	OpLoc2
	OpLoc3
	OpLoc4
	OpLoc5
	OpLocU
	OpLocT
	ApLoc1
	ApLoc2
	ApLoc3
	ApLoc4
	ApLoc5
	ApLocU
	ApLocT

	OpObj1
	OpObj2
	OpObj3
	OpObj4
	OpObj5
	OpObjU
	OpObjT
	ApObj1
	ApObj2
	ApObj3
	ApObj4
	ApObj5
	ApObjU
	ApObjT

	OpPlayer1
	OpPlayer2
	OpPlayer3
	OpPlayer4
	OpPlayer5
	OpPlayerU
	OpPlayerT
	ApPlayer1
	ApPlayer2
	ApPlayer3
	ApPlayer4
	ApPlayer5
	ApPlayerU
	ApPlayerT

	OpHeld1
	OpHeld2
	OpHeld3
	OpHeld4
	OpHeld5
	OpHeldU
	OpHeldT

	AiOpNpc1
	AiOpNpc2
	AiOpNpc3
	AiOpNpc4
	AiOpNpc5
	AiApNpc1
	AiApNpc2
	AiApNpc3
	AiApNpc4
	AiApNpc5
	AiOpLoc1
	AiOpLoc2
	AiOpLoc3
	AiOpLoc4
	AiOpLoc5
	AiApLoc1
	AiApLoc2
	AiApLoc3
	AiApLoc4
	AiApLoc5
	AiOpObj1
	AiOpObj2
	AiOpObj3
	AiOpObj4
	AiOpObj5
	AiApObj1
	AiApObj2
	AiApObj3
	AiApObj4
	AiApObj5
	AiOpPlayer1
	AiOpPlayer2
	AiOpPlayer3
	AiOpPlayer4
	AiOpPlayer5
	AiApPlayer1
	AiApPlayer2
	AiApPlayer3
	AiApPlayer4
	AiApPlayer5

	AiQueue1 // AiQueue1..AiQueue20
	_
	_
	_
	_
	_
	_
	_
	_
	_
	_
	_
	_
	_
	_
	_
	_
	_
	_
	AiQueue20

	AiTimer
	AiSpawn
	AiDespawn
	AiWalkTrigger

	Login
	Logout
	Tutorial
	AdvanceStat
	ChangeStat
	MapZone
	MapZoneExit
	Zone
	ZoneExit
	WalkTrigger
	Queue
	WeakQueue
	Timer
	SoftTimer

	InvButton1
	InvButton2
	InvButton3
	InvButton4
	InvButton5
	InvButtonD
	IfButton
	IfClose

	ClientCheat
	LocTurn
	ObjTurn
)

var triggerNames = map[Trigger]string{
	Proc: "proc", Label: "label",
	AiTimer: "ai_timer", AiSpawn: "ai_spawn", AiDespawn: "ai_despawn", AiWalkTrigger: "ai_walktrigger",
	Login: "login", Logout: "logout", Tutorial: "tutorial",
	AdvanceStat: "advancestat", ChangeStat: "changestat",
	MapZone: "mapzone", MapZoneExit: "mapzoneexit", Zone: "zone", ZoneExit: "zoneexit",
	WalkTrigger: "walktrigger", Queue: "queue", WeakQueue: "weakqueue", Timer: "timer", SoftTimer: "softtimer",
	InvButtonD: "inv_buttond", IfButton: "if_button", IfClose: "if_close",
	ClientCheat: "client_cheat", LocTurn: "loc_turn", ObjTurn: "obj_turn",
}

// numbered groups whose members are named prefix+N or prefix+suffix.
var triggerGroups = []struct {
	first  Trigger
	prefix string
	names  []string
}{
	{OpNpc1, "opnpc", []string{"1", "2", "3", "4", "5", "u", "t"}},
	{ApNpc1, "apnpc", []string{"1", "2", "3", "4", "5", "u", "t"}},
	{OpLoc1, "oploc", []string{"1", "2", "3", "4", "5", "u", "t"}},
	{ApLoc1, "aploc", []string{"1", "2", "3", "4", "5", "u", "t"}},
	{OpObj1, "opobj", []string{"1", "2", "3", "4", "5", "u", "t"}},
	{ApObj1, "apobj", []string{"1", "2", "3", "4", "5", "u", "t"}},
	{OpPlayer1, "opplayer", []string{"1", "2", "3", "4", "5", "u", "t"}},
	{ApPlayer1, "applayer", []string{"1", "2", "3", "4", "5", "u", "t"}},
	{OpHeld1, "opheld", []string{"1", "2", "3", "4", "5", "u", "t"}},
	{AiOpNpc1, "ai_opnpc", []string{"1", "2", "3", "4", "5"}},
	{AiApNpc1, "ai_apnpc", []string{"1", "2", "3", "4", "5"}},
	{AiOpLoc1, "ai_oploc", []string{"1", "2", "3", "4", "5"}},
	{AiApLoc1, "ai_aploc", []string{"1", "2", "3", "4", "5"}},
	{AiOpObj1, "ai_opobj", []string{"1", "2", "3", "4", "5"}},
	{AiApObj1, "ai_apobj", []string{"1", "2", "3", "4", "5"}},
	{AiOpPlayer1, "ai_opplayer", []string{"1", "2", "3", "4", "5"}},
	{AiApPlayer1, "ai_applayer", []string{"1", "2", "3", "4", "5"}},
	{InvButton1, "inv_button", []string{"1", "2", "3", "4", "5"}},
}

var triggersByName = map[string]Trigger{}

func init() {
	for _, g := range triggerGroups {
		for i, n := range g.names {
			triggerNames[g.first+Trigger(i)] = g.prefix + n
		}
	}
	for i := range 20 {
		triggerNames[AiQueue1+Trigger(i)] = "ai_queue" + itoa(i+1)
	}
	for t, n := range triggerNames {
		triggersByName[n] = t
	}
}

func itoa(v int) string {
	if v < 10 {
		return string(rune('0' + v))
	}
	return string(rune('0'+v/10)) + string(rune('0'+v%10))
}

func (t Trigger) String() string {
	if n, ok := triggerNames[t]; ok {
		return n
	}
	return "unknown"
}

// ParseTrigger looks a trigger up by its lowercase name.
func ParseTrigger(name string) (Trigger, bool) {
	t, ok := triggersByName[strings.ToLower(name)]
	return t, ok
}
