package packet

// Server to client messages.

type LoginAccept struct {
	Pid           int `json:"pid"`
	StaffModLevel int `json:"staffModLevel"`
}

type LoginReject struct {
	Code   int    `json:"code"`
	Reason string `json:"reason"`
}

type Logout struct{}

type UpdateRebootTimer struct {
	Ticks int `json:"ticks"`
}

type MessageGame struct {
	Text string `json:"text"`
}

type MessagePrivateIn struct {
	From          string `json:"from"`
	StaffModLevel int    `json:"staffModLevel"`
	Text          string `json:"text"`
}

type IfClose struct{}

type IfOpenMain struct {
	Component int `json:"component"`
}

type IfOpenChat struct {
	Component int `json:"component"`
}

type RebuildNormal struct {
	ZoneX   int `json:"zoneX"`
	ZoneZ   int `json:"zoneZ"`
	OriginX int `json:"originX"`
	OriginZ int `json:"originZ"`
}

type UpdateStat struct {
	Stat      int `json:"stat"`
	Level     int `json:"level"`
	BaseLevel int `json:"baseLevel"`
	Exp       int `json:"exp"`
}

type UpdateRunEnergy struct {
	Energy int `json:"energy"`
}

type InvItem struct {
	Slot  int `json:"slot"`
	ID    int `json:"id"`
	Count int `json:"count"`
}

type UpdateInvFull struct {
	Inv   int       `json:"inv"`
	Size  int       `json:"size"`
	Items []InvItem `json:"items"`
}

type UpdateFriendList struct {
	Name   string `json:"name"`
	NodeID int    `json:"nodeId"`
}

type UpdateIgnoreList struct {
	Names []string `json:"names"`
}

// PlayerInfoEntry describes one visible player. Optional fields are only
// filled when the matching mask bit is set.
type PlayerInfoEntry struct {
	Pid       int    `json:"pid"`
	X         int    `json:"x"`
	Z         int    `json:"z"`
	Level     int    `json:"level"`
	MoveSpeed int    `json:"moveSpeed"`
	WalkDir   int    `json:"walkDir"`
	RunDir    int    `json:"runDir"`
	Jump      bool   `json:"jump,omitempty"`
	Masks     int    `json:"masks,omitempty"`
	Username  string `json:"username,omitempty"`
	Combat    int    `json:"combatLevel,omitempty"`
	FaceX     int    `json:"faceX,omitempty"`
	FaceZ     int    `json:"faceZ,omitempty"`
	Face      int    `json:"faceEntity,omitempty"`
	Anim      int    `json:"anim,omitempty"`
	Chat      string `json:"chat,omitempty"`
	Damage    int    `json:"damage,omitempty"`
	Health    int    `json:"health,omitempty"`
	MaxHealth int    `json:"maxHealth,omitempty"`
}

type PlayerInfo struct {
	Players []PlayerInfoEntry `json:"players"`
}

type NpcInfoEntry struct {
	Nid       int    `json:"nid"`
	NpcType   int    `json:"npcType"`
	X         int    `json:"x"`
	Z         int    `json:"z"`
	Level     int    `json:"level"`
	MoveSpeed int    `json:"moveSpeed"`
	WalkDir   int    `json:"walkDir"`
	RunDir    int    `json:"runDir"`
	Jump      bool   `json:"jump,omitempty"`
	Masks     int    `json:"masks,omitempty"`
	FaceX     int    `json:"faceX,omitempty"`
	FaceZ     int    `json:"faceZ,omitempty"`
	Face      int    `json:"faceEntity,omitempty"`
	Anim      int    `json:"anim,omitempty"`
	Say       string `json:"say,omitempty"`
	Damage    int    `json:"damage,omitempty"`
	Health    int    `json:"health,omitempty"`
	MaxHealth int    `json:"maxHealth,omitempty"`
}

type NpcInfo struct {
	Npcs []NpcInfoEntry `json:"npcs"`
}

// Zone sync.

type ZoneFullFollows struct {
	ZoneX   int `json:"zoneX"`
	ZoneZ   int `json:"zoneZ"`
	OriginX int `json:"originX"`
	OriginZ int `json:"originZ"`
}

type ZonePartialFollows struct {
	ZoneX   int `json:"zoneX"`
	ZoneZ   int `json:"zoneZ"`
	OriginX int `json:"originX"`
	OriginZ int `json:"originZ"`
}

type LocAdd struct {
	Coord   int `json:"coord"`
	LocType int `json:"locType"`
	Shape   int `json:"shape"`
	Angle   int `json:"angle"`
}

type LocDel struct {
	Coord int `json:"coord"`
	Shape int `json:"shape"`
	Angle int `json:"angle"`
}

type LocAnim struct {
	Coord   int `json:"coord"`
	LocType int `json:"locType"`
	Shape   int `json:"shape"`
	Angle   int `json:"angle"`
	Seq     int `json:"seq"`
}

type LocMerge struct {
	Coord      int `json:"coord"`
	LocType    int `json:"locType"`
	Shape      int `json:"shape"`
	Angle      int `json:"angle"`
	StartCycle int `json:"startCycle"`
	EndCycle   int `json:"endCycle"`
	South      int `json:"south"`
	East       int `json:"east"`
	North      int `json:"north"`
	West       int `json:"west"`
	Pid        int `json:"pid"`
}

type ObjAdd struct {
	Coord   int `json:"coord"`
	ObjType int `json:"objType"`
	Count   int `json:"count"`
}

type ObjReveal struct {
	Coord   int `json:"coord"`
	ObjType int `json:"objType"`
	Count   int `json:"count"`
}

type ObjCount struct {
	Coord    int `json:"coord"`
	ObjType  int `json:"objType"`
	OldCount int `json:"oldCount"`
	NewCount int `json:"newCount"`
}

type ObjDel struct {
	Coord   int `json:"coord"`
	ObjType int `json:"objType"`
}

type MapAnim struct {
	Coord    int `json:"coord"`
	Spotanim int `json:"spotanim"`
	Height   int `json:"height"`
	Delay    int `json:"delay"`
}

type MapProjAnim struct {
	Coord      int `json:"coord"`
	DstX       int `json:"dstX"`
	DstZ       int `json:"dstZ"`
	Target     int `json:"target"`
	Spotanim   int `json:"spotanim"`
	SrcHeight  int `json:"srcHeight"`
	DstHeight  int `json:"dstHeight"`
	StartDelay int `json:"startDelay"`
	EndDelay   int `json:"endDelay"`
	Peak       int `json:"peak"`
	Arc        int `json:"arc"`
}

func (LoginAccept) MessageType() string        { return "login_accept" }
func (LoginReject) MessageType() string        { return "login_reject" }
func (Logout) MessageType() string             { return "logout" }
func (UpdateRebootTimer) MessageType() string  { return "update_reboot_timer" }
func (MessageGame) MessageType() string        { return "message_game" }
func (MessagePrivateIn) MessageType() string   { return "message_private_in" }
func (IfClose) MessageType() string            { return "if_close" }
func (IfOpenMain) MessageType() string         { return "if_openmain" }
func (IfOpenChat) MessageType() string         { return "if_openchat" }
func (RebuildNormal) MessageType() string      { return "rebuild_normal" }
func (UpdateStat) MessageType() string         { return "update_stat" }
func (UpdateRunEnergy) MessageType() string    { return "update_runenergy" }
func (UpdateInvFull) MessageType() string      { return "update_inv_full" }
func (UpdateFriendList) MessageType() string   { return "update_friendlist" }
func (UpdateIgnoreList) MessageType() string   { return "update_ignorelist" }
func (PlayerInfo) MessageType() string         { return "player_info" }
func (NpcInfo) MessageType() string            { return "npc_info" }
func (ZoneFullFollows) MessageType() string    { return "zone_full_follows" }
func (ZonePartialFollows) MessageType() string { return "zone_partial_follows" }
func (LocAdd) MessageType() string             { return "loc_add" }
func (LocDel) MessageType() string             { return "loc_del" }
func (LocAnim) MessageType() string            { return "loc_anim" }
func (LocMerge) MessageType() string           { return "loc_merge" }
func (ObjAdd) MessageType() string             { return "obj_add" }
func (ObjReveal) MessageType() string          { return "obj_reveal" }
func (ObjCount) MessageType() string           { return "obj_count" }
func (ObjDel) MessageType() string             { return "obj_del" }
func (MapAnim) MessageType() string            { return "map_anim" }
func (MapProjAnim) MessageType() string        { return "map_projanim" }
