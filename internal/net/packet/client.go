package packet

import "encoding/json"

// Client to server message bodies.

type Login struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	Reconnect bool   `json:"reconnect,omitempty"`
}

type MoveClick struct {
	X       int  `json:"x"`
	Z       int  `json:"z"`
	CtrlRun bool `json:"ctrlRun,omitempty"`
}

// OpEntity covers op_npc and op_player; ID is the nid or pid.
type OpEntity struct {
	ID             int `json:"id"`
	Op             int `json:"op"`
	UseObj         int `json:"useObj"`
	UseSlot        int `json:"useSlot"`
	UseComponent   int `json:"useComponent"`
	SpellComponent int `json:"spellComponent"`
}

// OpTile covers op_loc and op_obj; ID is the loc or obj type.
type OpTile struct {
	X              int `json:"x"`
	Z              int `json:"z"`
	ID             int `json:"id"`
	Op             int `json:"op"`
	UseObj         int `json:"useObj"`
	UseSlot        int `json:"useSlot"`
	UseComponent   int `json:"useComponent"`
	SpellComponent int `json:"spellComponent"`
}

type OpHeld struct {
	ObjID           int `json:"objId"`
	Slot            int `json:"slot"`
	Component       int `json:"component"`
	Op              int `json:"op"`
	TargetObjID     int `json:"targetObjId"`
	TargetSlot      int `json:"targetSlot"`
	TargetComponent int `json:"targetComponent"`
	SpellComponent  int `json:"spellComponent"`
}

type InvButton struct {
	ObjID     int `json:"objId"`
	Slot      int `json:"slot"`
	Component int `json:"component"`
	Op        int `json:"op"`
}

type InvButtonD struct {
	Component int `json:"component"`
	FromSlot  int `json:"fromSlot"`
	ToSlot    int `json:"toSlot"`
}

type IfButton struct {
	Component int `json:"component"`
}

type ResumePauseButton struct {
	Choice int `json:"choice"`
}

type ResumePCountDialog struct {
	Input int `json:"input"`
}

type MessagePublic struct {
	Text   string `json:"text"`
	Color  int    `json:"color,omitempty"`
	Effect int    `json:"effect,omitempty"`
}

type MessagePrivate struct {
	Target string `json:"target"`
	Text   string `json:"text"`
}

type SocialName struct {
	Username string `json:"username"`
}

type ClientCheat struct {
	Command string `json:"command"`
}

// Message types handled as user events. They are limited separately from
// client housekeeping messages.
var userEvents = map[string]bool{
	"move_click":     true,
	"op_npc":         true,
	"op_npc_u":       true,
	"op_npc_t":       true,
	"op_loc":         true,
	"op_loc_u":       true,
	"op_loc_t":       true,
	"op_obj":         true,
	"op_obj_u":       true,
	"op_obj_t":       true,
	"op_player":      true,
	"op_player_u":    true,
	"op_player_t":    true,
	"op_held":        true,
	"op_held_u":      true,
	"op_held_t":      true,
	"message_public": true,
	"if_button":      true,
	"inv_button":     true,
	"inv_button_d":   true,
}

// IsUserEvent reports whether typ counts against the per-tick user event limit.
func IsUserEvent(typ string) bool { return userEvents[typ] }

func (Login) MessageType() string              { return "login" }
func (MoveClick) MessageType() string          { return "move_click" }
func (IfButton) MessageType() string           { return "if_button" }
func (InvButtonD) MessageType() string         { return "inv_button_d" }
func (ResumePauseButton) MessageType() string  { return "resume_pause_button" }
func (ResumePCountDialog) MessageType() string { return "resume_p_count_dialog" }
func (MessagePublic) MessageType() string      { return "message_public" }
func (MessagePrivate) MessageType() string     { return "message_private" }
func (ClientCheat) MessageType() string        { return "client_cheat" }

// Typed wraps a body under an explicit message type, for bodies shared by
// several types such as OpEntity.
type Typed struct {
	Type string
	Body any
}

func (t Typed) MessageType() string { return t.Type }

func (t Typed) MarshalJSON() ([]byte, error) { return json.Marshal(t.Body) }
