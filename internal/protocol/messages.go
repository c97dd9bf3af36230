package protocol

import "encoding/json"

// HELLO (plugin -> host)
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	PluginName      string `json:"plugin_name"`
}

// WELCOME (host -> plugin)
type WelcomeMsg struct {
	Type            string     `json:"type"`
	ProtocolVersion string     `json:"protocol_version"`
	ServerName      string     `json:"server_name,omitempty"`
	Host            PlayerInfo `json:"host"`
}

// Event kinds carried by EVENT frames.
const (
	EventInteract = "interact"
	EventCommand  = "cmd"
)

// EVENT (host -> plugin)
type EventMsg struct {
	Type            string       `json:"type"`
	ProtocolVersion string       `json:"protocol_version"`
	Event           string       `json:"event"`
	Interact        *Interaction `json:"interact,omitempty"`
	Command         *ChatCommand `json:"cmd,omitempty"`
}

// Interaction is a player performing the "use" action on a brick.
type Interaction struct {
	Player   PlayerInfo `json:"player"`
	Position [3]int     `json:"position"`
}

// ChatCommand is a parsed chat command forwarded by the host.
type ChatCommand struct {
	Speaker string   `json:"speaker"`
	Command string   `json:"command"`
	Args    []string `json:"args"`
}

type PlayerInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Host bool   `json:"host,omitempty"`
}

// Request methods.
const (
	MethodGetPlayer   = "get_player"
	MethodGetSaveData = "get_save_data"
)

// Notify methods.
const (
	MethodWhisper     = "whisper"
	MethodMiddlePrint = "middle_print"
)

// REQ (plugin -> host)
type ReqMsg struct {
	Type            string          `json:"type"`
	ProtocolVersion string          `json:"protocol_version"`
	ID              string          `json:"id"`
	Method          string          `json:"method"`
	Params          json.RawMessage `json:"params,omitempty"`
}

// RESP (host -> plugin)
type RespMsg struct {
	Type    string          `json:"type"`
	ID      string          `json:"id"`
	OK      bool            `json:"ok"`
	Result  json.RawMessage `json:"result,omitempty"`
	Code    string          `json:"code,omitempty"`
	Message string          `json:"message,omitempty"`
}

// NOTIFY (plugin -> host), fire and forget.
type NotifyMsg struct {
	Type            string          `json:"type"`
	ProtocolVersion string          `json:"protocol_version"`
	Method          string          `json:"method"`
	Params          json.RawMessage `json:"params,omitempty"`
}

type GetPlayerParams struct {
	Name string `json:"name"`
}

// GetSaveDataParams with nil Center/Extent queries the full world.
type GetSaveDataParams struct {
	Center *[3]int `json:"center,omitempty"`
	Extent *[3]int `json:"extent,omitempty"`
}

type MessageParams struct {
	PlayerID string `json:"player_id"`
	Text     string `json:"text"`
}

// SaveDataVersion is the only brick save format the plugin understands.
// Other versions are treated as missing data.
const SaveDataVersion = 10

type SaveData struct {
	Version     int          `json:"version"`
	Bricks      []Brick      `json:"bricks"`
	BrickOwners []BrickOwner `json:"brick_owners"`
}

type Brick struct {
	Position [3]int `json:"position"`
	// OwnerIndex is 1-based into BrickOwners; 0 means unowned.
	OwnerIndex int `json:"owner_index"`
}

type BrickOwner struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
