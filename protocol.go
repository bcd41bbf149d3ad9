package main

import "encoding/json"

// Client -> Server message types
const (
	MsgCreate   = "create"   // create a game
	MsgJoin     = "join"     // join an existing game
	MsgFire     = "fire"     // fire an owned gun
	MsgMove     = "move"     // request a move to a target position
	MsgList     = "list"     // list open games
	MsgDescribe = "describe" // game roster query
	MsgLeave    = "leave"    // leave the current game
	MsgRegister = "register" // create an account
	MsgLogin    = "login"    // authenticate
	MsgGuest    = "guest"    // play without an account
	MsgToken    = "token"    // resume a session from a saved JWT
	MsgProfile  = "profile"  // fetch own lifetime stats
)

// Server -> Client message types
const (
	MsgCreated     = "created"
	MsgJoined      = "joined"
	MsgState       = "state" // binary msgpack StateMsg, not JSON
	MsgGames       = "games"
	MsgDesc        = "desc"
	MsgDeath       = "death"
	MsgKill        = "kill"
	MsgGameOver    = "game_over"
	MsgAuthOK      = "auth_ok"
	MsgProfileData = "profile_data"
	MsgError       = "error"
)

// Envelope wraps all outgoing JSON messages with a type field
type Envelope struct {
	T    string      `json:"t"`
	Data interface{} `json:"d,omitempty"`
}

// InEnvelope is used for incoming messages — json.RawMessage avoids
// double-unmarshal
type InEnvelope struct {
	T string          `json:"t"`
	D json.RawMessage `json:"d,omitempty"`
}

// CreateMsg creates a game and its first player
type CreateMsg struct {
	GameName   string `json:"gname"`
	PlayerName string `json:"name"`
}

// JoinMsg joins an existing game
type JoinMsg struct {
	GameID     string `json:"gid"`
	PlayerName string `json:"name"`
}

// FireMsg fires one of the player's owned guns
type FireMsg struct {
	GunID string `json:"gun"`
}

// MoveMsg requests a move to a target position
type MoveMsg struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DescribeMsg asks for a game's roster
type DescribeMsg struct {
	GameID string `json:"gid"`
}

// AuthMsg carries credentials for register/login
type AuthMsg struct {
	Username string `json:"usr"`
	Password string `json:"pwd"`
}

// TokenMsg resumes an authenticated session on a fresh connection
type TokenMsg struct {
	Token string `json:"tok"`
}

// JoinedMsg confirms a join and carries the assigned player id
type JoinedMsg struct {
	GameID   string `json:"gid"`
	PlayerID string `json:"pid"`
}

// AuthOKMsg returns a signed token after register/login/guest
type AuthOKMsg struct {
	Token    string `json:"tok"`
	Username string `json:"usr"`
}

// ProfileMsg is the lifetime-stats response for an authenticated client
type ProfileMsg struct {
	Username string `json:"usr"`
	Kills    int    `json:"kills"`
	Wins     int    `json:"wins"`
	Matches  int    `json:"matches"`
}

// DescMsg is the roster response, independent of any requesting player
type DescMsg struct {
	GameID  string   `json:"gid"`
	Name    string   `json:"name"`
	Players []string `json:"players"`
}

// GameInfo is one entry in the game list
type GameInfo struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Players int    `json:"players"`
}

// DeathMsg notifies a player they died
type DeathMsg struct {
	KillerID string `json:"kid"`
}

// KillMsg is broadcast to all players in a game
type KillMsg struct {
	KillerID string `json:"kid"`
	VictimID string `json:"vid"`
}

// GameOverMsg announces the last player standing
type GameOverMsg struct {
	WinnerID   string `json:"wid"`
	WinnerName string `json:"wname"`
}

// ErrorMsg sends an error to the client
type ErrorMsg struct {
	Msg string `json:"msg"`
}

// PlayerState is part of every snapshot; players are never distance-filtered
type PlayerState struct {
	ID        string  `json:"id" msgpack:"id"`
	Name      string  `json:"n" msgpack:"n"`
	X         float64 `json:"x" msgpack:"x"`
	Y         float64 `json:"y" msgpack:"y"`
	HP        int     `json:"hp" msgpack:"hp"`
	LastFired int     `json:"lf" msgpack:"lf"`
}

// BulletState is included when within vision range
type BulletState struct {
	ID    string  `json:"id" msgpack:"id"`
	X     float64 `json:"x" msgpack:"x"`
	Y     float64 `json:"y" msgpack:"y"`
	Owner string  `json:"o" msgpack:"o"`
}

// AmmoState is included when within vision range
type AmmoState struct {
	ID     string  `json:"id" msgpack:"id"`
	X      float64 `json:"x" msgpack:"x"`
	Y      float64 `json:"y" msgpack:"y"`
	Type   int     `json:"wt" msgpack:"wt"`
	Amount int     `json:"amt" msgpack:"amt"`
}

// RockState is included when within vision range
type RockState struct {
	ID string  `json:"id" msgpack:"id"`
	X  float64 `json:"x" msgpack:"x"`
	Y  float64 `json:"y" msgpack:"y"`
}

// GunState is included when within vision range or owned by anyone
type GunState struct {
	ID       string  `json:"id" msgpack:"id"`
	X        float64 `json:"x" msgpack:"x"`
	Y        float64 `json:"y" msgpack:"y"`
	Type     int     `json:"wt" msgpack:"wt"`
	Owner    string  `json:"o,omitempty" msgpack:"o"`
	Ammo     int     `json:"amt" msgpack:"amt"`
	Cooldown int     `json:"cd" msgpack:"cd"`
}

// StateMsg is the per-player snapshot, scoped to the requesting player's
// vision radius. Encoded with msgpack and sent as a binary frame.
type StateMsg struct {
	GameID  string        `json:"gid" msgpack:"gid"`
	Name    string        `json:"name" msgpack:"name"`
	Width   float64       `json:"w" msgpack:"w"`
	Height  float64       `json:"h" msgpack:"h"`
	Zone    float64       `json:"z" msgpack:"z"`
	Tick    uint64        `json:"tick" msgpack:"tick"`
	Players []PlayerState `json:"p" msgpack:"p"`
	Bullets []BulletState `json:"b" msgpack:"b"`
	Ammo    []AmmoState   `json:"am" msgpack:"am"`
	Rocks   []RockState   `json:"r" msgpack:"r"`
	Guns    []GunState    `json:"g" msgpack:"g"`
}
