package main

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait         = 10 * time.Second
	pongWait          = 60 * time.Second
	pingPeriod        = (pongWait * 9) / 10
	maxMessageSize    = 4096
	sendBufSize       = 256
	maxMessagesPerSec = 50
	maxNameLen        = 16
	maxGameNameLen    = 30
)

// Client represents a WebSocket connection
type Client struct {
	hub        *Hub
	conn       *websocket.Conn
	send       chan []byte
	playerID   string
	gameID     string
	remoteAddr string
	msgCount   int
	msgResetAt time.Time
	// Auth state
	accountID int64  // 0 = unauthenticated
	username  string // "" = unauthenticated
}

// NewClient creates a new Client
func NewClient(hub *Hub, conn *websocket.Conn, remoteAddr string) *Client {
	return &Client{
		hub:        hub,
		conn:       conn,
		send:       make(chan []byte, sendBufSize),
		remoteAddr: remoteAddr,
	}
}

// ReadPump reads messages from the WebSocket connection
func (c *Client) ReadPump() {
	defer func() {
		c.hub.TrackDisconnect(c.remoteAddr)
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		msgType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("ws error: %v", err)
			}
			break
		}

		// Rate limiting
		now := time.Now()
		if now.After(c.msgResetAt) {
			c.msgCount = 0
			c.msgResetAt = now.Add(time.Second)
		}
		c.msgCount++
		if c.msgCount > maxMessagesPerSec {
			log.Printf("rate limit exceeded for %s, disconnecting", c.remoteAddr)
			break
		}

		// Binary move messages: 5 bytes [0x01, x_hi, x_lo, y_hi, y_lo]
		if msgType == websocket.BinaryMessage && len(message) == 5 && message[0] == 0x01 {
			c.handleBinaryMove(message)
		} else {
			c.handleMessage(message)
		}
	}
}

// WritePump writes messages to the WebSocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			// Check for binary marker (0xFF prefix from SendBinary)
			var err error
			if len(message) > 0 && message[0] == 0xFF {
				err = c.conn.WriteMessage(websocket.BinaryMessage, message[1:])
			} else {
				err = c.conn.WriteMessage(websocket.TextMessage, message)
			}
			if err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendJSON sends a JSON message to the client
func (c *Client) SendJSON(msg interface{}) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("marshal error: %v", err)
		return
	}
	c.SendRaw(data)
}

// SendRaw sends pre-marshaled bytes as a text message to the client
func (c *Client) SendRaw(data []byte) {
	defer func() { recover() }()
	select {
	case c.send <- data:
	default:
		// Client too slow, drop message
	}
}

// SendBinary sends pre-marshaled bytes as a binary WebSocket message.
// Prefixes with 0xFF marker byte so WritePump can distinguish from text.
func (c *Client) SendBinary(data []byte) {
	defer func() { recover() }()
	msg := make([]byte, len(data)+1)
	msg[0] = 0xFF // binary marker
	copy(msg[1:], data)
	select {
	case c.send <- msg:
	default:
	}
}

// handleMessage routes incoming messages (single-pass decode via InEnvelope)
func (c *Client) handleMessage(raw []byte) {
	var env InEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		log.Printf("unmarshal error: %v", err)
		return
	}

	switch env.T {
	case MsgList:
		c.handleList()
	case MsgCreate:
		c.handleCreate(env.D)
	case MsgJoin:
		c.handleJoin(env.D)
	case MsgFire:
		c.handleFire(env.D)
	case MsgMove:
		c.handleMove(env.D)
	case MsgDescribe:
		c.handleDescribe(env.D)
	case MsgLeave:
		c.handleLeave()
	case MsgRegister:
		c.handleRegister(env.D)
	case MsgLogin:
		c.handleLogin(env.D)
	case MsgGuest:
		c.handleGuest()
	case MsgToken:
		c.handleToken(env.D)
	case MsgProfile:
		c.handleProfile()
	}
}

func (c *Client) handleList() {
	c.SendJSON(Envelope{T: MsgGames, Data: c.hub.registry.List()})
}

func cleanName(name, fallback string, max int) string {
	if name == "" {
		name = fallback
	}
	if len(name) > max {
		name = name[:max]
	}
	return name
}

func (c *Client) handleCreate(data json.RawMessage) {
	var msg CreateMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	name := cleanName(msg.PlayerName, "Drifter", maxNameLen)
	gname := cleanName(msg.GameName, "Arena", maxGameNameLen)

	game, player, err := c.hub.registry.CreateGame(gname, name)
	if err != nil {
		c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Msg: err.Error()}})
		return
	}
	c.attach(game, player)
	c.SendJSON(Envelope{T: MsgCreated, Data: JoinedMsg{GameID: game.ID, PlayerID: player.ID}})
}

func (c *Client) handleJoin(data json.RawMessage) {
	var msg JoinMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	name := cleanName(msg.PlayerName, "Drifter", maxNameLen)

	game, err := c.hub.registry.Get(msg.GameID)
	if err != nil {
		c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Msg: "game not found"}})
		return
	}
	player, err := game.Join(name)
	if err != nil {
		c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Msg: err.Error()}})
		return
	}
	c.attach(game, player)
	c.SendJSON(Envelope{T: MsgJoined, Data: JoinedMsg{GameID: game.ID, PlayerID: player.ID}})
}

func (c *Client) attach(game *Game, player Player) {
	c.playerID = player.ID
	c.gameID = game.ID
	game.SetClient(player.ID, c)
	if c.accountID != 0 {
		game.BindAccount(player.ID, c.accountID)
	}
}

func (c *Client) handleFire(data json.RawMessage) {
	if c.gameID == "" || c.playerID == "" {
		return
	}
	var msg FireMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	game, err := c.hub.registry.Get(c.gameID)
	if err != nil {
		return
	}
	game.Fire(c.playerID, msg.GunID)
}

func (c *Client) handleMove(data json.RawMessage) {
	if c.gameID == "" || c.playerID == "" {
		return
	}
	var msg MoveMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	game, err := c.hub.registry.Get(c.gameID)
	if err != nil {
		return
	}
	game.Move(c.playerID, msg.X, msg.Y)
}

// handleBinaryMove decodes a compact 5-byte binary move message
func (c *Client) handleBinaryMove(msg []byte) {
	if c.gameID == "" || c.playerID == "" {
		return
	}
	x := float64(uint16(msg[1])<<8 | uint16(msg[2]))
	y := float64(uint16(msg[3])<<8 | uint16(msg[4]))
	game, err := c.hub.registry.Get(c.gameID)
	if err != nil {
		return
	}
	game.Move(c.playerID, x, y)
}

func (c *Client) handleDescribe(data json.RawMessage) {
	var msg DescribeMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	game, err := c.hub.registry.Get(msg.GameID)
	if err != nil {
		c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Msg: "game not found"}})
		return
	}
	c.SendJSON(Envelope{T: MsgDesc, Data: game.Describe()})
}

func (c *Client) handleLeave() {
	if c.gameID == "" {
		return
	}
	if game, err := c.hub.registry.Get(c.gameID); err == nil {
		game.Leave(c.playerID)
	}
	c.gameID = ""
	c.playerID = ""
}

func (c *Client) handleRegister(data json.RawMessage) {
	if c.hub.auth == nil {
		return
	}
	var msg AuthMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	id, token, err := c.hub.auth.Register(msg.Username, msg.Password)
	if err != nil {
		c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Msg: err.Error()}})
		return
	}
	c.accountID = id
	c.username = msg.Username
	if c.hub.analytics != nil {
		c.hub.analytics.Track(EvtSignup, id, "", "")
	}
	c.SendJSON(Envelope{T: MsgAuthOK, Data: AuthOKMsg{Token: token, Username: msg.Username}})
}

func (c *Client) handleLogin(data json.RawMessage) {
	if c.hub.auth == nil {
		return
	}
	var msg AuthMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	id, token, err := c.hub.auth.Login(msg.Username, msg.Password, c.remoteAddr)
	if err != nil {
		c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Msg: err.Error()}})
		return
	}
	c.accountID = id
	c.username = msg.Username
	if c.hub.analytics != nil {
		c.hub.analytics.Track(EvtLogin, id, "", "")
	}
	c.SendJSON(Envelope{T: MsgAuthOK, Data: AuthOKMsg{Token: token, Username: msg.Username}})
}

func (c *Client) handleGuest() {
	if c.hub.auth == nil {
		return
	}
	id, name, token, err := c.hub.auth.Guest()
	if err != nil {
		c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Msg: err.Error()}})
		return
	}
	c.accountID = id
	c.username = name
	c.SendJSON(Envelope{T: MsgAuthOK, Data: AuthOKMsg{Token: token, Username: name}})
}

func (c *Client) handleToken(data json.RawMessage) {
	if c.hub.auth == nil {
		return
	}
	var msg TokenMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	id, username, err := c.hub.auth.ValidateToken(msg.Token)
	if err != nil {
		c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Msg: "invalid token"}})
		return
	}
	c.accountID = id
	c.username = username
	c.SendJSON(Envelope{T: MsgAuthOK, Data: AuthOKMsg{Token: msg.Token, Username: username}})
}

func (c *Client) handleProfile() {
	if c.hub.db == nil || c.accountID == 0 {
		c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Msg: "not authenticated"}})
		return
	}
	stats, err := c.hub.db.GetStats(c.accountID)
	if err != nil || stats == nil {
		c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Msg: "profile not found"}})
		return
	}
	c.SendJSON(Envelope{T: MsgProfileData, Data: ProfileMsg{
		Username: c.username,
		Kills:    stats.Kills,
		Wins:     stats.Wins,
		Matches:  stats.Matches,
	}})
}
