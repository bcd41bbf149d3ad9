package main

import (
	"fmt"
	"log"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

const (
	VisionRadius      = 800.0
	maxPlayersPerGame = 16

	// Snapshots go out every BroadcastEvery ticks
	BroadcastEvery = 2
)

// Broadcaster sends messages to one connected client
type Broadcaster interface {
	SendJSON(msg interface{})
	SendBinary(data []byte)
}

// MatchResult describes a finished game, handed to the registry for
// persistence outside the game lock
type MatchResult struct {
	GameID      string
	GameName    string
	WinnerID    string
	WinnerName  string
	Ticks       uint64
	PlayerCount int
	Stats       []AccountStats
}

// AccountStats is the per-account outcome of a match, for players who were
// logged in
type AccountStats struct {
	Account int64
	Kills   int
	Won     bool
}

// killEvent records a lethal hit for post-resolution messaging
type killEvent struct {
	KillerID string
	VictimID string
}

// Game is one arena instance: a world, its clients, and the lock that guards
// both. Action handlers and the stepper all run under mu; nothing blocking
// happens while it is held.
type Game struct {
	mu sync.Mutex

	ID   string
	Name string

	world     *World
	clients   map[string]Broadcaster // player id -> connection
	analytics *Analytics

	accounts map[string]int64 // player id -> account id, logged-in players only
	kills    map[string]int   // player id -> kills this match

	joined  int  // total players ever created in this game
	started bool // saw at least two live players
	over    bool
}

// NewGame creates a game and seeds the initial rocks, guns and ammo
func NewGame(id, name string, analytics *Analytics) *Game {
	g := &Game{
		ID:        id,
		Name:      name,
		world:     NewWorld(),
		clients:   make(map[string]Broadcaster),
		analytics: analytics,
		accounts:  make(map[string]int64),
		kills:     make(map[string]int),
	}
	for i := 0; i < InitialRocks; i++ {
		if r, ok := NewRock(g.world.index); ok {
			g.world.addRock(r)
		}
	}
	for i := 0; i < InitialGuns; i++ {
		if gun, ok := NewGun(g.world.index); ok {
			g.world.addGun(gun)
		}
	}
	for i := 0; i < InitialAmmo; i++ {
		if a, ok := NewAmmoDrop(g.world.index); ok {
			g.world.addAmmo(a)
		}
	}
	return g
}

// Join creates a new player in this game and returns it
func (g *Game) Join(name string) (Player, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.over {
		return Player{}, fmt.Errorf("game %s is over", g.ID)
	}
	if len(g.world.players) >= maxPlayersPerGame {
		return Player{}, fmt.Errorf("game %s is full", g.ID)
	}
	p, ok := NewPlayer(g.world.index, name)
	if !ok {
		return Player{}, fmt.Errorf("no free spawn position in game %s", g.ID)
	}
	g.world.addPlayer(p)
	g.joined++
	return p, nil
}

// Leave removes a player (and their owned guns) when their connection drops
func (g *Game) Leave(playerID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.world.removePlayer(playerID)
	delete(g.clients, playerID)
}

// SetClient associates a connection with a player for broadcasts
func (g *Game) SetClient(playerID string, client Broadcaster) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.clients[playerID] = client
}

// BindAccount ties an in-game player to a logged-in account for stats
func (g *Game) BindAccount(playerID string, accountID int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if accountID != 0 {
		g.accounts[playerID] = accountID
	}
}

// Abandoned reports whether everyone has left a never-finished game
func (g *Game) Abandoned() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.world.players) == 0 && len(g.clients) == 0
}

// PlayerCount returns the number of live players
func (g *Game) PlayerCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.world.players)
}

// Fire shoots one of the player's owned guns. A dead player is removed
// instead; an unknown gun, a gun owned by someone else, a running cooldown or
// an empty reserve are silent no-ops.
func (g *Game) Fire(playerID, gunID string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	w := g.world
	p, ok := w.players[playerID]
	if !ok {
		return
	}
	if p.Health <= 0 {
		w.removePlayer(playerID)
		return
	}
	gun, ok := w.guns[gunID]
	if !ok || gun.OwnerID != playerID {
		return
	}
	if p.Guns[gun.Type] != gunID {
		return
	}
	if gun.Cooldown > 0 || gun.AmmoCount <= 0 {
		return
	}

	gun.Cooldown = gun.CooldownRate
	gun.AmmoCount--
	w.guns[gunID] = gun
	p.LastFired = gun.Type
	w.players[playerID] = p

	for _, b := range NewBullets(p, gun) {
		w.addBullet(b)
	}
}

// Move attempts to relocate a player. The current shape is pulled from the
// index, the candidate position is tested speculatively, and every reported
// collision is resolved; the move commits only if none blocked. On a blocked
// move the original shape is restored so the player never vanishes from the
// index.
func (g *Game) Move(playerID string, x, y float64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if x < 0 || x > WorldWidth || y < 0 || y > WorldHeight {
		return
	}
	w := g.world
	p, ok := w.players[playerID]
	if !ok {
		return
	}
	if p.Health <= 0 {
		w.removePlayer(playerID)
		return
	}

	w.index.Remove(p.Shape())
	candidate := p.Shape()
	candidate.X, candidate.Y = x, y

	blocked := false
	for _, hit := range w.index.Test(candidate) {
		if w.Resolve(candidate, hit) {
			blocked = true
		}
	}

	// Resolution may have damaged or killed the player — refetch
	p, ok = w.players[playerID]
	if !ok {
		return
	}
	if !blocked {
		dist := Distance(p.X, p.Y, x, y)
		if dist > 0 {
			p.FacingX = (x - p.X) / dist
			p.FacingY = (y - p.Y) / dist
		}
		p.X, p.Y = x, y
	}
	w.players[playerID] = p
	if p.Health > 0 {
		w.index.Update(p.Shape())
	}
}

// Tick steps the world once and handles broadcasting. It returns a non-nil
// MatchResult exactly once, when the game just ended; the caller persists it
// outside the lock.
func (g *Game) Tick() *MatchResult {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.over {
		return nil
	}

	w := g.world
	w.Step()
	g.drainEvents()

	if !g.started && len(w.players) >= 2 {
		g.started = true
	}

	var result *MatchResult
	if g.started && len(w.players) <= 1 {
		g.over = true
		result = &MatchResult{
			GameID:      g.ID,
			GameName:    g.Name,
			Ticks:       w.tick,
			PlayerCount: g.joined,
		}
		for _, p := range w.players {
			result.WinnerID = p.ID
			result.WinnerName = p.Name
		}
		for pid, acct := range g.accounts {
			result.Stats = append(result.Stats, AccountStats{
				Account: acct,
				Kills:   g.kills[pid],
				Won:     pid == result.WinnerID,
			})
		}
		g.broadcast(Envelope{T: MsgGameOver, Data: GameOverMsg{
			WinnerID:   result.WinnerID,
			WinnerName: result.WinnerName,
		}})
	}

	if w.tick%BroadcastEvery == 0 {
		g.broadcastState()
	}
	return result
}

// drainEvents turns pending world events into client messages and analytics
func (g *Game) drainEvents() {
	w := g.world
	for _, k := range w.kills {
		if k.KillerID != k.VictimID {
			g.kills[k.KillerID]++
		}
		g.broadcast(Envelope{T: MsgKill, Data: KillMsg{
			KillerID: k.KillerID, VictimID: k.VictimID,
		}})
		if client, ok := g.clients[k.VictimID]; ok {
			client.SendJSON(Envelope{T: MsgDeath, Data: DeathMsg{KillerID: k.KillerID}})
		}
		if g.analytics != nil {
			g.analytics.Track(EvtPlayerKill, 0, g.ID, "")
			g.analytics.Track(EvtPlayerDeath, g.accounts[k.VictimID], g.ID, "")
		}
	}
	for _, id := range w.elims {
		if client, ok := g.clients[id]; ok {
			client.SendJSON(Envelope{T: MsgDeath, Data: DeathMsg{}})
		}
		if g.analytics != nil {
			g.analytics.Track(EvtZoneElim, 0, g.ID, "")
		}
	}
	w.kills = w.kills[:0]
	w.elims = w.elims[:0]
}

// Describe returns the roster, independent of any requesting player
func (g *Game) Describe() DescMsg {
	g.mu.Lock()
	defer g.mu.Unlock()

	names := make([]string, 0, len(g.world.players))
	for _, p := range g.world.players {
		names = append(names, p.Name)
	}
	return DescMsg{GameID: g.ID, Name: g.Name, Players: names}
}

// SnapshotFor builds the state snapshot scoped to one player's vision
func (g *Game) SnapshotFor(playerID string) (StateMsg, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshotLocked(playerID)
}

func (g *Game) snapshotLocked(playerID string) (StateMsg, bool) {
	w := g.world
	viewer, ok := w.players[playerID]
	if !ok {
		return StateMsg{}, false
	}

	state := StateMsg{
		GameID: g.ID,
		Name:   g.Name,
		Width:  WorldWidth,
		Height: WorldHeight,
		Zone:   w.zone,
		Tick:   w.tick,
	}
	inVision := func(x, y float64) bool {
		return Distance(viewer.X, viewer.Y, x, y) <= VisionRadius
	}

	for _, p := range w.players {
		state.Players = append(state.Players, PlayerState{
			ID: p.ID, Name: p.Name, X: p.X, Y: p.Y,
			HP: p.Health, LastFired: int(p.LastFired),
		})
	}
	for _, b := range w.bullets {
		if inVision(b.X, b.Y) {
			state.Bullets = append(state.Bullets, BulletState{
				ID: b.ID, X: b.X, Y: b.Y, Owner: b.OwnerID,
			})
		}
	}
	for _, a := range w.ammo {
		if inVision(a.X, a.Y) {
			state.Ammo = append(state.Ammo, AmmoState{
				ID: a.ID, X: a.X, Y: a.Y, Type: int(a.Type), Amount: a.Amount,
			})
		}
	}
	for _, r := range w.rocks {
		if inVision(r.X, r.Y) {
			state.Rocks = append(state.Rocks, RockState{ID: r.ID, X: r.X, Y: r.Y})
		}
	}
	for _, gun := range w.guns {
		if gun.OwnerID != "" || inVision(gun.X, gun.Y) {
			state.Guns = append(state.Guns, GunState{
				ID: gun.ID, X: gun.X, Y: gun.Y, Type: int(gun.Type),
				Owner: gun.OwnerID, Ammo: gun.AmmoCount, Cooldown: gun.Cooldown,
			})
		}
	}
	return state, true
}

// broadcastState sends each client its own vision-scoped snapshot
func (g *Game) broadcastState() {
	for pid, client := range g.clients {
		snap, ok := g.snapshotLocked(pid)
		if !ok {
			continue
		}
		data, err := msgpack.Marshal(snap)
		if err != nil {
			log.Printf("snapshot encode: %v", err)
			continue
		}
		client.SendBinary(data)
	}
}

// broadcast sends a JSON message to every client in the game
func (g *Game) broadcast(msg Envelope) {
	for _, client := range g.clients {
		client.SendJSON(msg)
	}
}
