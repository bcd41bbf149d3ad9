package main

import (
	"testing"

	"github.com/vmihailenco/msgpack/v5"
)

// fakeClient records messages instead of writing to a socket
type fakeClient struct {
	jsons []Envelope
	bins  [][]byte
}

func (f *fakeClient) SendJSON(msg interface{}) {
	if env, ok := msg.(Envelope); ok {
		f.jsons = append(f.jsons, env)
	}
}

func (f *fakeClient) SendBinary(data []byte) {
	f.bins = append(f.bins, data)
}

func (f *fakeClient) lastOfType(t string) *Envelope {
	for i := len(f.jsons) - 1; i >= 0; i-- {
		if f.jsons[i].T == t {
			return &f.jsons[i]
		}
	}
	return nil
}

// newBareGame builds a game with an empty world, skipping the random seeding
// so tests control placement
func newBareGame() *Game {
	return &Game{
		ID:       "test-game",
		Name:     "test",
		world:    NewWorld(),
		clients:  make(map[string]Broadcaster),
		accounts: make(map[string]int64),
		kills:    make(map[string]int),
	}
}

// armPlayer gives the player an owned gun of the given type
func armPlayer(g *Game, p Player, gunID string, t WeaponType, ammo int) {
	def := GetWeaponDef(t)
	g.world.addGun(Gun{
		ID: gunID, Type: t, OwnerID: p.ID,
		AmmoCount: ammo, CooldownRate: def.CooldownRate,
	})
	p.Guns[t] = gunID
	g.world.players[p.ID] = p
}

func TestNewGameSeeds(t *testing.T) {
	g := NewGame("id", "arena", nil)
	if got := len(g.world.rocks); got != InitialRocks {
		t.Errorf("rocks = %d, want %d", got, InitialRocks)
	}
	if got := len(g.world.guns); got != InitialGuns {
		t.Errorf("guns = %d, want %d", got, InitialGuns)
	}
	if got := len(g.world.ammo); got != InitialAmmo {
		t.Errorf("ammo = %d, want %d", got, InitialAmmo)
	}
	if g.world.zone != ZoneInitialRadius {
		t.Errorf("zone = %f, want %f", g.world.zone, ZoneInitialRadius)
	}
	// Seeding must not produce overlaps
	if pairs := g.world.index.All(); len(pairs) != 0 {
		t.Errorf("seeded world has %d overlapping pairs", len(pairs))
	}
}

func TestJoinAndLeave(t *testing.T) {
	g := newBareGame()
	p, err := g.Join("alice")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if p.Health != PlayerMaxHP || len(p.Guns) != 0 {
		t.Errorf("new player = %+v", p)
	}
	if g.PlayerCount() != 1 {
		t.Errorf("PlayerCount = %d", g.PlayerCount())
	}

	g.Leave(p.ID)
	if g.PlayerCount() != 0 {
		t.Errorf("PlayerCount after leave = %d", g.PlayerCount())
	}
	if !g.Abandoned() {
		t.Error("empty game not abandoned")
	}
}

func TestJoinLimits(t *testing.T) {
	g := newBareGame()
	for i := 0; i < maxPlayersPerGame; i++ {
		if _, err := g.Join("p"); err != nil {
			t.Fatalf("join %d: %v", i, err)
		}
	}
	if _, err := g.Join("extra"); err == nil {
		t.Error("join into a full game succeeded")
	}

	g.over = true
	g.world.players = make(map[string]Player)
	if _, err := g.Join("late"); err == nil {
		t.Error("join into a finished game succeeded")
	}
}

func TestFire(t *testing.T) {
	g := newBareGame()
	p := testPlayer(g.world, "p", 1000, 1000)
	armPlayer(g, p, "gun", WeaponPistol, 3)

	g.Fire("p", "gun")
	if got := len(g.world.bullets); got != 1 {
		t.Fatalf("bullets = %d after pistol fire, want 1", got)
	}
	gun := g.world.guns["gun"]
	if gun.AmmoCount != 2 {
		t.Errorf("AmmoCount = %d, want 2", gun.AmmoCount)
	}
	if gun.Cooldown != gun.CooldownRate {
		t.Errorf("Cooldown = %d, want %d", gun.Cooldown, gun.CooldownRate)
	}
	if g.world.players["p"].LastFired != WeaponPistol {
		t.Error("LastFired not updated")
	}

	// Cooldown gates the next shot
	g.Fire("p", "gun")
	if got := len(g.world.bullets); got != 1 {
		t.Errorf("fire during cooldown produced bullets: %d", got)
	}
}

func TestFireShotgunVolley(t *testing.T) {
	g := newBareGame()
	p := testPlayer(g.world, "p", 1000, 1000)
	armPlayer(g, p, "sg", WeaponShotgun, 8)

	g.Fire("p", "sg")
	def := GetWeaponDef(WeaponShotgun)
	if got := len(g.world.bullets); got != def.BulletCount {
		t.Errorf("bullets = %d, want %d", got, def.BulletCount)
	}
	// One trigger pull consumes one round regardless of volley size
	if got := g.world.guns["sg"].AmmoCount; got != 7 {
		t.Errorf("AmmoCount = %d, want 7", got)
	}
}

func TestFireGates(t *testing.T) {
	g := newBareGame()
	p := testPlayer(g.world, "p", 1000, 1000)
	armPlayer(g, p, "gun", WeaponPistol, 0)

	// Empty reserve
	g.Fire("p", "gun")
	if len(g.world.bullets) != 0 {
		t.Error("fired with an empty reserve")
	}

	// Unknown gun
	g.Fire("p", "nope")
	if len(g.world.bullets) != 0 {
		t.Error("fired an unknown gun")
	}

	// Someone else's gun
	q := testPlayer(g.world, "q", 2000, 2000)
	armPlayer(g, q, "qgun", WeaponShotgun, 8)
	g.Fire("p", "qgun")
	if len(g.world.bullets) != 0 {
		t.Error("fired a gun owned by another player")
	}
}

func TestFireRemovesDeadPlayer(t *testing.T) {
	g := newBareGame()
	p := testPlayer(g.world, "p", 1000, 1000)
	p.Health = 0
	g.world.players["p"] = p

	g.Fire("p", "whatever")
	if _, ok := g.world.players["p"]; ok {
		t.Error("dead player survived a fire attempt")
	}
}

func TestMoveCommits(t *testing.T) {
	g := newBareGame()
	testPlayer(g.world, "p", 1000, 1000)

	g.Move("p", 1050, 1000)
	p := g.world.players["p"]
	if p.X != 1050 || p.Y != 1000 {
		t.Errorf("position = (%f, %f), want (1050, 1000)", p.X, p.Y)
	}
	if p.FacingX != 1 || p.FacingY != 0 {
		t.Errorf("facing = (%f, %f), want (1, 0)", p.FacingX, p.FacingY)
	}
	// Old position is vacated, new one occupied
	if hits := g.world.index.Test(Shape{X: 1000, Y: 1000, Radius: 1}); len(hits) != 0 {
		t.Errorf("old position still occupied: %v", hits)
	}
	if hits := g.world.index.Test(Shape{X: 1050, Y: 1000, Radius: 1}); len(hits) != 1 {
		t.Errorf("new position not occupied: %v", hits)
	}
}

func TestMoveBlockedRestoresShape(t *testing.T) {
	g := newBareGame()
	testPlayer(g.world, "p", 1000, 1000)
	g.world.addRock(Rock{ID: "r", X: 1100, Y: 1000})

	g.Move("p", 1075, 1000) // candidate overlaps the rock
	p := g.world.players["p"]
	if p.X != 1000 {
		t.Errorf("blocked move shifted the player to %f", p.X)
	}
	if hits := g.world.index.Test(Shape{X: 1000, Y: 1000, Radius: 1}); len(hits) != 1 {
		t.Error("player vanished from the index after a blocked move")
	}
}

func TestMoveOutOfBounds(t *testing.T) {
	g := newBareGame()
	testPlayer(g.world, "p", 1000, 1000)
	g.Move("p", -10, 1000)
	g.Move("p", 1000, WorldHeight+1)
	p := g.world.players["p"]
	if p.X != 1000 || p.Y != 1000 {
		t.Errorf("out-of-bounds move shifted the player to (%f, %f)", p.X, p.Y)
	}
}

func TestMoveIdempotent(t *testing.T) {
	g := newBareGame()
	testPlayer(g.world, "p", 1000, 1000)
	g.Move("p", 1050, 1000)
	g.Move("p", 1050, 1000) // moving onto your own spot must not self-collide
	p := g.world.players["p"]
	if p.X != 1050 {
		t.Errorf("repeated move failed: X = %f", p.X)
	}
	if g.world.index.Len() != 1 {
		t.Errorf("index Len = %d, want 1", g.world.index.Len())
	}
}

func TestMovePicksUpGun(t *testing.T) {
	g := newBareGame()
	testPlayer(g.world, "p", 1000, 1000)
	g.world.addGun(Gun{ID: "g", X: 1060, Y: 1000, Type: WeaponPistol, AmmoCount: 24})

	g.Move("p", 1050, 1000) // candidate overlaps the gun; pickups don't block
	p := g.world.players["p"]
	if p.X != 1050 {
		t.Errorf("pickup move did not commit: X = %f", p.X)
	}
	if p.Guns[WeaponPistol] != "g" {
		t.Error("gun not picked up during the move")
	}
}

func TestMoveIntoBulletCanKill(t *testing.T) {
	g := newBareGame()
	testPlayer(g.world, "p", 1000, 1000)
	g.world.addBullet(Bullet{ID: "b", OwnerID: "killer", X: 1050, Y: 1000, Damage: PlayerMaxHP})

	g.Move("p", 1050, 1000)
	p, ok := g.world.players["p"]
	if !ok {
		t.Fatal("player record removed before the sweep")
	}
	if p.Health > 0 {
		t.Errorf("health = %d, want <= 0", p.Health)
	}
	// Dead players must not be re-inserted into the index
	if hits := g.world.index.Test(Shape{X: 1050, Y: 1000, Radius: PlayerRadius}); len(hits) != 0 {
		t.Errorf("dead player present in index: %v", hits)
	}
}

func TestTickGameOver(t *testing.T) {
	g := newBareGame()
	winner := testPlayer(g.world, "win", ZoneCenterX+50, ZoneCenterY)
	loser := testPlayer(g.world, "lose", ZoneCenterX-50, ZoneCenterY)

	if res := g.Tick(); res != nil {
		t.Fatal("game ended with two live players")
	}
	if !g.started {
		t.Fatal("game with two players not marked started")
	}

	loser.Health = 0
	g.world.players[loser.ID] = loser

	res := g.Tick()
	if res == nil {
		t.Fatal("no result after dropping to one player")
	}
	if res.WinnerID != winner.ID || res.WinnerName != winner.Name {
		t.Errorf("winner = %q (%q)", res.WinnerID, res.WinnerName)
	}
	if res.PlayerCount != 0 {
		// joined counts players created via Join; these were injected directly
		t.Errorf("PlayerCount = %d, want 0", res.PlayerCount)
	}

	// A finished game ticks as a no-op
	if res := g.Tick(); res != nil {
		t.Error("finished game produced a second result")
	}
}

func TestTickMatchStats(t *testing.T) {
	g := newBareGame()
	winner := testPlayer(g.world, "win", ZoneCenterX+50, ZoneCenterY)
	loser := testPlayer(g.world, "lose", ZoneCenterX-50, ZoneCenterY)
	g.BindAccount(winner.ID, 7)
	g.Tick()

	// Winner shoots the loser dead
	g.world.kills = append(g.world.kills, killEvent{KillerID: winner.ID, VictimID: loser.ID})
	g.drainEvents()
	loser.Health = 0
	g.world.players[loser.ID] = loser

	res := g.Tick()
	if res == nil {
		t.Fatal("no match result")
	}
	if len(res.Stats) != 1 {
		t.Fatalf("stats = %+v, want one entry", res.Stats)
	}
	s := res.Stats[0]
	if s.Account != 7 || s.Kills != 1 || !s.Won {
		t.Errorf("stats entry = %+v", s)
	}
}

func TestDrainEventsMessaging(t *testing.T) {
	g := newBareGame()
	killer := testPlayer(g.world, "k", ZoneCenterX+50, ZoneCenterY)
	victim := testPlayer(g.world, "v", ZoneCenterX-50, ZoneCenterY)

	kc := &fakeClient{}
	vc := &fakeClient{}
	g.SetClient(killer.ID, kc)
	g.SetClient(victim.ID, vc)

	g.world.kills = append(g.world.kills, killEvent{KillerID: "k", VictimID: "v"})
	g.mu.Lock()
	g.drainEvents()
	g.mu.Unlock()

	if kc.lastOfType(MsgKill) == nil || vc.lastOfType(MsgKill) == nil {
		t.Error("kill not broadcast to all clients")
	}
	if vc.lastOfType(MsgDeath) == nil {
		t.Error("victim did not receive a death message")
	}
	if kc.lastOfType(MsgDeath) != nil {
		t.Error("killer received a death message")
	}
	if g.kills["k"] != 1 {
		t.Errorf("killer kill count = %d", g.kills["k"])
	}
	if len(g.world.kills) != 0 {
		t.Error("kill queue not drained")
	}
}

func TestDrainEventsSelfKillNotCounted(t *testing.T) {
	g := newBareGame()
	testPlayer(g.world, "p", ZoneCenterX, ZoneCenterY)
	g.world.kills = append(g.world.kills, killEvent{KillerID: "p", VictimID: "p"})
	g.mu.Lock()
	g.drainEvents()
	g.mu.Unlock()
	if g.kills["p"] != 0 {
		t.Errorf("self-kill counted: %d", g.kills["p"])
	}
}

func TestSnapshotVision(t *testing.T) {
	g := newBareGame()
	viewer := testPlayer(g.world, "me", 2000, 2000)
	far := testPlayer(g.world, "far", 200, 200) // well past vision range

	g.world.addBullet(Bullet{ID: "near-b", OwnerID: "x", X: 2100, Y: 2000})
	g.world.addBullet(Bullet{ID: "far-b", OwnerID: "x", X: 100, Y: 100})
	g.world.addRock(Rock{ID: "near-r", X: 2200, Y: 2000})
	g.world.addRock(Rock{ID: "far-r", X: 3800, Y: 3800})
	g.world.addGun(Gun{ID: "near-g", X: 2300, Y: 2000, Type: WeaponPistol})
	g.world.addGun(Gun{ID: "far-g", X: 3900, Y: 200, Type: WeaponPistol})
	g.world.addGun(Gun{ID: "owned-far", Type: WeaponShotgun, OwnerID: far.ID, X: 200, Y: 200})
	g.world.addAmmo(Ammo{ID: "far-a", X: 300, Y: 3800, Type: WeaponPistol, Amount: 12})

	snap, ok := g.SnapshotFor(viewer.ID)
	if !ok {
		t.Fatal("snapshot for live player failed")
	}

	if len(snap.Players) != 2 {
		t.Errorf("players = %d, want 2 (never filtered)", len(snap.Players))
	}
	if len(snap.Bullets) != 1 || snap.Bullets[0].ID != "near-b" {
		t.Errorf("bullets = %+v, want only near-b", snap.Bullets)
	}
	if len(snap.Rocks) != 1 || snap.Rocks[0].ID != "near-r" {
		t.Errorf("rocks = %+v, want only near-r", snap.Rocks)
	}
	if len(snap.Ammo) != 0 {
		t.Errorf("ammo = %+v, want none", snap.Ammo)
	}
	// Guns: near unowned yes, far unowned no, owned always
	gunIDs := make(map[string]bool)
	for _, gs := range snap.Guns {
		gunIDs[gs.ID] = true
	}
	if !gunIDs["near-g"] || gunIDs["far-g"] || !gunIDs["owned-far"] {
		t.Errorf("guns = %v", gunIDs)
	}

	if _, ok := g.SnapshotFor("ghost"); ok {
		t.Error("snapshot for unknown player succeeded")
	}
}

func TestSnapshotEncodesAsMsgpack(t *testing.T) {
	g := newBareGame()
	p := testPlayer(g.world, "p", 2000, 2000)
	fc := &fakeClient{}
	g.SetClient(p.ID, fc)

	g.mu.Lock()
	g.broadcastState()
	g.mu.Unlock()

	if len(fc.bins) != 1 {
		t.Fatalf("binary frames = %d, want 1", len(fc.bins))
	}
	var snap StateMsg
	if err := msgpack.Unmarshal(fc.bins[0], &snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if snap.GameID != g.ID || len(snap.Players) != 1 {
		t.Errorf("decoded snapshot = %+v", snap)
	}
}

func TestDescribe(t *testing.T) {
	g := newBareGame()
	testPlayer(g.world, "a", 1000, 1000)
	testPlayer(g.world, "b", 2000, 2000)

	desc := g.Describe()
	if desc.GameID != g.ID || desc.Name != g.Name {
		t.Errorf("desc = %+v", desc)
	}
	if len(desc.Players) != 2 {
		t.Errorf("roster = %v", desc.Players)
	}
}
