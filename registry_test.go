package main

import "testing"

func TestRegistryCreateAndGet(t *testing.T) {
	r := NewRegistry(nil, nil)
	g, p, err := r.CreateGame("arena", "alice")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.Name != "alice" {
		t.Errorf("player name = %q", p.Name)
	}
	if g.PlayerCount() != 1 {
		t.Errorf("new game has %d players", g.PlayerCount())
	}

	got, err := r.Get(g.ID)
	if err != nil || got != g {
		t.Errorf("Get returned (%v, %v)", got, err)
	}
	if _, err := r.Get("missing"); err != ErrGameNotFound {
		t.Errorf("Get unknown id: %v", err)
	}
}

func TestRegistryRemove(t *testing.T) {
	r := NewRegistry(nil, nil)
	g, _, err := r.CreateGame("arena", "alice")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	r.Remove(g.ID)
	if _, err := r.Get(g.ID); err != ErrGameNotFound {
		t.Error("removed game still resolvable")
	}
	if r.GameCount() != 0 {
		t.Errorf("GameCount = %d", r.GameCount())
	}
}

func TestRegistryList(t *testing.T) {
	r := NewRegistry(nil, nil)
	if _, _, err := r.CreateGame("one", "a"); err != nil {
		t.Fatal(err)
	}
	if _, _, err := r.CreateGame("two", "b"); err != nil {
		t.Fatal(err)
	}
	list := r.List()
	if len(list) != 2 {
		t.Fatalf("list = %v", list)
	}
	for _, info := range list {
		if info.Players != 1 {
			t.Errorf("game %s reports %d players", info.ID, info.Players)
		}
	}
}

func TestRegistryGameLimit(t *testing.T) {
	r := NewRegistry(nil, nil)
	r.mu.Lock()
	for i := 0; i < maxGames; i++ {
		g := &Game{ID: GenerateUUID()}
		r.games[g.ID] = g
	}
	r.mu.Unlock()
	if _, _, err := r.CreateGame("overflow", "p"); err == nil {
		t.Error("create past the game limit succeeded")
	}
}

func TestRegistryStepAllFinishes(t *testing.T) {
	r := NewRegistry(nil, nil)
	g, _, err := r.CreateGame("arena", "alice")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := g.Join("bob"); err != nil {
		t.Fatal(err)
	}

	// Pin both players near the zone center so the shrink can't eliminate them
	g.mu.Lock()
	off := 0.0
	for id, p := range g.world.players {
		g.world.index.Remove(p.Shape())
		p.X, p.Y = ZoneCenterX+off, ZoneCenterY
		g.world.players[id] = p
		g.world.index.Update(p.Shape())
		off += 100
	}
	g.mu.Unlock()

	r.stepAll() // marks the game started
	if r.GameCount() != 1 {
		t.Fatal("running game was dropped")
	}

	// Kill everyone but one; the next step ends the match and retires the game
	g.mu.Lock()
	for id, p := range g.world.players {
		if p.Name == "bob" {
			p.Health = 0
			g.world.players[id] = p
		}
	}
	g.mu.Unlock()

	r.stepAll()
	if r.GameCount() != 0 {
		t.Error("finished game still scheduled")
	}
}

func TestRegistryStepAllDropsAbandoned(t *testing.T) {
	r := NewRegistry(nil, nil)
	g, p, err := r.CreateGame("arena", "alice")
	if err != nil {
		t.Fatal(err)
	}
	g.Leave(p.ID)
	r.stepAll()
	if r.GameCount() != 0 {
		t.Error("abandoned game still scheduled")
	}
}

func TestRegistryStopIdempotent(t *testing.T) {
	r := NewRegistry(nil, nil)
	done := make(chan struct{})
	go func() {
		r.Run()
		close(done)
	}()
	r.Stop()
	r.Stop() // second call must not panic
	<-done
}
