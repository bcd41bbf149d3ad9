package main

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"
)

const (
	// TickPeriod is the fixed cadence of the world-stepping scheduler
	TickPeriod = 50 * time.Millisecond

	maxGames = 100
)

// ErrGameNotFound is returned when a request references an unknown game id
var ErrGameNotFound = errors.New("game not found")

// Registry owns every active game and the single scheduler goroutine that
// steps them. The scheduler iterates games sequentially once per tick period;
// each game's own lock serializes the step against its action handlers, and
// games are only dropped between ticks.
type Registry struct {
	mu    sync.RWMutex
	games map[string]*Game

	db        *DB
	analytics *Analytics
	stop      chan struct{}
	stopOnce  sync.Once
}

// NewRegistry creates a registry. db and analytics may be nil in tests.
func NewRegistry(db *DB, analytics *Analytics) *Registry {
	return &Registry{
		games:     make(map[string]*Game),
		db:        db,
		analytics: analytics,
		stop:      make(chan struct{}),
	}
}

// CreateGame creates a game plus its first player and returns both
func (r *Registry) CreateGame(gameName, playerName string) (*Game, Player, error) {
	r.mu.Lock()
	if len(r.games) >= maxGames {
		r.mu.Unlock()
		return nil, Player{}, fmt.Errorf("game limit reached")
	}
	g := NewGame(GenerateUUID(), gameName, r.analytics)
	r.games[g.ID] = g
	r.mu.Unlock()

	p, err := g.Join(playerName)
	if err != nil {
		r.Remove(g.ID)
		return nil, Player{}, err
	}
	if r.analytics != nil {
		r.analytics.Track(EvtGameStart, 0, g.ID, "")
	}
	return g, p, nil
}

// Get looks a game up by id
func (r *Registry) Get(id string) (*Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.games[id]
	if !ok {
		return nil, ErrGameNotFound
	}
	return g, nil
}

// Remove drops a game from scheduling
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.games, id)
}

// List returns info about all active games
func (r *Registry) List() []GameInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]GameInfo, 0, len(r.games))
	for _, g := range r.games {
		list = append(list, GameInfo{ID: g.ID, Name: g.Name, Players: g.PlayerCount()})
	}
	return list
}

// GameCount returns the number of active games
func (r *Registry) GameCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.games)
}

// Run drives the scheduler until Stop is called
func (r *Registry) Run() {
	ticker := time.NewTicker(TickPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			r.stepAll()
		case <-r.stop:
			return
		}
	}
}

// Stop terminates the scheduler loop
func (r *Registry) Stop() {
	r.stopOnce.Do(func() { close(r.stop) })
}

// stepAll advances every active game one tick, then handles removals and
// persistence outside any game lock
func (r *Registry) stepAll() {
	r.mu.RLock()
	games := make([]*Game, 0, len(r.games))
	for _, g := range r.games {
		games = append(games, g)
	}
	r.mu.RUnlock()

	for _, g := range games {
		if result := g.Tick(); result != nil {
			r.finish(g, result)
		} else if g.Abandoned() {
			r.Remove(g.ID)
		}
	}
}

// finish retires a completed game and persists its outcome
func (r *Registry) finish(g *Game, result *MatchResult) {
	r.Remove(g.ID)
	log.Printf("game %s over: winner=%q after %d ticks", result.GameID, result.WinnerName, result.Ticks)

	if r.analytics != nil {
		r.analytics.Track(EvtGameEnd, 0, result.GameID, "")
	}
	if r.db == nil {
		return
	}
	matchID, err := r.db.RecordMatch(result)
	if err != nil {
		log.Printf("record match: %v", err)
		return
	}
	for _, s := range result.Stats {
		if err := r.db.RecordMatchPlayer(matchID, s); err != nil {
			log.Printf("record match player: %v", err)
			continue
		}
		if err := r.db.UpdateStats(s.Account, s.Kills, s.Won); err != nil {
			log.Printf("update stats: %v", err)
			continue
		}
		for _, def := range CheckAchievements(r.db, s.Account, s.Kills, s.Won) {
			log.Printf("account %d unlocked %q", s.Account, def.ID)
		}
	}
}
