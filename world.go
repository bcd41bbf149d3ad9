package main

const (
	ZoneCenterX = WorldWidth / 2
	ZoneCenterY = WorldHeight / 2

	ZoneInitialRadius = 2400.0
	ZoneShrinkPerTick = 0.5
)

// World is one game's entity store plus its spatial index. Every solid
// entity (rocks, unowned guns, ammo drops, bullets, live players) has exactly
// one shape in the index; owned guns have none. The owning Game's lock guards
// all access.
//
// Entity records are values: field updates fetch, build the new value and
// write it back, so no partial update is ever visible once the lock drops.
type World struct {
	ammo    map[string]Ammo
	bullets map[string]Bullet
	rocks   map[string]Rock
	guns    map[string]Gun
	players map[string]Player
	index   *Index

	tick uint64
	zone float64 // safe-zone radius; shrinks monotonically, may go negative

	// Pending lifecycle events, drained by the owning Game after each
	// handler call or tick
	kills []killEvent
	elims []string // players swept for leaving the safe zone
}

// NewWorld creates an empty world with a full-size safe zone
func NewWorld() *World {
	return &World{
		ammo:    make(map[string]Ammo),
		bullets: make(map[string]Bullet),
		rocks:   make(map[string]Rock),
		guns:    make(map[string]Gun),
		players: make(map[string]Player),
		index:   NewIndex(),
		zone:    ZoneInitialRadius,
	}
}

func (w *World) addAmmo(a Ammo) {
	w.ammo[a.ID] = a
	w.index.Update(a.Shape())
}

func (w *World) addRock(r Rock) {
	w.rocks[r.ID] = r
	w.index.Update(r.Shape())
}

func (w *World) addGun(g Gun) {
	w.guns[g.ID] = g
	if g.OwnerID == "" {
		w.index.Update(g.Shape())
	}
}

func (w *World) addBullet(b Bullet) {
	w.bullets[b.ID] = b
	w.index.Update(b.Shape())
}

func (w *World) addPlayer(p Player) {
	w.players[p.ID] = p
	w.index.Update(p.Shape())
}

func (w *World) removeAmmo(id string) {
	a, ok := w.ammo[id]
	if !ok {
		return
	}
	w.index.Remove(a.Shape())
	delete(w.ammo, id)
}

func (w *World) removeBullet(id string) {
	b, ok := w.bullets[id]
	if !ok {
		return
	}
	w.index.Remove(b.Shape())
	delete(w.bullets, id)
}

// removeGun deletes a gun entirely, detaching it from any owner's inventory
func (w *World) removeGun(id string) {
	g, ok := w.guns[id]
	if !ok {
		return
	}
	if g.OwnerID != "" {
		if p, ok := w.players[g.OwnerID]; ok {
			delete(p.Guns, g.Type)
			w.players[g.OwnerID] = p
		}
	}
	w.index.Remove(g.Shape())
	delete(w.guns, id)
}

// removePlayer deletes a player and every gun they own. Owned guns are not
// returned to the world.
func (w *World) removePlayer(id string) {
	p, ok := w.players[id]
	if !ok {
		return
	}
	for _, gunID := range p.Guns {
		delete(w.guns, gunID)
	}
	w.index.Remove(p.Shape())
	delete(w.players, id)
}

// EntityShapes flattens the store into the set of index-bearing shapes:
// all ammo, bullets, rocks and live players, plus unowned guns. Rebuilding
// an index from this listing reproduces the live one.
func (w *World) EntityShapes() []Shape {
	shapes := make([]Shape, 0,
		len(w.ammo)+len(w.bullets)+len(w.rocks)+len(w.guns)+len(w.players))
	for _, a := range w.ammo {
		shapes = append(shapes, a.Shape())
	}
	for _, b := range w.bullets {
		shapes = append(shapes, b.Shape())
	}
	for _, r := range w.rocks {
		shapes = append(shapes, r.Shape())
	}
	for _, g := range w.guns {
		if g.OwnerID == "" {
			shapes = append(shapes, g.Shape())
		}
	}
	for _, p := range w.players {
		if p.Health > 0 {
			shapes = append(shapes, p.Shape())
		}
	}
	return shapes
}
