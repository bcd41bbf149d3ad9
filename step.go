package main

// Step advances the world one tick. The phase order is a correctness
// requirement: expiry and the dead-player sweep run before movement, and
// resolution sees the post-movement index.
func (w *World) Step() {
	// 1. Expire timed-out bullets
	for id, b := range w.bullets {
		if b.Age > BulletLifetime {
			w.removeBullet(id)
		}
	}

	// 2. Sweep dead players and players strictly outside the safe zone.
	// A player exactly on the boundary survives.
	for id, p := range w.players {
		if p.Health <= 0 {
			w.removePlayer(id)
		} else if Distance(p.X, p.Y, ZoneCenterX, ZoneCenterY) > w.zone {
			w.removePlayer(id)
			w.elims = append(w.elims, id)
		}
	}

	// 3. Advance surviving bullets per their motion rules
	for id, b := range w.bullets {
		nb := b.Advanced()
		w.bullets[id] = nb
		w.index.Update(nb.Shape())
	}

	// 4. Resolve every overlapping pair once. Resolution may delete entities
	// participating in later pairs; Resolve treats those as no-ops.
	for _, pair := range w.index.All() {
		w.Resolve(pair.A, pair.B)
	}

	// 5. Decay gun cooldowns, floored at zero
	for id, g := range w.guns {
		if g.Cooldown > 0 {
			g.Cooldown--
			w.guns[id] = g
		}
	}

	// 6. Advance the clock and shrink the zone. The radius is deliberately
	// not floored: a negative radius means the zone has closed entirely.
	w.tick++
	w.zone -= ZoneShrinkPerTick

	// 7. Periodic ammo drops
	if w.tick%AmmoSpawnEvery == 0 {
		for i := 0; i < AmmoSpawnBatch; i++ {
			if a, ok := NewAmmoDrop(w.index); ok {
				w.addAmmo(a)
			}
		}
	}

	// 8. Periodic gun drops
	if w.tick%GunSpawnEvery == 0 {
		for i := 0; i < GunSpawnBatch; i++ {
			if g, ok := NewGun(w.index); ok {
				w.addGun(g)
			}
		}
	}
}
