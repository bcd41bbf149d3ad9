package main

import "fmt"

// Resolve applies the effect of one colliding pair and reports whether the
// collision blocks movement. The pair is canonicalized by kind (player first,
// then bullet, then the stationary kinds) so each type combination has a
// single rule.
//
// A pair whose members were already deleted this tick resolves as a no-op:
// the stepper enumerates pairs up front, and an earlier resolution may have
// consumed a participant.
//
// Two stationary entities (ammo/gun/rock) can never collide under correct
// generation — they are placed on free positions and never move. Seeing such
// a pair means the index or the generator is broken, so it panics.
func (w *World) Resolve(a, b Shape) bool {
	if b.Kind < a.Kind {
		a, b = b, a
	}
	switch a.Kind {
	case KindPlayer:
		switch b.Kind {
		case KindPlayer:
			return true
		case KindBullet:
			return w.resolvePlayerBullet(a.ID, b.ID)
		case KindAmmo:
			return w.resolvePlayerAmmo(a.ID, b.ID)
		case KindGun:
			return w.resolvePlayerGun(a.ID, b.ID)
		case KindRock:
			return true
		}
	case KindBullet:
		switch b.Kind {
		case KindBullet:
			w.removeBullet(a.ID)
			w.removeBullet(b.ID)
		case KindAmmo:
			w.removeBullet(a.ID)
			w.removeAmmo(b.ID)
		case KindGun:
			w.removeBullet(a.ID)
			w.removeGun(b.ID)
		case KindRock:
			w.removeBullet(a.ID)
		}
		return false
	}
	panic(fmt.Sprintf("unresolvable collision pair %s/%s", a.Kind, b.Kind))
}

// resolvePlayerBullet damages the player and destroys the bullet. Friendly
// fire applies — the bullet's owner gets no exemption. A player dropping to
// zero health loses their index shape immediately; the store record survives
// until the next dead-player sweep, and further hits on it record no extra
// kill.
func (w *World) resolvePlayerBullet(playerID, bulletID string) bool {
	p, okP := w.players[playerID]
	b, okB := w.bullets[bulletID]
	if !okP || !okB {
		return false
	}
	w.removeBullet(bulletID)
	wasAlive := p.Health > 0
	p.Health -= b.Damage
	if wasAlive && p.Health <= 0 {
		w.index.Remove(p.Shape())
		w.kills = append(w.kills, killEvent{KillerID: b.OwnerID, VictimID: playerID})
	}
	w.players[playerID] = p
	return false
}

// resolvePlayerAmmo feeds the drop into a matching owned gun, or blocks if
// the player has no gun of that type.
func (w *World) resolvePlayerAmmo(playerID, ammoID string) bool {
	p, okP := w.players[playerID]
	a, okA := w.ammo[ammoID]
	if !okP || !okA {
		return false
	}
	gunID, ok := p.Guns[a.Type]
	if !ok {
		return true
	}
	g := w.guns[gunID]
	g.AmmoCount += a.Amount
	w.guns[gunID] = g
	w.removeAmmo(ammoID)
	return false
}

// resolvePlayerGun picks the gun up unless the player already owns that
// weapon type. A picked-up gun stops being a physical obstacle.
func (w *World) resolvePlayerGun(playerID, gunID string) bool {
	p, okP := w.players[playerID]
	g, okG := w.guns[gunID]
	if !okP || !okG {
		return false
	}
	if _, owns := p.Guns[g.Type]; owns {
		return true
	}
	w.index.Remove(g.Shape())
	g.OwnerID = playerID
	w.guns[gunID] = g
	p.Guns[g.Type] = gunID
	w.players[playerID] = p
	return false
}
