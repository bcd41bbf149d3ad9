package main

import (
	"math"
	"math/rand"
)

const (
	InitialRocks = 24
	InitialGuns  = 8
	InitialAmmo  = 12

	AmmoSpawnEvery = 120
	AmmoSpawnBatch = 4
	GunSpawnEvery  = 240
	GunSpawnBatch  = 2

	// Bullets spawn this far past the shooter's edge so they don't
	// immediately collide with the player who fired them
	bulletOffset = PlayerRadius + BulletRadius + 2
)

// NewRock places a rock on a free position. Reports false if no slot fits.
func NewRock(ix *Index) (Rock, bool) {
	x, y, ok := ix.Free(WorldBounds(RockRadius), RockRadius)
	if !ok {
		return Rock{}, false
	}
	return Rock{ID: GenerateID(4), X: x, Y: y}, true
}

// NewGun places an unowned gun of a random weapon type on a free position
func NewGun(ix *Index) (Gun, bool) {
	x, y, ok := ix.Free(WorldBounds(GunRadius), GunRadius)
	if !ok {
		return Gun{}, false
	}
	t := WeaponType(int(rand.Float64() * WeaponCount))
	def := GetWeaponDef(t)
	return Gun{
		ID:           GenerateID(4),
		X:            x,
		Y:            y,
		Type:         t,
		AmmoCount:    def.StartAmmo,
		CooldownRate: def.CooldownRate,
	}, true
}

// NewAmmoDrop places an ammo drop of a random weapon type on a free position
func NewAmmoDrop(ix *Index) (Ammo, bool) {
	x, y, ok := ix.Free(WorldBounds(AmmoRadius), AmmoRadius)
	if !ok {
		return Ammo{}, false
	}
	t := WeaponType(int(rand.Float64() * WeaponCount))
	return Ammo{
		ID:     GenerateID(4),
		X:      x,
		Y:      y,
		Type:   t,
		Amount: GetWeaponDef(t).DropAmount,
	}, true
}

// NewPlayer spawns a player on a free position with full health and an
// empty inventory
func NewPlayer(ix *Index, name string) (Player, bool) {
	x, y, ok := ix.Free(WorldBounds(PlayerRadius), PlayerRadius)
	if !ok {
		return Player{}, false
	}
	return Player{
		ID:      GenerateID(4),
		Name:    name,
		X:       x,
		Y:       y,
		Health:  PlayerMaxHP,
		Guns:    make(map[WeaponType]string),
		FacingX: 1,
	}, true
}

// NewBullets builds the volley one trigger pull of the given gun produces,
// fanned around the shooter's facing direction per the weapon definition.
func NewBullets(p Player, g Gun) []Bullet {
	def := GetWeaponDef(g.Type)
	base := math.Atan2(p.FacingY, p.FacingX)
	bullets := make([]Bullet, 0, def.BulletCount)
	for i := 0; i < def.BulletCount; i++ {
		angle := base
		if def.BulletCount > 1 {
			angle += def.Spread * (float64(i)/float64(def.BulletCount-1) - 0.5)
		}
		dirX := math.Cos(angle)
		dirY := math.Sin(angle)
		bullets = append(bullets, Bullet{
			ID:      GenerateID(3),
			OwnerID: p.ID,
			X:       p.X + dirX*bulletOffset,
			Y:       p.Y + dirY*bulletOffset,
			VX:      dirX * def.Speed,
			VY:      dirY * def.Speed,
			Damage:  def.Damage,
			Motion:  def.Motion,
		})
	}
	return bullets
}
