package main

import "math"

const (
	WorldWidth  = 4000.0
	WorldHeight = 4000.0

	PlayerRadius = 20.0
	BulletRadius = 4.0
	AmmoRadius   = 10.0
	GunRadius    = 14.0
	RockRadius   = 40.0

	PlayerMaxHP = 100

	// Bullets older than this many ticks are expired by the stepper
	BulletLifetime = 40
)

// Kind tags an entity for the collision resolver. The numeric order is the
// canonical pair order: resolution rules are written with the lower kind on
// the left.
type Kind uint8

const (
	KindPlayer Kind = iota
	KindBullet
	KindAmmo
	KindGun
	KindRock
)

func (k Kind) String() string {
	switch k {
	case KindPlayer:
		return "player"
	case KindBullet:
		return "bullet"
	case KindAmmo:
		return "ammo"
	case KindGun:
		return "gun"
	case KindRock:
		return "rock"
	}
	return "unknown"
}

// Shape is the geometry the spatial index stores: an identifier, a kind tag,
// a center and a radius. The index never looks at the kind.
type Shape struct {
	ID     string
	Kind   Kind
	X, Y   float64
	Radius float64
}

// Ammo is a pickup that refills a matching gun's reserve
type Ammo struct {
	ID     string
	X, Y   float64
	Type   WeaponType
	Amount int
}

func (a Ammo) Shape() Shape {
	return Shape{ID: a.ID, Kind: KindAmmo, X: a.X, Y: a.Y, Radius: AmmoRadius}
}

// Rock is a static obstacle, placed once at game start
type Rock struct {
	ID   string
	X, Y float64
}

func (r Rock) Shape() Shape {
	return Shape{ID: r.ID, Kind: KindRock, X: r.X, Y: r.Y, Radius: RockRadius}
}

// Gun sits in the world as a pickup until a player grabs it. Owned guns have
// no shape in the spatial index; they live in the owner's inventory.
type Gun struct {
	ID           string
	X, Y         float64
	Type         WeaponType
	OwnerID      string // empty while on the ground
	AmmoCount    int
	Cooldown     int // ticks until the gun can fire again
	CooldownRate int // value Cooldown resets to on fire
}

func (g Gun) Shape() Shape {
	return Shape{ID: g.ID, Kind: KindGun, X: g.X, Y: g.Y, Radius: GunRadius}
}

// Motion selects how a bullet advances each tick
type Motion uint8

const (
	MotionStraight Motion = iota
	MotionSpread
	MotionArc
)

const (
	// Spread pellets lose speed every tick
	spreadDamping = 0.92
	// Arc shells follow a lobbed speed profile, peaking mid-flight
	arcPeakScale = 2.0
)

// Bullet is a live projectile. Age counts ticks since it was fired.
type Bullet struct {
	ID      string
	OwnerID string
	X, Y    float64
	VX, VY  float64
	Damage  int
	Age     int
	Motion  Motion
}

func (b Bullet) Shape() Shape {
	return Shape{ID: b.ID, Kind: KindBullet, X: b.X, Y: b.Y, Radius: BulletRadius}
}

// Advanced returns the bullet one tick later, moved per its motion rule
func (b Bullet) Advanced() Bullet {
	b.Age++
	switch b.Motion {
	case MotionSpread:
		b.X += b.VX
		b.Y += b.VY
		b.VX *= spreadDamping
		b.VY *= spreadDamping
	case MotionArc:
		scale := arcPeakScale * math.Sin(math.Pi*float64(b.Age)/float64(BulletLifetime))
		b.X += b.VX * scale
		b.Y += b.VY * scale
	default:
		b.X += b.VX
		b.Y += b.VY
	}
	return b
}

// Player holds at most one gun per weapon type, keyed by type in Guns.
// Facing is the unit direction of the last committed move; bullets fire
// along it.
type Player struct {
	ID        string
	Name      string
	X, Y      float64
	Health    int
	Guns      map[WeaponType]string // weapon type -> gun id
	LastFired WeaponType
	FacingX   float64
	FacingY   float64
}

func (p Player) Shape() Shape {
	return Shape{ID: p.ID, Kind: KindPlayer, X: p.X, Y: p.Y, Radius: PlayerRadius}
}
