package main

// WeaponType identifies a gun/ammo family
type WeaponType int

const (
	WeaponPistol   WeaponType = 0
	WeaponShotgun  WeaponType = 1
	WeaponLauncher WeaponType = 2

	WeaponCount = 3
)

// WeaponDef holds the stats for a weapon type
type WeaponDef struct {
	Name         string
	Damage       int
	Speed        float64 // units per tick
	BulletCount  int     // bullets per trigger pull
	Spread       float64 // fan angle in radians (shotgun)
	Motion       Motion
	CooldownRate int // ticks between shots
	StartAmmo    int // reserve a freshly spawned gun carries
	DropAmount   int // reserve in one ammo drop of this type
}

var Weapons = [WeaponCount]WeaponDef{
	// Pistol: fast single shot, quick cooldown
	{
		Name: "pistol", Damage: 10, Speed: 40,
		BulletCount: 1, Spread: 0, Motion: MotionStraight,
		CooldownRate: 5, StartAmmo: 24, DropAmount: 12,
	},
	// Shotgun: short-range fan of decelerating pellets
	{
		Name: "shotgun", Damage: 6, Speed: 32,
		BulletCount: 5, Spread: 0.5, Motion: MotionSpread,
		CooldownRate: 20, StartAmmo: 8, DropAmount: 6,
	},
	// Launcher: slow lobbed shell, heavy damage
	{
		Name: "launcher", Damage: 25, Speed: 18,
		BulletCount: 1, Spread: 0, Motion: MotionArc,
		CooldownRate: 30, StartAmmo: 4, DropAmount: 3,
	},
}

// GetWeaponDef returns the definition for a weapon type
func GetWeaponDef(t WeaponType) WeaponDef {
	if t < 0 || int(t) >= len(Weapons) {
		return Weapons[WeaponPistol]
	}
	return Weapons[t]
}
