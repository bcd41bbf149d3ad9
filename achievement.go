package main

// AchievementDef describes one unlockable milestone
type AchievementDef struct {
	ID          string
	Name        string
	Description string
}

var Achievements = []AchievementDef{
	{"first_blood", "First Blood", "Get your first kill"},
	{"marksman", "Marksman", "Reach 50 total kills"},
	{"warlord", "Warlord", "Reach 250 total kills"},
	{"rampage", "Rampage", "Get 5 kills in a single game"},
	{"survivor", "Survivor", "Win a game"},
	{"champion", "Champion", "Win 10 games"},
	{"pacifist", "Pacifist", "Win a game without a single kill"},
	{"regular", "Regular", "Play 50 games"},
}

// CheckAchievements checks if any new achievements should be unlocked for an
// account after a match. Returns the newly unlocked definitions.
func CheckAchievements(db *DB, accountID int64, matchKills int, won bool) []AchievementDef {
	if db == nil {
		return nil
	}

	stats, err := db.GetStats(accountID)
	if err != nil || stats == nil {
		return nil
	}

	existing, err := db.GetAchievements(accountID)
	if err != nil {
		return nil
	}
	has := make(map[string]bool, len(existing))
	for _, id := range existing {
		has[id] = true
	}

	earned := func(id string) bool {
		if has[id] {
			return false
		}
		switch id {
		case "first_blood":
			return stats.Kills >= 1
		case "marksman":
			return stats.Kills >= 50
		case "warlord":
			return stats.Kills >= 250
		case "rampage":
			return matchKills >= 5
		case "survivor":
			return won
		case "champion":
			return stats.Wins >= 10
		case "pacifist":
			return won && matchKills == 0
		case "regular":
			return stats.Matches >= 50
		}
		return false
	}

	var unlocked []AchievementDef
	for _, def := range Achievements {
		if earned(def.ID) {
			if fresh, err := db.UnlockAchievement(accountID, def.ID); err == nil && fresh {
				unlocked = append(unlocked, def)
			}
		}
	}
	return unlocked
}
