package domain

import "strings"

// Game is a catalog entry: a supported game and its allowed modes.
type Game struct {
	Name  string
	Modes []string
}

// The static catalog of supported games. Gamemode validation and
// autocomplete both run against this list.
var catalog = []Game{
	{Name: "Valorant", Modes: []string{"Competitive", "Unrated", "Swiftplay", "Spike Rush", "Deathmatch", "Premier"}},
	{Name: "League of Legends", Modes: []string{"Ranked Solo/Duo", "Ranked Flex", "Normal Draft", "ARAM", "Arena"}},
	{Name: "Counter-Strike 2", Modes: []string{"Premier", "Competitive", "Wingman", "Casual", "Deathmatch"}},
	{Name: "Overwatch 2", Modes: []string{"Competitive", "Quick Play", "Arcade", "Mystery Heroes"}},
	{Name: "Apex Legends", Modes: []string{"Ranked", "Trios", "Duos", "Mixtape"}},
	{Name: "Fortnite", Modes: []string{"Solo", "Duos", "Trios", "Squads", "Ranked Battle Royale", "Zero Build"}},
	{Name: "Rocket League", Modes: []string{"Ranked Doubles", "Ranked Standard", "Casual", "Rumble", "Snow Day"}},
	{Name: "Minecraft", Modes: []string{"Survival", "Creative", "Hardcore", "Minigames"}},
}

// Games returns the catalog in its declared order.
func Games() []Game {
	return catalog
}

func FindGame(name string) (Game, bool) {
	for _, g := range catalog {
		if strings.EqualFold(g.Name, name) {
			return g, true
		}
	}
	return Game{}, false
}

// ValidMode reports whether mode belongs to game's allowed set.
func ValidMode(game, mode string) bool {
	_, ok := CanonicalMode(game, mode)
	return ok
}

// CanonicalMode resolves a mode to its catalog casing, matching
// case-insensitively. Sessions store the canonical form so mode
// comparisons elsewhere can be plain equality against catalog values.
func CanonicalMode(game, mode string) (string, bool) {
	g, ok := FindGame(game)
	if !ok {
		return "", false
	}
	for _, m := range g.Modes {
		if strings.EqualFold(m, mode) {
			return m, true
		}
	}
	return "", false
}

// MatchModes returns up to limit modes of game containing partial,
// case-insensitive. Pure function backing gamemode autocomplete.
func MatchModes(game, partial string, limit int) []string {
	g, ok := FindGame(game)
	if !ok {
		return nil
	}

	needle := strings.ToLower(partial)

	matches := make([]string, 0, limit)
	for _, m := range g.Modes {
		if len(matches) == limit {
			break
		}
		if strings.Contains(strings.ToLower(m), needle) {
			matches = append(matches, m)
		}
	}
	return matches
}
