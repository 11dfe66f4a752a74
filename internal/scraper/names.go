package scraper

import (
	"strings"
)

// The catalog page mixes real game tiles with navigation chrome, category
// links and subscription upsells. These lists are the accumulated filters for
// telling them apart.

// URL fragments that mark navigation/category links rather than games
var invalidURLPatterns = []string{
	"?xr=shellnav",
	"?xr=footnav",
	"/games/all-games",
	"/games/xbox-play-anywhere",
	"/games/free-to-play",
	"/games/optimized",
	"/games/backward-compatibility",
	"/games/ea-play",
	"developer.microsoft.com",
}

// Link texts that are never game names (exact match, lowercased)
var invalidNames = map[string]bool{
	"all games":              true,
	"xbox anywhere":          true,
	"free to play":           true,
	"optimized":              true,
	"backward compatibility": true,
	"store":                  true,
	"games for developers":   true,
	"explore":                true,
	"browse":                 true,
	"learn more":             true,
	"get the app":            true,
	"download":               true,
	"upgrade":                true,
	"show more":              true,
	"load more":              true,
	"see more":               true,
	"play fortnite":          true,
}

// Short names starting with these are navigation buttons, not games
var shortInvalidPrefixes = []string{"store", "explore", "browse", "learn more", "get the app"}

// Names starting with these are call-to-action buttons. The comma variants
// keep titles like "Explorers of the Abyss" from being caught.
var navigationKeywords = []string{"learn more,", "explore,", "browse,", "get the app", "download the app", "upgrade to", "buy ", "shop "}

var subscriptionTiers = []string{"ULTIMATE", "PREMIUM", "ESSENTIAL"}

// IsValidGameLink reports whether href and name together describe an actual
// game entry: a /games/store/<slug>/<id> URL with a plausible id, and a name
// that is not navigation or subscription chrome.
func IsValidGameLink(href, name string) bool {
	if href == "" || name == "" {
		return false
	}

	for _, pattern := range invalidURLPatterns {
		if strings.Contains(href, pattern) {
			return false
		}
	}

	// Generic store link without a game id
	trimmed := strings.TrimRight(href, "/")
	if strings.HasSuffix(trimmed, "/games/store") {
		return false
	}

	if !strings.Contains(href, "/games/store/") {
		return false
	}

	// Expect <slug>/<id> after /games/store/, id between 3 and 60 chars
	rest := strings.SplitN(href, "/games/store/", 2)[1]
	rest = strings.SplitN(rest, "?", 2)[0]
	rest = strings.SplitN(rest, "#", 2)[0]
	slugAndID := strings.SplitN(rest, "/", 2)
	if len(slugAndID) != 2 {
		return false
	}
	id := strings.Trim(slugAndID[1], "/")
	if len(id) < 3 || len(id) > 60 {
		return false
	}

	lower := strings.ToLower(strings.TrimSpace(name))
	if invalidNames[lower] {
		return false
	}

	for _, prefix := range shortInvalidPrefixes {
		if strings.HasPrefix(lower, prefix) && len(name) < 15 {
			return false
		}
	}

	if len(name) < 2 || len(name) > 150 {
		return false
	}

	for _, keyword := range navigationKeywords {
		if strings.HasPrefix(lower, keyword) {
			return false
		}
	}

	// Leftover subscription-tier text that survived cleaning
	upper := strings.ToUpper(name)
	if len(name) < 20 && (strings.Contains(name, "·") || strings.Contains(upper, "PC")) {
		for _, tier := range subscriptionTiers {
			if strings.Contains(upper, tier) {
				return false
			}
		}
	}

	return true
}

// CleanGameName strips navigation prefixes, subscription-tier lines and
// description text from a raw tile label, leaving just the game name. Returns
// "" when nothing usable is left.
func CleanGameName(raw string) string {
	name := strings.TrimSpace(raw)
	if name == "" {
		return ""
	}

	// Navigation prefixes like "LEARN MORE, Halo Infinite"
	for _, prefix := range []string{"learn more,", "learn more", "explore,", "explore"} {
		if len(name) >= len(prefix) && strings.EqualFold(name[:len(prefix)], prefix) {
			name = strings.TrimSpace(name[len(prefix):])
			name = strings.TrimSpace(strings.TrimPrefix(name, ","))
			break
		}
	}

	// Tile labels are often multi-line: name plus tier info plus description.
	// Keep the first line that looks like an actual title.
	var candidates []string
	for _, line := range strings.Split(name, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if isTierLine(line) {
			continue
		}
		if len(line) > 100 {
			// Description text, not a title
			continue
		}
		switch strings.ToUpper(line) {
		case "LEARN MORE", "EXPLORE", "BROWSE", "STORE":
			continue
		}
		candidates = append(candidates, line)
	}

	for _, line := range candidates {
		if len(line) > 3 && len(line) < 100 {
			return line
		}
	}

	// Fallback: tier info glued onto the name with a separator dot
	if strings.Contains(name, "·") {
		for _, part := range strings.Split(name, "·") {
			part = strings.TrimSpace(part)
			if part == "" || isTierLine(part) {
				continue
			}
			if len(part) > 3 && len(part) < 100 {
				return part
			}
		}
	}

	name = strings.TrimSpace(strings.ReplaceAll(name, "\n", " "))
	if len(name) > 150 {
		return ""
	}
	return name
}

// isTierLine reports whether a line is subscription-tier info rather than a
// name ("GAME PASS ULTIMATE", "PC · CONSOLE", ...)
func isTierLine(line string) bool {
	upper := strings.ToUpper(line)
	for _, keyword := range []string{"ULTIMATE", "PREMIUM", "ESSENTIAL", "PC", "CONSOLE"} {
		if strings.Contains(upper, keyword) {
			if strings.Contains(line, "·") || len(line) < 15 {
				return true
			}
		}
	}
	return false
}
