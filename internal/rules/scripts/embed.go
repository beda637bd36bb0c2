package scripts

import _ "embed"

// Embedded default rule scripts. External files in SCRIPTS_DIR with the
// same base name override these at startup and on hot reload.

//go:embed tier_watch.tengo
var TierWatchScript string

//go:embed tier_watch_action.tengo
var TierWatchActionScript string

// All returns the embedded scripts keyed by registry name.
func All() map[string]string {
	return map[string]string{
		"tier_watch":        TierWatchScript,
		"tier_watch_action": TierWatchActionScript,
	}
}
