package command

import (
	"strings"

	"cosmo-agent/internal/model"
)

const (
	PlaceholderSteamID = ":sid64"
	PlaceholderNick    = ":nick"
)

// Render fills the player placeholders of a command template. Both tokens are
// replaced in a single pass, so text coming from the player is never matched again.
func Render(template string, player model.Player) string {
	return strings.NewReplacer(
		PlaceholderSteamID, player.ID,
		PlaceholderNick, player.Name,
	).Replace(template)
}
