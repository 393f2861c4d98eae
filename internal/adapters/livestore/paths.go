package livestore

import (
	"strings"

	"github.com/okian/scorebook/internal/domain/model"
)

const sep = "/"

// TournamentPath is tournaments/{tournamentId}.
func TournamentPath(tournamentID string) string {
	return Join("tournaments", tournamentID)
}

// MatchPath is tournaments/{tournamentId}/matches/{matchId}.
func MatchPath(tournamentID, matchID string) string {
	return Join("tournaments", tournamentID, "matches", matchID)
}

// LiveMatchPath is liveMatches/{matchId}.
func LiveMatchPath(matchID string) string {
	return Join("liveMatches", matchID)
}

// ResultPath is results/{tournamentId}/{matchId}.
func ResultPath(tournamentID, matchID string) string {
	return Join("results", tournamentID, matchID)
}

// PointsTablePath is tournaments/{tournamentId}/pointsTable.
func PointsTablePath(tournamentID string) string {
	return Join("tournaments", tournamentID, "pointsTable")
}

// Join builds a path from segments. Invalid segments produce a path that
// ValidatePath rejects.
func Join(segments ...string) string {
	return strings.Join(segments, sep)
}

// ValidatePath rejects empty paths, empty segments and surrounding slashes.
func ValidatePath(path string) error {
	if path == "" {
		return model.NewError("livestore.ValidatePath", model.ErrMissingTournamentContext, "empty path")
	}
	for _, seg := range strings.Split(path, sep) {
		if strings.TrimSpace(seg) == "" {
			return model.NewError("livestore.ValidatePath", model.ErrMissingTournamentContext,
				"path %q has an empty segment", path)
		}
	}
	return nil
}

// IsUnder reports whether path equals root or lies below it.
func IsUnder(path, root string) bool {
	return path == root || strings.HasPrefix(path, root+sep)
}
