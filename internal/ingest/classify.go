package ingest

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"strings"

	yaml "gopkg.in/yaml.v3"

	"github.com/mlarcin/chess-results-stats/internal/domain"
)

//go:embed timecontrols.yaml
var defaultTables embed.FS

// CategoryTable maps raw TimeControl tag values to a category by exact
// match. The default table ships embedded; an override file can extend or
// replace entries.
type CategoryTable struct {
	byControl map[string]domain.Category
}

func NewCategoryTable(overridePath string) (*CategoryTable, error) {
	t := &CategoryTable{byControl: make(map[string]domain.Category)}

	raw, err := fs.ReadFile(defaultTables, "timecontrols.yaml")
	if err != nil {
		return nil, fmt.Errorf("read embedded time controls: %w", err)
	}
	if err := t.applyYAML(raw); err != nil {
		return nil, err
	}

	if strings.TrimSpace(overridePath) != "" {
		raw, err := os.ReadFile(overridePath)
		if err != nil {
			return nil, fmt.Errorf("read time control override: %w", err)
		}
		if err := t.applyYAML(raw); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (t *CategoryTable) applyYAML(raw []byte) error {
	var doc map[string][]string
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("parse time control table: %w", err)
	}
	for name, controls := range doc {
		cat := domain.Category(name)
		switch cat {
		case domain.CategoryBullet, domain.CategoryBlitz, domain.CategoryRapid:
		default:
			return fmt.Errorf("unknown time control category %q", name)
		}
		for _, tc := range controls {
			t.byControl[tc] = cat
		}
	}
	return nil
}

// Category returns the category for a raw TimeControl value, or
// CategoryUnknown when the value is not in the table.
func (t *CategoryTable) Category(timeControl string) domain.Category {
	if cat, ok := t.byControl[timeControl]; ok {
		return cat
	}
	return domain.CategoryUnknown
}

// ResultForPlayer derives the game result for the tracked player from the
// free-text Termination tag. The username substring match is a heuristic
// carried over from the archive format: the winner's name appears in the
// termination text ("X won by resignation").
func ResultForPlayer(termination, playerUsername string) domain.PlayerResult {
	lower := strings.ToLower(termination)
	if strings.Contains(lower, "partie nulle") || strings.Contains(lower, "drawn") {
		return domain.ResultDrawn
	}
	if playerUsername != "" && strings.Contains(lower, strings.ToLower(playerUsername)) {
		return domain.ResultWon
	}
	return domain.ResultLost
}

// endReasonRules is checked in order; a termination text can contain more
// than one keyword, so the first match wins.
var endReasonRules = []struct {
	keywords []string
	reason   domain.EndReason
}{
	{[]string{"temps", "time"}, domain.EndByTime},
	{[]string{"échec et mat", "checkmate"}, domain.EndByCheckmate},
	{[]string{"abandon", "resignation"}, domain.EndByAbandon},
	{[]string{"accord mutuel", "mutual agreement"}, domain.EndByAgreement},
	{[]string{"manque de matériel", "insufficient material"}, domain.EndByMaterial},
	{[]string{"pat", "stalemate"}, domain.EndByStalemate},
	{[]string{"répétition", "repetition"}, domain.EndByRepetition},
}

// EndOfGameBy derives how the game ended from the Termination tag.
func EndOfGameBy(termination string) domain.EndReason {
	lower := strings.ToLower(termination)
	for _, rule := range endReasonRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.reason
			}
		}
	}
	return domain.EndByUnknown
}
