package ingest

import (
	"bufio"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mlarcin/chess-results-stats/internal/chesscom"
	"github.com/mlarcin/chess-results-stats/internal/domain"
)

// Parser turns the PGN-tagged text of an archive page into GameRecord
// candidates. A malformed game (bad Date or Elo tag, broken tag line) is
// logged and skipped; the rest of the page is still parsed.
type Parser struct {
	categories *CategoryTable
	logger     *zap.Logger
}

func NewParser(categories *CategoryTable, logger *zap.Logger) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Parser{categories: categories, logger: logger}
}

// ParseArchive parses every game of one monthly page for the tracked
// username, keeping only records that end strictly after the cursor.
func (p *Parser) ParseArchive(archive *chesscom.MonthlyArchive, username string, cursor time.Time) []domain.GameRecord {
	var records []domain.GameRecord
	for _, game := range archive.Games {
		var accuracy float64
		if game.Accuracies != nil {
			if game.White.Username == username {
				accuracy = game.Accuracies.White
			} else {
				accuracy = game.Accuracies.Black
			}
		}
		records = append(records, p.parsePGN(game.PGN, username, accuracy, cursor)...)
	}
	return records
}

// pending is one game being accumulated during the line scan.
type pending struct {
	rec     domain.GameRecord
	moves   strings.Builder
	hasDate bool
	hasEnd  bool
	broken  bool
}

func (p *Parser) parsePGN(pgn, username string, accuracy float64, cursor time.Time) []domain.GameRecord {
	var out []domain.GameRecord
	var cur *pending

	flush := func() {
		if cur == nil {
			return
		}
		if cur.broken {
			p.logger.Warn("skipping malformed game",
				zap.String("username", username),
				zap.String("event", cur.rec.Event),
				zap.String("white", cur.rec.White),
				zap.String("black", cur.rec.Black))
			cur = nil
			return
		}
		p.finalize(cur, username)
		if cur.rec.DateAndEndTime.After(cursor) {
			out = append(out, cur.rec)
		}
		cur = nil
	}

	scanner := bufio.NewScanner(strings.NewReader(pgn))
	for scanner.Scan() {
		line := scanner.Text()

		if strings.HasPrefix(line, "[Event ") {
			flush()
			cur = &pending{}
		}
		if cur == nil {
			continue
		}

		// Set-once: the page-level accuracy attaches to the first line
		// processed while the record has none.
		if accuracy != 0 && cur.rec.Accuracy == nil {
			a := accuracy
			cur.rec.Accuracy = &a
		}

		if strings.HasPrefix(line, "[") {
			p.applyTag(cur, line)
		} else if strings.TrimSpace(line) != "" {
			cur.moves.WriteString(line)
			cur.moves.WriteString(" ")
		}
	}
	flush()
	return out
}

func (p *Parser) applyTag(cur *pending, line string) {
	space := strings.IndexByte(line, ' ')
	first := strings.IndexByte(line, '"')
	last := strings.LastIndexByte(line, '"')
	if space < 2 || first < 0 || last <= first {
		cur.broken = true
		return
	}
	key := line[1:space]
	value := line[first+1 : last]

	switch key {
	case "Event":
		cur.rec.Event = value
	case "Site":
		cur.rec.Site = value
	case "Date":
		d, err := time.Parse("2006.01.02", value)
		if err != nil {
			cur.broken = true
			return
		}
		cur.rec.Date = d.UTC()
		cur.hasDate = true
	case "Round":
		cur.rec.Round = value
	case "White":
		cur.rec.White = value
	case "Black":
		cur.rec.Black = value
	case "Result":
		cur.rec.Result = value
	case "WhiteElo":
		n, err := strconv.Atoi(value)
		if err != nil {
			cur.broken = true
			return
		}
		cur.rec.WhiteElo = &n
	case "BlackElo":
		n, err := strconv.Atoi(value)
		if err != nil {
			cur.broken = true
			return
		}
		cur.rec.BlackElo = &n
	case "TimeControl":
		cur.rec.TimeControl = value
	case "EndTime":
		t, err := time.Parse("15:04:05", value)
		if err != nil {
			cur.broken = true
			return
		}
		cur.rec.EndTime = time.Duration(t.Hour())*time.Hour +
			time.Duration(t.Minute())*time.Minute +
			time.Duration(t.Second())*time.Second
		cur.hasEnd = true
	case "Termination":
		cur.rec.Termination = value
	case "ECO":
		cur.rec.Eco = value
	case "ECOUrl":
		parts := strings.Split(value, "/")
		cur.rec.Opening = parts[len(parts)-1]
	}

	if cur.hasDate && cur.hasEnd {
		cur.rec.DateAndEndTime = cur.rec.Date.Add(cur.rec.EndTime)
	}
}

func (p *Parser) finalize(cur *pending, username string) {
	rec := &cur.rec
	if username == rec.White {
		rec.PlayerElo = rec.WhiteElo
	} else {
		rec.PlayerElo = rec.BlackElo
	}
	rec.PlayerUsername = username
	rec.Moves = NormalizeMoves(cur.moves.String())
	rec.Category = p.categories.Category(rec.TimeControl)
	rec.ResultForPlayer = ResultForPlayer(rec.Termination, username)
	rec.EndOfGameBy = EndOfGameBy(rec.Termination)
	if cur.hasDate && cur.hasEnd {
		rec.DateAndEndTime = rec.Date.Add(rec.EndTime)
	}
}

var moveAnnotations = regexp.MustCompile(`\{[^}]+\}`)

// NormalizeMoves strips clock/comment annotations and black's move-number
// continuation markers ("12...") from raw move text and collapses doubled
// spaces. Empty input yields an empty string.
func NormalizeMoves(moves string) string {
	if moves == "" {
		return ""
	}
	cleaned := moveAnnotations.ReplaceAllString(moves, "")
	tokens := strings.Split(cleaned, " ")
	kept := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if !strings.Contains(tok, "...") {
			kept = append(kept, tok)
		}
	}
	return strings.ReplaceAll(strings.Join(kept, " "), "  ", " ")
}
