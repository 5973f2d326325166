package pgn

import (
	"strconv"
	"strings"

	"github.com/hailam/lessonboard/internal/board"
)

// lineWidth is the maximum movetext line length.
const lineWidth = 80

// Encode writes g as PGN: tag pairs, a blank line, numbered movetext
// wrapped at 80 columns, and the result token. A non-standard initial
// position is written as SetUp and FEN tags; any SetUp or FEN entry in
// g.Tags is ignored.
func Encode(g *Game) string {
	var sb strings.Builder

	tags := make([]Tag, 0, len(g.Tags)+2)
	for _, t := range g.Tags {
		if !reservedTag(t.Name) {
			tags = append(tags, t)
		}
	}
	if g.Start != board.NewPosition() {
		tags = append(tags,
			Tag{Name: "SetUp", Value: "1"},
			Tag{Name: "FEN", Value: g.Start.FEN()},
		)
	}
	for _, t := range tags {
		sb.WriteByte('[')
		sb.WriteString(t.Name)
		sb.WriteString(` "`)
		sb.WriteString(escapeTagValue(t.Value))
		sb.WriteString("\"]\n")
	}
	if len(tags) > 0 {
		sb.WriteByte('\n')
	}

	units := movetext(g.Start, g.Moves)
	units = append(units, g.ResultToken())

	lineLen := 0
	for _, u := range units {
		switch {
		case lineLen == 0:
		case lineLen+1+len(u) > lineWidth:
			sb.WriteByte('\n')
			lineLen = 0
		default:
			sb.WriteByte(' ')
			lineLen++
		}
		sb.WriteString(u)
		lineLen += len(u)
	}
	sb.WriteByte('\n')

	return sb.String()
}

// movetext groups moves into wrap units, keeping each move number with the
// move it belongs to: "1. e4", "e5", or "1... e5" for a Black first move.
func movetext(start board.Position, moves []string) []string {
	units := make([]string, 0, len(moves))
	num := start.FullMoveNumber()
	side := start.SideToMove()

	for i, san := range moves {
		switch {
		case side == board.White:
			units = append(units, strconv.Itoa(num)+". "+san)
		case i == 0:
			units = append(units, strconv.Itoa(num)+"... "+san)
		default:
			units = append(units, san)
		}
		if side == board.Black {
			num++
		}
		side = side.Other()
	}
	return units
}

func escapeTagValue(v string) string {
	if !strings.ContainsAny(v, `\"`) {
		return v
	}
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(v)
}
