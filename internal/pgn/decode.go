package pgn

import (
	"github.com/hailam/lessonboard/internal/board"
)

// Decode reads the first game in text. Anything after the game's result
// token is ignored.
//
// The FEN tag sets the initial position unless SetUp is present with a
// value other than "1". Errors are *PlyError values wrapping ErrInvalidPGN.
func Decode(text string) (*Game, error) {
	tokens, err := newLexer(text).all()
	if err != nil {
		return nil, err
	}

	var (
		tags   []Tag
		moves  []string
		result string
	)
	for _, tok := range tokens {
		switch tok.typ {
		case tagToken:
			if len(moves) > 0 {
				return nil, plyErrorf(len(moves)+1, "["+tok.text, "tag after movetext")
			}
			tags = append(tags, Tag{Name: tok.text, Value: tok.value})
		case moveToken:
			moves = append(moves, tok.text)
		case resultToken:
			result = tok.text
		}
	}
	if len(tags) == 0 && len(moves) == 0 && result == "" {
		return nil, plyErrorf(0, "", "no game found")
	}

	start, tags, err := startPosition(tags)
	if err != nil {
		return nil, err
	}

	plies, err := Replay(start, moves)
	if err != nil {
		return nil, err
	}

	g := &Game{Tags: tags, Start: start, Moves: make([]string, len(plies))}
	for i, p := range plies {
		g.Moves[i] = p.SAN
	}
	g.Result = result
	if g.Result == "" {
		g.Result = g.ResultToken()
	}
	return g, nil
}

// startPosition resolves the SetUp and FEN tags and removes them from tags.
func startPosition(tags []Tag) (board.Position, []Tag, error) {
	var (
		fen      string
		hasFEN   bool
		setUp    = "1"
		filtered = tags[:0:0]
	)
	for _, t := range tags {
		switch t.Name {
		case "FEN":
			fen, hasFEN = t.Value, true
		case "SetUp":
			setUp = t.Value
		default:
			filtered = append(filtered, t)
		}
	}

	if !hasFEN || setUp != "1" {
		return board.NewPosition(), filtered, nil
	}
	pos, err := board.ParseFEN(fen)
	if err != nil {
		return board.Position{}, nil, &PlyError{Token: fen, Err: err}
	}
	return pos, filtered, nil
}
