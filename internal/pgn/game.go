// Package pgn reads and writes single chess games in Portable Game Notation.
//
// Decoding keeps the tag pairs in their original order and reduces the
// movetext to the main line: comments, NAGs, glyphs and variations are
// dropped, and every move is replayed so the stored SAN is canonical.
package pgn

import (
	"errors"
	"fmt"

	"github.com/hailam/lessonboard/internal/board"
)

// ErrReservedTag is returned by SetTag for SetUp and FEN, which are derived
// from the initial position.
var ErrReservedTag = errors.New("reserved tag")

// reservedTag reports whether name is written from Game.Start by Encode.
func reservedTag(name string) bool {
	return name == "SetUp" || name == "FEN"
}

// Tag is one PGN tag pair.
type Tag struct {
	Name  string
	Value string
}

// Game is a decoded game: header tags, the initial position and the main
// line as canonical SAN.
type Game struct {
	// Tags holds the header in file order. SetUp and FEN are not kept here;
	// they are derived from Start when encoding.
	Tags   []Tag
	Start  board.Position
	Moves  []string
	Result string // terminating token; empty means derive it when encoding
}

// Tag returns the value of the named tag.
func (g *Game) Tag(name string) (string, bool) {
	for _, t := range g.Tags {
		if t.Name == name {
			return t.Value, true
		}
	}
	return "", false
}

// SetTag replaces the named tag, or appends it when absent. SetUp and FEN
// are rejected with ErrReservedTag; set Start instead.
func (g *Game) SetTag(name, value string) error {
	if reservedTag(name) {
		return fmt.Errorf("%w: %s is taken from the initial position", ErrReservedTag, name)
	}
	for i := range g.Tags {
		if g.Tags[i].Name == name {
			g.Tags[i].Value = value
			return nil
		}
	}
	g.Tags = append(g.Tags, Tag{Name: name, Value: value})
	return nil
}

// Ply is one replayed half-move.
type Ply struct {
	Move     board.Move
	SAN      string         // canonical SAN, with check suffix
	Position board.Position // position after the move
}

// Replay plays SAN moves from start. It fails with a *PlyError naming the
// first move that does not resolve to exactly one legal move.
func Replay(start board.Position, moves []string) ([]Ply, error) {
	plies := make([]Ply, 0, len(moves))
	pos := start
	for i, san := range moves {
		m, err := pos.ParseSAN(san)
		if err != nil {
			return nil, &PlyError{Ply: i + 1, Token: san, Err: err}
		}
		next, err := pos.Apply(m)
		if err != nil {
			return nil, &PlyError{Ply: i + 1, Token: san, Err: err}
		}
		plies = append(plies, Ply{Move: m, SAN: pos.SAN(m), Position: next})
		pos = next
	}
	return plies, nil
}

// Positions returns the initial position followed by the position after
// each move.
func (g *Game) Positions() ([]board.Position, error) {
	plies, err := Replay(g.Start, g.Moves)
	if err != nil {
		return nil, err
	}
	positions := make([]board.Position, 0, len(plies)+1)
	positions = append(positions, g.Start)
	for _, p := range plies {
		positions = append(positions, p.Position)
	}
	return positions, nil
}

// Status evaluates the final position of the game, repetition included.
func (g *Game) Status() (board.Status, error) {
	positions, err := g.Positions()
	if err != nil {
		return board.Playing, err
	}
	last := len(positions) - 1
	return board.Evaluate(positions[last], positions[:last]), nil
}

// ResultToken returns the token that terminates the movetext: Result if
// set, else a valid Result tag, else the token implied by the final status.
func (g *Game) ResultToken() string {
	if isResult(g.Result) {
		return g.Result
	}
	if v, ok := g.Tag("Result"); ok && isResult(v) {
		return v
	}
	positions, err := g.Positions()
	if err != nil {
		return "*"
	}
	last := len(positions) - 1
	status := board.Evaluate(positions[last], positions[:last])
	return board.Result(status, positions[last].SideToMove())
}

// String returns the game as PGN text.
func (g *Game) String() string {
	return Encode(g)
}
