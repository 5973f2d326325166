// Package session keeps one game's record and a cursor into it.
//
// The record is the initial position plus the SAN of every move played.
// The cursor ranges over [-1, Len()-1]; -1 is the initial position and i is
// the position after move i. Moving the cursor rebuilds the current position
// by replaying the SAN moves from the initial position. Making a move while
// the cursor is not at the end discards every later move.
//
// A Session is not safe for concurrent use.
package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hailam/lessonboard/internal/board"
	"github.com/hailam/lessonboard/internal/pgn"
)

// ErrIndexOutOfRange is returned by GoToIndex for a cursor outside the record.
var ErrIndexOutOfRange = errors.New("history index out of range")

// Entry is one (position, SAN) pair of the record. The first entry holds
// the initial position and an empty SAN.
type Entry struct {
	Position board.Position
	SAN      string
}

// Option configures a Session.
type Option func(*Session)

// WithPromotionPolicy sets how MakeMove treats a promotion without a piece.
func WithPromotionPolicy(p board.PromotionPolicy) Option {
	return func(s *Session) {
		s.policy = p
	}
}

// Session is a game record with a navigation cursor.
type Session struct {
	start  board.Position
	moves  []string
	tags   []pgn.Tag
	result string // result token of a loaded game, cleared by new moves
	cursor int

	// path holds the initial position through the position at the cursor.
	path []board.Position

	policy board.PromotionPolicy
}

// New returns a session at the standard starting position.
func New(opts ...Option) *Session {
	s := &Session{}
	for _, opt := range opts {
		opt(s)
	}
	s.replace(board.NewPosition(), nil, nil, "")
	return s
}

// replace swaps in a new record and puts the cursor at its end.
func (s *Session) replace(start board.Position, moves []string, tags []pgn.Tag, result string) {
	s.start = start
	s.moves = moves
	s.tags = tags
	s.result = result
	s.cursor = len(moves) - 1
	s.rebuild()
}

// rebuild replays the moves up to the cursor.
func (s *Session) rebuild() {
	plies, err := pgn.Replay(s.start, s.moves[:s.cursor+1])
	if err != nil {
		// Every stored move was legal when it was recorded.
		panic(fmt.Sprintf("session: corrupt record: %v", err))
	}
	s.path = make([]board.Position, 0, len(plies)+1)
	s.path = append(s.path, s.start)
	for _, p := range plies {
		s.path = append(s.path, p.Position)
	}
}

// Reset starts a new game from the standard position.
func (s *Session) Reset() {
	s.replace(board.NewPosition(), nil, nil, "")
}

// Load replaces the record with a FEN position or a PGN game, detected from
// the text. On error the current record is kept.
func (s *Session) Load(text string) error {
	if looksLikeFEN(text) {
		return s.LoadFEN(text)
	}
	return s.LoadPGN(text)
}

// looksLikeFEN reports whether text has the six-field shape of a FEN record.
func looksLikeFEN(text string) bool {
	fields := strings.Fields(text)
	return len(fields) == 6 && strings.Count(fields[0], "/") == 7 && !strings.Contains(text, "[")
}

// LoadFEN starts a new game from the given position.
func (s *Session) LoadFEN(fen string) error {
	pos, err := board.ParseFEN(fen)
	if err != nil {
		return err
	}
	s.replace(pos, nil, nil, "")
	return nil
}

// LoadPGN replaces the record with the game in text, cursor at the end.
func (s *Session) LoadPGN(text string) error {
	g, err := pgn.Decode(text)
	if err != nil {
		return err
	}
	s.replace(g.Start, g.Moves, g.Tags, g.Result)
	return nil
}

// MakeMove plays a move on the position at the cursor and returns its SAN.
// Moves after the cursor are discarded. An illegal request leaves the
// session unchanged.
func (s *Session) MakeMove(req board.MoveRequest) (string, error) {
	pos := s.Position()
	m, err := pos.ResolveWith(req, s.policy)
	if err != nil {
		return "", err
	}
	return s.play(pos, m)
}

// MakeSAN is MakeMove for a SAN token.
func (s *Session) MakeSAN(san string) (string, error) {
	pos := s.Position()
	m, err := pos.ParseSAN(san)
	if err != nil {
		return "", err
	}
	return s.play(pos, m)
}

func (s *Session) play(pos board.Position, m board.Move) (string, error) {
	next, err := pos.Apply(m)
	if err != nil {
		return "", err
	}
	san := pos.SAN(m)

	keep := s.cursor + 1
	s.moves = append(s.moves[:keep:keep], san)
	s.path = append(s.path[:keep+1:keep+1], next)
	s.cursor++
	s.result = ""
	return san, nil
}

// Mark is a saved record and cursor, for Rollback.
type Mark struct {
	moves  []string
	path   []board.Position
	result string
	cursor int
}

// Mark captures the moves, cursor and result.
func (s *Session) Mark() Mark {
	return Mark{moves: s.moves, path: s.path, result: s.result, cursor: s.cursor}
}

// Rollback restores the state captured by m, undoing every move made
// since. Tags and the initial position are not part of a Mark.
func (s *Session) Rollback(m Mark) {
	s.moves = m.moves
	s.path = m.path
	s.result = m.result
	s.cursor = m.cursor
}

// GoToStart moves the cursor before the first move.
func (s *Session) GoToStart() {
	s.cursor = -1
	s.rebuild()
}

// GoToEnd moves the cursor to the last move.
func (s *Session) GoToEnd() {
	s.cursor = len(s.moves) - 1
	s.rebuild()
}

// GoToPrevious steps back one move. It reports false at the start.
func (s *Session) GoToPrevious() bool {
	if s.cursor < 0 {
		return false
	}
	s.cursor--
	s.rebuild()
	return true
}

// GoToNext steps forward one move. It reports false at the end.
func (s *Session) GoToNext() bool {
	if s.cursor >= len(s.moves)-1 {
		return false
	}
	s.cursor++
	s.rebuild()
	return true
}

// GoToIndex moves the cursor to i, which must lie in [-1, Len()-1].
func (s *Session) GoToIndex(i int) error {
	if i < -1 || i >= len(s.moves) {
		return fmt.Errorf("%w: %d not in [-1, %d]", ErrIndexOutOfRange, i, len(s.moves)-1)
	}
	s.cursor = i
	s.rebuild()
	return nil
}

// Position returns the position at the cursor.
func (s *Session) Position() board.Position {
	return s.path[len(s.path)-1]
}

// Start returns the initial position of the record.
func (s *Session) Start() board.Position {
	return s.start
}

// FEN returns the FEN of the position at the cursor.
func (s *Session) FEN() string {
	return s.Position().FEN()
}

// Status evaluates the position at the cursor against the moves before it.
func (s *Session) Status() board.Status {
	last := len(s.path) - 1
	return board.Evaluate(s.path[last], s.path[:last])
}

// Turn returns the side to move at the cursor.
func (s *Session) Turn() board.Color {
	return s.Position().SideToMove()
}

// InCheck reports whether the side to move at the cursor is in check.
func (s *Session) InCheck() bool {
	return s.Position().InCheck()
}

// LegalMoves returns the legal moves at the cursor.
func (s *Session) LegalMoves() []board.Move {
	return s.Position().LegalMoves()
}

// Targets returns the squares the piece on sq can move to at the cursor.
func (s *Session) Targets(sq board.Square) []board.Square {
	return s.Position().Targets(sq)
}

// Cursor returns the current index, -1 for the initial position.
func (s *Session) Cursor() int {
	return s.cursor
}

// Len returns the number of moves in the record.
func (s *Session) Len() int {
	return len(s.moves)
}

// History returns the SAN of every move in the record.
func (s *Session) History() []string {
	return append([]string(nil), s.moves...)
}

// Record returns the full record: the initial position with an empty SAN,
// then one entry per move.
func (s *Session) Record() []Entry {
	plies, err := pgn.Replay(s.start, s.moves)
	if err != nil {
		panic(fmt.Sprintf("session: corrupt record: %v", err))
	}
	entries := make([]Entry, 0, len(plies)+1)
	entries = append(entries, Entry{Position: s.start})
	for _, p := range plies {
		entries = append(entries, Entry{Position: p.Position, SAN: p.SAN})
	}
	return entries
}

// Tags returns the PGN header of the game.
func (s *Session) Tags() []pgn.Tag {
	return append([]pgn.Tag(nil), s.tags...)
}

// SetTag sets a PGN header tag. SetUp and FEN are rejected with
// pgn.ErrReservedTag; they follow the initial position.
func (s *Session) SetTag(name, value string) error {
	g := pgn.Game{Tags: s.tags}
	if err := g.SetTag(name, value); err != nil {
		return err
	}
	s.tags = g.Tags
	return nil
}

// Game returns the whole record as a PGN game, independent of the cursor.
func (s *Session) Game() *pgn.Game {
	return &pgn.Game{
		Tags:   s.Tags(),
		Start:  s.start,
		Moves:  s.History(),
		Result: s.result,
	}
}

// PGN exports the whole record.
func (s *Session) PGN() string {
	return pgn.Encode(s.Game())
}

// Snapshot is a read-only view of the session for renderers.
type Snapshot struct {
	FEN     string       `json:"fen"`
	Turn    board.Color  `json:"turn"`
	InCheck bool         `json:"inCheck"`
	Status  board.Status `json:"status"`
	History []string     `json:"history"`
	Cursor  int          `json:"cursor"`
}

// Snapshot captures the state at the cursor.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		FEN:     s.FEN(),
		Turn:    s.Turn(),
		InCheck: s.InCheck(),
		Status:  s.Status(),
		History: s.History(),
		Cursor:  s.cursor,
	}
}
