package board

// Status classifies a position within a game.
type Status uint8

const (
	Playing Status = iota
	Check
	Checkmate
	Stalemate
	DrawByFiftyMove
	DrawByInsufficientMaterial
	DrawByRepetition
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case Playing:
		return "playing"
	case Check:
		return "check"
	case Checkmate:
		return "checkmate"
	case Stalemate:
		return "stalemate"
	case DrawByFiftyMove:
		return "draw (fifty-move rule)"
	case DrawByInsufficientMaterial:
		return "draw (insufficient material)"
	case DrawByRepetition:
		return "draw (threefold repetition)"
	default:
		return "unknown"
	}
}

// IsTerminal returns true if the game is over.
func (s Status) IsTerminal() bool {
	return s >= Checkmate
}

// IsDraw returns true for stalemate and every draw rule.
func (s Status) IsDraw() bool {
	return s >= Stalemate
}

// Result returns the PGN result token for a status reached with toMove to
// play: "1-0", "0-1", "1/2-1/2", or "*" while the game is still going.
func Result(s Status, toMove Color) string {
	switch {
	case s == Checkmate && toMove == White:
		return "0-1"
	case s == Checkmate:
		return "1-0"
	case s.IsDraw():
		return "1/2-1/2"
	default:
		return "*"
	}
}

// Signature identifies a position for repetition purposes: placement,
// castling rights, side to move and en passant target. Clocks are excluded.
type Signature struct {
	board     [64]Piece
	side      Color
	castling  CastlingRights
	enPassant Square
}

// Signature returns the repetition key of the position.
func (p Position) Signature() Signature {
	return Signature{
		board:     p.board,
		side:      p.sideToMove,
		castling:  p.castling,
		enPassant: p.enPassant,
	}
}

// RepetitionCount returns how many times p's signature has occurred,
// counting p itself and every position in history (the positions that
// preceded p in the game).
func RepetitionCount(p Position, history []Position) int {
	sig := p.Signature()
	n := 1
	for _, h := range history {
		if h.Signature() == sig {
			n++
		}
	}
	return n
}

// Evaluate classifies p given the positions that preceded it in the game.
// Checkmate and stalemate take precedence over the draw rules, and the draw
// rules over a plain check.
func Evaluate(p Position, history []Position) Status {
	inCheck := p.InCheck()

	if !p.HasLegalMoves() {
		if inCheck {
			return Checkmate
		}
		return Stalemate
	}
	if p.halfMoveClock >= 100 {
		return DrawByFiftyMove
	}
	if p.InsufficientMaterial() {
		return DrawByInsufficientMaterial
	}
	if RepetitionCount(p, history) >= 3 {
		return DrawByRepetition
	}
	if inCheck {
		return Check
	}
	return Playing
}

// Status classifies p on its own, without repetition history.
func (p Position) Status() Status {
	return Evaluate(p, nil)
}

// InsufficientMaterial returns true if neither side can possibly mate.
// Recognised: K v K, K+minor v K, and positions where the only non-king
// material is bishops that all stand on squares of one color (this covers
// K+B v K+B with same-colored bishops). K+N v K+N and K+N+N v K are not
// treated as draws.
func (p Position) InsufficientMaterial() bool {
	minors := 0
	knights := 0
	var bishops Bitboard

	for sq := A1; sq <= H8; sq++ {
		switch p.board[sq].Type() {
		case Pawn, Rook, Queen:
			return false
		case Knight:
			knights++
			minors++
		case Bishop:
			bishops |= SquareBB(sq)
			minors++
		}
	}

	if minors <= 1 {
		return true
	}
	return knights == 0 && (bishops&LightSquares == 0 || bishops&DarkSquares == 0)
}
