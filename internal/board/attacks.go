package board

// Pre-computed attack tables for non-sliding pieces
var (
	knightAttacks [64]Bitboard
	kingAttacks   [64]Bitboard
	pawnAttacks   [2][64]Bitboard // [Color][Square]

	// rays holds, per square, the squares walked in each direction up to
	// the board edge. Directions 0-3 are orthogonal, 4-7 diagonal.
	rays [64][8][]Square
)

type direction struct {
	df, dr int
}

var directions = [8]direction{
	{0, 1}, {0, -1}, {1, 0}, {-1, 0}, // rook
	{1, 1}, {1, -1}, {-1, 1}, {-1, -1}, // bishop
}

const (
	firstOrthogonal = 0
	firstDiagonal   = 4
)

func init() {
	initKnightAttacks()
	initKingAttacks()
	initPawnAttacks()
	initRays()
}

func initKnightAttacks() {
	for sq := A1; sq <= H8; sq++ {
		bb := SquareBB(sq)

		attacks := Empty
		attacks |= (bb << 17) & NotFileA  // NNE
		attacks |= (bb << 15) & NotFileH  // NNW
		attacks |= (bb >> 17) & NotFileH  // SSW
		attacks |= (bb >> 15) & NotFileA  // SSE
		attacks |= (bb << 10) & NotFileAB // ENE
		attacks |= (bb << 6) & NotFileGH  // WNW
		attacks |= (bb >> 10) & NotFileGH // WSW
		attacks |= (bb >> 6) & NotFileAB  // ESE

		knightAttacks[sq] = attacks
	}
}

func initKingAttacks() {
	for sq := A1; sq <= H8; sq++ {
		bb := SquareBB(sq)

		attacks := bb.North() | bb.South()
		attacks |= bb.East() | bb.West()
		attacks |= bb.NorthEast() | bb.NorthWest()
		attacks |= bb.SouthEast() | bb.SouthWest()

		kingAttacks[sq] = attacks
	}
}

func initPawnAttacks() {
	for sq := A1; sq <= H8; sq++ {
		bb := SquareBB(sq)
		pawnAttacks[White][sq] = bb.NorthEast() | bb.NorthWest()
		pawnAttacks[Black][sq] = bb.SouthEast() | bb.SouthWest()
	}
}

func initRays() {
	for sq := A1; sq <= H8; sq++ {
		for i, d := range directions {
			for to := sq.offset(d.df, d.dr); to != NoSquare; to = to.offset(d.df, d.dr) {
				rays[sq][i] = append(rays[sq][i], to)
			}
		}
	}
}

// IsSquareAttacked returns true if any piece of color by attacks sq.
// Pins are ignored: a pinned piece still attacks.
func (p Position) IsSquareAttacked(sq Square, by Color) bool {
	if sq >= NoSquare {
		return false
	}

	// A pawn of color by attacks sq from the squares a pawn of the other
	// color would attack from sq.
	if p.anyPiece(pawnAttacks[by.Other()][sq], NewPiece(Pawn, by)) {
		return true
	}
	if p.anyPiece(knightAttacks[sq], NewPiece(Knight, by)) {
		return true
	}
	if p.anyPiece(kingAttacks[sq], NewPiece(King, by)) {
		return true
	}

	queen := NewPiece(Queen, by)
	for i := range directions {
		slider := NewPiece(Rook, by)
		if i >= firstDiagonal {
			slider = NewPiece(Bishop, by)
		}
		for _, to := range rays[sq][i] {
			pc := p.board[to]
			if pc == NoPiece {
				continue
			}
			if pc == slider || pc == queen {
				return true
			}
			break
		}
	}

	return false
}

// InCheck returns true if the side to move is in check.
func (p Position) InCheck() bool {
	return p.IsSquareAttacked(p.KingSquare(p.sideToMove), p.sideToMove.Other())
}

// anyPiece reports whether any square in bb holds the given piece.
func (p Position) anyPiece(bb Bitboard, piece Piece) bool {
	for bb != 0 {
		if p.board[bb.PopLSB()] == piece {
			return true
		}
	}
	return false
}
