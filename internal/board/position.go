package board

import (
	"fmt"
	"strings"
)

// CastlingRights represents the available castling options.
type CastlingRights uint8

const (
	WhiteKingSideCastle  CastlingRights = 1 << iota // K
	WhiteQueenSideCastle                            // Q
	BlackKingSideCastle                             // k
	BlackQueenSideCastle                            // q
	NoCastling           CastlingRights = 0
	AllCastling          CastlingRights = WhiteKingSideCastle | WhiteQueenSideCastle | BlackKingSideCastle | BlackQueenSideCastle
)

// String returns the FEN castling rights string.
func (cr CastlingRights) String() string {
	if cr == NoCastling {
		return "-"
	}
	s := ""
	if cr&WhiteKingSideCastle != 0 {
		s += "K"
	}
	if cr&WhiteQueenSideCastle != 0 {
		s += "Q"
	}
	if cr&BlackKingSideCastle != 0 {
		s += "k"
	}
	if cr&BlackQueenSideCastle != 0 {
		s += "q"
	}
	return s
}

// CanCastle returns true if the given side holds the right to castle in the
// given direction.
func (cr CastlingRights) CanCastle(c Color, kingSide bool) bool {
	return cr&castleRight(c, kingSide) != 0
}

func castleRight(c Color, kingSide bool) CastlingRights {
	switch {
	case c == White && kingSide:
		return WhiteKingSideCastle
	case c == White:
		return WhiteQueenSideCastle
	case kingSide:
		return BlackKingSideCastle
	default:
		return BlackQueenSideCastle
	}
}

// rightsLostFrom maps a square to the castling rights that disappear once a
// piece moves from or to it (king and rook home squares).
var rightsLostFrom = func() [64]CastlingRights {
	var t [64]CastlingRights
	t[E1] = WhiteKingSideCastle | WhiteQueenSideCastle
	t[H1] = WhiteKingSideCastle
	t[A1] = WhiteQueenSideCastle
	t[E8] = BlackKingSideCastle | BlackQueenSideCastle
	t[H8] = BlackKingSideCastle
	t[A8] = BlackQueenSideCastle
	return t
}()

// Position is a complete chess position. It is an immutable value: every
// move produces a new Position, and Positions compare equal with == exactly
// when all six FEN fields are equal.
//
// The zero Position is not a valid position; use NewPosition or ParseFEN.
type Position struct {
	board          [64]Piece
	sideToMove     Color
	castling       CastlingRights
	enPassant      Square // target square for en passant, NoSquare if none
	halfMoveClock  int    // plies since last pawn move or capture (50-move rule)
	fullMoveNumber int    // starts at 1, incremented after Black's move
}

// NewPosition returns the standard starting position.
func NewPosition() Position {
	backRank := [8]PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

	p := emptyPosition()
	for file := 0; file < 8; file++ {
		p.board[NewSquare(file, 0)] = NewPiece(backRank[file], White)
		p.board[NewSquare(file, 1)] = WhitePawn
		p.board[NewSquare(file, 6)] = BlackPawn
		p.board[NewSquare(file, 7)] = NewPiece(backRank[file], Black)
	}
	p.castling = AllCastling
	return p
}

func emptyPosition() Position {
	return Position{
		sideToMove:     White,
		enPassant:      NoSquare,
		fullMoveNumber: 1,
	}
}

// PieceAt returns the piece at the given square, or NoPiece if empty.
func (p Position) PieceAt(sq Square) Piece {
	if sq >= NoSquare {
		return NoPiece
	}
	return p.board[sq]
}

// IsEmpty returns true if the square is empty.
func (p Position) IsEmpty(sq Square) bool {
	return p.PieceAt(sq) == NoPiece
}

// SideToMove returns the color to move.
func (p Position) SideToMove() Color { return p.sideToMove }

// CastlingRights returns the remaining castling rights.
func (p Position) CastlingRights() CastlingRights { return p.castling }

// EnPassant returns the en passant target square, or NoSquare.
func (p Position) EnPassant() Square { return p.enPassant }

// HalfMoveClock returns the number of plies since the last pawn move or capture.
func (p Position) HalfMoveClock() int { return p.halfMoveClock }

// FullMoveNumber returns the full move counter.
func (p Position) FullMoveNumber() int { return p.fullMoveNumber }

// Pieces returns the set of squares holding the given piece.
func (p Position) Pieces(pt PieceType, c Color) Bitboard {
	target := NewPiece(pt, c)
	var bb Bitboard
	for sq := A1; sq <= H8; sq++ {
		if p.board[sq] == target {
			bb |= SquareBB(sq)
		}
	}
	return bb
}

// Occupied returns the set of squares holding a piece of the given color.
func (p Position) Occupied(c Color) Bitboard {
	var bb Bitboard
	for sq := A1; sq <= H8; sq++ {
		if pc := p.board[sq]; pc != NoPiece && pc.Color() == c {
			bb |= SquareBB(sq)
		}
	}
	return bb
}

// KingSquare returns the square of the given color's king, or NoSquare.
func (p Position) KingSquare(c Color) Square {
	king := NewPiece(King, c)
	for sq := A1; sq <= H8; sq++ {
		if p.board[sq] == king {
			return sq
		}
	}
	return NoSquare
}

// Validate checks the board invariants. It returns an error wrapping
// ErrMalformedPosition when one is violated.
func (p Position) Validate() error {
	for c := White; c <= Black; c++ {
		if n := p.Pieces(King, c).PopCount(); n != 1 {
			return fmt.Errorf("%w: %s must have exactly one king, has %d", ErrMalformedPosition, c, n)
		}
	}

	if (p.Pieces(Pawn, White)|p.Pieces(Pawn, Black))&(Rank1|Rank8) != 0 {
		return fmt.Errorf("%w: pawns cannot be on rank 1 or 8", ErrMalformedPosition)
	}

	if p.halfMoveClock < 0 {
		return fmt.Errorf("%w: negative half-move clock %d", ErrMalformedPosition, p.halfMoveClock)
	}
	if p.fullMoveNumber < 1 {
		return fmt.Errorf("%w: full-move number %d must be at least 1", ErrMalformedPosition, p.fullMoveNumber)
	}

	if err := p.validateEnPassant(); err != nil {
		return err
	}
	if err := p.validateCastling(); err != nil {
		return err
	}

	them := p.sideToMove.Other()
	if p.IsSquareAttacked(p.KingSquare(them), p.sideToMove) {
		return fmt.Errorf("%w: %s king is in check but it is %s to move", ErrMalformedPosition, them, p.sideToMove)
	}

	return nil
}

// validateEnPassant checks that the target sits behind a pawn that could
// just have made a double push.
func (p Position) validateEnPassant() error {
	ep := p.enPassant
	if ep == NoSquare {
		return nil
	}
	if ep > NoSquare {
		return fmt.Errorf("%w: en passant square out of range", ErrMalformedPosition)
	}

	mover := p.sideToMove.Other()
	if ep.RelativeRank(mover) != 2 {
		return fmt.Errorf("%w: en passant square %s on wrong rank for %s to move", ErrMalformedPosition, ep, p.sideToMove)
	}

	dir := pawnDirection(mover)
	pawnSq := ep.offset(0, dir)
	originSq := ep.offset(0, -dir)
	if !p.IsEmpty(ep) || !p.IsEmpty(originSq) || p.PieceAt(pawnSq) != NewPiece(Pawn, mover) {
		return fmt.Errorf("%w: en passant square %s does not follow a double pawn push", ErrMalformedPosition, ep)
	}
	return nil
}

// validateCastling checks each castling right against the home squares.
func (p Position) validateCastling() error {
	checks := []struct {
		right      CastlingRights
		king, rook Square
		color      Color
	}{
		{WhiteKingSideCastle, E1, H1, White},
		{WhiteQueenSideCastle, E1, A1, White},
		{BlackKingSideCastle, E8, H8, Black},
		{BlackQueenSideCastle, E8, A8, Black},
	}

	for _, c := range checks {
		if p.castling&c.right == 0 {
			continue
		}
		if p.board[c.king] != NewPiece(King, c.color) || p.board[c.rook] != NewPiece(Rook, c.color) {
			return fmt.Errorf("%w: castling right %s without king and rook on their home squares", ErrMalformedPosition, c.right)
		}
	}
	return nil
}

// String returns a visual representation of the position.
func (p Position) String() string {
	var sb strings.Builder
	sb.WriteByte('\n')
	for rank := 7; rank >= 0; rank-- {
		fmt.Fprintf(&sb, "%d  ", rank+1)
		for file := 0; file < 8; file++ {
			piece := p.PieceAt(NewSquare(file, rank))
			if piece == NoPiece {
				sb.WriteString(". ")
			} else {
				sb.WriteString(piece.String() + " ")
			}
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("\n   a b c d e f g h\n\n")
	fmt.Fprintf(&sb, "Side to move: %s\n", p.sideToMove)
	fmt.Fprintf(&sb, "Castling: %s\n", p.castling)
	fmt.Fprintf(&sb, "En passant: %s\n", p.enPassant)
	fmt.Fprintf(&sb, "Half-move clock: %d\n", p.halfMoveClock)
	fmt.Fprintf(&sb, "Full move: %d\n", p.fullMoveNumber)
	return sb.String()
}

// pawnDirection returns +1 for White (toward rank 8) and -1 for Black.
func pawnDirection(c Color) int {
	if c == White {
		return 1
	}
	return -1
}
