package board

import "fmt"

// MoveFlag records properties of a move derived by the move generator.
type MoveFlag uint8

// Move flags
const (
	FlagCapture MoveFlag = 1 << iota
	FlagEnPassant
	FlagCastleKingSide
	FlagCastleQueenSide
	FlagDoublePush
)

// Move is a fully resolved legal move. Flags are computed by the generator;
// callers describe the move they want with a MoveRequest.
type Move struct {
	From      Square
	To        Square
	Promotion PieceType // NoPieceType unless the move promotes
	Flags     MoveFlag
}

// IsCapture returns true if this move captures a piece (en passant included).
func (m Move) IsCapture() bool {
	return m.Flags&FlagCapture != 0
}

// IsEnPassant returns true if this is an en passant capture.
func (m Move) IsEnPassant() bool {
	return m.Flags&FlagEnPassant != 0
}

// IsCastling returns true if this is a castling move.
func (m Move) IsCastling() bool {
	return m.Flags&(FlagCastleKingSide|FlagCastleQueenSide) != 0
}

// IsPromotion returns true if this is a promotion move.
func (m Move) IsPromotion() bool {
	return m.Promotion != NoPieceType
}

// Request returns the caller-side description of the move.
func (m Move) Request() MoveRequest {
	return MoveRequest{From: m.From, To: m.To, Promotion: m.Promotion}
}

// String returns the UCI form of the move (e.g., "e2e4", "e7e8q").
func (m Move) String() string {
	return m.Request().String()
}

// MoveRequest is what a caller supplies to make a move: origin, destination
// and an optional promotion kind.
type MoveRequest struct {
	From      Square
	To        Square
	Promotion PieceType
}

// String returns the UCI form of the request.
func (r MoveRequest) String() string {
	s := r.From.String() + r.To.String()
	if r.Promotion != NoPieceType {
		s += string(r.Promotion.Char())
	}
	return s
}

// ParseMoveRequest parses a UCI long algebraic move ("e2e4", "e7e8q").
func ParseMoveRequest(s string) (MoveRequest, error) {
	if len(s) != 4 && len(s) != 5 {
		return MoveRequest{}, fmt.Errorf("invalid move string: %q", s)
	}

	from, err := ParseSquare(s[0:2])
	if err != nil {
		return MoveRequest{}, err
	}
	to, err := ParseSquare(s[2:4])
	if err != nil {
		return MoveRequest{}, err
	}

	req := MoveRequest{From: from, To: to}
	if len(s) == 5 {
		switch promo := PieceTypeFromLetter(s[4]); promo {
		case Knight, Bishop, Rook, Queen:
			req.Promotion = promo
		default:
			return MoveRequest{}, fmt.Errorf("invalid promotion piece: %c", s[4])
		}
	}
	return req, nil
}
