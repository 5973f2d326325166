package board

import (
	"fmt"
	"strconv"
	"strings"
)

// StartFEN is the FEN string for the starting position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// ParseFEN parses a six-field FEN string into a validated Position.
// Syntax errors wrap ErrMalformedFEN; invariant violations wrap
// ErrMalformedPosition.
func ParseFEN(fen string) (Position, error) {
	parts := strings.Fields(fen)
	if len(parts) != 6 {
		return Position{}, fmt.Errorf("%w: need 6 fields, got %d", ErrMalformedFEN, len(parts))
	}

	pos := emptyPosition()

	if err := parsePiecePlacement(&pos, parts[0]); err != nil {
		return Position{}, err
	}

	switch parts[1] {
	case "w":
		pos.sideToMove = White
	case "b":
		pos.sideToMove = Black
	default:
		return Position{}, fmt.Errorf("%w: invalid side to move %q", ErrMalformedFEN, parts[1])
	}

	cr, err := parseCastlingRights(parts[2])
	if err != nil {
		return Position{}, err
	}
	pos.castling = cr

	if parts[3] != "-" {
		sq, err := ParseSquare(parts[3])
		if err != nil || (sq.Rank() != 2 && sq.Rank() != 5) {
			return Position{}, fmt.Errorf("%w: invalid en passant square %q", ErrMalformedFEN, parts[3])
		}
		pos.enPassant = sq
	}

	if pos.halfMoveClock, err = parseCounter(parts[4], "half-move clock"); err != nil {
		return Position{}, err
	}
	if pos.fullMoveNumber, err = parseCounter(parts[5], "full-move number"); err != nil {
		return Position{}, err
	}

	if err := pos.Validate(); err != nil {
		return Position{}, err
	}
	return pos, nil
}

// parsePiecePlacement parses the piece placement field of a FEN string.
func parsePiecePlacement(pos *Position, placement string) error {
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return fmt.Errorf("%w: need 8 ranks, got %d", ErrMalformedFEN, len(ranks))
	}

	for i, rankStr := range ranks {
		rank := 7 - i // FEN starts from rank 8
		file := 0
		prevDigit := false

		for j := 0; j < len(rankStr); j++ {
			c := rankStr[j]
			if file > 7 {
				return fmt.Errorf("%w: too many squares in rank %d", ErrMalformedFEN, rank+1)
			}

			if c >= '1' && c <= '8' {
				if prevDigit {
					return fmt.Errorf("%w: consecutive digits in rank %d", ErrMalformedFEN, rank+1)
				}
				file += int(c - '0')
				prevDigit = true
				continue
			}

			piece := PieceFromChar(c)
			if piece == NoPiece {
				return fmt.Errorf("%w: invalid piece character %q", ErrMalformedFEN, c)
			}
			pos.board[NewSquare(file, rank)] = piece
			file++
			prevDigit = false
		}

		if file != 8 {
			return fmt.Errorf("%w: rank %d covers %d files", ErrMalformedFEN, rank+1, file)
		}
	}

	return nil
}

// parseCastlingRights parses the castling field, which must be "-" or a
// subsequence of "KQkq" in that order.
func parseCastlingRights(castling string) (CastlingRights, error) {
	if castling == "-" {
		return NoCastling, nil
	}

	var cr CastlingRights
	order := "KQkq"
	next := 0
	for i := 0; i < len(castling); i++ {
		idx := strings.IndexByte(order, castling[i])
		if idx < next {
			return NoCastling, fmt.Errorf("%w: invalid castling field %q", ErrMalformedFEN, castling)
		}
		cr |= CastlingRights(1) << idx
		next = idx + 1
	}
	if cr == NoCastling {
		return NoCastling, fmt.Errorf("%w: empty castling field", ErrMalformedFEN)
	}
	return cr, nil
}

// parseCounter parses a non-negative decimal counter without sign or
// leading zeros, so that encoding reproduces the input byte for byte.
func parseCounter(s, name string) (int, error) {
	if s == "" || (len(s) > 1 && s[0] == '0') {
		return 0, fmt.Errorf("%w: invalid %s %q", ErrMalformedFEN, name, s)
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, fmt.Errorf("%w: invalid %s %q", ErrMalformedFEN, name, s)
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s %q", ErrMalformedFEN, name, s)
	}
	return n, nil
}

// FEN returns the FEN representation of the position.
func (p Position) FEN() string {
	var sb strings.Builder

	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			piece := p.board[NewSquare(file, rank)]
			if piece == NoPiece {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			sb.WriteString(piece.String())
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}

	sb.WriteByte(' ')
	if p.sideToMove == White {
		sb.WriteByte('w')
	} else {
		sb.WriteByte('b')
	}

	sb.WriteByte(' ')
	sb.WriteString(p.castling.String())

	sb.WriteByte(' ')
	sb.WriteString(p.enPassant.String())

	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(p.halfMoveClock))
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(p.fullMoveNumber))

	return sb.String()
}
