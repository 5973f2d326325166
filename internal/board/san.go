package board

import (
	"fmt"
	"strings"
)

// SAN converts a legal move of p to Standard Algebraic Notation, including
// the check ("+") or mate ("#") suffix.
func (p Position) SAN(m Move) string {
	var sb strings.Builder

	switch {
	case m.Flags&FlagCastleKingSide != 0:
		sb.WriteString("O-O")
	case m.Flags&FlagCastleQueenSide != 0:
		sb.WriteString("O-O-O")
	default:
		pt := p.PieceAt(m.From).Type()
		if pt != Pawn {
			sb.WriteByte(pt.Letter())
			sb.WriteString(p.disambiguation(m, pt))
		}
		if m.IsCapture() {
			if pt == Pawn {
				sb.WriteByte('a' + byte(m.From.File()))
			}
			sb.WriteByte('x')
		}
		sb.WriteString(m.To.String())
		if m.IsPromotion() {
			sb.WriteByte('=')
			sb.WriteByte(m.Promotion.Letter())
		}
	}

	next := p.apply(m)
	if next.InCheck() {
		if next.HasLegalMoves() {
			sb.WriteByte('+')
		} else {
			sb.WriteByte('#')
		}
	}
	return sb.String()
}

// disambiguation returns the origin file, rank or square needed to tell m
// apart from other legal moves of the same piece type to the same square.
func (p Position) disambiguation(m Move, pt PieceType) string {
	ambiguous, sameFile, sameRank := false, false, false
	for _, other := range p.LegalMoves() {
		if other.To != m.To || other.From == m.From || p.board[other.From].Type() != pt {
			continue
		}
		ambiguous = true
		if other.From.File() == m.From.File() {
			sameFile = true
		}
		if other.From.Rank() == m.From.Rank() {
			sameRank = true
		}
	}

	switch {
	case !ambiguous:
		return ""
	case !sameFile:
		return string(rune('a' + m.From.File()))
	case !sameRank:
		return string(rune('1' + m.From.Rank()))
	default:
		return m.From.String()
	}
}

// ParseSAN resolves a SAN token against the legal moves of p. Trailing
// "+", "#", "!" and "?" are ignored, "0-0" is accepted for "O-O", and
// over-specified origins ("Ngf3") are tolerated. A token that matches no
// legal move, or more than one, returns ErrAmbiguousOrIllegalSAN.
func (p Position) ParseSAN(san string) (Move, error) {
	s := strings.TrimRight(strings.TrimSpace(san), "+#!?")
	if s == "" {
		return Move{}, fmt.Errorf("%w: empty move", ErrAmbiguousOrIllegalSAN)
	}

	switch s {
	case "O-O", "0-0":
		return p.matchSAN(san, func(m Move) bool { return m.Flags&FlagCastleKingSide != 0 })
	case "O-O-O", "0-0-0":
		return p.matchSAN(san, func(m Move) bool { return m.Flags&FlagCastleQueenSide != 0 })
	}

	promo := NoPieceType
	if n := len(s); n >= 2 && strings.IndexByte("NBRQ", s[n-1]) >= 0 {
		if s[n-2] == '=' {
			promo = PieceTypeFromLetter(s[n-1])
			s = s[:n-2]
		} else if s[n-2] >= '1' && s[n-2] <= '8' {
			promo = PieceTypeFromLetter(s[n-1])
			s = s[:n-1]
		}
	}

	pt := Pawn
	if s == "" {
		return Move{}, fmt.Errorf("%w: %q", ErrAmbiguousOrIllegalSAN, san)
	}
	if strings.IndexByte("NBRQK", s[0]) >= 0 {
		pt = PieceTypeFromLetter(s[0])
		s = s[1:]
	}

	if len(s) < 2 {
		return Move{}, fmt.Errorf("%w: %q", ErrAmbiguousOrIllegalSAN, san)
	}
	to, err := ParseSquare(s[len(s)-2:])
	if err != nil {
		return Move{}, fmt.Errorf("%w: %q", ErrAmbiguousOrIllegalSAN, san)
	}
	s = s[:len(s)-2]

	capture := strings.HasSuffix(s, "x")
	s = strings.TrimSuffix(s, "x")

	fromFile, fromRank := -1, -1
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c >= 'a' && c <= 'h' && fromFile < 0 && fromRank < 0:
			fromFile = int(c - 'a')
		case c >= '1' && c <= '8' && fromRank < 0:
			fromRank = int(c - '1')
		default:
			return Move{}, fmt.Errorf("%w: %q", ErrAmbiguousOrIllegalSAN, san)
		}
	}

	return p.matchSAN(san, func(m Move) bool {
		switch {
		case m.To != to || m.IsCastling():
			return false
		case p.board[m.From].Type() != pt:
			return false
		case m.Promotion != promo:
			return false
		case capture && !m.IsCapture():
			return false
		case fromFile >= 0 && m.From.File() != fromFile:
			return false
		case fromRank >= 0 && m.From.Rank() != fromRank:
			return false
		}
		return true
	})
}

// matchSAN returns the single legal move accepted by match.
func (p Position) matchSAN(san string, match func(Move) bool) (Move, error) {
	var found []Move
	for _, m := range p.LegalMoves() {
		if match(m) {
			found = append(found, m)
		}
	}
	switch len(found) {
	case 1:
		return found[0], nil
	case 0:
		return Move{}, fmt.Errorf("%w: %q is not legal in %s", ErrAmbiguousOrIllegalSAN, san, p.FEN())
	default:
		return Move{}, fmt.Errorf("%w: %q matches %d moves", ErrAmbiguousOrIllegalSAN, san, len(found))
	}
}
