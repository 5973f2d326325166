package board

import "fmt"

// PromotionPolicy decides what happens when a promotion move is requested
// without a promotion piece.
type PromotionPolicy uint8

const (
	// PromoteToQueen promotes to a queen when no piece is given.
	PromoteToQueen PromotionPolicy = iota
	// RequirePromotion rejects the request with ErrAmbiguousPromotion.
	RequirePromotion
)

// String returns the policy name used in configuration.
func (pp PromotionPolicy) String() string {
	if pp == RequirePromotion {
		return "strict"
	}
	return "queen"
}

// ParsePromotionPolicy parses "queen" or "strict".
func ParsePromotionPolicy(s string) (PromotionPolicy, error) {
	switch s {
	case "", "queen":
		return PromoteToQueen, nil
	case "strict":
		return RequirePromotion, nil
	}
	return PromoteToQueen, fmt.Errorf("unknown promotion policy %q", s)
}

// Resolve maps a move request to the matching legal move, deriving its
// flags. A missing promotion piece defaults to a queen.
func (p Position) Resolve(req MoveRequest) (Move, error) {
	return p.ResolveWith(req, PromoteToQueen)
}

// ResolveWith is Resolve with an explicit promotion policy.
func (p Position) ResolveWith(req MoveRequest, policy PromotionPolicy) (Move, error) {
	if !req.From.IsValid() || !req.To.IsValid() {
		return Move{}, fmt.Errorf("%w: square off the board", ErrIllegalMove)
	}

	for _, m := range p.LegalMovesFrom(req.From) {
		if m.To != req.To {
			continue
		}

		if !m.IsPromotion() {
			if req.Promotion != NoPieceType {
				break
			}
			return m, nil
		}

		want := req.Promotion
		if want == NoPieceType {
			if policy == RequirePromotion {
				return Move{}, fmt.Errorf("%w: %s needs a promotion piece", ErrAmbiguousPromotion, req)
			}
			want = Queen
		}
		if m.Promotion == want {
			return m, nil
		}
	}

	return Move{}, fmt.Errorf("%w: %s", ErrIllegalMove, req)
}

// Apply returns the position after a move. The move is re-validated against
// the legal move set, so only From, To and Promotion are taken from m; the
// receiver is never modified. An illegal move returns ErrIllegalMove.
func (p Position) Apply(m Move) (Position, error) {
	legal, err := p.Resolve(m.Request())
	if err != nil {
		return p, err
	}
	return p.apply(legal), nil
}

// apply plays a generated move without validation.
func (p Position) apply(m Move) Position {
	next := p
	us := p.sideToMove

	piece := next.board[m.From]
	moverType := piece.Type()
	next.board[m.From] = NoPiece

	if m.IsEnPassant() {
		next.board[m.To.offset(0, -pawnDirection(us))] = NoPiece
	}
	if m.IsPromotion() {
		piece = NewPiece(m.Promotion, us)
	}
	next.board[m.To] = piece

	if m.IsCastling() {
		cs := castleSideFor(us, m.Flags&FlagCastleKingSide != 0)
		next.board[cs.rookTo] = next.board[cs.rook]
		next.board[cs.rook] = NoPiece
	}

	next.castling &^= rightsLostFrom[m.From] | rightsLostFrom[m.To]

	next.enPassant = NoSquare
	if m.Flags&FlagDoublePush != 0 {
		next.enPassant = m.From.offset(0, pawnDirection(us))
	}

	if moverType == Pawn || m.IsCapture() {
		next.halfMoveClock = 0
	} else {
		next.halfMoveClock++
	}
	if us == Black {
		next.fullMoveNumber++
	}
	next.sideToMove = us.Other()

	return next
}
