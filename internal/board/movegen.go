package board

// castleSide describes the squares involved in one castling move.
type castleSide struct {
	right  CastlingRights
	flag   MoveFlag
	king   Square
	kingTo Square
	rook   Square
	rookTo Square
	empty  []Square // squares between king and rook
	path   []Square // squares the king crosses or lands on
}

var castleSides = [2][2]castleSide{
	White: {
		{WhiteKingSideCastle, FlagCastleKingSide, E1, G1, H1, F1, []Square{F1, G1}, []Square{F1, G1}},
		{WhiteQueenSideCastle, FlagCastleQueenSide, E1, C1, A1, D1, []Square{B1, C1, D1}, []Square{D1, C1}},
	},
	Black: {
		{BlackKingSideCastle, FlagCastleKingSide, E8, G8, H8, F8, []Square{F8, G8}, []Square{F8, G8}},
		{BlackQueenSideCastle, FlagCastleQueenSide, E8, C8, A8, D8, []Square{B8, C8, D8}, []Square{D8, C8}},
	},
}

// castleSideFor returns the castling descriptor for a color and wing.
func castleSideFor(c Color, kingSide bool) castleSide {
	if kingSide {
		return castleSides[c][0]
	}
	return castleSides[c][1]
}

// promotionPieces lists promotion choices, most common first.
var promotionPieces = [4]PieceType{Queen, Rook, Bishop, Knight}

// LegalMoves generates all legal moves for the position.
func (p Position) LegalMoves() []Move {
	return p.filterLegal(p.PseudoLegalMoves())
}

// LegalMovesFrom returns the legal moves of the piece standing on sq.
func (p Position) LegalMovesFrom(sq Square) []Move {
	pc := p.PieceAt(sq)
	if pc == NoPiece || pc.Color() != p.sideToMove {
		return nil
	}
	moves := p.pieceMoves(nil, sq, pc.Type())
	if pc.Type() == King {
		moves = p.castlingMoves(moves)
	}
	return p.filterLegal(moves)
}

// Targets returns the distinct destination squares reachable by the piece on
// sq, in ascending order. Promotion choices collapse to one square.
func (p Position) Targets(sq Square) []Square {
	var bb Bitboard
	for _, m := range p.LegalMovesFrom(sq) {
		bb |= SquareBB(m.To)
	}
	return bb.Squares()
}

// HasLegalMoves returns true if the side to move has at least one legal move.
func (p Position) HasLegalMoves() bool {
	for _, m := range p.PseudoLegalMoves() {
		if p.isLegal(m) {
			return true
		}
	}
	return false
}

// PseudoLegalMoves generates all pseudo-legal moves (may leave king in check).
func (p Position) PseudoLegalMoves() []Move {
	moves := make([]Move, 0, 48)
	for sq := A1; sq <= H8; sq++ {
		pc := p.board[sq]
		if pc == NoPiece || pc.Color() != p.sideToMove {
			continue
		}
		moves = p.pieceMoves(moves, sq, pc.Type())
	}
	return p.castlingMoves(moves)
}

// filterLegal keeps the moves that do not leave the mover's king attacked.
func (p Position) filterLegal(moves []Move) []Move {
	legal := moves[:0]
	for _, m := range moves {
		if p.isLegal(m) {
			legal = append(legal, m)
		}
	}
	return legal
}

// isLegal plays a pseudo-legal move on a scratch copy and checks king safety.
func (p Position) isLegal(m Move) bool {
	us := p.sideToMove
	next := p.apply(m)
	return !next.IsSquareAttacked(next.KingSquare(us), us.Other())
}

// pieceMoves appends the pseudo-legal non-castling moves of one piece.
func (p Position) pieceMoves(moves []Move, from Square, pt PieceType) []Move {
	switch pt {
	case Pawn:
		return p.pawnMoves(moves, from)
	case Knight:
		return p.stepMoves(moves, from, knightAttacks[from])
	case King:
		return p.stepMoves(moves, from, kingAttacks[from])
	case Bishop:
		return p.slideMoves(moves, from, firstDiagonal, 8)
	case Rook:
		return p.slideMoves(moves, from, firstOrthogonal, firstDiagonal)
	case Queen:
		return p.slideMoves(moves, from, firstOrthogonal, 8)
	}
	return moves
}

// stepMoves adds moves to each target that is empty or holds an enemy piece.
func (p Position) stepMoves(moves []Move, from Square, targets Bitboard) []Move {
	for targets != 0 {
		to := targets.PopLSB()
		pc := p.board[to]
		switch {
		case pc == NoPiece:
			moves = append(moves, Move{From: from, To: to})
		case pc.Color() != p.sideToMove:
			moves = append(moves, Move{From: from, To: to, Flags: FlagCapture})
		}
	}
	return moves
}

// slideMoves walks rays in directions [first, last) and stops at the first
// occupied square, capturing it if it holds an enemy piece.
func (p Position) slideMoves(moves []Move, from Square, first, last int) []Move {
	for i := first; i < last; i++ {
		for _, to := range rays[from][i] {
			pc := p.board[to]
			if pc == NoPiece {
				moves = append(moves, Move{From: from, To: to})
				continue
			}
			if pc.Color() != p.sideToMove {
				moves = append(moves, Move{From: from, To: to, Flags: FlagCapture})
			}
			break
		}
	}
	return moves
}

// pawnMoves adds pushes, double pushes, captures, en passant and promotions.
func (p Position) pawnMoves(moves []Move, from Square) []Move {
	us := p.sideToMove
	dir := pawnDirection(us)

	if one := from.offset(0, dir); one != NoSquare && p.board[one] == NoPiece {
		moves = addPawnMove(moves, us, Move{From: from, To: one})

		if from.RelativeRank(us) == 1 {
			if two := one.offset(0, dir); p.board[two] == NoPiece {
				moves = append(moves, Move{From: from, To: two, Flags: FlagDoublePush})
			}
		}
	}

	for _, df := range [2]int{-1, 1} {
		to := from.offset(df, dir)
		if to == NoSquare {
			continue
		}
		if pc := p.board[to]; pc != NoPiece && pc.Color() != us {
			moves = addPawnMove(moves, us, Move{From: from, To: to, Flags: FlagCapture})
		} else if to == p.enPassant && pc == NoPiece {
			moves = append(moves, Move{From: from, To: to, Flags: FlagCapture | FlagEnPassant})
		}
	}

	return moves
}

// addPawnMove adds a pawn move, expanding it into the four promotions when
// the pawn reaches the last rank.
func addPawnMove(moves []Move, us Color, m Move) []Move {
	if m.To.RelativeRank(us) != 7 {
		return append(moves, m)
	}
	for _, promo := range promotionPieces {
		m.Promotion = promo
		moves = append(moves, m)
	}
	return moves
}

// castlingMoves adds castling moves. Rights, empty squares and the king's
// path are checked here; the final king square is rechecked by isLegal.
func (p Position) castlingMoves(moves []Move) []Move {
	us := p.sideToMove
	them := us.Other()

	for _, cs := range castleSides[us] {
		if p.castling&cs.right == 0 {
			continue
		}
		if p.board[cs.king] != NewPiece(King, us) || p.board[cs.rook] != NewPiece(Rook, us) {
			continue
		}
		if !p.allEmpty(cs.empty) {
			continue
		}
		if p.IsSquareAttacked(cs.king, them) || p.anyAttacked(cs.path, them) {
			continue
		}
		moves = append(moves, Move{From: cs.king, To: cs.kingTo, Flags: cs.flag})
	}

	return moves
}

func (p Position) allEmpty(squares []Square) bool {
	for _, sq := range squares {
		if p.board[sq] != NoPiece {
			return false
		}
	}
	return true
}

func (p Position) anyAttacked(squares []Square, by Color) bool {
	for _, sq := range squares {
		if p.IsSquareAttacked(sq, by) {
			return true
		}
	}
	return false
}
