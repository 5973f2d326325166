package board

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func mustRequest(t *testing.T, s string) MoveRequest {
	t.Helper()
	req, err := ParseMoveRequest(s)
	if err != nil {
		t.Fatalf("ParseMoveRequest(%q): %v", s, err)
	}
	return req
}

// play applies UCI moves in order and fails the test on the first error.
func play(t *testing.T, pos Position, moves ...string) Position {
	t.Helper()
	for _, s := range moves {
		m, err := pos.Resolve(mustRequest(t, s))
		if err != nil {
			t.Fatalf("Resolve(%s) in %s: %v", s, pos.FEN(), err)
		}
		if pos, err = pos.Apply(m); err != nil {
			t.Fatalf("Apply(%s): %v", s, err)
		}
	}
	return pos
}

func TestApplyOpening(t *testing.T) {
	pos := play(t, NewPosition(), "e2e4", "e7e5", "g1f3")
	want := "rnbqkbnr/pppp1ppp/8/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R b KQkq - 1 2"
	if got := pos.FEN(); got != want {
		t.Errorf("FEN = %q, want %q", got, want)
	}
}

func TestApplyDoesNotModifyReceiver(t *testing.T) {
	start := NewPosition()
	before := start
	if _, err := start.Apply(Move{From: E2, To: E4}); err != nil {
		t.Fatal(err)
	}
	if start != before {
		t.Error("Apply modified the receiver")
	}
}

func TestApplyIllegal(t *testing.T) {
	pos := NewPosition()
	tests := []Move{
		{From: E2, To: E5},
		{From: E7, To: E5},
		{From: E1, To: G1},
		{From: D4, To: D5},
		{From: E2, To: E3, Promotion: Queen},
		{From: NoSquare, To: E4},
	}
	for _, m := range tests {
		got, err := pos.Apply(m)
		if !errors.Is(err, ErrIllegalMove) {
			t.Errorf("Apply(%v) error = %v, want ErrIllegalMove", m, err)
		}
		if got != pos {
			t.Errorf("Apply(%v) changed the position on error", m)
		}
	}
}

func TestDoublePushSetsEnPassant(t *testing.T) {
	pos := play(t, NewPosition(), "e2e4")
	if pos.EnPassant() != E3 {
		t.Errorf("EnPassant = %s, want e3", pos.EnPassant())
	}
	pos = play(t, pos, "g8f6")
	if pos.EnPassant() != NoSquare {
		t.Errorf("EnPassant = %s after a quiet move, want -", pos.EnPassant())
	}
}

func TestEnPassantCapture(t *testing.T) {
	pos := play(t, NewPosition(), "e2e4", "a7a6", "e4e5", "d7d5")
	if pos.EnPassant() != D6 {
		t.Fatalf("EnPassant = %s, want d6", pos.EnPassant())
	}

	m, err := pos.Resolve(MoveRequest{From: E5, To: D6})
	if err != nil {
		t.Fatal(err)
	}
	if !m.IsEnPassant() || !m.IsCapture() {
		t.Errorf("flags = %b, want capture and en passant", m.Flags)
	}

	next, err := pos.Apply(m)
	if err != nil {
		t.Fatal(err)
	}
	if next.PieceAt(D5) != NoPiece {
		t.Errorf("captured pawn still on d5: %s", next.PieceAt(D5))
	}
	if next.PieceAt(D6) != WhitePawn {
		t.Errorf("d6 = %s, want white pawn", next.PieceAt(D6))
	}
	if next.HalfMoveClock() != 0 {
		t.Errorf("HalfMoveClock = %d, want 0", next.HalfMoveClock())
	}
}

func TestEnPassantPinnedAlongRank(t *testing.T) {
	pos := mustFEN(t, "8/8/8/KPp4r/8/8/8/7k w - c6 0 2")
	for _, m := range pos.LegalMoves() {
		if m.IsEnPassant() {
			t.Errorf("en passant %s exposes the king", m)
		}
	}
	if n := len(pos.LegalMoves()); n != 4 {
		t.Errorf("legal moves = %d, want 4", n)
	}
}

func TestCastling(t *testing.T) {
	pos := mustFEN(t, "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")

	if diff := cmp.Diff([]Square{C1, D1, F1, G1, D2, E2, F2}, pos.Targets(E1)); diff != "" {
		t.Errorf("king targets mismatch (-want +got):\n%s", diff)
	}

	next := play(t, pos, "e1g1")
	if next.PieceAt(G1) != WhiteKing || next.PieceAt(F1) != WhiteRook || next.PieceAt(H1) != NoPiece {
		t.Errorf("bad kingside castle:%s", next)
	}
	if next.CastlingRights() != BlackKingSideCastle|BlackQueenSideCastle {
		t.Errorf("castling = %s, want kq", next.CastlingRights())
	}

	next = play(t, pos, "e1c1")
	if next.PieceAt(C1) != WhiteKing || next.PieceAt(D1) != WhiteRook || next.PieceAt(A1) != NoPiece {
		t.Errorf("bad queenside castle:%s", next)
	}
}

func TestCastlingThroughAttack(t *testing.T) {
	// The rook on f2 covers f1, so only the queenside is available.
	pos := mustFEN(t, "4k3/8/8/8/8/8/5r2/R3K2R w KQ - 0 1")
	var castles []string
	for _, m := range pos.LegalMovesFrom(E1) {
		if m.IsCastling() {
			castles = append(castles, m.String())
		}
	}
	if diff := cmp.Diff([]string{"e1c1"}, castles); diff != "" {
		t.Errorf("castling moves mismatch (-want +got):\n%s", diff)
	}
}

func TestCastlingOutOfCheck(t *testing.T) {
	pos := mustFEN(t, "4r1k1/8/8/8/8/8/8/R3K2R w KQ - 0 1")
	for _, m := range pos.LegalMoves() {
		if m.IsCastling() {
			t.Errorf("castled out of check: %s", m)
		}
	}
}

func TestRookCaptureRemovesCastlingRights(t *testing.T) {
	pos := mustFEN(t, "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	next := play(t, pos, "a1a8")
	if got := next.CastlingRights().String(); got != "Kk" {
		t.Errorf("castling = %s, want Kk", got)
	}
}

func TestPromotion(t *testing.T) {
	pos := mustFEN(t, "8/P7/8/8/8/8/8/k6K w - - 0 1")

	if n := len(pos.LegalMovesFrom(A7)); n != 4 {
		t.Errorf("promotion moves = %d, want 4", n)
	}
	if diff := cmp.Diff([]Square{A8}, pos.Targets(A7)); diff != "" {
		t.Errorf("targets mismatch (-want +got):\n%s", diff)
	}

	m, err := pos.Resolve(MoveRequest{From: A7, To: A8})
	if err != nil {
		t.Fatal(err)
	}
	if m.Promotion != Queen {
		t.Errorf("default promotion = %s, want Queen", m.Promotion)
	}

	_, err = pos.ResolveWith(MoveRequest{From: A7, To: A8}, RequirePromotion)
	if !errors.Is(err, ErrAmbiguousPromotion) {
		t.Errorf("strict promotion error = %v, want ErrAmbiguousPromotion", err)
	}

	next := play(t, pos, "a7a8n")
	if next.PieceAt(A8) != WhiteKnight {
		t.Errorf("a8 = %s, want white knight", next.PieceAt(A8))
	}
}

func TestParseMoveRequest(t *testing.T) {
	tests := []struct {
		in      string
		want    MoveRequest
		wantErr bool
	}{
		{"e2e4", MoveRequest{From: E2, To: E4}, false},
		{"e7e8q", MoveRequest{From: E7, To: E8, Promotion: Queen}, false},
		{"a2a1n", MoveRequest{From: A2, To: A1, Promotion: Knight}, false},
		{"e7e8k", MoveRequest{}, true},
		{"e2", MoveRequest{}, true},
		{"i2e4", MoveRequest{}, true},
	}
	for _, tc := range tests {
		got, err := ParseMoveRequest(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseMoveRequest(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseMoveRequest(%q) = %+v, want %+v", tc.in, got, tc.want)
		}
	}
}
