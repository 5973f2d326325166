package pgn

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/hailam/lessonboard/internal/board"
)

var positionComparer = cmp.Comparer(func(a, b board.Position) bool { return a == b })

func mustDecode(t *testing.T, text string) *Game {
	t.Helper()
	g, err := Decode(text)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return g
}

func TestDecodeRuyLopez(t *testing.T) {
	g := mustDecode(t, "1. e4 e5 2. Nf3 Nc6 3. Bb5 a6")

	want := []string{"e4", "e5", "Nf3", "Nc6", "Bb5", "a6"}
	if diff := cmp.Diff(want, g.Moves); diff != "" {
		t.Errorf("moves mismatch (-want +got):\n%s", diff)
	}

	positions, err := g.Positions()
	if err != nil {
		t.Fatal(err)
	}
	last := positions[len(positions)-1]
	if last.SideToMove() != board.White {
		t.Errorf("turn = %s, want White", last.SideToMove())
	}
	if last.InCheck() {
		t.Error("final position should not be check")
	}
	if g.Result != "*" {
		t.Errorf("Result = %q, want *", g.Result)
	}
}

func TestDecodeStripsAnnotations(t *testing.T) {
	text := `[Event "Casual"]
[White "Anderssen"]
[Black "Kieseritzky"]
[Result "1-0"]

% escaped line is ignored
1.e4 {king's pawn} e5 $1 2. f4!? (2. Nf3 Nc6 (2... d6 {Philidor}) 3. Bb5) exf4 ; gambit accepted
3. Bc4 Qh4+ 4. Kf1 1-0
`
	g := mustDecode(t, text)

	wantTags := []Tag{
		{"Event", "Casual"},
		{"White", "Anderssen"},
		{"Black", "Kieseritzky"},
		{"Result", "1-0"},
	}
	if diff := cmp.Diff(wantTags, g.Tags); diff != "" {
		t.Errorf("tags mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"e4", "e5", "f4", "exf4", "Bc4", "Qh4+", "Kf1"}, g.Moves); diff != "" {
		t.Errorf("moves mismatch (-want +got):\n%s", diff)
	}
	if g.Result != "1-0" {
		t.Errorf("Result = %q, want 1-0", g.Result)
	}
}

func TestDecodeNormalizesSAN(t *testing.T) {
	g := mustDecode(t, "1. e4 e5 2. Ngf3 Nc6 3. Bb5 Nf6 4. 0-0")
	if diff := cmp.Diff([]string{"e4", "e5", "Nf3", "Nc6", "Bb5", "Nf6", "O-O"}, g.Moves); diff != "" {
		t.Errorf("moves mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeFENTag(t *testing.T) {
	fen := "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq - 0 1"
	text := `[Event "Black to move"]
[SetUp "1"]
[FEN "` + fen + `"]

1... e5 2. Nf3 *`
	g := mustDecode(t, text)

	if got := g.Start.FEN(); got != fen {
		t.Errorf("start FEN = %q, want %q", got, fen)
	}
	if diff := cmp.Diff([]Tag{{"Event", "Black to move"}}, g.Tags); diff != "" {
		t.Errorf("tags mismatch (-want +got):\n%s", diff)
	}

	want := `[Event "Black to move"]
[SetUp "1"]
[FEN "` + fen + `"]

1... e5 2. Nf3 *
`
	if got := Encode(g); got != want {
		t.Errorf("Encode:\n%s\nwant:\n%s", got, want)
	}
}

func TestDecodeSetUpZeroIgnoresFEN(t *testing.T) {
	g := mustDecode(t, `[SetUp "0"]
[FEN "8/8/8/4k3/8/8/8/4K3 w - - 0 1"]

1. e4 *`)
	if g.Start != board.NewPosition() {
		t.Errorf("start = %s, want the standard position", g.Start.FEN())
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		ply   int
		token string
	}{
		{"illegal move", "1. e4 e5 2. Ke3", 3, "Ke3"},
		{"ambiguous move", "1. e4 e5 2. Nc3 Nc6 3. Ne2", 5, "Ne2"},
		{"unterminated comment", "1. e4 {oops e5", 2, "{"},
		{"unbalanced variation", "1. e4 e5 ) 2. Nf3", 3, ")"},
		{"open variation", "1. e4 (1. d4 d5 2. c4", 2, "("},
		{"bad FEN tag", "[FEN \"not a fen\"]\n\n1. e4", 0, "not a fen"},
		{"tag after moves", "1. e4 [Event \"x\"] e5", 2, "[Event"},
		{"bare number", "1. e4 12 e5", 2, "12"},
		{"empty", "   \n", 0, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(tc.text)
			if !errors.Is(err, ErrInvalidPGN) {
				t.Fatalf("Decode error = %v, want ErrInvalidPGN", err)
			}
			var pe *PlyError
			if !errors.As(err, &pe) {
				t.Fatalf("error %T is not a *PlyError", err)
			}
			if pe.Ply != tc.ply || pe.Token != tc.token {
				t.Errorf("PlyError{Ply: %d, Token: %q}, want {Ply: %d, Token: %q}", pe.Ply, pe.Token, tc.ply, tc.token)
			}
		})
	}
}

func TestDecodeIllegalMoveWrapsCause(t *testing.T) {
	_, err := Decode("1. e4 e5 2. Qh6")
	if !errors.Is(err, board.ErrAmbiguousOrIllegalSAN) {
		t.Errorf("error = %v, want it to wrap ErrAmbiguousOrIllegalSAN", err)
	}
}

func TestEncode(t *testing.T) {
	g := &Game{Start: board.NewPosition()}
	if err := g.SetTag("Event", `Club "Open"`); err != nil {
		t.Fatal(err)
	}
	g.Moves = []string{"f3", "e5", "g4", "Qh4#"}

	want := `[Event "Club \"Open\""]

1. f3 e5 2. g4 Qh4# 0-1
`
	if got := g.String(); got != want {
		t.Errorf("Encode:\n%s\nwant:\n%s", got, want)
	}
}

func TestSetTagRejectsReservedTags(t *testing.T) {
	g := &Game{Start: board.NewPosition()}
	for _, name := range []string{"FEN", "SetUp"} {
		if err := g.SetTag(name, "1"); !errors.Is(err, ErrReservedTag) {
			t.Errorf("SetTag(%q) error = %v, want ErrReservedTag", name, err)
		}
	}
	if len(g.Tags) != 0 {
		t.Errorf("Tags = %v, want none", g.Tags)
	}
}

func TestEncodeIgnoresStrayStartTags(t *testing.T) {
	tests := []struct {
		name  string
		start string
		moves []string
	}{
		{"standard start", board.StartFEN, []string{"e4", "e5"}},
		{"custom start", "4k3/8/8/8/8/8/4P3/4K3 w - - 0 1", []string{"e4", "Kd7"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			start, err := board.ParseFEN(tc.start)
			if err != nil {
				t.Fatal(err)
			}
			g := &Game{
				Tags: []Tag{
					{Name: "Event", Value: "Lesson"},
					{Name: "SetUp", Value: "1"},
					{Name: "FEN", Value: "4k3/8/8/8/8/8/8/R3K3 w Q - 0 1"},
				},
				Start: start,
				Moves: tc.moves,
			}

			text := Encode(g)
			if strings.Count(text, "[FEN ") > 1 || strings.Count(text, "[SetUp ") > 1 {
				t.Errorf("start tags written twice:\n%s", text)
			}

			back, err := Decode(text)
			if err != nil {
				t.Fatalf("Decode: %v\n%s", err, text)
			}
			if back.Start != start {
				t.Errorf("Start = %s, want %s", back.Start.FEN(), tc.start)
			}
			if diff := cmp.Diff(g.Moves, back.Moves); diff != "" {
				t.Errorf("Moves mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff([]Tag{{Name: "Event", Value: "Lesson"}}, back.Tags); diff != "" {
				t.Errorf("Tags mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEncodeResultPrecedence(t *testing.T) {
	g := &Game{Start: board.NewPosition()}
	g.Moves = []string{"e4"}
	if got := g.ResultToken(); got != "*" {
		t.Errorf("derived result = %q, want *", got)
	}

	if err := g.SetTag("Result", "1/2-1/2"); err != nil {
		t.Fatal(err)
	}
	if got := g.ResultToken(); got != "1/2-1/2" {
		t.Errorf("tag result = %q, want 1/2-1/2", got)
	}

	g.Result = "1-0"
	if got := g.ResultToken(); got != "1-0" {
		t.Errorf("explicit result = %q, want 1-0", got)
	}
}

func TestEncodeWrapsLines(t *testing.T) {
	shuffle := []string{"Nf3", "Nf6", "Ng1", "Ng8"}
	g := &Game{Start: board.NewPosition()}
	for i := 0; i < 10; i++ {
		g.Moves = append(g.Moves, shuffle...)
	}
	// The position repeats long before the end; the moves stay legal.
	text := Encode(g)

	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	if len(lines) < 2 {
		t.Fatalf("expected wrapped movetext, got %q", text)
	}
	for _, line := range lines {
		if len(line) > 80 {
			t.Errorf("line longer than 80 columns (%d): %q", len(line), line)
		}
		if strings.HasSuffix(line, ".") {
			t.Errorf("move number split from its move: %q", line)
		}
	}
	if !strings.HasSuffix(text, "1/2-1/2\n") {
		t.Errorf("repetition should end the game as a draw: %q", text[len(text)-20:])
	}
}

func TestRoundTrip(t *testing.T) {
	inputs := []string{
		"1. e4 e5 2. Nf3 Nc6 3. Bb5 a6",
		"[Event \"Test\"]\n[Site \"?\"]\n\n1. d4 d5 2. c4 dxc4 3. e4 b5 4. a4 c6 5. axb5 cxb5 6. Qf3 1-0",
		"[SetUp \"1\"]\n[FEN \"8/P7/8/8/8/8/8/k6K w - - 0 1\"]\n\n1. a8=N Kb2 2. Nb6 *",
		"1. f3 e5 2. g4 Qh4#",
	}

	for _, in := range inputs {
		first := mustDecode(t, in)
		second := mustDecode(t, Encode(first))
		if diff := cmp.Diff(first, second, positionComparer); diff != "" {
			t.Errorf("round trip mismatch for %q (-first +second):\n%s", in, diff)
		}
		if again := Encode(second); again != Encode(first) {
			t.Errorf("encoding not stable:\n%s\nvs\n%s", again, Encode(first))
		}
	}
}

func TestReplay(t *testing.T) {
	plies, err := Replay(board.NewPosition(), []string{"e4", "e5", "Nf3"})
	if err != nil {
		t.Fatal(err)
	}
	if len(plies) != 3 {
		t.Fatalf("got %d plies, want 3", len(plies))
	}
	want := "rnbqkbnr/pppp1ppp/8/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R b KQkq - 1 2"
	if got := plies[2].Position.FEN(); got != want {
		t.Errorf("FEN = %q, want %q", got, want)
	}
	if plies[2].Move.String() != "g1f3" {
		t.Errorf("move = %s, want g1f3", plies[2].Move)
	}
}
