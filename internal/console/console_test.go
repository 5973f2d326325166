package console

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/hailam/lessonboard/internal/board"
	"github.com/hailam/lessonboard/internal/session"
	"github.com/hailam/lessonboard/internal/storage"
)

type harness struct {
	t       *testing.T
	session *session.Session
	console *Console
	out     bytes.Buffer
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	h := &harness{t: t, session: session.New()}
	opts = append([]Option{WithLogger(zaptest.NewLogger(t))}, opts...)
	h.console = New(h.session, &h.out, opts...)
	return h
}

// exec runs each line and returns the combined output.
func (h *harness) exec(lines ...string) string {
	h.t.Helper()
	h.out.Reset()
	for _, line := range lines {
		require.True(h.t, h.console.Execute(context.Background(), line), "console stopped on %q", line)
	}
	return h.out.String()
}

func TestMovesInBothNotations(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, "1. e4\n1... e5\n2. Nf3\n", h.exec("e2e4", "e5", "move g1f3"))
	assert.Equal(t, 3, h.session.Len())

	assert.Equal(t, "2... Nc6\n3. Bb5\n", h.exec("Nc6 Bb5"))
}

func TestFoolsMate(t *testing.T) {
	h := newHarness(t)
	out := h.exec("f3 e5 g4 Qh4")
	assert.Equal(t, "1. f3\n1... e5\n2. g4\n2... Qh4#\ncheckmate, 0-1\n", out)
	assert.Equal(t, "checkmate, 0-1\n", h.exec("status"))
}

func TestIllegalMoveLeavesGameUnchanged(t *testing.T) {
	h := newHarness(t)
	h.exec("e4")

	out := h.exec("e4")
	assert.True(t, strings.HasPrefix(out, "error: e4:"), out)
	assert.Equal(t, 1, h.session.Len())

	// A failing token takes back the whole line.
	out = h.exec("e5 Ke3 Nf3")
	assert.True(t, strings.HasPrefix(out, "error: Ke3:"), out)
	assert.Equal(t, []string{"e4"}, h.session.History())
	assert.Equal(t, 0, h.session.Cursor())

	// Including the forward history a line discarded.
	h.exec("back")
	out = h.exec("d4 d5 Qh9")
	assert.True(t, strings.HasPrefix(out, "error: Qh9:"), out)
	assert.Equal(t, []string{"e4"}, h.session.History())
	assert.Equal(t, -1, h.session.Cursor())
	assert.Equal(t, board.StartFEN, h.session.FEN())
}

func TestUnknownCommandIsTriedAsMove(t *testing.T) {
	h := newHarness(t)
	out := h.exec("frobnicate")
	assert.True(t, strings.HasPrefix(out, "error: frobnicate:"), out)
}

func TestNavigation(t *testing.T) {
	h := newHarness(t)
	h.exec("e4 e5 Nf3")

	assert.Equal(t, "move 2 of 3 (e5)\n", h.exec("back"))
	assert.Equal(t, "move 0 of 3 (start)\n", h.exec("start"))
	assert.Equal(t, "already at the start\n", h.exec("back"))
	assert.Equal(t, "move 1 of 3 (e4)\n", h.exec("next"))
	assert.Equal(t, "move 3 of 3 (Nf3)\n", h.exec("end"))
	assert.Equal(t, "already at the end\n", h.exec("next"))
	assert.Equal(t, "move 2 of 3 (e5)\n", h.exec("goto 2"))
	assert.Equal(t, "move 0 of 3 (start)\n", h.exec("goto 0"))

	assert.Contains(t, h.exec("goto 4"), "out of range")
	assert.Contains(t, h.exec("goto -1"), "out of range")
	assert.Equal(t, -1, h.session.Cursor())
}

func TestMoveFromEarlierPositionTruncates(t *testing.T) {
	h := newHarness(t)
	h.exec("e4 e5 Nf3", "goto 2")
	assert.Equal(t, "2. Bc4\n", h.exec("Bc4"))
	assert.Equal(t, []string{"e4", "e5", "Bc4"}, h.session.History())
}

func TestHistory(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, "(no moves)\n", h.exec("history"))

	h.exec("e4 e5 Nf3", "back")
	assert.Equal(t, "1. e4 e5 <\n2. Nf3\n", h.exec("history"))
}

func TestHistoryBlackToMoveStart(t *testing.T) {
	h := newHarness(t)
	h.exec("fen rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq - 0 1", "e5 Nf3")
	assert.Equal(t, "1... e5\n2. Nf3 <\n", h.exec("history"))
}

func TestLegalMoves(t *testing.T) {
	h := newHarness(t)
	assert.Len(t, strings.Fields(h.exec("moves")), 20)
	assert.Equal(t, "e3 e4\n", h.exec("moves e2"))
	assert.Equal(t, "a3 c3\n", h.exec("moves b1"))
	assert.Equal(t, "(none)\n", h.exec("moves e1"))
	assert.Contains(t, h.exec("moves z9"), "error:")
}

func TestFENCommand(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, board.StartFEN+"\n", h.exec("fen"))

	fen := "4k3/8/8/8/8/8/8/4K2R w K - 0 1"
	assert.Equal(t, fen+"\n", h.exec("fen "+fen))
	assert.Equal(t, "1. O-O\n", h.exec("e1g1"))

	out := h.exec("fen 8/8/8/8/8/8/8/8 w - - 0 1")
	assert.Contains(t, out, "error:")
	assert.Equal(t, 1, h.session.Len(), "failed load keeps the game")
}

func TestLoadAndPGN(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, "loaded 4 moves\n", h.exec("load 1. e4 e5 2. Nf3 Nc6 *"))
	assert.Equal(t, 3, h.session.Cursor())
	assert.Equal(t, "1. e4 e5 2. Nf3 Nc6 *\n", h.exec("pgn"))

	assert.Contains(t, h.exec("load 1. e4 e5 2. Ke3 *"), "error:")
	assert.Equal(t, 4, h.session.Len())
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.pgn")
	require.NoError(t, os.WriteFile(path, []byte(`[Event "Club"]
[White "Anna"]
[Black "Ben"]
[Result "0-1"]

1. f3 e5 2. g4 Qh4# 0-1
`), 0644))

	h := newHarness(t)
	assert.Equal(t, "loaded 4 moves\ncheckmate, 0-1\n", h.exec("open "+path))
	assert.Contains(t, h.exec("tag"), `[White "Anna"]`)

	assert.Contains(t, h.exec("open "+filepath.Join(t.TempDir(), "missing.pgn")), "error:")
}

func TestTags(t *testing.T) {
	h := newHarness(t)
	h.exec("tag Event Casual game", `tag Site "Club room"`)
	assert.Equal(t, "[Event \"Casual game\"]\n[Site \"Club room\"]\n", h.exec("tag"))
	assert.Contains(t, h.exec("pgn"), `[Event "Casual game"]`)
	assert.Contains(t, h.exec("tag Event"), "usage")

	h.exec("e4")
	assert.Contains(t, h.exec("tag FEN 4k3/8/8/8/8/8/4P3/4K3 w - - 0 1"), "error: reserved tag")
	assert.Contains(t, h.exec("tag SetUp 1"), "error: reserved tag")
	assert.NotContains(t, h.exec("pgn"), "[FEN")
}

func TestPlay(t *testing.T) {
	h := newHarness(t)
	h.exec("load 1. e4 e5 2. Nf3 Nc6 *", "start")

	assert.Equal(t, "1. e4\n1... e5\n", h.exec("play 2"))
	assert.Equal(t, "2. Nf3\n2... Nc6\n", h.exec("play"))
	assert.Equal(t, "", h.exec("play"))
	assert.Contains(t, h.exec("play 0"), "error:")
}

func TestPlayStopsWhenCancelled(t *testing.T) {
	h := newHarness(t, WithAutoplayDelay(time.Hour))
	h.exec("load 1. e4 e5 2. Nf3 Nc6 *", "start")
	h.out.Reset()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.True(t, h.console.Execute(ctx, "play"))
	assert.Equal(t, "1. e4\nerror: context canceled\n", h.out.String())
	assert.Equal(t, 0, h.session.Cursor())
}

func TestPerft(t *testing.T) {
	h := newHarness(t)
	assert.Contains(t, h.exec("perft 2"), "Nodes: 400\n")

	out := h.exec("divide 1")
	assert.Contains(t, out, "e2e4: 1\n")
	assert.Contains(t, out, "Nodes: 20\n")

	assert.Contains(t, h.exec("perft 9"), "error: depth must be between 1 and 6")
}

func TestBoard(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, board.NewPosition().String(), h.exec("board"))
}

func TestNewGame(t *testing.T) {
	h := newHarness(t)
	h.exec("e4 e5")
	assert.Equal(t, "new game\n", h.exec("new"))
	assert.Equal(t, 0, h.session.Len())
}

func TestArchiveCommandsWithoutArchive(t *testing.T) {
	h := newHarness(t)
	for _, cmd := range []string{"save", "list", "resume", "restore x", "delete x"} {
		assert.Equal(t, "error: no game archive configured\n", h.exec(cmd), cmd)
	}
}

func TestSaveRestore(t *testing.T) {
	archive, err := storage.Open(t.TempDir(), zaptest.NewLogger(t))
	require.NoError(t, err)
	defer archive.Close()

	h := newHarness(t, WithArchive(archive))
	assert.Equal(t, "(no saved games)\n", h.exec("list"))

	h.exec("e4 e5 Nf3", "back")
	out := h.exec("save Open game")
	require.True(t, strings.HasPrefix(out, "saved "), out)

	recs, err := archive.List()
	require.NoError(t, err)
	require.Len(t, recs, 1)
	saved := recs[0]
	assert.Equal(t, "Open game", saved.Name)
	assert.Equal(t, 1, saved.Cursor)
	assert.Equal(t, 3, saved.Moves)
	assert.Equal(t, "*", saved.Result)
	assert.Equal(t, "saved "+saved.ID+" (Open game)\n", out)
	assert.Contains(t, h.exec("list"), saved.ID)

	// Saving again updates the same record.
	h.exec("end", "Nc6", "save")
	recs, err = archive.List()
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, 4, recs[0].Moves)
	assert.Equal(t, "Open game", recs[0].Name)

	h.exec("new")
	out = h.exec("restore " + saved.ID)
	assert.Equal(t, "restored Open game (4 moves)\nmove 4 of 4 (Nc6)\n", out)
	assert.Equal(t, []string{"e4", "e5", "Nf3", "Nc6"}, h.session.History())

	h.exec("new")
	assert.Contains(t, h.exec("resume"), "restored Open game")

	assert.Equal(t, "deleted "+saved.ID+"\n", h.exec("delete "+saved.ID))
	assert.Contains(t, h.exec("restore "+saved.ID), "game not found")
	assert.Contains(t, h.exec("resume"), "game not found")
}

func TestSaveDefaultName(t *testing.T) {
	archive, err := storage.Open(t.TempDir(), nil)
	require.NoError(t, err)
	defer archive.Close()

	h := newHarness(t, WithArchive(archive))
	h.exec("save")
	h.exec("new", "d4 d5", "save")

	recs, err := archive.List()
	require.NoError(t, err)
	require.Len(t, recs, 2)
	names := []string{recs[0].Name, recs[1].Name}
	assert.ElementsMatch(t, []string{"untitled", "game after 2 moves"}, names)
}

func TestRun(t *testing.T) {
	var out bytes.Buffer
	s := session.New()
	c := New(s, &out)

	in := strings.NewReader("# opening\ne4\n\nquit\ne5\n")
	require.NoError(t, c.Run(context.Background(), in))
	assert.Equal(t, "1. e4\n", out.String())
	assert.Equal(t, 1, s.Len())
}
