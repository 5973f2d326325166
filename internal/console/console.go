// Package console implements a line-oriented command interpreter over a
// game session.
//
// Each input line is one command. A line whose first word is not a command
// is read as a sequence of moves in UCI ("e2e4") or SAN ("Nf3") form.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/hailam/lessonboard/internal/board"
	"github.com/hailam/lessonboard/internal/session"
	"github.com/hailam/lessonboard/internal/storage"
)

// ErrNoArchive is reported by archive commands when none is configured.
var ErrNoArchive = errors.New("no game archive configured")

// Archive is the game store used by save, restore, resume, list and delete.
type Archive interface {
	Save(rec storage.Record) (storage.Record, error)
	Get(id string) (storage.Record, error)
	List() ([]storage.Record, error)
	Delete(id string) error
	Last() (storage.Record, bool, error)
}

// Option configures a Console.
type Option func(*Console)

// WithArchive enables the archive commands.
func WithArchive(a Archive) Option {
	return func(c *Console) {
		c.archive = a
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(c *Console) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithAutoplayDelay sets the pause between moves for the play command.
func WithAutoplayDelay(d time.Duration) Option {
	return func(c *Console) {
		c.delay = d
	}
}

// Console executes commands against a session and writes replies to out.
type Console struct {
	session *session.Session
	archive Archive
	out     io.Writer
	logger  *zap.Logger
	delay   time.Duration

	// ID and name of the archived game the session was saved as or
	// restored from, so save updates it in place.
	gameID   string
	gameName string

	validate *validator.Validate
}

// New creates a console over s writing to out.
func New(s *session.Session, out io.Writer, opts ...Option) *Console {
	c := &Console{
		session:  s,
		out:      out,
		logger:   zap.NewNop(),
		validate: validator.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run reads commands from in until EOF, quit, or ctx is cancelled.
func (c *Console) Run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !c.Execute(ctx, scanner.Text()) {
			return nil
		}
	}
	return scanner.Err()
}

// Execute runs one command line. It returns false when the console should
// stop.
func (c *Console) Execute(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return true
	}

	parts := strings.Fields(line)
	cmd := strings.ToLower(parts[0])
	args := parts[1:]
	rest := strings.TrimSpace(line[len(parts[0]):])

	c.logger.Debug("command", zap.String("cmd", cmd), zap.Strings("args", args))

	var err error
	switch cmd {
	case "quit", "exit":
		return false
	case "help", "?":
		c.handleHelp()
	case "new":
		c.handleNew()
	case "fen":
		err = c.handleFEN(rest)
	case "load":
		err = c.handleLoad(rest)
	case "open":
		err = c.handleOpen(rest)
	case "pgn":
		fmt.Fprint(c.out, c.session.PGN())
	case "move":
		err = c.handleMoves(args)
	case "moves":
		err = c.handleLegalMoves(args)
	case "start":
		c.session.GoToStart()
		c.printCursor()
	case "end":
		c.session.GoToEnd()
		c.printCursor()
	case "back":
		if !c.session.GoToPrevious() {
			fmt.Fprintln(c.out, "already at the start")
			break
		}
		c.printCursor()
	case "next":
		if !c.session.GoToNext() {
			fmt.Fprintln(c.out, "already at the end")
			break
		}
		c.printCursor()
	case "goto":
		err = c.handleGoto(args)
	case "play":
		err = c.handlePlay(ctx, args)
	case "status":
		c.handleStatus()
	case "history":
		c.handleHistory()
	case "board", "d":
		fmt.Fprint(c.out, c.session.Position().String())
	case "perft":
		err = c.handlePerft(args, false)
	case "divide":
		err = c.handlePerft(args, true)
	case "tag":
		err = c.handleTag(args, rest)
	case "save":
		err = c.handleSave(rest)
	case "restore":
		err = c.handleRestore(args)
	case "resume":
		err = c.handleResume()
	case "list":
		err = c.handleList()
	case "delete":
		err = c.handleDelete(args)
	default:
		err = c.handleMoves(parts)
	}

	if err != nil {
		c.logger.Debug("command failed", zap.String("cmd", cmd), zap.Error(err))
		fmt.Fprintf(c.out, "error: %v\n", err)
	}
	return true
}

func (c *Console) handleHelp() {
	fmt.Fprint(c.out, `commands:
  <move>...          play moves in UCI (e2e4) or SAN (Nf3) form; a line
                     with an illegal move plays none of them
  move <move>...     same as above
  moves [square]     legal moves, or targets of the piece on square
  new                start a new game
  fen [FEN]          print the current FEN, or start from FEN
  load <PGN|FEN>     load a game or position from the rest of the line
  open <file>        load a PGN or FEN file
  pgn                print the game as PGN
  start|end|back|next
  goto <n>           go to the position after move n (0 is the start)
  play [n]           step forward n moves, pausing between them
  status             side to move and game status
  history            moves of the game
  board              print the board
  perft <depth>      count leaf nodes
  divide <depth>     perft split by root move
  tag [name value]   print tags, or set one
  save [name]        archive the game
  restore <id>       load an archived game
  resume             load the last archived game
  list               list archived games
  delete <id>        remove an archived game
  quit
`)
}

func (c *Console) handleNew() {
	c.session.Reset()
	c.forget()
	fmt.Fprintln(c.out, "new game")
}

// forget detaches the session from any archived game.
func (c *Console) forget() {
	c.gameID = ""
	c.gameName = ""
}

func (c *Console) handleFEN(fen string) error {
	if fen == "" {
		fmt.Fprintln(c.out, c.session.FEN())
		return nil
	}
	if err := c.session.LoadFEN(fen); err != nil {
		return err
	}
	c.forget()
	fmt.Fprintln(c.out, c.session.FEN())
	return nil
}

func (c *Console) handleLoad(text string) error {
	if text == "" {
		return errors.New("usage: load <PGN|FEN>")
	}
	if err := c.session.Load(text); err != nil {
		return err
	}
	c.forget()
	c.printLoaded()
	return nil
}

func (c *Console) handleOpen(path string) error {
	if path == "" {
		return errors.New("usage: open <file>")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := c.session.Load(string(data)); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	c.forget()
	c.logger.Info("game opened", zap.String("path", path), zap.Int("moves", c.session.Len()))
	c.printLoaded()
	return nil
}

func (c *Console) printLoaded() {
	fmt.Fprintf(c.out, "loaded %d moves\n", c.session.Len())
	c.printStatusIfNotable()
}

// handleMoves plays the tokens in turn. If any of them fails, every move
// of the line is taken back.
func (c *Console) handleMoves(tokens []string) error {
	if len(tokens) == 0 {
		return errors.New("usage: move <move>...")
	}

	mark := c.session.Mark()
	played := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		line, err := c.playToken(tok)
		if err != nil {
			c.session.Rollback(mark)
			return err
		}
		played = append(played, line)
	}

	for _, line := range played {
		fmt.Fprintln(c.out, line)
	}
	c.printStatusIfNotable()
	return nil
}

type moveArgs struct {
	Token string `validate:"required,max=10,printascii"`
}

// playToken plays one UCI or SAN move and returns it numbered.
func (c *Console) playToken(tok string) (string, error) {
	if err := c.validate.Struct(moveArgs{Token: tok}); err != nil {
		return "", fmt.Errorf("invalid move %q", tok)
	}

	before := c.session.Position()
	var san string
	var err error
	if req, perr := board.ParseMoveRequest(tok); perr == nil {
		san, err = c.session.MakeMove(req)
	} else {
		san, err = c.session.MakeSAN(tok)
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", tok, err)
	}
	return numbered(before, san), nil
}

// numbered prefixes san with the move number of the position it was played
// from: "1. e4" or "1... e5".
func numbered(before board.Position, san string) string {
	if before.SideToMove() == board.White {
		return fmt.Sprintf("%d. %s", before.FullMoveNumber(), san)
	}
	return fmt.Sprintf("%d... %s", before.FullMoveNumber(), san)
}

func (c *Console) handleLegalMoves(args []string) error {
	pos := c.session.Position()
	var words []string

	if len(args) == 0 {
		for _, m := range pos.LegalMoves() {
			words = append(words, pos.SAN(m))
		}
	} else {
		sq, err := board.ParseSquare(args[0])
		if err != nil {
			return err
		}
		for _, to := range c.session.Targets(sq) {
			words = append(words, to.String())
		}
	}

	if len(words) == 0 {
		fmt.Fprintln(c.out, "(none)")
		return nil
	}
	fmt.Fprintln(c.out, strings.Join(words, " "))
	return nil
}

type gotoArgs struct {
	Move int `validate:"gte=0"`
}

func (c *Console) handleGoto(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: goto <n>")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid move number %q", args[0])
	}
	if err := c.validate.Struct(gotoArgs{Move: n}); err != nil {
		return fmt.Errorf("%w: %d", session.ErrIndexOutOfRange, n)
	}
	if err := c.session.GoToIndex(n - 1); err != nil {
		return err
	}
	c.printCursor()
	return nil
}

type playArgs struct {
	Count int `validate:"gte=1,lte=1000"`
}

// handlePlay steps forward through the record, pausing between moves.
func (c *Console) handlePlay(ctx context.Context, args []string) error {
	count := c.session.Len() - 1 - c.session.Cursor()
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid count %q", args[0])
		}
		if err := c.validate.Struct(playArgs{Count: n}); err != nil {
			return fmt.Errorf("count must be between 1 and 1000, got %d", n)
		}
		count = n
	}

	for i := 0; i < count; i++ {
		if i > 0 && c.delay > 0 {
			timer := time.NewTimer(c.delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
		before := c.session.Position()
		if !c.session.GoToNext() {
			break
		}
		fmt.Fprintln(c.out, numbered(before, c.session.History()[c.session.Cursor()]))
	}
	c.printStatusIfNotable()
	return nil
}

// printCursor reports the cursor as a move number: 0 is the initial position.
func (c *Console) printCursor() {
	cur := c.session.Cursor()
	if cur < 0 {
		fmt.Fprintf(c.out, "move 0 of %d (start)\n", c.session.Len())
		return
	}
	fmt.Fprintf(c.out, "move %d of %d (%s)\n", cur+1, c.session.Len(), c.session.History()[cur])
}

func (c *Console) statusLine() string {
	status := c.session.Status()
	turn := c.session.Turn()
	if status.IsTerminal() {
		return fmt.Sprintf("%s, %s", status, board.Result(status, turn))
	}
	return fmt.Sprintf("%s to move, %s", turn, status)
}

func (c *Console) handleStatus() {
	fmt.Fprintln(c.out, c.statusLine())
}

// printStatusIfNotable prints the status when the side to move is in check
// or the game is over.
func (c *Console) printStatusIfNotable() {
	if c.session.Status() != board.Playing {
		fmt.Fprintln(c.out, c.statusLine())
	}
}

// handleHistory prints one line per full move, marking the cursor.
func (c *Console) handleHistory() {
	record := c.session.Record()
	if len(record) == 1 {
		fmt.Fprintln(c.out, "(no moves)")
		return
	}

	cursor := c.session.Cursor()
	var line strings.Builder
	flush := func() {
		if line.Len() > 0 {
			fmt.Fprintln(c.out, line.String())
			line.Reset()
		}
	}
	for i := 1; i < len(record); i++ {
		before := record[i-1].Position
		if before.SideToMove() == board.White {
			flush()
			fmt.Fprintf(&line, "%d. %s", before.FullMoveNumber(), record[i].SAN)
		} else if line.Len() == 0 {
			fmt.Fprintf(&line, "%d... %s", before.FullMoveNumber(), record[i].SAN)
		} else {
			fmt.Fprintf(&line, " %s", record[i].SAN)
		}
		if i-1 == cursor {
			line.WriteString(" <")
		}
	}
	flush()
}

type perftArgs struct {
	Depth int `validate:"gte=1,lte=6"`
}

// handlePerft runs a perft test.
func (c *Console) handlePerft(args []string, divide bool) error {
	depth := 3
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid depth %q", args[0])
		}
		depth = n
	}
	if err := c.validate.Struct(perftArgs{Depth: depth}); err != nil {
		return fmt.Errorf("depth must be between 1 and 6, got %d", depth)
	}

	pos := c.session.Position()
	start := time.Now()
	var nodes uint64
	if divide {
		for _, e := range board.Divide(pos, depth) {
			fmt.Fprintf(c.out, "%s: %d\n", e.Move, e.Nodes)
			nodes += e.Nodes
		}
	} else {
		nodes = board.Perft(pos, depth)
	}
	elapsed := time.Since(start)

	fmt.Fprintf(c.out, "Nodes: %d\n", nodes)
	fmt.Fprintf(c.out, "Time: %v\n", elapsed)
	if elapsed > 0 {
		nps := float64(nodes) / elapsed.Seconds()
		fmt.Fprintf(c.out, "NPS: %.0f\n", nps)
	}
	return nil
}

func (c *Console) handleTag(args []string, rest string) error {
	if len(args) == 0 {
		for _, t := range c.session.Tags() {
			fmt.Fprintf(c.out, "[%s %q]\n", t.Name, t.Value)
		}
		return nil
	}
	if len(args) < 2 {
		return errors.New("usage: tag <name> <value>")
	}
	value := strings.TrimSpace(rest[len(args[0]):])
	value = strings.Trim(value, `"`)
	return c.session.SetTag(args[0], value)
}
