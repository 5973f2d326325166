// Command lessonboard is an interactive chess board for studying games:
// play moves, load PGN or FEN, step through the record and archive games.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/chzyer/readline"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/hailam/lessonboard/internal/board"
	"github.com/hailam/lessonboard/internal/config"
	"github.com/hailam/lessonboard/internal/console"
	"github.com/hailam/lessonboard/internal/session"
	"github.com/hailam/lessonboard/internal/storage"
)

func main() {
	fs := flag.NewFlagSet("lessonboard", flag.ExitOnError)
	fen := fs.String("fen", "", "start from this FEN position")
	pgnFile := fs.String("pgn", "", "open this PGN file at start")

	cfg, err := config.Parse(fs, os.Args[1:])
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := cfg.NewLogger()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	dbDir, err := cfg.DatabaseDir()
	if err != nil {
		log.Fatalf("data directory: %v", err)
	}
	archive, err := storage.Open(dbDir, logger)
	if err != nil {
		log.Fatalf("archive: %v", err)
	}
	defer archive.Close()

	s := session.New(session.WithPromotionPolicy(cfg.PromotionPolicy()))
	if err := startPosition(s, *fen, *pgnFile); err != nil {
		log.Fatalf("start position: %v", err)
	}

	c := console.New(s, os.Stdout,
		console.WithArchive(archive),
		console.WithLogger(logger),
		console.WithAutoplayDelay(cfg.AutoplayDelay),
	)

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		if err := c.Run(ctx, os.Stdin); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("input failed", zap.Error(err))
		}
		return
	}

	if err := interactive(c, s, cfg, logger); err != nil {
		logger.Error("console failed", zap.Error(err))
	}
}

// startPosition applies the -fen and -pgn flags.
func startPosition(s *session.Session, fen, pgnFile string) error {
	switch {
	case fen != "" && pgnFile != "":
		return errors.New("-fen and -pgn are mutually exclusive")
	case fen != "":
		return s.LoadFEN(fen)
	case pgnFile != "":
		data, err := os.ReadFile(pgnFile)
		if err != nil {
			return err
		}
		return s.LoadPGN(string(data))
	}
	return nil
}

// interactive runs the console behind readline until quit or EOF.
func interactive(c *console.Console, s *session.Session, cfg config.Config, logger *zap.Logger) error {
	historyFile, err := cfg.HistoryPath()
	if err != nil {
		logger.Warn("no history file", zap.Error(err))
		historyFile = ""
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt(s),
		HistoryFile:     historyFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	fmt.Println("lessonboard - type 'help' for commands")

	for {
		rl.SetPrompt(prompt(s))

		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		if !execute(c, line) {
			return nil
		}
	}
}

// execute runs one command; Ctrl-C interrupts a running play command.
func execute(c *console.Console, line string) bool {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return c.Execute(ctx, line)
}

// prompt shows the move number and side to move at the cursor.
func prompt(s *session.Session) string {
	pos := s.Position()
	dots := "."
	if pos.SideToMove() == board.Black {
		dots = "..."
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d%s", pos.FullMoveNumber(), dots)
	if s.Cursor() < s.Len()-1 {
		fmt.Fprintf(&sb, " [%d/%d]", s.Cursor()+1, s.Len())
	}
	sb.WriteString(" > ")
	return sb.String()
}
