package console

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/hailam/lessonboard/internal/storage"
)

// record captures the session as an archive record.
func (c *Console) record(name string) storage.Record {
	g := c.session.Game()
	return storage.Record{
		ID:     c.gameID,
		Name:   name,
		PGN:    c.session.PGN(),
		FEN:    c.session.FEN(),
		Cursor: c.session.Cursor(),
		Moves:  c.session.Len(),
		Result: g.ResultToken(),
	}
}

// handleSave archives the game. A session that was saved or restored before
// updates that record; a new name is kept for later saves.
func (c *Console) handleSave(name string) error {
	if c.archive == nil {
		return ErrNoArchive
	}
	if name == "" {
		name = c.gameName
	}
	if name == "" {
		name = defaultName(c)
	}

	rec, err := c.archive.Save(c.record(name))
	if err != nil {
		return err
	}
	c.gameID, c.gameName = rec.ID, rec.Name
	fmt.Fprintf(c.out, "saved %s (%s)\n", rec.ID, rec.Name)
	return nil
}

// defaultName names a game after its players, or its first moves.
func defaultName(c *Console) string {
	g := c.session.Game()
	white, wok := g.Tag("White")
	black, bok := g.Tag("Black")
	if wok && bok && white != "?" && black != "?" {
		return white + " - " + black
	}
	if c.session.Len() == 0 {
		return "untitled"
	}
	return fmt.Sprintf("game after %d moves", c.session.Len())
}

func (c *Console) handleRestore(args []string) error {
	if c.archive == nil {
		return ErrNoArchive
	}
	if len(args) != 1 {
		return errors.New("usage: restore <id>")
	}
	rec, err := c.archive.Get(args[0])
	if err != nil {
		return err
	}
	return c.restore(rec)
}

func (c *Console) handleResume() error {
	if c.archive == nil {
		return ErrNoArchive
	}
	rec, ok, err := c.archive.Last()
	if err != nil {
		return err
	}
	if !ok {
		return storage.ErrGameNotFound
	}
	return c.restore(rec)
}

// restore loads rec into the session at its saved cursor.
func (c *Console) restore(rec storage.Record) error {
	if err := c.session.LoadPGN(rec.PGN); err != nil {
		return fmt.Errorf("restore %s: %w", rec.ID, err)
	}
	if err := c.session.GoToIndex(rec.Cursor); err != nil {
		c.logger.Warn("saved cursor out of range, staying at the end",
			zap.String("game_id", rec.ID), zap.Int("cursor", rec.Cursor))
	}
	c.gameID, c.gameName = rec.ID, rec.Name
	fmt.Fprintf(c.out, "restored %s (%d moves)\n", rec.Name, c.session.Len())
	c.printCursor()
	return nil
}

func (c *Console) handleList() error {
	if c.archive == nil {
		return ErrNoArchive
	}
	recs, err := c.archive.List()
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		fmt.Fprintln(c.out, "(no saved games)")
		return nil
	}
	for _, rec := range recs {
		fmt.Fprintf(c.out, "%s  %-24s %3d moves  %-7s  %s\n",
			rec.ID, rec.Name, rec.Moves, rec.Result, rec.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}
	return nil
}

func (c *Console) handleDelete(args []string) error {
	if c.archive == nil {
		return ErrNoArchive
	}
	if len(args) != 1 {
		return errors.New("usage: delete <id>")
	}
	if err := c.archive.Delete(args[0]); err != nil {
		return err
	}
	if args[0] == c.gameID {
		c.forget()
	}
	fmt.Fprintf(c.out, "deleted %s\n", args[0])
	return nil
}
