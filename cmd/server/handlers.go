package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/mr-karan/discdb/pkg/catalog"
	"github.com/tidwall/redcon"
)

func wrongArgs(conn redcon.Conn, cmd redcon.Command) {
	conn.WriteError("ERR wrong number of arguments for '" + string(cmd.Args[0]) + "' command")
}

func writeErr(conn redcon.Conn, err error) {
	conn.WriteError(fmt.Sprintf("ERR %s", err))
}

func (app *App) ping(conn redcon.Conn, cmd redcon.Command) {
	conn.WriteString("PONG")
}

func (app *App) quit(conn redcon.Conn, cmd redcon.Command) {
	conn.WriteString("OK")
	conn.Close()
}

func (app *App) catSet(conn redcon.Conn, cmd redcon.Command) {
	if len(cmd.Args) != 5 {
		wrongArgs(conn, cmd)
		return
	}

	rec := catalog.CatalogRecord{
		Catalog: string(cmd.Args[1]),
		Title:   string(cmd.Args[2]),
		Type:    string(cmd.Args[3]),
		Artist:  string(cmd.Args[4]),
	}
	if err := app.store.AddCatalogEntry(rec); err != nil {
		writeErr(conn, err)
		return
	}

	conn.WriteString("OK")
}

func (app *App) catGet(conn redcon.Conn, cmd redcon.Command) {
	if len(cmd.Args) != 2 {
		wrongArgs(conn, cmd)
		return
	}

	rec, err := app.store.GetCatalogEntry(string(cmd.Args[1]))
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			conn.WriteNull()
			return
		}
		writeErr(conn, err)
		return
	}

	conn.WriteArray(4)
	conn.WriteBulkString(rec.Catalog)
	conn.WriteBulkString(rec.Title)
	conn.WriteBulkString(rec.Type)
	conn.WriteBulkString(rec.Artist)
}

func (app *App) catDel(conn redcon.Conn, cmd redcon.Command) {
	var cascade bool
	switch len(cmd.Args) {
	case 2:
	case 3:
		if string(cmd.Args[2]) != "cascade" {
			writeErr(conn, fmt.Errorf("unknown option %q", string(cmd.Args[2])))
			return
		}
		cascade = true
	default:
		wrongArgs(conn, cmd)
		return
	}

	var err error
	if cascade {
		err = app.store.DeleteCatalogCascade(string(cmd.Args[1]))
	} else {
		err = app.store.DeleteCatalogEntry(string(cmd.Args[1]))
	}
	if err != nil {
		writeErr(conn, err)
		return
	}

	conn.WriteString("OK")
}

func (app *App) catSearch(conn redcon.Conn, cmd redcon.Command) {
	if len(cmd.Args) != 2 {
		wrongArgs(conn, cmd)
		return
	}

	cur, err := app.store.SearchCatalog(string(cmd.Args[1]))
	if err != nil {
		writeErr(conn, err)
		return
	}

	ids := make([]string, 0)
	for {
		rec, err := cur.Next()
		if err != nil {
			if errors.Is(err, catalog.ErrExhausted) {
				break
			}
			writeErr(conn, err)
			return
		}
		ids = append(ids, rec.Catalog)
	}

	conn.WriteArray(len(ids))
	for _, id := range ids {
		conn.WriteBulkString(id)
	}
}

func (app *App) trackSet(conn redcon.Conn, cmd redcon.Command) {
	if len(cmd.Args) != 4 {
		wrongArgs(conn, cmd)
		return
	}

	trackNo, err := strconv.Atoi(string(cmd.Args[2]))
	if err != nil {
		writeErr(conn, fmt.Errorf("invalid track number %q", string(cmd.Args[2])))
		return
	}

	rec := catalog.TrackRecord{
		Catalog: string(cmd.Args[1]),
		TrackNo: trackNo,
		Title:   string(cmd.Args[3]),
	}
	if err := app.store.AddTrackEntry(rec); err != nil {
		writeErr(conn, err)
		return
	}

	conn.WriteString("OK")
}

func (app *App) trackGet(conn redcon.Conn, cmd redcon.Command) {
	if len(cmd.Args) != 3 {
		wrongArgs(conn, cmd)
		return
	}

	trackNo, err := strconv.Atoi(string(cmd.Args[2]))
	if err != nil {
		writeErr(conn, fmt.Errorf("invalid track number %q", string(cmd.Args[2])))
		return
	}

	rec, err := app.store.GetTrackEntry(string(cmd.Args[1]), trackNo)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			conn.WriteNull()
			return
		}
		writeErr(conn, err)
		return
	}

	conn.WriteArray(3)
	conn.WriteBulkString(rec.Catalog)
	conn.WriteBulkString(strconv.Itoa(rec.TrackNo))
	conn.WriteBulkString(rec.Title)
}

func (app *App) trackDel(conn redcon.Conn, cmd redcon.Command) {
	if len(cmd.Args) != 3 {
		wrongArgs(conn, cmd)
		return
	}

	trackNo, err := strconv.Atoi(string(cmd.Args[2]))
	if err != nil {
		writeErr(conn, fmt.Errorf("invalid track number %q", string(cmd.Args[2])))
		return
	}

	if err := app.store.DeleteTrackEntry(string(cmd.Args[1]), trackNo); err != nil {
		writeErr(conn, err)
		return
	}

	conn.WriteString("OK")
}

func (app *App) tracks(conn redcon.Conn, cmd redcon.Command) {
	if len(cmd.Args) != 2 {
		wrongArgs(conn, cmd)
		return
	}

	tracks, err := app.store.Tracks(string(cmd.Args[1]))
	if err != nil {
		writeErr(conn, err)
		return
	}

	conn.WriteArray(len(tracks))
	for _, rec := range tracks {
		conn.WriteBulkString(fmt.Sprintf("%d. %s", rec.TrackNo, rec.Title))
	}
}
