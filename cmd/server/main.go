package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/mr-karan/discdb/pkg/catalog"
	"github.com/tidwall/redcon"
)

var (
	// Version of the build. This is injected at build-time.
	buildString = "unknown"
)

type App struct {
	store *catalog.Store
}

func main() {
	ko, err := initConfig()
	if err != nil {
		os.Exit(1)
	}

	lo := initLogger(ko)
	lo.Info("starting discdb server", "version", buildString)

	store, err := initStore(ko)
	if err != nil {
		lo.Fatal("error preparing catalog store", "error", err)
	}

	if err := store.Open(ko.Bool("store.reset")); err != nil {
		lo.Fatal("error opening catalog store", "error", err)
	}

	app := &App{
		store: store,
	}

	mux := redcon.NewServeMux()
	mux.HandleFunc("ping", app.ping)
	mux.HandleFunc("quit", app.quit)
	mux.HandleFunc("cat.set", app.catSet)
	mux.HandleFunc("cat.get", app.catGet)
	mux.HandleFunc("cat.del", app.catDel)
	mux.HandleFunc("cat.search", app.catSearch)
	mux.HandleFunc("track.set", app.trackSet)
	mux.HandleFunc("track.get", app.trackGet)
	mux.HandleFunc("track.del", app.trackDel)
	mux.HandleFunc("tracks", app.tracks)

	// Close the store on shutdown so table locks are released.
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		lo.Info("shutting down")
		if err := store.Close(); err != nil {
			lo.Error("error closing catalog store", "error", err)
		}
		os.Exit(0)
	}()

	addr := ko.String("app.addr")
	if addr == "" {
		addr = ":6380"
	}

	lo.Info("listening", "addr", addr)
	if err := redcon.ListenAndServe(addr,
		mux.ServeRESP,
		func(conn redcon.Conn) bool {
			// use this function to accept or deny the connection.
			return true
		},
		func(conn redcon.Conn, err error) {
			// this is called when the connection has been closed
		},
	); err != nil {
		lo.Fatal("error starting server", "error", err)
	}
}
