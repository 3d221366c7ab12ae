package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/pivolan/prf_dashboard/config"
	"github.com/pivolan/prf_dashboard/dataset"
	"github.com/pivolan/prf_dashboard/filter"
)

const sweepInterval = time.Minute

// app holds the dataset loaded at startup and the per-session filter state
// shared by the web page and the bot.
type app struct {
	cfg      *config.Config
	ds       *dataset.Dataset
	sessions *filter.Sessions

	mu    sync.Mutex
	chats map[int64]string // telegram chat -> session id
}

func newApp(cfg *config.Config, ds *dataset.Dataset) *app {
	return &app{
		cfg:      cfg,
		ds:       ds,
		sessions: filter.NewSessions(cfg.SessionTTL),
		chats:    map[int64]string{},
	}
}

// chatSession returns the session id bound to a telegram chat, creating it
// on first use. The same id opens the chat's filters on the web page.
func (a *app) chatSession(chatID int64) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	id, ok := a.chats[chatID]
	if !ok {
		id = a.sessions.NewID()
		a.chats[chatID] = id
	}
	return id
}

func main() {
	log.Println("started")
	cfg := config.GetConfig()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	src := dataset.Source{Path: cfg.DatasetPath, Table: cfg.DatasetTable, DSN: cfg.DbDsn}
	ds := dataset.LoadOrEmpty(ctx, src)
	log.Printf("dataset ready: %d rows", ds.Len())

	a := newApp(cfg, ds)
	go a.sessions.RunSweeper(sweepInterval, ctx.Done())

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: newRouter(a)}
	go func() {
		log.Printf("[web] listen on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[web] error starting server: %v", err)
		}
	}()

	if cfg.TgToken != "" {
		go func() {
			if err := runBot(ctx, a, cfg.TgToken); err != nil {
				log.Printf("[bot] stopped: %v", err)
			}
		}()
	} else {
		log.Println("[bot] TG_TOKEN not set, telegram bot disabled")
	}

	<-ctx.Done()
	shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdown); err != nil {
		log.Printf("[web] shutdown: %v", err)
	}
	log.Println("stopped")
}
