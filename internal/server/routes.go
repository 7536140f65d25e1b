package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"trivianight/internal/config"
	"trivianight/internal/db"
	"trivianight/internal/quiz"
	"trivianight/internal/rooms"
	"trivianight/internal/session"
)

// Run wires the stores, catalog, and gateway together and serves until the
// context is cancelled.
func Run(ctx context.Context, cfg *config.Config) error {
	database, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}

	catalog := quiz.NewCatalog()
	records, err := database.LoadAll()
	if err != nil {
		return fmt.Errorf("loading quizzes: %w", err)
	}
	if err := catalog.Reload(records); err != nil {
		return fmt.Errorf("loading quizzes: %w", err)
	}
	log.Printf("[Catalog] Loaded %d quizzes\n", catalog.Len())

	store := rooms.NewStore()
	srv := &Server{
		Cfg:      cfg,
		Rooms:    store,
		Catalog:  catalog,
		Gateway:  session.NewGateway(store, catalog),
		Identity: NewTokenIdentity(cfg.HostToken, cfg.AdminToken),
		DB:       database,
	}

	mux := httprouter.New()
	mux.GET("/ws", srv.handleWS)
	mux.POST("/api/rooms", srv.handleCreateRoom)
	mux.GET("/api/quizzes", srv.handleListQuizzes)
	mux.POST("/api/quizzes", srv.handleSaveQuiz)
	mux.POST("/api/quizzes/reload", srv.handleReloadQuizzes)
	mux.GET("/api/venues", srv.handleListVenues)
	mux.POST("/api/venues", srv.handleCreateVenue)
	mux.GET("/api/rooms/:code/export", srv.handleExportScores)
	mux.GET("/api/rooms/:code/qr", srv.handleJoinQR)
	mux.GET("/health", srv.handleHealth)

	httpSrv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: mux,
		// No read/write timeouts: the gateway holds WebSocket connections
		// open for the length of a session.
		IdleTimeout:       10 * time.Minute,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[Serve] Listening on http://%s/\n", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

func openDatabase(cfg *config.Config) (*db.DB, error) {
	if cfg.DatabaseURL != "" {
		return db.Connect(cfg.DatabaseURL)
	}
	return db.OpenSQLite(cfg.SQLitePath)
}
