package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"net/http"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/peterkuimelis/skirmish/internal/game"
	"github.com/peterkuimelis/skirmish/internal/store"
)

//go:embed static
var staticFiles embed.FS

// Options configures a Server.
type Options struct {
	Store    *store.Store
	Resolver *game.Resolver
	Ladder   *game.Ladder
	Rules    game.Rules
	Logger   *zap.Logger
}

// Server is the skirmish HTTP API and web UI server.
type Server struct {
	store    *store.Store
	resolver *game.Resolver
	ladder   *game.Ladder
	rules    game.Rules
	logger   *zap.Logger
	sessions *Sessions
	mux      *http.ServeMux
	handler  http.Handler

	// builder holds unsaved deck edits between requests. It is rebuilt
	// from the stores whenever the collection or saved deck changes.
	builderMu sync.Mutex
	builder   *game.DeckBuilder
}

// NewServer creates a new web server.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	resolver := opts.Resolver
	if resolver == nil {
		resolver = game.NewResolver(opts.Store.Battles, nil, opts.Rules.MaxEnemyDeck)
	}
	ladder := opts.Ladder
	if ladder == nil {
		ladder = game.NewLadder(0)
	}
	s := &Server{
		store:    opts.Store,
		resolver: resolver,
		ladder:   ladder,
		rules:    opts.Rules,
		logger:   logger.Named("web"),
		sessions: NewSessions(),
		mux:      http.NewServeMux(),
	}
	s.setupRoutes()
	s.handler = chain(s.mux,
		withRequestID,
		withRecover(s.logger),
		withAccessLog(s.logger),
	)
	return s
}

func (s *Server) setupRoutes() {
	staticFS, _ := fs.Sub(staticFiles, "static")

	s.mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		f, err := staticFS.Open("index.html")
		if err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		defer f.Close()
		io.Copy(w, f.(io.Reader))
	})
	s.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	// Catalog admin and collection
	s.mux.HandleFunc("GET /api/cards", s.handleListCards)
	s.mux.HandleFunc("POST /api/cards", s.handleAddCard)
	s.mux.HandleFunc("GET /api/collection", s.handleListCollection)
	s.mux.HandleFunc("POST /api/collection", s.handleUpsertCollection)

	// Deck
	s.mux.HandleFunc("GET /api/deck", s.handleGetDeck)
	s.mux.HandleFunc("POST /api/deck", s.handleSaveDeck)
	s.mux.HandleFunc("GET /api/deckbuilder", s.handleDeckBuilder)
	s.mux.HandleFunc("POST /api/deckbuilder/cards/{id}", s.handleDeckBuilderAdd)
	s.mux.HandleFunc("DELETE /api/deckbuilder/cards/{id}", s.handleDeckBuilderRemove)
	s.mux.HandleFunc("POST /api/deckbuilder/save", s.handleDeckBuilderSave)

	// Battle configuration
	s.mux.HandleFunc("GET /api/battles", s.handleBattleConfig)
	s.mux.HandleFunc("GET /api/ladder", s.handleLadderPeek)
	s.mux.HandleFunc("POST /api/ladder/next", s.handleLadderNext)

	// Combat sessions
	s.mux.HandleFunc("POST /api/battles/start", s.handleStartBattle)
	s.mux.HandleFunc("GET /api/battles/{id}", s.handleGetBattle)
	s.mux.HandleFunc("POST /api/battles/{id}/play", s.handlePlayCard)
	s.mux.HandleFunc("POST /api/battles/{id}/attack", s.handleAttack)
	s.mux.HandleFunc("POST /api/battles/{id}/end-turn", s.handleEndTurn)
	s.mux.HandleFunc("DELETE /api/battles/{id}", s.handleExitBattle)
	s.mux.HandleFunc("GET /ws/battles/{id}", s.handleBattleSocket)
}

// Handler returns the root handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.logger.Info("listening", zap.String("addr", addr))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// --- Responses ---

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return game.ValidationError("invalid request body: %v", err)
	}
	return nil
}

// statusFor maps domain errors to HTTP status codes; anything else is a 500.
func statusFor(err error) int {
	switch game.KindOf(err) {
	case game.KindValidation:
		return http.StatusBadRequest
	case game.KindNotFound:
		return http.StatusNotFound
	case game.KindMalformedConfig:
		return http.StatusUnprocessableEntity
	case game.KindInsufficientResource:
		return http.StatusConflict
	}
	if errors.Is(err, game.ErrBattleOver) || errors.Is(err, game.ErrBattleClosed) || errors.Is(err, game.ErrWrongPhase) {
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("request_id", RequestIDFromContext(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		msg = "internal server error"
	}
	if game.IsKind(err, game.KindMalformedConfig) {
		s.logger.Warn("malformed battle configuration", zap.Error(err))
		msg = "could not start battle: invalid battle configuration"
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

func pathInt(r *http.Request, name string) (int, error) {
	v, err := strconv.Atoi(r.PathValue(name))
	if err != nil {
		return 0, game.ValidationError("invalid %s %q", name, r.PathValue(name))
	}
	return v, nil
}
