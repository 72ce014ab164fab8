// internal/httpserver/server.go
//
// HTTP server wiring for the Mastermind backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health", "/metrics".
//   - Game endpoints (optional auth): POST /game/new, POST /game/guess.
//   - Solver endpoints (rate limited): POST /solver/hint, POST /solver/solve.
//   - Daily Challenge endpoints (optional auth): mounted under /daily.
//   - Auth + profile/stat endpoints: /auth/*, /stats/me, /games/mine.
//   - Tuning history: GET /tuning/runs, GET /tuning/runs/{id}.
//
// Notes:
//   - Live games are held in a store.Store; SQLite only keeps owner rows,
//     guess counters and final status, never the secret.

package httpserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/mastermind/internal/game"
	"github.com/robalobadob/mastermind/internal/mastermind"
	"github.com/robalobadob/mastermind/internal/solver"
	"github.com/robalobadob/mastermind/internal/store"
)

// Config carries the settings the handlers need.
type Config struct {
	JWTSecret      string
	JWTExpiresDays int
	CookieName     string
	AnonCookieName string
	SecureCookies  bool
	ClientOrigin   string
	DailySalt      string
	// SolverRate is the per-client request rate for /solver/*; <= 0 disables limiting.
	SolverRate  float64
	SolverBurst int
	// Params drives hints and solve traces.
	Params solver.Params
}

// ConfigFromEnv reads Config from the environment with development defaults.
func ConfigFromEnv() Config {
	return Config{
		JWTSecret:      getEnv("JWT_SECRET", "dev_secret_change_me"),
		JWTExpiresDays: envInt("JWT_EXPIRES_DAYS", 14),
		CookieName:     getEnv("COOKIE_NAME", "mastermind_token"),
		AnonCookieName: "mastermind_anon",
		SecureCookies:  os.Getenv("APP_ENV") == "production",
		ClientOrigin:   getEnv("CLIENT_ORIGIN", "http://localhost:5173"),
		DailySalt:      getEnv("DAILY_SALT", "local_dev_salt"),
		SolverRate:     envFloat("SOLVER_RATE_PER_SEC", 2),
		SolverBurst:    envInt("SOLVER_BURST", 4),
		Params:         solver.DefaultParams(),
	}
}

// Server bundles router, live game store, DB handle and config.
type Server struct {
	r     *chi.Mux
	store store.Store
	db    *sql.DB
	cfg   Config
}

// New constructs a Server, installs middleware, and registers routes.
func New(st store.Store, db *sql.DB, cfg Config) *Server {
	s := &Server{r: chi.NewRouter(), store: st, db: db, cfg: cfg}

	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(chimw.Recoverer)
	s.r.Use(chimw.Timeout(30 * time.Second))
	s.r.Use(jsonContentType)
	s.r.Use(cors(cfg.ClientOrigin))

	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"service":"mastermind","endpoints":["/health","/metrics","POST /game/new","POST /game/guess","POST /solver/hint","POST /solver/solve","/daily/*","/auth/*"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	s.r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	s.r.With(s.withOptionalAuth()).Post("/game/new", s.handleNewGame)
	s.r.With(s.withOptionalAuth()).Post("/game/guess", s.handleGuess)

	s.mountSolver(s.r.With(rateLimit(cfg.SolverRate, cfg.SolverBurst)))
	s.mountDaily(s.r.With(s.withOptionalAuth()))
	s.mountAuthRoutes()
	s.mountTuning()

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not_found","path":"`+r.URL.Path+`"}`, http.StatusNotFound)
	})
	return s
}

// Start serves HTTP on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	hs := &http.Server{Addr: addr, Handler: s.r, ReadHeaderTimeout: 5 * time.Second}
	errc := make(chan error, 1)
	go func() { errc <- hs.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := hs.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// Router exposes the router for tests.
func (s *Server) Router() chi.Router { return s.r }

// ------------------------------ GAME ---------------------------------------

type newGameReq struct {
	Secret string `json:"secret"` // optional fixed secret (testing)
}
type newGameRes struct {
	GameID string `json:"gameId"`
	Rows   int    `json:"rows"`
}

// handleNewGame creates a live game and an owner row (user_id or anonymous_id).
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	_ = json.NewDecoder(r.Body).Decode(&req)

	var secret *mastermind.Combination
	if req.Secret != "" {
		c, err := mastermind.Parse(req.Secret)
		if err != nil {
			http.Error(w, `{"error":"invalid_secret"}`, http.StatusBadRequest)
			return
		}
		secret = &c
	}
	g := game.New(secret)
	if err := s.store.Save(r.Context(), g); err != nil {
		log.Error().Err(err).Msg("save game")
		http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
		return
	}

	if s.db != nil {
		now := time.Now().UTC().Format(time.RFC3339)
		var err error
		if me := userFrom(r); me != nil {
			_, err = s.db.ExecContext(r.Context(), `INSERT INTO games (id, user_id, started_at, status, guesses)
			                     VALUES (?,?,?,?,0)`, g.ID, me.ID, now, string(game.StatePlaying))
		} else {
			_, err = s.db.ExecContext(r.Context(), `INSERT INTO games (id, anonymous_id, started_at, status, guesses)
			                     VALUES (?,?,?,?,0)`, g.ID, s.ensureAnonID(w, r), now, string(game.StatePlaying))
		}
		if err != nil {
			log.Warn().Err(err).Str("gameId", g.ID).Msg("insert game row")
		}
	}

	_ = json.NewEncoder(w).Encode(newGameRes{GameID: g.ID, Rows: g.Rows})
}

type guessReq struct {
	GameID string `json:"gameId"`
	Guess  string `json:"guess"`
}
type guessRes struct {
	Feedback mastermind.Feedback `json:"feedback"`
	State    game.State          `json:"state"`
	RowsLeft int                 `json:"rowsLeft"`
	// Secret is revealed once the game is over.
	Secret string `json:"secret,omitempty"`
}

// handleGuess scores a guess against a live game and persists progress.
func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	guess, err := mastermind.Parse(req.Guess)
	if err != nil {
		http.Error(w, `{"error":"invalid_guess"}`, http.StatusBadRequest)
		return
	}
	g, err := s.store.Get(r.Context(), req.GameID)
	if err != nil {
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
		return
	}
	mv, err := g.ApplyGuess(guess)
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusConflict)
		return
	}
	if err := s.store.Save(r.Context(), g); err != nil {
		http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
		return
	}
	s.recordGuess(w, r, g.ID, mv.State)

	res := guessRes{Feedback: mv.Feedback, State: mv.State, RowsLeft: mv.RowsLeft}
	if mv.State != game.StatePlaying {
		res.Secret = g.Secret.String()
	}
	_ = json.NewEncoder(w).Encode(res)
}

// recordGuess bumps counters and, on a finished game, status and user stats.
// Best effort: failures are logged only.
func (s *Server) recordGuess(w http.ResponseWriter, r *http.Request, gameID string, state game.State) {
	if s.db == nil {
		return
	}
	me := userFrom(r)
	ownerClause := `anonymous_id=?`
	var ownerArg any
	if me != nil {
		ownerClause, ownerArg = `user_id=?`, me.ID
	} else {
		ownerArg = s.ensureAnonID(w, r)
	}

	tx, err := s.db.BeginTx(r.Context(), nil)
	if err != nil {
		log.Warn().Err(err).Msg("begin guess tx")
		return
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`UPDATE games SET guesses = guesses + 1 WHERE id=? AND `+ownerClause, gameID, ownerArg); err != nil {
		log.Warn().Err(err).Msg("update guesses")
	}
	if state != game.StatePlaying {
		if _, err := tx.Exec(`UPDATE games SET status=?, finished_at=? WHERE id=? AND `+ownerClause,
			string(state), time.Now().UTC().Format(time.RFC3339), gameID, ownerArg); err != nil {
			log.Warn().Err(err).Msg("finish game")
		}
		if me != nil {
			if err := bumpStats(tx, me.ID, state == game.StateWon); err != nil {
				log.Warn().Err(err).Str("user", me.ID).Msg("bump stats")
			}
		}
	}
	if err := tx.Commit(); err != nil {
		log.Warn().Err(err).Msg("commit guess tx")
	}
}

// ------------------------------- util --------------------------------------

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	if n, err := strconv.Atoi(os.Getenv(k)); err == nil {
		return n
	}
	return def
}

func envFloat(k string, def float64) float64 {
	if f, err := strconv.ParseFloat(os.Getenv(k), 64); err == nil {
		return f
	}
	return def
}

// writeError renders {"error": msg} with status.
func writeError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
