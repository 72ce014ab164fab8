// internal/httpserver/routes_solver.go
//
// Solver endpoints:
//   - POST /solver/hint  → replay a guess/feedback history and suggest the next guess
//   - POST /solver/solve → play the solver against a given secret and return the trace
//   - GET  /solver/params → the weights and bias in use
//
// Invariant violations from the solver are answered with 500 and logged at
// error level; the server keeps running.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/mastermind/internal/game"
	"github.com/robalobadob/mastermind/internal/mastermind"
	"github.com/robalobadob/mastermind/internal/metrics"
	"github.com/robalobadob/mastermind/internal/solver"
)

func (s *Server) mountSolver(r chi.Router) {
	r.Route("/solver", func(r chi.Router) {
		r.Post("/hint", s.handleHint)
		r.Post("/solve", s.handleSolve)
		r.Get("/params", func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(s.cfg.Params)
		})
	})
}

type hintTurn struct {
	Guess string `json:"guess"`
	Black int    `json:"black"`
	White int    `json:"white"`
}
type hintReq struct {
	Guesses []hintTurn `json:"guesses"`
}
type hintRes struct {
	Suggestion mastermind.Combination `json:"suggestion"`
	Remaining  int                    `json:"remaining"`
	Round      int                    `json:"round"`
}

// handleHint prunes the universe with every reported turn, then asks the
// heuristic for the next guess. The last two reported guesses are never
// suggested again.
func (s *Server) handleHint(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() { metrics.HintDuration.Observe(time.Since(start).Seconds()) }()

	var req hintReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	if len(req.Guesses) >= solver.MaxRounds {
		http.Error(w, `{"error":"too_many_guesses"}`, http.StatusBadRequest)
		return
	}
	turns := make([]game.Turn, 0, len(req.Guesses))
	history := make([]mastermind.Combination, 0, len(req.Guesses))
	for _, t := range req.Guesses {
		guess, err := mastermind.Parse(t.Guess)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		fb, err := mastermind.NewFeedback(t.Black, t.White)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		turns = append(turns, game.Turn{Guess: guess, Feedback: fb})
		history = append(history, guess)
	}

	cands := game.Replay(turns)
	if len(cands) == 0 {
		http.Error(w, `{"error":"inconsistent_feedback"}`, http.StatusUnprocessableEntity)
		return
	}
	round := len(turns) + 1
	next, err := solver.Heuristic{Params: s.cfg.Params}.SelectGuess(round, cands, history)
	if err != nil {
		s.solverFailure(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(hintRes{Suggestion: next, Remaining: len(cands), Round: round})
}

type solveReq struct {
	Secret string `json:"secret"`
}

// handleSolve returns the full simulator trace for a secret.
func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	var req solveReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	secret, err := mastermind.Parse(req.Secret)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	trace, err := solver.NewSimulator(s.cfg.Params).Trace(secret)
	if err != nil {
		s.solverFailure(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(trace)
}

func (s *Server) solverFailure(w http.ResponseWriter, err error) {
	if errors.Is(err, solver.ErrInvariant) {
		log.Error().Err(err).Msg("solver invariant violated")
		http.Error(w, `{"error":"solver_invariant"}`, http.StatusInternalServerError)
		return
	}
	log.Error().Err(err).Msg("solver failed")
	http.Error(w, `{"error":"solver_failed"}`, http.StatusInternalServerError)
}
