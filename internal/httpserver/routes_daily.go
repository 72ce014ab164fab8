// internal/httpserver/routes_daily.go
//
// Daily Challenge routes under /daily:
//   - POST /daily/new         → start (or resume) today's game
//   - POST /daily/guess       → submit a guess for today's game
//   - GET  /daily/leaderboard → top 20 results for today or ?date=YYYY-MM-DD
//
// Everyone gets the same secret per UTC day. A player plays once per day:
// wins are stored in daily_results, live sessions stay in memory.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/mastermind/internal/daily"
	"github.com/robalobadob/mastermind/internal/game"
	"github.com/robalobadob/mastermind/internal/mastermind"
)

type dailyServer struct {
	srv      *Server
	store    *daily.Store
	salt     string
	now      func() time.Time
	mu       sync.Mutex
	sessions map[string]*dailySession // userID|date
	prunedOn string                   // last date dropStale ran for
}

type dailySession struct {
	UserID      string
	Date        string
	SecretIndex int
	Game        *game.Game
	Start       time.Time
}

func (s *Server) mountDaily(r chi.Router) {
	if s.db == nil {
		return
	}
	dd := &dailyServer{
		srv:      s,
		store:    daily.NewStore(s.db),
		salt:     s.cfg.DailySalt,
		now:      time.Now,
		sessions: make(map[string]*dailySession),
	}
	r.Route("/daily", func(r chi.Router) {
		r.Post("/new", dd.handleNew)
		r.Post("/guess", dd.handleGuess)
		r.Get("/leaderboard", dd.handleLeaderboard)
	})
}

func (d *dailyServer) playerID(w http.ResponseWriter, r *http.Request) string {
	if me := userFrom(r); me != nil {
		return me.ID
	}
	return d.srv.ensureAnonID(w, r)
}

type dailyNewRes struct {
	GameID string `json:"gameId"`
	Date   string `json:"date"`
	Rows   int    `json:"rows"`
	Played bool   `json:"played"`
}

func (d *dailyServer) handleNew(w http.ResponseWriter, r *http.Request) {
	uid := d.playerID(w, r)
	now := d.now()
	date := daily.DateKey(now)

	played, err := d.store.AlreadyPlayed(r.Context(), uid, date)
	if err != nil {
		log.Warn().Err(err).Msg("daily already played")
	}
	if played {
		_ = json.NewEncoder(w).Encode(dailyNewRes{Date: date, Played: true})
		return
	}

	key := uid + "|" + date
	d.mu.Lock()
	if d.prunedOn != date {
		if n := d.dropStale(date); n > 0 {
			log.Debug().Int("sessions", n).Str("date", date).Msg("dropped stale daily sessions")
		}
	}
	sess, ok := d.sessions[key]
	if !ok {
		ch := daily.For(now, d.salt)
		sess = &dailySession{UserID: uid, Date: date, SecretIndex: ch.SecretIndex, Game: game.New(&ch.Secret), Start: now}
		d.sessions[key] = sess
	}
	res := dailyNewRes{GameID: sess.Game.ID, Date: date, Rows: sess.Game.Rows, Played: sess.Game.State() != game.StatePlaying}
	d.mu.Unlock()

	_ = json.NewEncoder(w).Encode(res)
}

// dropStale removes sessions of days other than today and returns how many
// went. Callers hold d.mu.
func (d *dailyServer) dropStale(today string) int {
	n := 0
	for key, sess := range d.sessions {
		if sess.Date != today {
			delete(d.sessions, key)
			n++
		}
	}
	d.prunedOn = today
	return n
}

type dailyGuessReq struct {
	GameID string `json:"gameId"`
	Guess  string `json:"guess"`
}

type dailyGuessRes struct {
	Feedback mastermind.Feedback `json:"feedback"`
	State    string              `json:"state"` // playing | won | lost | locked
	Guesses  int                 `json:"guesses"`
}

func (d *dailyServer) handleGuess(w http.ResponseWriter, r *http.Request) {
	uid := d.playerID(w, r)

	var p dailyGuessReq
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	guess, err := mastermind.Parse(p.Guess)
	if err != nil || p.GameID == "" {
		http.Error(w, `{"error":"invalid"}`, http.StatusBadRequest)
		return
	}

	date := daily.DateKey(d.now())
	d.mu.Lock()
	defer d.mu.Unlock()
	sess, ok := d.sessions[uid+"|"+date]
	if !ok || sess.Game.ID != p.GameID {
		http.Error(w, `{"error":"no_session"}`, http.StatusConflict)
		return
	}
	mv, err := sess.Game.ApplyGuess(guess)
	if errors.Is(err, game.ErrFinished) {
		_ = json.NewEncoder(w).Encode(dailyGuessRes{State: "locked", Guesses: mv.Turns})
		return
	}
	if err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	if mv.State == game.StateWon {
		err := d.store.InsertResult(r.Context(), daily.Result{
			UserID:      uid,
			Date:        date,
			SecretIndex: sess.SecretIndex,
			Guesses:     mv.Turns,
			ElapsedMs:   int(d.now().Sub(sess.Start).Milliseconds()),
		})
		if err != nil {
			log.Warn().Err(err).Str("user", uid).Msg("insert daily result")
		}
	}
	_ = json.NewEncoder(w).Encode(dailyGuessRes{Feedback: mv.Feedback, State: string(mv.State), Guesses: mv.Turns})
}

type lbRes struct {
	Date string        `json:"date"`
	Top  []daily.LBRow `json:"top"`
}

func (d *dailyServer) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = daily.DateKey(d.now())
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		http.Error(w, `{"error":"invalid_date"}`, http.StatusBadRequest)
		return
	}
	rows, err := d.store.Leaderboard(r.Context(), date, 20)
	if err != nil {
		http.Error(w, `{"error":"server_error"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(lbRes{Date: date, Top: rows})
}
