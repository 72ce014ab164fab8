package httpserver

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/mastermind/internal/daily"
)

func TestDaily_DropsPastSessions(t *testing.T) {
	s, db := newTestServer(t)
	day := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	dd := &dailyServer{
		srv:      s,
		store:    daily.NewStore(db),
		salt:     "test_salt",
		now:      func() time.Time { return day },
		sessions: make(map[string]*dailySession),
	}
	start := func(player string) {
		req := httptest.NewRequest(http.MethodPost, "/daily/new", nil)
		req.AddCookie(&http.Cookie{Name: "mastermind_anon", Value: player})
		rec := httptest.NewRecorder()
		dd.handleNew(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	for _, p := range []string{"ann", "bob", "cy"} {
		start(p)
	}
	assert.Len(t, dd.sessions, 3)

	day = day.AddDate(0, 0, 1)
	start("ann")
	require.Len(t, dd.sessions, 1)
	assert.Contains(t, dd.sessions, "ann|2026-05-02")
	assert.Equal(t, "2026-05-02", dd.prunedOn)
}
