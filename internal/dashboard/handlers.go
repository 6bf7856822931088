package dashboard

import (
	"encoding/json"
	"net/http"

	"github.com/ziadkadry99/fixbot/internal/knowledge"
	"github.com/ziadkadry99/fixbot/internal/stats"
)

const topQueryLimit = 5

// statsResponse is the JSON response for the stats endpoint.
type statsResponse struct {
	Problems      int                `json:"problems"`
	UserSolutions int                `json:"user_solutions"`
	RatedProblems int                `json:"rated_problems"`
	DistinctQuery int                `json:"distinct_queries"`
	TotalQueries  int                `json:"total_queries"`
	Users         int                `json:"users"`
	TotalSessions int                `json:"total_sessions"`
	TopQueries    []stats.QueryCount `json:"top_queries"`
}

type suggestionsResponse struct {
	Suggestions []string `json:"suggestions"`
}

func (d *Dashboard) handleStats(w http.ResponseWriter, r *http.Request) {
	resp := statsResponse{TopQueries: []stats.QueryCount{}}

	entries := d.engine.Knowledge.Entries()
	resp.Problems = len(entries)
	for _, e := range entries {
		if e.Layer == knowledge.LayerUser {
			resp.UserSolutions++
		}
		if e.SuccessCount+e.FailureCount > 0 {
			resp.RatedProblems++
		}
	}

	ranked := d.engine.Stats.Ranked()
	resp.DistinctQuery = len(ranked)
	for i, q := range ranked {
		resp.TotalQueries += q.Count
		if i < topQueryLimit {
			resp.TopQueries = append(resp.TopQueries, q)
		}
	}

	resp.Users = len(d.engine.Ledger.Leaderboard(0))

	if d.transcripts != nil {
		n, err := d.transcripts.CountSessions(r.Context())
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		resp.TotalSessions = n
	}

	writeJSON(w, http.StatusOK, resp)
}

func (d *Dashboard) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	s := d.engine.Suggestions()
	if s == nil {
		s = []string{}
	}
	writeJSON(w, http.StatusOK, suggestionsResponse{Suggestions: s})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
