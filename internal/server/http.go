package server

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"WaveDefence/internal/game"
)

/* ------------------------------- HTTP ------------------------------- */

func (a *App) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		serveWS(a, w, r)
	})
	mux.HandleFunc("/observe", func(w http.ResponseWriter, r *http.Request) {
		serveObserve(a, w, r)
	})
	mux.HandleFunc("/api/sessions", a.handleSessions)
	mux.HandleFunc("/api/history", a.handleHistory)
	mux.HandleFunc("/api/entities", a.handleEntities)
	mux.HandleFunc("/healthz", a.handleHealth)
	return mux
}

func startServer(a *App, addr string) error {
	return http.ListenAndServe(addr, a.Routes())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("http: encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (a *App) handleSessions(w http.ResponseWriter, r *http.Request) {
	if zone := r.URL.Query().Get("zone"); zone != "" {
		v, ok := a.Hub.Session(game.ZoneID(zone))
		if !ok {
			writeError(w, http.StatusNotFound, "no session in zone "+zone)
			return
		}
		writeJSON(w, http.StatusOK, v)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"sessions": a.Hub.Sessions(),
		"pending":  a.Hub.Pending(),
	})
}

func (a *App) handleHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if id := q.Get("session"); id != "" {
		events, err := a.Index.SessionEvents(r.Context(), id)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"events": events})
		return
	}
	limit := 20
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}
	recs, err := a.Index.RecentSessions(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": recs})
}

func (a *App) handleEntities(w http.ResponseWriter, r *http.Request) {
	zone := game.ZoneID(r.URL.Query().Get("zone"))
	writeJSON(w, http.StatusOK, map[string]any{"entities": a.Sandbox.Entities(zone)})
}

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthDTO{
		Status:   "ok",
		Sessions: len(a.Hub.Sessions()),
		Dropped:  a.Index.Dropped(),
	})
}
