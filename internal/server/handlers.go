package server

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"

	"trivianight/internal/config"
	"trivianight/internal/db"
	"trivianight/internal/quiz"
	"trivianight/internal/rooms"
	"trivianight/internal/session"
)

const qrSize = 256

type Server struct {
	Cfg      *config.Config
	Rooms    *rooms.Store
	Catalog  *quiz.Catalog
	Gateway  *session.Gateway
	Identity Identity
	DB       *db.DB
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[API] Encode error: %v\n", err)
	}
}

type createRoomRequest struct {
	VenueID    int    `json:"venueId"`
	VenueTitle string `json:"venueTitle"`
	VenueLogo  string `json:"venueLogo"`
}

func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	user, ok := s.requireRole(w, r, RoleHost)
	if !ok {
		return
	}

	var req createRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	// Branding defaults to the stored venue record when not given inline.
	if req.VenueTitle == "" && req.VenueID != 0 && s.DB != nil {
		venue, err := s.DB.GetVenue(req.VenueID)
		if err == nil {
			req.VenueTitle = venue.Name
			req.VenueLogo = venue.LogoURL
		}
	}

	room, err := s.Rooms.Create(user.ID, req.VenueTitle, req.VenueLogo, req.VenueID)
	if err != nil {
		log.Printf("[API] CreateRoom error: %v\n", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create room"})
		return
	}

	log.Printf("[API] Created room %s\n", room.Code)
	writeJSON(w, http.StatusOK, map[string]string{"roomId": room.Code})
}

func (s *Server) handleListQuizzes(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, s.Catalog.List())
}

type saveQuizRequest struct {
	ID        int             `json:"id"`
	Title     string          `json:"title"`
	Questions json.RawMessage `json:"questions"`
}

func (s *Server) handleSaveQuiz(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if _, ok := s.requireRole(w, r, RoleAdmin); !ok {
		return
	}

	var req saveQuizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Title == "" || len(req.Questions) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid quiz payload"})
		return
	}

	dataJSON, err := json.Marshal(map[string]json.RawMessage{
		"title":     json.RawMessage(fmt.Sprintf("%q", req.Title)),
		"questions": req.Questions,
	})
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid quiz payload"})
		return
	}

	// Validate before touching the store: the catalog parser is the contract.
	if _, err := quiz.Parse(quiz.Record{ID: req.ID, Title: req.Title, DataJSON: string(dataJSON)}); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	id, err := s.DB.SaveQuiz(req.ID, req.Title, string(dataJSON))
	if err != nil {
		log.Printf("[API] SaveQuiz error: %v\n", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to save quiz"})
		return
	}

	if err := s.reloadCatalog(); err != nil {
		log.Printf("[API] Catalog reload error: %v\n", err)
	}
	writeJSON(w, http.StatusOK, map[string]int{"id": id})
}

func (s *Server) handleReloadQuizzes(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if _, ok := s.requireRole(w, r, RoleAdmin); !ok {
		return
	}
	if err := s.reloadCatalog(); err != nil {
		log.Printf("[API] Catalog reload error: %v\n", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"quizzes": s.Catalog.Len()})
}

func (s *Server) reloadCatalog() error {
	records, err := s.DB.LoadAll()
	if err != nil {
		return err
	}
	return s.Catalog.Reload(records)
}

func (s *Server) handleListVenues(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	venues, err := s.DB.ListVenues()
	if err != nil {
		log.Printf("[API] ListVenues error: %v\n", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list venues"})
		return
	}
	if venues == nil {
		venues = []db.Venue{}
	}
	writeJSON(w, http.StatusOK, venues)
}

type createVenueRequest struct {
	Name    string `json:"name"`
	LogoURL string `json:"logo_url"`
}

func (s *Server) handleCreateVenue(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if _, ok := s.requireRole(w, r, RoleAdmin); !ok {
		return
	}

	var req createVenueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid venue payload"})
		return
	}

	id, err := s.DB.CreateVenue(req.Name, req.LogoURL)
	if err != nil {
		log.Printf("[API] CreateVenue error: %v\n", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create venue"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"id": id})
}

func (s *Server) handleExportScores(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	code := strings.ToUpper(ps.ByName("code"))
	room := s.Rooms.Get(code)
	if room == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Room not found"})
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s_scores.csv", room.Code))

	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"Team", "Score"})
	for _, t := range room.Leaderboard() {
		_ = cw.Write([]string{t.Name, fmt.Sprintf("%d", t.Score)})
	}
	cw.Flush()
}

// handleJoinQR serves a PNG QR code pointing at the public join URL for a
// room, for projecting next to the lobby.
func (s *Server) handleJoinQR(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	code := strings.ToUpper(ps.ByName("code"))
	room := s.Rooms.Get(code)
	if room == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Room not found"})
		return
	}

	base := s.Cfg.BaseURL
	if base == "" {
		base = "http://" + r.Host
	}
	joinURL := fmt.Sprintf("%s/join/%s", strings.TrimSuffix(base, "/"), room.Code)

	png, err := qrcode.Encode(joinURL, qrcode.Medium, qrSize)
	if err != nil {
		log.Printf("[API] QR encode error: %v\n", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to generate QR code"})
		return
	}

	w.Header().Set("Content-Type", "image/png")
	if _, err := w.Write(png); err != nil {
		log.Printf("[API] QR write error: %v\n", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	status := "ok"
	if s.DB != nil {
		if err := s.DB.Ping(); err != nil {
			status = "db_error"
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprintf(w, `{"status":"%s","error":"%s"}`, status, err.Error())
			return
		}
	}
	fmt.Fprintf(w, `{"status":"%s"}`, status)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	s.Gateway.HandleWS(w, r)
}
