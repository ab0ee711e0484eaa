package main

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
)

// Server is the JSON API surface. Every handler is one synchronous
// request/response cycle; all failures degrade to an inline error body,
// none terminate the process.
type Server struct {
	diagnosis *DiagnosisService
	wall      *WallService
	auth      *AuthService
}

func NewServer(diagnosis *DiagnosisService, wall *WallService, auth *AuthService) *Server {
	return &Server{diagnosis: diagnosis, wall: wall, auth: auth}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/diagnose", s.handleDiagnose)
	mux.HandleFunc("GET /api/history", s.handleHistory)
	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /api/shops", s.handleShops)
	mux.HandleFunc("POST /api/login", s.handleLogin)
	mux.HandleFunc("POST /api/register", s.handleRegister)
	mux.HandleFunc("GET /api/wall", s.handleWallList)
	mux.HandleFunc("POST /api/wall", s.handleWallPost)
	return mux
}

type diagnoseRequest struct {
	Vehicle     string `json:"vehicle"`
	Category    string `json:"category"`
	Description string `json:"description"`
	// ShareBy posts the result to the community wall under this author.
	ShareBy string `json:"share_by,omitempty"`
}

type recordPayload struct {
	Timestamp   string  `json:"timestamp"`
	Vehicle     string  `json:"vehicle"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Verdict     Verdict `json:"verdict"`
}

type diagnoseResponse struct {
	Record recordPayload `json:"record"`
	Shops  []RepairShop  `json:"shops"`
}

func (s *Server) handleDiagnose(w http.ResponseWriter, r *http.Request) {
	var req diagnoseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	rec, err := s.diagnosis.Submit(r.Context(), req.Vehicle, Category(req.Category), req.Description)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if req.ShareBy != "" {
		if err := s.wall.ShareDiagnosis(req.ShareBy, rec); err != nil {
			// The diagnosis is already committed; a wall failure only logs.
			log.Printf("wall share error author=%q: %v", req.ShareBy, err)
		}
	}

	writeJSON(w, http.StatusOK, diagnoseResponse{
		Record: toRecordPayload(rec),
		Shops:  NearbyShops(defaultAnchorLat, defaultAnchorLon, 3),
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	var (
		records []DiagnosisRecord
		err     error
	)
	if c := r.URL.Query().Get("category"); c != "" {
		if !ValidCategory(Category(c)) {
			writeError(w, http.StatusBadRequest, "unknown category")
			return
		}
		records, err = s.diagnosis.HistoryByCategory(Category(c))
	} else {
		records, err = s.diagnosis.History()
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}

	payload := make([]recordPayload, 0, len(records))
	for _, rec := range records {
		payload = append(payload, toRecordPayload(rec))
	}
	writeJSON(w, http.StatusOK, payload)
}

type dashboardResponse struct {
	Summary        Summary        `json:"summary"`
	CategoryCounts map[string]int `json:"category_counts"`
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	records, err := s.diagnosis.History()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	counts := make(map[string]int)
	for c, n := range CategoryCounts(records) {
		counts[string(c)] = n
	}
	writeJSON(w, http.StatusOK, dashboardResponse{
		Summary:        Summarize(records),
		CategoryCounts: counts,
	})
}

func (s *Server) handleShops(w http.ResponseWriter, r *http.Request) {
	lat, lon := defaultAnchorLat, defaultAnchorLon
	n := 0
	q := r.URL.Query()
	if v := q.Get("lat"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid lat")
			return
		}
		lat = parsed
	}
	if v := q.Get("lon"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid lon")
			return
		}
		lon = parsed
	}
	if v := q.Get("n"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "invalid n")
			return
		}
		n = parsed
	}
	writeJSON(w, http.StatusOK, NearbyShops(lat, lon, n))
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	ok, err := s.auth.Authenticate(req.Username, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := s.auth.Register(req.Username, req.Password); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]bool{"ok": true})
}

type wallPostRequest struct {
	Author string `json:"author"`
	Text   string `json:"text"`
}

type wallPostPayload struct {
	Timestamp string `json:"timestamp"`
	Author    string `json:"author"`
	Kind      string `json:"kind"`
	Text      string `json:"text"`
}

func (s *Server) handleWallList(w http.ResponseWriter, r *http.Request) {
	posts, err := s.wall.List()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	payload := make([]wallPostPayload, 0, len(posts))
	for _, post := range posts {
		payload = append(payload, wallPostPayload{
			Timestamp: post.Timestamp.Format(timestampLayout),
			Author:    post.Author,
			Kind:      post.Kind,
			Text:      post.Text,
		})
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleWallPost(w http.ResponseWriter, r *http.Request) {
	var req wallPostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := s.wall.PostTip(req.Author, req.Text); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]bool{"ok": true})
}

func toRecordPayload(rec DiagnosisRecord) recordPayload {
	return recordPayload{
		Timestamp:   rec.Timestamp.Format(timestampLayout),
		Vehicle:     rec.VehicleLabel,
		Category:    string(rec.Category),
		Description: rec.Description,
		Verdict:     rec.Verdict,
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		writeError(w, http.StatusBadRequest, ve.Error())
		return
	}
	var se *StorageError
	if errors.As(err, &se) {
		log.Printf("storage error: %v", se)
		writeError(w, http.StatusInternalServerError, "storage error")
		return
	}
	log.Printf("internal error: %v", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("response encode error: %v", err)
	}
}
