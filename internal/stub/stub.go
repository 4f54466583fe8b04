// Package stub is an in-process fake of the CodePrep platform API. Tests
// mount it in an httptest server; the CLI's demo mode serves it on a local
// port so the client can be exercised without a backend. It deliberately
// defines its own response shapes — it plays the server, not the client.
package stub

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
)

type profileRecord struct {
	Name           string        `json:"name"`
	Username       string        `json:"username"`
	Bio            string        `json:"bio"`
	Location       string        `json:"location"`
	Gender         string        `json:"gender"`
	Age            int           `json:"age"`
	CurrentStreak  int           `json:"currentStreak"`
	LongestStreak  int           `json:"longestStreak"`
	FollowingCount int           `json:"followingCount"`
	FollowersCount int           `json:"followersCount"`
	Badges         []badgeRecord `json:"badges"`
}

type badgeRecord struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	EarnedAt    time.Time `json:"earnedAt"`
}

type statsRecord struct {
	Easy                progress `json:"easy"`
	Medium              progress `json:"medium"`
	Hard                progress `json:"hard"`
	TotalSubmissions    int      `json:"totalSubmissions"`
	AcceptedSubmissions int      `json:"acceptedSubmissions"`
	AcceptanceRate      float64  `json:"acceptanceRate"`
}

type progress struct {
	Solved int `json:"solved"`
	Total  int `json:"total"`
}

type heatmapRecord struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type submissionRecord struct {
	ID          string     `json:"id"`
	Problem     problemRef `json:"problem"`
	Language    string     `json:"language"`
	Status      string     `json:"status"`
	RuntimeMS   *int       `json:"runtimeMs"`
	MemoryKB    *int       `json:"memoryKb"`
	SubmittedAt time.Time  `json:"submittedAt"`
	Note        string     `json:"note,omitempty"`
	TimeTaken   string     `json:"timeTaken,omitempty"`
}

type problemRef struct {
	Title      string `json:"title"`
	Slug       string `json:"slug"`
	Difficulty string `json:"difficulty"`
}

type chatMessage struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

type userRecord struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	password string
}

// Server holds the fake platform state.
type Server struct {
	mu          sync.Mutex
	profiles    map[string]*profileRecord
	stats       map[string]*statsRecord
	heatmaps    map[string][]heatmapRecord
	submissions map[string]*submissionRecord
	recent      map[string][]submissionRecord
	byProblem   map[string][]string
	chats       map[string][]chatMessage
	following   map[string]bool
	users       map[string]*userRecord
	secret      []byte
}

func New() *Server {
	s := &Server{
		profiles:    make(map[string]*profileRecord),
		stats:       make(map[string]*statsRecord),
		heatmaps:    make(map[string][]heatmapRecord),
		submissions: make(map[string]*submissionRecord),
		recent:      make(map[string][]submissionRecord),
		byProblem:   make(map[string][]string),
		chats:       make(map[string][]chatMessage),
		following:   make(map[string]bool),
		users:       make(map[string]*userRecord),
		secret:      []byte(uuid.New().String()),
	}
	s.seed()
	return s
}

func (s *Server) seed() {
	runtime := 42
	memory := 16384

	s.users["mira@example.com"] = &userRecord{
		ID:       uuid.New().String(),
		Username: "mira_dev",
		Email:    "mira@example.com",
		Name:     "Mira Chen",
		password: "correct-horse",
	}
	s.profiles["mira_dev"] = &profileRecord{
		Name:           "Mira Chen",
		Username:       "mira_dev",
		Bio:            "Grinding graphs until they grind back.",
		Location:       "Toronto",
		Gender:         "female",
		Age:            27,
		CurrentStreak:  12,
		LongestStreak:  48,
		FollowingCount: 31,
		FollowersCount: 10,
		Badges: []badgeRecord{
			{Name: "100 Days", Description: "Solved a problem on 100 distinct days", Icon: "flame", EarnedAt: time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)},
			{Name: "Fifty Hards", Description: "Solved 50 hard problems", Icon: "trophy", EarnedAt: time.Date(2024, 9, 15, 0, 0, 0, 0, time.UTC)},
		},
	}
	s.stats["mira_dev"] = &statsRecord{
		Easy:                progress{Solved: 180, Total: 240},
		Medium:              progress{Solved: 95, Total: 410},
		Hard:                progress{Solved: 22, Total: 160},
		TotalSubmissions:    1204,
		AcceptedSubmissions: 611,
		AcceptanceRate:      50.7,
	}
	s.heatmaps["mira_dev"] = []heatmapRecord{
		{Date: "2024-03-01", Count: 5},
		{Date: "2024-03-02", Count: 2},
		{Date: "2024-03-04", Count: 11},
	}

	sub := submissionRecord{
		ID:          "sub-1",
		Problem:     problemRef{Title: "Two Sum", Slug: "two-sum", Difficulty: "easy"},
		Language:    "go",
		Status:      "accepted",
		RuntimeMS:   &runtime,
		MemoryKB:    &memory,
		SubmittedAt: time.Date(2024, 3, 1, 14, 30, 0, 0, time.UTC),
	}
	s.submissions[sub.ID] = &sub
	s.recent["mira_dev"] = []submissionRecord{sub}
	s.byProblem["p1"] = []string{sub.ID}

	s.chats["p1"] = []chatMessage{
		{ID: uuid.New().String(), Role: "user", Content: "Why does my two-pointer approach fail?", Timestamp: time.Date(2024, 3, 1, 14, 0, 0, 0, time.UTC)},
		{ID: uuid.New().String(), Role: "assistant", Content: "Two pointers need a sorted array; this input isn't sorted.", Timestamp: time.Date(2024, 3, 1, 14, 0, 5, 0, time.UTC)},
	}
}

// Handler mounts every route the client consumes. httprouter cannot mix
// the static /api/chat, /api/auth etc. prefixes with the /api/:username
// wildcard in one tree, so unmatched static routes fall through to a
// second router owning the username-scoped endpoints.
func (s *Server) Handler() http.Handler {
	users := httprouter.New()
	users.GET("/api/:username/profile", s.getProfile)
	users.GET("/api/:username/problems-stats", s.getStats)
	users.GET("/api/:username/heatmap", s.getHeatmap)
	users.GET("/api/:username/recent-submissions", s.getRecent)
	users.GET("/api/:username/follow-status", s.followStatus)
	users.POST("/api/:username/follow", s.follow)
	users.DELETE("/api/:username/unfollow", s.unfollow)

	static := httprouter.New()
	static.GET("/api/profile/username-check", s.usernameCheck)
	static.PATCH("/api/profile", s.updateProfile)

	static.POST("/api/chat/problem/:problemID", s.chatSend)
	static.GET("/api/chat/problem/:problemID/history", s.chatHistory)
	static.POST("/api/run/:problemID", s.runCode)

	static.GET("/api/problems/:problemID/submissions", s.problemSubmissions)
	static.GET("/api/submissions/:id", s.getSubmission)
	static.POST("/api/submissions/:id/notes", s.saveNote)

	static.POST("/api/auth/login", s.login)
	static.POST("/api/auth/register", s.register)
	static.POST("/api/auth/logout", s.logout)
	static.GET("/api/auth/check", s.check)

	static.HandleMethodNotAllowed = false
	static.NotFound = users
	return static
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeData(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": data})
}

func writeFailure(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"success": false, "message": message})
}

func (s *Server) getProfile(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	s.mu.Lock()
	p, ok := s.profiles[ps.ByName("username")]
	s.mu.Unlock()
	if !ok {
		writeFailure(w, http.StatusNotFound, "Profile not found")
		return
	}
	writeData(w, p)
}

func (s *Server) getStats(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	s.mu.Lock()
	stats, ok := s.stats[ps.ByName("username")]
	s.mu.Unlock()
	if !ok {
		writeFailure(w, http.StatusNotFound, "Stats not found")
		return
	}
	writeData(w, stats)
}

func (s *Server) getHeatmap(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	s.mu.Lock()
	entries, ok := s.heatmaps[ps.ByName("username")]
	s.mu.Unlock()
	if !ok {
		writeFailure(w, http.StatusNotFound, "Profile not found")
		return
	}
	year := r.URL.Query().Get("year")
	filtered := make([]heatmapRecord, 0, len(entries))
	for _, e := range entries {
		if year == "" || strings.HasPrefix(e.Date, year+"-") {
			filtered = append(filtered, e)
		}
	}
	writeData(w, filtered)
}

func (s *Server) getRecent(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	s.mu.Lock()
	subs, ok := s.recent[ps.ByName("username")]
	s.mu.Unlock()
	if !ok {
		writeFailure(w, http.StatusNotFound, "Profile not found")
		return
	}
	writeData(w, subs)
}

func (s *Server) usernameCheck(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	username := r.URL.Query().Get("username")
	s.mu.Lock()
	_, taken := s.profiles[username]
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"available": !taken,
		"message":   "ok",
	})
}

func (s *Server) updateProfile(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	username, ok := s.authenticate(r)
	if !ok {
		writeFailure(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	var patch map[string]any
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	p, ok := s.profiles[username]
	if ok {
		if v, ok := patch["name"].(string); ok && v != "" {
			p.Name = v
		}
		if v, ok := patch["bio"].(string); ok && v != "" {
			p.Bio = v
		}
		if v, ok := patch["location"].(string); ok && v != "" {
			p.Location = v
		}
		if v, ok := patch["age"].(float64); ok && v != 0 {
			p.Age = int(v)
		}
	}
	s.mu.Unlock()
	if !ok {
		writeFailure(w, http.StatusNotFound, "Profile not found")
		return
	}
	writeData(w, p)
}

func (s *Server) followStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	s.mu.Lock()
	following := s.following[ps.ByName("username")]
	s.mu.Unlock()
	writeData(w, map[string]bool{"isFollowing": following})
}

func (s *Server) follow(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if _, ok := s.authenticate(r); !ok {
		writeFailure(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	username := ps.ByName("username")
	s.mu.Lock()
	p, ok := s.profiles[username]
	if ok && !s.following[username] {
		s.following[username] = true
		p.FollowersCount++
	}
	s.mu.Unlock()
	if !ok {
		writeFailure(w, http.StatusNotFound, "Profile not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Followed"})
}

func (s *Server) unfollow(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if _, ok := s.authenticate(r); !ok {
		writeFailure(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	username := ps.ByName("username")
	s.mu.Lock()
	p, ok := s.profiles[username]
	if ok && s.following[username] {
		s.following[username] = false
		p.FollowersCount--
	}
	s.mu.Unlock()
	if !ok {
		writeFailure(w, http.StatusNotFound, "Profile not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Unfollowed"})
}

func (s *Server) chatSend(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == "" {
		writeFailure(w, http.StatusBadRequest, "Message is required")
		return
	}
	problemID := ps.ByName("problemID")
	now := time.Now()
	reply := "Consider the constraints first: what is the input size telling you about the intended complexity?"

	s.mu.Lock()
	s.chats[problemID] = append(s.chats[problemID],
		chatMessage{ID: uuid.New().String(), Role: "user", Content: req.Message, Timestamp: now},
		chatMessage{ID: uuid.New().String(), Role: "assistant", Content: reply, Timestamp: now},
	)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"response":   reply,
		"isOffTopic": false,
		"tokensUsed": 128,
	})
}

func (s *Server) chatHistory(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	s.mu.Lock()
	msgs := append([]chatMessage(nil), s.chats[ps.ByName("problemID")]...)
	s.mu.Unlock()
	writeData(w, map[string]any{"messages": msgs})
}

func (s *Server) runCode(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req struct {
		Language string `json:"language"`
		Code     string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
		writeFailure(w, http.StatusBadRequest, "Code is required")
		return
	}

	// Canned verdict: one pass, one fail, so clients can render both rows.
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"testResults": []map[string]any{
			{"input": "[2,7,11,15], 9", "expected": "[0,1]", "actual": "[0,1]", "passed": true, "runtimeMs": 3},
			{"input": "[3,3], 6", "expected": "[0,1]", "actual": "[1,0]", "passed": false, "runtimeMs": 2},
		},
		"summary": map[string]int{"total": 2, "passed": 1, "failed": 1},
	})
}

func (s *Server) problemSubmissions(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	s.mu.Lock()
	ids := s.byProblem[ps.ByName("problemID")]
	subs := make([]submissionRecord, 0, len(ids))
	for _, id := range ids {
		if sub, ok := s.submissions[id]; ok {
			subs = append(subs, *sub)
		}
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"submissions": subs})
}

func (s *Server) getSubmission(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	s.mu.Lock()
	sub, ok := s.submissions[ps.ByName("id")]
	s.mu.Unlock()
	if !ok {
		writeFailure(w, http.StatusNotFound, "Submission not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"submission": sub})
}

func (s *Server) saveNote(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req struct {
		Note      string `json:"note"`
		TimeTaken string `json:"timeTaken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	s.mu.Lock()
	sub, ok := s.submissions[ps.ByName("id")]
	if ok {
		sub.Note = req.Note
		if req.TimeTaken != "" {
			sub.TimeTaken = req.TimeTaken
		}
	}
	s.mu.Unlock()
	if !ok {
		writeFailure(w, http.StatusNotFound, "Submission not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"submission": sub})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	s.mu.Lock()
	user, ok := s.users[req.Email]
	s.mu.Unlock()
	if !ok || user.password != req.Password {
		writeFailure(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	s.respondSession(w, user)
}

func (s *Server) register(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" || req.Email == "" {
		writeFailure(w, http.StatusBadRequest, "Username and email are required")
		return
	}

	s.mu.Lock()
	if _, exists := s.users[req.Email]; exists {
		s.mu.Unlock()
		writeFailure(w, http.StatusConflict, "An account with this email already exists")
		return
	}
	user := &userRecord{
		ID:       uuid.New().String(),
		Username: req.Username,
		Email:    req.Email,
		Name:     req.Username,
		password: req.Password,
	}
	s.users[req.Email] = user
	s.profiles[req.Username] = &profileRecord{Name: req.Username, Username: req.Username}
	s.mu.Unlock()

	s.respondSession(w, user)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Logged out"})
}

func (s *Server) check(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	username, ok := s.authenticate(r)
	if !ok {
		writeFailure(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	s.mu.Lock()
	var user *userRecord
	for _, u := range s.users {
		if u.Username == username {
			user = u
			break
		}
	}
	s.mu.Unlock()
	if user == nil {
		writeFailure(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "user": user})
}

func (s *Server) respondSession(w http.ResponseWriter, user *userRecord) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"exp":      time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		writeFailure(w, http.StatusInternalServerError, "Failed to issue token")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user":    user,
		"token":   signed,
	})
}

func (s *Server) authenticate(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	parsed, _, err := jwt.NewParser().ParseUnverified(parts[1], jwt.MapClaims{})
	if err != nil {
		return "", false
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", false
	}
	username, _ := claims["username"].(string)
	return username, username != ""
}
