package testutil

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/briefly/internal/client/models"
	"github.com/dmitrijs2005/briefly/internal/common"
	"github.com/go-chi/chi/v5"
)

type account struct {
	user     models.User
	password string
}

type fault struct {
	status int
	body   string
}

// Backend is an in-memory implementation of the summarization API.
type Backend struct {
	Secret   []byte
	TokenTTL time.Duration
	Now      func() time.Time

	mu        sync.Mutex
	accounts  map[string]*account
	summaries []models.Summary
	shared    map[models.ID][]models.SharedSummary
	files     map[models.ID][]byte
	faults    map[string]fault
	hits      map[string]int
	nextID    int
}

// NewBackend starts the backend on an httptest server closed at cleanup.
func NewBackend(t testing.TB) (*Backend, *httptest.Server) {
	t.Helper()
	b := &Backend{
		Secret:   []byte("test-secret"),
		TokenTTL: time.Hour,
		Now:      time.Now,
		accounts: make(map[string]*account),
		shared:   make(map[models.ID][]models.SharedSummary),
		files:    make(map[models.ID][]byte),
		faults:   make(map[string]fault),
		hits:     make(map[string]int),
	}
	srv := httptest.NewServer(b.Router())
	t.Cleanup(srv.Close)
	return b, srv
}

// Router builds the chi router serving the API.
func (b *Backend) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(b.count, b.inject)

	r.Post("/user/create", b.createUser)
	r.Post("/user/verify", b.verifyUser)

	r.Group(func(r chi.Router) {
		r.Use(b.authenticate)
		r.Get("/summaries/{userId}", b.listSummaries)
		r.Get("/user/{userId}/shared-summaries", b.listShared)
		r.Get("/summary/{id}", b.getSummary)
		r.Delete("/summary/{id}", b.deleteSummary)
		r.Post("/summary/create", b.createSummary)
		r.Post("/summary/upload", b.uploadSummary)
		r.Post("/summary/share", b.shareSummary)
		r.Post("/summary/regenerate", b.regenerate)
		r.Get("/summary/file/{fileId}", b.downloadFile)
	})
	return r
}

// AddUser registers an account directly and returns its user.
func (b *Backend) AddUser(email, password, first, last string) models.User {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.addUserLocked(email, password, first, last)
}

// AddSummary stores s, assigning an id when it has none.
func (b *Backend) AddSummary(s models.Summary) models.Summary {
	b.mu.Lock()
	defer b.mu.Unlock()
	if s.ID == "" {
		s.ID = b.newIDLocked()
	}
	b.summaries = append(b.summaries, s)
	return s
}

// Fail makes the next request matching "METHOD /path" answer status/body.
func (b *Backend) Fail(method, path string, status int, body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.faults[method+" "+path] = fault{status: status, body: body}
}

// Hits returns how many requests reached "METHOD /path".
func (b *Backend) Hits(method, path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits[method+" "+path]
}

// Token mints a valid token for userID using the backend's secret and clock.
func (b *Backend) Token(userID models.ID) string {
	tok, err := MintToken(userID.String(), b.Secret, b.Now().Add(b.TokenTTL))
	if err != nil {
		panic(err)
	}
	return tok
}

func (b *Backend) addUserLocked(email, password, first, last string) models.User {
	u := models.User{
		ID:        b.newIDLocked(),
		FirstName: first,
		LastName:  last,
		Email:     email,
		CreatedAt: b.Now().Format(time.RFC3339),
	}
	b.accounts[strings.ToLower(email)] = &account{user: u, password: password}
	return u
}

func (b *Backend) newIDLocked() models.ID {
	b.nextID++
	return models.ID(strconv.Itoa(b.nextID))
}

type ctxKey struct{}

func (b *Backend) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.hits[r.Method+" "+r.URL.Path]++
		b.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) inject(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		b.mu.Lock()
		f, ok := b.faults[key]
		delete(b.faults, key)
		b.mu.Unlock()

		if ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(f.status)
			_, _ = io.WriteString(w, f.body)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := r.Header.Get(common.AuthorizationHeaderName)
		if !strings.HasPrefix(h, common.BearerPrefix) {
			detail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		userID, err := UserIDFromToken(strings.TrimPrefix(h, common.BearerPrefix), b.Secret, b.Now)
		if err != nil {
			detail(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}
		ctx := context.WithValue(r.Context(), ctxKey{}, models.ID(userID))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func caller(r *http.Request) models.ID {
	id, _ := r.Context().Value(ctxKey{}).(models.ID)
	return id
}

func (b *Backend) createUser(w http.ResponseWriter, r *http.Request) {
	var reg models.Registration
	if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
		detail(w, http.StatusUnprocessableEntity, "invalid body")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.accounts[strings.ToLower(reg.Email)]; ok {
		detail(w, http.StatusConflict, "User already exists")
		return
	}
	u := b.addUserLocked(reg.Email, reg.Password, reg.FirstName, reg.LastName)
	ok(w, http.StatusOK, map[string]any{"userId": u.ID})
}

func (b *Backend) verifyUser(w http.ResponseWriter, r *http.Request) {
	var creds models.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		detail(w, http.StatusUnprocessableEntity, "invalid body")
		return
	}

	b.mu.Lock()
	acc, found := b.accounts[strings.ToLower(creds.Email)]
	b.mu.Unlock()
	if !found || acc.password != creds.Password {
		detail(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	ok(w, http.StatusOK, models.LoginResult{AuthToken: b.Token(acc.user.ID), User: acc.user})
}

func (b *Backend) listSummaries(w http.ResponseWriter, r *http.Request) {
	userID := models.ID(chi.URLParam(r, "userId"))
	if userID != caller(r) {
		detail(w, http.StatusForbidden, "Forbidden")
		return
	}

	b.mu.Lock()
	out := []models.Summary{}
	for _, s := range b.summaries {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	b.mu.Unlock()
	ok(w, http.StatusOK, out)
}

func (b *Backend) listShared(w http.ResponseWriter, r *http.Request) {
	userID := models.ID(chi.URLParam(r, "userId"))
	if userID != caller(r) {
		detail(w, http.StatusForbidden, "Forbidden")
		return
	}

	b.mu.Lock()
	out := append([]models.SharedSummary{}, b.shared[userID]...)
	b.mu.Unlock()
	ok(w, http.StatusOK, out)
}

func (b *Backend) getSummary(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.indexLocked(models.ID(chi.URLParam(r, "id")), caller(r))
	if i < 0 {
		detail(w, http.StatusNotFound, "Summary not found")
		return
	}
	ok(w, http.StatusOK, b.summaries[i])
}

func (b *Backend) deleteSummary(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.indexLocked(models.ID(chi.URLParam(r, "id")), caller(r))
	if i < 0 {
		detail(w, http.StatusNotFound, "Summary not found")
		return
	}
	b.summaries = slices.Delete(b.summaries, i, i+1)
	ok(w, http.StatusCreated, map[string]string{"message": "Summary deleted successfully"})
}

func (b *Backend) createSummary(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSummaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		detail(w, http.StatusUnprocessableEntity, "invalid body")
		return
	}
	if req.UserID != caller(r) {
		detail(w, http.StatusForbidden, "Forbidden")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	s := models.Summary{
		ID:          b.newIDLocked(),
		UserID:      req.UserID,
		Type:        req.Type,
		UploadType:  req.UploadType,
		Title:       req.Title,
		InitialData: req.InitialData,
		OutputData:  summarize(req.InitialData, ""),
		CreatedAt:   b.Now().Format(time.RFC3339),
	}
	b.summaries = append(b.summaries, s)
	ok(w, http.StatusCreated, map[string]any{"summary_id": s.ID})
}

func (b *Backend) uploadSummary(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		detail(w, http.StatusUnprocessableEntity, "invalid form")
		return
	}
	userID := models.ID(r.FormValue("userId"))
	if userID != caller(r) {
		detail(w, http.StatusForbidden, "Forbidden")
		return
	}
	f, hdr, err := r.FormFile("file")
	if err != nil {
		detail(w, http.StatusUnprocessableEntity, "file is required")
		return
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		detail(w, http.StatusBadRequest, "cannot read file")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	fileID := models.ID("file-" + b.newIDLocked().String())
	b.files[fileID] = content
	s := models.Summary{
		ID:          b.newIDLocked(),
		UserID:      userID,
		Type:        models.SummaryType(r.FormValue("type")),
		UploadType:  models.UploadTypeUpload,
		Title:       r.FormValue("title"),
		InitialData: hdr.Filename,
		OutputData:  summarize(string(content), ""),
		CreatedAt:   b.Now().Format(time.RFC3339),
		FileName:    hdr.Filename,
		FileID:      fileID,
	}
	b.summaries = append(b.summaries, s)
	ok(w, http.StatusCreated, map[string]any{"summary_id": s.ID})
}

func (b *Backend) shareSummary(w http.ResponseWriter, r *http.Request) {
	var req models.ShareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		detail(w, http.StatusUnprocessableEntity, "invalid body")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.indexLocked(req.SummaryID, caller(r))
	if i < 0 {
		detail(w, http.StatusNotFound, "Summary not found")
		return
	}
	to, found := b.accounts[strings.ToLower(req.Recipient)]
	if !found {
		detail(w, http.StatusNotFound, "Recipient not found")
		return
	}

	var sharedBy string
	for _, acc := range b.accounts {
		if acc.user.ID == caller(r) {
			sharedBy = acc.user.Email
		}
	}
	b.shared[to.user.ID] = append(b.shared[to.user.ID], models.SharedSummary{
		Summary:  b.summaries[i],
		SharedBy: sharedBy,
		SharedAt: b.Now().Format("January 02, 2006"),
	})
	ok(w, http.StatusOK, map[string]string{"message": "Summary shared successfully"})
}

func (b *Backend) regenerate(w http.ResponseWriter, r *http.Request) {
	var req models.RegenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		detail(w, http.StatusUnprocessableEntity, "invalid body")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.indexLocked(req.SummaryID, caller(r))
	if i < 0 {
		detail(w, http.StatusNotFound, "Summary not found")
		return
	}
	b.summaries[i].OutputData = summarize(b.summaries[i].InitialData, req.Feedback)
	ok(w, http.StatusOK, map[string]string{"message": "Summary regenerated"})
}

func (b *Backend) downloadFile(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	content, found := b.files[models.ID(chi.URLParam(r, "fileId"))]
	b.mu.Unlock()
	if !found {
		detail(w, http.StatusNotFound, "File not found")
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	_, _ = w.Write(content)
}

func (b *Backend) indexLocked(id, owner models.ID) int {
	return slices.IndexFunc(b.summaries, func(s models.Summary) bool {
		return s.ID == id && s.UserID == owner
	})
}

func summarize(input, feedback string) string {
	out := "# Summary\n\n" + strconv.Itoa(len(input)) + " characters of input."
	if feedback != "" {
		out += "\n\nRevised: " + feedback
	}
	return out
}

func ok(w http.ResponseWriter, status int, result any) {
	writeJSON(w, status, map[string]any{"status": common.StatusOK, "result": result})
}

func detail(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"detail": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
