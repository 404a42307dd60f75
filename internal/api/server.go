package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"resync/internal/chat"
	"resync/internal/config"
	"resync/internal/extract"
	"resync/internal/models"
	"resync/internal/scholar"
	"resync/internal/session"
	"resync/internal/util"
)

type Server struct {
	cfg       config.Config
	store     session.Store
	manager   *chat.Manager
	extractor *extract.Extractor
	scholar   *scholar.Client
	log       *zap.Logger
}

func NewServer(cfg config.Config, store session.Store, manager *chat.Manager, extractor *extract.Extractor, sc *scholar.Client, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		cfg:       cfg,
		store:     store,
		manager:   manager,
		extractor: extractor,
		scholar:   sc,
		log:       log,
	}
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/upload_paper", s.handleUploadPaper)
	mux.HandleFunc("/api/chat", s.handleChat)
	mux.HandleFunc("/api/list_papers", s.handleListPapers)
	mux.HandleFunc("/api/clear_session", s.handleClearSession)
	mux.HandleFunc("/api/papers", s.handlePapers)
	mux.HandleFunc("/api/articles", s.handleArticles)
	mux.HandleFunc("/api/datasets", s.handleDatasets)
	mux.HandleFunc("/api/concepts/autocomplete", s.handleConceptsAutocomplete)
	mux.HandleFunc("/health", s.handleHealth)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(mux)
}

func (s *Server) handleUploadPaper(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		s.handleUploadFromURL(w, r)
		return
	}
	s.handleUploadFromFile(w, r)
}

func (s *Server) handleUploadFromFile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		if isTooLarge(err) {
			writeErr(w, http.StatusRequestEntityTooLarge, fmt.Errorf("File is too large"))
			return
		}
		writeErr(w, http.StatusBadRequest, fmt.Errorf("No file part"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("No file part"))
		return
	}
	defer file.Close()

	if header.Filename == "" {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("No selected file"))
		return
	}
	if !strings.HasSuffix(strings.ToLower(header.Filename), ".pdf") {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("File type not allowed. Only PDF files are accepted."))
		return
	}
	sessionID := strings.TrimSpace(r.FormValue("session_id"))
	if sessionID == "" {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("Session ID is required"))
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, fmt.Errorf("Error reading upload: %v", err))
		return
	}

	filename := filepath.Base(header.Filename)
	savedPath, err := s.saveUpload(filename, data)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, fmt.Errorf("Error processing paper: %v", err))
		return
	}

	s.ingest(w, sessionID, filename, savedPath, data)
}

type uploadURLRequest struct {
	URL       string `json:"url"`
	SessionID string `json:"session_id"`
}

func (r uploadURLRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.URL, validation.Required, is.URL),
		validation.Field(&r.SessionID, validation.Required),
	)
}

func (s *Server) handleUploadFromURL(w http.ResponseWriter, r *http.Request) {
	var req uploadURLRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}
	req.URL = strings.TrimSpace(req.URL)
	req.SessionID = strings.TrimSpace(req.SessionID)
	if err := req.Validate(); err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}

	text, err := s.extractor.FetchText(r.Context(), req.URL)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, fmt.Errorf("Error processing paper: %v", err))
		return
	}

	filename := remoteFilename(req.URL)
	s.ingestText(w, req.SessionID, filename, req.URL, text)
}

// ingest extracts text from the uploaded bytes and stores the resulting
// paper; the saved file is removed again when processing fails.
func (s *Server) ingest(w http.ResponseWriter, sessionID, filename, savedPath string, data []byte) {
	text, err := extract.Text(data)
	if err != nil {
		if savedPath != "" {
			_ = os.Remove(savedPath)
		}
		writeErr(w, http.StatusInternalServerError, fmt.Errorf("Error processing paper: %v", err))
		return
	}
	s.ingestText(w, sessionID, filename, savedPath, text)
}

func (s *Server) ingestText(w http.ResponseWriter, sessionID, filename, source, text string) {
	processed := util.NormalizeText(text)
	chunks := util.ChunkText(processed, s.cfg.ChunkSize, s.cfg.ChunkOverlap)
	if len(chunks) == 0 {
		writeErr(w, http.StatusInternalServerError, fmt.Errorf("Error processing paper: %v", extract.ErrNoExtractableText))
		return
	}

	paperID := s.store.AddPaper(sessionID, models.PaperRecord{
		Filename:   filename,
		UploadTime: time.Now(),
		Source:     source,
		Chunks:     chunks,
	})
	s.log.Info("paper ingested",
		zap.String("session_id", sessionID),
		zap.String("filename", filename),
		zap.Int("paper_id", paperID),
		zap.Int("chunks", len(chunks)),
	)
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"message":  fmt.Sprintf("Paper '%s' uploaded successfully", filename),
		"paper_id": paperID,
	})
}

func (s *Server) saveUpload(filename string, data []byte) (string, error) {
	if err := util.EnsureDir(s.cfg.UploadDir); err != nil {
		return "", err
	}
	unique := fmt.Sprintf("%s_%s_%s", time.Now().Format(models.UploadTimeLayout), uuid.NewString()[:8], filename)
	dst := filepath.Join(s.cfg.UploadDir, unique)
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return "", fmt.Errorf("save upload: %w", err)
	}
	return dst, nil
}

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

func (r chatRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.SessionID, validation.Required.Error("Session ID is required")),
		validation.Field(&r.Message, validation.Required.Error("Message cannot be empty")),
	)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	var req chatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}
	req.Message = strings.TrimSpace(req.Message)
	req.SessionID = strings.TrimSpace(req.SessionID)
	if err := req.Validate(); err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}

	reply, err := s.manager.Respond(r.Context(), req.SessionID, req.Message)
	if err != nil {
		// Provider failures surface as a chat response, not an HTTP error.
		writeJSON(w, http.StatusOK, map[string]any{
			"response": fmt.Sprintf("Error getting response: %v", err),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"response": reply})
}

func (s *Server) handleListPapers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	sessionID := strings.TrimSpace(r.URL.Query().Get("session_id"))
	if sessionID == "" {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("Session ID is required"))
		return
	}
	papers := s.store.ListPapers(sessionID)
	if papers == nil {
		papers = []models.PaperSummary{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"papers": papers})
}

type clearSessionRequest struct {
	SessionID string `json:"session_id"`
}

func (r clearSessionRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.SessionID, validation.Required.Error("Session ID is required")),
	)
}

func (s *Server) handleClearSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	var req clearSessionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}
	req.SessionID = strings.TrimSpace(req.SessionID)
	if err := req.Validate(); err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}
	s.store.Clear(req.SessionID)
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Session cleared successfully",
	})
}

func (s *Server) handlePapers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	env, err := s.scholar.SearchWorks(r.Context(), searchParam(r), pageParam(r))
	if err != nil {
		writeErr(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, env)
}

func (s *Server) handleArticles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	env, err := s.scholar.SearchJournals(r.Context(), searchParam(r), pageParam(r))
	if err != nil {
		writeErr(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, env)
}

func (s *Server) handleDatasets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	env, err := s.scholar.SearchDatasets(r.Context(), searchParam(r), pageParam(r))
	if err != nil {
		writeErr(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, env)
}

func (s *Server) handleConceptsAutocomplete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	results, err := s.scholar.AutocompleteConcepts(r.Context(), query)
	if err != nil {
		writeErr(w, http.StatusBadGateway, err)
		return
	}
	if results == nil {
		results = []scholar.Concept{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.scholar.Health(r.Context()))
}

func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func searchParam(r *http.Request) string {
	return strings.TrimSpace(r.URL.Query().Get("search"))
}

func remoteFilename(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || path.Base(u.Path) == "/" || path.Base(u.Path) == "." {
		return "remote.pdf"
	}
	return path.Base(u.Path)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if isTooLarge(err) {
			writeErr(w, http.StatusRequestEntityTooLarge, fmt.Errorf("File is too large"))
			return err
		}
		writeErr(w, http.StatusBadRequest, fmt.Errorf("invalid json: %v", err))
		return err
	}
	return nil
}

func isTooLarge(err error) bool {
	var maxBytesErr *http.MaxBytesError
	return errors.As(err, &maxBytesErr)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]any{"error": err.Error()})
}
