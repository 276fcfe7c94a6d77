package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/policylens/policylens/internal/analyzer"
	"github.com/policylens/policylens/internal/parser"
	"github.com/policylens/policylens/internal/policy"
)

const minPolicyChars = 100

type analyzeRequest struct {
	CompanyName   string     `json:"company_name"`
	PolicyTitle   string     `json:"policy_title"`
	Content       string     `json:"content"`
	Version       string     `json:"version,omitempty"`
	EffectiveDate *time.Time `json:"effective_date,omitempty"`

	MaxChunkSize int `json:"max_chunk_size,omitempty"`
	OverlapSize  int `json:"overlap_size,omitempty"`
}

type analyzeResponse struct {
	ProcessingID   string               `json:"processing_id"`
	Document       *policy.Document     `json:"document"`
	UIComponents   []policy.UIComponent `json:"ui_components"`
	ProcessingTime float64              `json:"processing_time"`
	Timestamp      time.Time            `json:"timestamp"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.CompanyName) == "" {
		jsonError(w, "company_name is required", http.StatusBadRequest)
		return
	}
	s.runAnalysis(w, r, req)
}

func (s *Server) handleAnalyzeFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	companyName := r.FormValue("company_name")
	if companyName == "" {
		jsonError(w, "company_name is required", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !parser.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	p, err := parser.ForFile(filename, parser.Options{PDFFallbackPdftotext: s.cfg.PDFFallbackPdftotext})
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	content, err := p.Parse(bytes.NewReader(data), filename)
	if err != nil {
		jsonError(w, "failed to extract text: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}

	s.runAnalysis(w, r, analyzeRequest{
		CompanyName: companyName,
		PolicyTitle: r.FormValue("policy_title"),
		Content:     content,
		Version:     r.FormValue("version"),
	})
}

func (s *Server) runAnalysis(w http.ResponseWriter, r *http.Request, req analyzeRequest) {
	if len(strings.TrimSpace(req.Content)) < minPolicyChars {
		jsonError(w, fmt.Sprintf("policy content too short, minimum %d characters required", minPolicyChars), http.StatusBadRequest)
		return
	}
	title := req.PolicyTitle
	if title == "" {
		title = "Privacy Policy"
	}

	analysis, err := s.analyzer.ProcessDocument(r.Context(), analyzer.ProcessRequest{
		CompanyName:   req.CompanyName,
		Title:         title,
		Content:       req.Content,
		Version:       req.Version,
		EffectiveDate: req.EffectiveDate,
		MaxChunkSize:  req.MaxChunkSize,
		OverlapSize:   req.OverlapSize,
	})
	if err != nil {
		switch {
		case errors.Is(err, analyzer.ErrNoChunks):
			jsonError(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, analyzer.ErrNoSections):
			jsonError(w, err.Error(), http.StatusBadGateway)
		default:
			s.log.Error("analysis failed", "company", req.CompanyName, "error", err)
			jsonError(w, "internal processing error", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(analyzeResponse{
		ProcessingID:   analysis.ProcessingID,
		Document:       analysis.Document,
		UIComponents:   analysis.Components,
		ProcessingTime: analysis.ProcessingTime.Seconds(),
		Timestamp:      time.Now().UTC(),
	})
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
