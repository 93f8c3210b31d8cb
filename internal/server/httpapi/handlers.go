package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/avoronov/storebox/internal/common"
	"github.com/avoronov/storebox/internal/filex"
	"github.com/avoronov/storebox/internal/server/auth"
	"github.com/avoronov/storebox/internal/server/models"
	"github.com/avoronov/storebox/internal/server/repositories/files"
)

// maxUploadBytes caps a single multipart upload at 50 MiB, matching the
// client-side limit of the web frontend.
const maxUploadBytes = 50 << 20

type fileResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Type         string    `json:"type"`
	Extension    string    `json:"extension"`
	URL          string    `json:"url"`
	Size         int64     `json:"size"`
	Owner        string    `json:"owner"`
	AccountID    string    `json:"accountId"`
	Users        []string  `json:"users"`
	BucketFileID string    `json:"bucketFileId"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type ownerResponse struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Avatar   string `json:"avatar"`
}

type enrichedFileResponse struct {
	fileResponse
	Owner ownerResponse `json:"owner"`
}

type userResponse struct {
	ID        string    `json:"id"`
	AccountID string    `json:"accountId"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
	Avatar    string    `json:"avatar"`
	CreatedAt time.Time `json:"createdAt"`
}

type categoryUsageResponse struct {
	Size           int64      `json:"size"`
	LatestModified *time.Time `json:"latestModified"`
}

type usageResponse struct {
	Categories map[string]categoryUsageResponse `json:"categories"`
	Used       int64                            `json:"used"`
	Capacity   int64                            `json:"capacity"`
}

func toFileResponse(f *models.File) fileResponse {
	users := f.Users
	if users == nil {
		users = []string{}
	}
	return fileResponse{
		ID:           f.ID,
		Name:         f.Name,
		Type:         string(f.Type),
		Extension:    f.Extension,
		URL:          f.URL,
		Size:         f.Size,
		Owner:        f.Owner,
		AccountID:    f.AccountID,
		Users:        users,
		BucketFileID: f.BucketFileID,
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{
		ID:        u.ID,
		AccountID: u.AccountID,
		FullName:  u.FullName,
		Email:     u.Email,
		Avatar:    u.Avatar,
		CreatedAt: u.CreatedAt,
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error(r.Context(), "Error writing response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, common.ErrUnauthorized), errors.Is(err, common.ErrInvalidToken):
		status = http.StatusUnauthorized
	case errors.Is(err, common.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, common.ErrInvalidSortField):
		status = http.StatusBadRequest
	}
	s.writeJSON(w, r, status, map[string]string{"error": err.Error()})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FullName  string `json:"fullName"`
		Email     string `json:"email"`
		AccountID string `json:"accountId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, r, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Email == "" {
		s.writeJSON(w, r, http.StatusBadRequest, map[string]string{"error": "email is required"})
		return
	}

	user, err := s.users.Register(r.Context(), req.FullName, req.Email, req.AccountID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	principal := models.Principal{ID: user.ID, AccountID: user.AccountID, Email: user.Email}
	token, err := auth.GenerateToken(principal, s.jwtSecret, s.tokenValidity)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, r, http.StatusOK, map[string]any{
		"user":        toUserResponse(user),
		"accessToken": token,
	})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	principal := principalFromContext(r.Context())

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.writeJSON(w, r, http.StatusBadRequest, map[string]string{"error": "invalid multipart form"})
		return
	}
	part, header, err := r.FormFile("file")
	if err != nil {
		s.writeJSON(w, r, http.StatusBadRequest, map[string]string{"error": "file part is required"})
		return
	}
	defer part.Close()

	data, err := io.ReadAll(io.LimitReader(part, maxUploadBytes+1))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if len(data) > maxUploadBytes {
		s.writeJSON(w, r, http.StatusRequestEntityTooLarge, map[string]string{"error": "file exceeds upload limit"})
		return
	}

	file, err := s.files.Upload(r.Context(), principal, data, header.Filename)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, r, http.StatusCreated, toFileResponse(file))
}

func parseListOptions(r *http.Request) files.ListOptions {
	query := r.URL.Query()

	opts := files.ListOptions{
		Search: query.Get("search"),
		Sort:   files.ParseSort(query.Get("sort")),
	}

	for _, raw := range query["type"] {
		for _, value := range strings.Split(raw, ",") {
			value = strings.TrimSpace(value)
			if filex.Valid(value) {
				opts.Types = append(opts.Types, filex.Category(value))
			}
		}
	}

	if limit, err := strconv.Atoi(query.Get("limit")); err == nil && limit > 0 {
		opts.Limit = limit
	}

	return opts
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	principal := principalFromContext(r.Context())

	result, err := s.files.List(r.Context(), principal, parseListOptions(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	response := make([]enrichedFileResponse, 0, len(result))
	for _, f := range result {
		response = append(response, enrichedFileResponse{
			fileResponse: toFileResponse(&f.File),
			Owner: ownerResponse{
				FullName: f.OwnerInfo.FullName,
				Email:    f.OwnerInfo.Email,
				Avatar:   f.OwnerInfo.Avatar,
			},
		})
	}

	s.writeJSON(w, r, http.StatusOK, map[string]any{
		"total": len(response),
		"files": response,
	})
}

func (s *Server) handleRename(w http.ResponseWriter, r *http.Request) {
	principal := principalFromContext(r.Context())
	fileID := chi.URLParam(r, "id")

	var req struct {
		Name      string `json:"name"`
		Extension string `json:"extension"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, r, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	file, err := s.files.Rename(r.Context(), principal, fileID, req.Name, req.Extension)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, r, http.StatusOK, toFileResponse(file))
}

func (s *Server) handleUpdateSharing(w http.ResponseWriter, r *http.Request) {
	principal := principalFromContext(r.Context())
	fileID := chi.URLParam(r, "id")

	var req struct {
		Emails []string `json:"emails"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, r, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	file, err := s.files.UpdateSharing(r.Context(), principal, fileID, req.Emails)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, r, http.StatusOK, toFileResponse(file))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	principal := principalFromContext(r.Context())
	fileID := chi.URLParam(r, "id")
	bucketFileID := r.URL.Query().Get("bucketFileId")

	if err := s.files.Delete(r.Context(), principal, fileID, bucketFileID); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, r, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleUsage(w http.ResponseWriter, r *http.Request) {
	principal := principalFromContext(r.Context())

	report, err := s.files.Usage(r.Context(), principal)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	categories := make(map[string]categoryUsageResponse, len(report.Categories))
	for category, usage := range report.Categories {
		categories[string(category)] = categoryUsageResponse{
			Size:           usage.Size,
			LatestModified: usage.LatestModified,
		}
	}

	s.writeJSON(w, r, http.StatusOK, usageResponse{
		Categories: categories,
		Used:       report.Used,
		Capacity:   report.Capacity,
	})
}

func (s *Server) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	principal := principalFromContext(r.Context())

	user, err := s.users.CurrentUser(r.Context(), principal)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, r, http.StatusOK, toUserResponse(user))
}
