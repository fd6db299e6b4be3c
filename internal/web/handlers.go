package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/clientdesk/clientdesk/internal/client"
	"github.com/clientdesk/clientdesk/internal/importer"
	"github.com/clientdesk/clientdesk/internal/logging"
	"github.com/clientdesk/clientdesk/internal/store"
)

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// handleListClients returns every client record ordered by last name.
func (s *Server) handleListClients(w http.ResponseWriter, r *http.Request) {
	st, err := s.sessions(r.Context())
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, err)
		return
	}
	defer st.Close(r.Context())

	clients, err := st.ListAllOrderedByLastName(r.Context())
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, clients)
}

// handleGetClient returns the record under the card code in the path.
func (s *Server) handleGetClient(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	st, err := s.sessions(r.Context())
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, err)
		return
	}
	defer st.Close(r.Context())

	c, err := st.FindByCode(r.Context(), code)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, err)
		return
	}
	if c == nil {
		respondError(w, r, http.StatusNotFound, store.ErrNotFound)
		return
	}

	writeJSON(w, c)
}

// handleUpdateClient applies a field-wise update to the record under the
// card code in the path. The card code itself is immutable here; a body
// that tries to change it is rejected (use the card-code endpoint).
func (s *Server) handleUpdateClient(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	var c client.Client
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		respondError(w, r, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if c.CardCode != "" && c.CardCode != code {
		respondError(w, r, http.StatusBadRequest,
			errors.New("card code cannot be changed through a field update"))
		return
	}

	if err := normalizeForEdit(&c); err != nil {
		respondError(w, r, http.StatusUnprocessableEntity, err)
		return
	}

	st, err := s.sessions(r.Context())
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, err)
		return
	}
	defer st.Close(r.Context())

	if err := st.UpdateFields(r.Context(), code, &c); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, r, http.StatusNotFound, err)
		} else {
			respondError(w, r, http.StatusInternalServerError, err)
		}
		return
	}
	if err := st.Commit(r.Context()); err != nil {
		respondError(w, r, http.StatusInternalServerError, err)
		return
	}

	c.CardCode = code
	writeJSON(w, &c)
}

// renameRequest is the body for the card-code rename endpoint.
type renameRequest struct {
	CardCode string `json:"card_code"`
}

// handleRenameCardCode reassigns the record under the path code to a new
// card code. The new code must be all digits and must not already belong
// to another record; a collision yields 409 with the conflicting record
// so the caller can roll back its displayed value.
func (s *Server) handleRenameCardCode(w http.ResponseWriter, r *http.Request) {
	oldCode := chi.URLParam(r, "code")

	var req renameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	newCode := strings.TrimSpace(req.CardCode)
	if err := client.ValidateCardCode(newCode); err != nil {
		respondError(w, r, http.StatusUnprocessableEntity, err)
		return
	}

	st, err := s.sessions(r.Context())
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, err)
		return
	}
	defer st.Close(r.Context())

	existing, err := st.FindByCode(r.Context(), oldCode)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, err)
		return
	}
	if existing == nil {
		respondError(w, r, http.StatusNotFound, store.ErrNotFound)
		return
	}

	if newCode == oldCode {
		writeJSON(w, existing)
		return
	}

	occupant, err := st.FindByCode(r.Context(), newCode)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, err)
		return
	}
	if occupant != nil {
		writeJSONStatus(w, http.StatusConflict, map[string]interface{}{
			"error":    "card code already in use",
			"code":     "duplicate_key",
			"existing": occupant,
		})
		return
	}

	if err := st.RenameKey(r.Context(), oldCode, newCode); err != nil {
		respondError(w, r, http.StatusInternalServerError, err)
		return
	}
	if err := st.Commit(r.Context()); err != nil {
		respondError(w, r, http.StatusInternalServerError, err)
		return
	}

	logging.FromContext(r.Context()).Info("card code renamed",
		"old_code", oldCode, "new_code", newCode)

	existing.CardCode = newCode
	writeJSON(w, existing)
}

// handleDeleteClient removes the record under the card code in the path.
func (s *Server) handleDeleteClient(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	st, err := s.sessions(r.Context())
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, err)
		return
	}
	defer st.Close(r.Context())

	if err := st.Delete(r.Context(), code); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, r, http.StatusNotFound, err)
		} else {
			respondError(w, r, http.StatusInternalServerError, err)
		}
		return
	}
	if err := st.Commit(r.Context()); err != nil {
		respondError(w, r, http.StatusInternalServerError, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleImport accepts a multipart .xlsx upload, runs the import pipeline
// against a fresh store session, and returns the run summary.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.Import.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		respondError(w, r, http.StatusRequestEntityTooLarge,
			errors.New("file too large or invalid form"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, r, http.StatusBadRequest, errors.New("no file provided"))
		return
	}
	defer file.Close()

	if ext := strings.ToLower(filepath.Ext(header.Filename)); ext != ".xlsx" {
		respondError(w, r, http.StatusBadRequest,
			fmt.Errorf("unsupported file type %q, expected .xlsx", ext))
		return
	}

	// The workbook reader operates on a path, so spool the upload to disk.
	path, err := spoolUpload(file, header.Filename)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, err)
		return
	}
	defer os.Remove(path)

	st, err := s.sessions(r.Context())
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, err)
		return
	}
	defer st.Close(r.Context())

	result, err := importer.Run(r.Context(), path, st)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, err)
		return
	}
	result.FileName = header.Filename

	writeJSON(w, result)
}

// spoolUpload copies an uploaded file to a temp path and returns the path.
func spoolUpload(src io.Reader, name string) (string, error) {
	tmp, err := os.CreateTemp("", "import-*"+filepath.Ext(name))
	if err != nil {
		return "", fmt.Errorf("spool upload: %w", err)
	}
	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("spool upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("spool upload: %w", err)
	}
	return tmp.Name(), nil
}

// normalizeForEdit applies the same per-field rules the import pipeline
// uses to a record arriving through the edit surface. The phone keeps its
// stored form when already normalized.
func normalizeForEdit(c *client.Client) error {
	c.LastName = strings.TrimSpace(c.LastName)
	c.FirstName = strings.TrimSpace(c.FirstName)
	c.Patronymic = strings.TrimSpace(c.Patronymic)
	c.City = strings.TrimSpace(c.City)
	c.Email = strings.TrimSpace(c.Email)

	if c.LastName == "" {
		return errors.New("last name is required")
	}

	phone, err := client.NormalizePhone(strings.TrimSpace(c.PhoneMobile))
	if err != nil {
		return err
	}
	c.PhoneMobile = phone

	return nil
}
