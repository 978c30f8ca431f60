package api

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"

	"docseal/go-backend/internal/cipher"
	"docseal/go-backend/internal/commitment"
	"docseal/go-backend/internal/keyexchange"
	"docseal/go-backend/internal/service"
	"docseal/go-backend/internal/storage"
)

type uploadRequest struct {
	FileName      string `json:"file_name"`
	ContentBase64 string `json:"content_base64"`
}

type shareRequest struct {
	RecipientPublicKey string `json:"recipient_public_key"`
}

type contentResponse struct {
	ContentBase64 string `json:"content_base64"`
}

type verifyRequest struct {
	ContentBase64 string `json:"content_base64"`
}

type verifyResponse struct {
	Valid bool `json:"valid"`
}

type sharesResponse struct {
	Recipients []string `json:"recipients"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.service.Status())
}

func (s *Server) handleListDocuments(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.service.Documents())
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	var req uploadRequest
	if !decodeBody(w, r, &req) {
		return
	}
	plaintext, err := base64.StdEncoding.DecodeString(req.ContentBase64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "content_base64 is not valid base64")
		return
	}
	rec, err := s.service.Upload(req.FileName, plaintext)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleOpen(w http.ResponseWriter, r *http.Request) {
	plaintext, err := s.service.OpenOwned(r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, contentResponse{
		ContentBase64: base64.StdEncoding.EncodeToString(plaintext),
	})
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if !decodeBody(w, r, &req) {
		return
	}
	candidate, err := base64.StdEncoding.DecodeString(req.ContentBase64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "content_base64 is not valid base64")
		return
	}
	valid, err := s.service.Verify(r.PathValue("id"), candidate)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, verifyResponse{Valid: valid})
}

func (s *Server) handleDeactivate(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Deactivate(r.PathValue("id")); err != nil {
		s.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListShares(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, sharesResponse{
		Recipients: s.service.Grants(r.PathValue("id")),
	})
}

func (s *Server) handleShare(w http.ResponseWriter, r *http.Request) {
	var req shareRequest
	if !decodeBody(w, r, &req) {
		return
	}
	grant, err := s.service.Share(r.PathValue("id"), req.RecipientPublicKey)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, grant)
}

func (s *Server) handleRevoke(w http.ResponseWriter, r *http.Request) {
	err := s.service.Revoke(r.PathValue("id"), r.PathValue("commitment"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeServiceError maps core error kinds onto HTTP statuses. Verification
// failures are denials, never retried or detailed further.
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, keyexchange.ErrUnwrapFailed),
		errors.Is(err, cipher.ErrAuthenticationFailed):
		writeError(w, http.StatusForbidden, "access denied")
	case errors.Is(err, storage.ErrRecordNotFound),
		errors.Is(err, storage.ErrGrantNotFound),
		errors.Is(err, storage.ErrBlobNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, service.ErrDocumentRevoked):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, keyexchange.ErrInvalidEncoding),
		errors.Is(err, keyexchange.ErrInvalidKeyLength),
		errors.Is(err, commitment.ErrInvalidEncoding),
		errors.Is(err, cipher.ErrMalformedPayload):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.log.Error("internal error", "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	defer r.Body.Close()
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<20))
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
