package rest

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/linekeeper/linekeeper/internal/common"
	"github.com/linekeeper/linekeeper/internal/server/auth"
)

type issueTokenRequest struct {
	Identity string `json:"identity" validate:"required,min=1,max=128"`
}

type issueTokenResponse struct {
	Token string `json:"token"`
}

type createLineRequest struct {
	Name string `json:"name" validate:"required,min=1,max=256"`
}

type createLineResponse struct {
	LineID int64 `json:"line_id"`
}

type lineResponse struct {
	LineID       int64     `json:"line_id"`
	Name         string    `json:"name"`
	Creator      string    `json:"creator"`
	CreatedAt    time.Time `json:"created_at"`
	MemberCount  int64     `json:"member_count"`
	MessageCount int64     `json:"message_count"`
}

type countResponse struct {
	Count int64 `json:"count"`
}

type memberResponse struct {
	Member bool `json:"member"`
}

type postMessageRequest struct {
	Ciphertext string `json:"ciphertext" validate:"required"`
}

type postMessageResponse struct {
	Seq int64 `json:"seq"`
}

type messageResponse struct {
	Seq        int64     `json:"seq"`
	Sender     string    `json:"sender"`
	Ciphertext string    `json:"ciphertext"`
	SentAt     time.Time `json:"sent_at"`
}

type secretHandleResponse struct {
	Handle string `json:"handle"`
}

func (s *Server) decode(r *http.Request, req any) error {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		return fmt.Errorf("%w: malformed request body", common.ErrInvalidInput)
	}
	return s.validate.Struct(req)
}

func lineIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "lineID"), 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("%w: line id must be a positive integer", common.ErrInvalidInput)
	}
	return id, nil
}

// issueToken exchanges an identity for a signed bearer token. Identity is
// caller-asserted; the deployment fronts this with its own SSO.
func (s *Server) issueToken(w http.ResponseWriter, r *http.Request) {
	var req issueTokenRequest
	if err := s.decode(r, &req); err != nil {
		respondError(w, s.logger, r, err)
		return
	}

	token, err := auth.GenerateToken(req.Identity, s.jwtSecret, s.tokenValidity)
	if err != nil {
		respondError(w, s.logger, r, err)
		return
	}

	respondJSON(w, http.StatusOK, issueTokenResponse{Token: token})
}

func (s *Server) createLine(w http.ResponseWriter, r *http.Request) {
	var req createLineRequest
	if err := s.decode(r, &req); err != nil {
		respondError(w, s.logger, r, err)
		return
	}

	id, err := s.lines.CreateLine(r.Context(), req.Name, identityFrom(r.Context()))
	if err != nil {
		respondError(w, s.logger, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, createLineResponse{LineID: id})
}

func (s *Server) getLine(w http.ResponseWriter, r *http.Request) {
	id, err := lineIDParam(r)
	if err != nil {
		respondError(w, s.logger, r, err)
		return
	}

	info, err := s.lines.GetLine(r.Context(), id)
	if err != nil {
		respondError(w, s.logger, r, err)
		return
	}

	respondJSON(w, http.StatusOK, lineResponse{
		LineID:       info.ID,
		Name:         info.Name,
		Creator:      info.Creator,
		CreatedAt:    info.CreatedAt,
		MemberCount:  info.MemberCount,
		MessageCount: info.MessageCount,
	})
}

func (s *Server) lineCount(w http.ResponseWriter, r *http.Request) {
	n, err := s.lines.LineCount(r.Context())
	if err != nil {
		respondError(w, s.logger, r, err)
		return
	}
	respondJSON(w, http.StatusOK, countResponse{Count: n})
}

func (s *Server) joinLine(w http.ResponseWriter, r *http.Request) {
	id, err := lineIDParam(r)
	if err != nil {
		respondError(w, s.logger, r, err)
		return
	}

	if err := s.lines.JoinLine(r.Context(), id, identityFrom(r.Context())); err != nil {
		respondError(w, s.logger, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) isMember(w http.ResponseWriter, r *http.Request) {
	id, err := lineIDParam(r)
	if err != nil {
		respondError(w, s.logger, r, err)
		return
	}

	member, err := s.lines.IsMember(r.Context(), id, chi.URLParam(r, "identity"))
	if err != nil {
		respondError(w, s.logger, r, err)
		return
	}

	respondJSON(w, http.StatusOK, memberResponse{Member: member})
}

func (s *Server) postMessage(w http.ResponseWriter, r *http.Request) {
	id, err := lineIDParam(r)
	if err != nil {
		respondError(w, s.logger, r, err)
		return
	}

	var req postMessageRequest
	if err := s.decode(r, &req); err != nil {
		respondError(w, s.logger, r, err)
		return
	}

	ciphertext, err := base64.StdEncoding.DecodeString(req.Ciphertext)
	if err != nil {
		respondError(w, s.logger, r, fmt.Errorf("%w: ciphertext must be base64", common.ErrInvalidInput))
		return
	}

	seq, err := s.lines.PostMessage(r.Context(), id, identityFrom(r.Context()), ciphertext)
	if err != nil {
		respondError(w, s.logger, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, postMessageResponse{Seq: seq})
}

func (s *Server) getMessage(w http.ResponseWriter, r *http.Request) {
	id, err := lineIDParam(r)
	if err != nil {
		respondError(w, s.logger, r, err)
		return
	}

	seq, err := strconv.ParseInt(chi.URLParam(r, "seq"), 10, 64)
	if err != nil || seq < 0 {
		respondError(w, s.logger, r, fmt.Errorf("%w: seq must be a non-negative integer", common.ErrInvalidInput))
		return
	}

	m, err := s.lines.GetMessage(r.Context(), id, seq)
	if err != nil {
		respondError(w, s.logger, r, err)
		return
	}

	respondJSON(w, http.StatusOK, messageResponse{
		Seq:        m.Seq,
		Sender:     m.Sender,
		Ciphertext: base64.StdEncoding.EncodeToString(m.Ciphertext),
		SentAt:     m.SentAt,
	})
}

func (s *Server) messageCount(w http.ResponseWriter, r *http.Request) {
	id, err := lineIDParam(r)
	if err != nil {
		respondError(w, s.logger, r, err)
		return
	}

	n, err := s.lines.MessageCount(r.Context(), id)
	if err != nil {
		respondError(w, s.logger, r, err)
		return
	}

	respondJSON(w, http.StatusOK, countResponse{Count: n})
}

func (s *Server) secretHandle(w http.ResponseWriter, r *http.Request) {
	id, err := lineIDParam(r)
	if err != nil {
		respondError(w, s.logger, r, err)
		return
	}

	handle, err := s.lines.SecretHandle(r.Context(), id, identityFrom(r.Context()))
	if err != nil {
		respondError(w, s.logger, r, err)
		return
	}

	respondJSON(w, http.StatusOK, secretHandleResponse{Handle: string(handle)})
}
