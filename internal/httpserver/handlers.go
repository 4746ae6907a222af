package httpserver

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	"github.com/robalobadob/wordle-api/internal/game"
)

// guessReq is the body of POST /game/{id}/guess.
type guessReq struct {
	Letters []string `json:"letters"`
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	g, err := s.svc.CreateGame(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, toDTO(g, s.opts.MaxAttempts))
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	g, err := s.svc.GetGame(r.Context(), game.ID(chi.URLParam(r, "id")))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toDTO(g, s.opts.MaxAttempts))
}

func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, r, http.StatusBadRequest, errorBody{Code: "BAD_JSON", Message: err.Error()})
		return
	}
	g, err := s.svc.Guess(r.Context(), game.ID(chi.URLParam(r, "id")), req.Letters)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toDTO(g, s.opts.MaxAttempts))
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeError maps domain kinds to statuses; anything else is a 500 whose
// details stay in the log.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind, ok := game.KindOf(err)
	if !ok {
		hlog.FromRequest(r).Error().Err(err).Msg("request failed")
		writeJSON(w, r, http.StatusInternalServerError, errorBody{Code: "INTERNAL", Message: "internal error"})
		return
	}

	var status int
	switch kind {
	case game.KindNotFound:
		status = http.StatusNotFound
	case game.KindInvalidLetter, game.KindInvalidLength, game.KindGameFinished:
		status = http.StatusBadRequest
	default:
		status = http.StatusInternalServerError
	}
	writeJSON(w, r, status, errorBody{Code: kind.String(), Message: err.Error()})
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		hlog.FromRequest(r).Warn().Err(err).Msg("write response")
	}
}
