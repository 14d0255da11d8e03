package web

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/vbonduro/roomplants/internal/chat"
	"github.com/vbonduro/roomplants/internal/domain"
	"github.com/vbonduro/roomplants/internal/prefs"
)

type promptResponse struct {
	Message string        `json:"message"`
	Buttons []chat.Button `json:"buttons,omitempty"`
}

type cityPageResponse struct {
	Message string `json:"message"`
	chat.CityPage
}

type citySelectedResponse struct {
	City    chat.City `json:"city"`
	Message string    `json:"message"`
}

type environmentSelectedResponse struct {
	Environment domain.Environment `json:"environment"`
	Message     string             `json:"message"`
}

func (s *Server) handleWelcome(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, promptResponse{Message: chat.WelcomeMessage}, s.logger)
}

func (s *Server) handleListCities(w http.ResponseWriter, r *http.Request) {
	page := 0
	if raw := r.URL.Query().Get("page"); raw != "" {
		p, err := strconv.Atoi(raw)
		if err != nil || p < 0 {
			writeError(w, http.StatusBadRequest, "invalid_page", "page must be a non-negative integer", s.logger)
			return
		}
		page = p
	}
	writeJSON(w, http.StatusOK, cityPageResponse{
		Message:  chat.CityPrompt,
		CityPage: chat.Paginate(page, chat.DefaultPerPage),
	}, s.logger)
}

func (s *Server) handleListEnvironments(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, promptResponse{
		Message: chat.EnvironmentPrompt,
		Buttons: chat.EnvironmentButtons(),
	}, s.logger)
}

func (s *Server) handleSetCity(w http.ResponseWriter, r *http.Request) {
	chatID := chi.URLParam(r, "chatID")
	name := r.FormValue("city")
	if strings.TrimSpace(name) == "" {
		writeError(w, http.StatusBadRequest, "city_required", chat.CityPrompt, s.logger)
		return
	}

	city, err := s.service.SetCity(r.Context(), chatID, name)
	if errors.Is(err, chat.ErrCityNotFound) {
		writeError(w, http.StatusBadRequest, "city_not_found", err.Error(), s.logger)
		return
	}
	if err != nil {
		s.writePrefsError(w, "set city failed", chatID, err)
		return
	}

	writeJSON(w, http.StatusOK, citySelectedResponse{City: city, Message: chat.PhotoPrompt}, s.logger)
}

func (s *Server) handleSetEnvironment(w http.ResponseWriter, r *http.Request) {
	chatID := chi.URLParam(r, "chatID")
	raw := strings.ToLower(strings.TrimSpace(r.FormValue("environment")))
	env := domain.Environment(raw)
	if env != domain.Indoor && env != domain.Outdoor {
		writeError(w, http.StatusBadRequest, "invalid_environment", "environment must be indoor or outdoor", s.logger)
		return
	}

	if err := s.service.SetEnvironment(r.Context(), chatID, env); err != nil {
		s.writePrefsError(w, "set environment failed", chatID, err)
		return
	}

	writeJSON(w, http.StatusOK, environmentSelectedResponse{Environment: env, Message: chat.PhotoPrompt}, s.logger)
}

// handleCallback applies a pressed button's data, as produced by the city
// picker or the environment buttons.
func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	chatID := chi.URLParam(r, "chatID")
	cb, err := chat.ParseCallback(r.FormValue("data"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown_callback", err.Error(), s.logger)
		return
	}

	switch cb.Action {
	case chat.ActionCityPage:
		writeJSON(w, http.StatusOK, cityPageResponse{
			Message:  chat.CityPrompt,
			CityPage: chat.Paginate(cb.Page, chat.DefaultPerPage),
		}, s.logger)
	case chat.ActionSelectCity:
		city, err := s.service.SetCity(r.Context(), chatID, cb.Value)
		if err != nil {
			s.writePrefsError(w, "set city failed", chatID, err)
			return
		}
		writeJSON(w, http.StatusOK, citySelectedResponse{City: city, Message: chat.PhotoPrompt}, s.logger)
	case chat.ActionSelectLocation:
		env := domain.Environment(cb.Value)
		if err := s.service.SetEnvironment(r.Context(), chatID, env); err != nil {
			s.writePrefsError(w, "set environment failed", chatID, err)
			return
		}
		writeJSON(w, http.StatusOK, environmentSelectedResponse{Environment: env, Message: chat.PhotoPrompt}, s.logger)
	}
}

// writePrefsError reports a preference store failure. A blank chat id is the
// caller's fault.
func (s *Server) writePrefsError(w http.ResponseWriter, msg, chatID string, err error) {
	if errors.Is(err, prefs.ErrInvalidChatID) {
		writeError(w, http.StatusBadRequest, "invalid_chat_id", err.Error(), s.logger)
		return
	}
	s.logger.Error(msg, "chat_id", chatID, "error", err)
	writeError(w, http.StatusInternalServerError, "internal", chat.GenericErrorMessage, s.logger)
}
