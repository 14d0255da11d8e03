package web

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/vbonduro/roomplants/internal/chat"
	"github.com/vbonduro/roomplants/internal/domain"
	"github.com/vbonduro/roomplants/internal/service"
)

const (
	defaultSuggestions = 2
	maxSuggestions     = 10
)

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	env := domain.ParseEnvironment(q.Get("environment"))

	count := defaultSuggestions
	if raw := q.Get("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxSuggestions {
			writeError(w, http.StatusBadRequest, "invalid_count", "count must be between 1 and 10", s.logger)
			return
		}
		count = n
	}

	result, err := s.service.SuggestFromCatalog(r.Context(), env, count)
	if errors.Is(err, service.ErrCatalogUnavailable) {
		writeError(w, http.StatusServiceUnavailable, "catalog_unavailable", err.Error(), s.logger)
		return
	}
	if err != nil {
		s.logger.Error("catalog suggestion failed", "environment", env, "error", err)
		writeError(w, http.StatusInternalServerError, "internal", chat.GenericErrorMessage, s.logger)
		return
	}

	writeJSON(w, http.StatusOK, newRecommendationResponse(result), s.logger)
}
