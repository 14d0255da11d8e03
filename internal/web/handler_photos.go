package web

import (
	"bytes"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vbonduro/roomplants/internal/chat"
	"github.com/vbonduro/roomplants/internal/domain"
	"github.com/vbonduro/roomplants/internal/upload"
)

const maxPhotoSize = 20 * 1024 * 1024 // 20 MB

// Types http.DetectContentType recognizes. WebP has no sniff signature in
// net/http and is matched by isWebP instead.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

func isWebP(data []byte) bool {
	return len(data) >= 12 &&
		string(data[0:4]) == "RIFF" &&
		string(data[8:12]) == "WEBP"
}

// allowedImageMIME sniffs data and reports whether the photo can be staged.
func allowedImageMIME(data []byte) (string, bool) {
	if isWebP(data) {
		return "image/webp", true
	}
	mime := http.DetectContentType(data)
	if allowedImageTypes[mime] {
		return mime, true
	}
	return "", false
}

type recommendationResponse struct {
	Plants  []domain.PlantSuggestion `json:"plants"`
	Error   *string                  `json:"error"`
	Message string                   `json:"message"`
}

func newRecommendationResponse(result domain.RecommendationResult) recommendationResponse {
	resp := recommendationResponse{
		Plants:  result.Plants,
		Message: chat.UserMessage(nil, result),
	}
	if resp.Plants == nil {
		resp.Plants = []domain.PlantSuggestion{}
	}
	if !result.OK() {
		kind := string(result.Error)
		resp.Error = &kind
	}
	return resp
}

func (s *Server) handleUploadPhoto(w http.ResponseWriter, r *http.Request) {
	chatID := chi.URLParam(r, "chatID")

	r.Body = http.MaxBytesReader(w, r.Body, maxPhotoSize+1<<20)
	if err := r.ParseMultipartForm(maxPhotoSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_form", "failed to parse form", s.logger)
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "image_required", "image file required", s.logger)
		return
	}
	defer closeWithLog(file, "upload file", s.logger)

	imageData, err := io.ReadAll(io.LimitReader(file, maxPhotoSize))
	if err != nil {
		s.logger.Error("read upload failed", "chat_id", chatID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal", chat.GenericErrorMessage, s.logger)
		return
	}

	mimeType, ok := allowedImageMIME(imageData)
	if !ok {
		writeError(w, http.StatusBadRequest, "unsupported_image", "unsupported image format", s.logger)
		return
	}

	c, err := s.service.ContextFor(r.Context(), chatID)
	if err != nil {
		s.writePrefsError(w, "load chat context failed", chatID, err)
		return
	}

	key, err := s.photoStore.Save(r.Context(), chatID, mimeType, bytes.NewReader(imageData))
	if err != nil {
		s.logger.Error("stage photo failed", "chat_id", chatID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal", chat.GenericErrorMessage, s.logger)
		return
	}
	defer func() {
		if err := s.photoStore.Delete(r.Context(), key); err != nil {
			s.logger.Error("failed to remove staged photo", "key", key, "error", err)
		}
	}()

	path, err := s.photoStore.Path(key)
	if err != nil {
		s.logger.Error("resolve staged photo failed", "key", key, "error", err)
		writeError(w, http.StatusInternalServerError, "internal", chat.GenericErrorMessage, s.logger)
		return
	}

	result, err := s.service.HandleIncomingPhoto(r.Context(), path, c)
	if err != nil {
		code := "analysis_failed"
		if upload.KindOf(err) != "" {
			code = "upload_failed"
		}
		writeError(w, http.StatusBadGateway, code, chat.UserMessage(err, result), s.logger)
		return
	}

	writeJSON(w, http.StatusOK, newRecommendationResponse(result), s.logger)
}
