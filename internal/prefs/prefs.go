package prefs

import (
	"context"
	"errors"
	"strings"

	"github.com/vbonduro/roomplants/internal/domain"
)

var ErrInvalidChatID = errors.New("chat id is required")

// Preferences holds what a chat has selected so far. Empty fields mean the
// chat has not chosen yet.
type Preferences struct {
	City        string             `json:"city"`
	Environment domain.Environment `json:"environment"`
}

type Store interface {
	Get(ctx context.Context, chatID string) (Preferences, error)
	SetCity(ctx context.Context, chatID, city string) error
	SetEnvironment(ctx context.Context, chatID string, env domain.Environment) error
}

func checkChatID(chatID string) error {
	if strings.TrimSpace(chatID) == "" {
		return ErrInvalidChatID
	}
	return nil
}
