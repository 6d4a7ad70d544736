package controllers

import (
	"net/http"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/vittoria-dev/menu-engine/api/responses"
	"github.com/vittoria-dev/menu-engine/api/validators"
	"github.com/vittoria-dev/menu-engine/internal/session"
	"github.com/vittoria-dev/menu-engine/pkg/errors"
	"github.com/vittoria-dev/menu-engine/pkg/logger"
)

// ShortcutController feeds terminal keystrokes to the active session's
// prefix automaton.
type ShortcutController struct {
	manager *session.Manager
	log     *logger.Logger
}

// NewShortcutController wires the shortcut endpoints.
func NewShortcutController(manager *session.Manager, log *logger.Logger) *ShortcutController {
	return &ShortcutController{manager: manager, log: log}
}

type keyPressRequest struct {
	Key string `json:"key" validate:"required"`
}

func (c *ShortcutController) activeSession(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	active := c.manager.ActiveSessionID()
	if active == uuid.Nil {
		responses.WriteError(r.Context(), w, c.log, errors.New(errors.CodeStateConflict, "no active session for shortcuts"))
		return uuid.Nil, false
	}
	return active, true
}

// PressKey feeds one letter to the automaton.
func (c *ShortcutController) PressKey(w http.ResponseWriter, r *http.Request) {
	var req keyPressRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}
	letter, size := utf8.DecodeRuneInString(req.Key)
	if size == 0 || utf8.RuneCountInString(req.Key) != 1 {
		responses.WriteError(r.Context(), w, c.log, errors.New(errors.CodeValidation, "key must be a single character"))
		return
	}

	active, ok := c.activeSession(w, r)
	if !ok {
		return
	}
	result, err := c.manager.PressKey(active, letter)
	if err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}
	responses.WriteSuccess(w, http.StatusOK, result)
}

// Escape discards the automaton's current prefix.
func (c *ShortcutController) Escape(w http.ResponseWriter, r *http.Request) {
	active, ok := c.activeSession(w, r)
	if !ok {
		return
	}
	result, err := c.manager.EscapeKey(active)
	if err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}
	responses.WriteSuccess(w, http.StatusOK, result)
}
