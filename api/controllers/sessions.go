package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vittoria-dev/menu-engine/api/middleware"
	"github.com/vittoria-dev/menu-engine/api/responses"
	"github.com/vittoria-dev/menu-engine/api/validators"
	"github.com/vittoria-dev/menu-engine/internal/catalog"
	"github.com/vittoria-dev/menu-engine/internal/pricing"
	"github.com/vittoria-dev/menu-engine/internal/session"
	"github.com/vittoria-dev/menu-engine/internal/split"
	"github.com/vittoria-dev/menu-engine/pkg/enums"
	"github.com/vittoria-dev/menu-engine/pkg/errors"
	"github.com/vittoria-dev/menu-engine/pkg/logger"
)

// SessionController exposes the customization session lifecycle.
type SessionController struct {
	manager *session.Manager
	catalog catalog.Provider
	log     *logger.Logger
}

// NewSessionController wires the session endpoints.
func NewSessionController(manager *session.Manager, provider catalog.Provider, log *logger.Logger) *SessionController {
	return &SessionController{manager: manager, catalog: provider, log: log}
}

type openSessionRequest struct {
	ProductID string `json:"productId" validate:"required,uuid"`
}

type selectSizeRequest struct {
	SizeID string `json:"sizeId" validate:"required,uuid"`
}

type quantityRequest struct {
	Op string `json:"op" validate:"required,oneof=increment decrement"`
}

type noteRequest struct {
	Note string `json:"note" validate:"max=200"`
}

type commitRequest struct {
	SplitWithSessionID *string `json:"splitWithSessionId,omitempty" validate:"omitempty,uuid"`
}

type sessionView struct {
	ID                   uuid.UUID                    `json:"id"`
	State                enums.SessionState           `json:"state"`
	Product              *catalog.Product             `json:"product"`
	Sizes                []catalog.SizeAssignment     `json:"sizes"`
	IncludedIngredients  []catalog.IncludedIngredient `json:"includedIngredients"`
	SelectedSizeID       *uuid.UUID                   `json:"selectedSizeId,omitempty"`
	AddedIngredients     []pricing.SelectedExtra      `json:"addedIngredients"`
	RemovedIngredientIDs []uuid.UUID                  `json:"removedIngredientIds"`
	Quantity             int                          `json:"quantity"`
	Note                 string                       `json:"note,omitempty"`
	LineTotal            decimal.Decimal              `json:"lineTotal"`
	SplitAvailable       bool                         `json:"splitAvailable"`
}

func viewOf(m *session.Machine) sessionView {
	view := sessionView{
		ID:                   m.ID(),
		State:                m.State(),
		Product:              m.Product(),
		Sizes:                m.Sizes(),
		IncludedIngredients:  m.IncludedIngredients(),
		AddedIngredients:     m.AddedExtras(),
		RemovedIngredientIDs: m.RemovedIngredientIDs(),
		Quantity:             m.Quantity(),
		Note:                 m.Note(),
		LineTotal:            m.LineTotal().Round(2),
		SplitAvailable:       split.IsSplitAllowed(m.Product(), m.SelectedSize()),
	}
	if selected := m.SelectedSize(); selected != nil {
		view.SelectedSizeID = &selected.SizeID
	}
	return view
}

func (c *SessionController) operatorID(r *http.Request) string {
	if claims := middleware.ClaimsFromContext(r.Context()); claims != nil {
		return claims.OperatorID.String()
	}
	return ""
}

func sessionIDParam(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "sessionID")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errors.New(errors.CodeValidation, "sessionID must be a valid uuid")
	}
	return id, nil
}

func ingredientIDParam(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "ingredientID")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errors.New(errors.CodeValidation, "ingredientID must be a valid uuid")
	}
	return id, nil
}

// Open starts a session over one product.
func (c *SessionController) Open(w http.ResponseWriter, r *http.Request) {
	var req openSessionRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		responses.WriteError(r.Context(), w, c.log, errors.New(errors.CodeValidation, "productId must be a valid uuid"))
		return
	}
	machine, err := c.manager.Open(r.Context(), productID, c.operatorID(r))
	if err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}
	responses.WriteSuccess(w, http.StatusCreated, viewOf(machine))
}

// Get returns the session's state and live quote.
func (c *SessionController) Get(w http.ResponseWriter, r *http.Request) {
	c.withSession(w, r, func(m *session.Machine) error { return nil })
}

// SelectSize chooses a size assignment.
func (c *SessionController) SelectSize(w http.ResponseWriter, r *http.Request) {
	var req selectSizeRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}
	sizeID, _ := uuid.Parse(req.SizeID)
	c.withSession(w, r, func(m *session.Machine) error {
		return m.SelectSize(sizeID)
	})
}

// ToggleIncluded flips an included ingredient's removal flag.
func (c *SessionController) ToggleIncluded(w http.ResponseWriter, r *http.Request) {
	ingredientID, err := ingredientIDParam(r)
	if err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}
	c.withSession(w, r, func(m *session.Machine) error {
		return m.ToggleIncluded(ingredientID)
	})
}

// ToggleExtra adds or removes a priced extra.
func (c *SessionController) ToggleExtra(w http.ResponseWriter, r *http.Request) {
	ingredientID, err := ingredientIDParam(r)
	if err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}
	c.withSession(w, r, func(m *session.Machine) error {
		return m.ToggleExtra(ingredientID)
	})
}

// AdjustQuantity increments or decrements the line quantity.
func (c *SessionController) AdjustQuantity(w http.ResponseWriter, r *http.Request) {
	var req quantityRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}
	op, err := enums.ParseQuantityOp(req.Op)
	if err != nil {
		responses.WriteError(r.Context(), w, c.log, errors.Wrap(errors.CodeValidation, err, "invalid quantity op"))
		return
	}
	c.withSession(w, r, func(m *session.Machine) error {
		return m.AdjustQuantity(op)
	})
}

// SetNote stores the operator note.
func (c *SessionController) SetNote(w http.ResponseWriter, r *http.Request) {
	var req noteRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}
	c.withSession(w, r, func(m *session.Machine) error {
		return m.SetNote(req.Note)
	})
}

// Activate scopes the keyboard automaton to this session.
func (c *SessionController) Activate(w http.ResponseWriter, r *http.Request) {
	sessionID, err := sessionIDParam(r)
	if err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}
	if err := c.manager.Activate(sessionID); err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}
	machine, err := c.manager.Get(r.Context(), sessionID)
	if err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}
	responses.WriteSuccess(w, http.StatusOK, viewOf(machine))
}

// Commit finalizes the session, optionally as a split with a second one.
func (c *SessionController) Commit(w http.ResponseWriter, r *http.Request) {
	sessionID, err := sessionIDParam(r)
	if err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}
	var req commitRequest
	if err := validators.DecodeJSONBodyAllowEmpty(r, &req); err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}
	var splitWith *uuid.UUID
	if req.SplitWithSessionID != nil {
		id, parseErr := uuid.Parse(*req.SplitWithSessionID)
		if parseErr != nil {
			responses.WriteError(r.Context(), w, c.log, errors.New(errors.CodeValidation, "splitWithSessionId must be a valid uuid"))
			return
		}
		splitWith = &id
	}
	item, err := c.manager.Commit(r.Context(), sessionID, splitWith)
	if err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}
	responses.WriteSuccess(w, http.StatusOK, item)
}

// Cancel discards the session.
func (c *SessionController) Cancel(w http.ResponseWriter, r *http.Request) {
	sessionID, err := sessionIDParam(r)
	if err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}
	if err := c.manager.Cancel(sessionID); err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}
	responses.WriteSuccess(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

// Recommendations returns the best-effort suggestion list for the
// session's product.
func (c *SessionController) Recommendations(w http.ResponseWriter, r *http.Request) {
	sessionID, err := sessionIDParam(r)
	if err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}
	machine, err := c.manager.Get(r.Context(), sessionID)
	if err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}
	recommended, err := c.catalog.GetRecommendedIngredients(r.Context(), machine.Product().ID)
	if err != nil {
		// Recommendations are best-effort; degrade to an empty list.
		recommended = []catalog.RecommendedIngredient{}
	}
	responses.WriteSuccess(w, http.StatusOK, recommended)
}

func (c *SessionController) withSession(w http.ResponseWriter, r *http.Request, mutate func(*session.Machine) error) {
	sessionID, err := sessionIDParam(r)
	if err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}
	machine, err := c.manager.Get(r.Context(), sessionID)
	if err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}
	if err := mutate(machine); err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}
	responses.WriteSuccess(w, http.StatusOK, viewOf(machine))
}
