package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/semenovdl/recallbot/internal/domain"
	"github.com/semenovdl/recallbot/internal/service/review"
)

// cardService defines the minimal interface needed by CardsHandler.
type cardService interface {
	RegisterCard(ctx context.Context, input review.RegisterCardInput) (domain.Card, error)
	GetCard(ctx context.Context, cardID uuid.UUID) (domain.Card, error)
	ListCards(ctx context.Context, input review.ListCardsInput) ([]domain.Card, error)
	DeleteCard(ctx context.Context, cardID uuid.UUID) error
	ApplyReview(ctx context.Context, input review.ApplyReviewInput) (domain.Card, error)
	Acknowledge(ctx context.Context, input review.AcknowledgeInput) error
	CardHistory(ctx context.Context, input review.CardHistoryInput) ([]domain.ReviewEvent, error)
	Stats(ctx context.Context) (domain.CardStats, error)
}

// CardsHandler serves the card REST endpoints.
type CardsHandler struct {
	svc cardService
	log *slog.Logger
}

// NewCardsHandler creates a CardsHandler.
func NewCardsHandler(svc cardService, logger *slog.Logger) *CardsHandler {
	return &CardsHandler{svc: svc, log: logger.With("handler", "cards")}
}

type registerCardRequest struct {
	Content string `json:"content"`
}

type reviewRequest struct {
	CardID  string `json:"card_id"`
	Outcome string `json:"outcome"`
}

type cardResponse struct {
	ID               string     `json:"id"`
	Content          string     `json:"content"`
	IntervalSeconds  int64      `json:"intervalSeconds"`
	LastReviewedAt   *time.Time `json:"lastReviewedAt,omitempty"`
	NextDueAt        time.Time  `json:"nextDueAt"`
	LastOutcome      *string    `json:"lastOutcome,omitempty"`
	DeliveryState    string     `json:"deliveryState"`
	DeliveryAttempts int        `json:"deliveryAttempts"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

type eventResponse struct {
	ID                       string    `json:"id"`
	CardID                   string    `json:"cardId"`
	Outcome                  string    `json:"outcome"`
	ResultingIntervalSeconds int64     `json:"resultingIntervalSeconds"`
	ReviewedAt               time.Time `json:"reviewedAt"`
}

type statsResponse struct {
	Total   int `json:"total"`
	Due     int `json:"due"`
	Overdue int `json:"overdue"`
}

// Register handles POST /api/cards.
func (h *CardsHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.svc.RegisterCard(r.Context(), review.RegisterCardInput{Content: req.Content})
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toCardResponse(created))
}

// Get handles GET /api/cards/{id}.
func (h *CardsHandler) Get(w http.ResponseWriter, r *http.Request) {
	cardID, ok := pathCardID(w, r)
	if !ok {
		return
	}

	c, err := h.svc.GetCard(r.Context(), cardID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toCardResponse(c))
}

// List handles GET /api/cards.
func (h *CardsHandler) List(w http.ResponseWriter, r *http.Request) {
	input, err := parseListInput(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	cards, err := h.svc.ListCards(r.Context(), input)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	out := make([]cardResponse, 0, len(cards))
	for _, c := range cards {
		out = append(out, toCardResponse(c))
	}

	writeJSON(w, http.StatusOK, map[string]any{"cards": out})
}

// Delete handles DELETE /api/cards/{id}.
func (h *CardsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	cardID, ok := pathCardID(w, r)
	if !ok {
		return
	}

	if err := h.svc.DeleteCard(r.Context(), cardID); err != nil {
		h.handleError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Review handles POST /api/review.
func (h *CardsHandler) Review(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cardID, err := uuid.Parse(req.CardID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid card_id")
		return
	}

	updated, err := h.svc.ApplyReview(r.Context(), review.ApplyReviewInput{
		CardID:  cardID,
		Outcome: domain.ReviewOutcome(req.Outcome),
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toCardResponse(updated))
}

// Acknowledge handles POST /api/cards/{id}/ack.
func (h *CardsHandler) Acknowledge(w http.ResponseWriter, r *http.Request) {
	cardID, ok := pathCardID(w, r)
	if !ok {
		return
	}

	if err := h.svc.Acknowledge(r.Context(), review.AcknowledgeInput{CardID: cardID}); err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// History handles GET /api/cards/{id}/history.
func (h *CardsHandler) History(w http.ResponseWriter, r *http.Request) {
	cardID, ok := pathCardID(w, r)
	if !ok {
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	events, err := h.svc.CardHistory(r.Context(), review.CardHistoryInput{CardID: cardID, Limit: limit})
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	out := make([]eventResponse, 0, len(events))
	for _, ev := range events {
		out = append(out, eventResponse{
			ID:                       ev.ID.String(),
			CardID:                   ev.CardID.String(),
			Outcome:                  string(ev.Outcome),
			ResultingIntervalSeconds: int64(ev.ResultingInterval.Seconds()),
			ReviewedAt:               ev.ReviewedAt,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"events": out})
}

// Stats handles GET /api/stats.
func (h *CardsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, statsResponse{
		Total:   stats.Total,
		Due:     stats.Due,
		Overdue: stats.Overdue,
	})
}

func (h *CardsHandler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrAlreadyExists), errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, "conflict")
	default:
		h.log.ErrorContext(r.Context(), "internal error", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// pathCardID parses the {id} path segment; writes a 400 on failure.
func pathCardID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid card id")
		return uuid.Nil, false
	}
	return id, true
}

func parseListInput(r *http.Request) (review.ListCardsInput, error) {
	q := r.URL.Query()
	var input review.ListCardsInput

	if raw := q.Get("state"); raw != "" {
		state := domain.DeliveryState(raw)
		input.State = &state
	}
	if raw := q.Get("due_before"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return input, errors.New("invalid due_before, want RFC 3339")
		}
		input.DueBefore = &t
	}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return input, errors.New("invalid limit")
		}
		input.Limit = n
	}
	if raw := q.Get("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return input, errors.New("invalid offset")
		}
		input.Offset = n
	}
	input.SortBy = q.Get("sort_by")
	input.SortDesc = q.Get("order") == "desc"

	return input, nil
}

func toCardResponse(c domain.Card) cardResponse {
	resp := cardResponse{
		ID:               c.ID.String(),
		Content:          c.Content,
		IntervalSeconds:  int64(c.Interval.Seconds()),
		LastReviewedAt:   c.LastReviewedAt,
		NextDueAt:        c.NextDueAt,
		DeliveryState:    string(c.DeliveryState),
		DeliveryAttempts: c.DeliveryAttempts,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
	if c.LastOutcome != nil {
		o := string(*c.LastOutcome)
		resp.LastOutcome = &o
	}
	return resp
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
