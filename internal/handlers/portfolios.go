package handlers

import (
	"context"
	"encoding/base64"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"portfolio-api/internal/apperrors"
	"portfolio-api/internal/notify"
	"portfolio-api/internal/portfolio"

	"github.com/aws/aws-lambda-go/events"
)

// MsgMissingID is returned when the path carries no id.
const MsgMissingID = "Missing id parameter"

// Store is the storage the handlers need. *db.PortfolioStore implements it.
type Store interface {
	Put(ctx context.Context, p portfolio.Portfolio) error
	Get(ctx context.Context, id string) (portfolio.Portfolio, error)
	Scan(ctx context.Context) ([]portfolio.Portfolio, error)
	Update(ctx context.Context, id string, in portfolio.UpdateInput, updatedAt string) (portfolio.Portfolio, error)
	Delete(ctx context.Context, id string) error
}

// Portfolios holds the five portfolio handlers. Each one turns a single
// request into at most one mutation; update and delete read first to
// answer 404, which is not atomic with the write that follows.
type Portfolios struct {
	store     Store
	validator *portfolio.Validator
	notifier  notify.Notifier
	log       *slog.Logger
	now       func() time.Time
}

// NewPortfolios wires the handlers. A nil notifier disables change events.
func NewPortfolios(store Store, validator *portfolio.Validator, notifier notify.Notifier, log *slog.Logger) *Portfolios {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Portfolios{
		store:     store,
		validator: validator,
		notifier:  notifier,
		log:       log,
		now:       time.Now,
	}
}

// Create handles POST /portfolios.
func (h *Portfolios) Create(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	body, err := requestBody(req)
	if err != nil {
		return errResp(http.StatusBadRequest, portfolio.MsgInvalidPayload)
	}

	in, err := h.validator.ParseCreate(body)
	if err != nil {
		h.log.Debug("create rejected", "error", err)
		return errorResp(err)
	}

	p := portfolio.New(in, h.now())
	if err := h.store.Put(ctx, p); err != nil {
		h.log.Error("error creating portfolio", "id", p.ID, "error", err)
		return errorResp(err)
	}

	h.publish(ctx, notify.EventCreated, p.ID, &p)
	return jsonResp(http.StatusCreated, p)
}

// GetOne handles GET /portfolios/{id}.
func (h *Portfolios) GetOne(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	id, ok := pathID(req)
	if !ok {
		return errResp(http.StatusBadRequest, MsgMissingID)
	}

	p, err := h.store.Get(ctx, id)
	if err != nil {
		h.logFailure("error getting portfolio", id, err)
		return errorResp(err)
	}
	return jsonResp(http.StatusOK, p)
}

// GetAll handles GET /portfolios. The list is a single unpaginated scan.
func (h *Portfolios) GetAll(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	items, err := h.store.Scan(ctx)
	if err != nil {
		h.log.Error("error scanning portfolios", "error", err)
		return errorResp(err)
	}
	if items == nil {
		items = []portfolio.Portfolio{}
	}
	return jsonResp(http.StatusOK, items)
}

// Update handles PUT /portfolios/{id}: validate, check existence, then set
// the provided fields and updatedAt.
func (h *Portfolios) Update(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	id, ok := pathID(req)
	if !ok {
		return errResp(http.StatusBadRequest, MsgMissingID)
	}

	body, err := requestBody(req)
	if err != nil {
		return errResp(http.StatusBadRequest, portfolio.MsgInvalidPayload)
	}

	in, err := h.validator.ParseUpdate(body)
	if err != nil {
		h.log.Debug("update rejected", "id", id, "error", err)
		return errorResp(err)
	}

	if in.IsEmpty() {
		h.log.Debug("update carries no fields, refreshing updatedAt only", "id", id)
	}

	existing, err := h.store.Get(ctx, id)
	if err != nil {
		h.logFailure("error updating portfolio", id, err)
		return errorResp(err)
	}

	updated, err := h.store.Update(ctx, id, in, nextUpdatedAt(existing.UpdatedAt, h.now()))
	if err != nil {
		h.log.Error("error updating portfolio", "id", id, "error", err)
		return errorResp(err)
	}

	h.publish(ctx, notify.EventUpdated, id, &updated)
	return jsonResp(http.StatusOK, updated)
}

// Delete handles DELETE /portfolios/{id}.
func (h *Portfolios) Delete(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	id, ok := pathID(req)
	if !ok {
		return errResp(http.StatusBadRequest, MsgMissingID)
	}

	if _, err := h.store.Get(ctx, id); err != nil {
		h.logFailure("error deleting portfolio", id, err)
		return errorResp(err)
	}

	if err := h.store.Delete(ctx, id); err != nil {
		h.log.Error("error deleting portfolio", "id", id, "error", err)
		return errorResp(err)
	}

	h.publish(ctx, notify.EventDeleted, id, nil)
	return noContent()
}

func (h *Portfolios) publish(ctx context.Context, eventType, id string, p *portfolio.Portfolio) {
	if err := h.notifier.Notify(ctx, eventType, id, p); err != nil {
		h.log.Warn("change event not published", "type", eventType, "id", id, "error", err)
	}
}

// logFailure keeps not-found lookups out of the error log.
func (h *Portfolios) logFailure(msg, id string, err error) {
	if apperrors.IsNotFound(err) {
		h.log.Debug(msg, "id", id, "error", err)
		return
	}
	h.log.Error(msg, "id", id, "error", err)
}

// nextUpdatedAt never moves updatedAt backwards, even if this instance's
// clock is behind the one that wrote prev.
func nextUpdatedAt(prev string, now time.Time) string {
	ts := portfolio.Timestamp(now)
	if prev > ts {
		return prev
	}
	return ts
}

func pathID(req events.APIGatewayV2HTTPRequest) (string, bool) {
	id := strings.TrimSpace(req.PathParameters["id"])
	return id, id != ""
}

func requestBody(req events.APIGatewayV2HTTPRequest) ([]byte, error) {
	if req.IsBase64Encoded {
		return base64.StdEncoding.DecodeString(req.Body)
	}
	return []byte(req.Body), nil
}
