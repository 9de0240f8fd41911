package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/B3hnamR/viranumpro/internal/adapter/fivesim"
	"github.com/B3hnamR/viranumpro/internal/catalog"
	domainErrors "github.com/B3hnamR/viranumpro/internal/domain/errors"
	"github.com/B3hnamR/viranumpro/internal/domain/model"
	"github.com/B3hnamR/viranumpro/internal/domain/repository"
)

// PurchaseProvider is the provider operation the wizard needs.
type PurchaseProvider interface {
	BuyActivation(ctx context.Context, country, operator, product string, opts fivesim.BuyOptions) (*fivesim.Order, error)
}

// Enroller registers freshly purchased orders for background tracking.
type Enroller interface {
	Enroll(order *model.Order)
}

// StepResult is the wizard's answer to one user interaction.
type StepResult struct {
	State     model.WizardState
	Prompt    string
	ErrorHint string
	Warning   string
	Order     *model.Order
}

const (
	promptProduct  = "Enter product name (e.g., telegram):"
	promptCountry  = "Enter country key or 'any':"
	promptOperator = "Enter operator (e.g., beeline) or 'any':"
	promptMaxPrice = "Enter max price (number) or 'skip':"
)

// userMessages translates provider business errors for the chat user.
var userMessages = map[fivesim.ErrorCode]string{
	fivesim.ErrCodeInsufficientBalance: "Not enough balance on the provider account.",
	fivesim.ErrCodeInsufficientRating:  "Provider account rating is too low for this purchase.",
	fivesim.ErrCodeSelectCountry:       "A specific country must be selected for this product.",
	fivesim.ErrCodeSelectOperator:      "A specific operator must be selected for this product.",
	fivesim.ErrCodeBadCountry:          "The provider does not know this country.",
	fivesim.ErrCodeBadOperator:         "The provider does not know this operator.",
	fivesim.ErrCodeNoProduct:           "The provider does not sell this product.",
	fivesim.ErrCodeNoFreePhones:        "No free numbers match these options right now.",
	fivesim.ErrCodeServerOffline:       "The provider is temporarily offline. Please try again later.",
}

// WizardUseCase drives per-owner purchase dialogues. Interactions for one
// owner are serialized; different owners proceed concurrently.
type WizardUseCase struct {
	catalog     catalog.Provider
	provider    PurchaseProvider
	registry    repository.OrderRepository
	enroller    Enroller
	idleTimeout time.Duration
	logger      *slog.Logger
	now         func() time.Time

	mu    sync.Mutex
	slots map[int64]*ownerSlot
}

type ownerSlot struct {
	mu      sync.Mutex
	session *model.WizardSession
}

// NewWizardUseCase constructs the purchase wizard.
func NewWizardUseCase(cat catalog.Provider, provider PurchaseProvider, registry repository.OrderRepository, enroller Enroller, idleTimeout time.Duration, logger *slog.Logger) *WizardUseCase {
	return &WizardUseCase{
		catalog:     cat,
		provider:    provider,
		registry:    registry,
		enroller:    enroller,
		idleTimeout: idleTimeout,
		logger:      logger,
		now:         time.Now,
		slots:       make(map[int64]*ownerSlot),
	}
}

func (u *WizardUseCase) slot(ownerID int64) *ownerSlot {
	u.mu.Lock()
	defer u.mu.Unlock()

	slot, ok := u.slots[ownerID]
	if !ok {
		slot = &ownerSlot{}
		u.slots[ownerID] = slot
	}
	return slot
}

// Start opens a fresh purchase dialogue, discarding any previous one.
// Pre-supplied parameters are validated and their steps skipped; when all
// required parameters arrive up front the purchase is issued immediately.
func (u *WizardUseCase) Start(ctx context.Context, ownerID int64, product, country, operator string) (*StepResult, error) {
	slot := u.slot(ownerID)
	slot.mu.Lock()
	defer slot.mu.Unlock()

	now := u.now()
	session := &model.WizardSession{
		OwnerID:   ownerID,
		State:     model.WizardStateProduct,
		CreatedAt: now,
		UpdatedAt: now,
	}
	slot.session = session

	immediate := product != "" && country != "" && operator != ""
	for _, token := range []string{product, country, operator} {
		if token == "" {
			break
		}
		result, err := u.advance(ctx, session, token)
		if err != nil {
			return nil, err
		}
		if result.ErrorHint != "" {
			return result, nil
		}
	}

	if immediate && session.State == model.WizardStateMaxPrice {
		session.State = model.WizardStateConfirming
		return u.purchase(ctx, slot, session, nil)
	}

	return &StepResult{State: session.State, Prompt: promptFor(session.State)}, nil
}

// Reply feeds one user message into the owner's dialogue. An expired session
// is discarded and the message starts a fresh one.
func (u *WizardUseCase) Reply(ctx context.Context, ownerID int64, text string) (*StepResult, error) {
	slot := u.slot(ownerID)
	slot.mu.Lock()
	defer slot.mu.Unlock()

	session := slot.session
	now := u.now()
	if session != nil && now.Sub(session.UpdatedAt) > u.idleTimeout {
		u.logger.Debug("purchase session expired", slog.Int64("owner", ownerID))
		slot.session = nil
		session = nil
	}
	if session == nil {
		if strings.TrimSpace(text) == "" {
			return nil, domainErrors.ErrNoActiveSession
		}
		session = &model.WizardSession{
			OwnerID:   ownerID,
			State:     model.WizardStateProduct,
			CreatedAt: now,
			UpdatedAt: now,
		}
		slot.session = session
	}

	result, err := u.advance(ctx, session, text)
	if err != nil {
		return nil, err
	}
	if result.ErrorHint != "" {
		return result, nil
	}

	if session.State == model.WizardStateConfirming {
		return u.purchase(ctx, slot, session, session.MaxPrice)
	}

	return result, nil
}

// Cancel discards the owner's dialogue if one exists.
func (u *WizardUseCase) Cancel(ctx context.Context, ownerID int64) (*StepResult, error) {
	slot := u.slot(ownerID)
	slot.mu.Lock()
	defer slot.mu.Unlock()

	if slot.session == nil {
		return nil, domainErrors.ErrNoActiveSession
	}
	slot.session = nil
	return &StepResult{State: model.WizardStateCancelled, Prompt: "Purchase cancelled."}, nil
}

// advance applies one token to the session's current step. Invalid input
// re-prompts the same step with a hint; the state does not move.
func (u *WizardUseCase) advance(ctx context.Context, session *model.WizardSession, token string) (*StepResult, error) {
	token = strings.ToLower(strings.TrimSpace(token))
	session.UpdatedAt = u.now()

	reprompt := func(hint string) *StepResult {
		return &StepResult{State: session.State, Prompt: promptFor(session.State), ErrorHint: hint}
	}

	switch session.State {
	case model.WizardStateProduct:
		ok, err := u.catalog.ValidProduct(ctx, token)
		if err != nil {
			return nil, err
		}
		if !ok {
			return reprompt("Unknown product."), nil
		}
		session.Product = token
		session.State = model.WizardStateCountry

	case model.WizardStateCountry:
		ok, err := u.catalog.ValidCountry(ctx, token)
		if err != nil {
			return nil, err
		}
		if !ok {
			return reprompt("Unknown country key."), nil
		}
		session.Country = token
		session.State = model.WizardStateOperator

	case model.WizardStateOperator:
		ok, err := u.catalog.ValidOperator(ctx, session.Product, session.Country, token)
		if err != nil {
			return nil, err
		}
		if !ok {
			return reprompt("Unknown operator for this product and country."), nil
		}
		session.Operator = token
		session.State = model.WizardStateMaxPrice

	case model.WizardStateMaxPrice:
		var warning string
		if token != "" && token != "skip" && token != "none" {
			price, err := strconv.ParseFloat(token, 64)
			if err != nil {
				return reprompt("Invalid number. Enter a numeric value or 'skip'."), nil
			}
			session.MaxPrice = &price
			if session.Operator != model.OperatorAny {
				// Provider restriction: maxPrice only applies with operator "any".
				warning = "Max price is ignored by the provider unless operator is 'any'."
			}
		}
		session.State = model.WizardStateConfirming
		return &StepResult{State: session.State, Warning: warning}, nil

	default:
		return nil, domainErrors.ErrNoActiveSession
	}

	return &StepResult{State: session.State, Prompt: promptFor(session.State)}, nil
}

// purchase issues exactly one buy call for the assembled parameters and
// closes the session whatever the outcome. Purchase is not idempotent, so a
// failure is never retried.
func (u *WizardUseCase) purchase(ctx context.Context, slot *ownerSlot, session *model.WizardSession, maxPrice *float64) (*StepResult, error) {
	defer func() { slot.session = nil }()

	opts := fivesim.BuyOptions{}
	if maxPrice != nil && session.Operator == model.OperatorAny {
		opts.MaxPrice = maxPrice
	}

	result, err := u.provider.BuyActivation(ctx, session.Country, session.Operator, session.Product, opts)
	if err != nil {
		var apiErr *fivesim.APIError
		if errors.As(err, &apiErr) {
			u.logger.Warn("purchase rejected by provider",
				slog.Int64("owner", session.OwnerID),
				slog.String("code", string(apiErr.Code)),
			)
			return &StepResult{State: model.WizardStateCancelled, ErrorHint: userMessage(apiErr)}, nil
		}
		u.logger.Error("purchase failed", slog.Int64("owner", session.OwnerID), slog.String("error", err.Error()))
		return &StepResult{
			State:     model.WizardStateCancelled,
			ErrorHint: "Purchase failed due to a network error. The purchase was not retried.",
		}, nil
	}

	order := OrderFromProvider(session.OwnerID, session.Product, session.Country, result, u.now())
	if err := u.registry.Insert(ctx, order); err != nil {
		return nil, err
	}
	u.enroller.Enroll(order)

	return &StepResult{State: model.WizardStateCompleted, Order: order}, nil
}

func userMessage(err *fivesim.APIError) string {
	if message, ok := userMessages[err.Code]; ok {
		return message
	}
	return "Purchase failed. Try different options or come back later."
}

func promptFor(state model.WizardState) string {
	switch state {
	case model.WizardStateProduct:
		return promptProduct
	case model.WizardStateCountry:
		return promptCountry
	case model.WizardStateOperator:
		return promptOperator
	case model.WizardStateMaxPrice:
		return promptMaxPrice
	}
	return ""
}
