package payments

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	// MinAmount is the floor for a payment in minimal currency units.
	MinAmount = 50
	// DefaultListLimit is used when the caller does not ask for a page size.
	DefaultListLimit = 10

	defaultPaymentType = "one-time"
)

var (
	// ErrValidation marks client-input problems; wrap it with the specific reason.
	ErrValidation = errors.New("validation failed")
	// ErrNotOwner is returned when a payment's ownership stamp does not match
	// the requesting identity.
	ErrNotOwner = errors.New("payment belongs to another user")
)

// Identity is the authenticated caller a payment is tied to.
type Identity struct {
	UserID int64
	Email  string
}

// CreateResult is the subset of a freshly created intent returned to clients.
type CreateResult struct {
	ID           string `json:"id"`
	ClientSecret string `json:"clientSecret"`
	Amount       int64  `json:"amount"`
	Description  string `json:"description"`
	Status       string `json:"status"`
}

// View is the narrowed read model for an existing payment.
type View struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
	PaymentType string `json:"paymentType"`
	Created     int64  `json:"created"`
}

// Service wraps the gateway with validation and the ownership invariant:
// every intent is stamped with the creating user's id, and that stamp is the
// sole authorization check for later reads.
type Service struct {
	gateway  Gateway
	currency string
}

func NewService(gateway Gateway, currency string) *Service {
	return &Service{gateway: gateway, currency: currency}
}

// CreatePayment creates an intent owned by the given identity. The floor
// applies to the raw amount; rounding to the nearest integer minimal unit
// happens only at submission.
func (s *Service) CreatePayment(ctx context.Context, identity Identity, amount float64, description, paymentType string) (*CreateResult, error) {
	if amount < MinAmount {
		return nil, fmt.Errorf("%w: amount must be at least %d", ErrValidation, MinAmount)
	}
	rounded := int64(math.Round(amount))
	if strings.TrimSpace(description) == "" {
		return nil, fmt.Errorf("%w: payment description is required", ErrValidation)
	}
	if paymentType == "" {
		paymentType = defaultPaymentType
	}

	intent, err := s.gateway.CreateIntent(ctx, CreateParams{
		Amount:      rounded,
		Currency:    s.currency,
		Description: description,
		Metadata: map[string]string{
			"userId":      strconv.FormatInt(identity.UserID, 10),
			"userEmail":   identity.Email,
			"paymentType": paymentType,
		},
	})
	if err != nil {
		return nil, err
	}

	return &CreateResult{
		ID:           intent.ID,
		ClientSecret: intent.ClientSecret,
		Amount:       intent.Amount,
		Description:  intent.Description,
		Status:       intent.Status,
	}, nil
}

// GetPayment retrieves one intent and enforces the ownership stamp.
func (s *Service) GetPayment(ctx context.Context, identity Identity, id string) (*View, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: payment id is required", ErrValidation)
	}

	intent, err := s.gateway.GetIntent(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ownedBy(intent, identity) {
		return nil, ErrNotOwner
	}

	view := viewFromIntent(intent)
	return &view, nil
}

// ListPayments fetches one upstream page and filters it to the caller's own
// intents. The upstream has-more flag is passed through unchanged, so a page
// shrunk by filtering may still report more results available; the cursor
// contract is the processor's, not ours.
func (s *Service) ListPayments(ctx context.Context, identity Identity, limit int64, startingAfter string) ([]View, bool, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	page, err := s.gateway.ListIntents(ctx, limit, startingAfter)
	if err != nil {
		return nil, false, err
	}

	views := make([]View, 0, len(page.Intents))
	for i := range page.Intents {
		if ownedBy(&page.Intents[i], identity) {
			views = append(views, viewFromIntent(&page.Intents[i]))
		}
	}
	return views, page.HasMore, nil
}

func ownedBy(intent *Intent, identity Identity) bool {
	return intent.Metadata["userId"] == strconv.FormatInt(identity.UserID, 10)
}

func viewFromIntent(intent *Intent) View {
	return View{
		ID:          intent.ID,
		Status:      intent.Status,
		Amount:      intent.Amount,
		Description: intent.Description,
		PaymentType: intent.Metadata["paymentType"],
		Created:     intent.Created,
	}
}
