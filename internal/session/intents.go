package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/seu-repo/csms/internal/domain"
	"github.com/seu-repo/csms/internal/ports"
)

// ErrStationNotFound is returned when intent creation targets an unknown station.
var ErrStationNotFound = errors.New("station not found")

// ErrStationNotAvailable is returned when the station isn't in the available
// status required to open a new pay-first intent.
var ErrStationNotAvailable = errors.New("station not available")

// maxLastErrorLen bounds how much of a payment-provider error is kept on the
// Intent row.
const maxLastErrorLen = 500

// CreateIntentParams is the REST-facing request to open a new pay-first intent.
type CreateIntentParams struct {
	StationID     string
	ConnectorID   int
	Email         string
	HoldAmountHUF int64
}

// CreateIntentResult is handed back to the REST caller.
type CreateIntentResult struct {
	IntentID    string
	CheckoutURL string
	ExpiresAt   time.Time
}

// CreateIntent verifies the station is available, opens an Intent, and
// creates the matching payment-provider checkout session. Any failure
// creating the checkout session marks the Intent failed rather than rolling
// it back entirely, so the attempt stays visible for support/audit.
func (s *Service) CreateIntent(ctx context.Context, params CreateIntentParams) (*CreateIntentResult, error) {
	now := time.Now().UTC()
	intent := &domain.Intent{
		ID:            uuid.NewString(),
		StationID:     params.StationID,
		ConnectorID:   params.ConnectorID,
		Email:         params.Email,
		Status:        domain.IntentPendingPayment,
		HoldAmountHUF: params.HoldAmountHUF,
		Currency:      "huf",
		ExpiresAt:     now.Add(domain.IntentTTL),
	}

	// The station-availability check and the intent insert must be read and
	// written within one transaction: two concurrent CreateIntent calls for
	// the same station/connector must not both observe it as available and
	// both insert a pending-payment intent against it.
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		station, err := s.stations.Get(ctx, params.StationID)
		if err != nil {
			return fmt.Errorf("looking up station: %w", err)
		}
		if station == nil {
			return ErrStationNotFound
		}
		if station.Status != domain.StationAvailable {
			return ErrStationNotAvailable
		}
		return s.intents.Create(ctx, intent)
	})
	if errors.Is(err, ErrStationNotFound) || errors.Is(err, ErrStationNotAvailable) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("creating intent: %w", err)
	}

	checkout, err := s.payments.CreateCheckout(ctx, ports.CheckoutParams{
		IntentID:       intent.ID,
		AmountHUF:      intent.HoldAmountHUF,
		Currency:       intent.Currency,
		CustomerEmail:  intent.Email,
		SuccessURL:     s.cfg.PublicBaseURL + "/intents/" + intent.ID + "/success",
		CancelURL:      s.cfg.PublicBaseURL + "/intents/" + intent.ID + "/cancel",
		IdempotencyKey: "intent:" + intent.ID,
	})
	if err != nil {
		intent.Status = domain.IntentFailed
		intent.LastError = truncate(err.Error(), maxLastErrorLen)
		if updateErr := s.intents.Update(ctx, intent); updateErr != nil {
			s.log.Warn("failed to persist failed intent", zap.String("intent_id", intent.ID), zap.Error(updateErr))
		}
		return nil, fmt.Errorf("creating payment checkout: %w", err)
	}

	intent.ProviderName = checkout.ProviderName
	intent.ProviderRef = checkout.ProviderRef
	if err := s.intents.Update(ctx, intent); err != nil {
		return nil, fmt.Errorf("recording provider reference: %w", err)
	}

	return &CreateIntentResult{
		IntentID:    intent.ID,
		CheckoutURL: checkout.CheckoutURL,
		ExpiresAt:   intent.ExpiresAt,
	}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
