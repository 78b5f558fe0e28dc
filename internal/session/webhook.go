package session

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/csms/internal/domain"
	"github.com/seu-repo/csms/internal/metrics"
)

// signatureTolerance is the maximum allowed clock skew between the header's
// timestamp and the server's clock.
const signatureTolerance = 300 * time.Second

// anonIdTag is the idTag sent on every Payment Bridge-issued
// RemoteStartTransaction: sessions in this flow are owned by an email, not
// an OCPP-provisioned RFID tag.
const anonIdTag = "ANON"

// Signature verification errors, surfaced to the REST layer as the exact
// sub-codes the webhook endpoint must return.
var (
	ErrMissingSignatureHeader    = errors.New("missing_stripe_signature_header")
	ErrMalformedSignatureHeader  = errors.New("invalid_stripe_signature_header")
	ErrSignatureTimestampSkew    = errors.New("stripe_signature_timestamp_out_of_tolerance")
	ErrInvalidSignature          = errors.New("invalid_stripe_signature")
)

// VerifyWebhookSignature checks a Stripe-Signature-style header of the form
// "t=<unix-seconds>,v1=<hex>[,v1=<hex>...]" against the raw request body.
// The signed base is "<t>.<raw-body>"; HMAC-SHA256 with secret must match at
// least one v1 value, compared in constant time.
func VerifyWebhookSignature(header string, body []byte, secret string, now time.Time) error {
	if header == "" {
		return ErrMissingSignatureHeader
	}

	var timestamp string
	var signatures []string
	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			timestamp = kv[1]
		case "v1":
			signatures = append(signatures, kv[1])
		}
	}
	if timestamp == "" || len(signatures) == 0 {
		return ErrMalformedSignatureHeader
	}

	tsSeconds, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return ErrMalformedSignatureHeader
	}
	skew := now.Sub(time.Unix(tsSeconds, 0))
	if skew < 0 {
		skew = -skew
	}
	if skew > signatureTolerance {
		return ErrSignatureTimestampSkew
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp + "." + string(body)))
	expected := hex.EncodeToString(mac.Sum(nil))

	for _, sig := range signatures {
		if subtle.ConstantTimeCompare([]byte(sig), []byte(expected)) == 1 {
			return nil
		}
	}
	return ErrInvalidSignature
}

type webhookEvent struct {
	Type string `json:"type"`
	Data struct {
		Object struct {
			Metadata struct {
				IntentID string `json:"intent_id"`
			} `json:"metadata"`
		} `json:"object"`
	} `json:"data"`
}

// ProcessWebhookResult reports what the webhook handler decided, so the
// REST layer can log/respond without re-deriving it.
type ProcessWebhookResult struct {
	Handled bool
	Created bool
}

// ProcessWebhook implements the checkout.session.completed processing
// steps. Signature verification is the caller's responsibility
// (VerifyWebhookSignature) since a failed verification never reaches here.
// Every other event type, and every recoverable inconsistency (missing
// intent_id, missing intent, expired intent, already-processed intent), is
// reported as handled with no error so the caller can 200 it.
func (s *Service) ProcessWebhook(ctx context.Context, body []byte) (*ProcessWebhookResult, error) {
	var event webhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("decoding webhook body: %w", err)
	}

	if event.Type != "checkout.session.completed" {
		return &ProcessWebhookResult{Handled: true}, nil
	}

	intentID := event.Data.Object.Metadata.IntentID
	if intentID == "" {
		return &ProcessWebhookResult{Handled: true}, nil
	}

	intent, err := s.intents.Get(ctx, intentID)
	if err != nil {
		return nil, fmt.Errorf("loading intent: %w", err)
	}
	if intent == nil {
		return &ProcessWebhookResult{Handled: true}, nil
	}

	now := time.Now().UTC()
	if intent.IsExpired(now) {
		intent.Status = domain.IntentExpired
		if err := s.intents.Update(ctx, intent); err != nil {
			return nil, fmt.Errorf("marking intent expired: %w", err)
		}
		if err := s.events.Publish("intent.expired", []byte(`{"intent_id":"`+intent.ID+`"}`)); err != nil {
			s.log.Warn("failed to publish intent.expired event", zap.Error(err))
		}
		return &ProcessWebhookResult{Handled: true}, nil
	}

	plaintextCode, err := generateStopCode()
	if err != nil {
		return nil, fmt.Errorf("generating stop code: %w", err)
	}

	sess := &domain.Session{
		StationID:    intent.StationID,
		ConnectorID:  &intent.ConnectorID,
		Email:        intent.Email,
		IntentID:     &intent.ID,
		StartedAt:    now,
		StopCodeHash: hashStopCode(plaintextCode),
	}

	// Stripe retries webhook delivery at-least-once, and Session.IntentID
	// carries no unique constraint, so the existing-session check and the
	// session insert must be read and written within one transaction:
	// otherwise two concurrent deliveries for the same intent could both
	// pass the check before either commits and both create a session.
	alreadyExists := false
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.sessions.ByIntent(ctx, intent.ID)
		if err != nil {
			return fmt.Errorf("checking for existing session: %w", err)
		}
		if existing != nil {
			alreadyExists = true
			return nil
		}

		intent.Status = domain.IntentPaid
		if intent.ProviderRef == "" {
			intent.ProviderRef = intentID
		}
		if err := s.intents.Update(ctx, intent); err != nil {
			return fmt.Errorf("marking intent paid: %w", err)
		}

		return s.sessions.Create(ctx, sess)
	})
	if err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}
	if alreadyExists {
		return &ProcessWebhookResult{Handled: true}, nil
	}
	metrics.OpenSessions.Inc()

	delivery := &domain.StopCodeDelivery{
		SessionID: sess.ID,
		Channel:   "email",
		Recipient: intent.Email,
		SentAt:    now,
	}
	if err := s.notifier.SendStopCode(ctx, intent.Email, plaintextCode); err != nil {
		s.log.Warn("stop code delivery failed", zap.Int64("session_id", sess.ID), zap.Error(err))
		delivery.Error = truncate(err.Error(), maxLastErrorLen)
	}
	if err := s.deliveries.Create(ctx, delivery); err != nil {
		s.log.Warn("failed to record stop code delivery", zap.Int64("session_id", sess.ID), zap.Error(err))
	}

	accepted, err := s.remoteStart(ctx, intent.StationID, intent.ConnectorID, anonIdTag)
	if err != nil {
		// The payment is already captured; a failed or absent remote start
		// never unwinds the session. An operator handles refunds manually.
		s.logRemoteCallFailure(intent.StationID, "RemoteStartTransaction", err)
	} else if !accepted {
		s.log.Warn("station refused remote start", zap.String("station_id", intent.StationID), zap.String("intent_id", intent.ID))
	}

	return &ProcessWebhookResult{Handled: true, Created: true}, nil
}
