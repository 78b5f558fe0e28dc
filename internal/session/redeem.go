package session

import (
	"context"
	"errors"
	"fmt"
)

// ErrSessionNotFound is returned when no open session matches the supplied
// email/stop-code pair.
var ErrSessionNotFound = errors.New("session not found")

// RedeemStopCode locates the session owning (email, plaintext code) and
// issues the outbound RemoteStopTransaction by transaction id.
func (s *Service) RedeemStopCode(ctx context.Context, email, plaintextCode string) (bool, error) {
	sess, err := s.sessions.ByEmailAndStopCodeHash(ctx, email, hashStopCode(plaintextCode))
	if err != nil {
		return false, fmt.Errorf("looking up session by stop code: %w", err)
	}
	if sess == nil || !sess.Open() {
		return false, ErrSessionNotFound
	}

	accepted, err := s.remoteStop(ctx, sess.StationID, sess.EffectiveTransactionID())
	if err != nil {
		return false, fmt.Errorf("issuing remote stop: %w", err)
	}
	return accepted, nil
}
