package session

import "context"

// AdminStartParams is the thin admin/operator wrapper over
// RemoteStartTransaction, independent of the pay-first intent flow.
type AdminStartParams struct {
	StationID   string
	ConnectorID int
	IdTag       string
}

// AdminRemoteStart issues RemoteStartTransaction directly, bypassing the
// intent/payment flow, for the operator REST surface.
func (s *Service) AdminRemoteStart(ctx context.Context, params AdminStartParams) (bool, error) {
	idTag := params.IdTag
	if idTag == "" {
		idTag = anonIdTag
	}
	return s.remoteStart(ctx, params.StationID, params.ConnectorID, idTag)
}

// AdminRemoteStop issues RemoteStopTransaction directly by station and
// transaction id, for the operator REST surface.
func (s *Service) AdminRemoteStop(ctx context.Context, stationID string, transactionID int64) (bool, error) {
	return s.remoteStop(ctx, stationID, transactionID)
}
