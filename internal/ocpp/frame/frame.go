// Package frame models OCPP 1.6-J's three wire message shapes as named
// records instead of raw []interface{} arrays, parsed once at the transport
// boundary.
package frame

import (
	"encoding/json"
	"fmt"
)

// Message type codes per OCPP 1.6-J.
const (
	TypeCall       = 2
	TypeCallResult = 3
	TypeCallError  = 4
)

// Call is a station<->backend remote procedure invocation: [2, id, action, payload].
type Call struct {
	UniqueID string
	Action   string
	Payload  json.RawMessage
}

// CallResult is a success reply: [3, id, payload].
type CallResult struct {
	UniqueID string
	Payload  json.RawMessage
}

// CallError is a failure reply: [4, id, errorCode, errorDescription, details].
type CallError struct {
	UniqueID         string
	ErrorCode        string
	ErrorDescription string
	ErrorDetails     json.RawMessage
}

func (e *CallError) Error() string {
	return fmt.Sprintf("%s: %s", e.ErrorCode, e.ErrorDescription)
}

// Parse inspects a raw frame's leading type code and unpacks it into the
// matching named record. Returns an error only for frames too malformed to
// even extract a type code/unique id; unknown type codes are not an error
// (the Gateway just ignores them).
func Parse(raw []byte) (msgType int, uniqueID string, rest []json.RawMessage, err error) {
	var arr []json.RawMessage
	if err := json.Unmarshal(raw, &arr); err != nil {
		return 0, "", nil, fmt.Errorf("not a json array: %w", err)
	}
	if len(arr) < 2 {
		return 0, "", nil, fmt.Errorf("frame too short: %d elements", len(arr))
	}
	if err := json.Unmarshal(arr[0], &msgType); err != nil {
		return 0, "", nil, fmt.Errorf("invalid message type code: %w", err)
	}
	if err := json.Unmarshal(arr[1], &uniqueID); err != nil {
		return 0, "", nil, fmt.Errorf("invalid unique id: %w", err)
	}
	return msgType, uniqueID, arr[2:], nil
}

// ParseCall decodes the Action/Payload trailing a [2, id, ...] frame.
func ParseCall(uniqueID string, rest []json.RawMessage) (*Call, error) {
	if len(rest) < 2 {
		return nil, fmt.Errorf("call frame missing action/payload")
	}
	var action string
	if err := json.Unmarshal(rest[0], &action); err != nil {
		return nil, fmt.Errorf("invalid action: %w", err)
	}
	return &Call{UniqueID: uniqueID, Action: action, Payload: rest[1]}, nil
}

// ParseCallResult decodes the payload trailing a [3, id, payload] frame.
func ParseCallResult(uniqueID string, rest []json.RawMessage) (*CallResult, error) {
	if len(rest) < 1 {
		return nil, fmt.Errorf("callresult frame missing payload")
	}
	return &CallResult{UniqueID: uniqueID, Payload: rest[0]}, nil
}

// ParseCallError decodes the trailing fields of a [4, id, code, desc, details] frame.
func ParseCallError(uniqueID string, rest []json.RawMessage) (*CallError, error) {
	if len(rest) < 2 {
		return nil, fmt.Errorf("callerror frame missing errorCode/errorDescription")
	}
	ce := &CallError{UniqueID: uniqueID}
	if err := json.Unmarshal(rest[0], &ce.ErrorCode); err != nil {
		return nil, fmt.Errorf("invalid errorCode: %w", err)
	}
	if err := json.Unmarshal(rest[1], &ce.ErrorDescription); err != nil {
		return nil, fmt.Errorf("invalid errorDescription: %w", err)
	}
	if len(rest) >= 3 {
		ce.ErrorDetails = rest[2]
	}
	return ce, nil
}

// EncodeCall marshals an outbound CALL frame: [2, id, action, payload].
func EncodeCall(uniqueID, action string, payload interface{}) ([]byte, error) {
	return json.Marshal([]interface{}{TypeCall, uniqueID, action, payload})
}

// EncodeCallResult marshals a CALLRESULT reply: [3, id, payload].
func EncodeCallResult(uniqueID string, payload interface{}) ([]byte, error) {
	return json.Marshal([]interface{}{TypeCallResult, uniqueID, payload})
}

// EncodeCallError marshals a CALLERROR reply: [4, id, code, desc, details].
func EncodeCallError(uniqueID, code, description string) ([]byte, error) {
	return json.Marshal([]interface{}{TypeCallError, uniqueID, code, description, map[string]string{}})
}
