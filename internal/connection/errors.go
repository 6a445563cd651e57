package connection

import "errors"

var (
	// ErrConnectionNotFound signals that no connection exists for the account.
	ErrConnectionNotFound = errors.New("connection not found")
	// ErrUnknownConnector signals an unrecognized connector type.
	ErrUnknownConnector = errors.New("unknown connector type")
)
