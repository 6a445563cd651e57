package transfer

import "errors"

var (
	// ErrRecordNotFound signals that the file record could not be located.
	ErrRecordNotFound = errors.New("file record not found")
	// ErrNoFailedSyncs signals an empty failure ledger for the file.
	ErrNoFailedSyncs = errors.New("no failed syncs recorded")
	// ErrNoConnection is the transfer failure for an unresolvable account.
	ErrNoConnection = errors.New("no connection found for account")
)
