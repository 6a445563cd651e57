package webhook

import (
	"encoding/json"
	"fmt"
	"mime"
	"path"
)

// Recognized event types. Anything else carries an opaque payload and is
// recorded without further interpretation.
const (
	EventFileAdded  = "FileStorageFile.added"
	EventFileSynced = "FileStorageFileSync.completed"
)

const fallbackMimeType = "application/octet-stream"

// FileAddedPayload is the parsed form of a "file became available" event.
type FileAddedPayload struct {
	ID            string        `json:"id"`
	MimeType      string        `json:"mime_type"`
	Name          string        `json:"name"`
	Size          int64         `json:"size"`
	FileURL       string        `json:"file_url"`
	LinkedAccount LinkedAccount `json:"linked_account"`
}

// FileSyncedPayload is the parsed form of a "sync completed" event, which
// triggers the list-based catch-up sweep for the account.
type FileSyncedPayload struct {
	LinkedAccount LinkedAccount `json:"linked_account"`
}

// LinkedAccount identifies the external account a payload belongs to.
type LinkedAccount struct {
	ID string `json:"id"`
}

// ParseFileAdded decodes and validates a FileStorageFile.added payload.
func ParseFileAdded(raw json.RawMessage) (FileAddedPayload, error) {
	var p FileAddedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return FileAddedPayload{}, fmt.Errorf("decode file added payload: %w", err)
	}
	if p.ID == "" {
		return FileAddedPayload{}, fmt.Errorf("file added payload missing file id")
	}
	if p.LinkedAccount.ID == "" {
		return FileAddedPayload{}, fmt.Errorf("file added payload missing linked account id")
	}
	return p, nil
}

// ParseFileSynced decodes and validates a FileStorageFileSync.completed payload.
func ParseFileSynced(raw json.RawMessage) (FileSyncedPayload, error) {
	var p FileSyncedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return FileSyncedPayload{}, fmt.Errorf("decode file synced payload: %w", err)
	}
	if p.LinkedAccount.ID == "" {
		return FileSyncedPayload{}, fmt.Errorf("file synced payload missing linked account id")
	}
	return p, nil
}

// resolveMimeType returns the declared mime type, falling back to the file
// name's extension and then to a generic binary type.
func resolveMimeType(declared, fileName string) string {
	if declared != "" {
		return declared
	}
	if ext := path.Ext(fileName); ext != "" {
		if byExt := mime.TypeByExtension(ext); byExt != "" {
			return byExt
		}
	}
	return fallbackMimeType
}
