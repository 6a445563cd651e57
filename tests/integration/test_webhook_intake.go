package integration

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhookIntakeAcceptsFileAdded(t *testing.T) {
	client := &http.Client{Timeout: 10 * time.Second}
	RequireService(t, client)

	// 1. Отправить событие для несуществующего аккаунта
	payload := map[string]any{
		"id":        uuid.NewString(),
		"name":      "report.pdf",
		"mime_type": "application/pdf",
		"size":      1024,
		"file_url":  "https://files.example.com/report.pdf",
		"linked_account": map[string]string{
			"id": "integration-missing-" + uuid.NewString(),
		},
	}

	resp, err := PostWebhook(client, "FileStorageFile.added", payload)
	require.NoError(t, err)
	defer resp.Body.Close()

	// Событие принимается даже без подключения
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	var accepted struct {
		EventID string `json:"event_id"`
	}
	body, _ := io.ReadAll(resp.Body)
	require.NoError(t, json.Unmarshal(body, &accepted))

	_, err = uuid.Parse(accepted.EventID)
	assert.NoError(t, err, "event_id must be a uuid")
}

func TestWebhookIntakeAcceptsUnsupportedEventType(t *testing.T) {
	client := &http.Client{Timeout: 10 * time.Second}
	RequireService(t, client)

	resp, err := PostWebhook(client, "Ticket.created", map[string]string{"id": uuid.NewString()})
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
}

func TestWebhookIntakeRejectsMalformedBody(t *testing.T) {
	client := &http.Client{Timeout: 10 * time.Second}
	RequireService(t, client)

	// Нет обязательного payload
	body, _ := json.Marshal(map[string]string{"event_type": "FileStorageFile.added"})
	req, _ := http.NewRequest("POST", baseURL+"/v1/webhooks", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
