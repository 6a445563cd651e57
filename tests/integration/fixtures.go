package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
)

const baseURL = "http://localhost:8080"

// RequireService пропускает тест, если сервис не запущен
func RequireService(t *testing.T, client *http.Client) {
	resp, err := client.Get(baseURL + "/health/live")
	if err != nil {
		t.Skipf("service is not running at %s: %v", baseURL, err)
	}
	resp.Body.Close()
}

// PostWebhook отправляет вебхук и возвращает ответ
func PostWebhook(client *http.Client, eventType string, payload any) (*http.Response, error) {
	rawPayload, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(map[string]json.RawMessage{
		"event_type": json.RawMessage(fmt.Sprintf("%q", eventType)),
		"payload":    rawPayload,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest("POST", baseURL+"/v1/webhooks", bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	return client.Do(req)
}
