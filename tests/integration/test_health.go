package integration

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadinessReportsQueueDepth(t *testing.T) {
	client := &http.Client{Timeout: 10 * time.Second}
	RequireService(t, client)

	resp, err := client.Get(baseURL + "/health/ready")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var ready struct {
		Status     string `json:"status"`
		QueueDepth *int   `json:"queue_depth"`
	}
	body, _ := io.ReadAll(resp.Body)
	require.NoError(t, json.Unmarshal(body, &ready))

	assert.Equal(t, "ok", ready.Status)
	require.NotNil(t, ready.QueueDepth, "readiness must report the sync queue depth")
	assert.GreaterOrEqual(t, *ready.QueueDepth, 0)
}
