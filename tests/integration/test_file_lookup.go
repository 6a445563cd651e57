package integration

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileLookupUnknownFile(t *testing.T) {
	client := &http.Client{Timeout: 10 * time.Second}
	RequireService(t, client)

	req, _ := http.NewRequest("GET", fmt.Sprintf("%s/v1/files/%s", baseURL, uuid.NewString()), nil)

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestFileLookupInvalidID(t *testing.T) {
	client := &http.Client{Timeout: 10 * time.Second}
	RequireService(t, client)

	req, _ := http.NewRequest("GET", baseURL+"/v1/files/not-a-uuid", nil)

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
