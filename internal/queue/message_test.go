package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akshayg147/metadata-inventory-service/internal/domain"
)

func TestDecodeTask_Valid(t *testing.T) {
	task, err := decodeTask([]byte(`{"url":"https://example.com/","retry_count":2}`))
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/", task.URL)
	assert.Equal(t, 2, task.RetryCount)
}

func TestDecodeTask_MalformedJSON(t *testing.T) {
	_, err := decodeTask([]byte(`not json`))
	assert.Error(t, err)
}

func TestDecodeTask_MissingURL(t *testing.T) {
	_, err := decodeTask([]byte(`{"retry_count":0}`))
	assert.Error(t, err)
}

func TestEncodeTask_RoundTrip(t *testing.T) {
	body, err := encodeTask(domain.Task{URL: "https://example.com/", RetryCount: 1})
	require.NoError(t, err)

	task, err := decodeTask(body)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/", task.URL)
	assert.Equal(t, 1, task.RetryCount)
}
