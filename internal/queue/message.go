package queue

import (
	"encoding/json"
	"fmt"

	"github.com/akshayg147/metadata-inventory-service/internal/domain"
)

// decodeTask parses a task message body. Malformed JSON or a missing url
// field are both reported via the returned error; the worker loop treats
// either as "skip without commit" per the consumer protocol.
func decodeTask(body []byte) (domain.Task, error) {
	var t domain.Task
	if err := json.Unmarshal(body, &t); err != nil {
		return domain.Task{}, fmt.Errorf("decode task: %w", err)
	}
	if t.URL == "" {
		return domain.Task{}, fmt.Errorf("decode task: missing url")
	}
	return t, nil
}

func encodeTask(t domain.Task) ([]byte, error) {
	return json.Marshal(t)
}

func encodeDeadLetter(t domain.DeadLetterTask) ([]byte, error) {
	return json.Marshal(t)
}
