package task

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

const (
	TypeInvalidateCDN = "cdn:invalidate"

	// QueueCDN holds every CDN task. Workers must listen on it.
	QueueCDN = "cdn"

	invalidateMaxRetry = 10
	invalidateTimeout  = time.Minute
)

// Queues is the asynq queue priority map workers serve.
var Queues = map[string]int{QueueCDN: 1}

type InvalidateCDNPayload struct {
	AssetID string   `json:"asset_id"`
	Paths   []string `json:"paths"`
}

// NewInvalidateCDNTask creates a task re-issuing the CDN invalidation of an asset.
func NewInvalidateCDNTask(assetID string, paths []string) (*asynq.Task, error) {
	if assetID == "" {
		return nil, fmt.Errorf("invalidate-cdn task: asset id is required")
	}
	data, err := json.Marshal(InvalidateCDNPayload{AssetID: assetID, Paths: paths})
	if err != nil {
		return nil, fmt.Errorf("invalidate-cdn task: marshal payload: %w", err)
	}
	return asynq.NewTask(TypeInvalidateCDN, data,
		asynq.Queue(QueueCDN),
		asynq.MaxRetry(invalidateMaxRetry),
		asynq.Timeout(invalidateTimeout),
	), nil
}

func ParseInvalidateCDNPayload(t *asynq.Task) (InvalidateCDNPayload, error) {
	var p InvalidateCDNPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return InvalidateCDNPayload{}, fmt.Errorf("invalidate-cdn task: unmarshal payload: %w", err)
	}
	if p.AssetID == "" {
		return InvalidateCDNPayload{}, fmt.Errorf("invalidate-cdn task: missing asset_id")
	}
	return p, nil
}
