package worker

import (
	"encoding/json"

	"github.com/hibiken/asynq"
	"github.com/socialchef/cocktail-studio/internal/flow"
)

// Task type constants
const (
	TypeDeliverResult = "flow:deliver"
)

// QueueDeliveries is the queue flow deliveries are enqueued on.
const QueueDeliveries = "deliveries"

// DeliverResultPayload is the payload for flow delivery tasks.
type DeliverResultPayload struct {
	Delivery flow.Delivery `json:"delivery"`
}

// NewDeliverResultTask creates a new delivery task for d.
func NewDeliverResultTask(d flow.Delivery) (*asynq.Task, error) {
	data, err := json.Marshal(DeliverResultPayload{Delivery: d})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeDeliverResult, data), nil
}
