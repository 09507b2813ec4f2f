package live

import (
	"encoding/json"

	"ballotbox/internal/domain/poll"
	"ballotbox/internal/transport/httpdto"

	"github.com/google/uuid"
)

// Broadcaster adapts the hub to the services layer: it serializes fresh
// tallies into the same wire shape the results endpoint returns.
type Broadcaster struct {
	hub *Hub
}

func NewBroadcaster(hub *Hub) *Broadcaster {
	return &Broadcaster{hub: hub}
}

func (b *Broadcaster) BroadcastResults(pollID uuid.UUID, results poll.Results) {
	payload, err := json.Marshal(httpdto.NewSuccessResponse(httpdto.FromResults(results)))
	if err != nil {
		return
	}
	b.hub.Broadcast(pollID, payload)
}
