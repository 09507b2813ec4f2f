package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"ballotbox/internal/domain/poll"
	"ballotbox/pkg/logger"
)

const resultsChannelPrefix = "live:"

// ResultsSink receives tallies decoded off the feed, normally the local
// WebSocket hub's broadcaster.
type ResultsSink interface {
	BroadcastResults(pollID uuid.UUID, results poll.Results)
}

// resultsEnvelope is the wire shape published on live:{poll_id}.
type resultsEnvelope struct {
	PollID     uuid.UUID              `json:"poll_id"`
	TotalVotes int64                  `json:"total_votes"`
	Options    []resultsEnvelopeEntry `json:"options"`
	OccurredAt time.Time              `json:"occurred_at"`
}

type resultsEnvelopeEntry struct {
	OptionID          uuid.UUID `json:"option_id"`
	CandidateName     string    `json:"candidate_name"`
	PartyName         string    `json:"party_name,omitempty"`
	CandidateImageURL string    `json:"candidate_image_url,omitempty"`
	DisplayOrder      int       `json:"display_order"`
	VoteCount         int64     `json:"vote_count"`
	Percentage        float64   `json:"percentage"`
}

// ResultsFeed fans fresh tallies out across API instances over Redis
// Pub/Sub. Each instance publishes after a local vote and subscribes to
// live:*, so a watcher connected to any instance sees every update.
type ResultsFeed struct {
	client *goredis.Client
	logger *logger.Logger
}

func NewResultsFeed(client *goredis.Client, l *logger.Logger) *ResultsFeed {
	return &ResultsFeed{client: client, logger: l}
}

// BroadcastResults publishes a tally to the poll's live channel. Best
// effort; a publish failure loses one update, not the vote.
func (f *ResultsFeed) BroadcastResults(pollID uuid.UUID, results poll.Results) {
	env := toEnvelope(results)
	data, err := json.Marshal(env)
	if err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := f.client.Publish(ctx, resultsChannelPrefix+pollID.String(), data).Err(); err != nil && f.logger != nil {
		f.logger.Warnf("live feed publish failed for poll %s: %v", pollID, err)
	}
}

// Run subscribes to every poll's live channel and forwards decoded tallies
// to sink until ctx is canceled.
func (f *ResultsFeed) Run(ctx context.Context, sink ResultsSink) {
	pubsub := f.client.PSubscribe(ctx, resultsChannelPrefix+"*")
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var env resultsEnvelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				if f.logger != nil {
					f.logger.Warnf("live feed dropped malformed payload on %s: %v", msg.Channel, err)
				}
				continue
			}
			sink.BroadcastResults(env.PollID, fromEnvelope(env))
		}
	}
}

func toEnvelope(results poll.Results) resultsEnvelope {
	env := resultsEnvelope{
		PollID:     results.PollID,
		TotalVotes: results.TotalVotes,
		OccurredAt: time.Now().UTC(),
	}
	for _, opt := range results.Options {
		env.Options = append(env.Options, resultsEnvelopeEntry{
			OptionID:          opt.OptionID,
			CandidateName:     opt.CandidateName,
			PartyName:         opt.PartyName,
			CandidateImageURL: opt.CandidateImageURL,
			DisplayOrder:      opt.DisplayOrder,
			VoteCount:         opt.VoteCount,
			Percentage:        opt.Percentage,
		})
	}
	return env
}

func fromEnvelope(env resultsEnvelope) poll.Results {
	results := poll.Results{
		PollID:     env.PollID,
		TotalVotes: env.TotalVotes,
	}
	for _, opt := range env.Options {
		results.Options = append(results.Options, poll.OptionResult{
			OptionID:          opt.OptionID,
			CandidateName:     opt.CandidateName,
			PartyName:         opt.PartyName,
			CandidateImageURL: opt.CandidateImageURL,
			DisplayOrder:      opt.DisplayOrder,
			VoteCount:         opt.VoteCount,
			Percentage:        opt.Percentage,
		})
	}
	return results
}
