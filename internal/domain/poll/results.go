package poll

import (
	"math"
	"sort"

	"github.com/google/uuid"
)

// OptionResult is the tally for a single option.
type OptionResult struct {
	OptionID          uuid.UUID
	CandidateName     string
	PartyName         string
	CandidateImageURL string
	DisplayOrder      int
	VoteCount         int64
	Percentage        float64
}

// Results is the derived read view for a poll's tallies.
type Results struct {
	PollID     uuid.UUID
	TotalVotes int64
	Options    []OptionResult
}

// ComputeResults derives per-option counts and percentages from raw counts.
// A poll with zero total votes yields 0% for every option (no division by
// zero). Ordering is by descending vote count; ties keep display order.
func ComputeResults(p Poll, counts map[uuid.UUID]int64) Results {
	var total int64
	for _, opt := range p.Options {
		total += counts[opt.ID]
	}

	results := Results{PollID: p.ID, TotalVotes: total}
	for _, opt := range p.Options {
		count := counts[opt.ID]
		var pct float64
		if total > 0 {
			pct = roundTo2(float64(count) * 100 / float64(total))
		}
		results.Options = append(results.Options, OptionResult{
			OptionID:          opt.ID,
			CandidateName:     opt.CandidateName,
			PartyName:         opt.PartyName,
			CandidateImageURL: opt.CandidateImageURL,
			DisplayOrder:      opt.DisplayOrder,
			VoteCount:         count,
			Percentage:        pct,
		})
	}

	sort.SliceStable(results.Options, func(i, j int) bool {
		if results.Options[i].VoteCount != results.Options[j].VoteCount {
			return results.Options[i].VoteCount > results.Options[j].VoteCount
		}
		return results.Options[i].DisplayOrder < results.Options[j].DisplayOrder
	})

	return results
}

func roundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}
