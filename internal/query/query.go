// Package query holds the pure transformations the dashboards run over a
// ticket snapshot. Nothing here mutates its input; every function copies
// before filtering or sorting so a snapshot can be reused across views.
package query

import (
	"sort"

	"github.com/aquanqa/ticketera/internal/domain"
)

// SortOrder selects how a ticket listing is ordered.
type SortOrder string

const (
	SortNewest      SortOrder = "newest"
	SortOldest      SortOrder = "oldest"
	SortMostRecords SortOrder = "most_records"
)

// FilterByState keeps tickets whose state matches exactly.
func FilterByState(tickets []domain.Ticket, state domain.TicketState) []domain.Ticket {
	out := make([]domain.Ticket, 0, len(tickets))
	for _, ticket := range tickets {
		if ticket.State == state {
			out = append(out, ticket)
		}
	}
	return out
}

// FilterByOwner keeps tickets whose owner matches exactly.
func FilterByOwner(tickets []domain.Ticket, owner string) []domain.Ticket {
	out := make([]domain.Ticket, 0, len(tickets))
	for _, ticket := range tickets {
		if ticket.Owner == owner {
			out = append(out, ticket)
		}
	}
	return out
}

// Sort returns a copy ordered by the requested criterion. Ties keep their
// input order. An unknown order returns the copy unsorted.
func Sort(tickets []domain.Ticket, order SortOrder) []domain.Ticket {
	out := make([]domain.Ticket, len(tickets))
	copy(out, tickets)

	switch order {
	case SortNewest:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		})
	case SortOldest:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		})
	case SortMostRecords:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].RecordCount > out[j].RecordCount
		})
	}
	return out
}

// Metrics aggregates the dashboard counters over a snapshot.
type Metrics struct {
	Total          int                        `json:"total"`
	ByState        map[domain.TicketState]int `json:"by_state"`
	DistinctOwners int                        `json:"distinct_owners"`
}

// Aggregate computes per-state counts and the distinct-owner count.
func Aggregate(tickets []domain.Ticket) Metrics {
	metrics := Metrics{
		Total:   len(tickets),
		ByState: make(map[domain.TicketState]int, len(domain.States())),
	}
	for _, state := range domain.States() {
		metrics.ByState[state] = 0
	}

	owners := make(map[string]struct{})
	for _, ticket := range tickets {
		metrics.ByState[ticket.State]++
		owners[ticket.Owner] = struct{}{}
	}
	metrics.DistinctOwners = len(owners)
	return metrics
}
