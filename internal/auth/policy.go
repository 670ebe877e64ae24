package auth

import (
	"strings"

	"github.com/aquanqa/ticketera/internal/domain"
)

// Role is the access role derived from a caller identity.
type Role string

const (
	RoleAdministrator Role = "administrator"
	RoleSubmitter     Role = "submitter"
)

// Policy classifies caller identities against a fixed administrator
// allow-list and derives the ticket subset each caller may see.
type Policy struct {
	admins map[string]struct{}
}

// NewPolicy builds a policy from the configured administrator identities.
func NewPolicy(adminUsers []string) *Policy {
	admins := make(map[string]struct{}, len(adminUsers))
	for _, user := range adminUsers {
		admins[strings.ToLower(strings.TrimSpace(user))] = struct{}{}
	}
	return &Policy{admins: admins}
}

// Classify resolves an identity to its role. The allow-list compare is
// case-insensitive; any identity not on it is a submitter. Absence of an
// identity is handled before classification, by the middleware.
func (p *Policy) Classify(identity string) Role {
	if _, ok := p.admins[strings.ToLower(identity)]; ok {
		return RoleAdministrator
	}
	return RoleSubmitter
}

// VisibleTickets returns the subset of tickets the identity may see:
// administrators see everything, submitters only their own.
func (p *Policy) VisibleTickets(identity string, tickets []domain.Ticket) []domain.Ticket {
	if p.Classify(identity) == RoleAdministrator {
		out := make([]domain.Ticket, len(tickets))
		copy(out, tickets)
		return out
	}
	out := make([]domain.Ticket, 0, len(tickets))
	for _, ticket := range tickets {
		if ticket.Owner == identity {
			out = append(out, ticket)
		}
	}
	return out
}
