package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aquanqa/ticketera/internal/domain"
)

func TestClassify(t *testing.T) {
	policy := NewPolicy([]string{"Admin@Example.com", "  boss@example.com "})

	tests := []struct {
		name     string
		identity string
		want     Role
	}{
		{name: "exact match", identity: "admin@example.com", want: RoleAdministrator},
		{name: "case-insensitive match", identity: "ADMIN@EXAMPLE.COM", want: RoleAdministrator},
		{name: "allow-list entry was trimmed", identity: "boss@example.com", want: RoleAdministrator},
		{name: "unknown identity", identity: "alice@example.com", want: RoleSubmitter},
		{name: "near miss", identity: "admin@example.org", want: RoleSubmitter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, policy.Classify(tt.identity))
		})
	}
}

func TestVisibleTickets(t *testing.T) {
	policy := NewPolicy([]string{"admin@example.com"})
	tickets := []domain.Ticket{
		{ID: "t1", Owner: "u1"},
		{ID: "t2", Owner: "u2"},
		{ID: "t3", Owner: "u1"},
	}

	t.Run("submitter sees only own tickets", func(t *testing.T) {
		visible := policy.VisibleTickets("u1", tickets)
		assert.Len(t, visible, 2)
		for _, ticket := range visible {
			assert.Equal(t, "u1", ticket.Owner)
		}
	})

	t.Run("submitter with no tickets sees none", func(t *testing.T) {
		assert.Empty(t, policy.VisibleTickets("u3", tickets))
	})

	t.Run("administrator sees everything", func(t *testing.T) {
		assert.Len(t, policy.VisibleTickets("admin@example.com", tickets), 3)
	})

	t.Run("returned slice is a copy", func(t *testing.T) {
		visible := policy.VisibleTickets("admin@example.com", tickets)
		visible[0].Owner = "mutated"
		assert.Equal(t, "u1", tickets[0].Owner)
	})
}
