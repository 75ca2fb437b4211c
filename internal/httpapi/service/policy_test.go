package service

import (
	"testing"

	"github.com/Rengoky/Base-for-films/internal/httpapi/models"

	"github.com/stretchr/testify/assert"
)

func TestCanModify(t *testing.T) {
	tests := []struct {
		name     string
		actorID  string
		role     string
		ownerID  string
		expected bool
	}{
		{"owner", "u1", models.RoleUser, "u1", true},
		{"stranger", "u2", models.RoleUser, "u1", false},
		{"moderator", "u2", models.RoleModerator, "u1", true},
		{"admin", "u2", models.RoleAdmin, "u1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CanModify(tt.actorID, tt.role, tt.ownerID))
		})
	}
}
