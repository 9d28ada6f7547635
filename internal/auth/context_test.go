package auth_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/straye-as/salesops-api/internal/auth"
	"github.com/straye-as/salesops-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTerritoryPrefix(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"mnl-north", "MN"},
		{"CE", "CE"},
		{"v", "V"},
		{"", ""},
		{"  ce-south", "CE"},
	}
	for _, tc := range tests {
		t.Run(tc.code, func(t *testing.T) {
			assert.Equal(t, tc.want, auth.TerritoryPrefix(tc.code))
		})
	}
}

func TestAgentFilter(t *testing.T) {
	agent := &auth.UserContext{UserID: uuid.New(), Roles: []domain.UserRoleType{domain.RoleSalesAgent}}
	manager := &auth.UserContext{UserID: uuid.New(), Roles: []domain.UserRoleType{domain.RoleManager}}

	filter := agent.AgentFilter()
	require.NotNil(t, filter)
	assert.Equal(t, agent.UserID.String(), *filter)
	assert.Nil(t, manager.AgentFilter())
	assert.True(t, manager.IsManager())
	assert.False(t, agent.IsManager())
}

func TestGetEffectiveAgentFilter(t *testing.T) {
	assert.Nil(t, auth.GetEffectiveAgentFilter(context.Background()))

	agent := &auth.UserContext{UserID: uuid.New(), Roles: []domain.UserRoleType{domain.RoleSalesAgent}}
	ctx := auth.WithUserContext(context.Background(), agent)
	filter := auth.GetEffectiveAgentFilter(ctx)
	require.NotNil(t, filter)
	assert.Equal(t, agent.UserID.String(), *filter)
}
