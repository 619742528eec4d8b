package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		side, from, to string
		want           bool
	}{
		{SideSell, TradePending, TradeApproved, true},
		{SideSell, TradePending, TradePartiallyApproved, true},
		{SideSell, TradePending, TradeDeclined, true},
		{SideSell, TradePending, TradeTransferred, false},
		{SideSell, TradeApproved, TradeDeclined, false},
		{SideSell, TradeDeclined, TradeApproved, false},
		{SideSell, TradePending, TradePending, false},
		{SideBuy, TradePending, TradeTransferred, true},
		{SideBuy, TradePending, TradeDeclined, true},
		{SideBuy, TradePending, TradeApproved, false},
		{SideBuy, TradePending, TradePartiallyApproved, false},
		{SideBuy, TradeTransferred, TradeDeclined, false},
	}

	for _, tt := range tests {
		t.Run(tt.side+"/"+tt.from+"->"+tt.to, func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.side, tt.from, tt.to))
		})
	}
}

func TestIsSettled(t *testing.T) {
	assert.True(t, IsSettled(TradeApproved))
	assert.True(t, IsSettled(TradePartiallyApproved))
	assert.True(t, IsSettled(TradeTransferred))
	assert.False(t, IsSettled(TradeDeclined))
	assert.False(t, IsSettled(TradePending))
}

func TestUserPermissionsDeduplicated(t *testing.T) {
	u := User{Roles: []Role{
		{Name: RoleAdmin, Permissions: []Permission{{Name: PermissionUserRead}, {Name: PermissionKYCReview}}},
		{Name: RoleSupport, Permissions: []Permission{{Name: PermissionUserRead}}},
	}}

	assert.ElementsMatch(t, []string{PermissionUserRead, PermissionKYCReview}, u.Permissions())
	assert.Equal(t, []string{RoleAdmin, RoleSupport}, u.RoleNames())
}
