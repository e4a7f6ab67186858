package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordSetAndMatches(t *testing.T) {
	var p Password
	require.NoError(t, p.Set("correct horse battery"))
	require.NotEmpty(t, p.Hash)

	ok, err := p.Matches("correct horse battery")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = p.Matches("wrong password")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIsApprovedDealer(t *testing.T) {
	tests := []struct {
		role   string
		status string
		want   bool
	}{
		{RoleDealer, StatusApproved, true},
		{RoleDealer, StatusPending, false},
		{RoleDealer, StatusSuspended, false},
		{RoleAdmin, StatusApproved, false},
	}

	for _, tt := range tests {
		u := User{Role: tt.role, Status: tt.status}
		assert.Equal(t, tt.want, u.IsApprovedDealer(), "%s/%s", tt.role, tt.status)
	}
}

func TestIsStaff(t *testing.T) {
	assert.True(t, (&User{Role: RoleAdmin}).IsStaff())
	assert.True(t, (&User{Role: RoleOperator}).IsStaff())
	assert.False(t, (&User{Role: RoleDealer}).IsStaff())
}

func TestVariantLabel(t *testing.T) {
	red, xl := "Red", "XL"

	assert.Equal(t, "Red / XL", (&ProductVariant{Color: &red, Size: &xl}).Label())
	assert.Equal(t, "Red", (&ProductVariant{Color: &red}).Label())
	assert.Equal(t, "XL", (&ProductVariant{Size: &xl}).Label())
	assert.Equal(t, "", (&ProductVariant{}).Label())
}
