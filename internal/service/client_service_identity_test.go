package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-flock-keeper/models"
)

func TestMemberIdentityResolver_Resolve(t *testing.T) {
	storages := newTestStorages(t)
	seedTestMembers(t, storages)
	// a member whose email looks like another member's id
	require.NoError(t, storages.Members.Add(context.Background(), models.Member{ID: "4", FirstName: "Two", Email: "2"}))

	r := NewMemberIdentityResolver(storages.Members)

	tests := []struct {
		name   string
		ref    string
		wantID models.ID
		wantOK bool
	}{
		{"exact id", "1", "1", true},
		{"numeric id with padding", " 02 ", "2", true},
		{"id wins over email", "2", "2", true},
		{"email case insensitive", "ADA@example.org", "1", true},
		{"display name", "Alan Turing", "3", true},
		{"normalized name", "  grace   HOPPER ", "2", true},
		{"unknown", "Charles Babbage", "", false},
		{"blank", "   ", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			identity, ok, err := r.Resolve(context.Background(), tt.ref)
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantID, identity.MemberID)
		})
	}
}

func TestMemberIdentityResolver_DisplayName(t *testing.T) {
	storages := newTestStorages(t)
	seedTestMembers(t, storages)

	identity, ok, err := NewMemberIdentityResolver(storages.Members).Resolve(context.Background(), "grace@example.org")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Grace Hopper", identity.DisplayName)
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "ada_lovelace", NormalizeName("  Ada   Lovelace "))
	assert.Equal(t, "ada_lovelace", NormalizeName("ada\tlovelace"))
	assert.Equal(t, "", NormalizeName("   "))
}
