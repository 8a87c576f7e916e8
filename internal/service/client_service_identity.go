package service

import (
	"context"
	"strings"

	"github.com/MKhiriev/go-flock-keeper/internal/store"
	"github.com/MKhiriev/go-flock-keeper/models"
)

type memberIdentityResolver struct {
	members *store.KeyedStore[models.Member]
}

// NewMemberIdentityResolver returns an [IdentityResolver] over the local
// members store. A reference is tried as an exact id, then as an email
// (case-insensitive), then as a normalized display name.
func NewMemberIdentityResolver(members *store.KeyedStore[models.Member]) IdentityResolver {
	return &memberIdentityResolver{members: members}
}

func (r *memberIdentityResolver) Resolve(ctx context.Context, ref string) (models.CanonicalIdentity, bool, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return models.CanonicalIdentity{}, false, nil
	}

	members, err := r.members.GetAll(ctx)
	if err != nil {
		return models.CanonicalIdentity{}, false, err
	}

	id := models.NewID(ref)
	for _, m := range members {
		if m.ID == id {
			return identityOf(m), true, nil
		}
	}

	for _, m := range members {
		if m.Email != "" && strings.EqualFold(m.Email, ref) {
			return identityOf(m), true, nil
		}
	}

	name := NormalizeName(ref)
	for _, m := range members {
		if NormalizeName(m.DisplayName()) == name {
			return identityOf(m), true, nil
		}
	}

	return models.CanonicalIdentity{}, false, nil
}

func identityOf(m models.Member) models.CanonicalIdentity {
	return models.CanonicalIdentity{MemberID: m.ID, DisplayName: m.DisplayName()}
}

// NormalizeName lowercases s and replaces every run of whitespace with a
// single underscore: "  Ada   Lovelace " becomes "ada_lovelace".
func NormalizeName(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), "_")
}
