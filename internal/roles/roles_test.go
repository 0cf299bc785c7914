package roles

import (
	"testing"

	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAcceptsDisplayNameAndSlug(t *testing.T) {
	role, err := Parse("board member")
	require.NoError(t, err)
	assert.Equal(t, BoardMember, role)

	role, err = Parse("licensed_medical_professional")
	require.NoError(t, err)
	assert.Equal(t, LicensedMedicalProfessional, role)
}

func TestParseRejectsUnknownRole(t *testing.T) {
	_, err := Parse("Chief Vibes Officer")
	assert.ErrorIs(t, err, ErrUnknownRole)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = Parse("  ")
	assert.ErrorIs(t, err, ErrUnknownRole)
}

func TestEveryRoleHasTraits(t *testing.T) {
	seen := map[string]bool{}
	for _, role := range All() {
		assert.True(t, role.Valid(), role)
		slug := role.Slug()
		assert.NotEmpty(t, slug, role)
		assert.False(t, seen[slug], "duplicate slug %s", slug)
		seen[slug] = true
	}
	assert.Len(t, All(), len(traits))
}

func TestTraitClassification(t *testing.T) {
	assert.True(t, BoardMember.IsGovernance())
	assert.True(t, CommunityAdvisoryBoard.IsGovernance())
	assert.False(t, BoardMember.IsClinical())
	assert.True(t, MedicalAdmin.IsClinical())
	assert.False(t, CoreVolunteer.IsGovernance())
	assert.False(t, CoreVolunteer.IsClinical())
	assert.False(t, Role("").Valid())
}
