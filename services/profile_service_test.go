package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/singhastra/microfeedx/models"
)

func TestValidateUsername(t *testing.T) {
	valid := []string{"abc", "alice_99", "x_0", "twenty_characters_xx"}
	for _, name := range valid {
		assert.NoError(t, ValidateUsername(name), name)
	}

	invalid := []string{"ab", "Alice", "has space", "dash-ed", "ünïcode", "twenty_one_characters"}
	for _, name := range invalid {
		assert.ErrorIs(t, ValidateUsername(name), ErrValidation, name)
	}
}

func TestCreateProfileNormalizes(t *testing.T) {
	store := newProfileSet()
	svc := NewProfileService(store)

	profile, err := svc.Create("u1", "  Alice_99  ", "  Alice Zhang ")
	require.NoError(t, err)
	assert.Equal(t, "alice_99", profile.Username)
	assert.Equal(t, "Alice Zhang", profile.FullName)
	assert.Equal(t, "u1", profile.ID)
}

func TestCreateProfileRejectsTakenUsername(t *testing.T) {
	store := newProfileSet()
	svc := NewProfileService(store)

	_, err := svc.Create("u1", "alice", "")
	require.NoError(t, err)

	_, err = svc.Create("u2", "ALICE", "")
	assert.ErrorIs(t, err, ErrValidation)
}

// racingProfileStore misses on lookup but rejects the insert, mimicking a
// concurrent setup that wins the unique index between the two calls.
type racingProfileStore struct {
	*profileSet
}

func (r racingProfileStore) GetProfileByUsername(string) (models.Profile, bool, error) {
	return models.Profile{}, false, nil
}

func (r racingProfileStore) CreateProfile(*models.Profile) error {
	return fmt.Errorf("uniq violation: %w", ErrDuplicate)
}

func TestCreateProfileLosesInsertRace(t *testing.T) {
	svc := NewProfileService(racingProfileStore{newProfileSet()})

	_, err := svc.Create("u1", "alice", "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestGetProfile(t *testing.T) {
	store := newProfileSet("u1")
	svc := NewProfileService(store)

	profile, err := svc.Get("u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", profile.ID)

	_, err = svc.Get("missing")
	assert.ErrorIs(t, err, ErrProfileNotFound)

	_, err = svc.Get("")
	assert.ErrorIs(t, err, ErrAuthenticationRequired)
}

func TestGetProfileByUsername(t *testing.T) {
	store := newProfileSet("u1")
	svc := NewProfileService(store)

	profile, err := svc.GetByUsername("  USER_U1 ")
	require.NoError(t, err)
	assert.Equal(t, "u1", profile.ID)

	_, err = svc.GetByUsername("ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}
