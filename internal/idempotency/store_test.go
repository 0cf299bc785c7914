package idempotency_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/apperr"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/idempotency"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordIsFirstWriterWins(t *testing.T) {
	ctx := context.Background()
	db := testutil.OpenDB(t)
	store := idempotency.NewStore()
	now := time.Now()

	id, recorded, err := store.Record(ctx, db, "donation", "k-1", 11, now)
	require.NoError(t, err)
	assert.True(t, recorded)
	assert.EqualValues(t, 11, id)

	id, recorded, err = store.Record(ctx, db, "donation", "k-1", 22, now)
	require.NoError(t, err)
	assert.False(t, recorded)
	assert.EqualValues(t, 11, id)

	// same key under another scope is independent
	id, recorded, err = store.Record(ctx, db, "rsvp", "k-1", 33, now)
	require.NoError(t, err)
	assert.True(t, recorded)
	assert.EqualValues(t, 33, id)
}

func TestLookupUnknownKey(t *testing.T) {
	db := testutil.OpenDB(t)
	id, err := idempotency.NewStore().Lookup(context.Background(), db, "donation", "missing")
	require.NoError(t, err)
	assert.Zero(t, id)
}

func TestEmptyKeyIsNotTracked(t *testing.T) {
	db := testutil.OpenDB(t)
	id, recorded, err := idempotency.NewStore().Record(context.Background(), db, "donation", "", 5, time.Now())
	require.NoError(t, err)
	assert.True(t, recorded)
	assert.EqualValues(t, 5, id)

	var count int64
	require.NoError(t, db.Model(&idempotency.Receipt{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestNormalize(t *testing.T) {
	key, err := idempotency.Normalize("  abc ")
	require.NoError(t, err)
	assert.Equal(t, "abc", key)

	key, err = idempotency.Normalize(strings.Repeat("x", 128))
	require.NoError(t, err)
	assert.Len(t, key, 128)
}

func TestNormalizeRejectsOverlongKey(t *testing.T) {
	// keys sharing a 128 byte prefix must not collapse onto one receipt
	_, err := idempotency.Normalize(strings.Repeat("x", 128) + "-a")
	assert.ErrorIs(t, err, idempotency.ErrKeyTooLong)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestScopeQualifiesOwners(t *testing.T) {
	assert.Equal(t, "fundraising.donation", idempotency.Scope("fundraising.donation"))
	assert.Equal(t, "meeting.rsvp:42:p-1", idempotency.Scope("meeting.rsvp", "42", "p-1"))
}
