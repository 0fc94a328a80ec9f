package outbox

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/kisanmandi/mandi-backend/pkg/db/dbtest"
	"github.com/kisanmandi/mandi-backend/pkg/db/models"
	"github.com/kisanmandi/mandi-backend/pkg/enums"
)

func TestDLQInsertTruncatesLongErrors(t *testing.T) {
	client := dbtest.Open(t)
	repo := NewDLQRepository(client.DB())
	ctx := context.Background()

	eventID := uuid.New()
	long := strings.Repeat("x", maxDLQErrorLen+200)
	require.NoError(t, client.WithTx(ctx, func(tx *gorm.DB) error {
		return repo.InsertTx(tx, models.OutboxDLQ{
			EventID:       eventID,
			EventType:     enums.EventBidPlaced,
			AggregateType: enums.AggregateListing,
			AggregateID:   uuid.New(),
			Payload:       []byte(`{"version":1}`),
			ErrorReason:   enums.OutboxDLQReasonMaxAttempts,
			ErrorMessage:  &long,
			AttemptCount:  10,
			FailedAt:      time.Now().UTC(),
		})
	}))

	found, err := repo.FindByEventID(ctx, eventID)
	require.NoError(t, err)
	require.NotNil(t, found)
	require.NotEqual(t, uuid.Nil, found.ID)
	require.Len(t, *found.ErrorMessage, maxDLQErrorLen)
	require.Equal(t, enums.OutboxDLQReasonMaxAttempts, found.ErrorReason)

	missing, err := repo.FindByEventID(ctx, uuid.New())
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestDLQInsertRequiresTransaction(t *testing.T) {
	repo := NewDLQRepository(nil)
	require.Error(t, repo.InsertTx(nil, models.OutboxDLQ{}))
}

func TestDLQDeleteFailedBefore(t *testing.T) {
	client := dbtest.Open(t)
	repo := NewDLQRepository(client.DB())
	ctx := context.Background()
	now := time.Now().UTC()

	old, fresh := uuid.New(), uuid.New()
	for id, failedAt := range map[uuid.UUID]time.Time{old: now.Add(-120 * 24 * time.Hour), fresh: now.Add(-time.Hour)} {
		entry := models.OutboxDLQ{
			EventID:       id,
			EventType:     enums.EventSettlementRecorded,
			AggregateType: enums.AggregateTransaction,
			AggregateID:   uuid.New(),
			Payload:       []byte(`{"version":1}`),
			ErrorReason:   enums.OutboxDLQReasonNonRetryable,
			AttemptCount:  1,
			FailedAt:      failedAt,
		}
		require.NoError(t, client.WithTx(ctx, func(tx *gorm.DB) error { return repo.InsertTx(tx, entry) }))
	}

	var deleted int64
	require.NoError(t, client.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		deleted, err = repo.DeleteFailedBefore(ctx, tx, now.Add(-90*24*time.Hour))
		return err
	}))
	require.EqualValues(t, 1, deleted)

	gone, err := repo.FindByEventID(ctx, old)
	require.NoError(t, err)
	require.Nil(t, gone)
	kept, err := repo.FindByEventID(ctx, fresh)
	require.NoError(t, err)
	require.NotNil(t, kept)
}
