package certification

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/kisanmandi/mandi-backend/internal/batches"
	"github.com/kisanmandi/mandi-backend/pkg/db"
	"github.com/kisanmandi/mandi-backend/pkg/db/dbtest"
	"github.com/kisanmandi/mandi-backend/pkg/enums"
	pkgerrors "github.com/kisanmandi/mandi-backend/pkg/errors"
	"github.com/kisanmandi/mandi-backend/pkg/outbox"
)

func newTestService(t *testing.T) (Service, *db.Client) {
	t.Helper()
	client := dbtest.Open(t)
	emitter := outbox.NewService(outbox.NewRepository(client.DB()), nil)
	registry, err := batches.NewService(batches.NewRepository(client.DB()), client, emitter)
	require.NoError(t, err)
	svc, err := NewService(NewRepository(client.DB()), registry, client, emitter)
	require.NoError(t, err)
	return svc, client
}

func TestRequestThenApprove(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()
	farmer := uuid.New()
	batch := dbtest.SeedBatch(t, client, farmer, "wheat", decimal.NewFromInt(10), enums.CropUnitQuintal)

	cert, err := svc.Request(ctx, RequestInput{BatchID: batch.ID, FarmerID: farmer})
	require.NoError(t, err)
	require.Equal(t, enums.CertificationStatusPending, cert.Status)
	require.Equal(t, enums.QualityStatusPending, dbtest.ReloadBatch(t, client, batch.ID).QualityStatus)

	_, err = svc.Request(ctx, RequestInput{BatchID: batch.ID, FarmerID: farmer})
	require.True(t, pkgerrors.IsConflict(err), "second pending request conflicts")

	_, _, err = svc.CertifiedGrade(ctx, batch.ID)
	require.NoError(t, err)

	decided, err := svc.Decide(ctx, DecideInput{
		CertificationID: cert.ID,
		InspectorID:     uuid.New(),
		InspectorRole:   enums.ActorRoleOfficer,
		Approve:         true,
		Grade:           "FAQ",
	})
	require.NoError(t, err)
	require.Equal(t, enums.CertificationStatusApproved, decided.Status)

	grade, ok, err := svc.CertifiedGrade(ctx, batch.ID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "FAQ", grade)

	stored := dbtest.ReloadBatch(t, client, batch.ID)
	require.Equal(t, enums.BatchSaleStatusAvailable, stored.SaleStatus, "certification never touches sale status")
}

func TestDecideGuards(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()
	farmer := uuid.New()
	batch := dbtest.SeedBatch(t, client, farmer, "rice", decimal.NewFromInt(4), enums.CropUnitQuintal)

	_, err := svc.Request(ctx, RequestInput{BatchID: batch.ID, FarmerID: uuid.New()})
	require.True(t, pkgerrors.IsForbidden(err))

	cert, err := svc.Request(ctx, RequestInput{BatchID: batch.ID, FarmerID: farmer})
	require.NoError(t, err)

	_, err = svc.Decide(ctx, DecideInput{CertificationID: cert.ID, InspectorID: uuid.New(), InspectorRole: enums.ActorRoleBuyer, Approve: true, Grade: "A"})
	require.True(t, pkgerrors.IsForbidden(err))

	_, err = svc.Decide(ctx, DecideInput{CertificationID: cert.ID, InspectorID: uuid.New(), InspectorRole: enums.ActorRoleOfficer, Approve: true})
	require.True(t, pkgerrors.IsValidation(err))

	rejected, err := svc.Decide(ctx, DecideInput{CertificationID: cert.ID, InspectorID: uuid.New(), InspectorRole: enums.ActorRoleAdmin, Remarks: "moisture too high"})
	require.NoError(t, err)
	require.Equal(t, enums.CertificationStatusRejected, rejected.Status)
	require.Equal(t, enums.QualityStatusRejected, dbtest.ReloadBatch(t, client, batch.ID).QualityStatus)

	_, err = svc.Decide(ctx, DecideInput{CertificationID: cert.ID, InspectorID: uuid.New(), InspectorRole: enums.ActorRoleOfficer, Approve: true, Grade: "A"})
	require.True(t, pkgerrors.IsConflict(err))

	_, err = svc.Decide(ctx, DecideInput{CertificationID: uuid.New(), InspectorID: uuid.New(), InspectorRole: enums.ActorRoleOfficer})
	require.True(t, pkgerrors.IsNotFound(err))

	history, err := svc.ListByBatch(ctx, batch.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
}
