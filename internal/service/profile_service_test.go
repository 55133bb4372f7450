package service

import (
	"context"
	"testing"

	"github.com/calebc9298-pixel/fencepost/internal/domain"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newProfileFixture(t *testing.T) (ProfileService, *memUserRepo, primitive.ObjectID) {
	t.Helper()
	svc, users, _, id := newProfileRainfallFixture(t)
	return svc, users, id
}

func newProfileRainfallFixture(t *testing.T) (ProfileService, *memUserRepo, *memRainfallRepo, primitive.ObjectID) {
	t.Helper()
	users := &memUserRepo{users: map[primitive.ObjectID]*domain.User{}}
	rainfall := &memRainfallRepo{records: map[string]*domain.RainfallRecord{}}
	id, err := users.Create(context.Background(), &domain.User{
		Name:  "Dale",
		Email: "dale@farm.test",
		Role:  domain.RoleFarmer,
	})
	require.NoError(t, err)
	return NewProfileService(users, rainfall), users, rainfall, id
}

func TestUpdateProfileDerivesRegion(t *testing.T) {
	svc, _, id := newProfileFixture(t)

	user, err := svc.Update(context.Background(), id, ProfileUpdate{
		Address: &domain.Address{City: "Ames", State: "IA", ZipCode: "50010"},
	})
	require.NoError(t, err)
	require.Equal(t, "Midwest", user.Region)

	user, err = svc.Update(context.Background(), id, ProfileUpdate{
		Address: &domain.Address{State: "tx"},
	})
	require.NoError(t, err)
	require.Equal(t, "South", user.Region)

	user, err = svc.Update(context.Background(), id, ProfileUpdate{
		Address: &domain.Address{State: "ZZ"},
	})
	require.NoError(t, err)
	require.Empty(t, user.Region)
}

func TestUpdateProfilePartialFields(t *testing.T) {
	svc, users, id := newProfileFixture(t)

	acres := 640.0
	_, err := svc.Update(context.Background(), id, ProfileUpdate{AcresFarmed: &acres})
	require.NoError(t, err)

	stored, err := users.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, 640.0, stored.AcresFarmed)
	// Untouched fields survive.
	require.Equal(t, "Dale", stored.Name)
}

func TestUpdateProfileUnknownUser(t *testing.T) {
	svc, _, _ := newProfileFixture(t)

	name := "Ghost"
	_, err := svc.Update(context.Background(), primitive.NewObjectID(), ProfileUpdate{Name: &name})
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestSetBannedRequiresAdmin(t *testing.T) {
	svc, users, farmerID := newProfileFixture(t)

	otherID, err := users.Create(context.Background(), &domain.User{
		Name: "Ray", Email: "ray@farm.test", Role: domain.RoleFarmer,
	})
	require.NoError(t, err)

	err = svc.SetBanned(context.Background(), farmerID, otherID, true)
	require.ErrorIs(t, err, ErrAdminOnly)

	adminID, err := users.Create(context.Background(), &domain.User{
		Name: "Mod", Email: "mod@farm.test", Role: domain.RoleAdmin,
	})
	require.NoError(t, err)

	require.NoError(t, svc.SetBanned(context.Background(), adminID, otherID, true))
	banned, err := users.GetByID(context.Background(), otherID)
	require.NoError(t, err)
	require.True(t, banned.Banned)
}

func TestRainfallYearSumsMonthlyTotals(t *testing.T) {
	svc, _, rainfall, id := newProfileRainfallFixture(t)

	require.NoError(t, rainfall.Record(context.Background(), id, 2026, 4, 1.0))
	require.NoError(t, rainfall.Record(context.Background(), id, 2026, 5, 2.5))
	require.NoError(t, rainfall.Record(context.Background(), id, 2026, 5, 0.5))
	require.NoError(t, rainfall.Record(context.Background(), id, 2025, 6, 9.0))

	summary, err := svc.RainfallYear(context.Background(), id, 2026)
	require.NoError(t, err)
	require.Equal(t, 2026, summary.Year)
	require.Len(t, summary.Months, 2)
	require.Equal(t, 4, summary.Months[0].Month)
	require.Equal(t, 1.0, summary.Months[0].Total)
	require.Equal(t, 5, summary.Months[1].Month)
	require.Equal(t, 3.0, summary.Months[1].Total)
	require.Equal(t, 4.0, summary.Total)
}

func TestClearYearRainfallLeavesOtherYears(t *testing.T) {
	svc, _, rainfall, id := newProfileRainfallFixture(t)

	require.NoError(t, rainfall.Record(context.Background(), id, 2025, 6, 9.0))
	require.NoError(t, rainfall.Record(context.Background(), id, 2026, 4, 1.0))

	require.NoError(t, svc.ClearYearRainfall(context.Background(), id, 2025))

	summary, err := svc.RainfallYear(context.Background(), id, 2025)
	require.NoError(t, err)
	require.Empty(t, summary.Months)
	require.Zero(t, summary.Total)

	summary, err = svc.RainfallYear(context.Background(), id, 2026)
	require.NoError(t, err)
	require.Equal(t, 1.0, summary.Total)
}
