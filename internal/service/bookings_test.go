package service

import (
	"context"
	"testing"
	"time"

	"shareit/internal/database"
	"shareit/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupDB(t *testing.T) *database.DB {
	logger := zerolog.Nop()
	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func newBookingService(t *testing.T, db *database.DB) *BookingService {
	logger := zerolog.Nop()
	return NewBookingService(db, db, db, db, &logger)
}

func addUser(t *testing.T, db *database.DB, name, email string) *models.User {
	user := &models.User{Name: name, Email: email}
	require.NoError(t, db.CreateUser(context.Background(), user))
	return user
}

func addItem(t *testing.T, db *database.DB, ownerID int64, name string, available bool) *models.Item {
	item := &models.Item{OwnerID: ownerID, Name: name, Available: available}
	require.NoError(t, db.CreateItem(context.Background(), item))
	return item
}

func bookingFixture(t *testing.T) (*BookingService, *database.DB, *models.User, *models.User, *models.Item) {
	db := setupDB(t)
	svc := newBookingService(t, db)
	owner := addUser(t, db, "Owner", "owner@example.com")
	booker := addUser(t, db, "Booker", "booker@example.com")
	item := addItem(t, db, owner.ID, "Drill", true)
	return svc, db, owner, booker, item
}

func TestBookingCreate(t *testing.T) {
	svc, db, _, booker, item := bookingFixture(t)
	ctx := context.Background()

	start := time.Now().Add(24 * time.Hour)
	booking, err := svc.Create(ctx, booker.ID, item.ID, start, start.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, models.StatusWaiting, booking.Status)
	assert.Equal(t, "Drill", booking.ItemName)
	assert.Equal(t, "Booker", booking.BookerName)

	// The lifecycle event lands in the outbox alongside the booking.
	pending, err := db.GetPendingEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, models.EventBookingCreated, pending[0].EventType)
	assert.Equal(t, booking.ID, pending[0].BookingID)
}

func TestBookingCreate_OwnerCannotBookOwnItem(t *testing.T) {
	svc, _, owner, _, item := bookingFixture(t)

	start := time.Now().Add(24 * time.Hour)
	_, err := svc.Create(context.Background(), owner.ID, item.ID, start, start.Add(time.Hour))
	assert.True(t, IsKind(err, KindOwnerConflict))
}

func TestBookingCreate_UnavailableItem(t *testing.T) {
	svc, db, owner, booker, _ := bookingFixture(t)

	unavailable := addItem(t, db, owner.ID, "Broken drill", false)
	start := time.Now().Add(24 * time.Hour)
	_, err := svc.Create(context.Background(), booker.ID, unavailable.ID, start, start.Add(time.Hour))
	assert.True(t, IsKind(err, KindNotAvailable))
}

func TestBookingCreate_UnknownUserAndItem(t *testing.T) {
	svc, _, _, booker, item := bookingFixture(t)

	start := time.Now().Add(24 * time.Hour)
	_, err := svc.Create(context.Background(), 9999, item.ID, start, start.Add(time.Hour))
	assert.True(t, IsKind(err, KindNotFound))

	_, err = svc.Create(context.Background(), booker.ID, 9999, start, start.Add(time.Hour))
	assert.True(t, IsKind(err, KindNotFound))
}

func TestBookingCreate_InvertedWindow(t *testing.T) {
	svc, _, _, booker, item := bookingFixture(t)

	start := time.Now().Add(24 * time.Hour)
	_, err := svc.Create(context.Background(), booker.ID, item.ID, start, start)
	assert.True(t, IsKind(err, KindBadRequest))
}

func TestBookingCreate_ApprovedOverlapBlocks(t *testing.T) {
	svc, db, owner, booker, item := bookingFixture(t)
	ctx := context.Background()

	start := time.Now().Add(24 * time.Hour)
	first, err := svc.Create(ctx, booker.ID, item.ID, start, start.Add(24*time.Hour))
	require.NoError(t, err)

	// A competing request against the still-WAITING window is allowed.
	rival := addUser(t, db, "Rival", "rival@example.com")
	_, err = svc.Create(ctx, rival.ID, item.ID, start, start.Add(24*time.Hour))
	require.NoError(t, err)

	_, err = svc.Approve(ctx, owner.ID, first.ID, true)
	require.NoError(t, err)

	// Once approved, an overlapping window is rejected.
	_, err = svc.Create(ctx, rival.ID, item.ID, start.Add(12*time.Hour), start.Add(36*time.Hour))
	assert.True(t, IsKind(err, KindNotAvailable))
}

func TestBookingApprove(t *testing.T) {
	svc, db, owner, booker, item := bookingFixture(t)
	ctx := context.Background()

	start := time.Now().Add(24 * time.Hour)
	booking, err := svc.Create(ctx, booker.ID, item.ID, start, start.Add(time.Hour))
	require.NoError(t, err)

	approved, err := svc.Approve(ctx, owner.ID, booking.ID, true)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, approved.Status)

	// The transition is terminal.
	_, err = svc.Approve(ctx, owner.ID, booking.ID, false)
	assert.True(t, IsKind(err, KindBadRequest))

	pending, err := db.GetPendingEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, models.EventBookingApproved, pending[1].EventType)
}

func TestBookingReject(t *testing.T) {
	svc, _, owner, booker, item := bookingFixture(t)
	ctx := context.Background()

	start := time.Now().Add(24 * time.Hour)
	booking, err := svc.Create(ctx, booker.ID, item.ID, start, start.Add(time.Hour))
	require.NoError(t, err)

	rejected, err := svc.Approve(ctx, owner.ID, booking.ID, false)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, rejected.Status)
}

func TestBookingApprove_OnlyOwner(t *testing.T) {
	svc, db, _, booker, item := bookingFixture(t)
	ctx := context.Background()

	stranger := addUser(t, db, "Stranger", "stranger@example.com")
	start := time.Now().Add(24 * time.Hour)
	booking, err := svc.Create(ctx, booker.ID, item.ID, start, start.Add(time.Hour))
	require.NoError(t, err)

	// The booker cannot approve their own request, and a stranger sees
	// nothing at all. Both read as absence.
	_, err = svc.Approve(ctx, booker.ID, booking.ID, true)
	assert.True(t, IsKind(err, KindNotFound))
	_, err = svc.Approve(ctx, stranger.ID, booking.ID, true)
	assert.True(t, IsKind(err, KindNotFound))

	got, err := svc.FindByUserAndID(ctx, booking.ID, booker.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusWaiting, got.Status)
}

func TestBookingVisibility(t *testing.T) {
	svc, db, owner, booker, item := bookingFixture(t)
	ctx := context.Background()

	stranger := addUser(t, db, "Stranger", "stranger@example.com")
	start := time.Now().Add(24 * time.Hour)
	booking, err := svc.Create(ctx, booker.ID, item.ID, start, start.Add(time.Hour))
	require.NoError(t, err)

	for _, viewer := range []int64{owner.ID, booker.ID} {
		got, err := svc.FindByUserAndID(ctx, booking.ID, viewer)
		require.NoError(t, err)
		assert.Equal(t, booking.ID, got.ID)
	}

	_, err = svc.FindByUserAndID(ctx, booking.ID, stranger.ID)
	assert.True(t, IsKind(err, KindNotFound))
}

func TestBookingList_UnknownState(t *testing.T) {
	svc, _, _, booker, _ := bookingFixture(t)

	_, err := svc.FindAllByBooker(context.Background(), booker.ID, "BOGUS", 0, 10)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindBadRequest))
	assert.EqualError(t, err, "Unknown state: BOGUS")
}

func TestBookingList_InvalidPagination(t *testing.T) {
	svc, _, owner, booker, _ := bookingFixture(t)
	ctx := context.Background()

	_, err := svc.FindAllByBooker(ctx, booker.ID, "ALL", -1, 10)
	assert.True(t, IsKind(err, KindBadRequest))
	_, err = svc.FindAllByOwner(ctx, owner.ID, "ALL", 0, 0)
	assert.True(t, IsKind(err, KindBadRequest))
}

func TestBookingList_PageIndexOffset(t *testing.T) {
	svc, _, _, booker, item := bookingFixture(t)
	ctx := context.Background()
	now := time.Now()

	for i := 1; i <= 5; i++ {
		start := now.Add(time.Duration(i) * 24 * time.Hour)
		_, err := svc.Create(ctx, booker.ID, item.ID, start, start.Add(time.Hour))
		require.NoError(t, err)
	}

	// from is snapped down to its page boundary: from=3,size=2 reads page 1.
	page, err := svc.FindAllByBooker(ctx, booker.ID, "ALL", 3, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	firstPage, err := svc.FindAllByBooker(ctx, booker.ID, "ALL", 0, 2)
	require.NoError(t, err)
	assert.True(t, firstPage[1].Start.After(page[0].Start))
}

func TestBookingList_CurrentWindowScenario(t *testing.T) {
	svc, db, owner, booker, item := bookingFixture(t)
	ctx := context.Background()

	start := time.Now().Add(24 * time.Hour)
	booking, err := svc.Create(ctx, booker.ID, item.ID, start, start.Add(24*time.Hour))
	require.NoError(t, err)
	_, err = svc.Approve(ctx, owner.ID, booking.ID, true)
	require.NoError(t, err)

	current, err := svc.FindAllByOwner(ctx, owner.ID, "CURRENT", 0, 10)
	require.NoError(t, err)
	assert.Empty(t, current, "future window is not current")

	future, err := svc.FindAllByOwner(ctx, owner.ID, "FUTURE", 0, 10)
	require.NoError(t, err)
	require.Len(t, future, 1)
	assert.Equal(t, booking.ID, future[0].ID)

	// Shift the window around now and the booking moves into CURRENT.
	_, err = db.ExecContext(ctx, `UPDATE bookings SET start_time = ?, end_time = ? WHERE id = ?`,
		time.Now().Add(-time.Hour).Unix(), time.Now().Add(time.Hour).Unix(), booking.ID)
	require.NoError(t, err)

	current, err = svc.FindAllByOwner(ctx, owner.ID, "CURRENT", 0, 10)
	require.NoError(t, err)
	require.Len(t, current, 1)
	assert.Equal(t, booking.ID, current[0].ID)
}

func TestBookingReport(t *testing.T) {
	svc, _, owner, booker, item := bookingFixture(t)
	ctx := context.Background()

	start := time.Now().Add(24 * time.Hour)
	_, err := svc.Create(ctx, booker.ID, item.ID, start, start.Add(time.Hour))
	require.NoError(t, err)

	rows, err := svc.Report(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Drill", rows[0].ItemName)

	rows, err = svc.Report(ctx, booker.ID)
	require.NoError(t, err)
	assert.Empty(t, rows, "booker owns no items")
}
