package alert

import (
	"context"
	"fmt"
	"testing"
	"time"

	"tradedesk/internal/models"
	"tradedesk/internal/services/notification"
	"tradedesk/internal/testutil"
	"tradedesk/internal/utils/pagination"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setup(t *testing.T, users int) (*gorm.DB, *service) {
	t.Helper()
	db := testutil.NewDB(t)
	for i := 0; i < users; i++ {
		testutil.CreateUser(t, db, fmt.Sprintf("u%d@example.com", i), fmt.Sprintf("0805%07d", i))
	}
	svc := NewService(db, notification.NewService(db, nil, nil), nil).(*service)
	return db, svc
}

func inbox(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.Notification{}).Where("kind = ?", models.NotificationAlert).Count(&n).Error)
	return n
}

func TestCreateDispatchesImmediately(t *testing.T) {
	db, svc := setup(t, 3)
	require.NoError(t, db.Model(&models.User{}).Where("email = ?", "u2@example.com").
		Update("status", models.UserStatusBlocked).Error)

	alert, err := svc.Create(context.Background(), 1, CreateRequest{Title: "Maintenance", Body: "Tonight 2am", Audience: models.AudienceAll})
	require.NoError(t, err)
	assert.Equal(t, models.AlertDispatched, alert.Status)
	assert.NotNil(t, alert.DispatchedAt)

	svc.Wait()
	stored, err := svc.Get(context.Background(), alert.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.RecipientCount)
	assert.EqualValues(t, 2, inbox(t, db))

	_, err = svc.Dispatch(context.Background(), alert.ID)
	assert.ErrorIs(t, err, ErrNotPending)
}

func TestDispatchAllPagesThroughUsers(t *testing.T) {
	db, svc := setup(t, batchSize+5)

	alert, err := svc.Create(context.Background(), 1, CreateRequest{Title: "Hello", Body: "Everyone", Audience: models.AudienceAll})
	require.NoError(t, err)
	svc.Wait()

	stored, err := svc.Get(context.Background(), alert.ID)
	require.NoError(t, err)
	assert.Equal(t, batchSize+5, stored.RecipientCount)
	assert.EqualValues(t, batchSize+5, inbox(t, db))
}

func TestSelectedAudience(t *testing.T) {
	db, svc := setup(t, 3)
	ctx := context.Background()

	_, err := svc.Create(ctx, 1, CreateRequest{Title: "Hi", Body: "You", Audience: models.AudienceSelected})
	assert.ErrorIs(t, err, ErrRecipientsRequired)

	alert, err := svc.Create(ctx, 1, CreateRequest{Title: "Hi", Body: "You", Audience: models.AudienceSelected, UserIDs: []uint{1, 1, 2, 999}})
	require.NoError(t, err)
	assert.Equal(t, models.UintList{1, 2}, alert.UserIDs)
	svc.Wait()

	stored, err := svc.Get(ctx, alert.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.RecipientCount)
	assert.EqualValues(t, 2, inbox(t, db))
}

type gatedBroadcaster struct {
	release chan struct{}
}

func (g *gatedBroadcaster) Broadcast(_ context.Context, userIDs []uint, _, _, _ string) (int, error) {
	<-g.release
	return len(userIDs), nil
}

func TestCreateReturnsBeforeFanOut(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.CreateUser(t, db, "u0@example.com", "08050000000")
	gate := &gatedBroadcaster{release: make(chan struct{})}
	svc := NewService(db, gate, nil)

	ctx, cancel := context.WithCancel(context.Background())
	alert, err := svc.Create(ctx, 1, CreateRequest{Title: "Hi", Body: "All", Audience: models.AudienceAll})
	require.NoError(t, err)
	assert.Equal(t, models.AlertDispatched, alert.Status)
	assert.Zero(t, alert.RecipientCount)

	// the request finishing must not abort delivery
	cancel()
	close(gate.release)
	svc.Wait()

	stored, err := svc.Get(context.Background(), alert.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.RecipientCount)
}

func TestScheduledAlerts(t *testing.T) {
	db, svc := setup(t, 2)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	later := now.Add(time.Hour)
	alert, err := svc.Create(ctx, 1, CreateRequest{Title: "Promo", Body: "Soon", Audience: models.AudienceAll, ScheduledAt: &later})
	require.NoError(t, err)
	assert.Equal(t, models.AlertPending, alert.Status)
	assert.Zero(t, inbox(t, db))

	n, err := svc.DispatchDue(ctx, now.Add(30*time.Minute))
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = svc.DispatchDue(ctx, now.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.EqualValues(t, 2, inbox(t, db))

	n, err = svc.DispatchDue(ctx, now.Add(3*time.Hour))
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCancel(t *testing.T) {
	db, svc := setup(t, 1)
	ctx := context.Background()
	later := time.Now().UTC().Add(time.Hour)

	alert, err := svc.Create(ctx, 1, CreateRequest{Title: "Later", Body: "Body", Audience: models.AudienceAll, ScheduledAt: &later})
	require.NoError(t, err)

	cancelled, err := svc.Cancel(ctx, alert.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AlertCancelled, cancelled.Status)

	_, err = svc.Cancel(ctx, alert.ID)
	assert.ErrorIs(t, err, ErrNotPending)
	_, err = svc.Dispatch(ctx, alert.ID)
	assert.ErrorIs(t, err, ErrNotPending)
	_, err = svc.Cancel(ctx, 999)
	assert.ErrorIs(t, err, ErrAlertNotFound)
	assert.Zero(t, inbox(t, db))

	alerts, total, err := svc.List(ctx, pagination.NewQuery(map[string]string{"status": models.AlertCancelled}))
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, alert.ID, alerts[0].ID)
}

func TestWorkerRun(t *testing.T) {
	db, svc := setup(t, 1)
	past := time.Now().UTC().Add(-time.Minute)
	require.NoError(t, db.Create(&models.Alert{
		Title: "Due", Body: "Now", Audience: models.AudienceAll, Status: models.AlertPending, ScheduledAt: &past,
	}).Error)

	w := NewWorker(svc, "", zap.NewNop())
	w.Run()
	assert.EqualValues(t, 1, inbox(t, db))
}
