package subscriptions_test

import (
	"context"
	"errors"
	"io/fs"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Nazarious-ucu/vibe-trading-launch/internal/metrics"
	"github.com/Nazarious-ucu/vibe-trading-launch/internal/models"
	"github.com/Nazarious-ucu/vibe-trading-launch/internal/repository/memory"
	"github.com/Nazarious-ucu/vibe-trading-launch/internal/services/store"
	"github.com/Nazarious-ucu/vibe-trading-launch/internal/services/subscriptions"
	"github.com/Nazarious-ucu/vibe-trading-launch/internal/validator"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Add(ctx context.Context, email string) (store.Outcome, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(store.Outcome), args.Error(1)
}

func (m *mockStore) Lookup(ctx context.Context, email string) (models.Subscriber, bool) {
	args := m.Called(ctx, email)
	return args.Get(0).(models.Subscriber), args.Bool(1)
}

func (m *mockStore) ListAll(ctx context.Context) ([]models.Subscriber, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Subscriber), args.Error(1)
}

type nopNotifier struct{}

func (nopNotifier) Notify(string) {}

func TestSubscribe_InvalidEmailNeverReachesStore(t *testing.T) {
	st := &mockStore{}
	m := metrics.NewMetrics("svc_test")
	svc := subscriptions.NewService(st, zerolog.Nop(), m)

	for _, email := range []string{"", "not-an-email", "a@b.c"} {
		_, err := svc.Subscribe(context.Background(), email)
		require.Error(t, err)
		assert.ErrorIs(t, err, models.ErrInvalidEmail)
	}

	var vErr *validator.ValidationError
	_, err := svc.Subscribe(context.Background(), "")
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "Email cannot be empty", vErr.Reason)

	st.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
	assert.Equal(t, 4.0, testutil.ToFloat64(m.SubscriptionsRejected))
}

func TestSubscribe_AlreadyStoredElsewhere(t *testing.T) {
	st := &mockStore{}
	st.On("Lookup", mock.Anything, "a@b.com").
		Return(models.Subscriber{ID: 3, Email: "a@b.com", Origin: "fallback"}, true)
	svc := subscriptions.NewService(st, zerolog.Nop(), metrics.NewMetrics("svc_test"))

	res, err := svc.Subscribe(context.Background(), "a@b.com")
	require.NoError(t, err)
	assert.False(t, res.Created)
	assert.Equal(t, "fallback", res.Location)
	st.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
}

func TestSubscribe_StoresNew(t *testing.T) {
	st := &mockStore{}
	st.On("Lookup", mock.Anything, "a@b.com").Return(models.Subscriber{}, false)
	st.On("Add", mock.Anything, "a@b.com").Return(store.Outcome{
		Subscriber: models.Subscriber{ID: 1, Email: "a@b.com"},
		Location:   "primary",
		Created:    true,
	}, nil)
	svc := subscriptions.NewService(st, zerolog.Nop(), metrics.NewMetrics("svc_test"))

	res, err := svc.Subscribe(context.Background(), "a@b.com")
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Equal(t, "primary", res.Location)
	st.AssertExpectations(t)
}

func TestSubscribe_StoreFailure(t *testing.T) {
	st := &mockStore{}
	st.On("Lookup", mock.Anything, "a@b.com").Return(models.Subscriber{}, false)
	st.On("Add", mock.Anything, "a@b.com").Return(store.Outcome{}, &store.ExhaustedError{})
	svc := subscriptions.NewService(st, zerolog.Nop(), metrics.NewMetrics("svc_test"))

	_, err := svc.Subscribe(context.Background(), "a@b.com")
	assert.ErrorIs(t, err, models.ErrStorageExhausted)
}

func TestService_WithFallbackStore(t *testing.T) {
	ctx := context.Background()
	primary := memory.NewSubscriberRepository("primary")
	primary.PrepareErr = fs.ErrPermission
	fallback := memory.NewSubscriberRepository("fallback")
	m := metrics.NewMetrics("svc_test")

	st := store.New([]store.Location{primary, fallback}, nopNotifier{}, zerolog.Nop(), m)
	svc := subscriptions.NewService(st, zerolog.Nop(), m)

	assert.False(t, svc.Exists(ctx, "x@y.com"))

	res, err := svc.Subscribe(ctx, "x@y.com")
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Equal(t, "fallback", res.Location)
	assert.True(t, svc.Exists(ctx, "x@y.com"))

	again, err := svc.Subscribe(ctx, "x@y.com")
	require.NoError(t, err)
	assert.False(t, again.Created)

	subs, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "fallback", subs[0].Origin)

	primary.PrepareErr = nil
	fallback.InsertErr = errors.New("unused")
	res, err = svc.Subscribe(ctx, "new@y.com")
	require.NoError(t, err)
	assert.Equal(t, "primary", res.Location)
}
