package sweeper

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"messenger-service/internal/mocks"
)

func TestSweepPurgesExpiredMessages(t *testing.T) {
	store := new(mocks.MessageRepositoryMock)
	store.On("DeleteExpired", mock.Anything).Return(int64(3), nil).Once()

	s := New(store, time.Minute)
	s.Sweep(context.Background())

	store.AssertExpectations(t)
}

func TestSweepSurvivesStoreFailure(t *testing.T) {
	store := new(mocks.MessageRepositoryMock)
	store.On("DeleteExpired", mock.Anything).Return(int64(0), errors.New("db down")).Once()

	s := New(store, time.Minute)
	s.Sweep(context.Background())

	store.AssertExpectations(t)
}

func TestStartStop(t *testing.T) {
	store := new(mocks.MessageRepositoryMock)
	store.On("DeleteExpired", mock.Anything).Return(int64(0), nil)

	s := New(store, 5*time.Millisecond)
	s.Start()
	time.Sleep(25 * time.Millisecond)
	s.Stop()

	require.NotEmpty(t, store.Calls)
}
