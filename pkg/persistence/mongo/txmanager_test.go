package mongo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	mongodriver "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/zap"
)

type mockSession struct {
	mock.Mock
}

func (m *mockSession) WithTransaction(ctx context.Context, fn func(ctx context.Context) (any, error), opts ...options.Lister[options.TransactionOptions]) (any, error) {
	args := m.Called(ctx)
	if args.Error(1) != nil {
		return nil, args.Error(1)
	}
	return fn(ctx)
}

func (m *mockSession) EndSession(ctx context.Context) {
	m.Called()
}

type mockStarter struct {
	mock.Mock
}

func (m *mockStarter) startSession() (session, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(session), args.Error(1)
}

func newTestTxManager(starter sessionStarter) *txManager {
	return &txManager{
		sessions: starter,
		conf:     Config{TransactionTimeout: time.Second},
		log:      zap.NewNop(),
	}
}

func TestTxManager_Commit(t *testing.T) {
	sess := &mockSession{}
	sess.On("WithTransaction", mock.Anything).Return(nil, nil).Once()
	sess.On("EndSession").Once()
	starter := &mockStarter{}
	starter.On("startSession").Return(sess, nil).Once()

	result, err := newTestTxManager(starter).WithTransaction(context.Background(), func(txCtx context.Context) (any, error) {
		_, hasDeadline := txCtx.Deadline()
		assert.True(t, hasDeadline)
		return 42, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 42, result)
	sess.AssertExpectations(t)
	starter.AssertExpectations(t)
}

func TestTxManager_RetriesTransientErrors(t *testing.T) {
	transient := mongodriver.CommandError{Code: 112, Labels: []string{"TransientTransactionError"}}

	sess := &mockSession{}
	sess.On("WithTransaction", mock.Anything).Return(nil, transient).Twice()
	sess.On("WithTransaction", mock.Anything).Return(nil, nil).Once()
	sess.On("EndSession").Times(3)
	starter := &mockStarter{}
	starter.On("startSession").Return(sess, nil).Times(3)

	calls := 0
	_, err := newTestTxManager(starter).WithTransaction(context.Background(), func(context.Context) (any, error) {
		calls++
		return nil, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	sess.AssertExpectations(t)
}

func TestTxManager_GivesUpAfterMaxAttempts(t *testing.T) {
	transient := mongodriver.CommandError{Code: 112, Labels: []string{"TransientTransactionError"}}

	sess := &mockSession{}
	sess.On("WithTransaction", mock.Anything).Return(nil, transient).Times(maxTxAttempts)
	sess.On("EndSession").Times(maxTxAttempts)
	starter := &mockStarter{}
	starter.On("startSession").Return(sess, nil).Times(maxTxAttempts)

	_, err := newTestTxManager(starter).WithTransaction(context.Background(), func(context.Context) (any, error) {
		return nil, nil
	})

	require.Error(t, err)
	assert.True(t, isTransientError(err))
	sess.AssertExpectations(t)
}

func TestTxManager_NoRetryOnCallbackError(t *testing.T) {
	boom := errors.New("boom")
	sess := &mockSession{}
	sess.On("WithTransaction", mock.Anything).Return(nil, nil).Once()
	sess.On("EndSession").Once()
	starter := &mockStarter{}
	starter.On("startSession").Return(sess, nil).Once()

	_, err := newTestTxManager(starter).WithTransaction(context.Background(), func(context.Context) (any, error) {
		return nil, boom
	})

	assert.ErrorIs(t, err, boom)
	sess.AssertExpectations(t)
}

func TestTxManager_StartSessionFails(t *testing.T) {
	starter := &mockStarter{}
	starter.On("startSession").Return(nil, errors.New("no servers")).Once()

	_, err := newTestTxManager(starter).WithTransaction(context.Background(), func(context.Context) (any, error) {
		return nil, nil
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to start session")
}
