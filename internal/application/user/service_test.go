package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cardvault-api/internal/domain"
)

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) ScanPage(ctx context.Context, limit int32, cursor string) ([]domain.User, string, error) {
	args := m.Called(ctx, limit, cursor)
	return args.Get(0).([]domain.User), args.String(1), args.Error(2)
}
func (m *mockUserStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) Update(ctx context.Context, userID string, updates map[string]interface{}) error {
	return m.Called(ctx, userID, updates).Error(0)
}

func TestList_DefaultsLimit(t *testing.T) {
	us := &mockUserStore{}
	us.On("ScanPage", mock.Anything, int32(50), "").Return([]domain.User{{UserID: "u1"}}, "", nil)

	svc := NewService(us)
	users, next, err := svc.List(context.Background(), 0, "")

	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Empty(t, next)
	us.AssertExpectations(t)
}

func TestDisable_RevokesSessionsInSameWrite(t *testing.T) {
	us := &mockUserStore{}
	us.On("Update", mock.Anything, "u1", mock.MatchedBy(func(m map[string]interface{}) bool {
		enabled, ok := m[fieldEnable].(bool)
		_, hasRevoke := m[fieldTokensInvalidAfter]
		return ok && !enabled && hasRevoke
	})).Return(nil)

	svc := NewService(us)
	err := svc.Disable(context.Background(), "u1")

	require.NoError(t, err)
	us.AssertExpectations(t)
}
