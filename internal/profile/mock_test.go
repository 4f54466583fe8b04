package profile

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockFollowClient is a mock implementation of FollowClient
type MockFollowClient struct {
	mock.Mock
}

func (m *MockFollowClient) Follow(ctx context.Context, username string) error {
	args := m.Called(ctx, username)
	return args.Error(0)
}

func (m *MockFollowClient) Unfollow(ctx context.Context, username string) error {
	args := m.Called(ctx, username)
	return args.Error(0)
}
