package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"chat-server/internal/models"
	"chat-server/internal/store"
)

type UserStoreMock struct {
	mock.Mock
}

func (m *UserStoreMock) InsertUser(ctx context.Context, creds models.UserCredentials) error {
	args := m.Called(ctx, creds)
	return args.Error(0)
}

func (m *UserStoreMock) DeleteUserByEmail(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *UserStoreMock) FetchUserByEmail(ctx context.Context, email string) (models.UserCredentials, error) {
	args := m.Called(ctx, email)
	var creds models.UserCredentials
	if val := args.Get(0); val != nil {
		creds = val.(models.UserCredentials)
	}
	return creds, args.Error(1)
}

func (m *UserStoreMock) FetchUserByUsername(ctx context.Context, username string) (models.UserCredentials, error) {
	args := m.Called(ctx, username)
	var creds models.UserCredentials
	if val := args.Get(0); val != nil {
		creds = val.(models.UserCredentials)
	}
	return creds, args.Error(1)
}

func (m *UserStoreMock) ListUsers(ctx context.Context) ([]models.PublicUser, error) {
	args := m.Called(ctx)
	var users []models.PublicUser
	if val := args.Get(0); val != nil {
		users = val.([]models.PublicUser)
	}
	return users, args.Error(1)
}

type MessageStoreMock struct {
	mock.Mock
}

func (m *MessageStoreMock) InsertMessage(ctx context.Context, record models.MessageRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MessageStoreMock) FetchMessagesByEmail(ctx context.Context, email string) ([]models.MessageRecord, error) {
	args := m.Called(ctx, email)
	var messages []models.MessageRecord
	if val := args.Get(0); val != nil {
		messages = val.([]models.MessageRecord)
	}
	return messages, args.Error(1)
}

var _ store.UserStore = (*UserStoreMock)(nil)
var _ store.MessageStore = (*MessageStoreMock)(nil)
