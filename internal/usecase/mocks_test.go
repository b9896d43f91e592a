package usecase

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/xavierca1/doula-crm/internal/entity"
)

type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) Upsert(ctx context.Context, lead *entity.Lead) error {
	return m.Called(ctx, lead).Error(0)
}

func (m *MockLeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) MarkConverted(ctx context.Context, c entity.LeadConversion) (bool, error) {
	args := m.Called(ctx, c)
	return args.Bool(0), args.Error(1)
}

type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) Create(ctx context.Context, a *entity.Account) error {
	return m.Called(ctx, a).Error(0)
}

func (m *MockAccountRepository) FindByID(ctx context.Context, id string) (*entity.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Account), args.Error(1)
}

func (m *MockAccountRepository) SearchByName(ctx context.Context, term string, limit int) ([]entity.AccountSearchResult, error) {
	args := m.Called(ctx, term, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.AccountSearchResult), args.Error(1)
}

func (m *MockAccountRepository) SetPrimaryContactIfEmpty(ctx context.Context, accountID, contactID string) error {
	return m.Called(ctx, accountID, contactID).Error(0)
}

type MockSearchCache struct {
	mock.Mock
}

func (m *MockSearchCache) Get(ctx context.Context, term string) ([]entity.AccountSearchResult, bool, error) {
	args := m.Called(ctx, term)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]entity.AccountSearchResult), args.Bool(1), args.Error(2)
}

func (m *MockSearchCache) Set(ctx context.Context, term string, results []entity.AccountSearchResult) error {
	return m.Called(ctx, term, results).Error(0)
}

func (m *MockSearchCache) Invalidate(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type MockLeadConverter struct {
	mock.Mock
}

func (m *MockLeadConverter) Execute(ctx context.Context, opts ConvertLeadOptions) (*ConvertLeadOutput, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ConvertLeadOutput), args.Error(1)
}
