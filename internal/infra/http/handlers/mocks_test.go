package handlers

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/xavierca1/doula-crm/internal/entity"
	"github.com/xavierca1/doula-crm/internal/usecase"
)

type MockAccountSearcher struct {
	mock.Mock
}

func (m *MockAccountSearcher) Execute(ctx context.Context, term string) ([]entity.AccountSearchResult, error) {
	args := m.Called(ctx, term)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.AccountSearchResult), args.Error(1)
}

type MockPreviewer struct {
	mock.Mock
}

func (m *MockPreviewer) Execute(ctx context.Context, leadID string) (*usecase.ConversionPreview, error) {
	args := m.Called(ctx, leadID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.ConversionPreview), args.Error(1)
}

type MockConverter struct {
	mock.Mock
}

func (m *MockConverter) Execute(ctx context.Context, opts usecase.ConvertLeadOptions) (*usecase.ConvertLeadOutput, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.ConvertLeadOutput), args.Error(1)
}

type MockLeadCapturer struct {
	mock.Mock
}

func (m *MockLeadCapturer) Execute(ctx context.Context, input usecase.CaptureLeadInput) (*usecase.CaptureLeadOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.CaptureLeadOutput), args.Error(1)
}
