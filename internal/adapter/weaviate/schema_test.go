package weaviate

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/weaviate/weaviate/entities/models"
)

type MockSchemaClient struct{ mock.Mock }

func (m *MockSchemaClient) ClassExists(ctx context.Context, className string) (bool, error) {
	args := m.Called(ctx, className)
	return args.Bool(0), args.Error(1)
}

func (m *MockSchemaClient) CreateClass(ctx context.Context, class *models.Class) error {
	args := m.Called(ctx, class)
	return args.Error(0)
}

func (m *MockSchemaClient) GetClass(ctx context.Context, className string) (*models.Class, error) {
	args := m.Called(ctx, className)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Class), args.Error(1)
}

func (m *MockSchemaClient) AddProperty(ctx context.Context, className string, property *models.Property) error {
	args := m.Called(ctx, className, property)
	return args.Error(0)
}

func TestEnsureSchema_CreatesClass(t *testing.T) {
	client := new(MockSchemaClient)
	client.On("ClassExists", mock.Anything, "PortfolioChunk").Return(false, nil)
	client.On("CreateClass", mock.Anything, mock.MatchedBy(func(c *models.Class) bool {
		return c.Class == "PortfolioChunk" && c.Vectorizer == "none" && len(c.Properties) == 6
	})).Return(nil)

	require.NoError(t, EnsureSchema(context.Background(), client))
	client.AssertExpectations(t)
}

func TestEnsureSchema_BackfillsMissingProperty(t *testing.T) {
	client := new(MockSchemaClient)
	client.On("ClassExists", mock.Anything, "PortfolioChunk").Return(true, nil)
	client.On("GetClass", mock.Anything, "PortfolioChunk").Return(&models.Class{
		Class: "PortfolioChunk",
		Properties: []*models.Property{
			{Name: "content"},
			{Name: "type"},
			{Name: "name"},
			{Name: "url"},
			{Name: "language"},
		},
	}, nil)
	client.On("AddProperty", mock.Anything, "PortfolioChunk", mock.MatchedBy(func(p *models.Property) bool {
		return p.Name == "source"
	})).Return(nil)

	require.NoError(t, EnsureSchema(context.Background(), client))
	client.AssertExpectations(t)
	client.AssertNumberOfCalls(t, "AddProperty", 1)
}

func TestEnsureSchema_ExistsError(t *testing.T) {
	client := new(MockSchemaClient)
	client.On("ClassExists", mock.Anything, mock.Anything).Return(false, errors.New("connection refused"))

	assert.Error(t, EnsureSchema(context.Background(), client))
}
