package contact_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"portfolio/backend/features/contact"
)

type MockRepo struct {
	mock.Mock
}

func (m *MockRepo) Save(ctx context.Context, msg *contact.Message) error {
	args := m.Called(ctx, msg)
	if args.Error(0) == nil {
		msg.ID = "1"
	}
	return args.Error(0)
}

func (m *MockRepo) List(ctx context.Context) ([]contact.Message, error) {
	args := m.Called(ctx)
	return args.Get(0).([]contact.Message), args.Error(1)
}

func TestCreate(t *testing.T) {
	repo := new(MockRepo)
	repo.On("Save", mock.Anything, mock.AnythingOfType("*contact.Message")).Return(nil)

	h := contact.NewHandler(repo)

	rec := httptest.NewRecorder()
	body := `{"name":"Jane Doe","email":"jane@example.com","message":"Hi there"}`
	h.Create(rec, httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(body)))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":"1"`)
	repo.AssertExpectations(t)
}

func TestCreate_Validation(t *testing.T) {
	h := contact.NewHandler(new(MockRepo))

	tests := []struct {
		name string
		body string
	}{
		{"not json", "nope"},
		{"missing name", `{"email":"a@b.io","message":"hi"}`},
		{"bad email", `{"name":"Jane","email":"not-an-email","message":"hi"}`},
		{"missing message", `{"name":"Jane","email":"a@b.io"}`},
		{"whitespace only", `{"name":"  ","email":"a@b.io","message":"hi"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.Create(rec, httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(tt.body)))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), "VALIDATION_ERROR")
		})
	}
}

func TestCreate_RepoError(t *testing.T) {
	repo := new(MockRepo)
	repo.On("Save", mock.Anything, mock.Anything).Return(errors.New("db down"))

	h := contact.NewHandler(repo)

	rec := httptest.NewRecorder()
	body := `{"name":"Jane","email":"jane@example.com","message":"Hi"}`
	h.Create(rec, httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(body)))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "INTERNAL_ERROR")
}

func TestList(t *testing.T) {
	repo := new(MockRepo)
	repo.On("List", mock.Anything).Return([]contact.Message{
		{ID: "2", Name: "Bob", Email: "bob@example.com", Message: "Hello"},
		{ID: "1", Name: "Jane", Email: "jane@example.com", Message: "Hi"},
	}, nil)

	h := contact.NewHandler(repo)

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/contact/messages", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":2`)
	assert.Contains(t, rec.Body.String(), `"name":"Bob"`)
	repo.AssertExpectations(t)
}

func TestList_Empty(t *testing.T) {
	repo := new(MockRepo)
	repo.On("List", mock.Anything).Return([]contact.Message(nil), nil)

	h := contact.NewHandler(repo)

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/contact/messages", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"data":[]`)
	assert.Contains(t, rec.Body.String(), `"count":0`)
}

func TestList_RepoError(t *testing.T) {
	repo := new(MockRepo)
	repo.On("List", mock.Anything).Return([]contact.Message(nil), errors.New("db down"))

	h := contact.NewHandler(repo)

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/contact/messages", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "INTERNAL_ERROR")
}

func TestMessageValidate(t *testing.T) {
	valid := contact.Message{Name: " Jane ", Email: " jane@example.com ", Message: " hi "}
	assert.NoError(t, valid.Validate())
	assert.Equal(t, "Jane", valid.Name, "fields are trimmed")

	long := contact.Message{Name: "Jane", Email: "jane@example.com", Message: strings.Repeat("a", 5001)}
	assert.ErrorIs(t, long.Validate(), contact.ErrMessageTooLong)

	assert.ErrorIs(t, (&contact.Message{Email: "a@b.io", Message: "m"}).Validate(), contact.ErrNameRequired)
	assert.ErrorIs(t, (&contact.Message{Name: "J", Email: "a@b", Message: "m"}).Validate(), contact.ErrEmailInvalid)
	assert.ErrorIs(t, (&contact.Message{Name: "J", Email: "a@b.io"}).Validate(), contact.ErrMessageRequired)
}
