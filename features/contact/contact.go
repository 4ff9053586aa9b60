package contact

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrNameRequired    = errors.New("name is required")
	ErrEmailInvalid    = errors.New("a valid email is required")
	ErrMessageRequired = errors.New("message is required")
	ErrMessageTooLong  = errors.New("message exceeds 5000 characters")
)

type Message struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

type Repository interface {
	Save(ctx context.Context, msg *Message) error
	List(ctx context.Context) ([]Message, error)
}

// Validate normalizes and checks a submission before it is persisted.
func (m *Message) Validate() error {
	m.Name = strings.TrimSpace(m.Name)
	m.Email = strings.TrimSpace(m.Email)
	m.Message = strings.TrimSpace(m.Message)

	if m.Name == "" {
		return ErrNameRequired
	}
	at := strings.Index(m.Email, "@")
	if at < 1 || at == len(m.Email)-1 || !strings.Contains(m.Email[at:], ".") {
		return ErrEmailInvalid
	}
	if m.Message == "" {
		return ErrMessageRequired
	}
	if len(m.Message) > 5000 {
		return ErrMessageTooLong
	}
	return nil
}
