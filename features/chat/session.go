package chat

import (
	"context"
	"log/slog"
	"sync"

	"portfolio/backend/internal/knowledge"
	"portfolio/backend/internal/prompt"
	"portfolio/backend/internal/text"
)

type State int

const (
	StateUninitialized State = iota
	StateInitializing
	StateReady
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// placeholderAnswer is returned for any ask that arrives before the
// knowledge base is ready. It never touches history.
const placeholderAnswer = "Please wait while I initialize my knowledge base..."

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type LLM interface {
	Name() string
	Complete(ctx context.Context, system, user string) (string, error)
	Stream(ctx context.Context, system, user string, emit func(string) error) error
}

type Retriever interface {
	Index(ctx context.Context, chunks []knowledge.Document) error
	Retrieve(ctx context.Context, question string) ([]knowledge.Document, error)
}

// Session owns the chatbot lifecycle for one server instance: a single
// knowledge-base build followed by any number of serialized asks.
type Session struct {
	builder   *knowledge.Builder
	splitter  *text.Splitter
	retriever Retriever
	llm       LLM
	ownerName string

	initMu sync.Mutex
	askMu  sync.Mutex

	mu      sync.RWMutex
	state   State
	history []Message
}

func NewSession(b *knowledge.Builder, s *text.Splitter, r Retriever, llm LLM, ownerName string) *Session {
	return &Session{
		builder:   b,
		splitter:  s,
		retriever: r,
		llm:       llm,
		ownerName: ownerName,
	}
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Session) Ready() bool {
	return s.State() == StateReady
}

// History returns a copy of the conversation so far.
func (s *Session) History() []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Message, len(s.history))
	copy(out, s.history)
	return out
}

// Initialize builds documents from the given repositories and résumé bytes,
// splits them, and indexes the chunks. It runs at most once: concurrent
// callers block on the first build, and a call against a ready session is a
// no-op. A session becomes ready even when repos is empty or the résumé is
// unreadable; the personal-info document alone is a valid knowledge base.
func (s *Session) Initialize(ctx context.Context, repos []knowledge.Repo, resume []byte) error {
	s.initMu.Lock()
	defer s.initMu.Unlock()

	if s.State() == StateReady {
		slog.InfoContext(ctx, "knowledge base already initialized, skipping")
		return nil
	}

	s.setState(StateInitializing)

	docs := s.builder.Build(repos, resume)
	chunks := s.splitter.Split(docs)

	slog.InfoContext(ctx, "indexing knowledge base", "documents", len(docs), "chunks", len(chunks))

	if err := s.retriever.Index(ctx, chunks); err != nil {
		s.setState(StateUninitialized)
		return err
	}

	s.setState(StateReady)
	return nil
}

// Ask answers one question. Before the session is ready it returns a fixed
// placeholder without touching history. Asks are serialized: two concurrent
// calls never interleave their history appends.
func (s *Session) Ask(ctx context.Context, question string) (string, error) {
	if !s.Ready() {
		return placeholderAnswer, nil
	}

	s.askMu.Lock()
	defer s.askMu.Unlock()

	p, err := s.assemble(ctx, question)
	if err != nil {
		return "", err
	}

	answer, err := s.llm.Complete(ctx, p.System, p.User)
	if err != nil {
		return "", err
	}

	s.append(question, answer)
	return answer, nil
}

// AskStream is Ask's streaming variant: answer fragments are delivered in
// order through emit. If emit returns an error (the consumer went away)
// delivery stops and nothing is appended to history.
func (s *Session) AskStream(ctx context.Context, question string, emit func(string) error) error {
	if !s.Ready() {
		return emit(placeholderAnswer)
	}

	s.askMu.Lock()
	defer s.askMu.Unlock()

	p, err := s.assemble(ctx, question)
	if err != nil {
		return err
	}

	var full []byte
	err = s.llm.Stream(ctx, p.System, p.User, func(fragment string) error {
		full = append(full, fragment...)
		return emit(fragment)
	})
	if err != nil {
		return err
	}

	s.append(question, string(full))
	return nil
}

// assemble retrieves context for the question and renders the prompt. Each
// turn is stateless: prior history is never fed back into the prompt.
func (s *Session) assemble(ctx context.Context, question string) (prompt.Prompt, error) {
	chunks, err := s.retriever.Retrieve(ctx, question)
	if err != nil {
		return prompt.Prompt{}, err
	}
	return prompt.Assemble(chunks, question, s.ownerName), nil
}

func (s *Session) append(question, answer string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history,
		Message{Role: RoleUser, Content: question},
		Message{Role: RoleAssistant, Content: answer},
	)
}

func (s *Session) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}
