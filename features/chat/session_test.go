package chat

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio/backend/internal/adapter/chromem"
	"portfolio/backend/internal/config"
	"portfolio/backend/internal/knowledge"
	"portfolio/backend/internal/retrieval"
	"portfolio/backend/internal/text"
)

// wordEmbedder is a deterministic bag-of-words embedder for tests. Texts
// sharing tokens land close together under cosine similarity.
type wordEmbedder struct {
	calls atomic.Int64
}

func (e *wordEmbedder) Embed(_ context.Context, content string) ([]float32, error) {
	e.calls.Add(1)
	vec := make([]float32, 64)
	for _, tok := range strings.Fields(strings.ToLower(content)) {
		tok = strings.Trim(tok, ".,!?:;()\"'")
		if tok == "" {
			continue
		}
		h := fnv.New32a()
		h.Write([]byte(tok))
		vec[h.Sum32()%64]++
	}
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		n := float32(math.Sqrt(norm))
		for i := range vec {
			vec[i] /= n
		}
	}
	return vec, nil
}

// captureLLM records the last prompt and returns a canned answer.
type captureLLM struct {
	system string
	user   string
	answer string
	err    error
}

func (l *captureLLM) Name() string { return "capture" }

func (l *captureLLM) Complete(_ context.Context, system, user string) (string, error) {
	l.system, l.user = system, user
	return l.answer, l.err
}

func (l *captureLLM) Stream(_ context.Context, system, user string, emit func(string) error) error {
	l.system, l.user = system, user
	if l.err != nil {
		return l.err
	}
	for _, part := range strings.SplitAfter(l.answer, " ") {
		if err := emit(part); err != nil {
			return err
		}
	}
	return nil
}

func newTestSession(t *testing.T, llm LLM, embedder *wordEmbedder) *Session {
	t.Helper()

	profile := config.DefaultProfile()
	profile.Name = "Jane Doe"

	extract := func(data []byte) (string, error) {
		if strings.HasPrefix(string(data), "%PDF") {
			return strings.TrimPrefix(string(data), "%PDF "), nil
		}
		return "", errors.New("malformed pdf")
	}

	builder := knowledge.NewBuilder(profile, config.DefaultSkills(), config.FeaturedProjects(), extract)

	splitter, err := text.NewSplitter(500, 50)
	require.NoError(t, err)

	store, err := chromem.NewStore(t.TempDir(), embedder)
	require.NoError(t, err)

	svc := retrieval.NewService(embedder, store, 3, nil)
	return NewSession(builder, splitter, svc, llm, profile.Name)
}

func sampleRepos() []knowledge.Repo {
	return []knowledge.Repo{
		{
			Name:        "studybuddy",
			Description: "AI study companion",
			Language:    "Python",
			Stars:       12,
			CreatedAt:   time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			UpdatedAt:   time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
			HTMLURL:     "https://github.com/janedoe/studybuddy",
		},
	}
}

func TestSession_PreReadyAsk(t *testing.T) {
	llm := &captureLLM{answer: "should never be reached"}
	s := newTestSession(t, llm, &wordEmbedder{})

	answer, err := s.Ask(context.Background(), "anything")

	require.NoError(t, err)
	assert.Equal(t, "Please wait while I initialize my knowledge base...", answer)
	assert.Empty(t, s.History(), "pre-ready ask must not touch history")
	assert.Empty(t, llm.system, "pre-ready ask must not reach the model")
}

func TestSession_InitializeIdempotent(t *testing.T) {
	embedder := &wordEmbedder{}
	s := newTestSession(t, &captureLLM{answer: "ok"}, embedder)
	ctx := context.Background()

	require.NoError(t, s.Initialize(ctx, sampleRepos(), nil))
	require.True(t, s.Ready())
	first := embedder.calls.Load()
	require.Positive(t, first)

	require.NoError(t, s.Initialize(ctx, sampleRepos(), nil))
	assert.Equal(t, first, embedder.calls.Load(), "second initialize must not re-embed")
	assert.Empty(t, s.History())
}

func TestSession_InitializeWithoutRepos(t *testing.T) {
	s := newTestSession(t, &captureLLM{answer: "ok"}, &wordEmbedder{})

	require.NoError(t, s.Initialize(context.Background(), nil, nil))
	assert.True(t, s.Ready(), "personal-info-only index is still a valid knowledge base")
}

func TestSession_EndToEnd(t *testing.T) {
	llm := &captureLLM{answer: "studybuddy is Jane's AI study companion written in Python."}
	s := newTestSession(t, llm, &wordEmbedder{})
	ctx := context.Background()

	require.NoError(t, s.Initialize(ctx, sampleRepos(), nil))

	answer, err := s.Ask(ctx, "What is studybuddy?")
	require.NoError(t, err)

	assert.NotEmpty(t, answer)
	assert.NotContains(t, answer, "{context}")
	assert.NotContains(t, answer, "%[1]s")
	assert.Contains(t, llm.system, "studybuddy", "studybuddy document must be retrieved into the prompt")
	assert.Contains(t, llm.system, "Jane Doe")
	assert.Equal(t, "What is studybuddy?", llm.user)

	history := s.History()
	require.Len(t, history, 2)
	assert.Equal(t, Message{Role: RoleUser, Content: "What is studybuddy?"}, history[0])
	assert.Equal(t, Message{Role: RoleAssistant, Content: answer}, history[1])
}

func TestSession_ResumeIngestion(t *testing.T) {
	llm := &captureLLM{answer: "Jane studied at XYZ University."}
	s := newTestSession(t, llm, &wordEmbedder{})
	ctx := context.Background()

	require.NoError(t, s.Initialize(ctx, sampleRepos(), []byte("%PDF Education: XYZ University")))

	_, err := s.Ask(ctx, "What is the education background? XYZ University")
	require.NoError(t, err)
	assert.Contains(t, llm.system, "XYZ University")
}

func TestSession_CorruptResumeStillReady(t *testing.T) {
	s := newTestSession(t, &captureLLM{answer: "ok"}, &wordEmbedder{})

	err := s.Initialize(context.Background(), sampleRepos(), []byte("not a pdf"))

	require.NoError(t, err)
	assert.True(t, s.Ready())
}

func TestSession_GenerationErrorPropagates(t *testing.T) {
	llm := &captureLLM{err: errors.New("rate limited")}
	s := newTestSession(t, llm, &wordEmbedder{})
	ctx := context.Background()

	require.NoError(t, s.Initialize(ctx, sampleRepos(), nil))

	_, err := s.Ask(ctx, "What is studybuddy?")
	require.Error(t, err)
	assert.Empty(t, s.History(), "failed ask must not append")
}

func TestSession_AskStream(t *testing.T) {
	llm := &captureLLM{answer: "streamed answer here"}
	s := newTestSession(t, llm, &wordEmbedder{})
	ctx := context.Background()

	require.NoError(t, s.Initialize(ctx, sampleRepos(), nil))

	var got strings.Builder
	err := s.AskStream(ctx, "What is studybuddy?", func(fragment string) error {
		got.WriteString(fragment)
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, "streamed answer here", got.String())

	history := s.History()
	require.Len(t, history, 2)
	assert.Equal(t, "streamed answer here", history[1].Content)
}

func TestSession_AskStreamConsumerStops(t *testing.T) {
	llm := &captureLLM{answer: "one two three four"}
	s := newTestSession(t, llm, &wordEmbedder{})
	ctx := context.Background()

	require.NoError(t, s.Initialize(ctx, sampleRepos(), nil))

	count := 0
	err := s.AskStream(ctx, "What is studybuddy?", func(string) error {
		count++
		if count == 2 {
			return fmt.Errorf("consumer gone")
		}
		return nil
	})

	require.Error(t, err)
	assert.Equal(t, 2, count)
	assert.Empty(t, s.History(), "aborted stream must not append")
}
