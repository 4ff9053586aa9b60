package knowledge

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"portfolio/backend/internal/config"
)

// ExtractText turns raw PDF bytes into plain text. Injected so the builder is
// testable without real PDF fixtures.
type ExtractText func(data []byte) (string, error)

// Builder converts repository records, the static profile and an optional
// resume into knowledge-base documents.
type Builder struct {
	profile  config.Profile
	skills   []config.SkillGroup
	featured []string
	extract  ExtractText
}

func NewBuilder(profile config.Profile, skills []config.SkillGroup, featured []string, extract ExtractText) *Builder {
	return &Builder{profile: profile, skills: skills, featured: featured, extract: extract}
}

// Build emits one document per repo, exactly one personal-info document, and a
// resume document when resume bytes are present and parseable. A failed resume
// extraction is logged and skipped, never fatal.
func (b *Builder) Build(repos []Repo, resume []byte) []Document {
	docs := make([]Document, 0, len(repos)+2)

	for _, repo := range repos {
		docs = append(docs, b.repoDocument(repo))
	}

	docs = append(docs, b.personalDocument())

	if len(resume) > 0 {
		if doc, ok := b.resumeDocument(resume); ok {
			docs = append(docs, doc)
		}
	}

	return docs
}

func (b *Builder) repoDocument(repo Repo) Document {
	description := repo.Description
	if description == "" {
		description = "No description"
	}
	language := repo.Language
	if language == "" {
		language = "N/A"
	}

	content := fmt.Sprintf(`Project: %s
Description: %s
Language: %s
Stars: %d
Forks: %d
Topics: %s
Created: %s
Updated: %s
URL: %s`,
		repo.Name,
		description,
		language,
		repo.Stars,
		repo.Forks,
		strings.Join(repo.Topics, ", "),
		shortDate(repo.CreatedAt),
		shortDate(repo.UpdatedAt),
		repo.HTMLURL,
	)

	return Document{
		Content: content,
		Metadata: Metadata{
			Type:     TypeRepo,
			Name:     repo.Name,
			URL:      repo.HTMLURL,
			Language: repo.Language,
		},
	}
}

func (b *Builder) personalDocument() Document {
	var skills []string
	for _, group := range b.skills {
		skills = append(skills, group.Items...)
	}

	content := fmt.Sprintf(`Name: %s
Title: %s
Bio: %s
Skills: %s

%s`,
		b.profile.Name,
		b.profile.Title,
		b.profile.Bio,
		strings.Join(skills, ", "),
		b.profile.Summary,
	)

	return Document{
		Content:  content,
		Metadata: Metadata{Type: TypePersonalInfo, Name: b.profile.Name},
	}
}

func (b *Builder) resumeDocument(resume []byte) (Document, bool) {
	if b.extract == nil {
		return Document{}, false
	}

	text, err := b.extract(resume)
	if err != nil || strings.TrimSpace(text) == "" {
		slog.Warn("resume extraction failed, continuing without it", "error", err)
		return Document{}, false
	}

	content := text + "\n\nFeatured projects: " + strings.Join(b.featured, ", ")
	return Document{
		Content:  content,
		Metadata: Metadata{Type: TypeResume, Name: b.profile.Name, Source: "resume.pdf"},
	}, true
}

func shortDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
