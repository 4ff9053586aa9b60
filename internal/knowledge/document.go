package knowledge

import "time"

// Source types carried in document metadata.
const (
	TypeRepo         = "repo"
	TypePersonalInfo = "personal_info"
	TypeResume       = "resume"
	TypeUnknown      = "unknown"
)

// Metadata travels with a document through chunking, indexing and retrieval.
type Metadata struct {
	Type     string
	Name     string
	URL      string
	Language string
	Source   string
}

// Document is an immutable unit of knowledge-base text. Chunks produced by the
// splitter are documents too, carrying a copy of the parent metadata.
type Document struct {
	Content  string
	Metadata Metadata
}

// Repo is the subset of repository metadata the knowledge base reads. Fetching
// and pagination live in the repository source.
type Repo struct {
	Name        string
	Description string
	Language    string
	Stars       int
	Forks       int
	Topics      []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	HTMLURL     string
	SizeKB      int
	License     string
}
