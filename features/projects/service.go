package projects

import (
	"sort"
	"strings"

	"portfolio/backend/internal/config"
	"portfolio/backend/internal/knowledge"
)

const CategoryOther = "Other"

// stackTopics are repository topics promoted into the tech stack.
var stackTopics = map[string]bool{
	"tensorflow": true, "pytorch": true, "keras": true, "streamlit": true,
	"fastapi": true, "docker": true, "kubernetes": true, "react": true,
	"vue": true, "angular": true,
}

// Project is a repository enriched with derived portfolio attributes.
type Project struct {
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Language        string   `json:"language"`
	Stars           int      `json:"stars"`
	Forks           int      `json:"forks"`
	Topics          []string `json:"topics"`
	URL             string   `json:"url"`
	UpdatedAt       string   `json:"updated_at"`
	Category        string   `json:"category"`
	ComplexityScore int      `json:"complexity_score"`
	TechStack       []string `json:"tech_stack"`
	Featured        bool     `json:"featured"`
}

type Service struct {
	categories []struct {
		Name     string
		Keywords []string
	}
	featured map[string]bool
}

func NewService() *Service {
	featured := make(map[string]bool)
	for _, name := range config.FeaturedProjects() {
		featured[name] = true
	}
	return &Service{categories: config.ProjectCategories(), featured: featured}
}

// Categorize picks the first category whose keywords appear in the repo's
// description, topics, or language.
func (s *Service) Categorize(repo knowledge.Repo) string {
	text := strings.ToLower(repo.Description + " " + strings.Join(repo.Topics, " ") + " " + repo.Language)
	for _, cat := range s.categories {
		for _, kw := range cat.Keywords {
			if strings.Contains(text, kw) {
				return cat.Name
			}
		}
	}
	return CategoryOther
}

// ComplexityScore rates a repository 1-10 from its size, popularity, and
// topic coverage. The base score is 5.
func ComplexityScore(repo knowledge.Repo) int {
	score := 5

	if repo.SizeKB > 10000 {
		score += 2
	} else if repo.SizeKB > 1000 {
		score++
	}

	if repo.Stars > 10 {
		score++
	}
	if repo.Stars > 50 {
		score++
	}
	if repo.Forks > 5 {
		score++
	}
	if len(repo.Topics) > 3 {
		score++
	}

	if score > 10 {
		score = 10
	}
	return score
}

// TechStack derives up to six technologies: the primary language, every
// language above 10% of the codebase, and well-known framework topics.
func TechStack(repo knowledge.Repo, languages map[string]int) []string {
	var stack []string
	seen := make(map[string]bool)

	add := func(item string) {
		if item == "" || seen[item] {
			return
		}
		seen[item] = true
		stack = append(stack, item)
	}

	add(repo.Language)

	if len(languages) > 0 {
		total := 0
		for _, b := range languages {
			total += b
		}
		names := make([]string, 0, len(languages))
		for lang := range languages {
			names = append(names, lang)
		}
		sort.Strings(names)
		for _, lang := range names {
			if float64(languages[lang])/float64(total) > 0.1 {
				add(lang)
			}
		}
	}

	for _, topic := range repo.Topics {
		if stackTopics[strings.ToLower(topic)] {
			add(titleCase(topic))
		}
	}

	if len(stack) > 6 {
		stack = stack[:6]
	}
	return stack
}

// titleCase is enough for single-word ASCII topics like "pytorch".
func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

// Enrich converts repo records into projects with derived attributes.
// languages maps repo name to its language byte counts; repos without an
// entry derive their tech stack from the primary language and topics alone.
func (s *Service) Enrich(repos []knowledge.Repo, languages map[string]map[string]int) []Project {
	out := make([]Project, len(repos))
	for i, repo := range repos {
		out[i] = Project{
			Name:            repo.Name,
			Description:     repo.Description,
			Language:        repo.Language,
			Stars:           repo.Stars,
			Forks:           repo.Forks,
			Topics:          repo.Topics,
			URL:             repo.HTMLURL,
			Category:        s.Categorize(repo),
			ComplexityScore: ComplexityScore(repo),
			TechStack:       TechStack(repo, languages[repo.Name]),
			Featured:        s.featured[repo.Name],
		}
		if !repo.UpdatedAt.IsZero() {
			out[i].UpdatedAt = repo.UpdatedAt.Format("2006-01-02")
		}
	}
	return out
}

// Filter narrows repos by category, a name/description search term, and a
// minimum star count. Zero values leave the corresponding dimension alone.
func (s *Service) Filter(repos []knowledge.Repo, category, searchTerm string, minStars int) []knowledge.Repo {
	filtered := repos

	if category != "" && category != "All" {
		var keep []knowledge.Repo
		for _, r := range filtered {
			if s.Categorize(r) == category {
				keep = append(keep, r)
			}
		}
		filtered = keep
	}

	if searchTerm != "" {
		term := strings.ToLower(searchTerm)
		var keep []knowledge.Repo
		for _, r := range filtered {
			if strings.Contains(strings.ToLower(r.Name), term) ||
				strings.Contains(strings.ToLower(r.Description), term) {
				keep = append(keep, r)
			}
		}
		filtered = keep
	}

	if minStars > 0 {
		var keep []knowledge.Repo
		for _, r := range filtered {
			if r.Stars >= minStars {
				keep = append(keep, r)
			}
		}
		filtered = keep
	}

	return filtered
}

// Sort orders repos by "stars", "forks", or "name"; anything else sorts by
// most recently updated.
func Sort(repos []knowledge.Repo, by string) []knowledge.Repo {
	sorted := make([]knowledge.Repo, len(repos))
	copy(sorted, repos)

	switch by {
	case "stars":
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Stars > sorted[j].Stars })
	case "forks":
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Forks > sorted[j].Forks })
	case "name":
		sort.SliceStable(sorted, func(i, j int) bool {
			return strings.ToLower(sorted[i].Name) < strings.ToLower(sorted[j].Name)
		})
	default:
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].UpdatedAt.After(sorted[j].UpdatedAt) })
	}
	return sorted
}

// Featured returns the configured featured repositories in their configured
// order, skipping any that the user no longer has.
func (s *Service) Featured(repos []knowledge.Repo) []knowledge.Repo {
	byName := make(map[string]knowledge.Repo, len(repos))
	for _, r := range repos {
		byName[r.Name] = r
	}

	var out []knowledge.Repo
	for _, name := range config.FeaturedProjects() {
		if r, ok := byName[name]; ok {
			out = append(out, r)
		}
	}
	return out
}
