package types

import "fmt"

// Signal names the retrieval signal that produced a Retrieved item.
type Signal string

const (
	SignalVector      Signal = "vector"
	SignalLexical     Signal = "lexical"
	SignalEndpointPin Signal = "endpoint_pin"
	SignalSymbolPin   Signal = "symbol_pin"
	SignalEdgePin     Signal = "edge_pin"
	SignalHint        Signal = "hint"
)

// Retrieved is a transient projection produced only at query time.
// Every Retrieved item is traceable to a real chunk, endpoint, symbol,
// or edge row; it is never persisted.
type Retrieved struct {
	Score      float64
	Repo       string
	Path       string
	Symbol     string
	StartLine  int
	EndLine    int
	Revision   string
	Preview    string
	DocumentID int64
	ChunkID    int64 // zero for fact pins
	Signal     Signal
}

// Permalink renders the citation link for this item:
// host/repo/blob/revision/path[#Lstart[-Lend]].
func (r *Retrieved) Permalink(host string) string {
	link := fmt.Sprintf("%s/%s/blob/%s/%s", host, r.Repo, r.Revision, r.Path)
	if r.StartLine > 0 {
		if r.EndLine > r.StartLine {
			return fmt.Sprintf("%s#L%d-L%d", link, r.StartLine, r.EndLine)
		}
		return fmt.Sprintf("%s#L%d", link, r.StartLine)
	}
	return link
}

// RepoFilter restricts retrieval to a subset of repositories. The zero
// value (All unset, no repos) matches nothing; use AllRepos for the
// unfiltered case so intent is explicit at call sites.
type RepoFilter struct {
	All   bool
	Repos []string
}

// AllRepos matches every indexed repository.
func AllRepos() RepoFilter {
	return RepoFilter{All: true}
}

// SomeRepos matches only the named repositories.
func SomeRepos(repos ...string) RepoFilter {
	return RepoFilter{Repos: repos}
}

// Matches reports whether a repo passes the filter.
func (f RepoFilter) Matches(repo string) bool {
	if f.All {
		return true
	}
	for _, r := range f.Repos {
		if r == repo {
			return true
		}
	}
	return false
}
