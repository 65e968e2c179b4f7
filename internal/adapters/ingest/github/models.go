package github

import (
	"strings"
	"time"
)

// Repo is a partial GitHub repository document with fields we use
type Repo struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	FullName   string    `json:"full_name"`
	Owner      User      `json:"owner"`
	Stargazers int       `json:"stargazers_count"`
	Fork       bool      `json:"fork"`
	UpdatedAt  time.Time `json:"updated_at"`
	HTMLURL    string    `json:"html_url"`
}

// OwnerName splits FullName into owner and repository name
func (r Repo) OwnerName() (string, string) {
	owner, name, ok := strings.Cut(r.FullName, "/")
	if !ok {
		return r.Owner.Login, r.Name
	}
	return owner, name
}

// User is a partial GitHub user or org document
type User struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
	Type  string `json:"type"`
}

// Label is a pull request label
type Label struct {
	Name string `json:"name"`
}

// PullRequest is a partial pull request document
// Additions, Deletions, ChangedFiles and Commits are only populated by the detail endpoint
type PullRequest struct {
	ID                int64      `json:"id"`
	Number            int        `json:"number"`
	State             string     `json:"state"`
	Title             string     `json:"title"`
	Body              *string    `json:"body"`
	User              User       `json:"user"`
	Labels            []Label    `json:"labels"`
	Assignees         []User     `json:"assignees"`
	AuthorAssociation string     `json:"author_association"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         *time.Time `json:"updated_at"`
	ClosedAt          *time.Time `json:"closed_at"`
	MergedAt          *time.Time `json:"merged_at"`
	Additions         int        `json:"additions"`
	Deletions         int        `json:"deletions"`
	ChangedFiles      int        `json:"changed_files"`
	Commits           int        `json:"commits"`
}

// LabelNames returns label names in API order
func (p PullRequest) LabelNames() []string {
	out := make([]string, 0, len(p.Labels))
	for _, l := range p.Labels {
		out = append(out, l.Name)
	}
	return out
}

// BodyText returns the body or empty when null
func (p PullRequest) BodyText() string {
	if p.Body == nil {
		return ""
	}
	return *p.Body
}
