package github

import "time"

// repoResponse mirrors the GitHub REST repository object, limited to the
// fields the sync engine persists.
type repoResponse struct {
	ID              int64   `json:"id"`
	Name            string  `json:"name"`
	FullName        string  `json:"full_name"`
	Description     *string `json:"description"`
	Language        *string `json:"language"`
	StargazersCount int     `json:"stargazers_count"`
	ForksCount      int     `json:"forks_count"`
	Private         bool    `json:"private"`
	Fork            bool    `json:"fork"`
	Archived        bool    `json:"archived"`
	DefaultBranch   string  `json:"default_branch"`
}

// commitResponse mirrors one element of the GitHub commit list endpoint.
type commitResponse struct {
	SHA    string `json:"sha"`
	Commit struct {
		Message string `json:"message"`
		Author  struct {
			Name  string    `json:"name"`
			Email string    `json:"email"`
			Date  time.Time `json:"date"`
		} `json:"author"`
	} `json:"commit"`
}

// commitDetailResponse mirrors the single-commit endpoint, which carries the
// size statistics missing from the list endpoint.
type commitDetailResponse struct {
	SHA   string `json:"sha"`
	Stats struct {
		Additions int `json:"additions"`
		Deletions int `json:"deletions"`
		Total     int `json:"total"`
	} `json:"stats"`
	Files []struct {
		Filename string `json:"filename"`
	} `json:"files"`
}
