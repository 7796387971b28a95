// Package rank orders chunks by their relevance to a persona and task and
// assembles the run result.
package rank

import (
	"errors"
	"strings"
)

var (
	ErrEmptyPersona = errors.New("persona is empty")
	ErrEmptyJob     = errors.New("job to be done is empty")
)

// ComposeQuery joins persona and job into the single query string that is
// embedded for ranking. The inputs are used as given.
func ComposeQuery(persona, job string) (string, error) {
	if strings.TrimSpace(persona) == "" {
		return "", ErrEmptyPersona
	}
	if strings.TrimSpace(job) == "" {
		return "", ErrEmptyJob
	}
	return persona + ": " + job, nil
}
