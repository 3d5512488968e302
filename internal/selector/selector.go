package selector

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/takak2166/sciwheel-export/internal/logger"
	"github.com/takak2166/sciwheel-export/internal/models"
)

// Strategy receives the rendered project list and returns the raw text the
// user chose
type Strategy func(rendered string) (string, error)

// Console prompts on out and reads one line from in
func Console(in io.Reader, out io.Writer) Strategy {
	reader := bufio.NewReader(in)
	return func(rendered string) (string, error) {
		if _, err := fmt.Fprintf(out, "select a project number:\n%s", rendered); err != nil {
			return "", fmt.Errorf("failed to write prompt: %w", err)
		}
		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("failed to read selection: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}
}

// Render lists the projects one per line in ordinal order
func Render(projects models.ProjectIndex) string {
	ordinals := make([]int, 0, len(projects))
	for n := range projects {
		ordinals = append(ordinals, n)
	}
	sort.Ints(ordinals)

	var b strings.Builder
	for _, n := range ordinals {
		fmt.Fprintf(&b, "  %d) %s\n", n, projects[n])
	}
	return b.String()
}

// ParseOrdinal converts the entered text to an ordinal. Anything that is not
// an integer maps to 0, which never exists in a ProjectIndex.
func ParseOrdinal(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return n
}

// Select asks the strategy for a choice and resolves it against projects.
// ok is false when the choice does not name a listed project.
func Select(projects models.ProjectIndex, choose Strategy) (project models.Project, ok bool, err error) {
	raw, err := choose(Render(projects))
	if err != nil {
		return models.Project{}, false, err
	}
	logger.Status(fmt.Sprintf("User entered: %s", raw))

	project, ok = projects.Lookup(ParseOrdinal(raw))
	return project, ok, nil
}
