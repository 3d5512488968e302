// Package export runs the export pipeline: select a project, fetch its
// references and their notes, merge them and write one JSON file.
package export

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/takak2166/sciwheel-export/internal/logger"
	"github.com/takak2166/sciwheel-export/internal/models"
	"github.com/takak2166/sciwheel-export/internal/sciwheel"
	"github.com/takak2166/sciwheel-export/internal/selector"
)

// ErrNoSelection is returned when the chosen ordinal names no project
var ErrNoSelection = errors.New("no project, or no valid-project selected")

// State is a step of the export pipeline
type State int

const (
	AwaitingToken State = iota
	AwaitingSelection
	FetchingReferences
	MergingAnnotations
	Written
	NoToken
	NoSelection
)

var stateNames = map[State]string{
	AwaitingToken:      "awaiting_token",
	AwaitingSelection:  "awaiting_selection",
	FetchingReferences: "fetching_references",
	MergingAnnotations: "merging_annotations",
	Written:            "written",
	NoToken:            "no_token",
	NoSelection:        "no_selection",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Result describes how far a run got
type Result struct {
	State      State
	Project    models.Project
	Path       string
	References int
	Annotated  int
}

// Exporter runs one export against the API
type Exporter struct {
	api       sciwheel.API
	choose    selector.Strategy
	outputDir string
	now       func() time.Time
}

// New creates an Exporter writing into outputDir
func New(api sciwheel.API, choose selector.Strategy, outputDir string) *Exporter {
	return &Exporter{
		api:       api,
		choose:    choose,
		outputDir: outputDir,
		now:       time.Now,
	}
}

// SetClock replaces the time source used for the file name
func (e *Exporter) SetClock(now func() time.Time) {
	e.now = now
}

// Run executes the pipeline. The returned Result is never nil; its State is
// the last state reached.
func (e *Exporter) Run(ctx context.Context) (*Result, error) {
	res := &Result{}
	e.enter(res, AwaitingSelection)

	projects, err := e.api.Projects(ctx)
	if err != nil {
		return res, fmt.Errorf("failed to list projects: %w", err)
	}

	project, ok, err := selector.Select(projects, e.choose)
	if err != nil {
		return res, err
	}
	if !ok {
		e.enter(res, NoSelection)
		return res, ErrNoSelection
	}
	res.Project = project

	e.enter(res, FetchingReferences)
	logger.Status(fmt.Sprintf("Retrieving references for: %s", project))
	refs, err := e.api.References(ctx, project)
	if err != nil {
		return res, fmt.Errorf("failed to fetch references: %w", err)
	}
	res.References = len(refs)

	e.enter(res, MergingAnnotations)
	ids := Annotated(refs)
	notes, err := FetchNotes(ctx, e.api, ids)
	if err != nil {
		return res, err
	}
	res.Annotated = len(ids)
	merged := Merge(refs, notes)

	path, err := Write(e.outputDir, merged, project, e.now())
	if err != nil {
		return res, err
	}
	res.Path = path
	e.enter(res, Written)

	logger.Info("Export completed", map[string]interface{}{
		"project":    project.Name,
		"references": res.References,
		"annotated":  res.Annotated,
		"filepath":   path,
	})
	return res, nil
}

func (e *Exporter) enter(res *Result, s State) {
	logger.Debug("Pipeline state", map[string]interface{}{
		"from": res.State.String(),
		"to":   s.String(),
	})
	res.State = s
}
