package export

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/takak2166/sciwheel-export/internal/models"
	"github.com/takak2166/sciwheel-export/internal/sciwheel"
	"github.com/takak2166/sciwheel-export/internal/sciwheel/mock_sciwheel"
)

var fixedNow = time.Date(2024, 5, 6, 7, 8, 9, 0, time.Local)

func choose(answer string) func(string) (string, error) {
	return func(string) (string, error) {
		return answer, nil
	}
}

func newTestExporter(t *testing.T, api sciwheel.API, answer string) (*Exporter, string) {
	t.Helper()
	dir := t.TempDir()
	e := New(api, choose(answer), dir)
	e.SetClock(func() time.Time { return fixedNow })
	return e, dir
}

func listing() models.ProjectIndex {
	return models.ProjectIndex{
		1: {Name: "A", ID: 1},
		2: {Name: "B", ID: 2},
	}
}

func TestRun(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	api := mock_sciwheel.NewMockAPI(ctrl)
	ctx := context.Background()
	payload := map[string]any{"count": json.Number("2"), "items": []any{"a", "b"}}

	gomock.InOrder(
		api.EXPECT().Projects(ctx).Return(listing(), nil),
		api.EXPECT().References(ctx, models.Project{Name: "B", ID: 2}).Return([]models.Reference{
			{"id": json.Number("10"), "f1000NotesCount": json.Number("2")},
			{"id": json.Number("11"), "f1000NotesCount": json.Number("0")},
		}, nil),
		api.EXPECT().Notes(ctx, "10").Return(payload, nil),
	)

	e, dir := newTestExporter(t, api, "2")
	res, err := e.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, Written, res.State)
	assert.Equal(t, models.Project{Name: "B", ID: 2}, res.Project)
	assert.Equal(t, 2, res.References)
	assert.Equal(t, 1, res.Annotated)
	assert.FileExists(t, res.Path)
	assert.Equal(t, filepath.Join(dir, "sciwheel-project-B-2-20240506070809-export.json"), res.Path)

	back, err := ReadFile(res.Path)
	require.NoError(t, err)
	require.Len(t, back, 2)

	assert.Equal(t, json.Number("10"), back[0]["id"])
	assert.Equal(t, payload, back[0]["notes"])
	assert.Equal(t, json.Number("11"), back[1]["id"])
	assert.NotContains(t, back[1], "notes")
}

func TestRun_NoSelection(t *testing.T) {
	tests := map[string]struct {
		answer   string
		projects models.ProjectIndex
	}{
		"Non-numeric input": {answer: "foo", projects: listing()},
		"Unknown ordinal":   {answer: "9", projects: listing()},
		"Empty listing":     {answer: "1", projects: models.ProjectIndex{}},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			api := mock_sciwheel.NewMockAPI(ctrl)
			api.EXPECT().Projects(gomock.Any()).Return(tt.projects, nil)

			e, dir := newTestExporter(t, api, tt.answer)
			res, err := e.Run(context.Background())

			assert.ErrorIs(t, err, ErrNoSelection)
			assert.Equal(t, "no project, or no valid-project selected", err.Error())
			assert.Equal(t, NoSelection, res.State)
			assertEmptyDir(t, dir)
		})
	}
}

func TestRun_NotesProtocolErrorWritesNothing(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	api := mock_sciwheel.NewMockAPI(ctrl)
	protoErr := &sciwheel.RemoteProtocolError{URL: "https://sciwheel.test/references/10/notes", Body: []byte("<html>"), Err: errors.New("invalid character '<'")}

	api.EXPECT().Projects(gomock.Any()).Return(listing(), nil)
	api.EXPECT().References(gomock.Any(), gomock.Any()).Return([]models.Reference{
		{"id": json.Number("10"), "f1000NotesCount": json.Number("2")},
		{"id": json.Number("12"), "f1000NotesCount": json.Number("1")},
	}, nil)
	api.EXPECT().Notes(gomock.Any(), "10").Return(nil, protoErr)

	e, dir := newTestExporter(t, api, "1")
	res, err := e.Run(context.Background())

	var target *sciwheel.RemoteProtocolError
	require.True(t, errors.As(err, &target))
	assert.Equal(t, MergingAnnotations, res.State)
	assert.Empty(t, res.Path)
	assertEmptyDir(t, dir)
}

func TestRun_ProjectsError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	api := mock_sciwheel.NewMockAPI(ctrl)
	api.EXPECT().Projects(gomock.Any()).Return(nil, errors.New("dial tcp: refused"))

	e, dir := newTestExporter(t, api, "1")
	res, err := e.Run(context.Background())

	assert.Error(t, err)
	assert.Equal(t, AwaitingSelection, res.State)
	assertEmptyDir(t, dir)
}

func TestRun_NoAnnotations(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	api := mock_sciwheel.NewMockAPI(ctrl)
	api.EXPECT().Projects(gomock.Any()).Return(listing(), nil)
	api.EXPECT().References(gomock.Any(), models.Project{Name: "A", ID: 1}).Return([]models.Reference{}, nil)

	e, _ := newTestExporter(t, api, "1")
	res, err := e.Run(context.Background())
	require.NoError(t, err)

	data, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "merging_annotations", MergingAnnotations.String())
	assert.Equal(t, "no_token", NoToken.String())
	assert.Equal(t, "state(42)", State(42).String())
}

func assertEmptyDir(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
