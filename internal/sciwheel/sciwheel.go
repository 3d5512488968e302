package sciwheel

import (
	"context"

	"github.com/takak2166/sciwheel-export/internal/models"
)

//go:generate mockgen -source=sciwheel.go -destination=mock_sciwheel/mock_sciwheel.go -package=mock_sciwheel
type API interface {
	Projects(ctx context.Context) (models.ProjectIndex, error)
	References(ctx context.Context, project models.Project) ([]models.Reference, error)
	Notes(ctx context.Context, referenceID string) (models.AnnotationSet, error)
}
