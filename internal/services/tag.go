package services

import (
	"context"

	"blogapi/internal/models"
)

type TagService struct{ repo TagRepo }

func NewTagService(r TagRepo) *TagService {
	return &TagService{repo: r}
}

func (s *TagService) List(ctx context.Context) ([]models.TagWithCount, error) {
	return s.repo.ListWithCounts(ctx)
}
