package villas

import (
	"context"

	"github.com/stayinn/backend/internal/domain"
	"github.com/stayinn/backend/internal/repository"
)

type VillaUseCase interface {
	List(ctx context.Context) ([]domain.Villa, error)
	GetByID(ctx context.Context, id int64) (*domain.Villa, error)
}

type VillaCache interface {
	GetVillas(ctx context.Context) ([]domain.Villa, error)
	SetVillas(ctx context.Context, villas []domain.Villa) error
}

// VillaService serves catalog reads with a read-through cache.
type VillaService struct {
	repo  repository.VillaRepository
	cache VillaCache
}

func NewVillaService(repo repository.VillaRepository, cache VillaCache) *VillaService {
	return &VillaService{repo: repo, cache: cache}
}

func (s *VillaService) List(ctx context.Context) ([]domain.Villa, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetVillas(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	villas, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetVillas(ctx, villas)
	}
	return villas, nil
}

func (s *VillaService) GetByID(ctx context.Context, id int64) (*domain.Villa, error) {
	return s.repo.GetByID(ctx, id)
}

var _ VillaUseCase = (*VillaService)(nil)
