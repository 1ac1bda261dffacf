package catalog

import (
	"context"
	"errors"
	"fmt"
	"log"

	"golang.org/x/sync/singleflight"

	"github.com/rasayana/storefront/internal/domain"
)

// Service is the read-only catalog query surface the rest of the storefront
// consumes. Product lookups go through the cache; misses are collapsed with
// singleflight so a popular product page does not stampede the database.
type Service struct {
	repo  RepoInterface
	cache ProductCache
	sfg   singleflight.Group
}

func NewService(repo RepoInterface, cache ProductCache) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
	}
}

func (s *Service) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	v, err, _ := s.sfg.Do(fmt.Sprintf("product:%d", id), func() (interface{}, error) {

		product, err := s.cache.Get(ctx, id)
		if err == nil {
			return product, nil // product is in cache
		}

		if !errors.Is(err, ErrCacheMiss) {
			log.Printf("cache get error: %v", err) // log cache error but continue
		}

		product, errGet := s.repo.GetProduct(ctx, id)
		if errGet != nil {
			return nil, errGet
		}

		// set cache
		go func() {
			if errSet := s.cache.Set(context.Background(), product); errSet != nil {
				log.Printf("cache set error: %v", errSet)
			}
		}()

		return product, nil
	})

	if err != nil {
		return nil, err
	}

	return v.(*domain.Product), nil
}

// ListProducts is uncached: every combination of filters is its own result
// set and the query is already a single indexed scan.
func (s *Service) ListProducts(ctx context.Context, filters Filters) (*ProductPage, error) {
	return s.repo.ListProducts(ctx, filters)
}

func (s *Service) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	return s.repo.ListCategories(ctx)
}

func (s *Service) ListHealthBenefits(ctx context.Context) ([]*domain.HealthBenefit, error) {
	return s.repo.ListHealthBenefits(ctx)
}
