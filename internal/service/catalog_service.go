package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/RoyceAzure/lab/pos/internal/domain/model"
	"github.com/RoyceAzure/lab/pos/internal/infra/gateway"
	"github.com/RoyceAzure/lab/pos/internal/infra/repository/redis_repo"
)

type ICatalogService interface {
	Hydrate(ctx context.Context) ([]model.Product, []model.ProductCategory, error)
	FilterProducts(products []model.Product, categoryID *int, text string) []model.Product
	FindProduct(products []model.Product, productID int) (model.Product, bool)
}

// CatalogService 商品目錄讀取
// 目錄是選品用的唯讀資料，走 cache-aside：先查快取，未命中才打遠端並回填。
// 快取層故障只記log降級直連，不影響選品
type CatalogService struct {
	gateway gateway.IOrderGateway
	cache   redis_repo.ICatalogRepository // 可為 nil，直接走遠端
	logger  zerolog.Logger
}

func NewCatalogService(gw gateway.IOrderGateway, cache redis_repo.ICatalogRepository, logger zerolog.Logger) *CatalogService {
	return &CatalogService{
		gateway: gw,
		cache:   cache,
		logger:  logger,
	}
}

// Hydrate 同時載入商品與分類
func (s *CatalogService) Hydrate(ctx context.Context) ([]model.Product, []model.ProductCategory, error) {
	var (
		products   []model.Product
		categories []model.ProductCategory
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		products, err = s.loadProducts(groupCtx)
		return err
	})
	group.Go(func() error {
		var err error
		categories, err = s.loadCategories(groupCtx)
		return err
	})
	if err := group.Wait(); err != nil {
		return nil, nil, fmt.Errorf("hydrate catalog: %w", err)
	}
	return products, categories, nil
}

func (s *CatalogService) loadProducts(ctx context.Context) ([]model.Product, error) {
	if s.cache != nil {
		cached, err := s.cache.GetProducts(ctx)
		if err != nil {
			s.logger.Warn().Err(err).Msg("product cache read failed, falling back to remote")
		} else if cached != nil {
			return cached, nil
		}
	}

	products, err := s.gateway.ListProducts(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetProducts(ctx, products); err != nil {
			s.logger.Warn().Err(err).Msg("product cache write failed")
		}
	}
	return products, nil
}

func (s *CatalogService) loadCategories(ctx context.Context) ([]model.ProductCategory, error) {
	if s.cache != nil {
		cached, err := s.cache.GetCategories(ctx)
		if err != nil {
			s.logger.Warn().Err(err).Msg("category cache read failed, falling back to remote")
		} else if cached != nil {
			return cached, nil
		}
	}

	categories, err := s.gateway.ListCategories(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetCategories(ctx, categories); err != nil {
			s.logger.Warn().Err(err).Msg("category cache write failed")
		}
	}
	return categories, nil
}

// FilterProducts 依分類與名稱關鍵字過濾，兩個條件都是可選的
func (s *CatalogService) FilterProducts(products []model.Product, categoryID *int, text string) []model.Product {
	needle := strings.ToLower(strings.TrimSpace(text))
	filtered := make([]model.Product, 0, len(products))
	for _, product := range products {
		if categoryID != nil && product.CategoryID != *categoryID {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(product.Name), needle) {
			continue
		}
		filtered = append(filtered, product)
	}
	return filtered
}

func (s *CatalogService) FindProduct(products []model.Product, productID int) (model.Product, bool) {
	for _, product := range products {
		if product.ProductID == productID {
			return product, true
		}
	}
	return model.Product{}, false
}
