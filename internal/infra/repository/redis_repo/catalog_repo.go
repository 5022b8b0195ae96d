package redis_repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/RoyceAzure/lab/pos/internal/domain/model"
)

const (
	productsKey   = "catalog:products"
	categoriesKey = "catalog:categories"

	DefaultCatalogTTL = 5 * time.Minute
)

// ICatalogRepository 商品目錄快取
// 目錄由遠端維護，這裡只做讀取加速，未命中回傳 (nil, nil)
type ICatalogRepository interface {
	GetProducts(ctx context.Context) ([]model.Product, error)
	SetProducts(ctx context.Context, products []model.Product) error
	GetCategories(ctx context.Context) ([]model.ProductCategory, error)
	SetCategories(ctx context.Context, categories []model.ProductCategory) error
	Invalidate(ctx context.Context) error
}

type CatalogRepo struct {
	catalogCache *redis.Client
	ttl          time.Duration
}

func NewCatalogRepo(catalogCache *redis.Client, ttl time.Duration) *CatalogRepo {
	if ttl <= 0 {
		ttl = DefaultCatalogTTL
	}
	return &CatalogRepo{catalogCache: catalogCache, ttl: ttl}
}

func (r *CatalogRepo) GetProducts(ctx context.Context) ([]model.Product, error) {
	raw, err := r.catalogCache.Get(ctx, productsKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cached products: %w", err)
	}

	var products []model.Product
	if err := json.Unmarshal([]byte(raw), &products); err != nil {
		return nil, fmt.Errorf("invalid cached products: %w", err)
	}
	return products, nil
}

func (r *CatalogRepo) SetProducts(ctx context.Context, products []model.Product) error {
	raw, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("failed to marshal products: %w", err)
	}
	if err := r.catalogCache.Set(ctx, productsKey, raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache products: %w", err)
	}
	return nil
}

func (r *CatalogRepo) GetCategories(ctx context.Context) ([]model.ProductCategory, error) {
	raw, err := r.catalogCache.Get(ctx, categoriesKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cached categories: %w", err)
	}

	var categories []model.ProductCategory
	if err := json.Unmarshal([]byte(raw), &categories); err != nil {
		return nil, fmt.Errorf("invalid cached categories: %w", err)
	}
	return categories, nil
}

func (r *CatalogRepo) SetCategories(ctx context.Context, categories []model.ProductCategory) error {
	raw, err := json.Marshal(categories)
	if err != nil {
		return fmt.Errorf("failed to marshal categories: %w", err)
	}
	if err := r.catalogCache.Set(ctx, categoriesKey, raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache categories: %w", err)
	}
	return nil
}

// Invalidate 商品維護端異動後由呼叫端觸發
func (r *CatalogRepo) Invalidate(ctx context.Context) error {
	if err := r.catalogCache.Del(ctx, productsKey, categoriesKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate catalog cache: %w", err)
	}
	return nil
}
