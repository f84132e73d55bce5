// Package cache keeps the active deal set out of the hot path. Deals
// change rarely and are read on every priced cart view, so a short TTL
// cache in front of the deals table absorbs most of the load.
package cache

import (
	"context"
	"errors"

	"github.com/DanielAlexandrow/next-ecommerce-sub000/models"
)

type DealCache interface {
	Get(ctx context.Context) ([]models.Deal, error)
	Set(ctx context.Context, deals []models.Deal) error
	Invalidate(ctx context.Context) error
}

var ErrCacheMiss = errors.New("cache miss")
