// Package services holds the storefront's business rules. Services take and return domain
// types and report failures as *utils.AppError.
package services

import (
	"errors"
	"math"
	"strings"
	"time"

	"go-storefront/store"
	"go-storefront/utils"
)

// Default page sizes
const (
	CatalogPageSize = 12
	ListPageSize    = 10
	MaxPageSize     = 100
)

// Clock returns the current time. Tests replace it.
type Clock func() time.Time

func systemClock() time.Time {
	return time.Now().UTC()
}

// Paged is one page of a list together with the paging metadata the API returns.
type Paged[T any] struct {
	Items       []T
	Total       int64
	CurrentPage int
	Limit       int
}

// TotalPages is ceil(Total / Limit).
func (p Paged[T]) TotalPages() int {
	if p.Limit <= 0 {
		return 0
	}
	return int(math.Ceil(float64(p.Total) / float64(p.Limit)))
}

// PageOf normalises paging input. Non-positive values take the defaults and limit is
// capped at MaxPageSize.
func PageOf(page, limit, defaultLimit int) store.Page {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return store.Page{Page: page, Limit: limit}
}

func paged[T any](items []T, total int64, page store.Page) Paged[T] {
	if items == nil {
		items = []T{}
	}
	return Paged[T]{Items: items, Total: total, CurrentPage: page.Page, Limit: page.Limit}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// storeErr maps a repository error. ErrNotFound becomes a NotFound with the given message,
// anything else an internal error tagged with op.
func storeErr(err error, notFound, op string) error {
	if errors.Is(err, store.ErrNotFound) {
		return utils.NotFound("%s", notFound)
	}
	return utils.Internal(err, "%s", op)
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
