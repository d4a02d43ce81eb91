// Package option carries composable gorm query modifiers used by the
// generic repository.
package option

import "gorm.io/gorm"

type QueryOption interface {
	Apply(*gorm.DB) *gorm.DB
}

type limitOption struct{ limit int }

func (o limitOption) Apply(db *gorm.DB) *gorm.DB { return db.Limit(o.limit) }

// WithLimit caps the number of returned rows.
func WithLimit(limit int) QueryOption { return limitOption{limit: limit} }

type orderOption struct{ order string }

func (o orderOption) Apply(db *gorm.DB) *gorm.DB { return db.Order(o.order) }

// WithOrder applies an ORDER BY clause, e.g. "created_at DESC".
func WithOrder(order string) QueryOption { return orderOption{order: order} }

type offsetOption struct{ offset int }

func (o offsetOption) Apply(db *gorm.DB) *gorm.DB { return db.Offset(o.offset) }

// WithOffset skips rows for pagination.
func WithOffset(offset int) QueryOption { return offsetOption{offset: offset} }
