package dbctx

import (
	"context"

	"gorm.io/gorm"
)

// Context carries the request context into a repo call together with the
// transaction it should join. A zero Tx means the repo's own handle.
type Context struct {
	Ctx context.Context
	Tx  *gorm.DB
}

func For(ctx context.Context) Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return Context{Ctx: ctx}
}

// InTx returns a copy bound to tx.
func (c Context) InTx(tx *gorm.DB) Context {
	return Context{Ctx: c.Ctx, Tx: tx}
}

// DB picks the transaction, or fallback when there is none, scoped to Ctx.
func (c Context) DB(fallback *gorm.DB) *gorm.DB {
	db := c.Tx
	if db == nil {
		db = fallback
	}
	if c.Ctx == nil {
		return db
	}
	return db.WithContext(c.Ctx)
}
