package persistence

import "context"

// TxManager runs fn inside a local transaction. Every store call made with
// txCtx joins it; returning an error aborts everything fn wrote.
type TxManager interface {
	WithTransaction(ctx context.Context, fn func(txCtx context.Context) (any, error)) (any, error)
}
