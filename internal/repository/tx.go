package repository

import "context"

// TxRunner executes fn inside a single atomic unit of work. Every write
// issued through a repository within fn either commits as a whole or
// rolls back as a whole.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}
