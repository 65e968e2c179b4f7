// Package repokit holds the small seams services use to bind repos to a
// query surface without importing a driver
package repokit

import "prsentinel/internal/platform/store"

type (
	// Queryer is the read and write surface a bound repo runs against
	Queryer = store.RowQuerier

	// TxRunner runs a function inside one transaction
	TxRunner = store.TxRunner
)
