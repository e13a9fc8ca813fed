// Package core exposes the transactional annotation service built on top
// of the interval data model and the pluggable persistence drivers.
package core

import (
	"annotcore/pkg/interval"
)

type (
	// VideoMeta describes a registered video.
	VideoMeta = interval.VideoMeta
	// Block is the per-video annotation block.
	Block = interval.Block
	// NamedSet is a labeled channel within a block.
	NamedSet = interval.NamedSet
	// Change records a single mutation within a transaction.
	Change = interval.Change
	// Result aggregates rule violations raised during a transaction.
	Result = interval.Result
	// Rule is an invariant evaluated against transactional changes.
	Rule = interval.Rule
	// RulesEngine evaluates registered rules before commit.
	RulesEngine = interval.RulesEngine
	// Transaction is the mutable handle passed to transactional closures.
	Transaction = interval.Transaction
	// TransactionView is the read-only snapshot exposed to rules.
	TransactionView = interval.TransactionView
	// PersistentStore is the storage contract the service runs on.
	PersistentStore = interval.PersistentStore
)
