package model

import "github.com/jinzhu/copier"

// Unspent transaction output. All UTXO are aggregated as a ledger and snapshotted at each block in the blockchain.
type UTXO struct {
	// Hex string of the transaction that produced this output.
	PrevTxHash string
	// The index of the output in that transaction. Together with PrevTxHash, it identifies the unique output.
	Index int64
}

// Ledger is simply a pool of UTXO. Each block in the blockchain owns the ledger
// describing chain state right after that block. A ledger is never mutated once
// a block owns it: to build on top of it, take a Copy first.
type Ledger struct {
	L map[UTXO]Output
}

func NewLedger() *Ledger {
	return &Ledger{
		L: make(map[UTXO]Output),
	}
}

// Copy returns an independent deep copy. Mutating the copy never affects the
// original, which is what makes per-fork spend state possible in the first place.
func (l *Ledger) Copy() *Ledger {
	nl := NewLedger()
	// copier cannot deep-copy a map keyed by a struct in one call, so copy
	// entry by entry: keys are plain values, values are deep-copied.
	for u, o := range l.L {
		var no Output
		copier.CopyWithOption(&no, &o, copier.Option{DeepCopy: true})
		nl.L[u] = no
	}
	return nl
}

// Claim consumes one spendable output from the ledger.
func (l *Ledger) Claim(u UTXO) {
	delete(l.L, u)
}

// Put registers a new spendable output.
func (l *Ledger) Put(u UTXO, o Output) {
	l.L[u] = o
}

func (l *Ledger) Size() int {
	return len(l.L)
}
