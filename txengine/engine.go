// Package txengine is the default transaction validation engine: it checks a
// candidate transaction list against a ledger snapshot and applies the valid
// ones, claiming spent outputs and registering new ones.
package txengine

import (
	"github.com/minichain-go/minichain/model"
)

type Engine struct{}

func New() *Engine {
	return &Engine{}
}

// HandleTxs validates and applies txs in order against l, mutating l in
// place. It returns the accepted subset in original relative order, so an
// earlier accepted transaction can fund a later one within the same block.
// The caller decides what a proper subset means; the blockchain treats it as
// rejection of the whole block.
func (e *Engine) HandleTxs(l *model.Ledger, txs []*model.Transaction) []*model.Transaction {
	var accepted []*model.Transaction
	for _, tx := range txs {
		if e.HandleTx(l, tx) {
			accepted = append(accepted, tx)
		}
	}
	return accepted
}

// HandleTx validates a single transaction and, if valid, applies it:
// claim every input, store every output.
func (e *Engine) HandleTx(l *model.Ledger, tx *model.Transaction) bool {
	if !IsValidTransaction(tx, l) {
		return false
	}
	for _, input := range tx.Inputs {
		l.Claim(utxoFromInput(input))
	}
	for i, output := range tx.Outputs {
		l.Put(model.UTXO{PrevTxHash: tx.Hash, Index: int64(i)}, *output)
	}
	return true
}

func utxoFromInput(input *model.Input) model.UTXO {
	return model.UTXO{
		PrevTxHash: input.PrevTxHash,
		Index:      input.Index,
	}
}
