package model

import (
	"errors"
	"sync"
)

type Input struct {
	// Hash of the transaction that outputs this coin.
	PrevTxHash string
	// The index of the output in that transaction. Together with PrevTxHash, it identifies the unique output.
	Index int64
	// Signature using the previous owner's SK.
	Signature []byte
}

type Output struct {
	// How much value to transfer.
	Value float64
	// Public key of the receiver, in the form of bytes.
	PublicKey []byte
}

type Transaction struct {
	// Hash of this transaction. We use this to uniquely identify the transaction.
	Hash string
	// All inputs of this transaction.
	Inputs []*Input
	// All outputs of this transaction.
	Outputs []*Output
	// Block height this transaction is created for. Only set on coinbase, so that
	// every block's coinbase hashes differently even for the same miner.
	Height int64
}

// TransactionPool contains all pending transactions that haven't been confirmed
// in the blockchain. The pool escapes to block-assembly callers as a mutable
// handle, so it guards itself with its own lock.
type TransactionPool struct {
	m sync.RWMutex
	// Key is the hex of transaction's hash, value is the transaction.
	txs map[string]*Transaction
}

// NewTransactionPool creates a new transaction pool with no transaction at all.
func NewTransactionPool() *TransactionPool {
	return &TransactionPool{
		txs: make(map[string]*Transaction),
	}
}

// Add inserts the transaction by hash. No validation is performed here, the
// transaction is only checked when a block carrying it is handled.
func (p *TransactionPool) Add(tx *Transaction) error {
	p.m.Lock()
	defer p.m.Unlock()
	if _, exist := p.txs[tx.Hash]; exist {
		return errors.New("existing transaction, will not process")
	}
	p.txs[tx.Hash] = tx
	return nil
}

// Remove deletes the transaction with the given hash. No-op if absent.
func (p *TransactionPool) Remove(txHash string) {
	p.m.Lock()
	defer p.m.Unlock()
	delete(p.txs, txHash)
}

func (p *TransactionPool) Get(txHash string) (*Transaction, bool) {
	p.m.RLock()
	defer p.m.RUnlock()
	tx, ok := p.txs[txHash]
	return tx, ok
}

// All returns every pending transaction in the pool.
func (p *TransactionPool) All() []*Transaction {
	p.m.RLock()
	defer p.m.RUnlock()
	txs := make([]*Transaction, 0, len(p.txs))
	for _, tx := range p.txs {
		txs = append(txs, tx)
	}
	return txs
}

func (p *TransactionPool) Size() int {
	p.m.RLock()
	defer p.m.RUnlock()
	return len(p.txs)
}
