package chain

import (
	"sync"

	"github.com/minichain-go/minichain/logx"
	"github.com/minichain-go/minichain/model"
)

// CutOffAge bounds how far behind the max height block a new block may still
// attach. It is also what bounds how much of the tree we keep in memory: once
// a fork falls more than CutOffAge heights behind the tail, no future block
// can legally extend it, so we drop it.
const CutOffAge = 10

// TxEngine validates and applies an ordered list of transactions against a
// ledger. The ledger passed in must be a private copy; the engine mutates it
// in place. The returned slice is the accepted subset in original relative
// order. The blockchain treats any proper subset as rejection of the whole
// block.
type TxEngine interface {
	HandleTxs(l *model.Ledger, txs []*model.Transaction) []*model.Transaction
}

// BlockNode stores both the block and its metadata on the blockchain.
type BlockNode struct {
	// The actual block.
	B *model.Block
	// Only one parent is allowed. Nil for the current root.
	Parent *BlockNode
	// There can be multiple children because we allow fork.
	Children []*BlockNode
	// Height in the blockchain. Genesis is 1.
	Height int64
	// Ledger right after this block's transactions and coinbase are applied.
	// Never mutated after the node is created.
	L *model.Ledger
}

// LedgerCopy returns an independent copy of this node's ledger for building a
// new block on top of it.
func (n *BlockNode) LedgerCopy() *model.Ledger {
	return n.L.Copy()
}

// Blockchain is a tree of block nodes keyed by block hash. It tracks the max
// height node (the tail), keeps a pending transaction pool consistent with
// confirmed history, and prunes forks that fell out of the retention window.
//
// All mutation goes through AddBlock under a single write lock; read queries
// share the read side of the same lock.
type Blockchain struct {
	m sync.RWMutex
	// A map from hex string of the block hash to block node.
	chain map[string]*BlockNode
	// The block with the maximum height. On equal height the first seen node
	// wins and keeps winning until strictly outgrown.
	tail *BlockNode
	// Root of the retained tree. Starts as genesis, advances as old forks are
	// pruned away.
	root *BlockNode
	// All pending transactions that haven't been confirmed on the chain.
	txPool *model.TransactionPool
	// Transaction validation engine used to check every non-coinbase
	// transaction of an incoming block.
	engine TxEngine
}

// New creates a blockchain with just the genesis block. The genesis block is
// assumed valid by contract and its ledger is built solely from the coinbase
// outputs, without running the engine.
func New(genesisBlock *model.Block, engine TxEngine) *Blockchain {
	l := model.NewLedger()
	cb := genesisBlock.Coinbase
	for i, out := range cb.Outputs {
		l.Put(model.UTXO{PrevTxHash: cb.Hash, Index: int64(i)}, *out)
	}
	genesisNode := &BlockNode{
		B:      genesisBlock,
		Height: 1,
		L:      l,
	}
	return &Blockchain{
		chain:  map[string]*BlockNode{genesisBlock.Hash: genesisNode},
		tail:   genesisNode,
		root:   genesisNode,
		txPool: model.NewTransactionPool(),
		engine: engine,
	}
}

// BestBlock returns the block of the current max height node.
func (bc *Blockchain) BestBlock() *model.Block {
	bc.m.RLock()
	defer bc.m.RUnlock()
	return bc.tail.B
}

// BestHeight returns the height of the current max height node.
func (bc *Blockchain) BestHeight() int64 {
	bc.m.RLock()
	defer bc.m.RUnlock()
	return bc.tail.Height
}

// BestLedger returns an independent copy of the ledger at the max height node.
// Callers can mutate it freely while assembling a candidate block, the chain
// keeps its own state untouched.
func (bc *Blockchain) BestLedger() *model.Ledger {
	bc.m.RLock()
	defer bc.m.RUnlock()
	return bc.tail.LedgerCopy()
}

// LedgerAt returns a copy of the ledger right after the block with the given
// hash, if that block is still retained.
func (bc *Blockchain) LedgerAt(blockHash string) (*model.Ledger, bool) {
	bc.m.RLock()
	defer bc.m.RUnlock()
	node, ok := bc.chain[blockHash]
	if !ok {
		return nil, false
	}
	return node.LedgerCopy(), true
}

// Tail returns the current max height node. The tree hanging off it must be
// treated as read only.
func (bc *Blockchain) Tail() *BlockNode {
	bc.m.RLock()
	defer bc.m.RUnlock()
	return bc.tail
}

// TxPool returns the pending transaction pool handle for assembling a new
// candidate block.
func (bc *Blockchain) TxPool() *model.TransactionPool {
	return bc.txPool
}

// SubmitTransaction adds a transaction to the pending pool.
func (bc *Blockchain) SubmitTransaction(tx *model.Transaction) error {
	return bc.txPool.Add(tx)
}

// Size returns how many block nodes are currently retained.
func (bc *Blockchain) Size() int {
	bc.m.RLock()
	defer bc.m.RUnlock()
	return len(bc.chain)
}

// AddBlock links a new block into the tree if it is valid. Validity here is
// structural placement plus transaction-set validity:
//   - the block must name a parent that is still retained,
//   - its proposed height must be > tail height - CutOffAge,
//   - the engine must accept every single transaction in the block.
//
// On success the block's coinbase outputs are applied on top of the engine
// result, confirmed transactions leave the pending pool, the tail advances if
// the new block outgrew it, and forks that fell out of the retention window
// are pruned. On failure nothing changes at all.
func (bc *Blockchain) AddBlock(b *model.Block) bool {
	bc.m.Lock()
	defer bc.m.Unlock()

	if b == nil || b.PrevHash == "" {
		logx.Warn("reject block: missing block or previous hash reference")
		return false
	}
	if _, exist := bc.chain[b.Hash]; exist {
		logx.Warn("reject block %s: already in the chain", b.Hash)
		return false
	}
	parent, ok := bc.chain[b.PrevHash]
	if !ok {
		logx.Warn("reject block %s: parent %s not found in the chain", b.Hash, b.PrevHash)
		return false
	}

	proposedHeight := parent.Height + 1
	if proposedHeight <= bc.tail.Height-CutOffAge {
		logx.Warn("reject block %s: height %d is buried too deep behind tail height %d",
			b.Hash, proposedHeight, bc.tail.Height)
		return false
	}

	// Validate strictly against the parent's own ledger, not the tail's. Each
	// fork has its own spend state.
	l := parent.LedgerCopy()
	accepted := bc.engine.HandleTxs(l, b.Txs)
	if len(accepted) != len(b.Txs) {
		logx.Warn("reject block %s: engine accepted %d of %d transactions",
			b.Hash, len(accepted), len(b.Txs))
		return false
	}

	// The coinbase is never subject to input validation. It only adds outputs.
	if b.Coinbase != nil {
		for i, out := range b.Coinbase.Outputs {
			l.Put(model.UTXO{PrevTxHash: b.Coinbase.Hash, Index: int64(i)}, *out)
		}
	}

	node := &BlockNode{
		B:      b,
		Parent: parent,
		Height: proposedHeight,
		L:      l,
	}
	parent.Children = append(parent.Children, node)
	bc.chain[b.Hash] = node

	// Confirmed, no longer pending.
	for _, tx := range b.Txs {
		bc.txPool.Remove(tx.Hash)
	}

	if proposedHeight > bc.tail.Height {
		bc.tail = node
		bc.prune()
	}
	return true
}

// prune drops every node outside the retention window. The tail's ancestor at
// height tail.Height - CutOffAge becomes the new root: no future block can
// attach at or below that height, so everything outside its subtree is dead
// weight. This keeps the retained tree depth at CutOffAge+1 no matter how long
// the chain grows.
func (bc *Blockchain) prune() {
	floorHeight := bc.tail.Height - CutOffAge
	if floorHeight <= bc.root.Height {
		return
	}
	floor := bc.tail
	for floor.Height > floorHeight {
		floor = floor.Parent
	}

	retained := make(map[string]bool, len(bc.chain))
	markSubtree(floor, retained)
	for hash := range bc.chain {
		if !retained[hash] {
			delete(bc.chain, hash)
		}
	}

	// Detach the floor from discarded history so the whole stale subtree is
	// collectable.
	if floor.Parent != nil {
		floor.Parent.Children = nil
		floor.Parent = nil
	}
	bc.root = floor
	logx.Info("pruned chain below height %d, %d nodes retained", floorHeight, len(bc.chain))
}

func markSubtree(n *BlockNode, retained map[string]bool) {
	retained[n.B.Hash] = true
	for _, child := range n.Children {
		markSubtree(child, retained)
	}
}
