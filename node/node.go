package node

import (
	"bytes"
	"crypto/rsa"
	"errors"
	"fmt"
	"sync"

	uuid "github.com/satori/go.uuid"

	"github.com/minichain-go/minichain/chain"
	"github.com/minichain-go/minichain/commands"
	"github.com/minichain-go/minichain/config"
	"github.com/minichain-go/minichain/logx"
	"github.com/minichain-go/minichain/model"
	"github.com/minichain-go/minichain/monitoring"
	"github.com/minichain-go/minichain/txengine"
	"github.com/minichain-go/minichain/utils"
)

// A full node maintains the blockchain and keeps it updated from mined and
// received blocks. The chain core only checks structural placement and
// transaction validity; the node layers the proof-of-work and coinbase-amount
// checks on top before letting a block in.
type FullNode struct {
	// The blockchain it needs to maintain.
	blockchain *chain.Blockchain
	// Engine used both by the chain and for fee/pre-validation work here.
	engine *txengine.Engine
	// keys contain private key and public key for this full node. Although we mostly care about public key.
	keys *rsa.PrivateKey
	// Blockchain config.
	config config.AppConfig
	// Serializes block handling so the proof and coinbase checks plus the
	// chain insertion act as one step.
	m sync.Mutex
	// A unique identifier of this full node. Doesn't impact consensus, only
	// used to key rendered chain snapshots.
	uuid string
}

// NewFullNode creates a brand new full node bootstrapping its own genesis
// block, whose coinbase pays this node's key.
func NewFullNode(c config.AppConfig) *FullNode {
	sk, _ := utils.GenerateKeyPair(2048)
	genesis, err := utils.CreateGenesisBlock(c.COINBASE_REWARD, utils.PublicKeyToBytes(&sk.PublicKey))
	if err != nil {
		logx.Fatal("failed to create genesis block: %v", err)
	}
	return NewFullNodeWithGenesis(c, genesis, sk)
}

// NewFullNodeWithGenesis creates a full node on a caller-provided genesis
// block, so a cluster of nodes can agree on the same chain root.
func NewFullNodeWithGenesis(c config.AppConfig, genesis *model.Block, sk *rsa.PrivateKey) *FullNode {
	engine := txengine.New()
	return &FullNode{
		blockchain: chain.New(genesis, engine),
		engine:     engine,
		keys:       sk,
		config:     c,
		uuid:       uuid.NewV4().String(),
	}
}

func (f *FullNode) UUID() string {
	return f.uuid
}

func (f *FullNode) Chain() *chain.Blockchain {
	return f.blockchain
}

func (f *FullNode) PublicKeyBytes() []byte {
	return utils.PublicKeyToBytes(&f.keys.PublicKey)
}

func (f *FullNode) GetHeight() int64 {
	return f.blockchain.BestHeight()
}

func (f *FullNode) GetTail() *chain.BlockNode {
	return f.blockchain.Tail()
}

// AddTransactionToPool queues a transaction for the next mined block.
func (f *FullNode) AddTransactionToPool(tx *model.Transaction) error {
	if tx == nil {
		return errors.New("input transaction is nil")
	}
	if err := f.blockchain.SubmitTransaction(tx); err != nil {
		return err
	}
	monitoring.IncReceivedTx()
	monitoring.SetTxPoolSize(f.blockchain.TxPool().Size())
	return nil
}

// GetTailLedgerSnapshot returns a deep copy of the ledger at the tail.
func (f *FullNode) GetTailLedgerSnapshot() *model.Ledger {
	return f.blockchain.BestLedger()
}

// GetUtxoForPublicKey returns the subset of the tail ledger owned by pk.
func (f *FullNode) GetUtxoForPublicKey(pk []byte) *model.Ledger {
	l := f.blockchain.BestLedger()
	owned := model.NewLedger()
	for utxo, output := range l.L {
		if bytes.Equal(output.PublicKey, pk) {
			owned.Put(utxo, output)
		}
	}
	return owned
}

// CreateNewBlock assembles and mines a candidate block on top of the current
// tail with all valid transactions from the pool. Mining is a long process;
// ctl interrupts it at any time and the interrupting command is handed back.
func (f *FullNode) CreateNewBlock(ctl chan commands.Command) (*model.Block, commands.Command, error) {
	base := f.blockchain.BestLedger()
	prevHash := f.blockchain.BestBlock().Hash
	height := f.blockchain.BestHeight() + 1
	txs := f.blockchain.TxPool().All()

	// Take the valid subset; an invalid pending transaction just stays out of
	// this block.
	work := base.Copy()
	accepted := f.engine.HandleTxs(work, txs)
	fee, err := txengine.CalcTxFee(accepted, base)
	if err != nil {
		return nil, commands.NewDefaultCommand(), err
	}

	coinbase, err := utils.CreateCoinbaseTx(f.config.COINBASE_REWARD+fee, f.PublicKeyBytes(), height)
	if err != nil {
		return nil, commands.NewDefaultCommand(), err
	}
	block := &model.Block{
		PrevHash: prevHash,
		Txs:      accepted,
		Coinbase: coinbase,
	}
	c, err := utils.Mine(block, f.config.DIFFICULTY, ctl)
	return block, c, err
}

// HandleNewBlock validates and links a received block:
//  1. Hash integrity and difficulty match.
//  2. Coinbase pays exactly reward plus transaction fees.
//  3. Chain placement and transaction-set validity (chain.AddBlock).
//
// It reports whether the tail moved, so the caller can restart an in-flight
// mining task that just became stale.
func (f *FullNode) HandleNewBlock(pendingBlock *model.Block) (bool, error) {
	if pendingBlock == nil {
		return false, errors.New("input block is nil")
	}

	f.m.Lock()
	defer f.m.Unlock()

	matched, digest := utils.MatchDifficulty(pendingBlock, f.config.DIFFICULTY)
	if !matched || digest != pendingBlock.Hash {
		monitoring.IncRejectedBlock(monitoring.BlockBadProof)
		return false, errors.New("block hash does not satisfy the proof")
	}

	parentLedger, ok := f.blockchain.LedgerAt(pendingBlock.PrevHash)
	if !ok {
		monitoring.IncRejectedBlock(monitoring.BlockUnknownParent)
		return false, fmt.Errorf("parent block not found in blockchain, parent block hash: %s", pendingBlock.PrevHash)
	}
	fee, err := txengine.CalcTxFee(pendingBlock.Txs, parentLedger)
	if err != nil {
		monitoring.IncRejectedBlock(monitoring.BlockInvalidTxs)
		return false, err
	}
	if err := utils.IsValidCoinbase(pendingBlock.Coinbase, f.config.COINBASE_REWARD+fee); err != nil {
		monitoring.IncRejectedBlock(monitoring.BlockBadCoinbase)
		return false, err
	}

	oldHeight := f.blockchain.BestHeight()
	if !f.blockchain.AddBlock(pendingBlock) {
		monitoring.IncRejectedBlock(monitoring.BlockChainReject)
		return false, errors.New("blockchain rejected the block")
	}

	monitoring.IncAcceptedBlock()
	monitoring.SetBestHeight(f.blockchain.BestHeight())
	monitoring.SetRetainedNodes(f.blockchain.Size())
	monitoring.SetTxPoolSize(f.blockchain.TxPool().Size())
	return f.blockchain.BestHeight() > oldHeight, nil
}
