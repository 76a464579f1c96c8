package visualize

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"

	"github.com/bradleyjkemp/memviz"

	"github.com/minichain-go/minichain/chain"
	"github.com/minichain-go/minichain/model"
	"github.com/minichain-go/minichain/utils"
)

// We re-define a compact render model here because the real block node drags
// full ledgers and signatures along, which makes the graph unreadable.
type input struct {
	prevTxHash string
	index      int64
}

type output struct {
	value     float64
	publicKey string
}

type coinbaseTransaction struct {
	hash    string
	outputs []output
	height  int64
}

type transaction struct {
	hash    string
	inputs  []input
	outputs []output
}

type block struct {
	hash     string
	prevHash string
	coinbase coinbaseTransaction
	txs      []transaction
	height   int64
	children []block
}

// constructData walks d blocks up from the tail to find a local root, then
// returns the whole retained subtree under it.
func constructData(tail *chain.BlockNode, d int) block {
	r := tail
	for i := 0; i < d; i++ {
		if r.Parent == nil {
			break
		}
		r = r.Parent
	}
	return buildTree(r)
}

// The string of a public key or hash is just too long to render; take only the
// first 3 and last 3 characters. E.g. "abcdefghi" renders as "abc...ghi".
func shortenString(s string) string {
	if len(s) < 9 {
		return s
	}
	return fmt.Sprintf("%s...%s", s[0:3], s[len(s)-3:])
}

func shortenPK(s string) string {
	if len(s) < 9 {
		return s
	}
	mid := len(s) / 2
	return fmt.Sprintf("...%s...", s[mid-1:mid+2])
}

func txToTx(tx *model.Transaction) transaction {
	t := transaction{
		hash: shortenString(tx.Hash),
	}
	for _, in := range tx.Inputs {
		t.inputs = append(t.inputs, input{prevTxHash: shortenString(in.PrevTxHash), index: in.Index})
	}
	for _, out := range tx.Outputs {
		t.outputs = append(t.outputs, output{publicKey: shortenPK(utils.BytesToHex(out.PublicKey)), value: out.Value})
	}
	return t
}

func txToCb(tx *model.Transaction) coinbaseTransaction {
	cb := coinbaseTransaction{
		hash:   shortenString(tx.Hash),
		height: tx.Height,
	}
	for _, out := range tx.Outputs {
		cb.outputs = append(cb.outputs, output{publicKey: shortenPK(utils.BytesToHex(out.PublicKey)), value: out.Value})
	}
	return cb
}

func nodeToBlock(n *chain.BlockNode) block {
	b := block{
		hash:     shortenString(n.B.Hash),
		prevHash: shortenString(n.B.PrevHash),
		height:   n.Height,
	}
	if n.B.Coinbase != nil {
		b.coinbase = txToCb(n.B.Coinbase)
	}
	for _, tx := range n.B.Txs {
		b.txs = append(b.txs, txToTx(tx))
	}
	return b
}

// buildTree recursively builds the render tree in a dfs manner.
func buildTree(root *chain.BlockNode) block {
	node := nodeToBlock(root)
	for _, child := range root.Children {
		node.children = append(node.children, buildTree(child))
	}
	return node
}

// Render draws the chain from d blocks behind the tail down to every retained
// leaf, writing a graphviz png under /tmp keyed by the node id.
func Render(tail *chain.BlockNode, d int, id string) {
	buf := &bytes.Buffer{}
	data := constructData(tail, d)
	memviz.Map(buf, &data)

	fileName := "/tmp/chaindata-" + id
	outputName := "/tmp/rendered-chain-" + id + ".png"
	if err := os.WriteFile(fileName, buf.Bytes(), 0644); err != nil {
		panic(err)
	}

	exec.Command("dot", "-Tpng", fileName, "-o", outputName).Run()
	exec.Command("open", outputName).Run()
}
