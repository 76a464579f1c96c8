package txengine

import (
	"fmt"

	"github.com/minichain-go/minichain/logx"
	"github.com/minichain-go/minichain/model"
	"github.com/minichain-go/minichain/utils"
)

// IsValidTransaction checks, without mutating the ledger:
//  1. All inputs are unspent outputs in the ledger.
//  2. Every input's signature verifies against the funding output's owner key.
//  3. No double spending within the transaction itself.
//  4. Outputs are non-negative.
//  5. Total input covers total output.
func IsValidTransaction(t *model.Transaction, ledger *model.Ledger) bool {
	totalInput := 0.0
	totalOutput := 0.0

	// Track claimed UTXOs to catch intra-transaction double spends.
	seenUtxo := make(map[model.UTXO]bool)

	for i, input := range t.Inputs {
		inputUtxo := utxoFromInput(input)
		output, ok := ledger.L[inputUtxo]
		if !ok {
			logx.Warn("tx %s: input (%s, %d) is not an unspent output", t.Hash, input.PrevTxHash, input.Index)
			return false
		}
		totalInput += output.Value

		inputData, err := utils.GetInputDataToSignByIndex(t, i)
		if err != nil {
			logx.Warn("tx %s: %v", t.Hash, err)
			return false
		}
		pk := utils.BytesToPublicKey(output.PublicKey)
		if pk == nil {
			logx.Warn("tx %s: invalid bytes when reconstructing public key", t.Hash)
			return false
		}
		if !utils.Verify(inputData, pk, input.Signature) {
			logx.Warn("tx %s: input %d signature doesn't match tx data", t.Hash, i)
			return false
		}

		if seenUtxo[inputUtxo] {
			logx.Warn("tx %s: input %d is a double spend", t.Hash, i)
			return false
		}
		seenUtxo[inputUtxo] = true
	}

	for _, output := range t.Outputs {
		if output.Value < 0 {
			logx.Warn("tx %s: negative output value", t.Hash)
			return false
		}
		totalOutput += output.Value
	}

	return totalInput >= totalOutput
}

// CalcTxFee computes the total fee of the transaction list: the sum over all
// transactions of inputs minus outputs. Transactions are applied to a scratch
// copy along the way so a transaction may spend an output created earlier in
// the same list.
func CalcTxFee(txs []*model.Transaction, ledger *model.Ledger) (float64, error) {
	l := ledger.Copy()
	fee := 0.0
	for _, tx := range txs {
		totalInput := 0.0
		for _, input := range tx.Inputs {
			output, ok := l.L[utxoFromInput(input)]
			if !ok {
				return 0, fmt.Errorf("tx %s spends unknown output (%s, %d)", tx.Hash, input.PrevTxHash, input.Index)
			}
			totalInput += output.Value
			l.Claim(utxoFromInput(input))
		}
		totalOutput := 0.0
		for i, output := range tx.Outputs {
			totalOutput += output.Value
			l.Put(model.UTXO{PrevTxHash: tx.Hash, Index: int64(i)}, *output)
		}
		fee += totalInput - totalOutput
	}
	return fee, nil
}
