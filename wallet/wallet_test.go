package wallet

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/minichain-go/minichain/model"
	"github.com/minichain-go/minichain/utils"
)

func GetTestWallet() Wallet {
	privateKey, _ := rsa.GenerateKey(rand.Reader, 2048)
	utxo := model.UTXO{
		PrevTxHash: "2334ad",
		Index:      5,
	}
	output := model.Output{
		Value:     50,
		PublicKey: utils.PublicKeyToBytes(&privateKey.PublicKey),
	}

	return Wallet{
		keys: privateKey,
		UTXOs: map[model.UTXO]*model.Output{
			utxo: &output,
		},
	}
}

func TestCreatePendingTransaction(t *testing.T) {
	testWallet := GetTestWallet()
	receiverKey, _ := rsa.GenerateKey(rand.Reader, 2048)
	testOutputs := []*model.Output{
		{
			Value:     10,
			PublicKey: utils.PublicKeyToBytes(&receiverKey.PublicKey),
		},
	}

	actualTx, err := utils.CreatePendingTransaction(testWallet.keys, testWallet.UTXOs, testOutputs)
	assert.Nil(t, err)

	actualSignature := actualTx.Inputs[0].Signature

	expectedInput := &model.Input{
		PrevTxHash: "2334ad",
		Index:      5,
	}
	selfOutput := &model.Output{
		Value:     40,
		PublicKey: utils.PublicKeyToBytes(&testWallet.keys.PublicKey),
	}
	expectedOutputs := testOutputs
	expectedOutputs = append(expectedOutputs, selfOutput)

	expectedPendingTx := model.Transaction{
		Inputs:  []*model.Input{expectedInput},
		Outputs: expectedOutputs,
	}
	expectedMsg, _ := utils.GetInputDataToSignByIndex(&expectedPendingTx, 0)

	assert.True(t, utils.Verify(expectedMsg, &testWallet.keys.PublicKey, actualSignature))
}

func TestGetPublicKey(t *testing.T) {
	testWallet := GetTestWallet()
	pkBytes, err := utils.HexToBytes(testWallet.GetPublicKey())
	assert.Nil(t, err)
	parsed := utils.BytesToPublicKey(pkBytes)
	assert.NotNil(t, parsed)
	assert.True(t, testWallet.keys.PublicKey.Equal(parsed))
}

func TestNotConnectedErrors(t *testing.T) {
	testWallet := GetTestWallet()
	assert.NotNil(t, testWallet.GetBalance())
	_, err := testWallet.GetTotalDeposit()
	assert.NotNil(t, err)
	assert.NotNil(t, testWallet.SendTransaction(&model.Transaction{}))
}
