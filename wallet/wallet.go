package wallet

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"log"

	"github.com/jroimartin/gocui"

	"github.com/minichain-go/minichain/client"
	"github.com/minichain-go/minichain/model"
	"github.com/minichain-go/minichain/service"
	"github.com/minichain-go/minichain/utils"
)

// User signs and sends transactions to the network.
type Wallet struct {
	keys           *rsa.PrivateKey
	fullNodeClient *client.FullNodeClient
	// Spendable outputs owned by this wallet, refreshed from the full node.
	UTXOs map[model.UTXO]*model.Output
	// TUI handle; nil in debug mode, then logs go to stdout.
	g *gocui.Gui
}

// NewWallet loads (or creates) the key at keyPath and wires the TUI handle.
func NewWallet(keyPath string, createNewKey bool, g *gocui.Gui) *Wallet {
	keys, err := utils.ParseKeyFile(keyPath, createNewKey)
	if err != nil {
		log.Fatalln("failed to load wallet key:", err)
	}
	return &Wallet{
		keys:  keys,
		UTXOs: make(map[model.UTXO]*model.Output),
		g:     g,
	}
}

// Log prints to the TUI logger view, or stdout in debug mode.
func (w *Wallet) Log(msg string) {
	if w.g == nil {
		log.Println(msg)
		return
	}
	w.g.Update(func(g *gocui.Gui) error {
		v, err := g.View("logger")
		if err != nil {
			return err
		}
		fmt.Fprintln(v, msg)
		return nil
	})
}

// GetPublicKey returns this wallet's public key in hex, the form other
// wallets transfer money to.
func (w *Wallet) GetPublicKey() string {
	return utils.BytesToHex(utils.PublicKeyToBytes(&w.keys.PublicKey))
}

func (w *Wallet) SetFullNodeConnection(ipAddr string, port string) error {
	if w.fullNodeClient != nil {
		w.fullNodeClient.Close()
	}
	w.fullNodeClient = client.Dial(ipAddr, port)
	return nil
}

// GetBalance refreshes the wallet's UTXO view from the connected full node.
func (w *Wallet) GetBalance() error {
	if w.fullNodeClient == nil {
		return errors.New("not connected to any full node")
	}
	res, err := w.fullNodeClient.GetBalance(&service.GetBalanceRequest{
		PublicKey: w.GetPublicKey(),
	})
	if err != nil {
		return err
	}
	w.UTXOs = make(map[model.UTXO]*model.Output)
	for _, pair := range res.UtxoOutputPairs {
		output, err := service.ToOutput(pair.Output)
		if err != nil {
			return err
		}
		utxo := model.UTXO{PrevTxHash: pair.Utxo.PrevTxHash, Index: pair.Utxo.Index}
		w.UTXOs[utxo] = output
	}
	return nil
}

// GetTotalDeposit refreshes and sums the wallet's spendable outputs.
func (w *Wallet) GetTotalDeposit() (float64, error) {
	if err := w.GetBalance(); err != nil {
		return 0, err
	}
	total := 0.0
	for _, output := range w.UTXOs {
		total += output.Value
	}
	return total, nil
}

// TransferMoney builds, signs and submits a transaction paying value to the
// owner of receiverPK (hex encoded public key bytes).
func (w *Wallet) TransferMoney(receiverPK string, value float64) error {
	if err := w.GetBalance(); err != nil {
		return fmt.Errorf("failed to get balance from full node: %w", err)
	}
	pk, err := utils.HexToBytes(receiverPK)
	if err != nil {
		return fmt.Errorf("failed to parse receiver public key: %w", err)
	}
	output := &model.Output{
		PublicKey: pk,
		Value:     value,
	}
	tx, err := utils.CreatePendingTransaction(w.keys, w.UTXOs, []*model.Output{output})
	if err != nil {
		return fmt.Errorf("failed to create new transaction: %w", err)
	}
	return w.SendTransaction(tx)
}

func (w *Wallet) SendTransaction(tx *model.Transaction) error {
	if w.fullNodeClient == nil {
		return errors.New("not connected to any full node")
	}
	_, err := w.fullNodeClient.SetTransaction(&service.SetTransactionRequest{
		Tx: service.FromTransaction(tx),
	})
	return err
}
