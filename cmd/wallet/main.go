package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/jroimartin/gocui"

	"github.com/minichain-go/minichain/commands"
	"github.com/minichain-go/minichain/layout"
	"github.com/minichain-go/minichain/wallet"
)

var (
	keyPath   *string
	newKey    *bool
	debugMode *bool
)

func init() {
	keyPath = flag.String("key_path", "/tmp/mykey.pem", "RSA file path for your private key")
	newKey = flag.Bool("new_key", false, "generate a fresh key at key_path")
	debugMode = flag.Bool("debug_mode", false, "using debug mode will disable the fancy GUI")
}

// ListenOnInput returns a gui handle if not in debug mode.
func ListenOnInput(cmd chan commands.ClientCommand, debugMode bool) *gocui.Gui {
	if debugMode {
		go ParseCommand(cmd)
		return nil
	}
	g, err := layout.CreateGui(func(line string) error {
		c, err := commands.CreateClientCommand(line)
		if err != nil {
			return err
		}
		cmd <- c
		return nil
	}, "cmd/wallet/usage.txt")
	if err != nil {
		log.Fatalln(err)
	}
	go func() {
		if err := g.MainLoop(); err != nil {
			if err == gocui.ErrQuit {
				g.Close()
				os.Exit(0)
			}
			os.Exit(1)
		}
	}()
	return g
}

// ParseCommand parses commands from stdin in debug mode.
func ParseCommand(cmd chan commands.ClientCommand) {
	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("> ")
		text, _ := reader.ReadString('\n')
		text = strings.TrimSuffix(text, "\n")
		c, err := commands.CreateClientCommand(text)
		if err != nil {
			log.Println(err)
			continue
		}
		cmd <- c
	}
}

func HandleCommand(cmd chan commands.ClientCommand, w *wallet.Wallet) {
	for {
		c := <-cmd
		switch c.Op {
		case commands.TRANSFER:
			receiverPK := c.Args[0]
			value, _ := strconv.ParseFloat(c.Args[1], 64)
			if err := w.TransferMoney(receiverPK, value); err != nil {
				w.Log("fail to transfer money: " + err.Error())
				continue
			}
			w.Log(fmt.Sprintf("successfully sent transaction to full node, receiver: %s, value: %f", receiverPK, value))
		case commands.MY_PK:
			w.Log("\n===============DO NOT COPY THIS LINE================\n" + w.GetPublicKey() + "\n===============DO NOT COPY THIS LINE================")
		case commands.CONNECT:
			ipAddr := c.Args[0]
			port := c.Args[1]
			if err := w.SetFullNodeConnection(ipAddr, port); err != nil {
				w.Log("failed to connect to full node endpoint " + ipAddr + ":" + port)
				continue
			}
			w.Log("connected full node endpoint " + ipAddr + ":" + port)
		case commands.GET_BALANCE:
			v, err := w.GetTotalDeposit()
			if err != nil {
				w.Log("fail to get balance: " + err.Error())
				continue
			}
			w.Log(fmt.Sprintf("your total balance is: %f", v))
		default:
			w.Log(fmt.Sprintf("unimplemented command: %d", c.Op))
		}
	}
}

func main() {
	flag.Parse()

	cmd := make(chan commands.ClientCommand)
	g := ListenOnInput(cmd, *debugMode)
	w := wallet.NewWallet(*keyPath, *newKey, g)
	w.Log("Wallet public key: " + w.GetPublicKey())

	go HandleCommand(cmd, w)

	select {}
}
