package node

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/handler"
	"github.com/creachadair/jrpc2/jhttp"

	"github.com/minichain-go/minichain/commands"
	"github.com/minichain-go/minichain/config"
	"github.com/minichain-go/minichain/logx"
	"github.com/minichain-go/minichain/monitoring"
	"github.com/minichain-go/minichain/service"
	"github.com/minichain-go/minichain/txengine"
	"github.com/minichain-go/minichain/visualize"
)

type Address struct {
	// What ip address the peer full node is using.
	IpAddr string
	// What TCP port the peer full node is running on.
	Port string
}

func (a Address) String() string {
	return a.IpAddr + ":" + a.Port
}

func (a Address) URL() string {
	return "http://" + a.String() + "/rpc"
}

type Peer struct {
	// A JSON-RPC client established to connect to the other full node.
	client *jrpc2.Client
	// Peer address.
	addr Address
}

func (p Peer) String() string {
	return p.addr.String()
}

// FullNodeServer exposes a full node over JSON-RPC and fans accepted blocks
// and transactions out to its peers.
type FullNodeServer struct {
	// A bunch of peers that we have a client connection to.
	peers []Peer
	addr  Address

	// Protects peer addition and deletion.
	pm sync.RWMutex

	fullNode *FullNode
	// A command channel to pass commands to other parts of the system.
	// For now, the only use is to interrupt the mining process on tail change.
	cmd chan commands.Command
}

// NewFullNodeServer creates a full node server with no peers yet.
func NewFullNodeServer(c config.AppConfig, addr Address, cmd chan commands.Command) *FullNodeServer {
	return &FullNodeServer{
		fullNode: NewFullNode(c),
		addr:     addr,
		cmd:      cmd,
	}
}

func (sev *FullNodeServer) FullNode() *FullNode {
	return sev.fullNode
}

// GetAllPeers returns all current peers.
func (sev *FullNodeServer) GetAllPeers() []Peer {
	sev.pm.RLock()
	defer sev.pm.RUnlock()
	return append([]Peer(nil), sev.peers...)
}

// Methods is the JSON-RPC surface of this node.
func (sev *FullNodeServer) Methods() handler.Map {
	return handler.Map{
		service.MethodSetTransaction: handler.New(sev.SetTransaction),
		service.MethodSetBlock:       handler.New(sev.SetBlock),
		service.MethodGetBalance:     handler.New(sev.GetBalance),
		service.MethodBestBlock:      handler.New(sev.BestBlock),
		service.MethodAddPeer:        handler.New(sev.AddPeer),
	}
}

// Handler bridges the method map onto HTTP.
func (sev *FullNodeServer) Handler() http.Handler {
	return jhttp.NewBridge(sev.Methods(), nil)
}

// Serve blocks serving the RPC surface at sev's address.
func (sev *FullNodeServer) Serve() error {
	mux := http.NewServeMux()
	mux.Handle("/rpc", sev.Handler())
	logx.Info("full node %s serving at %s", sev.fullNode.UUID(), sev.addr)
	return http.ListenAndServe(sev.addr.String(), mux)
}

// SetTransaction adds a transaction to the pool and broadcasts it to peers.
func (sev *FullNodeServer) SetTransaction(ctx context.Context, req *service.SetTransactionRequest) (*service.SetTransactionResponse, error) {
	tx, err := service.ToTransaction(req.Tx)
	if err != nil {
		return nil, err
	}

	// Validate against the tail ledger first. Totally optional but keeps
	// garbage out of the pool early.
	l := sev.fullNode.GetTailLedgerSnapshot()
	if !txengine.IsValidTransaction(tx, l) {
		return nil, errors.New("transaction is invalid against the current chain")
	}

	if err := sev.fullNode.AddTransactionToPool(tx); err != nil {
		return nil, err
	}

	go sev.broadcast(service.MethodSetTransaction, req)
	return &service.SetTransactionResponse{Ok: true}, nil
}

// SetBlock handles a block received from the network. If the block moved the
// tail, an in-flight local mining task is restarted on the new tail.
func (sev *FullNodeServer) SetBlock(ctx context.Context, req *service.SetBlockRequest) (*service.SetBlockResponse, error) {
	logx.Info("received a new block: %s", req.Block.Hash)
	res, tailChange, err := sev.setBlockInternal(req)
	if err != nil {
		return res, err
	}
	if sev.fullNode.config.REMINE_ON_TAIL_CHANGE && tailChange {
		select {
		case sev.cmd <- commands.Command{Op: commands.RESTART}:
		default:
		}
	}
	return res, nil
}

func (sev *FullNodeServer) setBlockInternal(req *service.SetBlockRequest) (*service.SetBlockResponse, bool, error) {
	block, err := service.ToBlock(req.Block)
	if err != nil {
		return nil, false, err
	}
	tailChange, err := sev.fullNode.HandleNewBlock(block)
	if err != nil {
		return nil, tailChange, err
	}

	go sev.broadcast(service.MethodSetBlock, req)
	return &service.SetBlockResponse{Ok: true}, tailChange, nil
}

// GetBalance returns all UTXO the public key owns on the best chain.
func (sev *FullNodeServer) GetBalance(ctx context.Context, req *service.GetBalanceRequest) (*service.GetBalanceResponse, error) {
	pkOutput, err := service.ToOutput(service.Output{PublicKey: req.PublicKey})
	if err != nil {
		return nil, err
	}
	l := sev.fullNode.GetUtxoForPublicKey(pkOutput.PublicKey)
	res := &service.GetBalanceResponse{}
	for utxo, output := range l.L {
		res.UtxoOutputPairs = append(res.UtxoOutputPairs, service.UtxoOutputPair{
			Utxo:   service.UTXO{PrevTxHash: utxo.PrevTxHash, Index: utxo.Index},
			Output: service.FromOutput(&output),
		})
	}
	return res, nil
}

// BestBlock returns the current max height block.
func (sev *FullNodeServer) BestBlock(ctx context.Context) (*service.BestBlockResponse, error) {
	return &service.BestBlockResponse{
		Block:  service.FromBlock(sev.fullNode.Chain().BestBlock()),
		Height: sev.fullNode.GetHeight(),
	}, nil
}

// AddPeer registers a peer for broadcast. Best effort two way: the peer is
// asked to connect back, and a failure there only logs.
func (sev *FullNodeServer) AddPeer(ctx context.Context, req *service.AddPeerRequest) (*service.AddPeerResponse, error) {
	if _, err := sev.AddPeerInternal(req); err != nil {
		return nil, err
	}
	return &service.AddPeerResponse{Ok: true}, nil
}

func (sev *FullNodeServer) AddPeerInternal(req *service.AddPeerRequest) (*jrpc2.Client, error) {
	addr := Address{IpAddr: req.IpAddr, Port: req.Port}

	sev.pm.RLock()
	for _, p := range sev.peers {
		if p.addr == addr {
			sev.pm.RUnlock()
			return nil, errors.New("peer already exist")
		}
	}
	sev.pm.RUnlock()

	ch := jhttp.NewChannel(addr.URL(), nil)
	client := jrpc2.NewClient(ch, nil)

	sev.pm.Lock()
	sev.peers = append(sev.peers, Peer{client: client, addr: addr})
	monitoring.SetPeerCount(len(sev.peers))
	sev.pm.Unlock()
	return client, nil
}

// RemovePeer drops a peer from the peer list.
func (sev *FullNodeServer) RemovePeer(addr Address) {
	sev.pm.Lock()
	defer sev.pm.Unlock()
	for i := range sev.peers {
		if sev.peers[i].addr == addr {
			sev.peers[i].client.Close()
			sev.peers = append(sev.peers[:i], sev.peers[i+1:]...)
			monitoring.SetPeerCount(len(sev.peers))
			return
		}
	}
}

// AddMutualConnection connects to a remote full node and asks it to connect back.
func (sev *FullNodeServer) AddMutualConnection(ipAddr string, port string) error {
	client, err := sev.AddPeerInternal(&service.AddPeerRequest{IpAddr: ipAddr, Port: port})
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	var res service.AddPeerResponse
	err = client.CallResult(ctx, service.MethodAddPeer, &service.AddPeerRequest{
		IpAddr: sev.addr.IpAddr,
		Port:   sev.addr.Port,
	}, &res)
	if err != nil && err.Error() != "peer already exist" {
		logx.Warn("peer %s:%s would not connect back: %v", ipAddr, port, err)
	}
	return nil
}

// Mine one block on the current tail and feed it through the regular block
// handling path, which also broadcasts it.
func (sev *FullNodeServer) Mine(ctl chan commands.Command) (commands.Command, error) {
	b, c, err := sev.fullNode.CreateNewBlock(ctl)
	if err != nil {
		return c, err
	}
	req := &service.SetBlockRequest{Block: service.FromBlock(b)}
	_, _, err = sev.setBlockInternal(req)
	return commands.NewDefaultCommand(), err
}

// Show renders the chain from the tail down d levels.
func (sev *FullNodeServer) Show(d int) {
	visualize.Render(sev.fullNode.GetTail(), d, sev.fullNode.UUID())
}

// broadcast fans a request out to every peer, best effort.
func (sev *FullNodeServer) broadcast(method string, params interface{}) {
	sev.pm.RLock()
	peers := append([]Peer(nil), sev.peers...)
	sev.pm.RUnlock()
	for _, peer := range peers {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if _, err := peer.client.Call(ctx, method, params); err != nil {
			logx.Warn("broadcast %s to %s failed: %v", method, peer, err)
		}
		cancel()
	}
}
