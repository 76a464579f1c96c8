package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/minichain-go/minichain/logx"
)

type BlockRejectedReason string

var (
	BlockUnknownParent BlockRejectedReason = "unknown_parent"
	BlockTooDeep       BlockRejectedReason = "too_deep"
	BlockInvalidTxs    BlockRejectedReason = "invalid_txs"
	BlockBadProof      BlockRejectedReason = "bad_proof"
	BlockBadCoinbase   BlockRejectedReason = "bad_coinbase"
	BlockChainReject   BlockRejectedReason = "chain_reject"
)

type nodePromMetrics struct {
	bestHeight         prometheus.Gauge
	retainedNodes      prometheus.Gauge
	txPoolSize         prometheus.Gauge
	acceptedBlockCount prometheus.Counter
	rejectedBlockCount *prometheus.CounterVec
	receivedTxCount    prometheus.Counter
	peerCount          prometheus.Gauge
}

func newNodePromMetrics() *nodePromMetrics {
	return &nodePromMetrics{
		bestHeight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "minichain_node_best_height",
				Help: "Height of the current max height block",
			},
		),
		retainedNodes: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "minichain_node_retained_blocks",
				Help: "Block nodes currently retained in the fork tree",
			},
		),
		txPoolSize: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "minichain_node_txpool_size",
				Help: "The total pending transactions queued in the node's pool",
			},
		),
		acceptedBlockCount: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "minichain_node_accepted_block_count",
				Help: "The total number of blocks linked into the chain",
			},
		),
		rejectedBlockCount: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "minichain_node_rejected_block_count",
				Help: "The total number of rejected blocks",
			},
			[]string{"reason"},
		),
		receivedTxCount: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "minichain_node_received_tx_count",
				Help: "The total number of transactions submitted to the node",
			},
		),
		peerCount: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "minichain_node_peer_count",
				Help: "The number of peers this node broadcasts to",
			},
		),
	}
}

var metrics *nodePromMetrics

// Serve registers the node metrics and exposes them at /metrics on addr.
func Serve(addr string) {
	if metrics == nil {
		metrics = newNodePromMetrics()
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			logx.Error("metrics endpoint stopped: %v", err)
		}
	}()
}

func SetBestHeight(h int64) {
	if metrics != nil {
		metrics.bestHeight.Set(float64(h))
	}
}

func SetRetainedNodes(n int) {
	if metrics != nil {
		metrics.retainedNodes.Set(float64(n))
	}
}

func SetTxPoolSize(n int) {
	if metrics != nil {
		metrics.txPoolSize.Set(float64(n))
	}
}

func IncAcceptedBlock() {
	if metrics != nil {
		metrics.acceptedBlockCount.Inc()
	}
}

func IncRejectedBlock(reason BlockRejectedReason) {
	if metrics != nil {
		metrics.rejectedBlockCount.WithLabelValues(string(reason)).Inc()
	}
}

func IncReceivedTx() {
	if metrics != nil {
		metrics.receivedTxCount.Inc()
	}
}

func SetPeerCount(n int) {
	if metrics != nil {
		metrics.peerCount.Set(float64(n))
	}
}
