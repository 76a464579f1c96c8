package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/minichain-go/minichain/commands"
	"github.com/minichain-go/minichain/config"
	"github.com/minichain-go/minichain/logx"
	"github.com/minichain-go/minichain/monitoring"
	"github.com/minichain-go/minichain/node"
)

var (
	ip         *string
	port       *string
	peers      *string
	peerPorts  *string
	configPath *string
)

func init() {
	ip = flag.String("ip", "127.0.0.1", "ip address to advertise to peers")
	port = flag.String("port", "10000", "port to listen to peers and wallet")
	peers = flag.String("peers", "", "comma separated peer ip addresses")
	peerPorts = flag.String("peer_ports", "", "comma separated peer ports")
	configPath = flag.String("config_path", "config/config.yaml", "path to full node config")
}

// ParseCommand reads REPL lines from stdin and turns them into commands.
func ParseCommand(cmd chan commands.Command) {
	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("> ")
		text, _ := reader.ReadString('\n')
		text = strings.TrimSuffix(text, "\n")
		c, err := commands.CreateCommand(text)
		if err != nil {
			logx.Warn("%v", err)
			continue
		}
		cmd <- c
	}
}

// HandleCommand drives the mining loop and peer management:
// start/stop/restart mining, add and list peers, render the chain.
func HandleCommand(cmd chan commands.Command, server *node.FullNodeServer) {
	// A separate control channel makes sure cmd stays non-blocking when we
	// just want to restart an in-flight task.
	ctl := make(chan commands.Command, 1)
	isRunning := false
	for {
		c := <-cmd
		switch c.Op {
		case commands.START:
			if isRunning {
				logx.Warn("mining has already been started")
				continue
			}
			isRunning = true
			go func() {
				for {
					res, err := server.Mine(ctl)
					if err != nil {
						logx.Warn("mining: %v", err)
					}
					if res.Op == commands.STOP {
						isRunning = false
						return
					}
				}
			}()
		case commands.RESTART, commands.STOP:
			if !isRunning {
				logx.Warn("no running mining task to restart or stop")
				continue
			}
			go func() {
				// Relay the signal to the mining process in a separate
				// goroutine so HandleCommand is never blocked.
				ctl <- c
			}()
		case commands.ADD_PEER:
			if err := server.AddMutualConnection(c.Args[0], c.Args[1]); err != nil {
				logx.Warn("add_peer: %v", err)
			}
		case commands.LIST_PEER:
			for _, p := range server.GetAllPeers() {
				fmt.Println(p)
			}
		case commands.SHOW:
			v, err := strconv.Atoi(c.Args[0])
			if err != nil {
				logx.Warn("%s is not a valid number for depth", c.Args[0])
				continue
			}
			server.Show(v)
		default:
			logx.Warn("unrecognized command: %v", c)
		}
	}
}

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logx.Fatal("failed to load config at %s: %v", *configPath, err)
	}
	if cfg.LOG_FILE != "" {
		logx.Init(cfg.LOG_FILE, cfg.LOG_MAX_SIZE_MB, cfg.LOG_MAX_AGE_DAYS)
	}
	if cfg.METRICS_ADDR != "" {
		monitoring.Serve(cfg.METRICS_ADDR)
	}

	// A command channel that non-blockingly takes external or internal
	// commands and handles them correspondingly.
	cmd := make(chan commands.Command, 1)
	server := node.NewFullNodeServer(cfg, node.Address{IpAddr: *ip, Port: *port}, cmd)

	// Optionally connect to an initial set of peers.
	if *peers != "" {
		peerIPs := strings.Split(*peers, ",")
		ports := strings.Split(*peerPorts, ",")
		if len(peerIPs) != len(ports) {
			logx.Fatal("peers and peer_ports must pair up")
		}
		for i := range peerIPs {
			if err := server.AddMutualConnection(peerIPs[i], ports[i]); err != nil {
				logx.Warn("failed to connect peer %s:%s: %v", peerIPs[i], ports[i], err)
			}
		}
	}

	go ParseCommand(cmd)
	go HandleCommand(cmd, server)

	if err := server.Serve(); err != nil {
		logx.Fatal("server stopped: %v", err)
	}
}
