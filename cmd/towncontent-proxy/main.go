// Command towncontent-proxy runs the CORS relay the fetchers route
// through: /proxy for feed and page content, /image-proxy for images.
package main

import (
	"flag"
	"net/http"
	"os"
	"time"

	"github.com/explorestoneham/explorestoneham-sub000/internal/logger"
	"github.com/explorestoneham/explorestoneham-sub000/internal/proxy"
)

var (
	listenAddr = flag.String("listen", ":8080", "HTTP listen address")
	timeout    = flag.Duration("timeout", 10*time.Second, "Upstream content fetch timeout")
)

func main() {
	flag.Parse()

	cfg := proxy.DefaultServerConfig()
	cfg.Timeout = *timeout
	server := proxy.NewServer(cfg)

	logger.Info("content proxy listening", logger.Fields{"addr": *listenAddr})
	if err := http.ListenAndServe(*listenAddr, server.Routes()); err != nil {
		logger.Error("server exited", nil, err)
		os.Exit(1)
	}
}
