// Command udpr-send runs a SenderPeer against a file on disk, serving
// chunk requests from a single receiver until interrupted or until the
// sender reports an error. It does not exit on its own once the transfer
// is complete.
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/1Radiation1/Networking/pkg/config"
	"github.com/1Radiation1/Networking/pkg/sender"
	"github.com/1Radiation1/Networking/pkg/source"
)

func main() {
	cfg := config.Get()

	var (
		filePath   = flag.String("file", "", "path of the file to serve")
		port       = flag.Uint("port", uint(cfg.Network.Port), "UDP port to listen on")
		packetSize = flag.Uint("packetsize", uint(cfg.Network.PacketSize), "MTU hint advertised to the receiver")
		timeoutMs  = flag.Uint("timeout", uint(cfg.Timeout.ReadinessMillis), "readiness timeout in milliseconds")
	)
	flag.Parse()

	logger := log.WithField("prefix", "udpr-send")

	if *filePath == "" {
		logger.Fatal("missing required -file flag")
	}

	f, err := os.Open(*filePath)
	if err != nil {
		logger.WithError(err).Fatal("failed to open source file")
	}
	defer f.Close()

	src := source.NewFile(f)

	s, err := sender.New(src, uint16(*port),
		sender.WithPacketSize(uint16(*packetSize)),
		sender.WithTimeout(time.Duration(*timeoutMs)*time.Millisecond),
	)
	if err != nil {
		logger.WithError(err).Fatal("failed to start sender")
	}

	logger.WithField("port", s.Port()).WithField("packetSize", s.PacketSize()).Info("serving")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	for s.IsRunning() {
		select {
		case <-sig:
			logger.Info("received interrupt, stopping")
			s.Stop()
		case <-time.After(200 * time.Millisecond):
		}
	}

	if s.ErrorOccurred() {
		logger.WithField("code", s.ErrorCode()).Fatal(s.ErrorString())
	}
}
