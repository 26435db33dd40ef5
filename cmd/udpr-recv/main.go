// Command udpr-recv runs a ReceiverPeer against a known sender address,
// writing the transferred bytes to a file on disk. When -stats-db is
// given, it also appends a row to a local transfer-history ledger.
package main

import (
	"flag"
	"net"
	"os"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/1Radiation1/Networking/pkg/config"
	"github.com/1Radiation1/Networking/pkg/receiver"
	"github.com/1Radiation1/Networking/pkg/sink"
	"github.com/1Radiation1/Networking/pkg/statsdb"
)

func main() {
	cfg := config.Get()

	var (
		senderHost = flag.String("sender", "", "sender host:port to request the transfer from")
		outPath    = flag.String("out", "", "path to write the received bytes to")
		timeoutMs  = flag.Uint("timeout", uint(cfg.Timeout.ReadinessMillis), "readiness timeout in milliseconds")
		statsPath  = flag.String("stats-db", "", "optional path to a transfer-history ledger (storm/bolt)")
	)
	flag.Parse()

	logger := log.WithField("prefix", "udpr-recv")

	if *senderHost == "" || *outPath == "" {
		logger.Fatal("missing required -sender and -out flags")
	}

	senderAddr, err := net.ResolveUDPAddr("udp4", *senderHost)
	if err != nil {
		logger.WithError(err).Fatal("failed to resolve sender address")
	}

	f, err := os.Create(*outPath)
	if err != nil {
		logger.WithError(err).Fatal("failed to create output file")
	}
	defer f.Close()

	var stats *statsdb.DB
	if *statsPath != "" {
		stats, err = statsdb.Open(*statsPath)
		if err != nil {
			logger.WithError(err).Fatal("failed to open stats database")
		}
		defer stats.Close()
	}

	snk := sink.NewFile(f)
	r := receiver.New(snk, senderAddr, receiver.WithTimeout(time.Duration(*timeoutMs)*time.Millisecond))

	start := time.Now()
	var bytes uint64
	for r.IsRunning() {
		time.Sleep(50 * time.Millisecond)
	}
	duration := time.Since(start)

	if fi, statErr := f.Stat(); statErr == nil {
		bytes = uint64(fi.Size())
	}

	if stats != nil {
		record := statsdb.TransferRecord{
			ID:         start,
			PeerAddr:   senderAddr.String(),
			Bytes:      bytes,
			Duration:   duration,
			Succeeded:  !r.ErrorOccurred(),
			ErrMessage: r.ErrorString(),
		}
		if err := stats.Save(&record); err != nil {
			logger.WithError(err).Warn("failed to record transfer in stats database")
		}
	}

	if r.ErrorOccurred() {
		logger.WithField("code", r.ErrorCode()).Fatal(r.ErrorString())
	}
	logger.WithField("bytes", bytes).WithField("duration", duration).Info("transfer complete")
}
