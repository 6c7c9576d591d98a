// ════════════════════════════════════════════════════════════════════════════════════════════════
// mdfh-ingest — single-feed ingestion demo binary
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Market Data Ingestion Core
// Component: Main entry point wiring config → transport → ingest.Client → stats → mdlog
//
// Grounded in the teacher's main.go lifecycle shape: load configuration, install signal
// handling via control.Shutdown/ShutdownWG, run the data path, emit a final report on exit.
// ════════════════════════════════════════════════════════════════════════════════════════════════

package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"mdfh/config"
	"mdfh/control"
	"mdfh/diag"
	"mdfh/ingest"
	"mdfh/mdlog"
	"mdfh/spscring"
	"mdfh/stats"
	"mdfh/transport"
)

func main() {
	configPath := flag.String("config", "ingestion.yaml", "path to an IngestionConfig YAML file")
	flag.Parse()

	log := mdlog.Default().WithComponent("mdfh-ingest")

	cfg, err := config.LoadIngestion(*configPath)
	if err != nil {
		diag.DropError("config.LoadIngestion", err)
		os.Exit(1)
	}

	ring, err := spscring.New(int(cfg.BufferCapacity))
	if err != nil {
		diag.DropError("spscring.New", err)
		os.Exit(1)
	}
	st := stats.New()

	tr := &transport.TCP{Host: cfg.Host, Port: cfg.Port}
	client := ingest.New(tr)

	if err := client.Initialize(); err != nil {
		log.WithError(err).Error("transport initialize failed")
		os.Exit(1)
	}
	if err := client.Connect(); err != nil {
		log.WithError(err).Error("transport connect failed")
		os.Exit(1)
	}
	if err := client.Start(ring, st); err != nil {
		log.WithError(err).Error("transport start failed")
		os.Exit(1)
	}

	setupSignalHandling(log)

	var maxDeadline <-chan time.Time
	if cfg.MaxSeconds > 0 {
		timer := time.NewTimer(time.Duration(cfg.MaxSeconds) * time.Second)
		defer timer.Stop()
		maxDeadline = timer.C
	}

	reportTicker := time.NewTicker(time.Second)
	defer reportTicker.Stop()

consume:
	for !control.Stopped() {
		slot, ok := ring.TryPop()
		if ok {
			st.RecordProcessed(slot.Raw.Seq, slot.RxTS)
			if cfg.MaxMessages > 0 && st.Processed() >= cfg.MaxMessages {
				break consume
			}
			continue
		}
		select {
		case <-maxDeadline:
			break consume
		case <-reportTicker.C:
			log.Info(st.Snapshot().PeriodicLine())
		default:
		}
	}

	_ = client.Stop()
	_ = client.Disconnect()
	control.Shutdown()
	control.ShutdownWG.Wait()

	log.Info(st.Snapshot().FinalReport())
}

func setupSignalHandling(log *logrus.Entry) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		control.Shutdown()
	}()
}
