// ════════════════════════════════════════════════════════════════════════════════════════════════
// mdfh-multifeed — multi-feed dispatcher demo binary
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Market Data Ingestion Core
// Component: Main entry point wiring config → per-feed transports → dispatcher.Dispatcher
//
// Grounded in the teacher's main.go lifecycle shape, generalized to the multi-feed fan-in
// topology: one TCP transport per configured feed, a shared dispatcher, signal-driven
// shutdown, and a final aggregate report across all feeds.
// ════════════════════════════════════════════════════════════════════════════════════════════════

package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mdfh/config"
	"mdfh/control"
	"mdfh/diag"
	"mdfh/dispatcher"
	"mdfh/feed"
	"mdfh/mdlog"
	"mdfh/stats"
	"mdfh/transport"
)

func main() {
	configPath := flag.String("config", "multifeed.yaml", "path to a MultiFeedConfig YAML file")
	flag.Parse()

	log := mdlog.Default().WithComponent("mdfh-multifeed")

	cfg, err := config.LoadMultiFeed(*configPath)
	if err != nil {
		diag.DropError("config.LoadMultiFeed", err)
		os.Exit(1)
	}

	var specs []dispatcher.FeedSpec
	for _, f := range cfg.Feeds {
		specs = append(specs, dispatcher.FeedSpec{
			Config: feed.Config{
				OriginID:          f.OriginID,
				IsPrimary:         f.IsPrimary,
				HeartbeatMs:       f.HeartbeatMs,
				TimeoutMultiplier: f.TimeoutMultiplier,
			},
			Transport:     &transport.TCP{Host: f.Host, Port: f.Port},
			LocalCapacity: int(f.BufferCapacity),
		})
	}

	healthInterval := time.Duration(cfg.HealthCheckIntervalMS) * time.Millisecond
	d, err := dispatcher.New(int(cfg.GlobalBufferCapacity), healthInterval, specs)
	if err != nil {
		diag.DropError("dispatcher.New", err)
		os.Exit(1)
	}

	for _, startErr := range d.Start() {
		log.WithError(startErr).Warn("a feed failed to start; continuing with the rest")
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		control.Shutdown()
	}()

	var maxDeadline <-chan time.Time
	if cfg.MaxSeconds > 0 {
		timer := time.NewTimer(time.Duration(cfg.MaxSeconds) * time.Second)
		defer timer.Stop()
		maxDeadline = timer.C
	}

	reportTicker := time.NewTicker(time.Second)
	defer reportTicker.Stop()

	// st is owned by this consume loop, the single point where a FeedSlot actually leaves
	// the shared MPSC ring — mirroring mdfh-ingest's st.RecordProcessed at its ring.TryPop().
	st := stats.New()
consume:
	for !control.Stopped() {
		if fs, ok := d.Pop(); ok {
			st.RecordProcessed(fs.Slot.Raw.Seq, fs.Slot.RxTS)
			if cfg.MaxMessages > 0 && st.Processed() >= cfg.MaxMessages {
				break consume
			}
			continue
		}
		select {
		case <-maxDeadline:
			break consume
		case <-reportTicker.C:
			log.Infof("%s | promoted_origin=%d", d.Snapshot(st).PeriodicLine(), d.PromotedOriginID())
		default:
		}
	}

	control.Shutdown()
	d.Stop()
	control.ShutdownWG.Wait()

	log.Info(d.Snapshot(st).FinalReport())
}
