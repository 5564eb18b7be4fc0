package main

import (
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/discretemind/graphene-core/crypto"
	"github.com/discretemind/graphene-core/domain/consensus"
	"github.com/discretemind/graphene-core/domain/consensus/model/externalapi"
	"github.com/discretemind/graphene-core/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	if err := run(); err != nil {
		log.Criticalf("%+v", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := loadConfig(os.Args[1:])
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.LogDir, 0700); err != nil {
		return err
	}
	if err := initLogging(cfg.LogDir, cfg.DebugLevel); err != nil {
		return err
	}
	defer log.Backend().Close()

	log.Infof("graphened starting, network %s, data dir %s", cfg.Params.Name, cfg.DataDir)

	key, err := crypto.GeneratePrivateKey()
	if err != nil {
		return err
	}
	producer := externalapi.ProducerID("solo-producer")
	pubKey := key.PubKey().SerializeCompressed()
	log.Infof("solo producer %s signing key %x", producer, pubKey)

	scheduler := newSoloScheduler(producer, pubKey, cfg.Params.BlockInterval)

	collector := metrics.New(prometheus.NewRegistry())

	blockStorePath := filepath.Join(cfg.DataDir, "blocks")
	factory := consensus.NewFactory()
	c, err := factory.NewConsensus(&cfg.Params, blockStorePath, consensus.Dependencies{
		Scheduler: scheduler,
		Observers: collector,
		Verifier:  crypto.NewVerifier(),
	})
	if err != nil {
		return err
	}

	if len(cfg.Checkpoints) > 0 {
		c.SetCheckpoints(cfg.Checkpoints)
		log.Infof("loaded %d checkpoint(s)", len(cfg.Checkpoints))
	}

	log.Infof("consensus ready, head block %d", c.HeadBlockNum())

	waitForShutdown()
	log.Infof("graphened shutting down")
	return nil
}

func waitForShutdown() {
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	<-interrupt
}
