package main

import (
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "data")
	logDir := filepath.Join(t.TempDir(), "logs")

	cfg, err := loadConfig([]string{"--datadir", dataDir, "--logdir", logDir})
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Params.Name != "mainnet" {
		t.Fatalf("Params.Name = %s, want mainnet", cfg.Params.Name)
	}
	if cfg.DataDir != dataDir {
		t.Fatalf("DataDir = %s, want %s", cfg.DataDir, dataDir)
	}
}

func TestLoadConfigAppliesOverrides(t *testing.T) {
	cfg, err := loadConfig([]string{
		"--network", "simnet",
		"--maxblocksize", "1024",
		"--maintenanceinterval", "5m",
	})
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Params.MaxBlockSize != 1024 {
		t.Fatalf("MaxBlockSize = %d, want 1024", cfg.Params.MaxBlockSize)
	}
	if cfg.Params.MaintenanceInterval != 5*time.Minute {
		t.Fatalf("MaintenanceInterval = %s, want 5m", cfg.Params.MaintenanceInterval)
	}
}

func TestLoadConfigRejectsUnknownNetwork(t *testing.T) {
	if _, err := loadConfig([]string{"--network", "bogus"}); err == nil {
		t.Fatalf("expected an error for an unknown network")
	}
}

func TestParseCheckpoints(t *testing.T) {
	blockID := "0000000501020304050607080102030405060708010203040506070801020304"
	checkpoints, err := parseCheckpoints([]string{"5:" + blockID})
	if err != nil {
		t.Fatalf("parseCheckpoints: %v", err)
	}
	if len(checkpoints) != 1 {
		t.Fatalf("len(checkpoints) = %d, want 1", len(checkpoints))
	}
	if checkpoints[0].BlockNum != 5 {
		t.Fatalf("BlockNum = %d, want 5", checkpoints[0].BlockNum)
	}
	if checkpoints[0].ID.BlockNum() != 5 {
		t.Fatalf("ID.BlockNum() = %d, want 5", checkpoints[0].ID.BlockNum())
	}
}

func TestParseCheckpointsRejectsMalformedEntry(t *testing.T) {
	if _, err := parseCheckpoints([]string{"not-a-checkpoint"}); err == nil {
		t.Fatalf("expected an error for a malformed checkpoint entry")
	}
}
