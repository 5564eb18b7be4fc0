// Command graphened runs the block processing core as a standalone process:
// it parses flags, opens the block store, wires a consensus.Consensus, and
// keeps it open until interrupted. It has no networking or RPC surface of
// its own - those are out of scope - it exists to give the core a runnable
// entry point the way kaspad's cmd/kaspad gives its own consensus package
// one.
package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"

	"github.com/discretemind/graphene-core/domain/consensus/model"
	"github.com/discretemind/graphene-core/domain/consensus/model/externalapi"
	"github.com/discretemind/graphene-core/domain/dagconfig"
	"github.com/discretemind/graphene-core/infrastructure/logger"
)

const (
	defaultDataDirname = "data"
	defaultLogDirname  = "logs"
	defaultLogFilename = "graphened.log"
	defaultLogLevel    = "info"
	defaultNetwork     = "mainnet"
)

// Flags holds every command-line option graphened accepts,
// covering only what this component is scoped to configure: where it
// stores its data and logs, which network's base parameters to start from,
// the chain-parameter overrides spec.md leaves tunable, and the checkpoint
// set. Struct-tag-driven parsing mirrors
// kaspanet-kaspad/config/config.go's Flags.
type Flags struct {
	ShowVersion bool   `short:"V" long:"version" description:"Display version information and exit"`
	DataDir     string `short:"b" long:"datadir" description:"Directory to store data"`
	LogDir      string `long:"logdir" description:"Directory to log output"`
	DebugLevel  string `short:"d" long:"debuglevel" description:"Logging level {trace, debug, info, warn, error, critical} for the log file; levels below info reach graphened's own messages only"`
	Network     string `long:"network" description:"Base network parameters to start from {mainnet, simnet}"`

	MaxBlockSize           int    `long:"maxblocksize" description:"Override the network's maximum packed block size in bytes"`
	MaxAuthorityDepth      uint32 `long:"maxauthoritydepth" description:"Override the network's maximum authority graph walk depth"`
	MaxTimeUntilExpiration string `long:"maxtimeuntilexpiration" description:"Override the network's maximum transaction expiration horizon, e.g. 24h"`
	UndoHistorySize        int    `long:"undohistorysize" description:"Override the network's undo stack retention size"`
	MaintenanceInterval    string `long:"maintenanceinterval" description:"Override the network's maintenance tick interval, e.g. 24h"`

	Checkpoints []string `long:"addcheckpoint" description:"Add a checkpoint of the form height:blockid, may be given multiple times"`
}

// config is the parsed, validated form of Flags: DataDir/LogDir resolved to
// absolute paths, and the network overrides folded into a concrete
// dagconfig.Params ready to hand to the consensus factory.
type config struct {
	Flags

	Params      dagconfig.Params
	Checkpoints []model.Checkpoint
}

// loadConfig parses os.Args (or args, when non-nil, for testing) against
// Flags, applies defaults, and resolves the result into a config. It mirrors
// the shape of kaspanet-kaspad/config/config.go's loadConfig, without the
// pre-parse-for-config-file-path pass, since graphened doesn't support a
// config file.
func loadConfig(args []string) (*config, error) {
	preCfg := Flags{
		Network:    defaultNetwork,
		DebugLevel: defaultLogLevel,
	}
	parser := flags.NewParser(&preCfg, flags.HelpFlag)
	remaining, err := parser.ParseArgs(args)
	if err != nil {
		return nil, err
	}
	if len(remaining) > 0 {
		return nil, errors.Errorf("unexpected arguments: %v", remaining)
	}

	if preCfg.ShowVersion {
		fmt.Println("graphened")
		os.Exit(0)
	}

	if preCfg.DataDir == "" {
		preCfg.DataDir = defaultDataDirname
	}
	if preCfg.LogDir == "" {
		preCfg.LogDir = defaultLogDirname
	}
	preCfg.DataDir = cleanAndExpandPath(preCfg.DataDir)
	preCfg.LogDir = cleanAndExpandPath(preCfg.LogDir)

	if _, ok := logger.LevelFromString(preCfg.DebugLevel); !ok {
		return nil, errors.Errorf("the specified debug level %s is invalid", preCfg.DebugLevel)
	}

	params, err := resolveParams(preCfg)
	if err != nil {
		return nil, err
	}

	checkpoints, err := parseCheckpoints(preCfg.Checkpoints)
	if err != nil {
		return nil, err
	}

	return &config{Flags: preCfg, Params: params, Checkpoints: checkpoints}, nil
}

// resolveParams selects a base dagconfig.Params by network name and applies
// any override flags the caller set on top of it.
func resolveParams(f Flags) (dagconfig.Params, error) {
	var params dagconfig.Params
	switch strings.ToLower(f.Network) {
	case "", "mainnet":
		params = dagconfig.MainnetParams
	case "simnet":
		params = dagconfig.SimnetParams
	default:
		return dagconfig.Params{}, errors.Errorf("unknown network %q", f.Network)
	}

	if f.MaxBlockSize > 0 {
		params.MaxBlockSize = f.MaxBlockSize
	}
	if f.MaxAuthorityDepth > 0 {
		params.MaxAuthorityDepth = f.MaxAuthorityDepth
	}
	if f.MaxTimeUntilExpiration != "" {
		d, err := time.ParseDuration(f.MaxTimeUntilExpiration)
		if err != nil {
			return dagconfig.Params{}, errors.Wrap(err, "invalid -maxtimeuntilexpiration")
		}
		params.MaxTimeUntilExpiration = d
	}
	if f.UndoHistorySize > 0 {
		params.UndoHistorySize = f.UndoHistorySize
	}
	if f.MaintenanceInterval != "" {
		d, err := time.ParseDuration(f.MaintenanceInterval)
		if err != nil {
			return dagconfig.Params{}, errors.Wrap(err, "invalid -maintenanceinterval")
		}
		params.MaintenanceInterval = d
	}
	return params, nil
}

// parseCheckpoints decodes each "height:blockid" flag value into a
// model.Checkpoint, blockid given as hex (externalapi.BlockID.String's own
// format).
func parseCheckpoints(entries []string) ([]model.Checkpoint, error) {
	checkpoints := make([]model.Checkpoint, 0, len(entries))
	for _, entry := range entries {
		parts := strings.SplitN(entry, ":", 2)
		if len(parts) != 2 {
			return nil, errors.Errorf("checkpoint %q must be of the form height:blockid", entry)
		}
		height, err := strconv.ParseUint(parts[0], 10, 32)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid checkpoint height in %q", entry)
		}
		id, err := hexDecodeBlockID(parts[1])
		if err != nil {
			return nil, errors.Wrapf(err, "invalid checkpoint block id in %q", entry)
		}
		checkpoints = append(checkpoints, model.Checkpoint{BlockNum: uint32(height), ID: id})
	}
	return checkpoints, nil
}

func hexDecodeBlockID(s string) (externalapi.BlockID, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return externalapi.BlockID{}, err
	}
	return externalapi.NewBlockIDFromByteSlice(b)
}

// cleanAndExpandPath expands ~ to the current user's home directory and
// cleans the path, mirroring kaspanet-kaspad/config/config.go's helper of
// the same name.
func cleanAndExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(homeDir, path[1:])
		}
	}
	return filepath.Clean(os.ExpandEnv(path))
}
