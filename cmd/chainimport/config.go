package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/blockforge/forkd/infrastructure/config"
	"github.com/blockforge/forkd/version"
	"github.com/btcsuite/btcutil"
	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
)

const (
	appName               = "chainimport"
	defaultLogFilename    = "chainimport.log"
	defaultErrLogFilename = "chainimport_err.log"
	defaultLogLevel       = "info"
	defaultProgress       = 10
)

var (
	defaultHomeDir = btcutil.AppDataDir("forkd", false)
	defaultDataDir = filepath.Join(defaultHomeDir, "data")
	defaultLogDir  = filepath.Join(defaultHomeDir, "logs")
)

type configFlags struct {
	DataDir       string `short:"b" long:"datadir" description:"Directory to store the chain in"`
	InMemory      bool   `long:"inmemory" description:"Keep the chain in memory instead of on disk"`
	Genesis       string `long:"genesis" description:"JSON file describing a custom genesis; overrides the network's genesis"`
	InFile        string `short:"i" long:"infile" description:"File with one hex-encoded block per line"`
	ExpectedState string `long:"expected-state" description:"JSON file with the accounts expected in the final head state"`
	LogLevel      string `short:"d" long:"loglevel" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical} -- You may also specify <subsystem>=<level>,<subsystem2>=<level>,... to set the log level for individual subsystems"`
	LogDir        string `long:"logdir" description:"Directory to log output"`
	SkipPoW       bool   `long:"skip-pow" description:"Do not check the proof of work of imported blocks"`
	Reset         bool   `long:"reset" description:"Import into a fresh chain that replaces the stored one once the import succeeds"`
	Progress      int    `short:"p" long:"progress" description:"Show a progress message each time this number of seconds have passed -- Use 0 to disable progress announcements"`
	Profile       string `long:"profile" description:"Enable HTTP profiling on given port -- NOTE port must be between 1024 and 65535"`
	ShowVersion   bool   `short:"V" long:"version" description:"Display version information and exit"`
	config.NetworkFlags
}

// fileExists reports whether the named file or directory exists.
func fileExists(name string) bool {
	if _, err := os.Stat(name); err != nil {
		if os.IsNotExist(err) {
			return false
		}
	}
	return true
}

func parseConfig(args []string) (*configFlags, error) {
	cfg := &configFlags{
		DataDir:  defaultDataDir,
		LogDir:   defaultLogDir,
		LogLevel: defaultLogLevel,
		Progress: defaultProgress,
	}
	parser := flags.NewParser(cfg, flags.Default)
	_, err := parser.ParseArgs(args)
	if err != nil {
		var flagsErr *flags.Error
		if ok := errors.As(err, &flagsErr); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		return nil, err
	}

	if cfg.ShowVersion {
		fmt.Println(appName, "version", version.Version())
		os.Exit(0)
	}

	if cfg.InFile == "" {
		return nil, errors.New("the block file must be specified with --infile")
	}

	err = cfg.ResolveNetwork(parser)
	if err != nil {
		return nil, err
	}

	if cfg.Profile != "" {
		profilePort, err := strconv.Atoi(cfg.Profile)
		if err != nil || profilePort < 1024 || profilePort > 65535 {
			return nil, errors.New("the profile port must be between 1024 and 65535")
		}
	}

	if cfg.InMemory && cfg.Reset {
		return nil, errors.New("--reset has no meaning with --inmemory")
	}

	for _, file := range []string{cfg.InFile, cfg.Genesis, cfg.ExpectedState} {
		if file != "" && !fileExists(file) {
			err := errors.Errorf("the specified file [%s] does not exist", file)
			fmt.Fprintln(os.Stderr, err)
			parser.WriteHelp(os.Stderr)
			return nil, err
		}
	}

	// All data is specific to a network, so namespace the data directory
	// per network.
	cfg.DataDir = filepath.Join(cfg.DataDir, cfg.NetParams().Name)
	cfg.LogDir = filepath.Join(cfg.LogDir, cfg.NetParams().Name)

	return cfg, nil
}
