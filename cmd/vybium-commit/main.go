// Command vybium-commit prepares circuit input records and binds them with a
// Poseidon data commitment.
//
// # Usage
//
//	vybium-commit prepare -out temp_data.json
//	vybium-commit commit -in temp_data.json -out input.json
//	vybium-commit verify -in input.json
//
// Every subcommand accepts -config with a YAML file; flags override it.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/vybium/vybium-commit/internal/vybium-commit/utils"
	"github.com/vybium/vybium-commit/pkg/vybium-commit"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "commit":
		err = runCommit(os.Args[2:])
	case "prepare":
		err = runPrepare(os.Args[2:])
	case "verify":
		err = runVerify(os.Args[2:])
	case "-h", "-help", "--help", "help":
		usage()
		return
	default:
		usage()
		fatal(fmt.Sprintf("unknown subcommand %q", os.Args[1]))
	}

	if err != nil {
		fatal(err.Error())
	}
}

// commonFlags are shared by the subcommands that load a configuration
type commonFlags struct {
	configPath *string
	logLevel   *string
	indent     *int
}

func registerCommon(fs *flag.FlagSet) commonFlags {
	return commonFlags{
		configPath: fs.String("config", "", "Path to YAML config file"),
		logLevel:   fs.String("log-level", "", "Log level: debug, info, warn, error"),
		indent:     fs.Int("indent", -1, "JSON indent width (0 for compact)"),
	}
}

func (c commonFlags) load() (*vybiumcommit.Config, error) {
	cfg := vybiumcommit.DefaultConfig()
	if *c.configPath != "" {
		loaded, err := vybiumcommit.LoadConfig(*c.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if *c.logLevel != "" {
		cfg.WithLogLevel(*c.logLevel)
	}
	if *c.indent >= 0 {
		cfg.WithIndent(*c.indent)
	}
	return cfg, nil
}

func runCommit(args []string) error {
	fs := flag.NewFlagSet("commit", flag.ExitOnError)
	common := registerCommon(fs)
	in := fs.String("in", "", "Input record path")
	out := fs.String("out", "", "Output record path")
	fs.Parse(args)

	cfg, err := common.load()
	if err != nil {
		return err
	}
	if *in != "" {
		cfg.WithInputPath(*in)
	}
	if *out != "" {
		cfg.WithOutputPath(*out)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}

	result, err := vybiumcommit.RunWithConfig(cfg, logger)
	if err != nil {
		return err
	}
	fmt.Println("Data Commitment:", result.DataCommitment)
	return nil
}

func runPrepare(args []string) error {
	fs := flag.NewFlagSet("prepare", flag.ExitOnError)
	common := registerCommon(fs)
	out := fs.String("out", "", "Path of the input record to write")
	scale := fs.Int64("scale", 0, "Fixed-point scale for y, m and c")
	fs.Parse(args)

	cfg, err := common.load()
	if err != nil {
		return err
	}
	if *out != "" {
		cfg.WithInputPath(*out)
	}
	if *scale > 0 {
		cfg.Prepare.Scale = *scale
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}

	result, err := vybiumcommit.Prepare(cfg, logger)
	if err != nil {
		return err
	}
	fmt.Printf("Best fit found: y = %.4fx + %.4f\n", result.Slope, result.Intercept)
	fmt.Printf("m: %s, c: %s, SSE: %s, threshold: %s\n", result.M, result.C, result.SSE, result.Threshold)
	return nil
}

func runVerify(args []string) error {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	in := fs.String("in", "input.json", "Output record to verify")
	fs.Parse(args)

	result, err := vybiumcommit.Verify(*in)
	if err != nil {
		return err
	}
	fmt.Println("Data Commitment OK:", result.DataCommitment)
	return nil
}

func newLogger(level string) (*slog.Logger, error) {
	lvl, err := utils.ParseLogLevel(level)
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})), nil
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: vybium-commit <commit|prepare|verify> [flags]")
}

func fatal(msg string) {
	fmt.Fprintln(os.Stderr, "vybium-commit: ERROR:", msg)
	os.Exit(1)
}
