package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"

	"github.com/totegamma/rebento/client"
	"github.com/totegamma/rebento/internal/compiler"
	"github.com/totegamma/rebento/internal/config"
	"github.com/totegamma/rebento/internal/imagecodec"
	"github.com/totegamma/rebento/internal/infra/fastcache"
	"github.com/totegamma/rebento/internal/infra/gateway"
	"github.com/totegamma/rebento/internal/usecase"
)

const version = "0.1.0"

type command struct {
	name    string
	summary string
	run     func(args []string) error
}

var commands = []command{
	{"serve", "run the REST server", runServe},
	{"keygen", "generate an instance identity", runKeygen},
	{"token", "issue a bearer token for the instance identity", runToken},
	{"compile", "compile a draft file into a page", runCompile},
	{"publish", "compile and publish a draft file", runPublish},
	{"resolve", "resolve a username to its latest page", runResolve},
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		printUsage()
		return nil
	}
	if args[0] == "--version" {
		fmt.Println("rebento", version)
		return nil
	}
	for _, cmd := range commands {
		if cmd.name == args[0] {
			return cmd.run(args[1:])
		}
	}
	printUsage()
	return fmt.Errorf("unknown command %q", args[0])
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "usage: rebento <command> [flags]\n\ncommands:\n")
	for _, cmd := range commands {
		fmt.Fprintf(os.Stderr, "  %-8s %s\n", cmd.name, cmd.summary)
	}
}

func newFlagSet(name string) *pflag.FlagSet {
	flagSet := pflag.NewFlagSet(name, pflag.ContinueOnError)
	flagSet.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage of %s:\n", name)
		flagSet.PrintDefaults()
	}
	return flagSet
}

// parse handles --help uniformly for every subcommand. It reports false when
// the command should not run.
func parse(flagSet *pflag.FlagSet, args []string) (bool, error) {
	flagSet.BoolP("help", "h", false, "show help")
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return false, nil
		}
		return false, err
	}
	if help, _ := flagSet.GetBool("help"); help {
		flagSet.Usage()
		return false, nil
	}
	return true, nil
}

func newLogger(level string) *slog.Logger {
	var lv slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lv = slog.LevelDebug
	case "warn":
		lv = slog.LevelWarn
	case "error":
		lv = slog.LevelError
	default:
		lv = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lv}))
}

// pipeline holds the outbound side shared by the server and the one-shot
// commands.
type pipeline struct {
	compiler *compiler.Compiler
	storage  *gateway.StorageGateway
	cache    *fastcache.Client
	resolve  *usecase.ResolveUsecase
}

func newCodec() *imagecodec.Codec {
	return imagecodec.New(imagecodec.WithPreferred(imagecodec.WebP))
}

func newPipeline(cfg config.Config, logger *slog.Logger, mc *memcache.Client) *pipeline {
	cl := client.New(
		client.WithTimeout(cfg.Storage.Timeout),
		client.WithUserAgent("rebento/"+version),
		client.WithRateLimit(cfg.Server.RateLimitPerS, cfg.Server.RateLimitBurst),
		client.WithLogger(logger),
	)

	storage := gateway.NewStorageGateway(
		cl,
		cfg.Storage.Gateways,
		cfg.Storage.IngestURL,
		gateway.WithTimeout(cfg.Storage.Timeout),
		gateway.WithQueryLimit(cfg.Storage.QueryLimit),
		gateway.WithBodyCache(gateway.NewBodyCache(mc)),
		gateway.WithLogger(logger),
	)

	cache := fastcache.New(
		cl,
		cfg.Cache.BaseURL,
		cfg.Cache.ProcessID,
		fastcache.WithTimeout(cfg.Cache.Timeout),
		fastcache.WithLogger(logger),
	)

	return &pipeline{
		compiler: compiler.New(newCodec(), compiler.WithLogger(logger)),
		storage:  storage,
		cache:    cache,
		resolve:  usecase.NewResolveUsecase(storage, cache, cfg.Storage.Timeout, logger),
	}
}
