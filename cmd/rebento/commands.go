package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/totegamma/rebento"
	"github.com/totegamma/rebento/internal/compiler"
	"github.com/totegamma/rebento/internal/config"
	"github.com/totegamma/rebento/internal/domain"
	"github.com/totegamma/rebento/internal/usecase"
	"github.com/totegamma/rebento/jwt"
)

func runKeygen(args []string) error {
	flagSet := newFlagSet("keygen")
	if ok, err := parse(flagSet, args); !ok || err != nil {
		return err
	}

	signer, err := rebento.GenerateKeySigner()
	if err != nil {
		return err
	}
	fmt.Printf("privatekey: %s\n", signer.PrivateKeyHex())
	fmt.Printf("address:    %s\n", signer.Address())
	fmt.Printf("ethereum:   %s\n", signer.EthereumAddress())
	return nil
}

func runToken(args []string) error {
	flagSet := newFlagSet("token")
	configPath := flagSet.StringP("config", "c", "config.yaml", "path to the config file")
	ttl := flagSet.Duration("ttl", 24*time.Hour, "token lifetime")
	scopes := flagSet.StringSlice("scope", domain.RequiredScopes, "granted wallet scopes")
	if ok, err := parse(flagSet, args); !ok || err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if cfg.NodeInfo.PrivateKey == "" {
		return fmt.Errorf("nodeInfo.privatekey is not configured")
	}

	now := time.Now()
	token, err := jwt.Create(jwt.Claims{
		Issuer:         cfg.NodeInfo.Address,
		Subject:        "rebento",
		Audience:       cfg.NodeInfo.FQDN,
		IssuedAt:       strconv.FormatInt(now.Unix(), 10),
		ExpirationTime: strconv.FormatInt(now.Add(*ttl).Unix(), 10),
		JWTID:          uuid.NewString(),
		Scopes:         *scopes,
	}, cfg.NodeInfo.PrivateKey)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}

func loadDraft(path string) (*rebento.Draft, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	draft := rebento.NewDraft(rebento.Profile{})
	if err := json.Unmarshal(raw, draft); err != nil {
		return nil, errors.Wrap(err, "invalid draft file")
	}
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	return draft, nil
}

func printReport(art compiler.Artifact) {
	for i, a := range art.Attempts {
		fmt.Fprintf(os.Stderr, "attempt %d: quality %.2f, %d bytes\n", i+1, a.Quality, a.SizeBytes)
	}
	status := "within limit"
	if !art.WithinBudget {
		status = "over limit"
	}
	fmt.Fprintf(os.Stderr, "%.1f KB, %s\n", art.SizeKB(), status)
}

func runCompile(args []string) error {
	flagSet := newFlagSet("compile")
	draftPath := flagSet.StringP("draft", "d", "draft.json", "draft file")
	outPath := flagSet.StringP("out", "o", "", "write the page here instead of stdout")
	if ok, err := parse(flagSet, args); !ok || err != nil {
		return err
	}

	draft, err := loadDraft(*draftPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	p := newPipeline(config.Default(), newLogger("warn"), nil)
	art, err := p.compiler.Compile(ctx, draft.Profile, draft.Blocks, draft.Theme)
	if err != nil {
		return err
	}
	printReport(art)

	if *outPath == "" {
		_, err = os.Stdout.WriteString(art.Document)
		return err
	}
	return os.WriteFile(*outPath, []byte(art.Document), 0o644)
}

func runPublish(args []string) error {
	flagSet := newFlagSet("publish")
	configPath := flagSet.StringP("config", "c", "config.yaml", "path to the config file")
	draftPath := flagSet.StringP("draft", "d", "draft.json", "draft file")
	username := flagSet.StringP("username", "u", "", "username to publish under (default nodeInfo.username)")
	if ok, err := parse(flagSet, args); !ok || err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *username == "" {
		*username = cfg.NodeInfo.Username
	}
	if rebento.NormalizeUsername(*username) == "" {
		return fmt.Errorf("a username is required")
	}

	var signer rebento.Signer
	if cfg.NodeInfo.PrivateKey != "" {
		keySigner, err := rebento.NewKeySigner(cfg.NodeInfo.PrivateKey)
		if err != nil {
			return err
		}
		signer = keySigner
	}

	draft, err := loadDraft(*draftPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger := newLogger(cfg.Server.LogLevel)
	p := newPipeline(cfg, logger, nil)
	art, err := p.compiler.Compile(ctx, draft.Profile, draft.Blocks, draft.Theme)
	if err != nil {
		return err
	}
	printReport(art)

	publish := usecase.NewPublishUsecase(p.storage, p.cache, nil, nil, nil, logger)
	result, err := publish.Publish(ctx, usecase.PublishInput{Document: art.Document, Username: *username}, signer)
	if err != nil {
		return err
	}
	rebento.JsonPrint("published", result)
	return nil
}

func runResolve(args []string) error {
	flagSet := newFlagSet("resolve")
	configPath := flagSet.StringP("config", "c", "", "path to the config file (defaults apply when empty)")
	raw := flagSet.Bool("raw", false, "print the page instead of its metadata")
	versions := flagSet.Bool("versions", false, "list every indexed version")
	if ok, err := parse(flagSet, args); !ok || err != nil {
		return err
	}
	if flagSet.NArg() != 1 {
		return fmt.Errorf("usage: rebento resolve [flags] <username>")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	p := newPipeline(cfg, newLogger(cfg.Server.LogLevel), nil)
	if *versions {
		rebento.JsonPrint("versions", p.resolve.Candidates(ctx, rebento.NormalizeUsername(flagSet.Arg(0))))
		return nil
	}

	resolved, err := p.resolve.Resolve(ctx, usecase.ResolveInput{Username: flagSet.Arg(0)})
	if err != nil {
		return err
	}
	if *raw {
		_, err = os.Stdout.WriteString(resolved.Document)
		return err
	}
	rebento.JsonPrint("resolved", resolved)
	return nil
}
