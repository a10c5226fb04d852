package query

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	"legal-search/answer"
	"legal-search/bootstrap"
	"legal-search/config"
	"legal-search/logging"
)

func Query(ctx *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := logging.New(os.Stderr, cfg.App.LogLevel, cfg.App.LogFormat)

	store, err := bootstrap.NewStore(cfg.Store)
	if err != nil {
		return err
	}
	orchestrator, closeProviders, err := bootstrap.NewOrchestrator(ctx.Context, cfg, store, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeProviders(); err != nil {
			logger.Warn("failed to close providers", slog.Any("error", err))
		}
	}()

	topK := ctx.Int("top-k")
	if !ctx.IsSet("top-k") {
		topK = cfg.Retrieval.DefaultTopK
	}

	return printAnswer(ctx.Context, orchestrator, answer.Query{Question: ctx.String("question"), TopK: topK}, os.Stdout)
}

type answerer interface {
	Handle(ctx context.Context, q answer.Query) (*answer.Answer, error)
}

func printAnswer(ctx context.Context, a answerer, q answer.Query, w io.Writer) error {
	result, err := a.Handle(ctx, q)
	if err != nil {
		return fmt.Errorf("failed to answer question: %w", err)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", " ")
	return encoder.Encode(result)
}
