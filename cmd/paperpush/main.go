package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"codeberg.org/snonux/paperpush/internal/archive"
	"codeberg.org/snonux/paperpush/internal/cache"
	"codeberg.org/snonux/paperpush/internal/cli"
	"codeberg.org/snonux/paperpush/internal/logger"
	"codeberg.org/snonux/paperpush/internal/model"
	"codeberg.org/snonux/paperpush/internal/models"
	"codeberg.org/snonux/paperpush/internal/notify"
	"codeberg.org/snonux/paperpush/internal/processor"
	"codeberg.org/snonux/paperpush/internal/relevance"
	"codeberg.org/snonux/paperpush/internal/search"
	"codeberg.org/snonux/paperpush/internal/translation"
)

func main() {
	// Create flags instance
	flags := cli.NewFlags()

	// Create root command
	rootCmd := cli.CreateRootCommand(flags)

	// Set up command initialization
	cobra.OnInitialize(func() {
		cli.InitConfig(flags.CfgFile)
	})

	// Set the run function
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runCommand(cmd.Context(), flags)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Execute command
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func runCommand(ctx context.Context, flags *cli.Flags) error {
	cli.Resolve(flags)

	log := logger.New(flags.LogLevel)
	defer log.Sync()

	// Handle --archive flag
	if flags.Archive {
		path, err := archive.ArchiveCache(flags.CacheFile, log)
		if err != nil {
			return fmt.Errorf("failed to archive cache: %w", err)
		}
		fmt.Printf("Cache archived to: %s\n", path)
		return nil
	}

	apiKey := cli.GetAPIKey(flags.Backend)

	// Handle --list-models flag
	if flags.ListModels {
		lister := models.NewLister(flags.ModelConfig(apiKey), os.Stdout)
		return lister.ListAvailableModels(ctx)
	}

	topics, err := flags.TopicList()
	if err != nil {
		return err
	}
	if len(topics) == 0 {
		return fmt.Errorf("no search topics configured")
	}

	proc := newProcessor(ctx, flags, topics, apiKey, log)
	outcome, err := proc.Run(ctx)
	if err != nil {
		log.Error("daily push failed", zap.Error(err))
		return err
	}
	log.Info("daily push done", zap.Stringer("outcome", outcome))
	return nil
}

// newProcessor wires the job components. Without a usable model backend the
// job still runs: every paper counts as relevant and is cached untranslated.
func newProcessor(ctx context.Context, flags *cli.Flags, topics []string, apiKey string, log *zap.Logger) *processor.Processor {
	var (
		assessor    relevance.Assessor
		translator  translation.Translator
		backendName = flags.Backend
	)

	backend, err := model.NewBackend(ctx, flags.ModelConfig(apiKey))
	if err != nil {
		log.Warn("model backend unavailable, papers will be neither filtered nor translated",
			zap.String("backend", flags.Backend), zap.Error(err))
	} else {
		client := model.NewClient(backend, flags.RetryPolicy(), log)
		assessor = client
		translator = client
		backendName = client.Name()
	}

	var sink notify.Sink
	if flags.Webhook != "" {
		sink = notify.NewFeishuSink(flags.Webhook, flags.BannerImage, log)
	} else {
		sink = notify.NewNopSink(log)
	}

	dispatcher := notify.NewDispatcher(sink, notify.DispatcherConfig{
		Label:       flags.Label,
		BackendName: backendName,
		Interval:    flags.PushInterval,
	}, log)

	return processor.NewProcessor(
		processor.Config{
			Topics: topics,
			Limit:  flags.Limit,
			Label:  flags.Label,
		},
		search.NewArxivSearcher(log),
		relevance.NewFilter(assessor, log),
		translation.NewPipeline(cache.NewStore(flags.CacheFile, log), translator, log),
		dispatcher,
		log,
	)
}
