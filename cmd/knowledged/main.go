package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/shevchenkoxx/lore-mcp/internal/log"
	"github.com/shevchenkoxx/lore-mcp/internal/policy"
	"github.com/shevchenkoxx/lore-mcp/internal/store"
	"github.com/shevchenkoxx/lore-mcp/pkg/docstore"
	"github.com/shevchenkoxx/lore-mcp/pkg/embedclient"
	"github.com/shevchenkoxx/lore-mcp/pkg/engine"
	"github.com/shevchenkoxx/lore-mcp/pkg/vecindex"
)

var (
	Version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "knowledged",
	Short:   "lore-mcp knowledge engine",
	Version: Version,
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format")
	rootCmd.PersistentFlags().String("db", "knowledge.db", "SQLite database path")
	rootCmd.PersistentFlags().String("config", "", "Policy config file (policy.yaml)")
	rootCmd.PersistentFlags().String("embed-url", "", "Base URL of an OpenAI-compatible embeddings endpoint (enables semantic retrieval)")
	rootCmd.PersistentFlags().String("embed-api-key", "", "API key for the embeddings endpoint")
	rootCmd.PersistentFlags().String("embed-model", "", "Model name to request from the embeddings endpoint")
	rootCmd.PersistentFlags().Int("embed-dims", 384, "Embedding vector dimensionality")

	_ = viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log-json", rootCmd.PersistentFlags().Lookup("log-json"))
	_ = viper.BindPFlag("db", rootCmd.PersistentFlags().Lookup("db"))
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("embed-url", rootCmd.PersistentFlags().Lookup("embed-url"))
	_ = viper.BindPFlag("embed-api-key", rootCmd.PersistentFlags().Lookup("embed-api-key"))
	_ = viper.BindPFlag("embed-model", rootCmd.PersistentFlags().Lookup("embed-model"))
	_ = viper.BindPFlag("embed-dims", rootCmd.PersistentFlags().Lookup("embed-dims"))
	viper.SetEnvPrefix("KNOWLEDGED")
	viper.AutomaticEnv()

	cobra.OnInitialize(initLogging, initPolicyConfig)

	rootCmd.AddCommand(serveCmd, undoCmd, historyCmd)
}

func initLogging() {
	level := log.Level(viper.GetString("log-level"))
	log.Init(log.Config{Level: level, JSONOutput: viper.GetBool("log-json")})
}

// initPolicyConfig loads an optional policy.yaml via viper and, when present,
// hot-reloads it on change through fsnotify so the process-wide policy
// singleton tracks an operator's edits without a restart.
func initPolicyConfig() {
	path := viper.GetString("config")
	if path == "" {
		return
	}
	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		log.Logger.Warn().Err(err).Str("path", path).Msg("failed to read policy config; using defaults")
		return
	}
	applyPolicyFromViper()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Logger.Warn().Err(err).Msg("fsnotify unavailable; policy config hot-reload disabled")
		return
	}
	if err := watcher.Add(path); err != nil {
		log.Logger.Warn().Err(err).Msg("failed to watch policy config path")
		return
	}
	go func() {
		for event := range watcher.Events {
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				if err := viper.ReadInConfig(); err != nil {
					log.Logger.Warn().Err(err).Msg("failed to reload policy config")
					continue
				}
				applyPolicyFromViper()
				log.Logger.Info().Str("path", path).Msg("reloaded policy config")
			}
		}
	}()
}

func applyPolicyFromViper() {
	required := map[string][]string{}
	if err := viper.UnmarshalKey("required_fields", &required); err != nil {
		log.Logger.Warn().Err(err).Msg("invalid required_fields in policy config")
	}
	policy.Set(policy.Config{
		RequiredFields: required,
		MinConfidence:  viper.GetFloat64("min_confidence"),
	})
}

func openEngine() (*engine.Engine, func(), error) {
	st, err := store.Open(viper.GetString("db"))
	if err != nil {
		return nil, func() {}, err
	}

	opts := []engine.Option{engine.WithDurableCache(docstore.New())}
	if baseURL := viper.GetString("embed-url"); baseURL != "" {
		opts = append(opts, engine.WithEmbedder(embedclient.New(embedclient.Config{
			BaseURL: baseURL,
			APIKey:  viper.GetString("embed-api-key"),
			Model:   viper.GetString("embed-model"),
		})))
		opts = append(opts, engine.WithVectorIndex(vecindex.Open(st.DB(), viper.GetInt("embed-dims"))))
	}

	eng := engine.New(st, opts...)
	return eng, func() { _ = st.Close() }, nil
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Open the knowledge engine and wait until interrupted; pending ingestion tasks are not processed",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, closeFn, err := openEngine()
		if err != nil {
			return err
		}
		defer closeFn()

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		log.Logger.Info().Str("db", viper.GetString("db")).Bool("fts", eng.Store().FTSEnabled()).Msg("knowledged serve: ready")
		<-ctx.Done()
		log.Logger.Info().Msg("knowledged serve: shutting down")
		return nil
	},
}

var undoCmd = &cobra.Command{
	Use:   "undo [count]",
	Short: "Revert the most recent committed transactions",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, closeFn, err := openEngine()
		if err != nil {
			return err
		}
		defer closeFn()

		count := 1
		if len(args) == 1 {
			if _, err := fmt.Sscanf(args[0], "%d", &count); err != nil {
				return fmt.Errorf("invalid count %q: %w", args[0], err)
			}
		}
		res, err := eng.Undo(count)
		if err != nil {
			return err
		}
		fmt.Println(res.Text)
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the most recent transaction log entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, closeFn, err := openEngine()
		if err != nil {
			return err
		}
		defer closeFn()

		res, err := eng.History(20, "")
		if err != nil {
			return err
		}
		fmt.Println(res.Text)
		return nil
	},
}
