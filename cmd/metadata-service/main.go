// Command metadata-service runs the HTTP API and the queue worker behind
// a single cobra root command: logging, then document store, indexes,
// topics, producer, and consumer, torn down in reverse on signal.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/akshayg147/metadata-inventory-service/internal/api"
	"github.com/akshayg147/metadata-inventory-service/internal/fetcher"
	"github.com/akshayg147/metadata-inventory-service/internal/platform/config"
	"github.com/akshayg147/metadata-inventory-service/internal/platform/ginserver"
	"github.com/akshayg147/metadata-inventory-service/internal/platform/logger"
	"github.com/akshayg147/metadata-inventory-service/internal/queue"
	"github.com/akshayg147/metadata-inventory-service/internal/service"
	"github.com/akshayg147/metadata-inventory-service/internal/store"
	"github.com/akshayg147/metadata-inventory-service/internal/worker"
)

const serviceName = "metadata-service"

var envFile string

var rootCmd = &cobra.Command{
	Use:   "metadata-service",
	Short: "Runs the URL metadata collection service",
	RunE:  runServe,
}

func main() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "path to an optional YAML config file")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadFromEnv(envFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.Must(logger.Config{Level: cfg.LogLevel})
	defer func() { _ = log.Sync() }()

	ctx := cmd.Context()

	log.Info("connecting to document store", logger.String("db_name", cfg.Mongo.DBName))
	st, err := store.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.DBName, log)
	if err != nil {
		return fmt.Errorf("connect to store: %w", err)
	}

	if err := st.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}

	queueCfg := queue.Config{
		BootstrapServers: splitServers(cfg.Kafka.BootstrapServers),
		Topic:            cfg.Kafka.Topic,
		DLQTopic:         cfg.Kafka.DLQTopic,
		ConsumerGroup:    cfg.Kafka.ConsumerGroup,
		MaxRetries:       cfg.Kafka.MaxRetries,
	}.WithDefaults()

	log.Info("ensuring topics", logger.String("topic", queueCfg.Topic), logger.String("dlq_topic", queueCfg.DLQTopic))
	if err := queue.EnsureTopics(ctx, queueCfg); err != nil {
		return fmt.Errorf("ensure topics: %w", err)
	}

	producer := queue.NewProducer(queueCfg, log)
	consumer := queue.NewConsumer(queueCfg, log)

	f := fetcher.New(fetcher.Config{OverallTimeout: cfg.API.HTTPTimeout})
	svc := service.New(st, f, producer, log)

	workerCtx, stopWorker := context.WithCancel(ctx)
	w := worker.New(consumer, producer, st, f, log, queueCfg.MaxRetries)
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		log.Info("worker loop starting")
		w.Run(workerCtx)
		log.Info("worker loop stopped")
	}()

	handler := api.NewHandler(svc, log)
	httpSrv := ginserver.New(&ginserver.Config{
		Host:        cfg.API.Host,
		Port:        cfg.API.Port,
		ServiceName: serviceName,
	}, log, func(router *gin.Engine) {
		ginserver.RegisterHealthRoute(router, serviceName)
		ginserver.RegisterMetricsRoute(router)
		handler.Register(router.Group("/api/v1"))
	})

	errCh := httpSrv.StartAsync()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("http server error", logger.Error(err))
		}
	case <-ctx.Done():
		log.Info("shutdown signal received")
	}

	return shutdown(httpSrv, consumer, producer, st, stopWorker, workerDone, log)
}

// shutdown tears the service down in the reverse of its startup order:
// stop accepting new consumer work, drain and close the producer, then
// close the store. The HTTP server is stopped first since it's the
// outermost layer a client talks to.
func shutdown(httpSrv *ginserver.Server, consumer *queue.Consumer, producer *queue.Producer, st store.Store,
	stopWorker context.CancelFunc, workerDone <-chan struct{}, log logger.Logger) error {
	shutdownCtx := context.Background()

	log.Info("stopping http server")
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("http server shutdown failed", logger.Error(err))
	}

	log.Info("stopping worker loop")
	stopWorker()
	<-workerDone

	if err := consumer.Close(); err != nil {
		log.Error("close consumer failed", logger.Error(err))
	}

	log.Info("flushing producer")
	if err := producer.Close(); err != nil {
		log.Error("close producer failed", logger.Error(err))
	}

	log.Info("closing store")
	if err := st.Close(shutdownCtx); err != nil {
		log.Error("close store failed", logger.Error(err))
		return err
	}

	log.Info("shutdown complete")
	return nil
}

func splitServers(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
