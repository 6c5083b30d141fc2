// Package apiserver assembles the VeAIOps API server: storage, channel
// adapters, LLM agents, the knowledge base, and the HTTP surface.
package apiserver

import (
	"context"
	"fmt"
	"time"

	"github.com/kart-io/logger"

	"github.com/veaiops/veaiops/internal/agent"
	"github.com/veaiops/veaiops/internal/agent/llm"
	"github.com/veaiops/veaiops/internal/apiserver/biz"
	"github.com/veaiops/veaiops/internal/apiserver/handler"
	"github.com/veaiops/veaiops/internal/apiserver/store"
	"github.com/veaiops/veaiops/internal/channel"
	"github.com/veaiops/veaiops/internal/channel/lark"
	"github.com/veaiops/veaiops/internal/channel/webhook"
	"github.com/veaiops/veaiops/internal/knowledge"
	"github.com/veaiops/veaiops/pkg/component/milvus"
	"github.com/veaiops/veaiops/pkg/component/mongodb"
	"github.com/veaiops/veaiops/pkg/component/ollama"
	"github.com/veaiops/veaiops/pkg/component/redis"
	"github.com/veaiops/veaiops/pkg/middleware"
	"github.com/veaiops/veaiops/pkg/registry"
	"github.com/veaiops/veaiops/pkg/server"
)

const serviceName = "veaiops-apiserver"

const bootTimeout = 30 * time.Second

// Run builds the server from options and blocks until shutdown.
func Run(opts *Options) error {
	if err := opts.Log.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), bootTimeout)
	defer cancel()

	mongo, err := mongodb.NewWithContext(ctx, opts.MongoDB)
	if err != nil {
		return fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	factory := store.NewMongoFactory(mongo)
	defer func() {
		if err := factory.Close(); err != nil {
			logger.Warnw("Failed to close store", "error", err)
		}
	}()

	checkers := map[string]middleware.HealthChecker{
		"mongodb": healthChecker(mongo.Health),
	}

	var cache *redis.Client
	if opts.RedisEnabled {
		cache, err = redis.New(ctx, opts.Redis)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer cache.Close()
		checkers["redis"] = healthChecker(cache.Health)
	}

	botService := biz.NewBotService(factory)

	registryCh := channel.NewRegistry()
	registryCh.Register(lark.New(botService))
	registryCh.Register(webhook.New())

	eventService, err := biz.NewEventService(factory, registryCh, opts.DispatchPoolSize)
	if err != nil {
		return fmt.Errorf("failed to build event service: %w", err)
	}
	defer eventService.Close()

	var kb *knowledge.Service
	if opts.MilvusEnabled {
		vectors, err := milvus.New(ctx, opts.Milvus)
		if err != nil {
			return fmt.Errorf("failed to connect to milvus: %w", err)
		}
		defer func() {
			closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer closeCancel()
			if err := vectors.Close(closeCtx); err != nil {
				logger.Warnw("Failed to close milvus client", "error", err)
			}
		}()
		checkers["milvus"] = healthChecker(vectors.Health)

		embedder, err := buildEmbedder(ctx, opts)
		if err != nil {
			return err
		}
		kb, err = knowledge.NewService(ctx, opts.Knowledge, vectors, embedder)
		if err != nil {
			return fmt.Errorf("failed to build knowledge base: %w", err)
		}
	}

	var (
		interestAgent biz.InterestEvaluator
		answerAgent   biz.Answerer
		reviewAgent   biz.Reviewer
	)
	if opts.LLMEnabled {
		model, err := llm.NewClient(ctx, opts.LLM)
		if err != nil {
			return fmt.Errorf("failed to build llm client: %w", err)
		}
		if len(opts.InterestRules) > 0 {
			interestAgent = agent.NewInterestAgent(model, opts.InterestRules)
		}
		if kb != nil {
			answerAgent = agent.NewAnswerAgent(model, kb, opts.Knowledge.TopK)
		}
		reviewAgent = agent.NewReviewAgent(model)
	}

	var kbWriter biz.KnowledgeWriter
	if kb != nil {
		kbWriter = kb
	}

	subscribeService := biz.NewSubscribeService(factory)
	strategyService := biz.NewStrategyService(factory)
	datasourceService := biz.NewDatasourceService(factory)
	taskService := biz.NewTaskService(factory, eventService)
	qapairService := biz.NewQAPairService(factory, reviewAgent, kbWriter)
	messageService := biz.NewMessageService(factory, eventService, interestAgent, answerAgent, cache)

	srv := server.New(opts.HTTP)
	middleware.RegisterHealth(srv.Engine(), checkers)
	installRoutes(srv.Engine(), &handlers{
		events:      handler.NewEventHandler(eventService),
		subscribes:  handler.NewSubscribeHandler(subscribeService),
		strategies:  handler.NewStrategyHandler(strategyService),
		bots:        handler.NewBotHandler(botService),
		datasources: handler.NewDatasourceHandler(datasourceService),
		tasks:       handler.NewTaskHandler(taskService),
		qapairs:     handler.NewQAPairHandler(qapairService),
		knowledge:   handler.NewKnowledgeHandler(kb),
		messages:    handler.NewMessageHandler(messageService),
	})

	srv.AddRunnable(newTaskSweeper(taskService, opts.SweepInterval))
	if opts.Registry.Enabled {
		srv.AddRunnable(registry.NewRegistrar(opts.Registry, serviceName, opts.HTTP.Addr))
	}

	return srv.Run()
}

// buildEmbedder picks the embedding backend for the knowledge base.
func buildEmbedder(ctx context.Context, opts *Options) (knowledge.Embedder, error) {
	switch opts.Knowledge.EmbedderBackend {
	case knowledge.BackendGemini:
		embedder, err := llm.NewEmbedder(ctx, opts.LLM.APIKey, "")
		if err != nil {
			return nil, fmt.Errorf("failed to build gemini embedder: %w", err)
		}
		return embedder, nil
	default:
		return ollama.New(opts.Ollama), nil
	}
}

// healthChecker adapts a context-taking health probe to the middleware
// checker form.
func healthChecker(probe func(ctx context.Context) error) middleware.HealthChecker {
	return func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		return probe(ctx)
	}
}
