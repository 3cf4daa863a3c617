// Package bootstrap builds a session manager and its backing services from
// the loaded configuration. Both binaries share it.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"wallet-session/internal/provider"
	"wallet-session/internal/service/mq"
	"wallet-session/internal/session"
	"wallet-session/pkg/cache"
	"wallet-session/pkg/config"
	"wallet-session/pkg/database"
	"wallet-session/pkg/logger"
)

const counterPrefix = "session:"

// Runtime 持有 Manager 以及需要在退出时关闭的连接
type Runtime struct {
	Manager *session.Manager
	Redis   *redis.Client

	closers []func() error
}

// Close releases every connection opened by New, last opened first.
func (r *Runtime) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil {
			logger.Warn("close failed", zap.Error(err))
		}
	}
}

// New wires provider, counter storage and the event producer into a Manager.
func New(ctx context.Context, cfg config.Config, notifier session.Notifier) (*Runtime, error) {
	rt := &Runtime{}

	// 1. 合约地址
	if !common.IsHexAddress(cfg.Wallet.ContractAddress) {
		return nil, fmt.Errorf("wallet.contract_address %q is not a hex address", cfg.Wallet.ContractAddress)
	}

	// 2. 连接 Redis (存储或消息队列需要时)
	if cfg.Storage.Driver == "redis" || cfg.Storage.Driver == "multilevel" || cfg.MQ.Type == "redis" {
		rdb, err := database.ConnectRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		rt.Redis = rdb
		rt.closers = append(rt.closers, rdb.Close)
	}

	// 3. 计数存储
	counter, err := rt.counterStore(cfg)
	if err != nil {
		rt.Close()
		return nil, err
	}

	// 4. 消息队列
	producer, err := rt.producer(cfg)
	if err != nil {
		rt.Close()
		return nil, err
	}

	// 5. 钱包 Provider; rpc_url 为空表示没有钱包
	opts := session.Options{
		ContractAddress: common.HexToAddress(cfg.Wallet.ContractAddress),
		GasLimit:        cfg.Wallet.GasLimit,
		PollInterval:    cfg.Wallet.ReceiptPollInterval,
		Counter:         counter,
		Notifier:        notifier,
		Producer:        producer,
		Topic:           cfg.MQ.Topic,
		Log:             logger.Named("session"),
	}
	client, err := provider.Dial(ctx, cfg.Wallet.RpcUrl)
	if err != nil {
		rt.Close()
		return nil, err
	}
	if client != nil {
		opts.Provider = client
		rt.closers = append(rt.closers, func() error { client.Close(); return nil })
		logger.Info("wallet provider connected", zap.String("rpc_url", cfg.Wallet.RpcUrl))
	} else {
		logger.Warn("wallet.rpc_url is empty, running without a wallet provider")
	}

	rt.Manager = session.NewManager(opts)
	return rt, nil
}

func (rt *Runtime) counterStore(cfg config.Config) (cache.Cache, error) {
	switch cfg.Storage.Driver {
	case "", "memory":
		return cache.NewMemoryCache(0, time.Hour), nil
	case "redis":
		return cache.NewRedisCache(rt.Redis, counterPrefix), nil
	case "postgres":
		dsn := database.PostgresDSN(cfg.DB.Host, cfg.DB.Port, cfg.DB.User, cfg.DB.Password, cfg.DB.Name)
		db, err := database.ConnectPostgres(dsn, cfg.App.Env == "development")
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if sqlDB, err := db.DB(); err == nil {
			rt.closers = append(rt.closers, sqlDB.Close)
		}
		store := cache.NewGormCache(db)
		if err := store.Migrate(); err != nil {
			return nil, fmt.Errorf("migrate kv_entries: %w", err)
		}
		return store, nil
	case "multilevel":
		// L1 本地内存 + L2 Redis
		return cache.NewMultiLevelCache(cache.NewMemoryCache(time.Minute, 5*time.Minute), cache.NewRedisCache(rt.Redis, counterPrefix)), nil
	default:
		return nil, fmt.Errorf("unknown storage.driver %q", cfg.Storage.Driver)
	}
}

func (rt *Runtime) producer(cfg config.Config) (mq.Producer, error) {
	switch cfg.MQ.Type {
	case "", "none":
		return nil, nil
	case "redis":
		logger.Info("使用 Redis Streams 作为消息队列...")
		return mq.NewRedisProducer(rt.Redis), nil
	case "kafka":
		logger.Info("使用 Kafka 作为消息队列...")
		p := mq.NewKafkaProducer(cfg.Kafka.Brokers)
		rt.closers = append(rt.closers, p.Close)
		return p, nil
	default:
		return nil, fmt.Errorf("unknown mq.type %q", cfg.MQ.Type)
	}
}

// NewConsumer builds an event consumer matching mq.type.
func (rt *Runtime) NewConsumer(cfg config.Config, group, name string) (mq.Consumer, error) {
	switch cfg.MQ.Type {
	case "redis":
		return mq.NewRedisConsumer(rt.Redis, group, name), nil
	case "kafka":
		return mq.NewKafkaConsumer(cfg.Kafka.Brokers, group), nil
	default:
		return nil, fmt.Errorf("mq.type %q has no consumer", cfg.MQ.Type)
	}
}
