package config

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Wallet  WalletConfig  `mapstructure:"wallet"`
	Storage StorageConfig `mapstructure:"storage"`
	DB      DBConfig      `mapstructure:"db"`
	Redis   RedisConfig   `mapstructure:"redis"`
	MQ      MQConfig      `mapstructure:"mq"`
	Kafka   KafkaConfig   `mapstructure:"kafka"`
}

type AppConfig struct {
	Env      string `mapstructure:"env"`
	HttpPort string `mapstructure:"http_port"`
}

type WalletConfig struct {
	RpcUrl              string        `mapstructure:"rpc_url"` // 为空表示没有钱包 Provider
	ContractAddress     string        `mapstructure:"contract_address"`
	GasLimit            string        `mapstructure:"gas_limit"` // hex, 例如 0x5208 (21000)
	ReceiptPollInterval time.Duration `mapstructure:"receipt_poll_interval"`
	ConfirmTimeout      time.Duration `mapstructure:"confirm_timeout"`
}

type StorageConfig struct {
	Driver string `mapstructure:"driver"` // "memory", "redis", "postgres" or "multilevel"
}

type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type MQConfig struct {
	Type  string `mapstructure:"type"` // "none", "redis" or "kafka"
	Topic string `mapstructure:"topic"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
}

var Global Config

// Init loads the configuration into Global, exiting on a malformed file.
func Init() {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("Fatal error config file: %s \n", err)
	}
	Global = cfg
	log.Printf("Configuration loaded successfully. Env: %s", Global.App.Env)
}

// Load reads config.yaml from . or ./config, then environment variables
// (wallet.rpc_url -> WALLET_RPC_URL) on top of the defaults.
func Load() (Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// 环境变量设置
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, err
		}
		log.Printf("Warning: Config file not found, using defaults and environment variables")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "development")
	v.SetDefault("app.http_port", "8080")

	v.SetDefault("wallet.rpc_url", "")
	v.SetDefault("wallet.contract_address", "")
	v.SetDefault("wallet.gas_limit", "0x5208")
	v.SetDefault("wallet.receipt_poll_interval", time.Second)
	v.SetDefault("wallet.confirm_timeout", 5*time.Minute)

	v.SetDefault("storage.driver", "memory")

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", "5432")
	v.SetDefault("db.user", "wallet_user")
	v.SetDefault("db.password", "wallet_password")
	v.SetDefault("db.name", "wallet_db")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("mq.type", "none")
	v.SetDefault("mq.topic", "session_events_transaction")

	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
}
