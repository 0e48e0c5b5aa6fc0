package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-yaml/yaml"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"

	"github.com/totegamma/rebento"
)

type Config struct {
	NodeInfo NodeInfo `yaml:"nodeInfo"`
	Server   Server   `yaml:"server"`
	Storage  Storage  `yaml:"storage"`
	Cache    Cache    `yaml:"cache"`
}

type NodeInfo struct {
	FQDN       string `yaml:"fqdn"`
	PrivateKey string `yaml:"privatekey"`
	Username   string `yaml:"username"`

	// ---
	Address string `yaml:"-"`
}

type Server struct {
	ListenAddr     string  `yaml:"listenAddr"`
	PostgresDsn    string  `yaml:"postgresDsn"`
	RedisAddr      string  `yaml:"redisAddr"`
	RedisPassword  string  `yaml:"redisPassword"`
	RedisDB        int     `yaml:"redisDB"`
	MemcachedAddr  string  `yaml:"memcachedAddr"`
	EnableTrace    bool    `yaml:"enableTrace"`
	TraceEndpoint  string  `yaml:"traceEndpoint"`
	LogLevel       string  `yaml:"logLevel"`
	RateLimitPerS  float64 `yaml:"rateLimitPerSecond"`
	RateLimitBurst int     `yaml:"rateLimitBurst"`
}

type Storage struct {
	Gateways   []string      `yaml:"gateways"`
	IngestURL  string        `yaml:"ingestURL"`
	Timeout    time.Duration `yaml:"timeout"`
	QueryLimit int           `yaml:"queryLimit"`
}

type Cache struct {
	BaseURL   string        `yaml:"baseURL"`
	ProcessID string        `yaml:"processID"`
	Timeout   time.Duration `yaml:"timeout"`
}

func Default() Config {
	return Config{
		Server: Server{
			ListenAddr:     ":8000",
			LogLevel:       "info",
			RateLimitPerS:  10,
			RateLimitBurst: 20,
		},
		Storage: Storage{
			Gateways: []string{
				"https://arweave.net",
				"https://arweave.developerdao.com",
				"https://g8way.io",
			},
			IngestURL:  "https://upload.ardrive.io/v1/tx",
			Timeout:    8 * time.Second,
			QueryLimit: 5,
		},
		Cache: Cache{
			BaseURL:   "https://push.forward.computer",
			ProcessID: "wwFVJeGWw4vH-1mrzzl_rdR2vpKr36N_yD1pEJBaTIk",
			Timeout:   8 * time.Second,
		},
	}
}

// Load reads the yaml file at path on top of the defaults, then applies a
// .env file next to the working directory (if any) and REBENTO_*
// environment overrides. An empty path skips the file.
func Load(path string) (Config, error) {
	config := Default()

	if path != "" {
		file, err := os.Open(path)
		if err != nil {
			return Config{}, err
		}
		defer file.Close()

		err = yaml.NewDecoder(file).Decode(&config)
		if err != nil {
			return Config{}, errors.Wrap(err, "failed to decode config")
		}
	}

	_ = godotenv.Load()
	applyEnv(&config)

	if config.NodeInfo.PrivateKey != "" {
		address, err := rebento.PrivKeyToAddr(config.NodeInfo.PrivateKey)
		if err != nil {
			return Config{}, errors.Wrap(err, "invalid nodeInfo.privatekey")
		}
		config.NodeInfo.Address = address
	}

	return config, nil
}

func applyEnv(c *Config) {
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	str("REBENTO_FQDN", &c.NodeInfo.FQDN)
	str("REBENTO_PRIVATE_KEY", &c.NodeInfo.PrivateKey)
	str("REBENTO_USERNAME", &c.NodeInfo.Username)
	str("REBENTO_LISTEN_ADDR", &c.Server.ListenAddr)
	str("REBENTO_POSTGRES_DSN", &c.Server.PostgresDsn)
	str("REBENTO_REDIS_ADDR", &c.Server.RedisAddr)
	str("REBENTO_REDIS_PASSWORD", &c.Server.RedisPassword)
	str("REBENTO_MEMCACHED_ADDR", &c.Server.MemcachedAddr)
	str("REBENTO_TRACE_ENDPOINT", &c.Server.TraceEndpoint)
	str("REBENTO_LOG_LEVEL", &c.Server.LogLevel)
	str("REBENTO_INGEST_URL", &c.Storage.IngestURL)
	str("REBENTO_CACHE_URL", &c.Cache.BaseURL)
	str("REBENTO_CACHE_PROCESS", &c.Cache.ProcessID)

	if v, ok := os.LookupEnv("REBENTO_GATEWAYS"); ok && v != "" {
		var gateways []string
		for _, g := range strings.Split(v, ",") {
			if g = strings.TrimSpace(g); g != "" {
				gateways = append(gateways, g)
			}
		}
		c.Storage.Gateways = gateways
	}
	if v, ok := os.LookupEnv("REBENTO_REDIS_DB"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			c.Server.RedisDB = n
		}
	}
	if v, ok := os.LookupEnv("REBENTO_ENABLE_TRACE"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Server.EnableTrace = b
		}
	}
}
