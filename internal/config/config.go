package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"mercacomp/internal/cart"
)

type Config struct {
	HTTP struct {
		Port string `koanf:"port"`
		CSRF bool   `koanf:"csrf"`
		// Requests per minute per client IP.
		RateLimit int `koanf:"rateLimit"`
	} `koanf:"http"`

	Store struct {
		Driver    string `koanf:"driver"` // memory | sqlite | redis
		DSN       string `koanf:"dsn"`
		RedisAddr string `koanf:"redisAddr"`
	} `koanf:"store"`

	API struct {
		URL       string        `koanf:"url"`
		PostalURL string        `koanf:"postalUrl"`
		Timeout   time.Duration `koanf:"timeout"`
	} `koanf:"api"`

	Log struct {
		File string `koanf:"file"`
	} `koanf:"log"`

	Cart struct {
		BaseFee                     string `koanf:"baseFee"`
		InterStoreFee               string `koanf:"interStoreFee"`
		MinDistinctStoresBeforeLock int    `koanf:"minDistinctStoresBeforeLock"`
		UnitsToUnlock               int    `koanf:"unitsToUnlock"`
	} `koanf:"cart"`
}

// envKeys maps the supported environment variables to config paths.
var envKeys = map[string]string{
	"PORT":                     "http.port",
	"HTTP_CSRF":                "http.csrf",
	"HTTP_RATE_LIMIT":          "http.rateLimit",
	"STORE_DRIVER":             "store.driver",
	"DB_DSN":                   "store.dsn",
	"REDIS_ADDR":               "store.redisAddr",
	"API_URL":                  "api.url",
	"POSTAL_URL":               "api.postalUrl",
	"HTTP_TIMEOUT":             "api.timeout",
	"LOG_FILE":                 "log.file",
	"CART_BASE_FEE":            "cart.baseFee",
	"CART_INTER_STORE_FEE":     "cart.interStoreFee",
	"CART_MIN_DISTINCT_STORES": "cart.minDistinctStoresBeforeLock",
	"CART_UNITS_TO_UNLOCK":     "cart.unitsToUnlock",
}

func defaults() *Config {
	cfg := &Config{}
	cfg.HTTP.Port = "8080"
	cfg.HTTP.RateLimit = 120
	cfg.Store.Driver = "memory"
	cfg.Store.DSN = "mercacomp.db"
	cfg.Store.RedisAddr = "localhost:6379"
	cfg.API.URL = "https://tcc-senai-tawny.vercel.app"
	cfg.API.PostalURL = "https://viacep.com.br/ws"
	cfg.API.Timeout = 10 * time.Second
	cfg.Log.File = "./mercacomp.log"

	d := cart.DefaultConfig()
	cfg.Cart.BaseFee = d.BaseFee.StringFixed(2)
	cfg.Cart.InterStoreFee = d.InterStoreFee.StringFixed(2)
	cfg.Cart.MinDistinctStoresBeforeLock = d.MinDistinctStoresBeforeLock
	cfg.Cart.UnitsToUnlock = d.UnitsToUnlock
	return cfg
}

// Load layers built-in defaults, the optional YAML file at path (or
// $CONFIG_FILE) and the environment, in that order.
func Load(path string) (*Config, error) {
	cfg := defaults()
	k := koanf.New(".")

	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "read config %s", path)
		}
	}

	if err := k.Load(env.Provider(".", env.Opt{
		TransformFunc: func(key, v string) (string, any) {
			// unknown variables are skipped
			return envKeys[key], strings.TrimSpace(v)
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			TagName:          "koanf",
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
		},
	}); err != nil {
		return nil, errors.Wrap(err, "unmarshal config failed")
	}

	if _, err := cfg.CartConfig(); err != nil {
		return nil, err
	}
	switch cfg.Store.Driver {
	case "memory", "sqlite", "redis":
	default:
		return nil, errors.Errorf("store.driver must be memory, sqlite or redis, got %q", cfg.Store.Driver)
	}

	log.Printf("[config] PORT=%s STORE=%s API=%s LOG_FILE=%s", cfg.HTTP.Port, cfg.Store.Driver, cfg.API.URL, cfg.Log.File)
	return cfg, nil
}

// CartConfig converts the cart section into engine settings.
func (c *Config) CartConfig() (cart.Config, error) {
	base, err := decimal.NewFromString(c.Cart.BaseFee)
	if err != nil {
		return cart.Config{}, errors.Wrap(err, "cart.baseFee")
	}
	inter, err := decimal.NewFromString(c.Cart.InterStoreFee)
	if err != nil {
		return cart.Config{}, errors.Wrap(err, "cart.interStoreFee")
	}
	if base.IsNegative() || inter.IsNegative() {
		return cart.Config{}, errors.New("cart fees must not be negative")
	}
	if c.Cart.MinDistinctStoresBeforeLock < 1 || c.Cart.UnitsToUnlock < 0 {
		return cart.Config{}, errors.New("cart.minDistinctStoresBeforeLock must be >= 1 and cart.unitsToUnlock >= 0")
	}
	return cart.Config{
		BaseFee:                     base,
		InterStoreFee:               inter,
		MinDistinctStoresBeforeLock: c.Cart.MinDistinctStoresBeforeLock,
		UnitsToUnlock:               c.Cart.UnitsToUnlock,
	}, nil
}
