package main

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/miekg/dns"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Domain string   `yaml:"domain" koanf:"domain" validate:"required,domain_name"`
	UDP    []string `yaml:"udp" koanf:"udp" validate:"dive,ip_port"`
	TCP    []string `yaml:"tcp" koanf:"tcp" validate:"dive,ip_port"`

	TCPTimeout    time.Duration `yaml:"tcp-timeout" koanf:"tcp_timeout" validate:"gt=0"`
	UDPSize       int           `yaml:"udp-size" koanf:"udp_size" validate:"gte=512,lte=65535"`
	CidrCacheSize int           `yaml:"cidr-cache-size" koanf:"cidr_cache_size" validate:"gte=0"`

	PrometheusListen string `yaml:"prometheus-listen" koanf:"prometheus_listen" validate:"omitempty,listen_addr"`
	WatchConfig      bool   `yaml:"watch-config" koanf:"watch_config"`

	Env      string `yaml:"env" koanf:"env" validate:"required,oneof=dev prod"`
	LogLevel string `yaml:"log-level" koanf:"log_level" validate:"required,oneof=debug info warn error"`
}

var ErrNoListeners = errors.New("no udp or tcp listen address configured")

func DefaultConfig() Config {
	return Config{
		Domain:        "mentisnovae.tech",
		UDP:           []string{"0.0.0.0:4200"},
		TCP:           []string{},
		TCPTimeout:    10 * time.Second,
		UDPSize:       1232,
		CidrCacheSize: 1024,
		Env:           "prod",
		LogLevel:      "info",
	}
}

// FlagOverrides holds command line values. Nil fields were not given.
type FlagOverrides struct {
	Domain *string
	UDP    *[]string
	TCP    *[]string
}

// LoadConfig layers defaults, the YAML file, DNS_* environment variables and
// command line flags, then validates the result.
func LoadConfig(file string, flags FlagOverrides) (*Config, error) {
	base := DefaultConfig()

	if file != "" {
		err := loadConfigFile(file, &base)
		if err != nil {
			return nil, err
		}
	}

	k := koanf.New(".")
	err := k.Load(structs.Provider(base, "koanf"), nil)
	if err != nil {
		return nil, fmt.Errorf("error loading base config: %w", err)
	}

	err = envLoader(k)
	if err != nil {
		return nil, fmt.Errorf("error loading env: %w", err)
	}

	var cfg Config
	err = k.Unmarshal("", &cfg)
	if err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	if flags.Domain != nil {
		cfg.Domain = *flags.Domain
	}
	if flags.UDP != nil {
		cfg.UDP = *flags.UDP
	}
	if flags.TCP != nil {
		cfg.TCP = *flags.TCP
	}

	err = validateConfig(&cfg)
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}

func loadConfigFile(file string, cfg *Config) error {
	fh, err := os.Open(file)
	if err != nil {
		return err
	}
	defer fh.Close()

	decoder := yaml.NewDecoder(fh)
	decoder.KnownFields(true)
	err = decoder.Decode(cfg)
	if err != nil {
		return fmt.Errorf("error parsing %s: %w", file, err)
	}
	return nil
}

var envLoader = func(k *koanf.Koanf) error {
	return k.Load(env.Provider(".", env.Opt{
		Prefix: "DNS_",
		TransformFunc: func(key, value string) (string, any) {
			key = strings.ToLower(strings.TrimPrefix(key, "DNS_"))
			value = strings.TrimSpace(value)

			if value == "" {
				return key, value
			}

			// Lists are split on spaces or commas
			if strings.ContainsAny(value, " ,") {
				return key, strings.FieldsFunc(value, func(r rune) bool {
					return r == ' ' || r == ','
				})
			}

			return key, value
		},
	}), nil)
}

func validateConfig(cfg *Config) error {
	validate := validator.New(validator.WithRequiredStructEnabled())

	err := errors.Join(
		validate.RegisterValidation("ip_port", validIPPort),
		validate.RegisterValidation("listen_addr", validListenAddr),
		validate.RegisterValidation("domain_name", validDomainName),
	)
	if err != nil {
		return fmt.Errorf("error registering validation: %w", err)
	}

	err = validate.Struct(cfg)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	if len(cfg.UDP) == 0 && len(cfg.TCP) == 0 {
		return ErrNoListeners
	}

	return nil
}

func parsePort(port string) bool {
	portNum, err := strconv.ParseUint(port, 10, 16)
	return err == nil && portNum > 0
}

func validIPPort(fl validator.FieldLevel) bool {
	ip, port, err := net.SplitHostPort(fl.Field().String())
	if err != nil || ip == "" {
		return false
	}
	return net.ParseIP(ip) != nil && parsePort(port)
}

// Like ip_port but the host may be empty or a name, as in ":9090"
func validListenAddr(fl validator.FieldLevel) bool {
	_, port, err := net.SplitHostPort(fl.Field().String())
	return err == nil && parsePort(port)
}

func validDomainName(fl validator.FieldLevel) bool {
	name := fl.Field().String()
	if name == "" || name == "." {
		return false
	}
	_, ok := dns.IsDomainName(name)
	return ok
}
