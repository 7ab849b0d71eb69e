// Package config carga la configuración del servicio desde YAML con defaults
// sanos y overrides por entorno. Las URIs de los clusters pueden venir
// cifradas (uri_enc) con secretbox; Load las descifra al cargar.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dropDatabas3/tenantplane/internal/security/secretbox"
)

// ClusterConfig es la conexión a un cluster. URI en claro para dev; URIEnc
// (secretbox) para configs commiteadas.
type ClusterConfig struct {
	URI    string `yaml:"uri"`
	URIEnc string `yaml:"uri_enc"`
}

type Config struct {
	App struct {
		// dev | staging | prod
		Env string `yaml:"app_env"`
	} `yaml:"app"`

	Server struct {
		Addr            string        `yaml:"addr"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	Registry struct {
		Cluster  ClusterConfig `yaml:"cluster"`
		Database string        `yaml:"database"`
	} `yaml:"registry"`

	// Clusters por servicio: billing, crm, pingora.
	Clusters map[string]ClusterConfig `yaml:"clusters"`

	Provision struct {
		PerServiceTimeout time.Duration `yaml:"per_service_timeout"`
		ConnectTimeout    time.Duration `yaml:"connect_timeout"`
	} `yaml:"provision"`

	Auth struct {
		PerServiceTimeout time.Duration `yaml:"per_service_timeout"`
	} `yaml:"auth"`

	Admin struct {
		// PHC argon2id del API key admin (X-Admin-API-Key).
		APIKeyHash string `yaml:"api_key_hash"`
	} `yaml:"admin"`

	JWT struct {
		Secret    string        `yaml:"secret"`
		Issuer    string        `yaml:"issuer"`
		AccessTTL time.Duration `yaml:"access_ttl"`
	} `yaml:"jwt"`

	Cache struct {
		Kind  string `yaml:"kind"` // memory | redis
		Redis struct {
			Addr   string `yaml:"addr"`
			DB     int    `yaml:"db"`
			Prefix string `yaml:"prefix"`
		} `yaml:"redis"`
		Memory struct {
			DefaultTTL time.Duration `yaml:"default_ttl"`
		} `yaml:"memory"`
	} `yaml:"cache"`

	Rate struct {
		Enabled bool `yaml:"enabled"`
		Login   struct {
			Limit  int           `yaml:"limit"`
			Window time.Duration `yaml:"window"`
		} `yaml:"login"`
	} `yaml:"rate"`

	SMTP struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		From     string `yaml:"from"`
		TLS      string `yaml:"tls"` // auto | starttls | ssl | none
	} `yaml:"smtp"`

	Alerts struct {
		// Destino de los mails de partial failure. Vacío desactiva alertas.
		OperatorEmail string `yaml:"operator_email"`
	} `yaml:"alerts"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// Load lee el YAML, aplica defaults y resuelve URIs cifradas.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	// sane defaults
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 15 * time.Second
	}
	if c.Registry.Database == "" {
		c.Registry.Database = "tenant_registry"
	}
	if c.Provision.PerServiceTimeout == 0 {
		c.Provision.PerServiceTimeout = 30 * time.Second
	}
	if c.Provision.ConnectTimeout == 0 {
		c.Provision.ConnectTimeout = 10 * time.Second
	}
	if c.Auth.PerServiceTimeout == 0 {
		c.Auth.PerServiceTimeout = 10 * time.Second
	}
	if c.JWT.Issuer == "" {
		c.JWT.Issuer = "tenantplane"
	}
	if c.JWT.AccessTTL == 0 {
		c.JWT.AccessTTL = 12 * time.Hour
	}
	if c.Cache.Kind == "" {
		c.Cache.Kind = "memory"
	}
	if c.Cache.Memory.DefaultTTL == 0 {
		c.Cache.Memory.DefaultTTL = 2 * time.Minute
	}
	if c.Rate.Login.Limit == 0 {
		c.Rate.Login.Limit = 10
	}
	if c.Rate.Login.Window == 0 {
		c.Rate.Login.Window = time.Minute
	}
	if c.SMTP.TLS == "" {
		c.SMTP.TLS = "auto"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}

	// Overrides por entorno (secretos que no van al yaml).
	if v := os.Getenv("TENANTPLANE_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("TENANTPLANE_JWT_SECRET"); v != "" {
		c.JWT.Secret = v
	}
	if v := os.Getenv("TENANTPLANE_ADMIN_API_KEY_HASH"); v != "" {
		c.Admin.APIKeyHash = v
	}

	if err := c.resolveURIs(); err != nil {
		return nil, err
	}
	return &c, nil
}

// resolveURIs descifra todo uri_enc presente; uri en claro gana si están
// los dos.
func (c *Config) resolveURIs() error {
	resolve := func(name string, cc *ClusterConfig) error {
		if cc.URI != "" || cc.URIEnc == "" {
			return nil
		}
		uri, err := secretbox.Decrypt(cc.URIEnc)
		if err != nil {
			return fmt.Errorf("cluster %s: decrypt uri_enc: %w", name, err)
		}
		cc.URI = uri
		return nil
	}

	if err := resolve("registry", &c.Registry.Cluster); err != nil {
		return err
	}
	for name, cc := range c.Clusters {
		if err := resolve(name, &cc); err != nil {
			return err
		}
		c.Clusters[name] = cc
	}
	return nil
}

// ClusterURIs arma el mapa key→URI que consume cluster.NewRegistry:
// la key "registry" más una por servicio configurado.
func (c *Config) ClusterURIs() map[string]string {
	uris := map[string]string{"registry": c.Registry.Cluster.URI}
	for name, cc := range c.Clusters {
		uris[name] = cc.URI
	}
	return uris
}

// IsProd informa si corre en prod (controla el encoder del logger).
func (c *Config) IsProd() bool { return c.App.Env == "prod" }
