package config

import (
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

const (
	DefaultNetUrl              = "http://localhost:7545"
	DefaultPort                = "8080"
	DefaultReceiptPollInterval = 500
)

// Default 返回所有字段都带默认值的配置
func Default() *Conf {
	c := &Conf{}
	c.applyDefaults()
	return c
}

// Load 读取 toml 配置文件并补齐默认值，path 为空时只使用默认值。
// 成功后同时写入全局 Config
func Load(path string) (*Conf, error) {
	c := &Conf{}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "read config")
		}
		if _, err = toml.Decode(string(b), c); err != nil {
			return nil, errors.Wrapf(err, "decode config %s", path)
		}
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	Config = c
	return c, nil
}

func (c *Conf) applyDefaults() {
	if c.Env.Port == "" {
		c.Env.Port = DefaultPort
	}
	if c.Env.Protocol == "" {
		c.Env.Protocol = "http"
	}
	if c.Env.DomainName == "" {
		c.Env.DomainName = "127.0.0.1"
	}
	if c.Env.Version == "" {
		c.Env.Version = "v1"
	}
	if c.Chain.NetUrl == "" {
		c.Chain.NetUrl = DefaultNetUrl
	}
	if c.Chain.ReceiptPollIntervalMs <= 0 {
		c.Chain.ReceiptPollIntervalMs = DefaultReceiptPollInterval
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Encoding == "" {
		c.Log.Encoding = "console"
	}
	if c.Log.MaxSize <= 0 {
		c.Log.MaxSize = 100
	}
	if c.Journal.KeyPrefix == "" {
		c.Journal.KeyPrefix = "doi"
	}
	if c.Redis.Address == "" {
		c.Redis.Address = "127.0.0.1"
	}
	if c.Redis.Port == "" {
		c.Redis.Port = "6379"
	}
	if c.Redis.MaxIdle <= 0 {
		c.Redis.MaxIdle = 10
	}
	if c.Redis.IdleTimeout <= 0 {
		c.Redis.IdleTimeout = 180
	}
	if c.Mysql.Port == "" {
		c.Mysql.Port = "3306"
	}
}

// Validate 检查取值合法性
func (c *Conf) Validate() error {
	if c.Chain.Signer != "" && !common.IsHexAddress(c.Chain.Signer) {
		return errors.Errorf("chain.signer %q is not a hex address", c.Chain.Signer)
	}
	switch strings.ToLower(c.Journal.Driver) {
	case "", "memory", "redis", "mysql":
	default:
		return errors.Errorf("journal.driver %q is not supported", c.Journal.Driver)
	}
	return nil
}

// Origins 允许访问接口的来源: protocol://domain_name、带端口的同一地址，以及 allowed_origins
func (c *Conf) Origins() []string {
	base := c.Env.Protocol + "://" + c.Env.DomainName
	origins := []string{base, base + ":" + c.Env.Port}
	return append(origins, c.Env.AllowedOrigins...)
}

// BaseUrl 服务对外地址
func (c *Conf) BaseUrl() string {
	return c.Env.Protocol + "://" + c.Env.DomainName + ":" + c.Env.Port
}

// SignerAddress 返回配置的发送账户，未配置时 ok 为 false
func (c *Conf) SignerAddress() (addr common.Address, ok bool) {
	if c.Chain.Signer == "" {
		return common.Address{}, false
	}
	return common.HexToAddress(c.Chain.Signer), true
}
