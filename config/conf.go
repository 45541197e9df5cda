package config

var Config *Conf

// 项目全局配置文件

type Conf struct {
	// 服务端口、版本、域名
	Env EnvConfig
	// 节点 RPC 地址、合约 artifact、发送交易使用的账户
	Chain ChainConfig
	// 页面状态的展示策略
	View ViewConfig
	Log  LogConfig
	// 注册记录的落库方式: "" 不记录, memory / redis / mysql
	Journal JournalConfig
	Redis   RedisConfig
	Mysql   MysqlConfig
	Monitor MonitorConfig
}

type EnvConfig struct {
	Port       string `toml:"port"`
	Version    string `toml:"version"`
	Protocol   string `toml:"protocol"`
	DomainName string `toml:"domain_name"`
	// 额外允许跨域、websocket 访问的来源，如 "https://doi.example.org"
	AllowedOrigins []string `toml:"allowed_origins"`
}

type ChainConfig struct {
	NetUrl string `toml:"net_url"`
	// 为空时使用打包进二进制的 DigitalObjectIdentifier.json
	ArtifactPath string `toml:"artifact_path"`
	// 为空时使用 eth_accounts 返回的第一个账户
	Signer                string `toml:"signer"`
	ReceiptPollIntervalMs int64  `toml:"receipt_poll_interval_ms"`
}

type ViewConfig struct {
	// 失败状态后追加具体错误原因
	VerboseErrors bool `toml:"verbose_errors"`
	// 未初始化完成时的操作显示 "not configured" 而不是静默忽略
	StrictBinding bool `toml:"strict_binding"`
}

type LogConfig struct {
	Level      string `toml:"level"`
	Encoding   string `toml:"encoding"` // json / console
	File       string `toml:"file"`
	MaxSize    int    `toml:"max_size"` // MB
	MaxBackups int    `toml:"max_backups"`
	MaxAge     int    `toml:"max_age"` // days
	Compress   bool   `toml:"compress"`
}

// MonitorConfig 定时把链上对象数量写入 prometheus，interval_seconds 为 0 时不启动
type MonitorConfig struct {
	IntervalSeconds uint64 `toml:"interval_seconds"`
}

type JournalConfig struct {
	Driver string `toml:"driver"`
	// redis list 的 key 前缀
	KeyPrefix string `toml:"key_prefix"`
}

type MysqlConfig struct {
	Address      string `toml:"address"`
	Port         string `toml:"port"`
	DbName       string `toml:"db_name"`
	UserName     string `toml:"user_name"`
	Password     string `toml:"password"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
	MaxLifeTime  int    `toml:"max_life_time"`
}

type RedisConfig struct {
	// Redis服务器地址，如 "127.0.0.1" 或 "redis-server"
	Address string `toml:"address"`

	// Redis服务端口，通常是 "6379"
	Port string `toml:"port"`

	// 使用的数据库索引，默认为 0
	Db int `toml:"db"`

	// Redis访问密码，如果没有设置则留空
	Password string `toml:"password"`

	// 连接池中最大空闲连接数
	MaxIdle int `toml:"max_idle"`

	// 连接池在同一时间能够分配的最大连接数，0 表示不限制
	MaxActive int `toml:"max_active"`

	// 空闲连接的超时时间（秒）
	IdleTimeout int `toml:"idle_timeout"`
}
