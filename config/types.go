package config

import "time"

type config struct {
	Server    server    `yaml:"server" mapstructure:"server"`
	Database  database  `yaml:"database" mapstructure:"database"`
	Redis     redis     `yaml:"redis" mapstructure:"redis"`
	RabbitMq  rabbitmq  `yaml:"rabbitmq" mapstructure:"rabbitmq"`
	Minio     minio     `yaml:"minio" mapstructure:"minio"`
	Jaeger    jaeger    `yaml:"jaeger" mapstructure:"jaeger"`
	Jwt       jwt       `yaml:"jwt" mapstructure:"jwt"`
	Feed      feed      `yaml:"feed" mapstructure:"feed"`
	Limits    limits    `yaml:"limits" mapstructure:"limits"`
	Snowflake snowflake `yaml:"snowflake" mapstructure:"snowflake"`
}

type server struct {
	Addr         string   `yaml:"addr"`
	MetricsPath  string   `yaml:"metrics_path" mapstructure:"metrics_path"`
	PprofAddr    string   `yaml:"pprof_addr" mapstructure:"pprof_addr"`
	AllowOrigins []string `yaml:"allow_origins" mapstructure:"allow_origins"`
}

// database driver 取值 mysql | sqlite，sqlite 仅用于本地开发
type database struct {
	Driver          string        `yaml:"driver"`
	Addr            string        `yaml:"addr"`
	Database        string        `yaml:"database"`
	Username        string        `yaml:"username"`
	Password        string        `yaml:"password"`
	Charset         string        `yaml:"charset"`
	SqlitePath      string        `yaml:"sqlite_path" mapstructure:"sqlite_path"`
	MaxOpenConns    int           `yaml:"max_open_conns" mapstructure:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns" mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" mapstructure:"conn_max_lifetime"`
}

type redis struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	CountTTL time.Duration `yaml:"count_ttl" mapstructure:"count_ttl"`

	// 是否在 toggle 前额外获取 redsync 分布式锁
	ToggleLock bool `yaml:"toggle_lock" mapstructure:"toggle_lock"`
}

type rabbitmq struct {
	Url string `yaml:"url"`
}

type minio struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key" mapstructure:"access_key"`
	SecretKey string `yaml:"secret_key" mapstructure:"secret_key"`
	UseSSL    bool   `yaml:"use_ssl" mapstructure:"use_ssl"`
}

type jaeger struct {
	Enabled   bool   `yaml:"enabled"`
	AgentAddr string `yaml:"agent_addr" mapstructure:"agent_addr"`
}

type jwt struct {
	Secret      string        `yaml:"secret"`
	IdentityKey string        `yaml:"identity_key" mapstructure:"identity_key"`
	Timeout     time.Duration `yaml:"timeout"`
}

type feed struct {
	BranchTimeout time.Duration `yaml:"branch_timeout" mapstructure:"branch_timeout"`
	ChannelLimit  int           `yaml:"channel_limit" mapstructure:"channel_limit"`
}

type limits struct {
	ToggleQPS      float64 `yaml:"toggle_qps" mapstructure:"toggle_qps"`
	CpuShedPercent float64 `yaml:"cpu_shed_percent" mapstructure:"cpu_shed_percent"`
}

type snowflake struct {
	WorkerId     int64 `yaml:"worker_id" mapstructure:"worker_id"`
	DatacenterId int64 `yaml:"datacenter_id" mapstructure:"datacenter_id"`
}
