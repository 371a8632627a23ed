package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

var ConfigInfo config

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", "0.0.0.0:8888")
	v.SetDefault("server.metrics_path", "/metrics")
	v.SetDefault("server.allow_origins", []string{"http://localhost:8870", "http://localhost:8888"})

	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.charset", "utf8mb4")
	v.SetDefault("database.sqlite_path", "streamhub.db")
	v.SetDefault("database.max_open_conns", 50)
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.conn_max_lifetime", time.Hour)

	v.SetDefault("redis.count_ttl", 10*time.Minute)

	v.SetDefault("jwt.secret", "streamhub-dev-secret")
	v.SetDefault("jwt.identity_key", "user_id")
	v.SetDefault("jwt.timeout", 24*time.Hour)

	v.SetDefault("feed.branch_timeout", 2*time.Second)
	v.SetDefault("feed.channel_limit", 200)

	v.SetDefault("limits.toggle_qps", 200)
	v.SetDefault("limits.cpu_shed_percent", 95)

	v.SetDefault("snowflake.worker_id", 1)
	v.SetDefault("snowflake.datacenter_id", 1)
}

// Init 读取 config.yml，文件缺失时使用默认值，环境变量 STREAMHUB_* 可覆盖任意配置项
func Init() {
	v := viper.New()
	setDefaults(v)

	wd, _ := os.Getwd()
	logrus.Infof("Current working directory: %s", wd)

	v.SetConfigType("yaml")
	v.SetConfigName("config.yml")
	for _, path := range []string{"../../config", "./config", "../config", "."} {
		v.AddConfigPath(path)
		absPath, _ := filepath.Abs(path)
		logrus.Debugf("Added config path: %s (absolute: %s)", path, absPath)
	}

	v.SetEnvPrefix("STREAMHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logrus.Warnf("config file not found, using defaults: %v", err)
		} else {
			logrus.Errorf("config error: %v", err)
		}
	} else {
		logrus.Infof("Successfully read config file: %s", v.ConfigFileUsed())
	}

	if err := Load(v); err != nil {
		logrus.Errorf("config unmarshal error: %v", err)
	}

	logrus.Infof("Config loaded - database driver: %s, addr: %s@%s/%s",
		ConfigInfo.Database.Driver, ConfigInfo.Database.Username, ConfigInfo.Database.Addr, ConfigInfo.Database.Database)
}

// Load 将 viper 中的配置解码到 ConfigInfo
func Load(v *viper.Viper) error {
	var c config
	if err := v.Unmarshal(&c); err != nil {
		return err
	}
	ConfigInfo = c
	return nil
}

// Default 返回只包含默认值的配置，测试中使用
func Default() config {
	v := viper.New()
	setDefaults(v)
	var c config
	_ = v.Unmarshal(&c)
	return c
}
