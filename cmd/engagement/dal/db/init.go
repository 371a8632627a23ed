package db

import (
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	gormopentracing "gorm.io/plugin/opentracing"

	"streamhub.com/cmd/model"
	"streamhub.com/config"
)

var DB *gorm.DB

type Options struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	Tracing         bool
}

// Init init DB
func Init() {
	c := config.ConfigInfo.Database
	opts := Options{
		Driver:          c.Driver,
		MaxOpenConns:    c.MaxOpenConns,
		MaxIdleConns:    c.MaxIdleConns,
		ConnMaxLifetime: c.ConnMaxLifetime,
		Tracing:         config.ConfigInfo.Jaeger.Enabled,
	}
	switch c.Driver {
	case "sqlite":
		opts.DSN = c.SqlitePath
	default:
		opts.DSN = fmt.Sprintf("%s:%s@tcp(%s)/%s?charset=%s&parseTime=True&loc=UTC",
			c.Username, c.Password, c.Addr, c.Database, c.Charset)
	}
	var err error
	DB, err = Open(opts)
	if err != nil {
		panic(err)
	}
}

// Open 打开数据库并迁移五个集合对应的表
func Open(opts Options) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch opts.Driver {
	case "sqlite":
		dialector = sqlite.Open(opts.DSN)
	case "mysql", "":
		dialector = mysql.Open(opts.DSN)
	default:
		return nil, errors.Errorf("unsupported database driver %q", opts.Driver)
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
		TranslateError:         true,
		NowFunc:                func() time.Time { return time.Now().UTC() },
		Logger:                 logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, errors.Wrap(err, "open database failed")
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, errors.Wrap(err, "get sql.DB failed")
	}
	if opts.Driver == "sqlite" {
		// sqlite 只允许单写，内存库还要求所有查询共用同一个连接
		sqlDB.SetMaxOpenConns(1)
	} else {
		if opts.MaxOpenConns > 0 {
			sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
		}
		if opts.MaxIdleConns > 0 {
			sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
		}
		if opts.ConnMaxLifetime > 0 {
			sqlDB.SetConnMaxLifetime(opts.ConnMaxLifetime)
		}
	}

	if opts.Tracing {
		if err = gdb.Use(gormopentracing.New()); err != nil {
			return nil, errors.Wrap(err, "register opentracing plugin failed")
		}
	}

	logrus.Info("Starting tables migration...")
	if err = gdb.AutoMigrate(model.AllTables()...); err != nil {
		return nil, errors.Wrap(err, "auto migrate failed")
	}
	logrus.Info("Tables migration completed successfully")
	return gdb, nil
}

// OpenSQLite 打开 sqlite 数据库，path 为 ":memory:" 时是进程内的临时库
func OpenSQLite(path string) (*gorm.DB, error) {
	return Open(Options{Driver: "sqlite", DSN: path})
}

// IsDuplicateKey 唯一索引冲突
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "Duplicate entry")
}
