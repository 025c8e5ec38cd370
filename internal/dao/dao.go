// Package dao 实现数据访问层
package dao

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/haierkeys/fast-note-share-service/pkg/fileurl"
	"github.com/haierkeys/fast-note-share-service/pkg/util"

	"github.com/glebarez/sqlite"
	"github.com/haierkeys/gormTracing"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Type            string // sqlite / mysql / postgres
	Path            string // SQLite 数据库文件路径
	UserName        string
	Password        string
	Host            string // host:port
	Name            string
	TablePrefix     string
	AutoMigrate     bool
	Charset         string
	ParseTime       bool
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime string
	ConnMaxIdleTime string
	RunMode         string
}

// Dao wraps the database handle and migrates each table lazily on first use
// Dao 封装数据库连接，每张表在首次使用时惰性迁移
type Dao struct {
	db          *gorm.DB
	logger      *zap.Logger
	autoMigrate bool
	onceKeys    sync.Map // map[string]*sync.Once
}

// New 创建 Dao 实例
func New(db *gorm.DB, autoMigrate bool, logger *zap.Logger) *Dao {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dao{db: db, autoMigrate: autoMigrate, logger: logger}
}

// DB 返回底层 gorm 连接
func (d *Dao) DB() *gorm.DB {
	return d.db
}

// UseWithOnceFunc returns a context-bound session, running fn exactly once per key
// beforehand (table migration).
// UseWithOnceFunc 返回绑定 ctx 的会话，并保证每个 key 的 fn（建表迁移）只执行一次
func (d *Dao) UseWithOnceFunc(ctx context.Context, fn func(*gorm.DB), key string) *gorm.DB {
	if d.autoMigrate && fn != nil {
		once, _ := d.onceKeys.LoadOrStore(key, &sync.Once{})
		once.(*sync.Once).Do(func() {
			fn(d.db)
		})
	}
	return d.db.WithContext(ctx)
}

// Close 关闭数据库连接
func (d *Dao) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// NewDBEngineWithConfig opens the configured database with pooling and tracing
// NewDBEngineWithConfig 按配置打开数据库，并设置连接池与链路追踪
func NewDBEngineWithConfig(c DatabaseConfig, lg *zap.Logger) (*gorm.DB, error) {
	dialector, err := dialectorFor(c)
	if err != nil {
		return nil, err
	}

	logMode := logger.Silent
	if c.RunMode == "debug" {
		logMode = logger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logMode),
		TranslateError: true,
		NamingStrategy: schema.NamingStrategy{
			TablePrefix:   c.TablePrefix,
			SingularTable: true,
		},
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	if c.Type == "sqlite" {
		// SQLite 只允许单写者，限制为单连接避免 "database is locked"
		sqlDB.SetMaxOpenConns(1)
	} else {
		if c.MaxIdleConns > 0 {
			sqlDB.SetMaxIdleConns(c.MaxIdleConns)
		}
		if c.MaxOpenConns > 0 {
			sqlDB.SetMaxOpenConns(c.MaxOpenConns)
		}
	}
	sqlDB.SetConnMaxLifetime(util.ParseDurationOr(c.ConnMaxLifetime, 30*time.Minute))
	sqlDB.SetConnMaxIdleTime(util.ParseDurationOr(c.ConnMaxIdleTime, 10*time.Minute))

	if err := db.Use(&gormTracing.OpentracingPlugin{}); err != nil && lg != nil {
		lg.Warn("gorm tracing plugin not registered", zap.Error(err))
	}

	if lg != nil {
		lg.Info("database connected", zap.String("type", c.Type))
	}
	return db, nil
}

func dialectorFor(c DatabaseConfig) (gorm.Dialector, error) {
	switch c.Type {
	case "mysql":
		charset := c.Charset
		if charset == "" {
			charset = "utf8mb4"
		}
		return mysql.Open(fmt.Sprintf("%s:%s@tcp(%s)/%s?charset=%s&parseTime=%t&loc=Local",
			c.UserName, c.Password, c.Host, c.Name, charset, c.ParseTime,
		)), nil
	case "postgres":
		host, port := c.Host, "5432"
		if h, p, err := net.SplitHostPort(c.Host); err == nil {
			host, port = h, p
		}
		return postgres.Open(fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=Local",
			host, port, c.UserName, c.Password, c.Name,
		)), nil
	case "sqlite", "":
		if c.Path != ":memory:" && !strings.HasPrefix(c.Path, "file:") {
			if !fileurl.IsExist(filepath.Dir(c.Path)) {
				if err := fileurl.CreatePath(c.Path, os.ModePerm); err != nil {
					return nil, err
				}
			}
		}
		return sqlite.Open(c.Path), nil
	}
	return nil, fmt.Errorf("unsupported database type: %s", c.Type)
}
