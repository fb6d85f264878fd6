package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/nitinprakash96/ganeti-webmgr/pkg/log"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type ctxTxKey struct{}

type Repository struct {
	db *gorm.DB
	// rdb and mongo are optional; nil when the deployment does not configure them
	rdb    *redis.Client
	mongo  *mongo.Database
	logger *log.Logger
}

func NewRepository(
	logger *log.Logger,
	db *gorm.DB,
	rdb *redis.Client,
	mongo *mongo.Database,
) *Repository {
	return &Repository{
		db:     db,
		rdb:    rdb,
		mongo:  mongo,
		logger: logger,
	}
}

type Transaction interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

func NewTransaction(r *Repository) Transaction {
	return r
}

// DB return tx
// If you need to create a Transaction, you must call DB(ctx) and Transaction(ctx,fn)
func (r *Repository) DB(ctx context.Context) *gorm.DB {
	v := ctx.Value(ctxTxKey{})
	if v != nil {
		if tx, ok := v.(*gorm.DB); ok {
			return tx
		}
	}
	return r.db.WithContext(ctx)
}

func (r *Repository) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ctx = context.WithValue(ctx, ctxTxKey{}, tx)
		return fn(ctx)
	})
}

func NewDB(conf *viper.Viper, l *log.Logger) *gorm.DB {
	var (
		db  *gorm.DB
		err error
	)

	driver := conf.GetString("data.db.user.driver")
	dsn := conf.GetString("data.db.user.dsn")
	level := gormlogger.Warn
	if conf.GetString("env") != "prod" {
		level = gormlogger.Info
	}
	gormConf := &gorm.Config{Logger: gormlogger.Default.LogMode(level)}

	// GORM doc: https://gorm.io/docs/connecting_to_the_database.html
	switch driver {
	case "mysql":
		db, err = gorm.Open(mysql.Open(dsn), gormConf)
	case "postgres":
		db, err = gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), gormConf)
	case "sqlite":
		db, err = gorm.Open(sqlite.Open(dsn), gormConf)
	default:
		panic("unknown db driver: " + driver)
	}
	if err != nil {
		panic(err)
	}

	// Connection Pool config
	sqlDB, err := db.DB()
	if err != nil {
		panic(err)
	}
	if driver == "sqlite" {
		// a single writer keeps the in-flight index consistent
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}
	l.Info("database connected", zap.String("driver", driver))
	return db
}

// NewRedis returns nil when data.redis.addr is not set.
func NewRedis(conf *viper.Viper) *redis.Client {
	addr := conf.GetString("data.redis.addr")
	if addr == "" {
		return nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: conf.GetString("data.redis.password"),
		DB:       conf.GetInt("data.redis.db"),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := rdb.Ping(ctx).Result()
	if err != nil {
		panic(fmt.Sprintf("redis error: %s", err.Error()))
	}

	return rdb
}

// NewMongo returns nil when data.mongo.uri is not set.
func NewMongo(conf *viper.Viper) *mongo.Database {
	uri := conf.GetString("data.mongo.uri")
	if uri == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		panic(fmt.Sprintf("mongo error: %s", err.Error()))
	}
	if err = client.Ping(ctx, nil); err != nil {
		panic(fmt.Sprintf("mongo error: %s", err.Error()))
	}
	name := conf.GetString("data.mongo.database")
	if name == "" {
		name = "ganeti_webmgr"
	}
	return client.Database(name)
}
