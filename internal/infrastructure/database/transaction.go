package database

import (
	"context"
	"errors"
	"time"

	"assetverse-http-service/pkg/logger"
	"assetverse-http-service/pkg/utils"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const (
	defaultMaxRetries = 5
	baseBackoff       = 10 * time.Millisecond
)

// RunInTransaction 在单个事务中执行 fn。
// 事务因序列化失败或死锁被数据库中止时，按平方退避加随机抖动重试整个事务。
func RunInTransaction(ctx context.Context, db *gorm.DB, maxRetries int, fn func(tx *gorm.DB) error) error {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	var err error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		err = db.WithContext(ctx).Transaction(fn)
		if err == nil || !IsRetryable(err) {
			return err
		}

		if attempt > 1 {
			logger.Warning("事务第 %d 次重试: %v", attempt, err)
		}
		backoff := time.Duration(attempt*attempt)*baseBackoff + utils.Jitter(baseBackoff)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	return err
}

// IsRetryable 判断错误是否为可重试的并发冲突
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// 40001 serialization_failure, 40P01 deadlock_detected
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}

	var myErr *mysqldriver.MySQLError
	if errors.As(err, &myErr) {
		// 1213 死锁, 1205 锁等待超时
		return myErr.Number == 1213 || myErr.Number == 1205
	}

	var liteErr *msqlite.Error
	if errors.As(err, &liteErr) {
		primary := liteErr.Code() & 0xff
		return primary == sqlite3.SQLITE_BUSY || primary == sqlite3.SQLITE_LOCKED
	}
	return false
}

// ForUpdate 为查询加行锁。SQLite 不支持 FOR UPDATE，其写事务本身是串行的。
func ForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}
