package database

import (
	"context"
	"errors"
	"fmt"
	"testing"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain", errors.New("boom"), false},
		{"pg serialization", &pgconn.PgError{Code: "40001"}, true},
		{"pg deadlock wrapped", fmt.Errorf("commit: %w", &pgconn.PgError{Code: "40P01"}), true},
		{"pg unique violation", &pgconn.PgError{Code: "23505"}, false},
		{"mysql deadlock", &mysqldriver.MySQLError{Number: 1213}, true},
		{"mysql lock wait", &mysqldriver.MySQLError{Number: 1205}, true},
		{"mysql duplicate", &mysqldriver.MySQLError{Number: 1062}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := Open("sqlite", "file:"+t.Name()+"?mode=memory&cache=shared", gormlogger.Silent)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func TestRunInTransactionRetriesRetryableErrors(t *testing.T) {
	db := openTestDB(t)

	calls := 0
	err := RunInTransaction(context.Background(), db, 3, func(tx *gorm.DB) error {
		calls++
		if calls < 3 {
			return &pgconn.PgError{Code: "40001"}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("RunInTransaction: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRunInTransactionStopsOnPermanentError(t *testing.T) {
	db := openTestDB(t)

	permanent := errors.New("limit reached")
	calls := 0
	err := RunInTransaction(context.Background(), db, 5, func(tx *gorm.DB) error {
		calls++
		return permanent
	})
	if !errors.Is(err, permanent) {
		t.Fatalf("err = %v, want %v", err, permanent)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRunInTransactionGivesUpAfterMaxRetries(t *testing.T) {
	db := openTestDB(t)

	calls := 0
	err := RunInTransaction(context.Background(), db, 2, func(tx *gorm.DB) error {
		calls++
		return &mysqldriver.MySQLError{Number: 1213}
	})
	if !IsRetryable(err) {
		t.Fatalf("expected last retryable error, got %v", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestMigrateAndSeedPackages(t *testing.T) {
	db := openTestDB(t)
	if err := Migrate(db, "auto"); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	ctx := context.Background()
	if err := SeedPackages(ctx, db); err != nil {
		t.Fatalf("SeedPackages: %v", err)
	}
	// 重复执行不产生重复数据
	if err := SeedPackages(ctx, db); err != nil {
		t.Fatalf("SeedPackages again: %v", err)
	}

	var count int64
	if err := db.Table("packages").Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 3 {
		t.Errorf("packages = %d, want 3", count)
	}

	if err := Migrate(db, "drop"); err != nil {
		t.Fatalf("Migrate drop: %v", err)
	}
	if err := db.Table("packages").Count(&count).Error; err != nil {
		t.Fatalf("count after drop: %v", err)
	}
	if count != 0 {
		t.Errorf("packages after drop = %d, want 0", count)
	}
}

func TestAutoMigrateBackfillsSearchColumns(t *testing.T) {
	db := openTestDB(t)
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	// 绕过模型钩子，模拟搜索列上线前写入的记录
	err := db.Exec("INSERT INTO assets (name, type, quantity, available_quantity, owner_email) VALUES (?, ?, ?, ?, ?)",
		"Straße Bike", "returnable", 1, 1, "hr@acme.io").Error
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	if err := AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate again: %v", err)
	}
	var folded string
	if err := db.Table("assets").Select("name_folded").Where("name = ?", "Straße Bike").Scan(&folded).Error; err != nil {
		t.Fatalf("select: %v", err)
	}
	if folded != "strasse bike" {
		t.Errorf("name_folded = %q, want %q", folded, "strasse bike")
	}
}

func TestParseLogLevel(t *testing.T) {
	if ParseLogLevel("INFO") != gormlogger.Info {
		t.Error("expected info level")
	}
	if ParseLogLevel("unknown") != gormlogger.Warn {
		t.Error("expected warn as default")
	}
}
