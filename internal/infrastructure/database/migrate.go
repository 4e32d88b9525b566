package database

import (
	"context"
	"fmt"

	"assetverse-http-service/internal/domain/models"
	"assetverse-http-service/pkg/logger"
	"assetverse-http-service/pkg/utils"

	"gorm.io/gorm"
)

// Migrate 根据迁移模式执行数据库迁移
func Migrate(db *gorm.DB, mode string) error {
	switch mode {
	case "drop":
		logger.Warning("在drop模式下运行，将删除并重建所有表")
		return DropAndRecreateTables(db)
	default:
		logger.Info("在标准模式下运行，将只添加新列和新表")
		return AutoMigrate(db)
	}
}

// AutoMigrate 自动迁移所有模型（只添加新列和新表）
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return BackfillSearchColumns(db)
}

const backfillBatchSize = 200

// searchColumn 折叠后的搜索列及其来源列
type searchColumn struct {
	model  interface{}
	source string
	target string
}

var searchColumns = []searchColumn{
	{&models.Asset{}, "name", "name_folded"},
	{&models.AssetRequest{}, "asset_name", "asset_name_folded"},
	{&models.AssetRequest{}, "requester_name", "requester_name_folded"},
	{&models.Assignment{}, "asset_name", "asset_name_folded"},
}

// BackfillSearchColumns 为搜索列上线前写入的记录补齐折叠值
func BackfillSearchColumns(db *gorm.DB) error {
	for _, col := range searchColumns {
		var lastID uint
		filled := 0
		for {
			var rows []struct {
				ID     uint
				Source string
			}
			err := db.Model(col.model).
				Select("id, "+col.source+" AS source").
				Where(col.target+" = ? AND "+col.source+" <> ? AND id > ?", "", "", lastID).
				Order("id").
				Limit(backfillBatchSize).
				Scan(&rows).Error
			if err != nil {
				return fmt.Errorf("backfill %s: %w", col.target, err)
			}
			if len(rows) == 0 {
				break
			}
			for _, row := range rows {
				err := db.Model(col.model).Where("id = ?", row.ID).
					UpdateColumn(col.target, utils.FoldKeyword(row.Source)).Error
				if err != nil {
					return fmt.Errorf("backfill %s id=%d: %w", col.target, row.ID, err)
				}
				lastID = row.ID
			}
			filled += len(rows)
		}
		if filled > 0 {
			logger.Info("已补齐搜索列 %s: %d 条", col.target, filled)
		}
	}
	return nil
}

// DropAndRecreateTables 删除并重建所有表
func DropAndRecreateTables(db *gorm.DB) error {
	if err := db.Migrator().DropTable(models.All()...); err != nil {
		return fmt.Errorf("drop tables: %w", err)
	}
	return AutoMigrate(db)
}

// SeedPackages 确保默认套餐存在
func SeedPackages(ctx context.Context, db *gorm.DB) error {
	for _, pkg := range models.DefaultPackages() {
		p := pkg
		if err := db.WithContext(ctx).Where("name = ?", p.Name).FirstOrCreate(&p).Error; err != nil {
			return fmt.Errorf("seed package %s: %w", p.Name, err)
		}
	}
	return nil
}
