package db

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"storefront/internal/config"
	"storefront/internal/model"
)

// NewMySQL returns a connected GORM DB instance with a tuned connection pool.
// TranslateError makes unique-index violations surface as gorm.ErrDuplicatedKey.
func NewMySQL(dsn string, pool config.PoolConfig) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
		// Order items keep a product reference after the product is deleted.
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect mysql: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("mysql pool: %w", err)
	}
	if pool.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	}
	if pool.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	}
	if pool.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(pool.ConnMaxLifetime)
	}
	return db, nil
}

// Models lists every persisted model in dependency order.
func Models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.Category{},
		&model.Product{},
		&model.PromoCode{},
		&model.Order{},
		&model.OrderItem{},
	}
}

// Migrate creates or updates the schema for all models.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

// Reset drops every table, children first. Missing tables are ignored.
func Reset(db *gorm.DB) error {
	models := Models()
	for i := len(models) - 1; i >= 0; i-- {
		if err := db.Migrator().DropTable(models[i]); err != nil {
			return fmt.Errorf("drop table: %w", err)
		}
	}
	return nil
}
