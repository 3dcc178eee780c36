package persistence

import (
	"database/sql"
	"fmt"
	"time"

	"trend-finder/infrastructure/configuration"

	_ "github.com/lib/pq"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewPostgreSQLDB opens the postgres database holding the research history
func NewPostgreSQLDB() (*sql.DB, error) {
	cfg := configuration.C.Database.Psql
	if cfg.Host == "" || cfg.Name == "" {
		return nil, fmt.Errorf("postgres host or database name is not configured")
	}
	db, err := sql.Open("postgres", postgresDSN(cfg))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func postgresDSN(cfg configuration.Db) string {
	sslmode := "disable"
	if cfg.Host != "localhost" && cfg.Host != "127.0.0.1" {
		sslmode = "require"
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, sslmode)
}

// NewRepositories opens the MySQL database holding the research presets
func NewRepositories() (*gorm.DB, error) {
	cfg := configuration.C.Database.MySql
	if cfg.Host == "" || cfg.Name == "" {
		return nil, fmt.Errorf("mysql host or database name is not configured")
	}
	db, err := gorm.Open(mysql.Open(mysqlDSN(cfg)), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	return db, nil
}

func mysqlDSN(cfg configuration.Db) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Name)
}
