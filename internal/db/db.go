// Package db opens the backend database.
package db

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// Connect opens a gorm connection for the configured driver: "sqlite"
// (default, file path DSN) or "mysql" (full DSN).
func Connect(driver, dsn string) (*gorm.DB, error) {
	switch driver {
	case "", "sqlite":
		if dir := filepath.Dir(dsn); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, err
			}
		}
		return gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	case "mysql":
		return gorm.Open(mysql.Open(dsn), &gorm.Config{})
	default:
		return nil, fmt.Errorf("db: unsupported driver %q", driver)
	}
}
