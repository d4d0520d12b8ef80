package db

import (
	"fmt"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"llamachat/internal/chat"
	"llamachat/internal/models"
	"llamachat/internal/stats"
)

// Connect opens the database and migrates the schema.
func Connect(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "mysql":
		dialector = mysql.Open(dsn)
	case "", "sqlite":
		dialector = gormsqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("db: unsupported driver %q", driver)
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}

	if err := gdb.AutoMigrate(
		&models.User{},
		&models.Session{},
		&chat.Chat{},
		&chat.Message{},
		&stats.Request{},
	); err != nil {
		return nil, err
	}
	return gdb, nil
}
