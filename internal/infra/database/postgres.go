package database

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/totegamma/momento/internal/config"
	"github.com/totegamma/momento/internal/domain"
)

func NewPostgres(dsn string) (*gorm.DB, error) {
	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags), // io writer
		logger.Config{
			SlowThreshold:             300 * time.Millisecond, // Slow SQL threshold
			LogLevel:                  logger.Warn,            // Log level
			IgnoreRecordNotFoundError: true,                   // Ignore ErrRecordNotFound error for logger
			Colorful:                  true,                   // Enable color
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormLogger,
	})
	return db, err
}

// PostgresDSN merges the store credential into the connection URL.
func PostgresDSN(conf config.Store) (string, error) {
	var missing []string
	if conf.URL == "" {
		missing = append(missing, "MOMENTO_STORE_URL")
	}
	if conf.Key == "" {
		missing = append(missing, "MOMENTO_STORE_KEY")
	}
	if len(missing) > 0 {
		return "", domain.ConfigurationError{Missing: missing}
	}

	u, err := url.Parse(conf.URL)
	if err != nil {
		return "", domain.ConfigurationError{Err: err}
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return "", domain.ConfigurationError{Err: fmt.Errorf("unsupported store url scheme %q", u.Scheme)}
	}

	username := "postgres"
	if u.User != nil && u.User.Username() != "" {
		username = u.User.Username()
	}
	u.User = url.UserPassword(username, conf.Key)

	return u.String(), nil
}
