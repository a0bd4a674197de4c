package repo

import (
	"FieldScribe/internal/model"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

// DefaultSQLitePath используется, когда DSN не задан.
const DefaultSQLitePath = "fieldscribe.db"

// InitDB открывает БД по DSN и накатывает схему.
// postgres:// и postgresql:// (а также key=value DSN с host=) уходят в PostgreSQL,
// всё остальное считается путём к файлу SQLite (modernc.org/sqlite, без cgo).
// Логи gorm идут в глобальный zap-логгер.
func InitDB(dsn string) (*gorm.DB, error) {
	return Open(dsn, NewGormLogger(zap.L()))
}

// NewGormLogger направляет предупреждения gorm в zap.
// Отсутствие строки для репозиториев обычный результат поиска, такие ошибки не пишутся.
func NewGormLogger(l *zap.Logger) logger.Interface {
	return logger.New(zap.NewStdLog(l.Named("gorm")), logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

// Open — InitDB с явным логгером gorm.
func Open(dsn string, gormLogger logger.Interface) (*gorm.DB, error) {
	dialector := newDialector(dsn)
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate создаёт таблицы всех моделей.
func Migrate(db *gorm.DB) error {
	// связующая таблица с собственной моделью (created_at у строки связи)
	if err := db.SetupJoinTable(&model.Entry{}, "Tags", &model.EntryTag{}); err != nil {
		return fmt.Errorf("setup entry_tags: %w", err)
	}
	if err := db.AutoMigrate(
		&model.User{},
		&model.Tag{},
		&model.Entry{},
		&model.EntryTag{},
		&model.Media{},
		&model.AnalysisResult{},
	); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return nil
}

func newDialector(dsn string) gorm.Dialector {
	if isPostgresDSN(dsn) {
		return postgres.New(postgres.Config{DSN: dsn})
	}
	if dsn == "" {
		dsn = DefaultSQLitePath
	}
	return gormsqlite.Dialector{DriverName: "sqlite", DSN: withSQLitePragmas(dsn)}
}

func isPostgresDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") ||
		strings.HasPrefix(dsn, "postgresql://") ||
		strings.Contains(dsn, "host=")
}

// withSQLitePragmas включает внешние ключи и busy timeout, если они не заданы явно.
func withSQLitePragmas(dsn string) string {
	if strings.Contains(dsn, "_pragma=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	if !strings.HasPrefix(dsn, "file:") {
		dsn = "file:" + dsn
	}
	return dsn + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}
