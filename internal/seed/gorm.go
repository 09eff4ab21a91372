package seed

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver (pgx)
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"triagedesk/dashboard/internal/config"
)

// 支持的数据库类型
const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// GormRepository 基于 GORM 的 Repository（支持 MySQL 5.7+ 和 PostgreSQL）
type GormRepository struct {
	db     *sql.DB
	gormDB *gorm.DB
	driver string
}

// Open 连接数据库，类型为空时使用 PostgreSQL
func Open(ctx context.Context, cfg config.DatabaseConfig) (*GormRepository, error) {
	driver := cfg.Type
	if driver == "" {
		driver = DriverPostgres
	}
	if cfg.DSN == "" {
		return nil, errors.New("database DSN is required")
	}

	var (
		db        *sql.DB
		dialector gorm.Dialector
		err       error
	)
	switch driver {
	case DriverPostgres:
		db, err = sql.Open("pgx", cfg.DSN)
		if err == nil {
			dialector = postgres.New(postgres.Config{Conn: db})
		}
	case DriverMySQL:
		db, err = sql.Open("mysql", cfg.DSN)
		if err == nil {
			dialector = mysql.New(mysql.Config{Conn: db})
		}
	default:
		return nil, fmt.Errorf("unsupported database driver: %s (supported: mysql, postgres)", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize GORM: %w", err)
	}

	return &GormRepository{db: db, gormDB: gormDB, driver: driver}, nil
}

// Driver 数据库类型
func (r *GormRepository) Driver() string {
	return r.driver
}

// Close 关闭数据库连接
func (r *GormRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Health 检查数据库连接
func (r *GormRepository) Health(ctx context.Context) error {
	if r.db == nil {
		return errors.New("database connection is nil")
	}
	return r.db.PingContext(ctx)
}

// Migrate 自动建表和索引
func (r *GormRepository) Migrate(ctx context.Context) error {
	return r.gormDB.WithContext(ctx).AutoMigrate(
		&EmailRecord{},
		&TeamRecord{},
		&UserRecord{},
	)
}

func (r *GormRepository) TeamExists(ctx context.Context, name string) (bool, error) {
	var count int64
	err := r.gormDB.WithContext(ctx).Model(&TeamRecord{}).Where("name = ?", name).Count(&count).Error
	return count > 0, err
}

func (r *GormRepository) CreateTeam(ctx context.Context, team *TeamRecord) error {
	return r.gormDB.WithContext(ctx).Create(team).Error
}

func (r *GormRepository) UserExists(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.gormDB.WithContext(ctx).Model(&UserRecord{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

func (r *GormRepository) CreateUser(ctx context.Context, user *UserRecord) error {
	return r.gormDB.WithContext(ctx).Create(user).Error
}
