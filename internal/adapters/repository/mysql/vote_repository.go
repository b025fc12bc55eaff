package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/waterpoll/internal/core/domain"
	"github.com/vncsmyrnk/waterpoll/internal/core/ports"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const eachVoteBatchSize = 500

type voteModel struct {
	ID        string    `gorm:"type:char(36);primaryKey"`
	Choice    string    `gorm:"type:varchar(3);not null;index;check:chk_votes_choice,choice IN ('yes','no')"`
	CreatedAt time.Time `gorm:"not null"`
}

func (voteModel) TableName() string {
	return "votes"
}

// Open connects to MySQL and migrates the votes table. The returned *sql.DB
// is the pool behind the gorm handle and is what callers close.
func Open(dsn string) (*gorm.DB, *sql.DB, error) {
	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: 2 * time.Second,
			LogLevel:      logger.Warn,
		},
	)

	return open(mysql.Open(dsn), &gorm.Config{
		Logger: newLogger,
	})
}

func open(dialector gorm.Dialector, config *gorm.Config) (*gorm.DB, *sql.DB, error) {
	db, err := gorm.Open(dialector, config)
	if err != nil {
		closePool(db)
		return nil, nil, fmt.Errorf("failed to connect to mysql: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		closePool(db)
		return nil, nil, fmt.Errorf("failed to get mysql connection pool: %w", err)
	}

	if err := db.AutoMigrate(&voteModel{}); err != nil {
		sqlDB.Close()
		return nil, nil, fmt.Errorf("failed to migrate votes table: %w", err)
	}
	return db, sqlDB, nil
}

// closePool releases whatever connections a failed open left behind.
func closePool(db *gorm.DB) {
	if db == nil || db.ConnPool == nil {
		return
	}
	if closer, ok := db.ConnPool.(io.Closer); ok {
		closer.Close()
	}
}

type voteRepository struct {
	db *gorm.DB
}

func NewVoteRepository(db *gorm.DB) ports.VoteRepository {
	return &voteRepository{
		db: db,
	}
}

func (r *voteRepository) SaveVote(ctx context.Context, vote *domain.Vote) error {
	model := voteModel{
		ID:        vote.ID.String(),
		Choice:    string(vote.Choice),
		CreatedAt: vote.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return fmt.Errorf("failed to save vote: %w", err)
	}
	return nil
}

func (r *voteRepository) CountByChoice(ctx context.Context) (domain.Tally, error) {
	var rows []struct {
		Choice string
		Count  int64
	}
	err := r.db.WithContext(ctx).
		Model(&voteModel{}).
		Select("choice, COUNT(*) AS count").
		Group("choice").
		Scan(&rows).Error
	if err != nil {
		return domain.Tally{}, fmt.Errorf("failed to count votes: %w", err)
	}

	var tally domain.Tally
	for _, row := range rows {
		switch domain.Choice(row.Choice) {
		case domain.ChoiceYes:
			tally.Yes = row.Count
		case domain.ChoiceNo:
			tally.No = row.Count
		}
	}
	return tally, nil
}

// EachVote walks the log in primary key batches so a large table is never
// held in memory at once.
func (r *voteRepository) EachVote(ctx context.Context, fn func(*domain.Vote) error) error {
	var models []voteModel
	err := r.db.WithContext(ctx).FindInBatches(&models, eachVoteBatchSize, func(_ *gorm.DB, _ int) error {
		for _, m := range models {
			id, err := uuid.Parse(m.ID)
			if err != nil {
				return fmt.Errorf("invalid vote id %q: %w", m.ID, err)
			}
			if err := fn(&domain.Vote{ID: id, Choice: domain.Choice(m.Choice), CreatedAt: m.CreatedAt}); err != nil {
				return err
			}
		}
		return nil
	}).Error
	if err != nil {
		return fmt.Errorf("failed to list votes: %w", err)
	}
	return nil
}

func (r *voteRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
