package sqldb

import (
	"fmt"

	"Lingo_Community/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// InitDB 初始化全局连接
func InitDB(driver, dsn string) error {
	db, err := Open(driver, dsn)
	if err != nil {
		return err
	}
	DB = db
	return nil
}

func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "mysql":
		dialector = mysql.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported db driver %q", driver)
	}
	return gorm.Open(dialector, &gorm.Config{
		TranslateError:                           true,
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   logger.Default.LogMode(logger.Warn),
	})
}

// AutoMigrate 自动建表（开发阶段 OK）
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Category{},
		&model.FlashcardSet{},
		&model.Flashcard{},
		&model.Progress{},
		&model.Community{},
		&model.CommunityMember{},
		&model.Post{},
		&model.Comment{},
		&model.PostLike{},
		&model.Report{},
		&model.ModerationAudit{},
		&model.EventOutbox{},
		&model.Quiz{},
		&model.QuizQuestion{},
		&model.QuizChoice{},
		&model.QuizMatchPair{},
		&model.QuizAttempt{},
		&model.Video{},
		&model.VideoPlaylist{},
		&model.VideoPlaylistItem{},
		&model.VideoProgress{},
	)
}
