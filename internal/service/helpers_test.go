package service

import (
	"context"
	"encoding/json"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"Lingo_Community/internal/model"
	"Lingo_Community/internal/pkg"
	"Lingo_Community/internal/repository/sqldb"

	"gorm.io/gorm"
)

var t0 = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

const day = 24 * time.Hour

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "test.db") + "?_busy_timeout=5000"
	db, err := sqldb.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("db open: %v", err)
	}
	if err = sqldb.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func seedUser(t *testing.T, db *gorm.DB, clerkID, role string) *model.User {
	t.Helper()
	u := &model.User{ClerkUserID: clerkID, Username: clerkID, Email: clerkID + "@lingo.test", Role: role}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

// seedCard 建一个分类、一个卡组和一张卡
func seedCard(t *testing.T, db *gorm.DB, owner uint64) *model.Flashcard {
	t.Helper()
	cat := &model.Category{Description: "Vocabulary"}
	if err := db.Create(cat).Error; err != nil {
		t.Fatalf("seed category: %v", err)
	}
	set := &model.FlashcardSet{UserID: owner, CategoryID: cat.ID, Title: "Basics"}
	if err := db.Create(set).Error; err != nil {
		t.Fatalf("seed set: %v", err)
	}
	card := &model.Flashcard{SetID: set.ID, FrontText: "hola", BackText: "hello", Difficulty: "easy"}
	if err := db.Create(card).Error; err != nil {
		t.Fatalf("seed card: %v", err)
	}
	return card
}

func outboxCount(t *testing.T, db *gorm.DB, eventType string) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&model.EventOutbox{}).Where("event_type = ?", eventType).Count(&n).Error; err != nil {
		t.Fatalf("count outbox: %v", err)
	}
	return n
}

// outboxEventTime 取某类事件最新一条的 event_time
func outboxEventTime(t *testing.T, db *gorm.DB, eventType string) time.Time {
	t.Helper()
	var row model.EventOutbox
	if err := db.Where("event_type = ?", eventType).Order("id DESC").First(&row).Error; err != nil {
		t.Fatalf("load outbox %s: %v", eventType, err)
	}
	var body struct {
		EventTime time.Time `json:"event_time"`
	}
	if err := json.Unmarshal(row.Payload, &body); err != nil {
		t.Fatalf("decode outbox payload: %v", err)
	}
	return body.EventTime
}

type fakeDueCache struct {
	mu          sync.Mutex
	data        map[uint64][]byte
	ttl         map[uint64]time.Duration
	invalidated int
}

func newFakeDueCache() *fakeDueCache {
	return &fakeDueCache{data: map[uint64][]byte{}, ttl: map[uint64]time.Duration{}}
}

func (f *fakeDueCache) Get(_ context.Context, userID uint64) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.data[userID]
	return b, ok, nil
}

func (f *fakeDueCache) Set(_ context.Context, userID uint64, data []byte, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[userID] = data
	f.ttl[userID] = ttl
	return nil
}

func (f *fakeDueCache) Invalidate(_ context.Context, userID uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, userID)
	f.invalidated++
	return nil
}

// fakeLocker 单进程锁，测试用
type fakeLocker struct {
	mu    sync.Mutex
	held  map[string]string
	deny  bool
	calls int
}

func newFakeLocker() *fakeLocker {
	return &fakeLocker{held: map[string]string{}}
}

func (l *fakeLocker) Acquire(_ context.Context, name, token string, _ time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	if l.deny {
		return false, nil
	}
	if _, ok := l.held[name]; ok {
		return false, nil
	}
	l.held[name] = token
	return true, nil
}

func (l *fakeLocker) Release(_ context.Context, name, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[name] == token {
		delete(l.held, name)
	}
	return nil
}

func fixedClock() *pkg.FixedClock {
	return &pkg.FixedClock{T: t0}
}
