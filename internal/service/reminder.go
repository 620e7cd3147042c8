package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"Lingo_Community/internal/model"
	"Lingo_Community/internal/pkg"
	"Lingo_Community/internal/repository/sqldb"

	"gorm.io/gorm"
)

// ErrNoAddress 用户没有这个渠道的地址，不算发送成功
var ErrNoAddress = errors.New("no address for this channel")

// Notifier 到期提醒的一个发送渠道
type Notifier interface {
	Name() string
	Notify(ctx context.Context, u *model.User, due int) error
}

// ReminderMarker 同一用户同一天只提醒一次
type ReminderMarker interface {
	MarkReminded(ctx context.Context, userID uint64, day time.Time) (bool, error)
	Unmark(ctx context.Context, userID uint64, day time.Time) error
}

type EmailNotifier struct {
	cfg pkg.SMTPConfig
}

func NewEmailNotifier(cfg pkg.SMTPConfig) *EmailNotifier {
	return &EmailNotifier{cfg: cfg}
}

func (n *EmailNotifier) Name() string { return "email" }

func (n *EmailNotifier) Notify(_ context.Context, u *model.User, due int) error {
	if u.Email == "" {
		return ErrNoAddress
	}
	return pkg.SendEmail(n.cfg, u.Email, "Flashcards due for review", pkg.ReminderHTML(u.Username, due))
}

type TelegramNotifier struct {
	client *pkg.TelegramClient
}

func NewTelegramNotifier(c *pkg.TelegramClient) *TelegramNotifier {
	return &TelegramNotifier{client: c}
}

func (n *TelegramNotifier) Name() string { return "telegram" }

func (n *TelegramNotifier) Notify(_ context.Context, u *model.User, due int) error {
	if u.TelegramChatID == nil {
		return ErrNoAddress
	}
	return n.client.SendText(*u.TelegramChatID, fmt.Sprintf("You have %d flashcard(s) due for review.", due))
}

type ReminderService struct {
	progress  *sqldb.ProgressRepository
	users     *sqldb.UserRepository
	notifiers []Notifier
	marker    ReminderMarker
	clock     pkg.Clock
}

func NewReminderService(db *gorm.DB, clock pkg.Clock, marker ReminderMarker, notifiers ...Notifier) *ReminderService {
	if clock == nil {
		clock = pkg.SystemClock{}
	}
	return &ReminderService{
		progress:  &sqldb.ProgressRepository{DB: db},
		users:     &sqldb.UserRepository{DB: db},
		notifiers: notifiers,
		marker:    marker,
		clock:     clock,
	}
}

// RunOnce 给所有有到期卡片的用户发提醒，返回成功提醒的用户数
func (s *ReminderService) RunOnce(ctx context.Context) int {
	if len(s.notifiers) == 0 {
		return 0
	}
	now := s.clock.Now()
	counts, err := s.progress.DueCounts(ctx, now)
	if err != nil {
		log.Printf("reminder due counts err: %v", err)
		return 0
	}
	if len(counts) == 0 {
		return 0
	}

	ids := make([]uint64, 0, len(counts))
	due := make(map[uint64]int, len(counts))
	for _, c := range counts {
		ids = append(ids, c.UserID)
		due[c.UserID] = int(c.Due)
	}
	users, err := s.users.ListByIDs(ctx, ids)
	if err != nil {
		log.Printf("reminder list users err: %v", err)
		return 0
	}

	sent := 0
	for i := range users {
		u := &users[i]
		if s.marker != nil {
			ok, err := s.marker.MarkReminded(ctx, u.ID, now)
			if err != nil || !ok {
				continue
			}
		}
		if s.notify(ctx, u, due[u.ID]) {
			sent++
			continue
		}
		if s.marker != nil {
			_ = s.marker.Unmark(ctx, u.ID, now)
		}
	}
	log.Printf("reminder run: %d users due, %d notified", len(users), sent)
	return sent
}

// notify 任一渠道成功即算提醒到
func (s *ReminderService) notify(ctx context.Context, u *model.User, due int) bool {
	ok := false
	for _, n := range s.notifiers {
		err := n.Notify(ctx, u, due)
		if errors.Is(err, ErrNoAddress) {
			continue
		}
		if err != nil {
			log.Printf("reminder %s user=%d err: %v", n.Name(), u.ID, err)
			continue
		}
		ok = true
	}
	return ok
}
