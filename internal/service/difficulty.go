package service

import (
	"fmt"
	"time"
)

// Difficulty 复习时用户给出的评分
type Difficulty int

const (
	Hard Difficulty = 1
	Good Difficulty = 2
	Easy Difficulty = 3
)

var reviewIntervalDays = map[Difficulty]int{
	Hard: 1,
	Good: 3,
	Easy: 5,
}

func (d Difficulty) String() string {
	switch d {
	case Hard:
		return "Hard"
	case Good:
		return "Good"
	case Easy:
		return "Easy"
	default:
		return fmt.Sprintf("Difficulty(%d)", int(d))
	}
}

func (d Difficulty) IsValid() bool {
	_, ok := reviewIntervalDays[d]
	return ok
}

// IntervalFor 固定查表，不做 SM-2 式的自适应；未知评分按 1 天
func IntervalFor(d Difficulty) time.Duration {
	days, ok := reviewIntervalDays[d]
	if !ok {
		days = 1
	}
	return time.Duration(days) * 24 * time.Hour
}

// NextReview 纯函数 (now, difficulty) -> nextReview
func NextReview(now time.Time, d Difficulty) time.Time {
	return now.Add(IntervalFor(d))
}
