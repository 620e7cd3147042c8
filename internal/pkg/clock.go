package pkg

import "time"

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// FixedClock 测试用
type FixedClock struct {
	T time.Time
}

func (c *FixedClock) Now() time.Time { return c.T }

func (c *FixedClock) Advance(d time.Duration) { c.T = c.T.Add(d) }
