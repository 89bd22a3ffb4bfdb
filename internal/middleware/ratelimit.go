package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// FailPolicy decides what happens to a request when Redis cannot be reached.
type FailPolicy int

const (
	FailOpen FailPolicy = iota
	FailClosed
)

var errNoRedis = errors.New("redis client is nil")

// Limit is a fixed-window budget for one kind of write.
type Limit struct {
	Name   string
	Max    int
	Window time.Duration
	Policy FailPolicy
}

// Budgets for the account and posting endpoints.
var (
	SignupLimit  = Limit{Name: "signup", Max: 3, Window: 10 * time.Minute}
	LoginLimit   = Limit{Name: "login", Max: 10, Window: 5 * time.Minute}
	PostLimit    = Limit{Name: "create_post", Max: 10, Window: time.Minute}
	CommentLimit = Limit{Name: "comment", Max: 15, Window: time.Minute}
)

func limitsBypassed() bool {
	switch os.Getenv("APP_ENV") {
	case "", "test", "development":
		return true
	}
	return false
}

func (l Limit) key(id string) string {
	return fmt.Sprintf("rl:%s:%s", l.Name, id)
}

// Allow counts one hit for id. When the budget is spent it also returns how
// long until the window resets.
func (l Limit) Allow(ctx context.Context, rdb *redis.Client, id string) (bool, time.Duration, error) {
	if limitsBypassed() {
		return true, 0, nil
	}
	if rdb == nil {
		return false, 0, errNoRedis
	}

	key := l.key(id)
	cnt, err := rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, 0, err
	}
	if cnt == 1 {
		rdb.Expire(ctx, key, l.Window)
	}
	if cnt <= int64(l.Max) {
		return true, 0, nil
	}

	ttl, err := rdb.TTL(ctx, key).Result()
	if err != nil || ttl < 0 {
		ttl = l.Window
	}
	return false, ttl, nil
}

// RateLimit enforces l per authenticated user, or per client IP for
// anonymous requests.
func RateLimit(rdb *redis.Client, l Limit) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := "ip:" + c.IP()
		if uid, ok := UserID(c); ok {
			id = fmt.Sprintf("user:%d", uid)
		}

		allowed, retryAfter, err := l.Allow(c.UserContext(), rdb, id)
		if err != nil {
			if l.Policy == FailOpen {
				return c.Next()
			}
			Logger.WarnContext(c.UserContext(), "rate limit store unavailable",
				slog.String("limit", l.Name),
				slog.String("error", err.Error()),
			)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error": "rate limit unavailable",
			})
		}

		if !allowed {
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(retryAfter.Round(time.Second)/time.Second)))
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "rate limit exceeded",
			})
		}
		return c.Next()
	}
}
