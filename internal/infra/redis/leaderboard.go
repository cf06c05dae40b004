package redis

import (
	"context"

	"quiz-engine/internal/domain"

	"github.com/redis/go-redis/v9"
)

// Leaderboard keeps each taker's best percentage in a sorted set per quiz:
// ZADD quiz:{quizID}:leaderboard GT {percentage} {userID}
type Leaderboard struct {
	client *redis.Client
}

func NewLeaderboard(client *redis.Client) *Leaderboard {
	return &Leaderboard{client: client}
}

func (l *Leaderboard) Record(ctx context.Context, quizID, userID string, percentage int) error {
	return l.client.ZAddArgs(ctx, l.key(quizID), redis.ZAddArgs{
		GT:      true,
		Members: []redis.Z{{Score: float64(percentage), Member: userID}},
	}).Err()
}

// Top returns the best entries, highest first; limit <= 0 returns all.
func (l *Leaderboard) Top(ctx context.Context, quizID string, limit int) ([]domain.LeaderboardEntry, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}
	members, err := l.client.ZRevRangeWithScores(ctx, l.key(quizID), 0, stop).Result()
	if err != nil {
		return nil, err
	}
	entries := make([]domain.LeaderboardEntry, 0, len(members))
	for _, m := range members {
		userID, _ := m.Member.(string)
		entries = append(entries, domain.LeaderboardEntry{UserID: userID, Percentage: int(m.Score)})
	}
	return entries, nil
}

func (l *Leaderboard) key(quizID string) string {
	return "quiz:" + quizID + ":leaderboard"
}
