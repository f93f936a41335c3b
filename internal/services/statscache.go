package services

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/teleshelf/teleshelf/internal/models"
)

// StatsCache memoizes per-owner category statistics. Every mutating
// operation invalidates the owner's entry; the purge task, which crosses
// owners, resets the whole cache.
type StatsCache struct {
	c *lru.Cache[int64, []models.CategoryStat]
}

func NewStatsCache(size int) (*StatsCache, error) {
	c, err := lru.New[int64, []models.CategoryStat](size)
	if err != nil {
		return nil, err
	}
	return &StatsCache{c: c}, nil
}

func (s *StatsCache) Get(owner int64) ([]models.CategoryStat, bool) {
	return s.c.Get(owner)
}

func (s *StatsCache) Put(owner int64, stats []models.CategoryStat) {
	s.c.Add(owner, stats)
}

func (s *StatsCache) Invalidate(owner int64) {
	s.c.Remove(owner)
}

func (s *StatsCache) Reset() {
	s.c.Purge()
}
