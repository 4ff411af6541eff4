package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"tasktimer/backend/internal/cache"
	"tasktimer/backend/internal/models"
	"tasktimer/backend/internal/timeutil"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

const unknownTaskTitle = "Unknown"

type SummaryQuery struct {
	Period    string
	StartDate string
	EndDate   string
}

type TaskTimeSummary struct {
	TaskID       uuid.UUID `json:"task_id"`
	TaskTitle    string    `json:"task_title"`
	TotalSeconds float64   `json:"total_seconds"`
	EntryCount   int       `json:"entry_count"`
}

type PeriodSummary struct {
	Period        string            `json:"period"`
	StartDate     time.Time         `json:"start_date"`
	EndDate       time.Time         `json:"end_date"`
	TotalSeconds  float64           `json:"total_seconds"`
	TaskSummaries []TaskTimeSummary `json:"task_summaries"`
}

type SummaryService interface {
	Summarize(db *gorm.DB, userID uuid.UUID, query SummaryQuery) (*PeriodSummary, error)
}

type SummaryServiceImpl struct {
	summaries *SummaryCache
	now       func() time.Time
}

func NewSummaryService(summaries *SummaryCache) *SummaryServiceImpl {
	return &SummaryServiceImpl{summaries: summaries, now: time.Now}
}

func (s *SummaryServiceImpl) WithClock(now func() time.Time) *SummaryServiceImpl {
	s.now = now
	return s
}

func (s *SummaryServiceImpl) Summarize(db *gorm.DB, userID uuid.UUID, query SummaryQuery) (*PeriodSummary, error) {
	window, err := timeutil.ResolvePeriod(query.Period, query.StartDate, query.EndDate, s.now())
	if err != nil {
		return nil, err
	}

	ctx := db.Statement.Context
	key := s.summaries.key(userID, window)

	var cached PeriodSummary
	if s.summaries.get(ctx, key, &cached) {
		return &cached, nil
	}

	userTasks := db.Model(&models.Task{}).Select("id").Where("user_id = ?", userID)

	var entries []models.TimeEntry
	if err := db.
		Where("task_id IN (?)", userTasks).
		Where("start_time >= ? AND start_time < ?", window.From, window.To).
		Where("end_time IS NOT NULL").
		Order("start_time ASC").
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to load time entries: %w", err)
	}

	titles, err := taskTitles(db, entries)
	if err != nil {
		return nil, err
	}

	total, perTask := AggregateEntries(entries, titles)
	summary := &PeriodSummary{
		Period:        window.Period,
		StartDate:     window.From,
		EndDate:       window.To,
		TotalSeconds:  total,
		TaskSummaries: perTask,
	}

	s.summaries.put(ctx, key, summary)
	return summary, nil
}

func taskTitles(db *gorm.DB, entries []models.TimeEntry) (map[uuid.UUID]string, error) {
	titles := make(map[uuid.UUID]string)
	if len(entries) == 0 {
		return titles, nil
	}

	seen := make(map[uuid.UUID]bool)
	var ids []uuid.UUID
	for _, e := range entries {
		if !seen[e.TaskID] {
			seen[e.TaskID] = true
			ids = append(ids, e.TaskID)
		}
	}

	var tasks []models.Task
	if err := db.Select("id", "title").Where("id IN ?", ids).Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("failed to load task titles: %w", err)
	}
	for _, t := range tasks {
		titles[t.ID] = t.Title
	}
	return titles, nil
}

// AggregateEntries sums stopped entries per task, keeping tasks in the
// order they are first seen. Running entries are skipped and tasks absent
// from titles are labelled "Unknown".
func AggregateEntries(entries []models.TimeEntry, titles map[uuid.UUID]string) (float64, []TaskTimeSummary) {
	perTask := []TaskTimeSummary{}
	index := make(map[uuid.UUID]int)
	total := 0.0

	for _, e := range entries {
		if e.IsRunning() {
			continue
		}

		duration := 0.0
		if e.DurationSeconds != nil {
			duration = *e.DurationSeconds
		}
		total += duration

		i, ok := index[e.TaskID]
		if !ok {
			title, found := titles[e.TaskID]
			if !found {
				title = unknownTaskTitle
			}
			perTask = append(perTask, TaskTimeSummary{TaskID: e.TaskID, TaskTitle: title})
			i = len(perTask) - 1
			index[e.TaskID] = i
		}
		perTask[i].TotalSeconds += duration
		perTask[i].EntryCount++
	}

	return total, perTask
}

// SummaryCache stores computed summaries per user and window. A nil
// SummaryCache disables caching.
//
// Keys carry a per-user generation that Invalidate advances. A summary
// computed from rows read before an invalidation is stored under the old
// generation, where no later lookup will find it.
type SummaryCache struct {
	cache cache.Cache
	ttl   time.Duration

	mu          sync.Mutex
	generations map[uuid.UUID]uint64
}

func NewSummaryCache(c cache.Cache, ttl time.Duration) *SummaryCache {
	if c == nil {
		return nil
	}
	return &SummaryCache{cache: c, ttl: ttl, generations: make(map[uuid.UUID]uint64)}
}

func (s *SummaryCache) key(userID uuid.UUID, w timeutil.Window) string {
	if s == nil {
		return ""
	}
	s.mu.Lock()
	gen := s.generations[userID]
	s.mu.Unlock()
	return summaryKey(userID, gen, w)
}

func summaryPrefix(userID uuid.UUID) string {
	return "summary:" + userID.String() + ":"
}

func summaryKey(userID uuid.UUID, gen uint64, w timeutil.Window) string {
	return fmt.Sprintf("%s%d:%s:%s:%s", summaryPrefix(userID), gen, w.Period,
		w.From.Format(time.RFC3339), w.To.Format(time.RFC3339))
}

func (s *SummaryCache) get(ctx context.Context, key string, dest *PeriodSummary) bool {
	if s == nil {
		return false
	}
	return s.cache.Get(ctx, key, dest) == nil
}

func (s *SummaryCache) put(ctx context.Context, key string, summary *PeriodSummary) {
	if s == nil {
		return
	}
	if err := s.cache.Set(ctx, key, summary, s.ttl); err != nil {
		log.Printf("Failed to cache summary %s: %v", key, err)
	}
}

// Invalidate drops every cached summary of the user.
func (s *SummaryCache) Invalidate(ctx context.Context, userID uuid.UUID) {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.generations[userID]++
	s.mu.Unlock()

	if err := s.cache.DeletePrefix(ctx, summaryPrefix(userID)); err != nil {
		log.Printf("Failed to invalidate summaries for user %s: %v", userID, err)
	}
}
