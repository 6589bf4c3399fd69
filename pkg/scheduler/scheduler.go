// Package scheduler 在 gocron/v2 之上按名称管理定时任务，并记录每个任务最近一次的执行情况，
// 供 /api/v1/scheduler/jobs 展示.
package scheduler

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/yeisme/spacedash/pkg/log"
	"github.com/yeisme/spacedash/pkg/metrics"
)

// refreshInterval 下次运行时间的刷新间隔.
const refreshInterval = 10 * time.Second

// JobStatus 表示任务的状态类型.
type JobStatus string

const (
	StatusScheduled JobStatus = "scheduled" // 等待下次触发
	StatusRunning   JobStatus = "running"   // 正在执行
	StatusError     JobStatus = "error"     // 最近一次执行 panic
)

// JobInfo 是任务的可观测状态.
type JobInfo struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	CronExpr     string        `json:"cron_expr"`
	Status       JobStatus     `json:"status"`
	Runs         int           `json:"runs"`
	NextRun      time.Time     `json:"next_run"`
	LastRun      time.Time     `json:"last_run"`
	LastSuccess  time.Time     `json:"last_success,omitempty"`
	LastDuration time.Duration `json:"last_duration"`
	Error        string        `json:"error,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
}

// entry 将 gocron 任务与其状态绑定.
type entry struct {
	job  gocron.Job
	info JobInfo
}

// Scheduler 包装 gocron.Scheduler，任务以名称唯一标识.
type Scheduler struct {
	cron   gocron.Scheduler
	mu     sync.RWMutex
	jobs   map[string]*entry
	byID   map[uuid.UUID]string
	logger zerolog.Logger
	stop   context.CancelFunc
}

// NewScheduler 创建调度器，opts 透传给 gocron.
func NewScheduler(opts ...gocron.SchedulerOption) (*Scheduler, error) {
	cron, err := gocron.NewScheduler(opts...)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	s := &Scheduler{
		cron:   cron,
		jobs:   make(map[string]*entry),
		byID:   make(map[uuid.UUID]string),
		logger: log.Component("scheduler"),
		stop:   cancel,
	}

	go s.refreshLoop(ctx)

	return s, nil
}

// AddCron 按五段 cron 表达式注册任务，ctx 作为每次执行的上下文传入 job.
// 同名任务只能注册一次；同一任务的执行不会重叠.
func (s *Scheduler) AddCron(name string, cronExpr string, job func(ctx context.Context), ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job with name %s already exists", name)
	}

	j, err := s.cron.NewJob(
		gocron.CronJob(cronExpr, false),
		gocron.NewTask(func(ctx context.Context) { s.run(name, job, ctx) }, ctx),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("schedule %s: %w", name, err)
	}

	next, _ := j.NextRun()

	s.jobs[name] = &entry{job: j, info: JobInfo{
		ID:        j.ID().String(),
		Name:      name,
		CronExpr:  cronExpr,
		Status:    StatusScheduled,
		NextRun:   next,
		CreatedAt: time.Now(),
	}}
	s.byID[j.ID()] = name

	s.logger.Info().Str("job", name).Str("cron", cronExpr).Time("next_run", next).Msg("job scheduled")

	return nil
}

// run 执行任务并记录耗时与结果，panic 被捕获后记为 error 状态.
func (s *Scheduler) run(name string, job func(ctx context.Context), ctx context.Context) {
	start := time.Now()
	s.update(name, func(info *JobInfo) { info.Status = StatusRunning })

	result := "ok"

	defer func() {
		took := time.Since(start)

		if r := recover(); r != nil {
			result = "panic"
			s.logger.Error().Str("job", name).Interface("panic", r).Msg("job panicked")
		}

		s.update(name, func(info *JobInfo) {
			info.Runs++
			info.LastRun = start
			info.LastDuration = took

			if result == "ok" {
				info.Status = StatusScheduled
				info.LastSuccess = start
				info.Error = ""

				return
			}

			info.Status = StatusError
			info.Error = "job panicked"
		})

		metrics.JobRuns.WithLabelValues(name, result).Inc()
		metrics.JobDuration.WithLabelValues(name).Observe(took.Seconds())
	}()

	job(ctx)
}

// update 在锁内修改任务状态，任务已移除时忽略.
func (s *Scheduler) update(name string, fn func(info *JobInfo)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.jobs[name]; ok {
		fn(&e.info)
	}
}

// Lookup 按名称或任务 ID 查找任务名.
func (s *Scheduler) Lookup(ref string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.jobs[ref]; ok {
		return ref, true
	}

	id, err := uuid.Parse(ref)
	if err != nil {
		return "", false
	}

	name, ok := s.byID[id]

	return name, ok
}

// RunNow 立即执行一次任务，不影响原有调度.
func (s *Scheduler) RunNow(name string) error {
	s.mu.RLock()
	e, exists := s.jobs[name]
	s.mu.RUnlock()

	if !exists {
		return fmt.Errorf("job with name %s does not exist", name)
	}

	return e.job.RunNow()
}

// RemoveJobByName 通过名称移除任务.
func (s *Scheduler) RemoveJobByName(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, exists := s.jobs[name]
	if !exists {
		return fmt.Errorf("job with name %s does not exist", name)
	}

	if err := s.cron.RemoveJob(e.job.ID()); err != nil {
		return err
	}

	delete(s.jobs, name)
	delete(s.byID, e.job.ID())

	s.logger.Info().Str("job", name).Msg("job removed")

	return nil
}

// GetJobInfoByName 返回任务状态的副本.
func (s *Scheduler) GetJobInfoByName(name string) (JobInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, exists := s.jobs[name]
	if !exists {
		return JobInfo{}, fmt.Errorf("job with name %s does not exist", name)
	}

	return e.info, nil
}

// GetJobInfos 返回所有任务状态，按名称排序.
func (s *Scheduler) GetJobInfos() []JobInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]JobInfo, 0, len(s.jobs))
	for _, e := range s.jobs {
		out = append(out, e.info)
	}

	slices.SortFunc(out, func(a, b JobInfo) int { return cmp.Compare(a.Name, b.Name) })

	return out
}

// Start 启动调度器.
func (s *Scheduler) Start() {
	s.logger.Info().Int("jobs", len(s.GetJobInfos())).Msg("scheduler started")
	s.cron.Start()
}

// Stop 停止调度器，等待运行中的任务结束.
func (s *Scheduler) Stop() error {
	s.stop()
	s.logger.Info().Msg("scheduler stopping")

	return s.cron.Shutdown()
}

// refreshLoop 定期从 gocron 同步下次运行时间.
func (s *Scheduler) refreshLoop(ctx context.Context) {
	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.mu.Lock()
			for _, e := range s.jobs {
				if next, err := e.job.NextRun(); err == nil {
					e.info.NextRun = next
				}
			}
			s.mu.Unlock()
		}
	}
}
