package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/eslam-allam/cult-beauty/internal/catalog"
	"github.com/eslam-allam/cult-beauty/internal/extract"
	"github.com/eslam-allam/cult-beauty/internal/queue"
	"github.com/eslam-allam/cult-beauty/internal/session"
)

// SessionFactory acquires a fresh exclusive UI session for one worker. The
// returned func releases the session.
type SessionFactory func() (session.Session, func() error, error)

// Notifier observes category lifecycle transitions. Implementations must be
// safe for concurrent use.
type Notifier interface {
	CategoryCompleted(ctx context.Context, category string, rows int)
	CategoryFailed(ctx context.Context, category string, err error)
}

type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// CategoryProgress is a snapshot of one category's state during a run.
type CategoryProgress struct {
	URL    string `json:"url"`
	Name   string `json:"name"`
	Status Status `json:"status"`
	Rows   int    `json:"rows"`
	Error  string `json:"error,omitempty"`
}

// Pool runs a fixed number of workers over the category list. Each worker
// owns one exclusive session at a time; a category failing catastrophically
// loses only its own rows. Results are merged at a barrier after every
// worker finished, in submitted category order, so the reconciler sees a
// deterministic stream.
type Pool struct {
	size     int
	factory  SessionFactory
	opts     WalkerOptions
	notifier Notifier
	logger   *slog.Logger

	mu       sync.Mutex
	order    []string
	progress map[string]*CategoryProgress
}

func NewPool(size int, factory SessionFactory, opts WalkerOptions, logger *slog.Logger) *Pool {
	if size < 1 {
		size = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pool{
		size:     size,
		factory:  factory,
		opts:     opts,
		logger:   logger.With("component", "worker_pool"),
		progress: make(map[string]*CategoryProgress),
	}
}

// SetNotifier attaches an optional lifecycle observer. Must be called before
// Run.
func (p *Pool) SetNotifier(n Notifier) {
	p.notifier = n
}

// Run extracts all categories and returns the merged raw row stream.
func (p *Pool) Run(ctx context.Context, categories []string) *catalog.Table {
	q := queue.NewInMemoryQueue()

	p.mu.Lock()
	p.order = append([]string(nil), categories...)
	for i, url := range categories {
		p.progress[url] = &CategoryProgress{
			URL:    url,
			Name:   extract.CategoryName(url),
			Status: StatusPending,
		}
		q.Push(&queue.Task{ID: uuid.NewString(), CategoryURL: url, Position: i})
	}
	p.mu.Unlock()
	q.Close()

	workers := p.size
	if workers > len(categories) {
		workers = len(categories)
	}

	results := make([]*catalog.Table, len(categories))
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for {
				task, err := q.Pop(ctx)
				if err != nil {
					return
				}
				p.runCategory(ctx, worker, task, results)
			}
		}(i)
	}
	wg.Wait() // the merge barrier

	merged := catalog.NewTable()
	for _, t := range results {
		merged.AppendTable(t)
	}
	p.logger.Info("all categories merged", "rows", merged.Len())
	return merged
}

// Progress returns a snapshot in submitted category order.
func (p *Pool) Progress() []CategoryProgress {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]CategoryProgress, 0, len(p.order))
	for _, url := range p.order {
		out = append(out, *p.progress[url])
	}
	return out
}

func (p *Pool) runCategory(ctx context.Context, worker int, task *queue.Task, results []*catalog.Table) {
	log := p.logger.With("worker", worker, "category", extract.CategoryName(task.CategoryURL))

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic: %v", r)
			log.Error("category worker crashed, category data lost for this run", "error", err)
			p.setFailed(ctx, task.CategoryURL, err)
		}
	}()

	p.setStatus(task.CategoryURL, StatusRunning, 0, "")

	sess, release, err := p.factory()
	if err != nil {
		log.Error("cannot acquire session", "error", err)
		p.setFailed(ctx, task.CategoryURL, err)
		return
	}
	defer func() {
		if err := release(); err != nil {
			log.Warn("failed to release session", "error", err)
		}
	}()

	walker := NewWalker(sess, p.opts, log)
	table, err := walker.Walk(ctx, task.CategoryURL)
	if err != nil {
		log.Error("category walk failed", "error", err)
		p.setFailed(ctx, task.CategoryURL, err)
		// Keep whatever was extracted before the failure.
		results[task.Position] = table
		return
	}

	results[task.Position] = table
	p.setStatus(task.CategoryURL, StatusCompleted, table.Len(), "")
	if p.notifier != nil {
		p.notifier.CategoryCompleted(ctx, extract.CategoryName(task.CategoryURL), table.Len())
	}
}

func (p *Pool) setStatus(url string, status Status, rows int, errMsg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if prog, ok := p.progress[url]; ok {
		prog.Status = status
		prog.Rows = rows
		prog.Error = errMsg
	}
}

func (p *Pool) setFailed(ctx context.Context, url string, err error) {
	p.setStatus(url, StatusFailed, 0, err.Error())
	if p.notifier != nil {
		p.notifier.CategoryFailed(ctx, extract.CategoryName(url), err)
	}
}
