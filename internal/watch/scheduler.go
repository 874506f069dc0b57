/*
Package watch implements continuous inbox ingestion.

A filesystem watcher goroutine observes the inbox for new files, debounces
events until a file has settled, and publishes file-ready events onto a
bounded queue. A single worker goroutine consumes the queue and classifies
each file in automatic, non-interactive mode. An in-flight set keyed by
path guarantees at most one concurrent classification per path.
*/
package watch

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"notesort/internal/classify"
)

const (
	// queueSize bounds the pending file queue. When full, events are
	// dropped with a warning; the next write to the file re-queues it.
	queueSize = 256

	// defaultSettle is the debounce window when none is configured.
	defaultSettle = 2 * time.Second
)

// Classifier is the subset of the engine the scheduler drives.
type Classifier interface {
	ClassifyFile(ctx context.Context, path string, opts classify.Options) classify.Outcome
}

// Scheduler watches the inbox and feeds newly-stable files to the
// classifier sequentially.
type Scheduler struct {
	classifier Classifier
	inbox      string
	settle     time.Duration
	eligible   func(path string) bool
	onOutcome  func(classify.Outcome)

	queue    chan string
	watcher  *fsnotify.Watcher
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	mu       sync.Mutex
	timers   map[string]*time.Timer
	inflight map[string]struct{}
}

// SchedulerConfig collects the scheduler's collaborators.
type SchedulerConfig struct {
	Classifier Classifier
	Inbox      string

	// Settle is the debounce window after the last write event before a
	// file is considered stable.
	Settle time.Duration

	// Eligible filters paths by file-type eligibility.
	Eligible func(path string) bool

	// OnOutcome, if set, receives every classification outcome.
	OnOutcome func(classify.Outcome)
}

// NewScheduler creates a scheduler. Start begins watching.
func NewScheduler(cfg SchedulerConfig) *Scheduler {
	settle := cfg.Settle
	if settle <= 0 {
		settle = defaultSettle
	}
	eligible := cfg.Eligible
	if eligible == nil {
		eligible = func(string) bool { return true }
	}
	return &Scheduler{
		classifier: cfg.Classifier,
		inbox:      cfg.Inbox,
		settle:     settle,
		eligible:   eligible,
		onOutcome:  cfg.OnOutcome,
		queue:      make(chan string, queueSize),
		stopChan:   make(chan struct{}),
		timers:     make(map[string]*time.Timer),
		inflight:   make(map[string]struct{}),
	}
}

// Start begins observing the inbox and classifying stable files. It returns
// once the watcher and worker goroutines are running.
func (s *Scheduler) Start(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(s.inbox); err != nil {
		watcher.Close()
		return err
	}
	s.watcher = watcher

	s.wg.Add(2)
	go s.watchEvents()
	// The start context only governs intake; an in-flight classification
	// runs to completion even after ctx is cancelled.
	go s.processQueue(context.WithoutCancel(ctx))
	return nil
}

// Stop closes the observer and waits for any in-flight classification to
// finish. Safe to call more than once.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
		if s.watcher != nil {
			s.watcher.Close()
		}

		s.mu.Lock()
		for _, t := range s.timers {
			t.Stop()
		}
		s.mu.Unlock()

		s.wg.Wait()
	})
}

// watchEvents debounces filesystem events into file-ready enqueues.
func (s *Scheduler) watchEvents() {
	defer s.wg.Done()

	for {
		select {
		case <-s.stopChan:
			return
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) {
				continue
			}
			if !s.eligible(event.Name) {
				continue
			}
			s.debounce(event.Name)
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("Warning: watcher error: %v", err)
		}
	}
}

// debounce (re)arms the settle timer for path; the file is enqueued only
// once events stop arriving for a full settle window.
func (s *Scheduler) debounce(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.timers[path]; ok {
		t.Reset(s.settle)
		return
	}
	s.timers[path] = time.AfterFunc(s.settle, func() {
		s.enqueue(path)
	})
}

// enqueue publishes a stabilized file onto the queue unless a
// classification for the same path is already pending or running.
func (s *Scheduler) enqueue(path string) {
	s.mu.Lock()
	delete(s.timers, path)
	if _, busy := s.inflight[path]; busy {
		s.mu.Unlock()
		return
	}
	s.inflight[path] = struct{}{}
	s.mu.Unlock()

	select {
	case s.queue <- path:
	default:
		s.mu.Lock()
		delete(s.inflight, path)
		s.mu.Unlock()
		log.Printf("Warning: ingestion queue full, dropping %s", path)
	}
}

// processQueue is the single classification worker.
func (s *Scheduler) processQueue(ctx context.Context) {
	defer s.wg.Done()

	for {
		select {
		case <-s.stopChan:
			return
		case path := <-s.queue:
			outcome := s.classifier.ClassifyFile(ctx, path, classify.Options{})
			if s.onOutcome != nil {
				s.onOutcome(outcome)
			}

			s.mu.Lock()
			delete(s.inflight, path)
			s.mu.Unlock()
		}
	}
}
