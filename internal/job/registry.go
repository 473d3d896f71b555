package job

import (
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultTTL is how long finished and abandoned jobs stay available.
const DefaultTTL = 24 * time.Hour

// Registry holds the live jobs and purges old ones on a schedule.
type Registry struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
	cron *cron.Cron
	log  *zap.Logger
}

// NewRegistry starts a registry with an hourly cleanup of jobs older than
// ttl (DefaultTTL when ttl is 0).
func NewRegistry(ttl time.Duration, log *zap.Logger) *Registry {
	if ttl == 0 {
		ttl = DefaultTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	r := &Registry{
		jobs: map[string]*Job{},
		ttl:  ttl,
		cron: cron.New(),
		log:  log,
	}
	if _, err := r.cron.AddFunc("@hourly", r.purge); err != nil {
		panic("job: cleanup schedule: " + err.Error())
	}
	r.cron.Start()
	return r
}

// Create registers a new job under a fresh ID.
func (r *Registry) Create(name string) *Job {
	j := newJob(name)
	r.mu.Lock()
	r.jobs[j.id] = j
	r.mu.Unlock()
	r.log.Info("job created", zap.String("id", j.id), zap.String("name", name))
	return j
}

// Get returns the job with the given ID.
func (r *Registry) Get(id string) (*Job, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	return j, ok
}

// Close stops the cleanup schedule.
func (r *Registry) Close() {
	r.cron.Stop()
}

func (r *Registry) purge() {
	cutoff := time.Now().Add(-r.ttl)
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, j := range r.jobs {
		if j.created.Before(cutoff) {
			delete(r.jobs, id)
			r.log.Info("job purged", zap.String("id", id), zap.String("name", j.name))
		}
	}
}
