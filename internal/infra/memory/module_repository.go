package memory

import (
	"context"
	"math/rand"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"suraksha-sathi/internal/domain"
)

// ModuleLoader fetches the module catalog from a backing store.
type ModuleLoader interface {
	LoadModules(ctx context.Context) ([]domain.Module, error)
}

// ModuleRepository caches the module catalog with TTL to avoid repeated
// backing-store hits. The catalog is read-only reference data, so a single
// cache entry covers the whole set.
type ModuleRepository struct {
	loader ModuleLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu        sync.RWMutex
	modules   []domain.Module
	expiresAt time.Time
}

func NewModuleRepository(loader ModuleLoader, ttl time.Duration) *ModuleRepository {
	return &ModuleRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *ModuleRepository) Modules(ctx context.Context) ([]domain.Module, error) {
	now := r.clock()

	r.mu.RLock()
	if r.modules != nil && r.expiresAt.After(now) {
		modules := r.modules
		r.mu.RUnlock()
		return modules, nil
	}
	r.mu.RUnlock()

	result, err, _ := r.sf.Do("modules", func() (interface{}, error) {
		now := r.clock()
		r.mu.RLock()
		if r.modules != nil && r.expiresAt.After(now) {
			modules := r.modules
			r.mu.RUnlock()
			return modules, nil
		}
		r.mu.RUnlock()

		modules, err := r.loader.LoadModules(ctx)
		if err != nil {
			return nil, err
		}
		sort.Slice(modules, func(i, j int) bool { return modules[i].ID < modules[j].ID })

		r.mu.Lock()
		r.modules = modules
		r.expiresAt = now.Add(r.ttlWithJitter())
		r.mu.Unlock()
		return modules, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Module), nil
}

func (r *ModuleRepository) Module(ctx context.Context, id string) (domain.Module, error) {
	modules, err := r.Modules(ctx)
	if err != nil {
		return domain.Module{}, err
	}
	for _, m := range modules {
		if m.ID == id {
			return m, nil
		}
	}
	return domain.Module{}, domain.ErrModuleNotFound
}

func (r *ModuleRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticModuleLoader serves a fixed catalog (tests and dev mode).
type StaticModuleLoader struct {
	modules []domain.Module
}

func NewStaticModuleLoader(modules []domain.Module) *StaticModuleLoader {
	return &StaticModuleLoader{modules: modules}
}

func (l *StaticModuleLoader) LoadModules(_ context.Context) ([]domain.Module, error) {
	return l.modules, nil
}

// DrillCatalog is a static in-memory drill-scenario catalog.
type DrillCatalog struct {
	drills []domain.DrillScenario
}

func NewDrillCatalog(drills []domain.DrillScenario) *DrillCatalog {
	return &DrillCatalog{drills: drills}
}

func (c *DrillCatalog) Drill(_ context.Context, id string) (domain.DrillScenario, error) {
	for _, d := range c.drills {
		if d.ID == id {
			return d, nil
		}
	}
	return domain.DrillScenario{}, domain.ErrDrillNotFound
}

func (c *DrillCatalog) Drills(_ context.Context) ([]domain.DrillScenario, error) {
	return c.drills, nil
}
