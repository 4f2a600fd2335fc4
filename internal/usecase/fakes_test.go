package usecase

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/eslsoft/traitscore/internal/entity"
	"github.com/eslsoft/traitscore/internal/repository"
)

type fakeAlgorithmRepo struct {
	mu      sync.Mutex
	items   []*entity.Algorithm
	err     error
	lookups int
}

func (r *fakeAlgorithmRepo) LatestGlobal(ctx context.Context) (*entity.Algorithm, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lookups++
	if r.err != nil {
		return nil, r.err
	}
	var latest *entity.Algorithm
	for _, item := range r.items {
		if !item.IsGlobal {
			continue
		}
		if latest == nil || item.Version > latest.Version {
			latest = item
		}
	}
	if latest == nil {
		return nil, entity.ErrAlgorithmNotFound
	}
	return latest, nil
}

func (r *fakeAlgorithmRepo) Create(ctx context.Context, algorithm *entity.Algorithm) (*entity.Algorithm, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range r.items {
		if item.Version == algorithm.Version {
			return nil, entity.ErrDuplicateAlgorithm
		}
	}
	copy := *algorithm
	copy.ID = int64(len(r.items) + 1)
	r.items = append(r.items, &copy)
	out := copy
	return &out, nil
}

func (r *fakeAlgorithmRepo) SetGlobal(ctx context.Context, version int, global bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range r.items {
		if item.Version == version {
			item.IsGlobal = global
			return nil
		}
	}
	return entity.ErrAlgorithmNotFound
}

func (r *fakeAlgorithmRepo) MaxVersion(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	highest := 0
	for _, item := range r.items {
		if item.Version > highest {
			highest = item.Version
		}
	}
	return highest, nil
}

func (r *fakeAlgorithmRepo) lookupCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lookups
}

type fakeCache struct {
	mu     sync.Mutex
	items  map[string][]byte
	ttls   map[string]time.Duration
	getErr error
}

func newFakeCache() *fakeCache {
	return &fakeCache{items: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (c *fakeCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	v, ok := c.items[key]
	return v, ok, nil
}

func (c *fakeCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = append([]byte(nil), value...)
	c.ttls[key] = ttl
	return nil
}

func (c *fakeCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
	return nil
}

type fakeResponseRepo struct {
	mu    sync.RWMutex
	seq   int64
	items []entity.Response
	err   error
}

func (r *fakeResponseRepo) add(userID, attemptID, assessmentID int64, payload string) {
	_, _ = r.Create(context.Background(), &entity.Response{UserID: userID, AttemptID: attemptID, AssessmentID: assessmentID, SelectedOptions: payload})
}

func (r *fakeResponseRepo) ListByAttempt(ctx context.Context, userID, attemptID int64) ([]entity.Response, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []entity.Response
	for _, item := range r.items {
		if item.UserID == userID && item.AttemptID == attemptID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *fakeResponseRepo) Create(ctx context.Context, response *entity.Response) (*entity.Response, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	copy := *response
	copy.ID = r.seq
	r.items = append(r.items, copy)
	return &copy, nil
}

func (r *fakeResponseRepo) ListPendingAttempts(ctx context.Context, limit int) ([]entity.AttemptRef, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := map[entity.AttemptRef]struct{}{}
	var out []entity.AttemptRef
	for _, item := range r.items {
		ref := entity.AttemptRef{UserID: item.UserID, AttemptID: item.AttemptID}
		if _, ok := seen[ref]; ok {
			continue
		}
		seen[ref] = struct{}{}
		out = append(out, ref)
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeResultRepo struct {
	mu        sync.RWMutex
	seq       int64
	items     map[entity.AttemptRef]*entity.AssessmentResult
	createErr  error
	replaceErr error
	creates    int
	// hideOnce makes the next FindByAttempt miss, simulating a concurrent writer.
	hideOnce bool
}

func newFakeResultRepo() *fakeResultRepo {
	return &fakeResultRepo{items: map[entity.AttemptRef]*entity.AssessmentResult{}}
}

func (r *fakeResultRepo) FindByAttempt(ctx context.Context, userID, attemptID int64) (*entity.AssessmentResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.hideOnce {
		r.hideOnce = false
		return nil, nil
	}
	item, ok := r.items[entity.AttemptRef{UserID: userID, AttemptID: attemptID}]
	if !ok {
		return nil, nil
	}
	return cloneResult(item), nil
}

func (r *fakeResultRepo) Create(ctx context.Context, result *entity.AssessmentResult) (*entity.AssessmentResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return nil, r.createErr
	}
	ref := result.Ref()
	if _, exists := r.items[ref]; exists {
		return nil, entity.ErrDuplicateResult
	}
	r.seq++
	r.creates++
	stored := cloneResult(result)
	stored.ID = r.seq
	r.items[ref] = stored
	return cloneResult(stored), nil
}

func (r *fakeResultRepo) Replace(ctx context.Context, result *entity.AssessmentResult) (*entity.AssessmentResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.replaceErr != nil {
		return nil, r.replaceErr
	}
	r.seq++
	stored := cloneResult(result)
	stored.ID = r.seq
	r.items[result.Ref()] = stored
	return cloneResult(stored), nil
}

func (r *fakeResultRepo) List(ctx context.Context, query *repository.ListResultQuery) ([]*entity.AssessmentResult, int64, error) {
	if query == nil {
		return nil, 0, errors.New("list query required")
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*entity.AssessmentResult, 0, len(r.items))
	for _, item := range r.items {
		out = append(out, cloneResult(item))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	total := int64(len(out))
	start := int(query.Offset())
	if start > len(out) {
		start = len(out)
	}
	end := start + int(query.PageSize)
	if end > len(out) {
		end = len(out)
	}
	return out[start:end], total, nil
}

func (r *fakeResultRepo) count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

func cloneResult(in *entity.AssessmentResult) *entity.AssessmentResult {
	out := *in
	out.SelfWords = append([]string{}, in.SelfWords...)
	out.ConceptWords = append([]string{}, in.ConceptWords...)
	out.AdjustedWords = append([]string{}, in.AdjustedWords...)
	return &out
}
