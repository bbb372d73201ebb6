// repository/catalog/repo.go
package catalog

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/Danny213123/cps714-group5/model"
)

var (
	ErrNotFound = errors.New("item not found")
	ErrNoCopies = errors.New("no available copies")
)

// Repo is the content availability gateway. It owns copy counts; the
// lending engine never touches them except through Decrement/Increment.
// Calls are logically synchronous; an implementation backed by a remote
// catalog would honour ctx.
type Repo interface {
	CreateItem(ctx context.Context, item model.ContentItem) (string, error)
	AddCopies(ctx context.Context, itemID string, n int) (int, error)
	List(ctx context.Context) ([]model.ContentItem, error)
	Detail(ctx context.Context, itemID string) (*model.ContentItem, error)

	IsAvailable(ctx context.Context, itemID string) (bool, error)
	DecrementAvailable(ctx context.Context, itemID string) error
	IncrementAvailable(ctx context.Context, itemID string) error
	GetMetadata(ctx context.Context, itemID string) (*model.ContentItem, error)
}

type repo struct {
	mu    sync.RWMutex
	items map[string]*model.ContentItem
}

func New() Repo {
	return &repo{items: make(map[string]*model.ContentItem)}
}

func (r *repo) CreateItem(ctx context.Context, item model.ContentItem) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item.ID = uuid.NewString()
	item.AvailableCopies = item.TotalCopies
	r.items[item.ID] = &item
	return item.ID, nil
}

func (r *repo) AddCopies(ctx context.Context, itemID string, n int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	it, ok := r.items[itemID]
	if !ok {
		return 0, ErrNotFound
	}
	it.TotalCopies += n
	it.AvailableCopies += n
	return it.TotalCopies, nil
}

func (r *repo) List(ctx context.Context) ([]model.ContentItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.ContentItem, 0, len(r.items))
	for _, it := range r.items {
		out = append(out, *it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (r *repo) Detail(ctx context.Context, itemID string) (*model.ContentItem, error) {
	return r.GetMetadata(ctx, itemID)
}

func (r *repo) IsAvailable(ctx context.Context, itemID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	it, ok := r.items[itemID]
	if !ok {
		return false, ErrNotFound
	}
	return it.AvailableCopies > 0, nil
}

func (r *repo) DecrementAvailable(ctx context.Context, itemID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	it, ok := r.items[itemID]
	if !ok {
		return ErrNotFound
	}
	if it.AvailableCopies <= 0 {
		return ErrNoCopies
	}
	it.AvailableCopies--
	return nil
}

// IncrementAvailable releases one copy, capped at the item's total count so
// double releases cannot inflate stock.
func (r *repo) IncrementAvailable(ctx context.Context, itemID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	it, ok := r.items[itemID]
	if !ok {
		return ErrNotFound
	}
	if it.AvailableCopies < it.TotalCopies {
		it.AvailableCopies++
	}
	return nil
}

func (r *repo) GetMetadata(ctx context.Context, itemID string) (*model.ContentItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	it, ok := r.items[itemID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *it
	return &cp, nil
}
