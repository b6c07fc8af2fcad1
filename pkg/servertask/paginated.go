package servertask

import (
	"context"
	"sync"
)

// Fetcher retrieves one page of items.
type Fetcher[T any] func(ctx context.Context, page int) ([]T, error)

// PaginationOptions configures Paginated.
type PaginationOptions struct {
	PageSize      int
	GetTotalCount func(ctx context.Context) (int, error)
	PrefetchNext  bool
	PrefetchPrev  bool
	Dependencies  []any
}

// Paginated layers page/prefetch/dependency-refetch bookkeeping on top of
// a page Fetcher. It does not itself wrap a Task[T]: the caller's Fetcher
// is free to internally start and Wait on a Task[[]T] per page, or fetch
// synchronously — Paginated only owns the page cache, current page/items,
// and total/hasNext/hasPrev bookkeeping, mirroring vango-go-vango's
// Resource[T] fetchID-guarded retry/refetch shape generalized to a
// page-keyed cache.
type Paginated[T any] struct {
	fetch Fetcher[T]
	opts  PaginationOptions

	mu         sync.Mutex
	page       int
	items      []T
	total      int
	haveTotal  bool
	totalPages int
	cache      map[int][]T
	deps       []any
}

// NewPaginated constructs a Paginated with no page loaded yet; call Load
// to fetch page 1.
func NewPaginated[T any](fetch Fetcher[T], opts PaginationOptions) *Paginated[T] {
	return &Paginated[T]{
		fetch: fetch,
		opts:  opts,
		cache: make(map[int][]T),
		deps:  opts.Dependencies,
	}
}

// Load fetches page 1.
func (p *Paginated[T]) Load(ctx context.Context) error {
	return p.loadPage(ctx, 1)
}

// Next advances to the following page.
func (p *Paginated[T]) Next(ctx context.Context) error {
	p.mu.Lock()
	next := p.page + 1
	p.mu.Unlock()
	return p.loadPage(ctx, next)
}

// Prev returns to the preceding page; a no-op before page 1.
func (p *Paginated[T]) Prev(ctx context.Context) error {
	p.mu.Lock()
	prev := p.page - 1
	p.mu.Unlock()
	if prev < 1 {
		return nil
	}
	return p.loadPage(ctx, prev)
}

// SetDependencies re-fetches from page 1 when deps differ from the
// current set, invalidating the prefetch cache.
func (p *Paginated[T]) SetDependencies(ctx context.Context, deps []any) error {
	p.mu.Lock()
	if depsEqual(p.deps, deps) {
		p.mu.Unlock()
		return nil
	}
	p.deps = deps
	p.cache = make(map[int][]T)
	p.mu.Unlock()
	return p.loadPage(ctx, 1)
}

func (p *Paginated[T]) Page() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.page
}

func (p *Paginated[T]) Items() []T {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]T, len(p.items))
	copy(out, p.items)
	return out
}

func (p *Paginated[T]) Total() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.total
}

func (p *Paginated[T]) TotalPages() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.totalPages
}

func (p *Paginated[T]) HasNext() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.haveTotal {
		return p.page < p.totalPages
	}
	return p.opts.PageSize > 0 && len(p.items) >= p.opts.PageSize
}

func (p *Paginated[T]) HasPrev() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.page > 1
}

func (p *Paginated[T]) loadPage(ctx context.Context, page int) error {
	p.mu.Lock()
	if cached, ok := p.cache[page]; ok {
		p.items = cached
		p.page = page
		p.mu.Unlock()
		p.prefetchAround(ctx, page)
		return nil
	}
	p.mu.Unlock()

	items, err := p.fetch(ctx, page)
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.cache[page] = items
	p.items = items
	p.page = page
	p.mu.Unlock()

	p.refreshTotal(ctx)
	p.prefetchAround(ctx, page)
	return nil
}

func (p *Paginated[T]) refreshTotal(ctx context.Context) {
	if p.opts.GetTotalCount == nil {
		return
	}
	total, err := p.opts.GetTotalCount(ctx)
	if err != nil {
		return
	}
	p.mu.Lock()
	p.total = total
	p.haveTotal = true
	if p.opts.PageSize > 0 {
		p.totalPages = (total + p.opts.PageSize - 1) / p.opts.PageSize
	}
	p.mu.Unlock()
}

func (p *Paginated[T]) prefetchAround(ctx context.Context, page int) {
	if p.opts.PrefetchNext {
		go p.prefetch(ctx, page+1)
	}
	if p.opts.PrefetchPrev && page > 1 {
		go p.prefetch(ctx, page-1)
	}
}

func (p *Paginated[T]) prefetch(ctx context.Context, page int) {
	if page < 1 {
		return
	}
	p.mu.Lock()
	_, exists := p.cache[page]
	p.mu.Unlock()
	if exists {
		return
	}

	items, err := p.fetch(ctx, page)
	if err != nil {
		return
	}

	p.mu.Lock()
	p.cache[page] = items
	p.mu.Unlock()
}

func depsEqual(a, b []any) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
