package memory

import (
	"sort"

	"github.com/commerce/backoffice/internal/domain/shared"
)

func (s *Store) acquire(locked bool) func() {
	if locked {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// paginate applies page/pageSize to an already-filtered, already-sorted slice
func paginate[T any](items []T, filter shared.Filter) shared.Paginated[T] {
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}

	total := int64(len(items))
	start := (page - 1) * size
	if start > len(items) {
		start = len(items)
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	return shared.NewPaginated(items[start:end], total, page, size)
}

// newestFirst sorts by created-at descending using the supplied accessor
func newestFirst[T any](items []T, createdAt func(T) int64) {
	sort.SliceStable(items, func(i, j int) bool {
		return createdAt(items[i]) > createdAt(items[j])
	})
}
