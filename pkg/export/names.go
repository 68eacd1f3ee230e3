package export

import (
	"fmt"

	"github.com/gosimple/slug"
)

// Allocator hands out collision-free file names for per-list outputs. It is
// a pure allocator over a namespace of strings; it never touches the
// filesystem.
type Allocator struct {
	used map[string]struct{}
}

func NewAllocator() *Allocator {
	return &Allocator{used: make(map[string]struct{})}
}

// Allocate derives a filesystem-safe name from a list display name and
// reserves it. Collisions resolve by appending an incrementing suffix:
// shopping.csv, shopping-2.csv, shopping-3.csv, ...
func (a *Allocator) Allocate(displayName string) string {
	base := slug.Make(displayName)
	if base == "" {
		base = "list"
	}

	name := base + ".csv"
	for i := 2; ; i++ {
		if _, taken := a.used[name]; !taken {
			break
		}
		name = fmt.Sprintf("%s-%d.csv", base, i)
	}
	a.used[name] = struct{}{}
	return name
}
