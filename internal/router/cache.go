package router

import (
	"errors"

	"github.com/bluele/gcache"
)

type routeKey struct {
	from, to string
}

// cachedRoute keeps "no route" answers too, so repeated misses are cheap.
type cachedRoute struct {
	itinerary Itinerary
	found     bool
}

// Cache memoises FindRoute answers in a bounded LRU. Itineraries are pure
// functions of the immutable graph, so entries never go stale.
type Cache struct {
	router *Router
	lru    gcache.Cache
}

// NewCache wraps r with an LRU holding up to size answers. A size of zero
// or less disables caching.
func NewCache(r *Router, size int) *Cache {
	c := &Cache{router: r}
	if size > 0 {
		c.lru = gcache.New(size).LRU().Build()
	}
	return c
}

// FindRoute behaves like Router.FindRoute. hit reports whether the answer
// came from the cache.
func (c *Cache) FindRoute(from, to string) (itinerary Itinerary, ok bool, hit bool) {
	if c.lru == nil {
		itinerary, ok = c.router.FindRoute(from, to)
		return itinerary, ok, false
	}

	key := routeKey{from: from, to: to}
	if value, err := c.lru.Get(key); err == nil {
		cached := value.(cachedRoute)
		return cached.itinerary, cached.found, true
	} else if !errors.Is(err, gcache.KeyNotFoundError) {
		itinerary, ok = c.router.FindRoute(from, to)
		return itinerary, ok, false
	}

	itinerary, ok = c.router.FindRoute(from, to)
	// Set only fails for a nil key or a broken loader, neither applies.
	_ = c.lru.Set(key, cachedRoute{itinerary: itinerary, found: ok})
	return itinerary, ok, false
}

func (c *Cache) Router() *Router {
	return c.router
}

// Len is the number of cached answers.
func (c *Cache) Len() int {
	if c.lru == nil {
		return 0
	}
	return c.lru.Len(false)
}
