package catalog

import "time"

// SetNow overrides the cache clock for external tests.
func SetNow(c *Catalog, fn func() time.Time) { c.now = fn }
