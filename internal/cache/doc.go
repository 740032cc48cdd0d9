// Package cache provides a generic, size-bounded LRU cache.
//
//	c := cache.New[key, *image.RGBA](1024)
//	c.Set(k, img)
//	img, ok := c.Get(k)
//
// The renderers keep composited chunk bitmaps in it, keyed by chunk
// position and resolution, and drop entries when chunks go dirty.
//
// # Thread Safety
//
// Cache is safe for concurrent use and must not be copied after creation.
package cache
