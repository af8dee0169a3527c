package database

// StoreSynchronously makes the decorator write cache entries before returning.
func StoreSynchronously(a *CachedDirectoryAdapter) {
	a.async = false
}
