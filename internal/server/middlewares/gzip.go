package middlewares

import (
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
)

// health probes are tiny and frequent, compressing them is pure overhead
var excludedPaths = []string{
	"/health",
}

// GZIP compresses responses. The listing tree and stored JSON artifacts
// compress very well.
func GZIP() gin.HandlerFunc {
	return gzip.Gzip(
		gzip.BestSpeed,
		gzip.WithExcludedPaths(excludedPaths),
	)
}
