package middleware

import (
	"strings"
	"sync/atomic"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Origins is the browser origin allow-list. Set swaps it while the server
// is running.
type Origins struct {
	set atomic.Pointer[map[string]struct{}]
}

func NewOrigins(list []string) *Origins {
	o := &Origins{}
	o.Set(list)
	return o
}

func (o *Origins) Set(list []string) {
	set := make(map[string]struct{}, len(list))
	for _, origin := range list {
		if origin = strings.TrimRight(strings.TrimSpace(origin), "/"); origin != "" {
			set[origin] = struct{}{}
		}
	}
	o.set.Store(&set)
}

func (o *Origins) Allowed(origin string) bool {
	_, ok := (*o.set.Load())[origin]
	return ok
}

func ConfigCORS(origins *Origins) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOriginFunc:  origins.Allowed,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}
