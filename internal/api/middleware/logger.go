package middleware

import (
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/basma-club/clubhub/internal/metrics"
)

// RequestLogger logs every request through the global zap logger and
// records it in m, which may be nil.
func RequestLogger(m *metrics.Metrics) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()
		elapsed := time.Since(start)

		route := ctx.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := ctx.Writer.Status()
		m.ObserveRequest(route, ctx.Request.Method, status, elapsed)

		lvl := zapcore.InfoLevel
		switch {
		case status >= 500:
			lvl = zapcore.ErrorLevel
		case status >= 400:
			lvl = zapcore.WarnLevel
		}

		fields := []zap.Field{
			zap.String("request_id", requestid.Get(ctx)),
			zap.String("method", ctx.Request.Method),
			zap.String("path", ctx.Request.URL.Path),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("latency", elapsed),
			zap.String("client_ip", ctx.ClientIP()),
		}
		if p := GetPrincipal(ctx); p.Authenticated() {
			fields = append(fields, zap.String("member_id", p.MemberID.String()))
		}

		zap.L().Log(lvl, "request", fields...)
	}
}
