package metrics

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"civic_feed/internal/pkg/event"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsCollector 指标收集器
type MetricsCollector struct {
	// HTTP 指标
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// 数据库连接池指标
	dbConnectionsActive prometheus.Gauge
	dbConnectionsIdle   prometheus.Gauge

	// 互动指标
	likesTotal         *prometheus.CounterVec
	commentsTotal      *prometheus.CounterVec
	notificationsTotal *prometheus.CounterVec
	sideEffectFailures *prometheus.CounterVec
}

// NewMetricsCollector 创建指标收集器，指标注册到 reg
func NewMetricsCollector(reg prometheus.Registerer) *MetricsCollector {
	f := promauto.With(reg)
	return &MetricsCollector{
		httpRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),

		httpRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		dbConnectionsActive: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "db_connections_active",
				Help: "Number of active database connections",
			},
		),

		dbConnectionsIdle: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "db_connections_idle",
				Help: "Number of idle database connections",
			},
		),

		likesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "engagement_likes_total",
				Help: "Like ledger mutations by action (like, unlike)",
			},
			[]string{"action"},
		),

		commentsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "engagement_comments_total",
				Help: "Comments created by kind (top_level, reply, reparented_reply)",
			},
			[]string{"kind"},
		),

		notificationsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "engagement_notifications_total",
				Help: "Notifications created by type",
			},
			[]string{"type"},
		),

		sideEffectFailures: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "engagement_side_effect_failures_total",
				Help: "Best-effort side effects that failed, by topic and subscriber",
			},
			[]string{"topic", "subscriber"},
		),
	}
}

// RecordHTTPRequest 记录 HTTP 请求
func (m *MetricsCollector) RecordHTTPRequest(method, endpoint string, status int, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// UpdateDBStats 更新连接池指标
func (m *MetricsCollector) UpdateDBStats(stats sql.DBStats) {
	m.dbConnectionsActive.Set(float64(stats.InUse))
	m.dbConnectionsIdle.Set(float64(stats.Idle))
}

// RecordNotifications 记录创建的通知数量
func (m *MetricsCollector) RecordNotifications(notificationType string, n int) {
	m.notificationsTotal.WithLabelValues(notificationType).Add(float64(n))
}

// NotificationsCounter 某类通知的计数器
func (m *MetricsCollector) NotificationsCounter(notificationType string) prometheus.Counter {
	return m.notificationsTotal.WithLabelValues(notificationType)
}

// RecordSideEffectFailure 记录失败的副作用
func (m *MetricsCollector) RecordSideEffectFailure(topic event.Topic, subscriber string, _ error) {
	m.sideEffectFailures.WithLabelValues(string(topic), subscriber).Inc()
}

// Subscribe 订阅互动事件并计数
func (m *MetricsCollector) Subscribe(bus *event.Bus) {
	bus.Subscribe(event.TopicLikeAdded, "metrics", func(ctx context.Context, ev event.Event) error {
		m.likesTotal.WithLabelValues("like").Inc()
		return nil
	})
	bus.Subscribe(event.TopicLikeRemoved, "metrics", func(ctx context.Context, ev event.Event) error {
		m.likesTotal.WithLabelValues("unlike").Inc()
		return nil
	})
	bus.Subscribe(event.TopicCommentCreated, "metrics", func(ctx context.Context, ev event.Event) error {
		m.commentsTotal.WithLabelValues(commentKind(ev.(event.CommentCreated))).Inc()
		return nil
	})
	bus.OnFailure(m.RecordSideEffectFailure)
}

func commentKind(ev event.CommentCreated) string {
	switch {
	case !ev.IsReply():
		return "top_level"
	case ev.Reparented:
		return "reparented_reply"
	default:
		return "reply"
	}
}

// GinMiddleware 记录请求数与耗时，endpoint 使用路由模板避免标签爆炸
func (m *MetricsCollector) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		m.RecordHTTPRequest(c.Request.Method, endpoint, c.Writer.Status(), time.Since(start))
	}
}

// WatchDBStats 定期采集连接池状态，ctx 取消后退出
func (m *MetricsCollector) WatchDBStats(ctx context.Context, db *sql.DB, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.UpdateDBStats(db.Stats())
		}
	}
}
