// ============================================================================
// autoves Metrics - Prometheus 監控指標
// ============================================================================
//
// Package: internal/metrics
// 文件: metrics.go
// 功能: 收集監看循環的運行指標，可選擇以 /metrics 暴露給 Prometheus
//
// 指標分類:
//
//   1. 計數器 (Counter):
//      - autoves_polls_total: 讀取檔案 metadata 的次數
//      - autoves_changes_total: 偵測到變更（需要重新編譯）的次數
//      - autoves_compiles_total{result="success|failure"}: 編譯次數
//
//   2. 性能指標 (Histogram):
//      - autoves_compile_duration_seconds: 單次編譯耗時
//
//   3. 狀態指標 (Gauge):
//      - autoves_last_modified_timestamp_seconds: 最近一次觀察到的 mtime
//
// Prometheus 查詢示例:
//
//   # 編譯失敗率
//   rate(autoves_compiles_total{result="failure"}[5m]) / rate(autoves_compiles_total[5m])
//
//   # 95 分位編譯時間
//   histogram_quantile(0.95, autoves_compile_duration_seconds_bucket)
//
// Collector 的方法對 nil 接收者安全，未啟用指標時直接傳 nil。
//
// ============================================================================

package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector Prometheus 指標收集器
type Collector struct {
	polls    prometheus.Counter
	changes  prometheus.Counter
	compiles *prometheus.CounterVec

	compileDuration prometheus.Histogram
	lastModified    prometheus.Gauge
}

// NewCollector 創建指標收集器並註冊到 reg
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		polls: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "autoves_polls_total",
			Help: "Total number of metadata polls of the watched file",
		}),
		changes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "autoves_changes_total",
			Help: "Total number of detected changes that triggered a compile",
		}),
		compiles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "autoves_compiles_total",
			Help: "Total number of compiler invocations by result",
		}, []string{"result"}),
		compileDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "autoves_compile_duration_seconds",
			Help:    "Compiler invocation duration in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		lastModified: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "autoves_last_modified_timestamp_seconds",
			Help: "Last observed modification time of the watched file (unix seconds)",
		}),
	}

	reg.MustRegister(c.polls, c.changes, c.compiles, c.compileDuration, c.lastModified)

	return c
}

// RecordPoll 記錄一次 metadata 讀取
func (c *Collector) RecordPoll(modified time.Time) {
	if c == nil {
		return
	}
	c.polls.Inc()
	c.lastModified.Set(float64(modified.UnixNano()) / 1e9)
}

// RecordChange 記錄一次觸發編譯的變更
func (c *Collector) RecordChange() {
	if c == nil {
		return
	}
	c.changes.Inc()
}

// RecordCompile 記錄一次編譯結果
func (c *Collector) RecordCompile(success bool, duration time.Duration) {
	if c == nil {
		return
	}
	result := "failure"
	if success {
		result = "success"
	}
	c.compiles.WithLabelValues(result).Inc()
	c.compileDuration.Observe(duration.Seconds())
}

// Handler 回傳只包含 gatherer 指標的 HTTP handler
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// StartServer 啟動 Prometheus metrics HTTP 伺服器（阻塞）
//
// 參數：
//   - port: HTTP 伺服器端口
//   - gatherer: 指標來源
//
// 返回值：
//   - error: 啟動失敗的錯誤
func StartServer(port int, gatherer prometheus.Gatherer) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	addr := fmt.Sprintf(":%d", port)
	return http.ListenAndServe(addr, mux)
}
