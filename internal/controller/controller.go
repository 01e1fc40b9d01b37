// ============================================================================
// autoves 控制器 - 監看 / 編譯 / 回報循環
// ============================================================================
//
// Package: internal/controller
// 文件: controller.go
// 功能: 以固定間隔輪詢被監看檔案，變更時呼叫編譯器並回報失敗
//
// 每個 tick（單一 goroutine，依序執行，不重疊）:
//   1. detector.Poll      - 讀取 mtime，決定是否需要重新編譯
//   2. worker.BuildArgs   - 依模式產生參數（模式在啟動時解析一次）
//   3. Invoker.Invoke     - 同步執行編譯器並擷取輸出
//   4. Reporter           - 只回報失敗，之後印出狀態列
//   5. sleep(Interval)    - 可被 ctx 取消
//
// 結束條件:
//   - ctx 取消（中斷訊號）: 在睡眠中或下一個檢查點（輪詢前、編譯前）返回 nil
//   - metadata 讀取失敗 / 編譯器無法啟動 / 輸出非 UTF-8: 返回錯誤，由呼叫端回報並結束
//
// Watch State 是 detector.State 值，只在 Run 內部傳遞，不跨 goroutine 共享。
//
// ============================================================================

package controller

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/ChuLiYu/autoves/internal/detector"
	"github.com/ChuLiYu/autoves/internal/metrics"
	"github.com/ChuLiYu/autoves/internal/reporter"
	"github.com/ChuLiYu/autoves/internal/worker"
	"github.com/ChuLiYu/autoves/pkg/types"
)

// StatusLine 每次處理完變更後印出的狀態列
const StatusLine = "Press Ctrl+C to exit..."

// DefaultInterval 預設輪詢間隔
const DefaultInterval = 300 * time.Millisecond

// Invoker 執行一次編譯
type Invoker interface {
	Invoke(ctx context.Context, task worker.Task) (types.Outcome, error)
}

// StatusSink 接收監看狀態（例如 gRPC health）
type StatusSink interface {
	SetWatching(watching bool)
}

// Config Controller 配置
type Config struct {
	Filename      string        // 被監看的檔案
	Mode          types.Mode    // 已解析的編譯模式
	PlatformFlags []string      // 平台額外旗標
	HasSub        bool          // -S
	Interval      time.Duration // 輪詢間隔，0 使用 DefaultInterval
	Timeout       time.Duration // 編譯超時，0 表示不限制

	Source   detector.Source    // nil 使用 detector.OSSource
	Invoker  Invoker            // 必填
	Reporter reporter.Reporter  // 必填
	Status   io.Writer          // 狀態列輸出（通常是 os.Stdout）
	Metrics  *metrics.Collector // 可為 nil
	Health   StatusSink         // 可為 nil
	Logger   *slog.Logger       // nil 使用 slog.Default()
}

// Controller 監看循環
type Controller struct {
	config Config
	source detector.Source
	logger *slog.Logger
}

// NewController 建立新的 Controller 實例
func NewController(config Config) (*Controller, error) {
	if config.Filename == "" {
		return nil, fmt.Errorf("filename is required")
	}
	if config.Invoker == nil {
		return nil, fmt.Errorf("invoker is required")
	}
	if config.Reporter == nil {
		return nil, fmt.Errorf("reporter is required")
	}
	if config.Interval <= 0 {
		config.Interval = DefaultInterval
	}
	if config.Status == nil {
		config.Status = io.Discard
	}

	source := config.Source
	if source == nil {
		source = detector.OSSource{}
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Controller{
		config: config,
		source: source,
		logger: logger,
	}, nil
}

// Run 執行監看循環直到 ctx 取消（返回 nil）或發生致命錯誤
func (c *Controller) Run(ctx context.Context) error {
	c.logger.Info("Watching",
		"file", c.config.Filename,
		"mode", c.config.Mode,
		"interval", c.config.Interval,
		"has_sub", c.config.HasSub)

	state := detector.Initial()
	for {
		if ctx.Err() != nil {
			return nil
		}

		next, err := c.tick(ctx, state)
		if err != nil {
			c.setWatching(false)
			return err
		}
		state = next

		if !sleep(ctx, c.config.Interval) {
			return nil
		}
	}
}

// sleep 等待 d，ctx 先被取消時返回 false
func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// tick 執行一次輪詢，必要時編譯並回報
func (c *Controller) tick(ctx context.Context, state detector.State) (detector.State, error) {
	changed, next, err := detector.Poll(c.source, c.config.Filename, state)
	if err != nil {
		return state, err
	}

	c.config.Metrics.RecordPoll(next.LastModified)
	if state.FirstTick {
		c.setWatching(true)
	}

	c.logger.Debug("Polled",
		"file", c.config.Filename,
		"modified", next.LastModified,
		"changed", changed)

	if !changed {
		return next, nil
	}

	// 檢查點：收到中斷後不再啟動新的編譯
	if ctx.Err() != nil {
		return next, nil
	}

	c.config.Metrics.RecordChange()
	if err := c.compile(ctx); err != nil {
		return next, err
	}

	return next, nil
}

func (c *Controller) compile(ctx context.Context) error {
	req := c.request()
	task := worker.Task{
		Args:    worker.BuildArgs(req),
		Timeout: c.config.Timeout,
	}

	outcome, err := c.config.Invoker.Invoke(ctx, task)
	if err != nil {
		return fmt.Errorf("compile %s: %w", req.Filename, err)
	}

	c.config.Metrics.RecordCompile(outcome.Success, outcome.Duration)

	if !outcome.Success {
		c.logger.Debug("Compile failed", "exit_code", outcome.ExitCode)
		c.config.Reporter.ReportFailure(outcome)
	}

	fmt.Fprintln(c.config.Status, StatusLine)
	return nil
}

// request 每次編譯建立新的請求
func (c *Controller) request() types.InvocationRequest {
	return types.InvocationRequest{
		Filename:      c.config.Filename,
		Mode:          c.config.Mode,
		PlatformFlags: slices.Clone(c.config.PlatformFlags),
		HasSub:        c.config.HasSub,
	}
}

func (c *Controller) setWatching(watching bool) {
	if c.config.Health != nil {
		c.config.Health.SetWatching(watching)
	}
}
