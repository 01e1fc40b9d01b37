// ============================================================================
// autoves Reporter - 失敗訊息回報
// ============================================================================
//
// Package: internal/reporter
// 文件: reporter.go
// 功能: 將編譯失敗與致命錯誤交給使用者
//
// 回報通道（啟動時依平台選擇一次）:
//   - Console: 寫到標準錯誤
//   - Dialog:  Windows 上跳出 MessageBox（編譯失敗用警告圖示，致命錯誤用錯誤圖示）
//
// 回報失敗絕不能中止監看循環，對話框無法顯示時退回 Console。
//
// ============================================================================

package reporter

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/ChuLiYu/autoves/pkg/types"
)

// Reporter 回報編譯失敗與致命錯誤
type Reporter interface {
	// ReportFailure 回報一次失敗的編譯（Outcome.Success 為 false）
	ReportFailure(outcome types.Outcome)
	// ReportFatal 回報即將終止程式的錯誤
	ReportFatal(err error)
}

// FormatFailure 組出包含 stdout 與 stderr 區塊的失敗訊息
func FormatFailure(compiler string, outcome types.Outcome) string {
	return fmt.Sprintf("%s compilation failed.\n[stdout]\n%s\n[stderr]\n%s\n",
		compiler, outcome.Stdout, outcome.Stderr)
}

// FormatFatal 組出致命錯誤訊息
func FormatFatal(err error) string {
	return fmt.Sprintf("autoves error: %v\n", err)
}

// Console 將訊息寫到 io.Writer（通常是 os.Stderr）
type Console struct {
	out      io.Writer
	compiler string
}

// NewConsole 建立 Console 回報器
func NewConsole(out io.Writer, compiler string) *Console {
	return &Console{out: out, compiler: compiler}
}

func (c *Console) ReportFailure(outcome types.Outcome) {
	fmt.Fprint(c.out, FormatFailure(c.compiler, outcome))
}

func (c *Console) ReportFatal(err error) {
	fmt.Fprint(c.out, FormatFatal(err))
}

// Icon 對話框圖示
type Icon int

const (
	IconWarning Icon = iota
	IconError
)

const (
	warningTitle = "autoves warning"
	errorTitle   = "autoves error"
	fatalText    = "autoves error occurs. See the console for more information"
)

// ShowFunc 顯示一個模態對話框並等待使用者關閉
type ShowFunc func(title, text string, icon Icon) error

// Dialog 以模態對話框回報，致命錯誤同時寫到 console
type Dialog struct {
	console *Console
	show    ShowFunc
	logger  *slog.Logger
}

// NewDialog 建立對話框回報器，show 為 nil 時使用平台實作
func NewDialog(console *Console, show ShowFunc, logger *slog.Logger) *Dialog {
	if show == nil {
		show = showMessageBox
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dialog{console: console, show: show, logger: logger}
}

func (d *Dialog) ReportFailure(outcome types.Outcome) {
	text := FormatFailure(d.console.compiler, outcome)
	if err := d.show(warningTitle, text, IconWarning); err != nil {
		d.logger.Warn("Dialog unavailable, falling back to console", "error", err)
		d.console.ReportFailure(outcome)
	}
}

func (d *Dialog) ReportFatal(err error) {
	if showErr := d.show(errorTitle, fatalText, IconError); showErr != nil {
		d.logger.Warn("Dialog unavailable", "error", showErr)
	}
	d.console.ReportFatal(err)
}

// New 依作業系統選擇回報通道
func New(goos string, out io.Writer, compiler string, logger *slog.Logger) Reporter {
	console := NewConsole(out, compiler)
	if goos == "windows" {
		return NewDialog(console, nil, logger)
	}
	return console
}
