// ============================================================================
// autoves Worker - Compiler Invocation Unit
// ============================================================================
//
// Package: internal/worker
// File: worker.go
// Function: Runs the external compiler once, synchronously, and captures its result
//
// How it works:
//   1. Build exec.Cmd for the configured executable with Task.Args
//   2. Capture stdout / stderr into buffers
//   3. Wait for exit (blocking, the watch loop is single threaded)
//   4. Classify the result:
//      - cannot start at all     -> ErrSpawn (fatal for the caller)
//      - non-zero exit status    -> Outcome{Success: false} (ordinary failure)
//      - deadline hit            -> Outcome{Success: false} (ordinary failure)
//      - failed run whose output is not valid UTF-8
//                                -> ErrMalformedOutput (surfaced, never masked)
//   Output of a successful run is kept as raw bytes and never decoded.
//
// Timeout Control:
//   Task.Timeout == 0 keeps the wait unbounded. A positive timeout kills the
//   child once exceeded and the run becomes an ordinary failed Outcome.
//   Cancellation of the caller's context does NOT kill a running compiler.
//
// ============================================================================

package worker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"time"
	"unicode/utf8"

	"github.com/ChuLiYu/autoves/pkg/types"
)

// DefaultExecutable 預設的編譯器執行檔名稱
const DefaultExecutable = "vesti"

// Worker 執行外部編譯器的工作單元
type Worker struct {
	executable string       // 編譯器執行檔（依 PATH 搜尋）
	logger     *slog.Logger // 日誌
}

// NewWorker 建立新的 Worker，executable 為空時使用 DefaultExecutable
func NewWorker(executable string, logger *slog.Logger) *Worker {
	if executable == "" {
		executable = DefaultExecutable
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{
		executable: executable,
		logger:     logger,
	}
}

// Executable 回傳實際呼叫的執行檔名稱
func (w *Worker) Executable() string {
	return w.executable
}

// Invoke 同步執行一次編譯並等待結束
func (w *Worker) Invoke(ctx context.Context, task Task) (types.Outcome, error) {
	// 中斷訊號不應殺掉正在編譯的子行程，只保留 ctx 的值
	runCtx := context.WithoutCancel(ctx)
	cancel := func() {}
	if task.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(runCtx, task.Timeout)
	}
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(runCtx, w.executable, task.Args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if task.Timeout > 0 {
		cmd.WaitDelay = time.Second
	}

	w.logger.Info("Compiling", "executable", w.executable, "args", task.Args)

	start := time.Now()
	err := cmd.Run()
	if errors.Is(err, exec.ErrWaitDelay) {
		// 編譯器已正常結束，只是殘留的子行程仍持有輸出管線
		err = nil
	}
	outcome := types.Outcome{
		Success:  err == nil,
		Duration: time.Since(start),
	}

	timedOut := err != nil && errors.Is(runCtx.Err(), context.DeadlineExceeded)
	if err != nil {
		code, ok := exitCode(err)
		if !ok {
			return outcome, fmt.Errorf("%w `%s`: %v", ErrSpawn, w.executable, err)
		}
		outcome.ExitCode = code
	}

	// 成功的編譯不輸出任何內容，只有失敗時才需要解碼
	if !outcome.Success {
		if !utf8.Valid(stdout.Bytes()) {
			return outcome, fmt.Errorf("%w (stdout)", ErrMalformedOutput)
		}
		if !utf8.Valid(stderr.Bytes()) {
			return outcome, fmt.Errorf("%w (stderr)", ErrMalformedOutput)
		}
	}
	outcome.Stdout = stdout.String()
	outcome.Stderr = stderr.String()

	if timedOut {
		outcome.Stderr += fmt.Sprintf("\nautoves: compiler killed after %s timeout\n", task.Timeout)
	}

	w.logger.Info("Compile finished",
		"success", outcome.Success,
		"exit_code", outcome.ExitCode,
		"duration", outcome.Duration)

	return outcome, nil
}

// exitCode 把 cmd.Run 的錯誤轉成結束碼；ok 為 false 表示編譯器根本沒有啟動
func exitCode(err error) (code int, ok bool) {
	var exitErr *exec.ExitError
	switch {
	case errors.As(err, &exitErr):
		return exitErr.ExitCode(), true
	case errors.Is(err, context.DeadlineExceeded):
		// 子行程剛好在期限到達時以 0 結束，Run 回傳的是 ctx.Err()
		return -1, true
	default:
		return 0, false
	}
}
