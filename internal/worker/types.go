package worker

import (
	"errors"
	"time"
)

// Task 代表一次要執行的編譯
type Task struct {
	Args    []string      // 傳給編譯器的參數（由 BuildArgs 產生）
	Timeout time.Duration // 執行超時時間，0 表示不限制
}

var (
	// ErrSpawn 編譯器無法啟動（找不到執行檔、沒有執行權限）
	ErrSpawn = errors.New("worker: cannot execute compiler")

	// ErrMalformedOutput 編譯器輸出不是合法的 UTF-8
	ErrMalformedOutput = errors.New("worker: compiler output is not valid UTF-8")
)
