// Package types 定義了 autoves 系統中使用的核心領域模型
package types

import (
	"fmt"
	"strings"
	"time"
)

// Mode 編譯模式（對應 vesti 的四種 LaTeX 後端）
type Mode int

// 定義編譯模式常數
const (
	ModePlain Mode = iota // latex
	ModePdf               // pdflatex
	ModeXe                // xelatex
	ModeLua               // lualatex
)

// DefaultMode 沒有任何選擇旗標時使用的模式
const DefaultMode = ModePdf

var modeNames = map[Mode]string{
	ModePlain: "plain",
	ModePdf:   "pdf",
	ModeXe:    "xe",
	ModeLua:   "lua",
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode 將設定檔中的模式名稱轉為 Mode
// 接受 "plain"/"latex"、"pdf"/"pdflatex"、"xe"/"xelatex"、"lua"/"lualatex"（不分大小寫）
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "plain", "latex":
		return ModePlain, nil
	case "pdf", "pdflatex":
		return ModePdf, nil
	case "xe", "xelatex":
		return ModeXe, nil
	case "lua", "lualatex":
		return ModeLua, nil
	}
	return 0, fmt.Errorf("unknown compiler mode %q", s)
}

// Flags 命令列的模式選擇旗標，彼此不互斥
type Flags struct {
	Plain bool // -L
	Pdf   bool // -p
	Xe    bool // -x
	Lua   bool // -l
}

// Resolve 依固定優先序 Plain > Pdf > Xe > Lua 決定唯一模式，
// 全部未設定時回傳 def
func (f Flags) Resolve(def Mode) Mode {
	switch {
	case f.Plain:
		return ModePlain
	case f.Pdf:
		return ModePdf
	case f.Xe:
		return ModeXe
	case f.Lua:
		return ModeLua
	default:
		return def
	}
}

// ResolveMode 以 DefaultMode 作為預設值解析旗標
func ResolveMode(f Flags) Mode {
	return f.Resolve(DefaultMode)
}

// InvocationRequest 一次編譯呼叫的請求，每個需要編譯的 tick 建立一次
type InvocationRequest struct {
	Filename      string   // 被監看的檔案
	Mode          Mode     // 編譯模式
	PlatformFlags []string // 平台額外旗標（例如 Windows 的 -N）
	HasSub        bool     // -S：檔案屬於多檔文件（目前僅記錄）
}

// Outcome 一次編譯的結果
type Outcome struct {
	Success  bool   // 是否以 0 結束
	ExitCode int    // 結束碼（逾時被終止時為 -1）
	Stdout   string // 擷取的標準輸出
	Stderr   string // 擷取的標準錯誤

	Duration time.Duration // 實際執行時間
}
