package worker

import (
	"github.com/ChuLiYu/autoves/pkg/types"
)

const (
	// CompileCommand vesti 的編譯子命令
	CompileCommand = "compile"
	// NonInteractiveFlag 關閉 vesti 自身互動提示的旗標（僅 Windows 需要）
	NonInteractiveFlag = "-N"
)

var modeFlags = map[types.Mode]string{
	types.ModePlain: "-L",
	types.ModePdf:   "-p",
	types.ModeXe:    "-x",
	types.ModeLua:   "-l",
}

// PlatformFlags 回傳指定作業系統需要額外插入的旗標
func PlatformFlags(goos string) []string {
	if goos == "windows" {
		return []string{NonInteractiveFlag}
	}
	return nil
}

// ModeFlag 將編譯模式對應到單一字元旗標
func ModeFlag(m types.Mode) string {
	if flag, ok := modeFlags[m]; ok {
		return flag
	}
	return modeFlags[types.DefaultMode]
}

// BuildArgs 產生傳給 vesti 的參數列：
//
//	compile [platform flags...] <mode flag> <filename>
//
// 檔名必須是最後一個參數，vesti 依位置解析它。
func BuildArgs(req types.InvocationRequest) []string {
	args := make([]string, 0, 3+len(req.PlatformFlags))
	args = append(args, CompileCommand)
	args = append(args, req.PlatformFlags...)
	args = append(args, ModeFlag(req.Mode))
	args = append(args, req.Filename)
	return args
}
