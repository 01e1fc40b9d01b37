package main

// ============================================================================
// 職責說明：
// 1. CLI 應用程式入口點
// 2. 所有邏輯在 internal/cli，這裡只負責把結束碼交給作業系統
// ============================================================================

import (
	"os"

	"github.com/ChuLiYu/autoves/internal/cli"
)

/*
# 編譯
go build -o bin/autoves ./cmd/autoves

# 執行
./bin/autoves doc.ves          # pdflatex（預設）
./bin/autoves -x doc.ves       # xelatex
./bin/autoves -c autoves.yaml doc.ves

# 交叉編譯（Windows 版會以對話框回報失敗）
GOOS=windows GOARCH=amd64 go build -o bin/autoves.exe ./cmd/autoves

# 編譯時注入版本
go build -ldflags "-X github.com/ChuLiYu/autoves/internal/cli.version=1.0.0" ./cmd/autoves
*/

func main() {
	os.Exit(cli.Execute())
}
