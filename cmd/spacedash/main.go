// Package main 启动应用程序
package main

import (
	"os"

	"github.com/yeisme/spacedash/pkg/cmd"
)

//	@title			spacedash API
//	@version		1.0
//	@description	spacedash 统计用户存储用量：按文件类型汇总、配额占比与最近上传文件。

//	@license.name	MIT
//	@license.url	https://opensource.org/license/mit/

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
