package global

import (
	"github.com/haierkeys/collab-doc-service/pkg/fileurl"
)

var (
	// 程序执行目录
	ROOT string
	Name string = "Collab Doc Service"

	// 以下变量由构建时 -ldflags 注入
	Version   string = "dev"
	GitTag    string
	BuildTime string
)

func init() {
	filename := fileurl.GetExePath()
	ROOT = filename + "/"
}
