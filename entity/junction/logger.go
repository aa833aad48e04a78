package junction

import "github.com/sirupsen/logrus"

// log 路口模块的日志记录器
// 说明：只在Manager与RPC中使用，Intersection本身不输出日志
var log = logrus.WithField("module", "junction")
