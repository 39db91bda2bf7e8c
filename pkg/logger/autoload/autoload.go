// Package autoload configures the global logger from LOG_* variables when
// imported.
package autoload

import (
	"github.com/kelseyhightower/envconfig"
	logx "github.com/tanpawarit/tool-enhanced-reasoning/pkg/logger"
)

// init reads the process environment only; flag parsing is left to main.
func init() {
	var conf logx.Config
	if err := envconfig.Process("LOG", &conf); err != nil {
		logx.Init()
		return
	}
	logx.Init(conf)
}
