// Package autoload initializes the global logger from LOG_* environment
// variables when imported for side effects.
package autoload

import (
	configx "github.com/tanpawarit/Chative-Slot-Filling-Dialogue/pkg/config"
	logx "github.com/tanpawarit/Chative-Slot-Filling-Dialogue/pkg/logger"
)

func init() {
	logx.Init(*configx.MustNew[logx.Config]("LOG"))
}
