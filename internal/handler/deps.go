package handler

import (
	"time"

	"relaychat/internal/app/chat"
	"relaychat/internal/configs"
	"relaychat/internal/pkg/metrics"
)

// AppDeps carries what the handlers need from the composition root.
type AppDeps struct {
	Hub     *chat.Hub
	Config  *configs.AppConfig
	Metrics *metrics.Metrics

	// Now is the clock used for invite tokens. Nil means time.Now.
	Now func() time.Time
}

func (d *AppDeps) now() time.Time {
	if d.Now == nil {
		return time.Now()
	}
	return d.Now()
}
