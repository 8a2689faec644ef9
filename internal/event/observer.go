package event

import (
	"context"

	"github.com/rs/zerolog/log"
)

// LogObserver logs failed handler results at error level and successful ones
// at debug level.
func LogObserver(_ context.Context, r Result) {
	if r.Err != nil {
		log.Error().Err(r.Err).
			Str("event", string(r.Event)).
			Str("subscriber", r.Subscriber).
			Dur("duration", r.Duration).
			Msg("event.Bus: handler failed")
		return
	}
	log.Debug().
		Str("event", string(r.Event)).
		Str("subscriber", r.Subscriber).
		Dur("duration", r.Duration).
		Msg("event.Bus: handler done")
}

// Observers fans one Result out to several observers in order.
func Observers(obs ...Observer) Observer {
	return func(ctx context.Context, r Result) {
		for _, o := range obs {
			if o != nil {
				o(ctx, r)
			}
		}
	}
}
