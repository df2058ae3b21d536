package notification

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// StaleFlagger marca los pedidos pendientes desde hace más de olderThan.
type StaleFlagger interface {
	FlagStaleOrders(ctx context.Context, olderThan time.Duration) (int, error)
}

// StaleSweeper barrido periódico de pedidos pendientes sin confirmar.
type StaleSweeper struct {
	flagger    StaleFlagger
	interval   time.Duration
	staleAfter time.Duration
	log        zerolog.Logger
}

// NewStaleSweeper construye el barrido.
func NewStaleSweeper(flagger StaleFlagger, interval, staleAfter time.Duration, log zerolog.Logger) *StaleSweeper {
	if interval <= 0 {
		interval = time.Hour
	}
	if staleAfter <= 0 {
		staleAfter = 7 * 24 * time.Hour
	}
	return &StaleSweeper{flagger: flagger, interval: interval, staleAfter: staleAfter, log: log}
}

// Run ejecuta un barrido inmediato y luego uno por intervalo hasta que ctx se cancela.
func (s *StaleSweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		s.SweepOnce(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// SweepOnce ejecuta un barrido y devuelve cuántos pedidos se marcaron.
func (s *StaleSweeper) SweepOnce(ctx context.Context) int {
	n, err := s.flagger.FlagStaleOrders(ctx, s.staleAfter)
	if err != nil {
		s.log.Error().Err(err).Msg("barrido de pedidos pendientes fallido")
		return 0
	}
	if n > 0 {
		s.log.Info().Int("flagged", n).Msg("pedidos pendientes marcados para revisión")
	}
	return n
}
