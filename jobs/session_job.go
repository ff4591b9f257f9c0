package jobs

import (
	"time"

	"github.com/anjiri1684/study_hub/database"
	"github.com/anjiri1684/study_hub/metrics"
	"github.com/anjiri1684/study_hub/services"
	"github.com/rs/zerolog/log"
)

func StartDueSessions() {
	started, err := services.StartDueSessions(database.DB, time.Now())
	if err != nil {
		log.Error().Err(err).Msg("start due sessions job failed")
		return
	}
	if started > 0 {
		log.Info().Int64("sessions", started).Msg("marked sessions as ongoing")
	}
}

// ReconcileCapacity repairs cached booking counters that disagree with the
// live appointment count.
func ReconcileCapacity() {
	drifted, err := services.ReconcileScheduled(database.DB)
	if len(drifted) > 0 {
		metrics.CapacityDrift.Add(float64(len(drifted)))
		log.Warn().Int("sessions", len(drifted)).Msg("repaired session capacity drift")
	}
	if err != nil {
		log.Error().Err(err).Msg("capacity reconciliation job failed")
	}
}
