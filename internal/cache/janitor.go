package cache

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

const DefaultPurgeSchedule = "@every 10m"

type Purger interface {
	Purge() int
}

// StartJanitor schedules periodic purges of expired entries. The caller stops
// the returned cron on shutdown.
func StartJanitor(schedule string, purgers ...Purger) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		for _, p := range purgers {
			if n := p.Purge(); n > 0 {
				log.Info().Int("removed", n).Str("purger", fmt.Sprintf("%T", p)).Msg("Purged expired entries")
			}
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to schedule cache purge: %w", err)
	}
	c.Start()
	return c, nil
}
