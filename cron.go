package yeelight

import "time"

// Cron is a timer kept by the bulb. Bulbs only know about delayed power off.
type Cron interface {
	CronType() int
	CronDuration() time.Duration
	isCron()
}

var _ Cron = CronPowerOff{}

// CronPowerOff switches the bulb off after Duration, rounded down to whole
// minutes with a floor of one minute.
type CronPowerOff struct {
	Duration time.Duration
}

func (CronPowerOff) CronType() int { return 0 }

func (CronPowerOff) isCron() {}

func (c CronPowerOff) CronDuration() time.Duration {
	return c.Duration
}
