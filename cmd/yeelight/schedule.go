package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/wufe/yeelight"
)

var scheduleParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

type scheduleJob struct {
	name     string
	schedule cron.Schedule
	bulbs    []string
	command  yeelight.Command
}

func (j scheduleJob) run(ctx context.Context, sender BulbCommandSender) {
	log.Info().Msgf("Schedule [%s]: %s", j.name, j.command.Method())
	for _, bulb := range j.bulbs {
		if err := sender.SendMsg(ctx, bulb, j.command); err != nil {
			log.Err(err).Msgf("Schedule [%s]: error sending to %s", j.name, bulb)
		}
	}
}

func newScheduleJob(s ConfigurationSchedule, opts []yeelight.TransitionOption) (scheduleJob, error) {
	schedule, err := scheduleParser.Parse(s.Cron)
	if err != nil {
		return scheduleJob{}, fmt.Errorf("invalid cron %q: %w", s.Cron, err)
	}
	cmd, err := buildCommand(s.Verb, s.Args, opts)
	if err != nil {
		return scheduleJob{}, err
	}
	return scheduleJob{
		name:     strings.TrimSpace(s.Cron + " " + s.Verb + " " + strings.Join(s.Args, " ")),
		schedule: schedule,
		bulbs:    s.Bulbs,
		command:  cmd,
	}, nil
}

// RunSchedules fires the configured schedules until ctx is done.
func RunSchedules(ctx context.Context, configuration Configuration, sender BulbCommandSender, opts ...yeelight.TransitionOption) error {
	if len(configuration.Schedules) == 0 {
		return nil
	}

	c := cron.New(cron.WithParser(scheduleParser))
	for _, s := range configuration.Schedules {
		job, err := newScheduleJob(s, opts)
		if err != nil {
			return err
		}
		c.Schedule(job.schedule, cron.FuncJob(func() {
			job.run(ctx, sender)
		}))
		log.Debug().Msgf("Scheduled [%s]", job.name)
	}

	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}
