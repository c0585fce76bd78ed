package main

import "github.com/wufe/yeelight"

type ActionTrigger string

const (
	ActionTriggerHueLightSync ActionTrigger = "hue light sync"
)

type LightSyncValue string

const (
	LightSyncValueOnOff      LightSyncValue = "on-off"
	LightSyncValueOn         LightSyncValue = "on"
	LightSyncValueOff        LightSyncValue = "off"
	LightSyncValueBrightness LightSyncValue = "brightness"
	LightSyncValueColor      LightSyncValue = "color"
)

type ConfigurationAction struct {
	Trigger         ActionTrigger                       `json:"trigger" yaml:"trigger"`
	GroupName       string                              `json:"group_name" yaml:"group_name"`
	YeelightActions []ConfigurationActionYeelightAction `json:"yeelight_actions" yaml:"yeelight_actions"`
}

type ConfigurationActionYeelightAction struct {
	Bulb            string           `json:"bulb" yaml:"bulb"`
	SyncValues      []LightSyncValue `json:"sync_values" yaml:"sync_values"`
	BrightnessRange []int            `json:"brightness_range" yaml:"brightness_range"`
}

// BulbMessage is a command addressed to a configured bulb.
type BulbMessage struct {
	Bulb    string
	Command yeelight.Command
}

// ConfigurationSchedule runs a CLI verb on bulbs at times given by a cron
// expression, e.g. {"cron": "0 7 * * 1-5", "bulbs": ["desk"], "verb": "power", "args": ["on"]}.
type ConfigurationSchedule struct {
	Cron  string   `json:"cron" yaml:"cron"`
	Bulbs []string `json:"bulbs" yaml:"bulbs"`
	Verb  string   `json:"verb" yaml:"verb"`
	Args  []string `json:"args" yaml:"args"`
}
