package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sanity-io/litter"
	"gopkg.in/yaml.v3"

	"github.com/wufe/yeelight"
)

const (
	defaultConfigurationFile = "configuration.json"
	defaultAppName           = "yeelight synchronizer"
	defaultPollingMs         = 200
)

var errConfigurationNotFound = errors.New("configuration file not found")

type Configuration struct {
	BridgeIP       string                  `json:"bridge_ip" yaml:"bridge_ip"`
	BridgeUsername string                  `json:"bridge_username" yaml:"bridge_username"`
	AppName        string                  `json:"app_name" yaml:"app_name"`
	PollingMs      int                     `json:"polling_ms" yaml:"polling_ms"`
	Bulbs          map[string]string       `json:"bulbs" yaml:"bulbs"` // Key is friendly bulb name, value is ip:port
	Actions        []ConfigurationAction   `json:"actions" yaml:"actions"`
	Schedules      []ConfigurationSchedule `json:"schedules" yaml:"schedules"`
}

func NewConfiguration(configurationFilePath string) (Configuration, error) {
	absoluteConfigurationFilePath, err := filepath.Abs(configurationFilePath)
	if err != nil {
		return Configuration{}, fmt.Errorf("error getting absolute path for configuration file: %w", err)
	}

	if _, err := os.Stat(absoluteConfigurationFilePath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Configuration{}, fmt.Errorf("%w: %s", errConfigurationNotFound, absoluteConfigurationFilePath)
		}
		return Configuration{}, fmt.Errorf("error checking configuration file: %w", err)
	}

	rawConfiguration, err := os.ReadFile(absoluteConfigurationFilePath)
	if err != nil {
		return Configuration{}, fmt.Errorf("error reading configuration file: %w", err)
	}

	var configuration Configuration
	switch strings.ToLower(filepath.Ext(absoluteConfigurationFilePath)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(rawConfiguration, &configuration)
	default:
		err = json.Unmarshal(rawConfiguration, &configuration)
	}
	if err != nil {
		return Configuration{}, fmt.Errorf("error unmarshalling configuration: %w", err)
	}

	if configuration.AppName == "" {
		configuration.AppName = defaultAppName
	}
	if configuration.PollingMs <= 0 {
		configuration.PollingMs = defaultPollingMs
	}

	if err := configuration.Validate(); err != nil {
		return Configuration{}, err
	}

	log.Debug().Msgf("Loaded configuration from %s: %s", absoluteConfigurationFilePath, litter.Sdump(configuration))

	return configuration, nil
}

// Validate checks that every action and schedule refers to a configured
// bulb and that schedules parse.
func (c *Configuration) Validate() error {
	for name, address := range c.Bulbs {
		if _, err := yeelight.DeviceAt(address); err != nil {
			return fmt.Errorf("bulb %q: %w", name, err)
		}
	}
	for i, action := range c.Actions {
		if action.Trigger != ActionTriggerHueLightSync {
			return fmt.Errorf("action %d: unknown trigger %q", i, action.Trigger)
		}
		if action.GroupName == "" {
			return fmt.Errorf("action %d: missing group_name", i)
		}
		for _, yeelightAction := range action.YeelightActions {
			if _, ok := c.Bulbs[yeelightAction.Bulb]; !ok {
				return fmt.Errorf("action %d: unknown bulb %q", i, yeelightAction.Bulb)
			}
			if r := yeelightAction.BrightnessRange; len(r) != 0 && (len(r) != 2 || r[0] > r[1]) {
				return fmt.Errorf("action %d: brightness_range must be [min, max]", i)
			}
		}
	}
	for i, schedule := range c.Schedules {
		if _, err := newScheduleJob(schedule, nil); err != nil {
			return fmt.Errorf("schedule %d: %w", i, err)
		}
		if len(schedule.Bulbs) == 0 {
			return fmt.Errorf("schedule %d: no bulbs", i)
		}
		for _, bulb := range schedule.Bulbs {
			if _, ok := c.Bulbs[bulb]; !ok {
				return fmt.Errorf("schedule %d: unknown bulb %q", i, bulb)
			}
		}
	}
	return nil
}

func (c *Configuration) PollingDuration() time.Duration {
	return time.Duration(c.PollingMs) * time.Millisecond
}

// GetBulbDevices resolves bulb names to devices. With no names, every
// configured bulb is returned, sorted by name.
func (c *Configuration) GetBulbDevices(names ...string) ([]yeelight.Device, error) {
	if len(names) == 0 {
		for name := range c.Bulbs {
			names = append(names, name)
		}
		sort.Strings(names)
	}

	devices := make([]yeelight.Device, 0, len(names))
	for _, name := range names {
		address, ok := c.Bulbs[name]
		if !ok {
			return nil, fmt.Errorf("bulb not found: %s", name)
		}
		device, err := yeelight.DeviceAt(address)
		if err != nil {
			return nil, fmt.Errorf("bulb %q: %w", name, err)
		}
		device.ID = name
		device.Name = name
		devices = append(devices, device)
	}
	return devices, nil
}

func (c *Configuration) GetRequiredHueGroups() []string {
	var groups []string
	for _, action := range c.Actions {
		if action.Trigger == ActionTriggerHueLightSync && !slices.Contains(groups, action.GroupName) {
			groups = append(groups, action.GroupName)
		}
	}
	return groups
}

// GetMessagesToDispatchOnHueGroupChanged turns a change of a Hue group into
// the commands for the bulbs mirroring it. previous is nil the first time
// the group is seen, in which case every synced value is sent.
func (c *Configuration) GetMessagesToDispatchOnHueGroupChanged(groupName string, previous *HueGroupState, current HueGroupState, opts ...yeelight.TransitionOption) []BulbMessage {
	var messages []BulbMessage
	for _, action := range c.Actions {
		if action.Trigger != ActionTriggerHueLightSync || action.GroupName != groupName {
			continue
		}
		for _, yeelightAction := range action.YeelightActions {
			for _, syncValue := range yeelightAction.SyncValues {
				cmd, ok := commandForSyncValue(syncValue, yeelightAction, previous, current, opts)
				if !ok {
					continue
				}
				messages = append(messages, BulbMessage{
					Bulb:    yeelightAction.Bulb,
					Command: cmd,
				})
			}
		}
	}
	return messages
}

func commandForSyncValue(syncValue LightSyncValue, action ConfigurationActionYeelightAction, previous *HueGroupState, current HueGroupState, opts []yeelight.TransitionOption) (yeelight.Command, bool) {
	powerChanged := previous == nil || previous.On != current.On

	switch syncValue {
	case LightSyncValueOnOff:
		if powerChanged {
			return yeelight.SetPower(current.On, opts...), true
		}
	case LightSyncValueOn:
		if powerChanged && current.On {
			return yeelight.SetPower(true, opts...), true
		}
	case LightSyncValueOff:
		if powerChanged && !current.On {
			return yeelight.SetPower(false, opts...), true
		}
	case LightSyncValueBrightness:
		brightness := scaleBrightness(current.Bri, action.BrightnessRange)
		if current.On && (previous == nil || scaleBrightness(previous.Bri, action.BrightnessRange) != brightness) {
			return yeelight.SetBrightness(brightness, opts...), true
		}
	case LightSyncValueColor:
		if !current.HasXY || !current.On {
			return yeelight.Command{}, false
		}
		rgb := yeelight.PackRGB(xyToRGB(current.X, current.Y))
		if previous == nil || !previous.HasXY || yeelight.PackRGB(xyToRGB(previous.X, previous.Y)) != rgb {
			return yeelight.SetColorRGB(rgb, opts...), true
		}
	default:
		log.Warn().Msgf("Unknown sync value %q for bulb %s", syncValue, action.Bulb)
	}
	return yeelight.Command{}, false
}
