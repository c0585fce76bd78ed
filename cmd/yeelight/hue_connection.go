package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/amimof/huego"
	"github.com/rs/zerolog/log"
	"go.uber.org/atomic"

	"github.com/wufe/yeelight"
)

var errHueBridgeNotConfigured = errors.New("hue bridge ip or username not configured")

type HueConnection struct {
	bridgeIP       string
	bridgeUsername string

	bridge *huego.Bridge

	groups map[string]HueGroupState
	polls  atomic.Int64
}

func NewHueConnection(
	bridgeIP string,
	bridgeUsername string,
) *HueConnection {
	return &HueConnection{
		groups:         make(map[string]HueGroupState),
		bridgeIP:       bridgeIP,
		bridgeUsername: bridgeUsername,
	}
}

// Start polls the bridge until ctx is done and mirrors every configured group
// change to the bulbs through commandSender.
func (h *HueConnection) Start(ctx context.Context, configuration Configuration, commandSender BulbCommandSender, opts ...yeelight.TransitionOption) error {
	if h.bridgeIP == "" || h.bridgeUsername == "" {
		return errHueBridgeNotConfigured
	}

	h.bridge = huego.New(h.bridgeIP, h.bridgeUsername)

	ticker := time.NewTicker(configuration.PollingDuration())
	defer ticker.Stop()

	for {
		h.pollState(ctx, configuration, commandSender, opts)

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (h *HueConnection) pollState(ctx context.Context, configuration Configuration, commandSender BulbCommandSender, opts []yeelight.TransitionOption) {
	state, err := h.bridge.GetFullStateContext(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		if errorIsLinkButtonNotPressed(err) {
			log.Warn().Msg("Hue bridge rejected the username: press the link button and register the app first")
			return
		}
		err = fmt.Errorf("error getting full state context: %w", err)
		log.Err(err).Msg(err.Error())
		return
	}
	h.polls.Inc()

	groups := extractGroups(state)
	for _, groupName := range configuration.GetRequiredHueGroups() {
		current, found := groups[groupName]
		if !found {
			log.Debug().Msgf("Hue group [%s] not found on the bridge", groupName)
			continue
		}

		var previous *HueGroupState
		if p, seen := h.groups[groupName]; seen {
			if p == current {
				continue
			}
			previous = &p
		}
		h.groups[groupName] = current

		messages := configuration.GetMessagesToDispatchOnHueGroupChanged(groupName, previous, current, opts...)
		for _, message := range messages {
			log.Info().Msgf("Hue group [%s] changed: %s -> %s", groupName, message.Command.Method(), message.Bulb)
			if err := commandSender.SendMsg(ctx, message.Bulb, message.Command); err != nil {
				log.Err(err).Msg("error sending message")
			}
		}
	}
}

// Polls is the number of successful bridge state reads.
func (h *HueConnection) Polls() int64 {
	return h.polls.Load()
}

// extractGroups reads the groups out of a bridge full state, keyed by group
// name. Malformed entries are skipped.
func extractGroups(state map[string]interface{}) map[string]HueGroupState {
	groups := make(map[string]HueGroupState)

	rawGroups, ok := state["groups"].(map[string]interface{})
	if !ok {
		return groups
	}

	for _, rawGroup := range rawGroups {
		group, ok := rawGroup.(map[string]interface{})
		if !ok {
			continue
		}
		name, ok := group["name"].(string)
		if !ok {
			continue
		}

		var groupState HueGroupState
		if s, ok := group["state"].(map[string]interface{}); ok {
			groupState.On, _ = s["any_on"].(bool)
		}
		if action, ok := group["action"].(map[string]interface{}); ok {
			if bri, ok := action["bri"].(float64); ok {
				groupState.Bri = int(bri)
			}
			if xy, ok := action["xy"].([]interface{}); ok && len(xy) == 2 {
				x, okX := xy[0].(float64)
				y, okY := xy[1].(float64)
				if okX && okY {
					groupState.X, groupState.Y, groupState.HasXY = x, y, true
				}
			}
		}
		groups[name] = groupState
	}
	return groups
}

func errorIsLinkButtonNotPressed(err error) bool {
	return strings.Contains(err.Error(), "link button not pressed")
}
