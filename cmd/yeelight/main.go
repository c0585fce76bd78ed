package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sanity-io/litter"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/wufe/yeelight"
)

var defaultPropertyNames = []string{"power", "bright", "ct", "rgb", "hue", "sat", "color_mode", "name"}

type options struct {
	configPath string
	devices    []string
	names      []string
	timeout    time.Duration
	logLevel   string
	sudden     bool
	duration   time.Duration
	tui        bool
	httpAddr   string
	wait       time.Duration
}

func main() {
	// Init logger
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		log.Err(err).Msg(err.Error())
		os.Exit(1)
	}
}

func newFlagSet(opts *options) *pflag.FlagSet {
	fs := pflag.NewFlagSet("yeelight", pflag.ContinueOnError)
	fs.StringVarP(&opts.configPath, "config", "c", defaultConfigurationFile, "path of the configuration file")
	fs.StringArrayVarP(&opts.devices, "device", "d", nil, "bulb address as ip:port (repeatable)")
	fs.StringArrayVarP(&opts.names, "name", "n", nil, "configured bulb name (repeatable)")
	fs.DurationVar(&opts.timeout, "timeout", yeelight.DefaultReadTimeout, "how long to wait for a bulb reply")
	fs.StringVar(&opts.logLevel, "log-level", zerolog.LevelInfoValue, "log level (trace, debug, info, warn, error)")
	fs.BoolVar(&opts.sudden, "sudden", false, "apply changes without a transition")
	fs.DurationVar(&opts.duration, "duration", yeelight.DefaultTransitionDuration, "transition duration of smooth changes")
	fs.BoolVar(&opts.tui, "tui", false, "show a terminal UI while syncing")
	fs.StringVar(&opts.httpAddr, "http", "", "serve the bulb status as JSON on this address while syncing")
	fs.DurationVar(&opts.wait, "wait", yeelight.DefaultDiscoveryWait, "how long discover listens for replies")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: yeelight [flags] <verb> [args]\n\n")
		fmt.Fprintf(os.Stderr, "Verbs:\n")
		fmt.Fprintf(os.Stderr, "  discover | props [names...] | sync\n")
		fmt.Fprintf(os.Stderr, "  power on|off | toggle | bright <n> | rgb <rrggbb> | hsv <h> <s> | ct <k>\n")
		fmt.Fprintf(os.Stderr, "  flow %s | stop-flow | default\n", flowPresetNames())
		fmt.Fprintf(os.Stderr, "  sleep <minutes> | cron-get | cron-del | scene color|hsv|ct|flow|auto-off <args>\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n%s", fs.FlagUsages())
	}
	return fs
}

func run(args []string) error {
	var opts options
	fs := newFlagSet(&opts)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return fmt.Errorf("%w: missing verb", errUsage)
	}
	verb, verbArgs := fs.Arg(0), fs.Args()[1:]

	level, err := zerolog.ParseLevel(opts.logLevel)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	zerolog.SetGlobalLevel(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := newStatus()
	metrics := newExchangeMetrics()
	var tui *TUI
	if opts.tui && verb == "sync" {
		tui = NewTUI(registry)
		registry.OnChange(tui.UpdateTUI)
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: tui})
	}

	transport := yeelight.NewTransport(
		yeelight.WithReadTimeout(opts.timeout),
		yeelight.WithExchangeObserver(func(e yeelight.Exchange) {
			registry.Observe(e)
			metrics.Observe(e)
			if tui != nil {
				tui.ObserveExchange(e)
			}
		}),
	)

	switch verb {
	case "discover":
		return discover(ctx, opts)
	case "props":
		return props(ctx, opts, transport, registry, verbArgs)
	case "sync":
		return runSync(ctx, opts, transport, registry, metrics, tui)
	}

	cmd, err := buildCommand(verb, verbArgs, transitionOptions(opts))
	if err != nil {
		return err
	}
	devices, err := resolveTargets(opts)
	if err != nil {
		return err
	}

	connection := NewYeelightConnection(transport, devices)
	if failed := connection.SendCommand(ctx, devices, cmd); failed > 0 {
		return fmt.Errorf("%s failed on %d of %d bulbs", cmd.Method(), failed, len(devices))
	}
	return nil
}

func transitionOptions(opts options) []yeelight.TransitionOption {
	if opts.sudden {
		return []yeelight.TransitionOption{yeelight.Sudden()}
	}
	return []yeelight.TransitionOption{yeelight.WithDuration(opts.duration)}
}

// resolveTargets returns the bulbs named by --device and --name. Without
// either, every bulb of the configuration file is targeted.
func resolveTargets(opts options) ([]yeelight.Device, error) {
	var devices []yeelight.Device
	for _, address := range opts.devices {
		device, err := yeelight.DeviceAt(address)
		if err != nil {
			return nil, err
		}
		devices = append(devices, device)
	}

	if len(opts.devices) > 0 && len(opts.names) == 0 {
		return devices, nil
	}

	configuration, err := NewConfiguration(opts.configPath)
	if err != nil {
		if len(opts.names) == 0 && errors.Is(err, errConfigurationNotFound) {
			return nil, fmt.Errorf("%w: no --device or --name given and %w", errUsage, err)
		}
		return nil, err
	}
	named, err := configuration.GetBulbDevices(opts.names...)
	if err != nil {
		return nil, err
	}
	devices = append(devices, named...)
	if len(devices) == 0 {
		return nil, fmt.Errorf("%w: no bulbs configured", errUsage)
	}
	return devices, nil
}

func discover(ctx context.Context, opts options) error {
	log.Info().Msgf("Searching for bulbs for %s", opts.wait)
	devices, err := yeelight.Discover(ctx, yeelight.WithDiscoveryWait(opts.wait))
	if err != nil {
		return err
	}
	log.Info().Msgf("Found %d bulbs", len(devices))
	for _, device := range devices {
		fmt.Println(litter.Sdump(device))
	}
	return nil
}

func props(ctx context.Context, opts options, transport *yeelight.Transport, registry *status, names []string) error {
	if len(names) == 0 {
		names = defaultPropertyNames
	}
	devices, err := resolveTargets(opts)
	if err != nil {
		return err
	}

	cache := yeelight.NewPropertyCache(transport)
	var failed int
	for _, device := range devices {
		values, err := cache.Get(ctx, device, names...)
		if err != nil {
			failed++
			log.Err(err).Msgf("%s: get_prop failed", device.ID)
			continue
		}
		registry.SetProperties(device.ID, values)
		keys := make([]string, 0, len(values))
		for key := range values {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			fmt.Printf("%s\t%s\t%s\n", device.ID, key, values[key])
		}
	}
	if failed > 0 {
		return fmt.Errorf("get_prop failed on %d of %d bulbs", failed, len(devices))
	}
	return nil
}

func runSync(ctx context.Context, opts options, transport *yeelight.Transport, registry *status, metrics *exchangeMetrics, tui *TUI) error {
	configuration, err := NewConfiguration(opts.configPath)
	if err != nil {
		return err
	}
	devices, err := configuration.GetBulbDevices()
	if err != nil {
		return err
	}
	cache := yeelight.NewPropertyCache(transport)
	for _, device := range devices {
		registry.Register(device)
		values, err := cache.Get(ctx, device, defaultPropertyNames...)
		if err != nil {
			log.Warn().Err(err).Msgf("%s: could not read the initial state", device.ID)
			continue
		}
		registry.SetProperties(device.ID, values)
	}

	connection := NewYeelightConnection(transport, devices)
	hue := NewHueConnection(configuration.BridgeIP, configuration.BridgeUsername)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	if groups := configuration.GetRequiredHueGroups(); len(groups) > 0 {
		g.Go(func() error {
			log.Info().Msgf("%s: mirroring %d hue groups to %d bulbs", configuration.AppName, len(groups), len(devices))
			return hue.Start(ctx, configuration, connection, transitionOptions(opts)...)
		})
	}
	g.Go(func() error {
		return RunSchedules(ctx, configuration, connection, transitionOptions(opts)...)
	})
	if opts.httpAddr != "" {
		g.Go(func() error {
			return StartHTTPServer(ctx, opts.httpAddr, registry, transport, metrics)
		})
	}
	if tui != nil {
		g.Go(func() error {
			// quitting the TUI stops the sync
			defer cancel()
			return tui.RunNewProgram(ctx)
		})
	}
	return g.Wait()
}
