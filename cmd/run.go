package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/desim-go/desim/config"
	"github.com/desim-go/desim/domain"
)

var (
	runConfigPath string

	runSeed           int64
	runArrivalRate    float64
	runServiceRate    float64
	runQueueCapacity  int
	runServerCapacity int
	runWarmUpHours    float64
	runRunHours       float64
	runLogLevel       string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the reference tandem-queue (M/M/1) network",
	RunE:  runTandem,
}

func init() {
	runCmd.Flags().StringVar(&runConfigPath, "config", "", "path to a network YAML config (overrides the flags below except --seed; the file's sandbox section is not used)")
	runCmd.Flags().Int64Var(&runSeed, "seed", 1, "RNG seed")
	runCmd.Flags().Float64Var(&runArrivalRate, "arrival-rate", 4, "arrival rate, in requests per hour")
	runCmd.Flags().Float64Var(&runServiceRate, "service-rate", 5, "service rate, in requests per hour")
	runCmd.Flags().IntVar(&runQueueCapacity, "queue-capacity", 0, "queue capacity (0 = unbounded)")
	runCmd.Flags().IntVar(&runServerCapacity, "server-capacity", 1, "server capacity (0 = unbounded)")
	runCmd.Flags().Float64Var(&runWarmUpHours, "warm-up-hours", 1000, "warm-up horizon, in simulated hours")
	runCmd.Flags().Float64Var(&runRunHours, "run-hours", 20000, "run horizon, in simulated hours")
	runCmd.Flags().StringVar(&runLogLevel, "log", "info", "log level (trace, debug, info, warn, error)")
}

// runTandem assembles a TandemNetwork from either a YAML config file (if
// --config is set) or the individual flags, runs its warm-up and measurement
// horizons, and logs the resulting occupancy and sojourn-time metrics.
func runTandem(cmd *cobra.Command, args []string) error {
	tandemCfg, logLevel, err := resolveTandemConfig()
	if err != nil {
		return err
	}

	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return err
	}
	logrus.SetLevel(level)

	stages := make([]domain.StageSpec, len(tandemCfg.Stages))
	for i, s := range tandemCfg.Stages {
		stages[i] = domain.StageSpec{
			QueueCapacity:  s.QueueCapacity,
			ServerCapacity: s.ServerCapacity,
			ServiceTime:    domain.ExponentialServiceTime(s.ServiceRatePerHour),
		}
	}

	net := domain.NewTandemNetwork("tandem", runSeed, domain.ExponentialInterArrival(tandemCfg.ArrivalRatePerHour), stages)
	net.Generator.Start()

	logrus.Infof("warming up for %s", tandemCfg.WarmUpDuration())
	if err := net.Root.WarmUp(tandemCfg.WarmUpDuration()); err != nil {
		return err
	}

	logrus.Infof("running for %s", tandemCfg.RunDuration())
	if _, err := net.Root.RunDuration(tandemCfg.RunDuration()); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"completions":         net.Completions(),
		"avg_hours_in_system": net.AverageHoursInSystem(),
	}).Info("simulation complete")

	return nil
}

// resolveTandemConfig loads --config if set, else builds a single-stage
// TandemConfig from the individual flags.
func resolveTandemConfig() (config.TandemConfig, string, error) {
	if runConfigPath != "" {
		cfg, err := config.Load(runConfigPath)
		if err != nil {
			return config.TandemConfig{}, "", err
		}
		level := cfg.Logging.Level
		if level == "" {
			level = "info"
		}
		return cfg.Tandem, level, nil
	}

	return config.TandemConfig{
		ArrivalRatePerHour: runArrivalRate,
		WarmUpHours:        runWarmUpHours,
		RunHours:           runRunHours,
		Stages: []config.StageConfig{
			{
				QueueCapacity:      runQueueCapacity,
				ServerCapacity:     runServerCapacity,
				ServiceRatePerHour: runServiceRate,
			},
		},
	}, runLogLevel, nil
}
