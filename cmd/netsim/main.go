// Command netsim runs a data-link-layer network simulation described
// by a topology JSON file (§6). It is the external CLI collaborator
// named in §1: the simulator core itself knows nothing of flags, JSON,
// or files.
package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/apex/log"
	"github.com/fatih/color"
	"github.com/natefinch/lumberjack"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/bassosimone/netsim"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		log.WithError(err).Error("netsim")
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		executionDuration time.Duration
		nodeOutputPath    string
		silentNodes       bool
		statsPeriod       time.Duration
		statsCSVPath      string
		metricsAddr       string
		tracePath         string
		seed              int64
	)

	cmd := &cobra.Command{
		Use:   "netsim <topology.json>",
		Short: "Run a discrete-event data-link-layer network simulation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var seedPtr *int64
			if cmd.Flags().Changed("seed") {
				seedPtr = &seed
			}
			return run(runOptions{
				topologyPath:      args[0],
				executionDuration: executionDuration,
				nodeOutputPath:    nodeOutputPath,
				silentNodes:       silentNodes,
				statsPeriod:       statsPeriod,
				statsCSVPath:      statsCSVPath,
				metricsAddr:       metricsAddr,
				tracePath:         tracePath,
				seed:              seedPtr,
			})
		},
	}

	flags := cmd.Flags()
	flags.DurationVarP(&executionDuration, "execution-duration", "e", 0, "stop the run once the virtual clock reaches this duration (0: uncapped)")
	flags.StringVar(&nodeOutputPath, "node-output", "", "file to write node print() output to (default: standard output)")
	flags.BoolVar(&silentNodes, "silent-nodes", false, "suppress node print() output entirely")
	flags.DurationVar(&statsPeriod, "stats-period", 10*time.Second, "interval between stats ticks")
	flags.StringVar(&statsCSVPath, "stats-csv", "", "file to write periodic CSV stats rows to")
	flags.StringVar(&metricsAddr, "metrics-addr", "", "if set, serve Prometheus metrics on this address (e.g. :9090)")
	flags.StringVar(&tracePath, "trace", "", "if set, write every delivered frame to this PCAP file")
	flags.Int64VarP(&seed, "seed", "S", 0, "seed the PRNG for reproducible runs (default: non-deterministic)")

	return cmd
}

type runOptions struct {
	topologyPath      string
	executionDuration time.Duration
	nodeOutputPath    string
	silentNodes       bool
	statsPeriod       time.Duration
	statsCSVPath      string
	metricsAddr       string
	tracePath         string
	seed              *int64
}

func run(opts runOptions) error {
	rec, err := loadTopology(opts.topologyPath)
	if err != nil {
		return err
	}

	factory, err := resolveModule(rec.Module)
	if err != nil {
		return err
	}

	closers, nodeOutput, err := setupNodeOutput(opts)
	if err != nil {
		return err
	}
	defer closeAll(closers)

	var sinks netsim.MultiStatsSink
	if opts.statsCSVPath != "" {
		f, err := os.Create(opts.statsCSVPath)
		if err != nil {
			return fmt.Errorf("%w: %s", netsim.ErrConfiguration, err.Error())
		}
		closers = append(closers, f)
		sinks = append(sinks, netsim.NewCSVStatsSink(f))
	}
	if opts.metricsAddr != "" {
		reg := prometheus.NewRegistry()
		sinks = append(sinks, netsim.NewPrometheusStatsSink(reg))
		go serveMetrics(opts.metricsAddr, reg)
	}

	var trace *netsim.TraceWriter
	if opts.tracePath != "" {
		f, err := os.Create(opts.tracePath)
		if err != nil {
			return fmt.Errorf("%w: %s", netsim.ErrConfiguration, err.Error())
		}
		closers = append(closers, f)
		trace, err = netsim.NewTraceWriter(f)
		if err != nil {
			return err
		}
	}

	var statsSink netsim.StatsSink
	if len(sinks) > 0 {
		statsSink = sinks
	}

	sim, err := netsim.Build(rec, factory, netsim.SimulatorConfig{
		Logger:            log.Log,
		Seed:              opts.seed,
		DurationMicros:    opts.executionDuration.Microseconds(),
		SilentNodes:       opts.silentNodes,
		NodeOutput:        nodeOutput,
		StatsSink:         statsSink,
		StatsPeriodMicros: opts.statsPeriod.Microseconds(),
		Trace:             trace,
	})
	if err != nil {
		return err
	}

	sim.Boot()
	sim.Run()

	log.Infof("netsim: simulation complete at t=%d us", sim.CurrentTimeMicros())
	return nil
}

// setupNodeOutput resolves --node-output and --silent-nodes into the
// callback [netsim.SimulatorConfig.NodeOutput] invokes for every
// node print(). A file destination is rotated with lumberjack so a
// long-running simulation does not produce an unbounded log file; a
// terminal destination is colorized per node index with fatih/color.
func setupNodeOutput(opts runOptions) ([]io.Closer, func(string), error) {
	if opts.silentNodes {
		return nil, func(string) {}, nil
	}

	if opts.nodeOutputPath == "" {
		return nil, coloredNodeOutput(os.Stdout, !color.NoColor), nil
	}

	w := &lumberjack.Logger{
		Filename:   opts.nodeOutputPath,
		MaxSize:    100,
		MaxBackups: 5,
		MaxAge:     28,
	}
	return []io.Closer{w}, coloredNodeOutput(w, false), nil
}

// nodePrefixPattern extracts the node index from a formatted
// NodeAPI.Print line ("[<index>]: ...").
var nodePrefixPattern = regexp.MustCompile(`^\[(\d+)\]:`)

var nodeColorPalette = []color.Attribute{
	color.FgGreen, color.FgYellow, color.FgBlue, color.FgMagenta,
	color.FgCyan, color.FgRed, color.FgHiGreen, color.FgHiYellow,
}

// coloredNodeOutput writes each line to w, optionally colorized by
// the node index found in its "[<index>]: " prefix.
func coloredNodeOutput(w io.Writer, colorize bool) func(string) {
	return func(line string) {
		if !colorize {
			fmt.Fprintln(w, line)
			return
		}
		m := nodePrefixPattern.FindStringSubmatch(line)
		if m == nil {
			fmt.Fprintln(w, line)
			return
		}
		index, _ := strconv.Atoi(m[1])
		c := color.New(nodeColorPalette[index%len(nodeColorPalette)])
		c.Fprintln(w, line)
	}
}

func serveMetrics(addr string, reg *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.WithError(err).Warn("netsim: metrics server exited")
	}
}

func closeAll(closers []io.Closer) {
	for _, c := range closers {
		_ = c.Close()
	}
}
