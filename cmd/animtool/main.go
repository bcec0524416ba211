// cmd/animtool/main.go
// Animation content tool: validates, samples, plays, exports and stores
// authored animations.
//
// Usage:
//   go run ./cmd/animtool [-config animcore.yaml] <command> [flags] [args]

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/decker502/animcore/internal/config"
	"github.com/decker502/animcore/internal/metrics"
)

var (
	configPath  = flag.String("config", "", "config file path (defaults to $ANIMCORE_CONFIG)")
	verbose     = flag.Bool("verbose", false, "verbose logging")
	dumpMetrics = flag.Bool("metrics", false, "print collected metrics on exit")
)

type command struct {
	name  string
	usage string
	run   func(env *toolEnv, args []string) error
}

var commands = []command{
	{"validate", "validate [paths...]            load content and report skipped records", runValidate},
	{"sample", "sample -code C [-at T] [-joint J]  print the pose of one animation at time T", runSample},
	{"play", "play -code C[,C...] [-duration D]  run the composer and print triggered events", runPlay},
	{"export", "export [-format F] [-o FILE] [codes...]  write loaded animations", runExport},
	{"resample", "resample -shape FILE -code C   print a legacy animation as dense item keyframes", runResample},
	{"store", "store [codes...]               save loaded animations to the library", runStore},
	{"list", "list                           list animations stored in the library", runList},
}

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "Usage: animtool [flags] <command> [args]\n\nCommands:\n")
	for _, c := range commands {
		fmt.Fprintf(flag.CommandLine.Output(), "  %s\n", c.usage)
	}
	fmt.Fprintf(flag.CommandLine.Output(), "\nFlags:\n")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	if *verbose {
		log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	}

	if flag.NArg() < 1 {
		usage()
		os.Exit(2)
	}

	cfg, err := config.Load(context.Background(), *configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	env := &toolEnv{
		cfg:     cfg,
		metrics: metrics.New(metrics.WithNamespace(cfg.MetricsNamespace)),
	}

	name := flag.Arg(0)
	for _, c := range commands {
		if c.name != name {
			continue
		}
		if err := c.run(env, flag.Args()[1:]); err != nil {
			log.Fatalf("%s: %v", name, err)
		}
		if *dumpMetrics {
			if err := env.metrics.WriteText(os.Stdout); err != nil {
				log.Printf("[animtool] Warning: cannot write metrics: %v", err)
			}
		}
		return
	}

	fmt.Fprintf(os.Stderr, "unknown command %q\n\n", name)
	usage()
	os.Exit(2)
}
