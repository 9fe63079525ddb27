package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
)

const version = "0.3.0"

// errUsage marks argument errors; they exit with status 2.
var errUsage = errors.New("usage error")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run dispatches one subcommand and returns the process exit status.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		printUsage(stderr)
		return 2
	}

	cli := &cli{ctx: ctx, stdout: stdout, stderr: stderr}
	command, rest := args[0], args[1:]

	var err error
	switch command {
	case "lattice":
		err = cli.lattice(rest)
	case "dope":
		err = cli.dope(rest)
	case "diffuse":
		err = cli.diffuse(rest)
	case "verify":
		err = cli.verify(rest)
	case "inspect":
		err = cli.inspect(rest)
	case "export":
		err = cli.export(rest)
	case "ensemble":
		err = cli.ensemble(rest)
	case "help", "--help", "-h":
		printUsage(stdout)
		return 0
	case "version", "--version", "-v":
		fmt.Fprintf(stdout, "icedope v%s\n", version)
		return 0
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n\n", command)
		printUsage(stderr)
		return 2
	}

	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage):
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
}

func printUsage(w io.Writer) {
	usage := `icedope - ion-pair doping and diffusion in hydrogen-bond networks

Usage:
  icedope <command> [options]

Available Commands:
  lattice   Build a water-rule lattice bundle
            icedope lattice -kind ring|square|diamond -size N -out FILE
  dope      Insert anion/cation pairs
            icedope dope [-config FILE] [-seed S] IN PERCENT OUT
  diffuse   Hop existing ions to neighbouring water sites
            icedope diffuse [-config FILE] [-seed S] IN MOVES OUT
  verify    Check lattice invariants
            icedope verify IN
  inspect   Print census, ions and reachability from one site
            icedope inspect [-site S] IN
  export    Write a point cloud to stdout or -o FILE
            icedope export -format xyz|mdview|json [-o FILE] IN
  ensemble  Dope and diffuse independent replicas in parallel
            icedope ensemble [-config FILE] [-seed S] -replicas K [-workers W] [-progress] IN PERCENT MOVES OUTDIR
  help      Show this help message
  version   Show version information

Environment:
  ICEDOPE_LOG_LEVEL, ICEDOPE_LOG_FORMAT override the configured log settings.
`
	fmt.Fprint(w, usage)
}
