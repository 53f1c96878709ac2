// Flowplane - ECMP Fabric Control Plane
//
// A CLI tool for operating a fabric of programmable switches:
//   - Computes equal-cost multipath routes offline from a topology file
//   - Derives complete per-switch forwarding state (routes, ECMP groups,
//     alternate next hops, source MAC rewrites)
//   - Programs switch runtimes over persistent control channels
//   - Polls per-port byte counters for utilization monitoring
//   - Dry-run by default (preview forwarding state, require -x to execute)
//
// Examples:
//
//	flowplane -t topology.yaml show                # Topology summary
//	flowplane -t topology.yaml paths s1            # Minimal path sets from s1
//	flowplane -t topology.yaml program             # Dry-run: show derived state
//	flowplane -t topology.yaml program -x          # Program all switches
//	flowplane -t topology.yaml program -x --monitor
//	flowplane -t topology.yaml monitor --interval 2s
package main

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/flowplane-net/flowplane/pkg/audit"
	"github.com/flowplane-net/flowplane/pkg/cli"
	"github.com/flowplane-net/flowplane/pkg/device"
	"github.com/flowplane-net/flowplane/pkg/topology"
	"github.com/flowplane-net/flowplane/pkg/util"
	"github.com/flowplane-net/flowplane/pkg/version"
)

var (
	// Global option flags
	topologyPath string // -t, --topology
	sshUser      string // --ssh-user
	executeMode  bool   // -x (program only)
	verbose      bool   // -v

	// Global state
	topo *topology.Topology
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:               "flowplane",
	Short:             "ECMP Fabric Control Plane",
	SilenceUsage:      true,
	SilenceErrors:     true,
	CompletionOptions: cobra.CompletionOptions{HiddenDefaultCmd: true},
	Long: `Flowplane computes equal-cost multipath forwarding state from a
topology file and programs it into switch runtimes.

Write commands preview derived state by default — use -x to execute.

  flowplane -t <topology.yaml> <command> [args] [-x]`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		// Quiet by default, verbose on -v
		if verbose {
			util.SetLogLevel("debug")
		} else {
			util.SetLogLevel("warn")
		}

		var err error
		topo, err = topology.Load(topologyPath)
		if err != nil {
			return fmt.Errorf("loading topology: %w", err)
		}

		// Audit log lives next to the topology file
		auditPath := filepath.Join(filepath.Dir(topologyPath), "audit.log")
		auditLogger, err := audit.NewFileLogger(auditPath, audit.RotationConfig{
			MaxSize:    10 * 1024 * 1024, // 10MB
			MaxBackups: 10,
		})
		if err != nil {
			util.Warnf("Could not initialize audit logging: %v", err)
		} else {
			audit.SetDefaultLogger(auditLogger)
		}

		return nil
	},
}

// auditUser is the identity recorded on audit events.
func auditUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return "unknown"
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&topologyPath, "topology", "t", "topology.yaml", "Topology file")
	rootCmd.PersistentFlags().StringVar(&sshUser, "ssh-user", "", "Tunnel control channels through SSH as this user")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	rootCmd.AddCommand(programCmd)
	rootCmd.AddCommand(monitorCmd)
	rootCmd.AddCommand(pathsCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		if version.Version == "dev" {
			fmt.Println("flowplane dev build (use 'make build' for version info)")
		} else {
			fmt.Printf("flowplane %s (%s)\n", version.Version, version.GitCommit)
		}
	},
}

// connectOptions builds the runtime connection options from --ssh-user.
// The password comes from FLOWPLANE_SSH_PASS, falling back to a terminal
// prompt.
func connectOptions() (device.ConnectOptions, error) {
	if sshUser == "" {
		return device.ConnectOptions{}, nil
	}
	pass := os.Getenv("FLOWPLANE_SSH_PASS")
	if pass == "" {
		fmt.Fprintf(os.Stderr, "SSH password for %s: ", sshUser)
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return device.ConnectOptions{}, fmt.Errorf("reading password: %w", err)
		}
		pass = string(raw)
	}
	return device.ConnectOptions{SSHUser: sshUser, SSHPass: pass}, nil
}

// Helper to print dry-run notice
func printDryRunNotice() {
	if !executeMode {
		fmt.Println("\n" + yellow("DRY-RUN: No switches programmed. Use -x to execute."))
	}
}

// Color helpers — delegate to pkg/cli
func green(s string) string  { return cli.Green(s) }
func yellow(s string) string { return cli.Yellow(s) }
func red(s string) string    { return cli.Red(s) }
func bold(s string) string   { return cli.Bold(s) }
