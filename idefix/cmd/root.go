// cmd/root.go
package cmd

import (
	"github.com/spf13/cobra"
)

// Global flags
var (
	Verbose  bool
	JsonLogs bool
)

var rootCmd = &cobra.Command{
	Use:   "idefix",
	Short: "ASTERIX capture decoder and analyzer",
	Long: `
 ______        __             ______   __
/      |      /  |           /      \ /  |
$$$$$$/   ____$$ |  ______  /$$$$$$  |$$/  __    __
  $$ |   /    $$ | /      \ $$ |_ $$/ /  |/  \  /  |
  $$ |  /$$$$$$$ |/$$$$$$  |$$   |    $$ |$$  \/$$/
  $$ |  $$ |  $$ |$$    $$ |$$$$/     $$ | $$  $$<
 _$$ |_ $$ \__$$ |$$$$$$$$/ $$ |      $$ | /$$$$  \
/ $$   |$$    $$ |$$       |$$ |      $$ |/$$/ $$  |
$$$$$$/  $$$$$$$/  $$$$$$$/ $$/       $$/ $$/   $$/

Idefix is a CLI utility for decoding and analyzing ASTERIX capture files
(raw blocks, libpcap dumps, FINAL/HDLC/ORADIS/GPS framed streams). It loads
an XML category catalog and prints decoded records.
`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&Verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&JsonLogs, "json", false, "Log in JSON format")

	// Version flag
	rootCmd.Flags().BoolP("version", "V", false, "Print version information")
	rootCmd.SetVersionTemplate("Idefix v{{.Version}} - ASTERIX decoder companion\n")
	rootCmd.Version = "0.3.0"
}
