// Package cli implements the portal command line client
package cli

import (
	"fmt"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-college-portal/internal/config"
	"github.com/jrsteele09/go-college-portal/internal/logging"
	"github.com/spf13/cobra"
)

var (
	apiURL      string
	jsonOutput  bool
	sessionFile string
	logLevel    string
)

var cfg = config.New()

var rootCmd = &cobra.Command{
	Use:   "portal",
	Short: "Command line client for the college portal",
	Long: `portal signs in to the college portal backend and works with courses,
grades, attendance and administration from the terminal.

The session is kept between runs, in a file by default or in Redis.

Environment Variables:
  PORTAL_API_URL          Backend API URL (default: ` + config.DefaultAPIURL + `)
  PORTAL_SESSION_BACKEND  file or redis (default: file)
  PORTAL_SESSION_FILE     Session file path
  PORTAL_REDIS_ADDR       Redis address when the backend is redis
  PORTAL_REQUEST_TIMEOUT  Per request timeout, e.g. 45s
  PORTAL_LOG_LEVEL        debug, info, warn or error`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := cfg.GetLogLevel()
		if logLevel != "" {
			level = logLevel
		}
		logging.Init(level, cfg.GetLogFormat(), cmd.ErrOrStderr())
	},
	Run: func(cmd *cobra.Command, args []string) {
		displayAppname(cmd, cfg.GetAppName())
		_ = cmd.Help()
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Backend API URL (overrides PORTAL_API_URL)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output JSON instead of human-readable text")
	rootCmd.PersistentFlags().StringVar(&sessionFile, "session-file", "", "Keep the session in this file (overrides PORTAL_SESSION_*)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error (overrides PORTAL_LOG_LEVEL)")
}

// GetAPIURL returns the API URL from flag, env, or default (in priority order)
func GetAPIURL() string {
	if apiURL != "" {
		return apiURL
	}
	return cfg.GetAPIURL()
}

func currentSettings() settings {
	return settings{apiURL: GetAPIURL(), sessionFile: sessionFile, json: jsonOutput}
}

func displayAppname(cmd *cobra.Command, appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	fmt.Fprintln(cmd.OutOrStdout(), myFigure.String())
}
