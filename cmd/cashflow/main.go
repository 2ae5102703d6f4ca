/*
main.go - Application entry point

PURPOSE:
  Runs the cashflow command line. All startup, configuration and shutdown
  handling lives in the cli package.

EXAMPLES:
  # Serve the API on a file database, seeding a demo household when empty
  CASHFLOW_DB_PATH=./data/cashflow.db cashflow serve --seed card-and-vouchers

  # Print 90 days from a plan document
  cashflow project --plan household.json --days 90 --events

SEE ALSO:
  - cli/root.go: Commands and persistent flags
  - config/config.go: Environment variables
*/
package main

import (
	"os"

	"github.com/warp/cashflow-engine/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
