// Command eurolifectl joins, validates and inspects the life satisfaction and
// income sources offline, without starting the dashboard service.
//
// Usage:
//
//	eurolifectl join --satisfaction data/eurostat_life_satisfaction.csv \
//	  --income data/eurostat_income.csv --format yaml
//	eurolifectl resolve GR --ids AT,EL,DE
//	eurolifectl validate --satisfaction ... --income ... --min-countries 20
package main

import (
	"os"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
