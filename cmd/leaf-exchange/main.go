// Command leaf-exchange solves the gas exchange of a single maize leaf for
// one set of conditions and prints the result as JSON.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/chrissnell/maizsim/internal/atmosphere"
	"github.com/chrissnell/maizsim/internal/gasexchange"
	"github.com/chrissnell/maizsim/internal/log"
)

func main() {
	pfd := flag.Float64("pfd", 1500, "Photon flux density, umol m-2 s-1")
	tair := flag.Float64("tair", 25, "Air temperature, C")
	co2 := flag.Float64("co2", 400, "Ambient CO2, ppm")
	rh := flag.Float64("rh", 60, "Relative humidity, %")
	wind := flag.Float64("wind", 2, "Wind speed, m s-1")
	pair := flag.Float64("pair", 101.3, "Air pressure, kPa")
	lwp := flag.Float64("lwp", -0.3, "Leaf water potential, MPa")
	nitrogen := flag.Float64("nitrogen", 2, "Leaf nitrogen, g m-2")
	width := flag.Float64("width", gasexchange.DefaultLeafWidth, "Leaf width, cm")
	debug := flag.Bool("debug", false, "Log every solver iteration")
	flag.Parse()

	if err := log.Init(*debug); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	model := gasexchange.New(log.Named("gasexchange"), nil)
	w := atmosphere.NewWeather(*pfd, *tair, *co2, *rh/100, *wind, *pair)
	result, err := model.Exchange(w, gasexchange.Leaf{
		Width:          *width,
		WaterPotential: *lwp,
		Nitrogen:       *nitrogen,
	})
	if err != nil {
		log.Errorf("Gas exchange failed: %v", err)
		os.Exit(1)
	}
	if !result.Converged {
		log.Warnw("solution did not converge", "iterations", result.Iterations)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		log.Errorf("Failed to write result: %v", err)
		os.Exit(1)
	}
}
