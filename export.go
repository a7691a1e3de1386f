package perturb

import (
	"fmt"
	"os"
	"time"
)

// State is one propagated data point, as streamed to the exporter.
type State struct {
	DT time.Time // Absolute time of this point (UTC)
	T  float64   // Elapsed propagation seconds
	R  []float64 // Position (km)
	V  []float64 // Velocity (km/s)
}

// ExportConfig configures the exporting of a propagation.
type ExportConfig struct {
	Filename     string
	AsCSV        bool
	Timestamp    bool
	CSVAppend    func(st State) string // Custom export (do not include leading comma)
	CSVAppendHdr func() string         // Header for the custom export
}

// IsUseless returns whether this config doesn't actually do anything.
func (c ExportConfig) IsUseless() bool {
	return !c.AsCSV
}

// createCSVFile returns a file which requires a defer close statement!
func createCSVFile(conf ExportConfig, stateDT time.Time) *os.File {
	config := perturbConfig()
	filename := fmt.Sprintf("%s/prop-%s.csv", config.outputDir, conf.Filename)
	if conf.Timestamp {
		t := time.Now()
		filename = fmt.Sprintf("%s/prop-%s-%d-%02d-%02dT%02d.%02d.%02d.csv", config.outputDir, conf.Filename, t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second())
	}
	f, err := os.Create(filename)
	if err != nil {
		panic(err)
	}
	// Header
	f.WriteString(fmt.Sprintf(`# Creation date (UTC): %s
# Records are <time> <secs> <x> <y> <z> <vx> <vy> <vz>. Position in km, velocity in km/s.
#   Simulation time start (UTC): %s
time,secs,x,y,z,vx,vy,vz`, time.Now(), stateDT.UTC()))
	if conf.CSVAppendHdr != nil {
		if hdr := conf.CSVAppendHdr(); hdr != "" {
			f.WriteString("," + hdr)
		}
	}
	return f
}

// StreamStates streams the output of the channel to the configured file.
// It returns once the channel is closed, so run it in its own goroutine.
func StreamStates(conf ExportConfig, stateChan <-chan State) {
	var prevStatePtr *State
	var fAsCSV *os.File
	for {
		state, more := <-stateChan
		if !more {
			// The channel is closed, hence the propagation is over.
			if fAsCSV != nil {
				fAsCSV.WriteString(fmt.Sprintf("\n# Simulation time end (UTC): %s\n", prevStatePtr.DT.UTC()))
				fAsCSV.Close()
			}
			return
		}
		if prevStatePtr == nil {
			if conf.AsCSV {
				fAsCSV = createCSVFile(conf, state.DT)
			}
		} else if state.DT.Sub(prevStatePtr.DT) < StepSize {
			// Only write one datapoint per default step.
			continue
		}
		prevStatePtr = &state
		if conf.AsCSV {
			asTxt := fmt.Sprintf("%s,%.0f,%f,%f,%f,%f,%f,%f", state.DT.UTC().Format("2006-01-02 15:04:05"), state.T,
				state.R[0], state.R[1], state.R[2], state.V[0], state.V[1], state.V[2])
			if conf.CSVAppend != nil {
				if app := conf.CSVAppend(state); app != "" {
					asTxt += "," + app
				}
			}
			if _, err := fAsCSV.WriteString("\n" + asTxt); err != nil {
				panic(err)
			}
		}
	}
}
