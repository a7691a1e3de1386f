package main

import (
	"encoding/csv"
	"fmt"
	"log"
	"math"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/soniakeys/meeus/v3/julian"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/orbforge/perturb"
)

// This code effectively only reads the scenario file and propagates the state.

var (
	// plot flags
	plotHeight int
	plotWidth  int
	plotBody   string
	// shadow flags
	satFlag    string
	starFlag   string
	shadowBody string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "perturb",
		Short: "perturbed two-body propagation",
	}

	runCmd := &cobra.Command{
		Use:   "run [scenario]",
		Short: "propagate a scenario TOML file",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [csv]",
		Short: "plot the radius history of an exported propagation",
		Args:  cobra.ExactArgs(1),
		RunE:  plotExport,
	}
	plotCmd.Flags().IntVar(&plotHeight, "height", 10, "plot height")
	plotCmd.Flags().IntVar(&plotWidth, "width", 80, "plot width")
	plotCmd.Flags().StringVar(&plotBody, "body", "", "plot the altitude above this body instead of the radius")

	bodiesCmd := &cobra.Command{
		Use:   "bodies",
		Short: "list the built-in celestial bodies",
		RunE:  listBodies,
	}

	shadowCmd := &cobra.Command{
		Use:   "shadow",
		Short: "check whether a satellite is in the shadow cone of a body",
		RunE:  shadowCheck,
	}
	shadowCmd.Flags().StringVar(&satFlag, "sat", "", "satellite position `x,y,z` (km)")
	shadowCmd.Flags().StringVar(&starFlag, "star", "", "star position `x,y,z` (km)")
	shadowCmd.Flags().StringVar(&shadowBody, "body", "Earth", "occulting body")
	shadowCmd.MarkFlagRequired("sat")
	shadowCmd.MarkFlagRequired("star")

	rootCmd.AddCommand(runCmd, plotCmd, bodiesCmd, shadowCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runScenario(cmd *cobra.Command, args []string) error {
	scenario := strings.Replace(args[0], ".toml", "", 1)
	viper.AddConfigPath(".")
	viper.SetConfigName(scenario)
	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("./%s.toml: %s", scenario, err)
	}

	name := viper.GetString("propagation.name")
	if name == "" {
		name = scenario
	}
	startDT := confReadJDEorTime("propagation.start")
	endDT := confReadJDEorTime("propagation.end")
	step := viper.GetDuration("propagation.step")
	if step == 0 {
		step = perturb.StepSize
	}

	// Read the initial state.
	bodyName := viper.GetString("state.body")
	origin, err := perturb.BodyFromString(bodyName)
	if err != nil {
		return fmt.Errorf("could not understand body `%s`: %s", bodyName, err)
	}
	R := confReadVec3("state.R")
	V := confReadVec3("state.V")

	// Read spacecraft: the areas are input in m^2 for convenience and
	// converted to the km^2 of the models.
	mass := viper.GetFloat64("spacecraft.mass")
	area := viper.GetFloat64("spacecraft.area") * 1e-6

	// Read perturbations.
	var perts perturb.Perturbations
	if viper.GetBool("perturbations.J3") {
		perts.Jn = 3
	} else if viper.GetBool("perturbations.J2") {
		perts.Jn = 2
	}
	if viper.GetBool("perturbations.drag") {
		rho0, h0 := perturb.EarthRho0, perturb.EarthH0
		if v := viper.GetFloat64("atmosphere.rho0"); v > 0 {
			rho0 = v
		}
		if v := viper.GetFloat64("atmosphere.H0"); v > 0 {
			h0 = v
		}
		perts.Drag = &perturb.DragParams{R: origin.Radius, CD: viper.GetFloat64("spacecraft.cd"),
			Area: area, Mass: mass, H0: h0, Rho0: rho0}
	}
	thirdBodies := viper.GetStringSlice("perturbations.bodies")
	srp := viper.GetBool("perturbations.srp")
	if (len(thirdBodies) > 0 || srp) && !origin.Equals(perturb.Earth) {
		log.Printf("[WARNING] built-in ephemerides are geocentric, but the attractor is %s", origin.Name)
	}
	for _, bName := range thirdBodies {
		third, err := perturb.BodyFromString(bName)
		if err != nil {
			return fmt.Errorf("could not understand body `%s`: %s", bName, err)
		}
		if third.Equals(origin) {
			log.Printf("skipping third body `%s`: it is the attractor", bName)
			continue
		}
		var provider perturb.PositionProvider
		switch {
		case third.Equals(perturb.Sun):
			provider = perturb.NewSunProvider(startDT)
		case third.Equals(perturb.Moon):
			provider = perturb.NewMoonProvider(startDT)
		default:
			provider = perturb.NewPlanetProvider(third, startDT)
		}
		perts.Third = append(perts.Third, perturb.ThirdBodyParams{GM: third.GM(), Body: provider})
	}
	if srp {
		perts.SRP = &perturb.RadiationParams{R: origin.Radius, CR: viper.GetFloat64("spacecraft.cr"),
			Area: area, Mass: mass, WdivC: perturb.WdivcSun, Star: perturb.NewSunProvider(startDT)}
	}

	conf := perturb.ExportConfig{Filename: viper.GetString("export.filename"),
		AsCSV: viper.GetBool("export.csv"), Timestamp: viper.GetBool("export.timestamp")}
	if conf.Filename == "" {
		conf.Filename = name
	}

	perturb.NewPrecisePropagation(name, R, V, origin, startDT, endDT, perts, step, conf).Propagate()
	return nil
}

func plotExport(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()
	rd := csv.NewReader(f)
	rd.Comment = '#'
	rd.FieldsPerRecord = -1
	records, err := rd.ReadAll()
	if err != nil {
		return err
	}
	if len(records) < 2 {
		return fmt.Errorf("%s: no data points", args[0])
	}

	var offset float64
	caption := "radius (km)"
	if plotBody != "" {
		body, err := perturb.BodyFromString(plotBody)
		if err != nil {
			return err
		}
		offset = body.Radius
		caption = fmt.Sprintf("altitude above %s (km)", body.Name)
	}

	// The first record is the column header.
	data := make([]float64, 0, len(records)-1)
	for _, rec := range records[1:] {
		if len(rec) < 8 {
			continue
		}
		var r [3]float64
		for i := 0; i < 3; i++ {
			v, err := strconv.ParseFloat(strings.TrimSpace(rec[2+i]), 64)
			if err != nil {
				return fmt.Errorf("%s: %s", args[0], err)
			}
			r[i] = v
		}
		data = append(data, perturb.Norm(r[:])-offset)
	}

	fmt.Println(asciigraph.Plot(data,
		asciigraph.Height(plotHeight),
		asciigraph.Width(plotWidth),
		asciigraph.Caption(caption),
	))
	return nil
}

func listBodies(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tRADIUS (km)\tGM (km³/s²)\tSOI (km)\tJ2\tJ3")
	for _, body := range []perturb.Body{perturb.Sun, perturb.Venus, perturb.Earth, perturb.Moon, perturb.Mars, perturb.Jupiter} {
		fmt.Fprintf(w, "%s\t%.1f\t%.4e\t%.0f\t%.4e\t%.4e\n",
			body.Name, body.Radius, body.GM(), body.SOI, body.J(2), body.J(3))
	}
	return w.Flush()
}

func shadowCheck(cmd *cobra.Command, args []string) error {
	body, err := perturb.BodyFromString(shadowBody)
	if err != nil {
		return err
	}
	rSat, err := parseVec3(satFlag)
	if err != nil {
		return fmt.Errorf("--sat: %s", err)
	}
	rStar, err := parseVec3(starFlag)
	if err != nil {
		return fmt.Errorf("--star: %s", err)
	}
	θ := math.Acos(perturb.Dot(perturb.Unit(rSat), perturb.Unit(rStar))) * 180 / math.Pi
	fmt.Printf("satellite-star separation: %.4f deg\n", θ)
	if perturb.Illuminated(rSat, rStar, body.Radius) {
		fmt.Printf("illuminated: in direct light of the star\n")
	} else {
		fmt.Printf("eclipsed: in the shadow cone of %s\n", body.Name)
	}
	return nil
}

func confReadJDEorTime(key string) (dt time.Time) {
	jde := viper.GetFloat64(key)
	if jde == 0 {
		dt = viper.GetTime(key)
	} else {
		dt = julian.JDToTime(jde)
	}
	return
}

func confReadVec3(key string) []float64 {
	raw, ok := viper.Get(key).([]interface{})
	if !ok || len(raw) != 3 {
		log.Fatalf("%s must be a vector of three floats", key)
	}
	vec := make([]float64, 3)
	for i, v := range raw {
		switch t := v.(type) {
		case float64:
			vec[i] = t
		case int64:
			vec[i] = float64(t)
		case int:
			vec[i] = float64(t)
		default:
			log.Fatalf("%s[%d] is not a number", key, i)
		}
	}
	return vec
}

func parseVec3(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return nil, fmt.Errorf("expected `x,y,z`, got `%s`", s)
	}
	vec := make([]float64, 3)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, err
		}
		vec[i] = v
	}
	return vec, nil
}
