/*
Copyright © 2026 the krsweep authors.
This file is part of krsweep.

krsweep is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

krsweep is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with krsweep.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package krsweeputil implements the krsweep command-line interface:
// root cross-section reconstruction and export, and radial
// conductivity parameter sweeps against MECHA.
package krsweeputil

import (
	"fmt"
	"os"

	"github.com/lnashier/viper"
	"github.com/mecharoot/krsweep"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to krsweep.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "LogLevel",
			usage: `
              LogLevel is the minimum severity of log messages to print:
              debug, info, warning, or error.`,
			defaultVal: "info",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "mesh",
			usage: `
              mesh is the path to the cell-set XML file describing the root
              cross section.`,
			shorthand:  "m",
			defaultVal: "./MECHA/cellsetdata/current_root.xml",
			flagsets:   []*pflag.FlagSet{sectionCmd.Flags()},
		},
		{
			name: "RingPolicy",
			usage: `
              RingPolicy chooses between several closed rings formed by the walls
              of one cell: "largest" keeps the ring with the largest area and
              "first" keeps the first ring found.`,
			defaultVal: "largest",
			flagsets:   []*pflag.FlagSet{sectionCmd.Flags()},
		},
		{
			name: "SnapTolerance",
			usage: `
              SnapTolerance is the distance within which wall end points are
              considered to be the same node.`,
			defaultVal: krsweep.SnapTolerance,
			flagsets:   []*pflag.FlagSet{sectionCmd.Flags()},
		},
		{
			name: "GeoJSONFile",
			usage: `
              GeoJSONFile, if set, is the path where the reconstructed cells are
              written as a GeoJSON feature collection.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{sectionCmd.Flags()},
		},
		{
			name: "ShapeFile",
			usage: `
              ShapeFile, if set, is the path where the reconstructed cells are
              written as a shapefile.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{sectionCmd.Flags()},
		},
		{
			name: "SectionFile",
			usage: `
              SectionFile, if set, is the path where the reconstructed section is
              saved in binary form. A saved section can be given as --mesh in
              place of a cell-set file if its name ends in ".gob".`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{sectionCmd.Flags()},
		},
		{
			name: "PNGFile",
			usage: `
              PNGFile, if set, is the path where an image of the cross section
              (or, for the sweep command, of the results) is written.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{sectionCmd.Flags(), sweepCmd.Flags()},
		},
		{
			name: "open",
			usage: `
              open specifies whether to open PNGFile in the default viewer
              after it has been written.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{sectionCmd.Flags(), sweepCmd.Flags()},
		},
		{
			name: "param",
			usage: `
              param is the name of the parameter to sweep. Run 'krsweep params'
              for the available parameters.`,
			shorthand:  "p",
			defaultVal: "cell wall thickness",
			flagsets:   []*pflag.FlagSet{sweepCmd.Flags()},
		},
		{
			name: "mode",
			usage: `
              mode is either "single", to run one simulation at the given value,
              or "range", to run 10 simulations evenly spaced between min and max.`,
			defaultVal: "single",
			flagsets:   []*pflag.FlagSet{sweepCmd.Flags()},
		},
		{
			name: "value",
			usage: `
              value is the parameter value for single mode, in the parameter's
              display unit. If empty, the parameter's default is used.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{sweepCmd.Flags()},
		},
		{
			name: "min",
			usage: `
              min is the lower bound of a range sweep, in the parameter's display
              unit. It is clamped to one tenth of the default; if empty,
              that limit is used.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{sweepCmd.Flags()},
		},
		{
			name: "max",
			usage: `
              max is the upper bound of a range sweep, in the parameter's display
              unit. It is clamped to ten times the default; if empty,
              that limit is used.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{sweepCmd.Flags()},
		},
		{
			name: "scenarios",
			usage: `
              scenarios is the list of hydraulic scenarios to simulate and report.
              Available scenarios are 0, 1, 3, and 4.`,
			shorthand:  "s",
			defaultVal: krsweep.DefaultScenarios,
			flagsets:   []*pflag.FlagSet{sweepCmd.Flags()},
		},
		{
			name: "preloaded",
			usage: `
              preloaded specifies whether the working geometry file is reset
              from MECHA.PreloadedGeometry rather than MECHA.GeometryTemplate.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{sweepCmd.Flags()},
		},
		{
			name: "OutputFile",
			usage: `
              OutputFile is the path where the sweep results are written as CSV.`,
			shorthand:  "o",
			defaultVal: "mecha_results.csv",
			flagsets:   []*pflag.FlagSet{sweepCmd.Flags()},
		},
		{
			name: "XLSXFile",
			usage: `
              XLSXFile, if set, is the path where the sweep results are also
              written as an Excel workbook.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{sweepCmd.Flags()},
		},
		{
			name: "ManifestFile",
			usage: `
              ManifestFile, if set, is the path where a TOML record of the sweep
              request is written.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{sweepCmd.Flags()},
		},
		{
			name: "MECHA.Dir",
			usage: `
              MECHA.Dir is the MECHA installation directory. The MECHA command
              is run from here, and relative MECHA paths are relative to it.`,
			defaultVal: "./MECHA",
			flagsets:   []*pflag.FlagSet{sweepCmd.Flags()},
		},
		{
			name: "MECHA.Command",
			usage: `
              MECHA.Command is the program and arguments that run one MECHA
              simulation.`,
			defaultVal: []string{"python3", "MECHA.py"},
			flagsets:   []*pflag.FlagSet{sweepCmd.Flags()},
		},
		{
			name: "MECHA.Output",
			usage: `
              MECHA.Output is the file MECHA writes the radial conductivity of
              each active scenario to. If empty, the values are read from the
              standard output of MECHA.Command.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{sweepCmd.Flags()},
		},
		{
			name: "MECHA.Retries",
			usage: `
              MECHA.Retries is the number of times a failed MECHA run is retried.`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{sweepCmd.Flags()},
		},
		{
			name: "MECHA.Geometry",
			usage: `
              MECHA.Geometry is the working geometry input file.`,
			defaultVal: "Projects/granar/in/Geometry.xml",
			flagsets:   []*pflag.FlagSet{sweepCmd.Flags()},
		},
		{
			name: "MECHA.Hydraulics",
			usage: `
              MECHA.Hydraulics is the working hydraulics input file.`,
			defaultVal: "Projects/granar/in/Hydraulics.xml",
			flagsets:   []*pflag.FlagSet{sweepCmd.Flags()},
		},
		{
			name: "MECHA.GeometryTemplate",
			usage: `
              MECHA.GeometryTemplate is copied over MECHA.Geometry before each sweep.`,
			defaultVal: "Projects/granar/in/Default_Geometry.xml",
			flagsets:   []*pflag.FlagSet{sweepCmd.Flags()},
		},
		{
			name: "MECHA.HydraulicsTemplate",
			usage: `
              MECHA.HydraulicsTemplate is copied over MECHA.Hydraulics before each sweep.`,
			defaultVal: "Projects/granar/in/Default_Maize_Hydraulics.xml",
			flagsets:   []*pflag.FlagSet{sweepCmd.Flags()},
		},
		{
			name: "MECHA.PreloadedGeometry",
			usage: `
              MECHA.PreloadedGeometry is copied over MECHA.Geometry before each
              sweep when --preloaded is set.`,
			defaultVal: "Projects/granar/in/Preloaded_Geometry.xml",
			flagsets:   []*pflag.FlagSet{sweepCmd.Flags()},
		},
		{
			name: "Scenarios.Container",
			usage: `
              Scenarios.Container is the geometry file element holding the list
              of hydraulic scenarios MECHA computes.`,
			defaultVal: "Barriersrange",
			flagsets:   []*pflag.FlagSet{sweepCmd.Flags()},
		},
		{
			name: "Scenarios.Element",
			usage: `
              Scenarios.Element is the name of the elements in Scenarios.Container
              that each select one hydraulic scenario.`,
			defaultVal: "Barrier",
			flagsets:   []*pflag.FlagSet{sweepCmd.Flags()},
		},
		{
			name: "Scenarios.Attr",
			usage: `
              Scenarios.Attr is the attribute of Scenarios.Element holding the
              scenario id.`,
			defaultVal: "value",
			flagsets:   []*pflag.FlagSet{sweepCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("KRSWEEP")

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch v := option.defaultVal.(type) {
			case string:
				set.StringP(option.name, option.shorthand, v, option.usage)
			case []string:
				set.StringSliceP(option.name, option.shorthand, v, option.usage)
			case bool:
				set.BoolP(option.name, option.shorthand, v, option.usage)
			case int:
				set.IntP(option.name, option.shorthand, v, option.usage)
			case []int:
				set.IntSliceP(option.name, option.shorthand, v, option.usage)
			case float64:
				set.Float64P(option.name, option.shorthand, v, option.usage)
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(sectionCmd)
	Root.AddCommand(sweepCmd)
	Root.AddCommand(paramsCmd)
}

// setConfig finds and reads in the configuration file, if there is one,
// and sets the logging level.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("krsweep: problem reading configuration file: %v", err)
		}
	}
	lvl, err := logrus.ParseLevel(Cfg.GetString("LogLevel"))
	if err != nil {
		return fmt.Errorf("krsweep: %v", err)
	}
	logrus.SetLevel(lvl)
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "krsweep",
	Short: "Root cross-section reconstruction and MECHA parameter sweeps.",
	Long: `krsweep reconstructs the cell polygons of a root cross section from a
MECHA cell-set file, and runs parameter sweeps of the MECHA root hydraulics
model to see how anatomical and hydraulic parameters affect the simulated
radial conductivity (kr).

Refer to the subcommand documentation for configuration options and default settings.
Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'KRSWEEP_var' where 'var' is the
name of the variable to be set. Many configuration variables are additionally
allowed to contain environment variables within them.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	SilenceUsage:      true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of krsweep.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("krsweep v%s\n", krsweep.Version)
	},
	DisableAutoGenTag: true,
}

// sectionCmd reconstructs and exports a root cross section.
var sectionCmd = &cobra.Command{
	Use:   "section",
	Short: "Reconstruct a root cross section.",
	Long: `section reconstructs the cell polygons of the root cross section described
by the cell-set file given by --mesh, prints the number of cells of each
tissue type, and optionally writes the cells to GeoJSON, a shapefile, or
a PNG image. The section can also be saved with --SectionFile and
reloaded later by passing the saved file as --mesh.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rc, err := reconstructorFromConfig(Cfg)
		if err != nil {
			return err
		}
		return Section(cmd, rc, os.ExpandEnv(Cfg.GetString("mesh")), SectionOutputs{
			GeoJSON: os.ExpandEnv(Cfg.GetString("GeoJSONFile")),
			Shape:   os.ExpandEnv(Cfg.GetString("ShapeFile")),
			PNG:     os.ExpandEnv(Cfg.GetString("PNGFile")),
			Section: os.ExpandEnv(Cfg.GetString("SectionFile")),
			Open:    Cfg.GetBool("open"),
		})
	},
	DisableAutoGenTag: true,
}

// sweepCmd runs a parameter sweep.
var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run a MECHA parameter sweep.",
	Long: `sweep resets the MECHA input files from their templates, activates the
selected hydraulic scenarios, and runs MECHA once for each value of the
selected parameter. The radial conductivity of each scenario is written to
OutputFile as CSV with columns parameter_value, kr, and hydraulic_scenario.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := sweepRequestFromConfig(Cfg)
		if err != nil {
			return err
		}
		outputFile, err := checkOutputFile(Cfg.GetString("OutputFile"))
		if err != nil {
			return err
		}
		ws := workspaceFromConfig(Cfg)
		sim, err := simulatorFromConfig(Cfg)
		if err != nil {
			return err
		}
		return RunSweep(cmd, ws, sim, req, Cfg.GetBool("preloaded"), SweepOutputs{
			CSV:      outputFile,
			XLSX:     os.ExpandEnv(Cfg.GetString("XLSXFile")),
			PNG:      os.ExpandEnv(Cfg.GetString("PNGFile")),
			Manifest: os.ExpandEnv(Cfg.GetString("ManifestFile")),
			Open:     Cfg.GetBool("open"),
		})
	},
	DisableAutoGenTag: true,
}

var paramsCmd = &cobra.Command{
	Use:   "params",
	Short: "List the parameters that can be swept.",
	Long: `params lists the parameters that can be swept, with their default values
and the range of values allowed in range mode.`,
	Run: func(cmd *cobra.Command, args []string) {
		printParameters(cmd.OutOrStdout(), krsweep.Parameters())
	},
	DisableAutoGenTag: true,
}
