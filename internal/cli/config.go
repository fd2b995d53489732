package cli

import (
	"errors"
	"io/fs"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
)

// defaultConfigFile is picked up from the working directory when --config
// is not given.
const defaultConfigFile = appName + ".toml"

// fileConfig mirrors the netskel.toml layout. Every field is a pointer so
// an absent key is distinguishable from an explicit zero; flags given on
// the command line always win over file values.
type fileConfig struct {
	Skeletonize skeletonizeSection `toml:"skeletonize"`
	Tile        tileSection        `toml:"tile"`
	Voronoi     voronoiSection     `toml:"voronoi"`
}

type skeletonizeSection struct {
	Buffer    *float64 `toml:"buffer"`
	CellSize  *float64 `toml:"cell_size"`
	Simplify  *float64 `toml:"simplify"`
	Precision *float64 `toml:"precision"`
	HoleArea  *int     `toml:"hole_area"`
	Primal    *bool    `toml:"primal"`
	Knot      *bool    `toml:"knot"`
	Segment   *bool    `toml:"segment"`
}

type tileSection struct {
	TileSize *float64 `toml:"tile_size"`
	Overlap  *float64 `toml:"overlap"`
	Workers  *int     `toml:"workers"`
}

type voronoiSection struct {
	Spacing *float64 `toml:"spacing"`
	Snap    *float64 `toml:"snap"`
}

// loadConfig reads the TOML parameter file. An explicit path must exist; the
// implicit default file may be absent, which yields an empty config.
func loadConfig(path string) (*fileConfig, error) {
	implicit := path == ""
	if implicit {
		path = defaultConfigFile
	}

	var cfg fileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if implicit && errors.Is(err, fs.ErrNotExist) {
			return &cfg, nil
		}
		return nil, err
	}
	return &cfg, nil
}

// applyFloat sets dst from the config value when the flag was not given.
func applyFloat(cmd *cobra.Command, flag string, dst *float64, v *float64) {
	if v != nil && !cmd.Flags().Changed(flag) {
		*dst = *v
	}
}

// applyInt sets dst from the config value when the flag was not given.
func applyInt(cmd *cobra.Command, flag string, dst *int, v *int) {
	if v != nil && !cmd.Flags().Changed(flag) {
		*dst = *v
	}
}

// applyBool sets dst from the config value when the flag was not given.
func applyBool(cmd *cobra.Command, flag string, dst *bool, v *bool) {
	if v != nil && !cmd.Flags().Changed(flag) {
		*dst = *v
	}
}
