package cmd

import (
	"encoding/json"
	"os"
	"runtime"
	"strings"
	"text/template"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/vplayer/vplayer/color"
	"github.com/vplayer/vplayer/constant"
	"github.com/vplayer/vplayer/key"
	"github.com/vplayer/vplayer/player"
	"github.com/vplayer/vplayer/style"
)

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.SetOut(os.Stdout)
	versionCmd.Flags().BoolP("short", "s", false, "Display only the version string")
	versionCmd.Flags().BoolP("json", "j", false, "Print build and engine information as JSON")
}

type engineInfo struct {
	Variant      string              `json:"variant"`
	Capabilities player.Capabilities `json:"capabilities"`
}

type versionInfo struct {
	App            string       `json:"app"`
	Version        string       `json:"version"`
	Revision       string       `json:"revision"`
	BuiltAt        string       `json:"built_at"`
	Platform       string       `json:"platform"`
	Engines        []engineInfo `json:"engines"`
	Strict         bool         `json:"strict_capabilities"`
	EmulateLooping bool         `json:"emulate_looping"`
}

func currentVersion() versionInfo {
	return versionInfo{
		App:      constant.App,
		Version:  constant.Version,
		Revision: constant.Revision,
		BuiltAt:  strings.TrimSpace(constant.BuiltAt),
		Platform: runtime.GOOS + "/" + runtime.GOARCH,
		Engines: lo.Map(player.Variants, func(v player.Variant, _ int) engineInfo {
			return engineInfo{Variant: v.String(), Capabilities: player.CapabilitiesOf(v)}
		}),
		Strict:         viper.GetBool(key.PlayerStrictCapabilities),
		EmulateLooping: viper.GetBool(key.PlayerEmulateLooping),
	}
}

var versionTemplate = lo.Must(template.New("version").Funcs(template.FuncMap{
	"faint":   style.Faint,
	"bold":    style.Bold,
	"magenta": style.Fg(color.Purple),
	"flag": func(on bool) string {
		if on {
			return style.Fg(color.Green)("yes")
		}
		return style.Fg(color.Red)("no")
	},
}).Parse(`{{ magenta "▇▇▇" }} {{ magenta .App }} {{ bold .Version }} {{ faint .Revision }}
  {{ faint "Built" }}     {{ .BuiltAt }} for {{ .Platform }}

{{ range .Engines }}  {{ bold .Variant }}
    {{ faint "looping" }}         {{ flag .Capabilities.NativeLooping }}
    {{ faint "volume" }}          {{ flag .Capabilities.Volume }}
    {{ faint "display region" }}  {{ flag .Capabilities.DisplayRegion }}
{{ end }}
  {{ faint "strict capabilities" }} {{ flag .Strict }}
  {{ faint "emulate looping" }}     {{ flag .EmulateLooping }}
`))

// versionCmd displays the version, build metadata and what each engine supports.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display version and engine capabilities",
	Long:  "Display the application version, build revision and the capabilities of each playback engine.",
	Run: func(cmd *cobra.Command, args []string) {
		if lo.Must(cmd.Flags().GetBool("short")) {
			cmd.Println(constant.Version)
			return
		}

		info := currentVersion()
		if lo.Must(cmd.Flags().GetBool("json")) {
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			handleErr(encoder.Encode(info))
			return
		}

		handleErr(versionTemplate.Execute(cmd.OutOrStdout(), info))
	},
}
