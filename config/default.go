package config

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"github.com/samber/lo"
	"github.com/spf13/viper"
	"github.com/vplayer/vplayer/color"
	"github.com/vplayer/vplayer/constant"
	"github.com/vplayer/vplayer/key"
	"github.com/vplayer/vplayer/style"
)

// Field is one registered configuration key with its default value.
type Field struct {
	Key         string
	Value       any
	Description string
}

// Pretty renders the field for `config info`.
func (f *Field) Pretty() string {
	var b strings.Builder
	lo.Must0(prettyTemplate.Execute(&b, f))
	return b.String()
}

// Env returns the environment variable that overrides the field.
func (f *Field) Env() string {
	return strings.ToUpper(constant.App + "_" + EnvKeyReplacer.Replace(f.Key))
}

// Type names the Go type of the default value.
func (f *Field) Type() string {
	return fmt.Sprintf("%T", f.Value)
}

func (f *Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key         string `json:"key"`
		Value       any    `json:"value"`
		Default     any    `json:"default"`
		Description string `json:"description"`
		Type        string `json:"type"`
	}{
		Key:         f.Key,
		Value:       viper.Get(f.Key),
		Default:     f.Value,
		Description: f.Description,
		Type:        f.Type(),
	})
}

// Default holds the map of all configuration fields.
var Default = make(map[string]Field)

// EnvExposed holds keys that are bound to environment variables.
var EnvExposed []string

func init() {
	register := func(k string, v any, desc string) {
		if _, exists := Default[k]; exists {
			panic("Duplicate config key: " + k)
		}
		Default[k] = Field{Key: k, Value: v, Description: desc}
		EnvExposed = append(EnvExposed, k)
	}

	register(key.PlayerStrictCapabilities, false, "Return an unsupported-operation error instead of silently ignoring\nvolume, looping and display region calls the active engine cannot honor")
	register(key.PlayerEmulateLooping, false, "Emulate looping on engines without native looping\nby seeking to the start on end of stream")
	register(key.PlayerAccurateSeek, true, "Request frame accurate seeks instead of key-frame seeks")
	register(key.PlayerDisplayWidth, 1920, "Initial overlay width for streamed playback")
	register(key.PlayerDisplayHeight, 1080, "Initial overlay height for streamed playback")
	register(key.IdentityAppID, "", "Application identity sent to the streaming engine.\nFalls back to the system keyring when empty")
	register(key.IdentityKeyring, true, "Look up the application identity in the system keyring")
	register(key.AssetsDir, "", "Directory local assets are resolved against.\nDefaults to the assets directory under the config path")
	register(key.HistorySaveOnDispose, true, "Save the playback position when a player is disposed")
	register(key.HistoryMaxAgeDays, 30, "Forget saved positions older than this many days.\n0 keeps them forever")
	register(key.IconsVariant, "plain", "Icons variant.\nAvailable options are: emoji, kaomoji, plain, squares, nerd (nerd-font required)")
	register(key.LogsWrite, false, "Write logs")
	register(key.LogsLevel, "info", "Available options are: (from less to most verbose)\npanic, fatal, error, warn, info, debug, trace")
	register(key.LogsJson, false, "Use json format for logs")
	register(key.CliColored, true, "Enable colored CLI output")
}

var prettyTemplate = lo.Must(template.New("pretty").Funcs(template.FuncMap{
	"faint":  style.Faint,
	"bold":   style.Bold,
	"purple": style.Fg(color.Purple),
	"blue":   style.Fg(color.Blue),
	"cyan":   style.Fg(color.Cyan),
	"value":  func(k string) any { return viper.Get(k) },
	"hl": func(v any) string {
		switch value := v.(type) {
		case bool:
			b := strconv.FormatBool(value)
			if value {
				return style.Fg(color.Green)(b)
			}
			return style.Fg(color.Red)(b)
		case string:
			return style.Fg(color.Yellow)(value)
		default:
			return fmt.Sprint(value)
		}
	},
}).Parse(`{{ faint .Description }}
{{ blue "Key:" }}     {{ purple .Key }}
{{ blue "Env:" }}     {{ .Env }}
{{ blue "Value:" }}   {{ hl (value .Key) }}
{{ blue "Default:" }} {{ hl (.Value) }}
{{ blue "Type:" }}    {{ .Type }}`))
