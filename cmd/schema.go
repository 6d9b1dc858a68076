package cmd

import (
	"encoding/json"
	"os"
	"reflect"

	"github.com/invopop/jsonschema"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/vplayer/vplayer/event"
	"github.com/vplayer/vplayer/history"
	"github.com/vplayer/vplayer/registry"
)

func init() {
	rootCmd.AddCommand(schemaCmd)

	schemaCmd.Flags().BoolP("history", "s", false, "Generate the schema of history entries")
	schemaCmd.Flags().Bool("source", false, "Generate the schema of player sources")
	schemaCmd.MarkFlagsMutuallyExclusive("history", "source")
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Generate the JSON schema of player events",
	Run: func(cmd *cobra.Command, args []string) {
		reflector := new(jsonschema.Reflector)
		reflector.Anonymous = true
		reflector.Namer = func(t reflect.Type) string {
			return "vplayer." + t.Name()
		}

		var schema *jsonschema.Schema

		switch {
		case lo.Must(cmd.Flags().GetBool("history")):
			schema = reflector.Reflect([]*history.Entry{})
		case lo.Must(cmd.Flags().GetBool("source")):
			schema = reflector.Reflect(&registry.Source{})
		default:
			schema = reflector.Reflect(&event.Message{})
		}

		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		handleErr(encoder.Encode(schema))
	},
}
