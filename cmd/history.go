package cmd

import (
	"fmt"
	"os"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/vplayer/vplayer/color"
	"github.com/vplayer/vplayer/history"
	"github.com/vplayer/vplayer/icon"
	"github.com/vplayer/vplayer/style"
	"github.com/vplayer/vplayer/util"
)

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().StringP("filter", "f", "", "Only show sources fuzzily matching this query")
	historyCmd.Flags().StringP("remove", "r", "", "Forget the saved position of a source")
	historyCmd.Flags().Bool("clear", false, "Forget every saved position")
	historyCmd.MarkFlagsMutuallyExclusive("filter", "remove", "clear")

	historyCmd.SetOut(os.Stdout)
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show saved resume positions",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		flags := cmd.Flags()

		if lo.Must(flags.GetBool("clear")) {
			handleErr(history.Clear())
			cmd.Printf("%s history cleared\n", style.Fg(color.Green)(icon.Get(icon.Success)))
			return
		}

		if source := lo.Must(flags.GetString("remove")); source != "" {
			handleErr(history.Remove(source))
			cmd.Printf("%s forgot %s\n", style.Fg(color.Green)(icon.Get(icon.Success)), style.Fg(color.Yellow)(source))
			return
		}

		var (
			entries []*history.Entry
			err     error
		)
		if query := lo.Must(flags.GetString("filter")); query != "" {
			entries, err = history.Filter(query)
		} else {
			entries, err = history.List()
		}
		handleErr(err)

		if len(entries) == 0 {
			cmd.Println(style.Faint("no saved positions"))
			return
		}

		for _, e := range entries {
			cmd.Printf(
				"%s %s %s\n",
				style.Fg(color.Purple)(fmt.Sprintf("%3.0f%%", e.Progress()*100)),
				e.String(),
				style.Faint(e.Variant),
			)
		}
		cmd.Println(style.Faint(util.Quantify(len(entries), "entry", "entries")))
	},
}
