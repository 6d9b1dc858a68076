package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vplayer/vplayer/color"
	"github.com/vplayer/vplayer/icon"
	"github.com/vplayer/vplayer/identity"
	"github.com/vplayer/vplayer/style"
)

func init() {
	rootCmd.AddCommand(identityCmd)
	identityCmd.AddCommand(identitySetCmd, identityGetCmd, identityDeleteCmd)
}

var identityCmd = &cobra.Command{
	Use:   "identity",
	Short: "Manage the application identity presented to the streaming engine",
}

var identitySetCmd = &cobra.Command{
	Use:   "set <app-id>",
	Short: "Store the application identity in the system keyring",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		handleErr(identity.Keyring{}.Store(args[0]))
		fmt.Printf("%s stored identity %s\n", style.Fg(color.Green)(icon.Get(icon.Success)), style.Fg(color.Yellow)(args[0]))
	},
}

var identityGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the identity the streaming engine would receive",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		id, err := identity.FromConfig().Resolve()
		if errors.Is(err, identity.ErrUnavailable) {
			fmt.Println(style.Faint(err.Error()))
			return
		}
		handleErr(err)
		fmt.Println(id)
	},
}

var identityDeleteCmd = &cobra.Command{
	Use:     "delete",
	Short:   "Remove the application identity from the system keyring",
	Aliases: []string{"remove"},
	Args:    cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		handleErr(identity.Keyring{}.Forget())
		fmt.Printf("%s deleted identity\n", style.Fg(color.Green)(icon.Get(icon.Success)))
	},
}
