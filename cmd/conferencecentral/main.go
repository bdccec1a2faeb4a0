// Command conferencecentral runs the Conference Central API and its
// maintenance commands.
package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "conferencecentral",
	Short: "Conference organization and registration API",
	Long: `Conference Central lets organizers publish conferences and sessions and
lets attendees register for conferences and keep a wishlist of sessions.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
