package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "notecast",
	Short: "Multi-track MIDI playback scheduler",
	Long:  `Schedules playback of multi-track MIDI songs and broadcasts playback state to UI consumers.`,
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
