package cmd

import (
	"fmt"
	"os"

	"github.com/kmorel/notecast/bucket"
	"github.com/kmorel/notecast/midi"
	"github.com/kmorel/notecast/util"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect [file]",
	Short: "Inspects a MIDI file",
	Long:  `Decodes a MIDI file and prints its tracks and tick buckets.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := inspect(args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "inspect failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func inspect(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	song, err := midi.Decode(data)
	if err != nil {
		return err
	}

	fmt.Printf("title: %v\n", song.Title)
	fmt.Printf("duration: %vms\n", song.DurationMs)
	for _, t := range song.Tracks {
		family := t.Family
		if family == "" {
			family = "-"
		}
		fmt.Printf("track %v: %q family=%v notes=%v\n", t.ID, t.Name, family, len(t.Notes))
	}

	buckets := bucket.Build(song)
	fmt.Printf("buckets: %v\n", len(buckets))
	for _, key := range util.SortedKeys(buckets) {
		total := 0
		for _, notes := range buckets[key] {
			total += len(notes)
		}
		fmt.Printf("  %6dms: %v notes across %v tracks\n", key, total, len(buckets[key]))
	}
	return nil
}
