// ABOUTME: Summary subcommand
// ABOUTME: Prints a file's amplitude summary without opening audio output
package cli

import (
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Resonate-Protocol/wavescrub/internal/waveform"
	"github.com/Resonate-Protocol/wavescrub/pkg/audio/decode"
)

type summaryOptions struct {
	buckets int
	width   int
	values  bool
}

func newSummaryCmd() *cobra.Command {
	opts := &summaryOptions{}

	cmd := &cobra.Command{
		Use:   "summary FILE",
		Short: "Print the amplitude summary of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("buckets") {
				opts.buckets = Config().Waveform.Buckets
			}
			return runSummary(cmd.OutOrStdout(), args[0], Config().Waveform.Height, opts)
		},
	}

	cmd.Flags().IntVar(&opts.buckets, "buckets", 0, "Number of buckets (0 = one per sample-rate unit)")
	cmd.Flags().IntVar(&opts.width, "width", initialWidth, "Width of the drawn waveform")
	cmd.Flags().BoolVar(&opts.values, "values", false, "Print one bucket value per line instead of drawing")
	return cmd
}

func runSummary(w io.Writer, path string, height int, opts *summaryOptions) error {
	// Decoder chatter stays off stdout
	log.SetOutput(io.Discard)
	defer log.SetOutput(os.Stderr)

	buf, format, err := decode.DecodeFile(path)
	if err != nil {
		return err
	}

	summary, err := waveform.SummarizeBuckets(buf, opts.buckets)
	if err != nil {
		return fmt.Errorf("failed to summarize: %w", err)
	}

	if opts.values {
		for _, v := range summary {
			if _, err := fmt.Fprintln(w, strconv.FormatFloat(v, 'f', 6, 64)); err != nil {
				return err
			}
		}
		return nil
	}

	fmt.Fprintf(w, "%s\n%s\n", path, describe(buf, format))
	fmt.Fprintf(w, "%d buckets, peak %.3f, mean %.3f\n\n", len(summary), summary.Peak(), summary.Mean())

	r, err := waveform.NewRenderer(buf.Duration(), waveform.Viewport{Width: opts.width, Height: height})
	if err != nil {
		return err
	}
	r.Render(summary)
	_, err = fmt.Fprintln(w, r.View())
	return err
}
