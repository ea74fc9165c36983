package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/regorov/pixcc"
	"github.com/urfave/cli"
)

// report is JSON representation of pixcc.Analysis without images.
type report struct {
	Source           string           `json:"source"`
	Width            int              `json:"width"`
	Height           int              `json:"height"`
	TotalPixels      int              `json:"total_pixels"`
	UniqueColorCount int              `json:"unique_color_count"`
	TopColors        []pixcc.TopColor `json:"top_colors"`
}

func analyze(c *cli.Context) error {

	logger := newLogger(c)

	if c.NArg() != 1 {
		return cli.NewExitError("exactly one image file expected", 2)
	}
	fname := c.Args().First()

	analyzer, err := newAnalyzer(c)
	if err != nil {
		return cli.NewExitError(err.Error(), 2)
	}

	data, err := os.ReadFile(fname)
	if err != nil {
		logger.Error().Str("source", fname).Str("errmsg", err.Error()).Msg("image reading failed")
		return err
	}

	if err := pixcc.Validate(data, "", c.Int("max-size-mb")*1024*1024); err != nil {
		logger.Error().Str("source", fname).Str("errmsg", err.Error()).Msg("image rejected")
		return err
	}

	res, err := analyzer.Analyze(fname, data)
	if err != nil {
		logger.Error().Str("source", fname).Str("errmsg", err.Error()).Msg("analysis failed")
		return err
	}
	logger.Debug().Str("source", fname).Str("dur", res.Duration.String()).Msg("image processed")

	if dir := c.String("images"); dir != "" {
		store, err := pixcc.NewDirImageStore(dir)
		if err != nil {
			logger.Error().Str("errmsg", err.Error()).Msg("images directory creation failed")
			return err
		}
		if err := store.Store(res); err != nil {
			logger.Error().Str("errmsg", err.Error()).Msg("images saving failed")
			return err
		}
	}

	if c.Bool("json") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report{
			Source:           res.Source,
			Width:            res.Width,
			Height:           res.Height,
			TotalPixels:      res.TotalPixels,
			UniqueColorCount: res.UniqueColorCount,
			TopColors:        res.TopColors.Records(),
		})
	}

	return printReport(os.Stdout, res)
}

func printReport(w io.Writer, res *pixcc.Analysis) error {

	fmt.Fprintf(w, "source:        %s\n", res.Source)
	fmt.Fprintf(w, "size:          %dx%d\n", res.Width, res.Height)
	fmt.Fprintf(w, "total pixels:  %d\n", res.TotalPixels)
	fmt.Fprintf(w, "unique colors: %d\n\n", res.UniqueColorCount)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "#\thex\trgb\tcount\tpercentage\t")
	for _, tc := range res.TopColors {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s%%\t\n",
			tc.Rank+1, tc.Color.String(), tc.Color.Text(), tc.Count,
			strconv.FormatFloat(tc.Percentage, 'f', 2, 64))
	}
	return tw.Flush()
}
