package feed

import (
	"context"
	"encoding/csv"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/xhit/go-str2duration/v2"

	"github.com/jmoneylabs/signalrun/core"
)

const downloadBatchSize = 500

// CSV header names, matching the layout CSVFeed reads back
var csvHeaders = []string{"time", "open", "close", "low", "high", "volume"}

// Downloader materializes historical candles from a feeder into CSV files
// that CSVFeed can replay offline
type Downloader struct {
	feeder core.Feeder
	log    core.Logger
}

// NewDownloader creates a downloader reading from the given feeder
func NewDownloader(feeder core.Feeder, log core.Logger) Downloader {
	return Downloader{feeder: feeder, log: log}
}

// DownloadParameters defines the time range for a download
type DownloadParameters struct {
	Start time.Time
	End   time.Time
}

// DownloadOption configures download parameters
type DownloadOption func(*DownloadParameters)

// WithInterval sets specific start and end times for the download
func WithInterval(start, end time.Time) DownloadOption {
	return func(parameters *DownloadParameters) {
		parameters.Start = start
		parameters.End = end
	}
}

// WithDays sets the download period to a number of days back from now
func WithDays(days int) DownloadOption {
	return func(parameters *DownloadParameters) {
		parameters.End = time.Now().UTC()
		parameters.Start = parameters.End.AddDate(0, 0, -days)
	}
}

// Download fetches candles batch by batch and writes them to outputPath.
// The default range is the trailing 90 days, the history window the
// simulator expects.
func (d Downloader) Download(ctx context.Context, ticker, timeframe, outputPath string, options ...DownloadOption) error {
	parameters := &DownloadParameters{}
	for _, option := range options {
		option(parameters)
	}
	if parameters.Start.IsZero() || parameters.End.IsZero() {
		WithDays(90)(parameters)
	}

	interval, err := str2duration.ParseDuration(timeframe)
	if err != nil {
		return err
	}
	candleCount := int(parameters.End.Sub(parameters.Start)/interval) + 1

	d.log.Infof("downloading %d candles of %s for %s", candleCount, timeframe, ticker)

	recordFile, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer recordFile.Close()

	writer := csv.NewWriter(recordFile)
	if err := writer.Write(csvHeaders); err != nil {
		return err
	}

	progressBar := progressbar.Default(int64(candleCount))
	for begin := parameters.Start; begin.Before(parameters.End); begin = begin.Add(interval * downloadBatchSize) {
		end := begin.Add(interval * downloadBatchSize)
		if end.After(parameters.End) {
			end = parameters.End
		}

		candles, err := d.feeder.CandlesByPeriod(ctx, ticker, timeframe, begin, end)
		if err != nil {
			return err
		}

		for _, candle := range candles {
			if err := writer.Write(candle.ToSlice(8)); err != nil {
				return err
			}
		}

		if err := progressBar.Add(len(candles)); err != nil {
			d.log.Warnf("update progressbar fail: %v", err)
		}
	}

	writer.Flush()
	d.log.Infof("candles saved to %s", outputPath)
	return writer.Error()
}
