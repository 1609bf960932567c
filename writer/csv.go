package writer

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/sigflow/sigflow/signal"
)

// CSV serializes frames as rows: a timestamp column in seconds followed
// by one column per channel, with a header naming the channels from the
// stream context. Every sample carries its own timestamp derived from the
// frame timestamp and the sample rate, never a row index, so the file
// stays meaningful after resampling or gaps.
type CSV struct {
	path string
	ctx  signal.Context
	file *os.File
	w    *csv.Writer
	row  []string
}

// NewCSV creates a CSV encoder writing to path.
func NewCSV(path string) *CSV {
	return &CSV{path: path}
}

// Begin creates the file and writes the header row.
func (c *CSV) Begin(ctx signal.Context) error {
	f, err := os.Create(c.path)
	if err != nil {
		return err
	}
	c.file = f
	c.ctx = ctx
	c.w = csv.NewWriter(f)
	header := make([]string, ctx.Channels+1)
	header[0] = "timestamp"
	for ch := 0; ch < ctx.Channels; ch++ {
		header[ch+1] = ctx.ChannelName(ch)
	}
	c.row = make([]string, len(header))
	return c.w.Write(header)
}

// Encode writes one row per sample.
func (c *CSV) Encode(f signal.Frame) error {
	if f.Data.NumChannels() != c.ctx.Channels {
		return fmt.Errorf("frame has %d channels, stream has %d", f.Data.NumChannels(), c.ctx.Channels)
	}
	for i := 0; i < f.Data.Size(); i++ {
		ts := f.Timestamp + signal.DurationOf(c.ctx.SampleRate, int64(i))
		c.row[0] = strconv.FormatFloat(ts.Seconds(), 'g', -1, 64)
		for ch := range f.Data {
			c.row[ch+1] = strconv.FormatFloat(f.Data[ch][i], 'g', -1, 64)
		}
		if err := c.w.Write(c.row); err != nil {
			return err
		}
	}
	return nil
}

// Close flushes buffered rows and closes the file.
func (c *CSV) Close() error {
	c.w.Flush()
	err := c.w.Error()
	if cerr := c.file.Close(); err == nil {
		err = cerr
	}
	return err
}
