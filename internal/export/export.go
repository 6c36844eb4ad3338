// Package export renders filtered sentiment rows as downloadable CSV and
// Parquet artifacts.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"

	"sentiboard/internal/domain"
)

// Supported artifact formats.
const (
	FormatCSV     = "csv"
	FormatParquet = "parquet"
)

// csvHeader is the fixed column set of the CSV artifact. Downstream
// consumers key on these names; do not reorder.
var csvHeader = []string{"Date", "Positive", "Negative", "Neutral", "Overall_Sentiment"}

// SentimentRow is the Parquet schema for exported sentiment data. It
// mirrors the CSV columns, with the date kept in its wire form.
type SentimentRow struct {
	Date             string  `parquet:"date"`
	Positive         float64 `parquet:"positive"`
	Negative         float64 `parquet:"negative"`
	Neutral          float64 `parquet:"neutral"`
	OverallSentiment float64 `parquet:"overall_sentiment"`
}

// Filename returns the download name for an export artifact:
//
//	<TICKER>_sentiment_data_<start>_<end>.<ext>
func Filename(ticker string, start, end time.Time, ext string) string {
	return fmt.Sprintf("%s_sentiment_data_%s_%s.%s",
		strings.ToUpper(ticker), domain.FormatDate(start), domain.FormatDate(end), ext)
}

// ContentType returns the MIME type served for a format. Unknown formats
// fall back to a generic byte stream.
func ContentType(format string) string {
	switch format {
	case FormatCSV:
		return "text/csv"
	case FormatParquet:
		return "application/vnd.apache.parquet"
	default:
		return "application/octet-stream"
	}
}

// Write renders rows to w in the given format.
func Write(w io.Writer, format string, rows []domain.SentimentPoint) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, rows)
	case FormatParquet:
		return WriteParquet(w, rows)
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}

// WriteCSV writes rows as CSV with the fixed header. An empty slice still
// produces the header line.
func WriteCSV(w io.Writer, rows []domain.SentimentPoint) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{
			domain.FormatDate(r.Date),
			formatScore(r.Positive),
			formatScore(r.Negative),
			formatScore(r.Neutral),
			formatScore(r.Overall),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteParquet writes rows as a Parquet file with the SentimentRow schema.
func WriteParquet(w io.Writer, rows []domain.SentimentPoint) error {
	records := make([]SentimentRow, 0, len(rows))
	for _, r := range rows {
		records = append(records, SentimentRow{
			Date:             domain.FormatDate(r.Date),
			Positive:         r.Positive,
			Negative:         r.Negative,
			Neutral:          r.Neutral,
			OverallSentiment: r.Overall,
		})
	}
	return parquet.Write(w, records)
}

// formatScore renders a score with the shortest representation that
// round-trips, so 0.5 stays "0.5" rather than a padded decimal.
func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
