package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/parquet-go/parquet-go"

	"sentiboard/internal/domain"
)

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := domain.ParseDate(s)
	if err != nil {
		t.Fatalf("ParseDate(%q): %v", s, err)
	}
	return d
}

func TestFilename(t *testing.T) {
	got := Filename("tsla", date(t, "2024-01-01"), date(t, "2024-03-31"), "csv")
	want := "TSLA_sentiment_data_2024-01-01_2024-03-31.csv"
	if got != want {
		t.Errorf("Filename = %q, want %q", got, want)
	}

	got = Filename("AAPL", date(t, "2024-06-01"), date(t, "2024-06-01"), "parquet")
	want = "AAPL_sentiment_data_2024-06-01_2024-06-01.parquet"
	if got != want {
		t.Errorf("Filename = %q, want %q", got, want)
	}
}

func TestWriteCSV(t *testing.T) {
	rows := []domain.SentimentPoint{
		{Date: date(t, "2024-01-01"), Positive: 0.5, Negative: 0.25, Neutral: 0.125, Overall: 0.25},
		{Date: date(t, "2024-01-02"), Positive: 0.1, Negative: 0.4, Neutral: 0.2, Overall: -0.3},
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, rows); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	want := strings.Join([]string{
		"Date,Positive,Negative,Neutral,Overall_Sentiment",
		"2024-01-01,0.5,0.25,0.125,0.25",
		"2024-01-02,0.1,0.4,0.2,-0.3",
	}, "\n") + "\n"
	if got := buf.String(); got != want {
		t.Errorf("WriteCSV output = %q, want %q", got, want)
	}
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	want := "Date,Positive,Negative,Neutral,Overall_Sentiment\n"
	if got := buf.String(); got != want {
		t.Errorf("WriteCSV output = %q, want %q", got, want)
	}
}

func TestWriteParquetRoundTrip(t *testing.T) {
	rows := []domain.SentimentPoint{
		{Date: date(t, "2024-01-01"), Positive: 0.6, Negative: 0.1, Neutral: 0.3, Overall: 0.5},
		{Date: date(t, "2024-01-02"), Positive: 0.2, Negative: 0.35, Neutral: 0.45, Overall: -0.15},
	}

	var buf bytes.Buffer
	if err := WriteParquet(&buf, rows); err != nil {
		t.Fatalf("WriteParquet: %v", err)
	}

	got, err := parquet.Read[SentimentRow](bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("reading parquet back: %v", err)
	}
	if len(got) != len(rows) {
		t.Fatalf("read %d rows, want %d", len(got), len(rows))
	}
	for i, r := range got {
		want := SentimentRow{
			Date:             domain.FormatDate(rows[i].Date),
			Positive:         rows[i].Positive,
			Negative:         rows[i].Negative,
			Neutral:          rows[i].Neutral,
			OverallSentiment: rows[i].Overall,
		}
		if r != want {
			t.Errorf("row %d = %+v, want %+v", i, r, want)
		}
	}
}

func TestWriteParquetEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteParquet(&buf, nil); err != nil {
		t.Fatalf("WriteParquet: %v", err)
	}

	got, err := parquet.Read[SentimentRow](bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("reading parquet back: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("read %d rows, want 0", len(got))
	}
}

func TestWriteUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, "xlsx", nil); err == nil {
		t.Error("Write with unknown format did not error")
	}
}

func TestContentType(t *testing.T) {
	tests := []struct {
		format string
		want   string
	}{
		{FormatCSV, "text/csv"},
		{FormatParquet, "application/vnd.apache.parquet"},
		{"xlsx", "application/octet-stream"},
	}
	for _, tt := range tests {
		if got := ContentType(tt.format); got != tt.want {
			t.Errorf("ContentType(%q) = %q, want %q", tt.format, got, tt.want)
		}
	}
}
