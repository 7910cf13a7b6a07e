package domain

import (
	"bytes"
	"encoding/csv"
	"strings"
	"time"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
)

const outputPrefix = "stadium_cleaned_"

// OutputFileName names a run's CSV after the given wall-clock time:
// stadium_cleaned_<YYYY-MM-DD>_<HH_MM_SS[.ffffff]>.csv. Colons are replaced so
// the name is valid on every filesystem and object store.
func OutputFileName(t time.Time) string {
	clockPart := t.Format("15:04:05")
	if micro := t.Nanosecond() / int(time.Microsecond); micro != 0 {
		clockPart = t.Format("15:04:05.000000")
	}
	return outputPrefix + t.Format("2006-01-02") + "_" + strings.ReplaceAll(clockPart, ":", "_") + ".csv"
}

// NewOutputFileName names a file after the package clock's current time.
func NewOutputFileName() string {
	return OutputFileName(clock.Now())
}

// EncodeCSV writes records with a header row and no index column.
func EncodeCSV(records []StadiumRecord) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	enc := csvutil.NewEncoder(w)
	if len(records) == 0 {
		if err := enc.EncodeHeader(StadiumRecord{}); err != nil {
			return nil, eris.Wrap(err, "encode csv header")
		}
	}
	for i := range records {
		if err := enc.Encode(records[i]); err != nil {
			return nil, eris.Wrapf(err, "encode csv rank %d", records[i].Rank)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, eris.Wrap(err, "flush csv")
	}
	return buf.Bytes(), nil
}

// DecodeCSV reads a file produced by EncodeCSV.
func DecodeCSV(data []byte) ([]StadiumRecord, error) {
	var records []StadiumRecord
	if err := csvutil.Unmarshal(data, &records); err != nil {
		return nil, eris.Wrap(err, "decode csv")
	}
	return records, nil
}
