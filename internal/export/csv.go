package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/san-kum/chainsim/internal/dynamo"
)

var ErrMalformedRow = errors.New("export: malformed trajectory row")

// Recorder is an observer that writes one CSV row per applied tick:
// time, theta_0..theta_n-1, omega_0..omega_n-1. The header is written
// on the first row. Write errors are sticky and reported by Flush.
type Recorder struct {
	w      *csv.Writer
	header bool
	n      int
	rows   int
	err    error
}

func NewRecorder(w io.Writer) *Recorder {
	return &Recorder{w: csv.NewWriter(w)}
}

func (r *Recorder) OnStep(x dynamo.State, t float64) {
	if r.err != nil {
		return
	}

	n := x.Half()
	if !r.header {
		r.n = n
		r.header = true
		if r.err = r.w.Write(trajectoryHeader(n)); r.err != nil {
			return
		}
	}
	// chain length changed mid-run
	if n != r.n {
		r.err = fmt.Errorf("%w: %d bobs, header has %d", dynamo.ErrDimensionMismatch, n, r.n)
		return
	}

	row := make([]string, 0, len(x)+1)
	row = append(row, formatFloat(t))
	for _, v := range x {
		row = append(row, formatFloat(v))
	}
	if r.err = r.w.Write(row); r.err == nil {
		r.rows++
	}
}

// Rows returns the number of data rows written so far.
func (r *Recorder) Rows() int { return r.rows }

func (r *Recorder) Flush() error {
	r.w.Flush()
	if r.err != nil {
		return r.err
	}
	return r.w.Error()
}

// ReadTrajectory parses a file produced by Recorder.
func ReadTrajectory(rd io.Reader) ([]float64, []dynamo.State, error) {
	records, err := csv.NewReader(rd).ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) < 2 {
		return []float64{}, []dynamo.State{}, nil
	}

	times := make([]float64, 0, len(records)-1)
	states := make([]dynamo.State, 0, len(records)-1)

	for i, record := range records[1:] {
		vals := make([]float64, len(record))
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, nil, fmt.Errorf("%w %d: %w", ErrMalformedRow, i+1, err)
			}
			vals[j] = v
		}
		times = append(times, vals[0])
		states = append(states, dynamo.State(vals[1:]))
	}

	return times, states, nil
}

func trajectoryHeader(n int) []string {
	header := make([]string, 0, 2*n+1)
	header = append(header, "time")
	for i := 0; i < n; i++ {
		header = append(header, fmt.Sprintf("theta_%d", i))
	}
	for i := 0; i < n; i++ {
		header = append(header, fmt.Sprintf("omega_%d", i))
	}
	return header
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
