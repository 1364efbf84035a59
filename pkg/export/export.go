package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/kilianp07/fuzzycharge/core/charging"
)

// Document is the JSON form of a simulation result.
type Document struct {
	RunID          string         `json:"run_id"`
	ElapsedSeconds int            `json:"elapsed_seconds"`
	FinalSoC       float64        `json:"final_soc"`
	SoC            []float64      `json:"soc"`
	Voltage        []float64      `json:"voltage"`
	Current        []float64      `json:"current"`
	Stats          charging.Stats `json:"stats"`
}

// NewDocument builds the JSON document for res.
func NewDocument(res charging.Result) Document {
	return Document{
		RunID:          res.RunID,
		ElapsedSeconds: res.ElapsedSeconds(),
		FinalSoC:       res.FinalSoC(),
		SoC:            nonNil(res.SoC),
		Voltage:        nonNil(res.Voltage),
		Current:        nonNil(res.Current),
		Stats:          res.Stats(),
	}
}

// WriteJSON writes the result to w as an indented JSON document.
func WriteJSON(w io.Writer, res charging.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewDocument(res))
}

// WriteCSV writes one row per SoC sample. Row i holds the SoC at the start of
// second i and the voltage and current applied during it; the final row only
// carries the SoC reached at the end of the run.
func WriteCSV(w io.Writer, res charging.Result) error {
	if len(res.Voltage) != len(res.Current) || (len(res.SoC) > 0 && len(res.SoC) != len(res.Voltage)+1) {
		return fmt.Errorf("inconsistent result: %d soc, %d voltage, %d current samples",
			len(res.SoC), len(res.Voltage), len(res.Current))
	}
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"second", "soc", "voltage_v", "current_a"}); err != nil {
		return err
	}
	for i, soc := range res.SoC {
		rec := []string{strconv.Itoa(i), formatFloat(soc), "", ""}
		if i < len(res.Voltage) {
			rec[2] = formatFloat(res.Voltage[i])
			rec[3] = formatFloat(res.Current[i])
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func nonNil(s []float64) []float64 {
	if s == nil {
		return []float64{}
	}
	return s
}
