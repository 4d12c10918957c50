package metadata

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"time"
)

var ErrNotObject = errors.New("record document is not a JSON object")

// ParseRecord decodes a record document. Fields holding the wrong JSON type
// are dropped instead of failing the whole document.
func ParseRecord(data []byte) (*FileRecord, error) {
	rec := &FileRecord{}
	if err := rec.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *FileRecord) UnmarshalJSON(data []byte) error {
	fields, ok := object(data)
	if !ok {
		return ErrNotObject
	}
	*r = FileRecord{}
	if obj, ok := object(fields["gcodeAnalysis"]); ok {
		r.GcodeAnalysis = &GcodeAnalysis{Summary: decodeSummary(obj)}
	}
	if obj, ok := object(fields["analysis"]); ok {
		a := &Analysis{Summary: decodeSummary(obj)}
		if n, ok := integer(obj["layer_count"]); ok {
			a.LayerCount = n
		}
		if n, ok := number(obj["layer_height_mm"]); ok {
			a.LayerHeightMM = n
		}
		if s, ok := text(obj["printer_name"]); ok {
			a.PrinterName = s
		}
		r.Analysis = a
	}
	if obj, ok := object(fields["prints"]); ok {
		r.Prints = decodePrints(obj)
	}
	return nil
}

func decodeSummary(obj map[string]json.RawMessage) Summary {
	var s Summary
	if dims, ok := object(obj["dimensions"]); ok {
		w, okW := number(dims["width"])
		d, okD := number(dims["depth"])
		h, okH := number(dims["height"])
		if okW && okD && okH {
			s.Dimensions = &Dimensions{Width: w, Depth: d, Height: h}
		}
	}
	if f, ok := decodeFilament(obj["filament"]); ok {
		s.Filament = f
	}
	if n, ok := number(obj["estimatedPrintTime"]); ok {
		s.EstimatedPrintTime = &n
	}
	return s
}

func decodeFilament(raw json.RawMessage) (Filament, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil || tok != json.Delim('{') {
		return nil, false
	}
	f := Filament{}
	index := map[string]int{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, false
		}
		key, _ := tok.(string)
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, false
		}
		tool := Tool{Key: key, Entry: decodeFilamentEntry(value)}
		// A repeated key keeps its first position and its last value.
		if i, seen := index[key]; seen {
			f[i] = tool
			continue
		}
		index[key] = len(f)
		f = append(f, tool)
	}
	return f, true
}

func decodeFilamentEntry(raw json.RawMessage) *FilamentEntry {
	obj, ok := object(raw)
	if !ok {
		return nil
	}
	e := &FilamentEntry{}
	if n, ok := number(obj["length"]); ok {
		e.Length = &n
	}
	if n, ok := number(obj["volume"]); ok {
		e.Volume = &n
	}
	return e
}

func decodePrints(obj map[string]json.RawMessage) *PrintHistory {
	p := &PrintHistory{}
	if n, ok := integer(obj["success"]); ok {
		p.Success = n
	}
	if n, ok := integer(obj["failure"]); ok {
		p.Failure = n
	}
	if last, ok := object(obj["last"]); ok {
		l := &LastPrint{}
		if n, ok := number(last["date"]); ok && n != 0 && n >= math.MinInt64 && n < math.MaxInt64+1.0 {
			l.Date = unixTime(n)
		}
		if n, ok := number(last["printTime"]); ok {
			l.PrintTime = n
		}
		var success *bool
		if err := json.Unmarshal(last["success"], &success); err == nil {
			l.Success = success
		}
		p.Last = l
	}
	return p
}

func object(raw json.RawMessage) (map[string]json.RawMessage, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil || m == nil {
		return nil, false
	}
	return m, true
}

func number(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var n *float64
	if err := json.Unmarshal(raw, &n); err != nil || n == nil {
		return 0, false
	}
	return *n, true
}

// integer truncates a number towards zero. Numbers outside the int range
// count as absent.
func integer(raw json.RawMessage) (int, bool) {
	n, ok := number(raw)
	if !ok || math.IsNaN(n) || n < math.MinInt || n >= math.MaxInt+1.0 {
		return 0, false
	}
	return int(n), true
}

func text(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}
	var s *string
	if err := json.Unmarshal(raw, &s); err != nil || s == nil {
		return "", false
	}
	return *s, true
}

func unixTime(seconds float64) time.Time {
	sec, frac := math.Modf(seconds)
	return time.Unix(int64(sec), int64(frac*1e9))
}

func unixSeconds(t time.Time) float64 {
	return float64(t.Unix()) + float64(t.Nanosecond())/1e9
}

type summaryJSON struct {
	Dimensions         *Dimensions `json:"dimensions,omitempty"`
	Filament           Filament    `json:"filament,omitempty"`
	EstimatedPrintTime *float64    `json:"estimatedPrintTime,omitempty"`
}

type analysisJSON struct {
	summaryJSON
	LayerCount    int     `json:"layer_count,omitempty"`
	LayerHeightMM float64 `json:"layer_height_mm,omitempty"`
	PrinterName   string  `json:"printer_name,omitempty"`
}

type lastPrintJSON struct {
	Date      float64 `json:"date,omitempty"`
	PrintTime float64 `json:"printTime,omitempty"`
	Success   *bool   `json:"success,omitempty"`
}

type printsJSON struct {
	Success int            `json:"success"`
	Failure int            `json:"failure"`
	Last    *lastPrintJSON `json:"last,omitempty"`
}

type recordJSON struct {
	GcodeAnalysis *summaryJSON  `json:"gcodeAnalysis,omitempty"`
	Analysis      *analysisJSON `json:"analysis,omitempty"`
	Prints        *printsJSON   `json:"prints,omitempty"`
}

func toSummaryJSON(s Summary) summaryJSON {
	return summaryJSON{Dimensions: s.Dimensions, Filament: s.Filament, EstimatedPrintTime: s.EstimatedPrintTime}
}

func (r *FileRecord) MarshalJSON() ([]byte, error) {
	var out recordJSON
	if r.GcodeAnalysis != nil {
		s := toSummaryJSON(r.GcodeAnalysis.Summary)
		out.GcodeAnalysis = &s
	}
	if r.Analysis != nil {
		out.Analysis = &analysisJSON{
			summaryJSON:   toSummaryJSON(r.Analysis.Summary),
			LayerCount:    r.Analysis.LayerCount,
			LayerHeightMM: r.Analysis.LayerHeightMM,
			PrinterName:   r.Analysis.PrinterName,
		}
	}
	if r.Prints != nil {
		out.Prints = &printsJSON{Success: r.Prints.Success, Failure: r.Prints.Failure}
		if l := r.Prints.Last; l != nil {
			out.Prints.Last = &lastPrintJSON{PrintTime: l.PrintTime, Success: l.Success}
			if !l.Date.IsZero() {
				out.Prints.Last.Date = unixSeconds(l.Date)
			}
		}
	}
	return json.Marshal(out)
}

// MarshalJSON writes the map with its keys in slice order.
func (f Filament) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, t := range f {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(t.Key)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(t.Entry)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
