package output

import (
	"encoding/json"
	"io"
	"time"

	"github.com/user/rsacalc/internal/rsacore"
	"github.com/user/rsacalc/internal/verify"
)

type JSONFormatter struct{}

type JSONOutput struct {
	Timestamp    time.Time       `json:"timestamp"`
	SystemInfo   any             `json:"system_info,omitempty"`
	Result       *rsacore.Result `json:"result,omitempty"`
	Verification *verify.Result  `json:"verification,omitempty"`
}

func (j *JSONFormatter) Format(w io.Writer, data Data) error {
	output := JSONOutput{
		Timestamp:    time.Now(),
		Result:       data.Result,
		Verification: data.Verification,
	}
	if data.SystemInfo != nil {
		output.SystemInfo = data.SystemInfo
	}

	// The step trace is part of Result; strip it unless requested.
	if output.Result != nil && !data.ShowTrace {
		trimmed := *output.Result
		trimmed.Steps = nil
		output.Result = &trimmed
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}
