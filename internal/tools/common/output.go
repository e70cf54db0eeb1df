package common

import (
	"encoding/json"
	"os"
)

// CIResult is the machine-readable outcome the ops tools print under
// --ci, consumed by the pipeline that provisions a fresh salon
// environment.
type CIResult struct {
	OK      bool     `json:"ok"`
	Command string   `json:"command"`
	Details []string `json:"details,omitempty"`
	Error   string   `json:"error,omitempty"`
}

func PrintCIResult(ok bool, command string, details []string, err error) {
	result := CIResult{OK: ok, Command: command, Details: details}
	if err != nil {
		result.Error = err.Error()
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(result)
}
