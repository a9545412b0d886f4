package main

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/sealdrop/sealdrop/internal/model"
)

// splitCSV splits a comma-separated flag value, trimming blanks.
func splitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// envelopeFromInput accepts either a full submission or a bare envelope and
// returns the envelope to decrypt.
func envelopeFromInput(raw []byte) (*model.Envelope, error) {
	var sub model.Submission
	if err := json.Unmarshal(raw, &sub); err == nil && sub.SubmissionID != "" {
		return &sub.Envelope, nil
	}
	var env model.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, errors.New("input is neither a submission nor an envelope")
	}
	if env.Method == "" || len(env.Ciphertext) == 0 {
		return nil, errors.New("input is missing envelope fields")
	}
	return &env, nil
}
