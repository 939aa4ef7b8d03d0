package archive

import (
	"fmt"
	"time"
)

// Result tracks what a snapshot export wrote.
type Result struct {
	Bucket   string
	Prefix   string
	Keys     []string
	Bytes    int
	Duration time.Duration
	Errors   []string
}

// Add records one uploaded object.
func (r *Result) Add(key string, size int) {
	r.Keys = append(r.Keys, key)
	r.Bytes += size
}

// AddError records an error message.
func (r *Result) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
}

// Summary returns a human-readable summary of the export.
func (r *Result) Summary() string {
	return fmt.Sprintf(
		"prefix=%s objects=%d bytes=%d duration=%s errors=%d",
		r.Prefix, len(r.Keys), r.Bytes,
		r.Duration.Round(time.Millisecond), len(r.Errors),
	)
}
