// Package thumbnail implements asynchronous thumbnail generation for
// image uploads.
//
// The upload path enqueues a job after the image record is committed; a
// separate worker process consumes jobs, reads the original blob and
// writes one resized variant per target width next to it. Delivery is
// at-least-once: re-processing a job overwrites the same variant blobs,
// so duplicates are harmless.
package thumbnail

import "encoding/json"

// TaskTypeGenerate is the queue task type for thumbnail generation.
const TaskTypeGenerate = "thumbnail:generate"

// Widths are the generated variant widths, processed in this order.
// A failure aborts the remaining widths.
var Widths = []int{500, 250, 100}

// Job is the queue payload: which user's file needs thumbnails.
type Job struct {
	UserID string `json:"userId"`
	FileID string `json:"fileId"`
}

// Marshal encodes the job as the queue payload.
func (j Job) Marshal() ([]byte, error) {
	return json.Marshal(j)
}

// UnmarshalJob decodes a queue payload. Unknown or missing fields are not
// an error here: the worker validates field presence itself so malformed
// jobs fail the job, not the decode.
func UnmarshalJob(data []byte) (Job, error) {
	var job Job
	err := json.Unmarshal(data, &job)
	return job, err
}
