package models

// Result is produced exactly once per submitted Job by the worker loop.
// Image is set on success, Error on a compute failure.
type Result struct {
	CorrelationID uint64 `msgpack:"correlation_id"`
	Image         []byte `msgpack:"image,omitempty"`
	Error         string `msgpack:"error,omitempty"`
}

// Failed reports whether the compute call raised an error
func (r Result) Failed() bool {
	return r.Error != ""
}
