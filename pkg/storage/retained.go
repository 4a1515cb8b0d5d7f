package storage

import "os"

// Retained is an open, exclusively locked descriptor on a marker file.
// It is not safe for concurrent use; the lock handle that owns it
// serializes access.
type Retained struct {
	path string
	f    *os.File
}

func (r *Retained) Path() string {
	return r.path
}

// reports whether the descriptor is still open
func (r *Retained) Held() bool {
	return r != nil && r.f != nil
}

// drops the advisory lock and closes the descriptor, the marker file is left in place
func (r *Retained) Close() error {
	if !r.Held() {
		return nil
	}
	_ = unlock(r.f)
	err := r.f.Close()
	r.f = nil
	return err
}
