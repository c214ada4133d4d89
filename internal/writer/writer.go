package writer

import (
	"fmt"
	"os"
	"sync"
)

// FileWriter owns the destination directory for one run. Digest
// registration and name reservation happen under a single lock; the bytes
// are written after the lock is released.
type FileWriter struct {
	outputDir string
	index     *Index
	mu        sync.Mutex
}

// New creates the output directory (and parents) and returns a writer
// with an empty digest set.
func New(outputDir string) (*FileWriter, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &FileWriter{
		outputDir: outputDir,
		index:     NewIndex(),
	}, nil
}

// Dir returns the destination directory
func (w *FileWriter) Dir() string {
	return w.outputDir
}

// Save stores data fetched from rawURL under a collision-free name with the
// given extension. It returns duplicate=true, and writes nothing, when
// identical bytes were already saved in this run.
func (w *FileWriter) Save(rawURL, ext string, data []byte) (path string, duplicate bool, err error) {
	w.mu.Lock()
	digest, isNew := w.index.CheckAndRegister(data)
	if !isNew {
		w.mu.Unlock()
		return "", true, nil
	}
	path, f, err := AllocatePath(w.outputDir, BaseName(rawURL), ext)
	w.mu.Unlock()
	if err != nil {
		w.index.Forget(digest)
		return "", false, err
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		w.index.Forget(digest)
		return "", false, fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		w.index.Forget(digest)
		return "", false, fmt.Errorf("close %s: %w", path, err)
	}
	return path, false, nil
}

// Unique returns the number of distinct payloads seen so far
func (w *FileWriter) Unique() int {
	return w.index.Len()
}
