package render

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"paper-docx/api/internal/docx"
	"paper-docx/api/internal/util"
)

var ErrNotFound = errors.New("document not found")

// TemplateStore holds template assets by name.
type TemplateStore interface {
	Exists(name string) bool
	Render(name string, data map[string]any) ([]byte, error)
}

// OutputStore keeps rendered artifacts until they are downloaded.
type OutputStore interface {
	Save(name string, doc []byte) (string, error)
	Fetch(name string) ([]byte, error)
}

// DirTemplates reads DOCX templates from a directory.
type DirTemplates struct {
	Dir string
}

func (t DirTemplates) path(name string) (string, bool) {
	clean := util.SecureFilename(name)
	if clean == "" || clean != name {
		return "", false
	}
	return filepath.Join(t.Dir, clean), true
}

func (t DirTemplates) Exists(name string) bool {
	p, ok := t.path(name)
	if !ok {
		return false
	}
	st, err := os.Stat(p)
	return err == nil && st.Mode().IsRegular()
}

func (t DirTemplates) Render(name string, data map[string]any) ([]byte, error) {
	p, ok := t.path(name)
	if !ok {
		return nil, fmt.Errorf("bad template name %q", name)
	}
	src, err := os.ReadFile(p)
	if err != nil {
		return nil, err
	}
	return docx.Render(src, data)
}

// DirOutputs stores artifacts as files in a directory. Writes to the same
// name are serialized and atomic; the last write wins.
type DirOutputs struct {
	Dir string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewDirOutputs(dir string) (*DirOutputs, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("outputs dir: %w", err)
	}
	return &DirOutputs{Dir: dir, locks: map[string]*sync.Mutex{}}, nil
}

func (o *DirOutputs) lock(name string) *sync.Mutex {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.locks == nil {
		o.locks = map[string]*sync.Mutex{}
	}
	l, ok := o.locks[name]
	if !ok {
		l = &sync.Mutex{}
		o.locks[name] = l
	}
	return l
}

// Save writes doc under a sanitized name and returns that name.
func (o *DirOutputs) Save(name string, doc []byte) (string, error) {
	clean := util.SecureFilename(name)
	if clean == "" {
		return "", fmt.Errorf("bad output name %q", name)
	}
	l := o.lock(clean)
	l.Lock()
	defer l.Unlock()

	tmp, err := os.CreateTemp(o.Dir, ".tmp-*")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(doc); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), filepath.Join(o.Dir, clean)); err != nil {
		return "", err
	}
	return clean, nil
}

// Fetch returns a stored artifact. Names that are not a single clean path
// element are reported as ErrNotFound.
func (o *DirOutputs) Fetch(name string) ([]byte, error) {
	clean := util.SecureFilename(name)
	if clean == "" || clean != name {
		return nil, ErrNotFound
	}
	b, err := os.ReadFile(filepath.Join(o.Dir, clean))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	return b, err
}
