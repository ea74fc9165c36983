package pixcc

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
)

// BufferedCSV implements Outputer interface. CSV file with write buffer.
type BufferedCSV struct {
	mux                 sync.Mutex
	buf                 strings.Builder
	lines               int
	size                int
	file                *os.File
	isHeadWriteRequired bool
}

// DefaultBufferLen defines default output buffer length in lines.
const DefaultBufferLen = 10

// NewBufferedCSV returns new BufferedCSV instance. If size < 2, DefaultBufferLen (10) will be assigned.
func NewBufferedCSV(size int) *BufferedCSV {
	if size < 2 {
		size = DefaultBufferLen
	}
	return &BufferedCSV{size: size}
}

// Open creates file or appends if file is exist. CSV header writes only into empty file.
func (out *BufferedCSV) Open(fname string) error {

	out.mux.Lock()
	defer out.mux.Unlock()

	var err error
	out.file, err = os.OpenFile(fname, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return err
	}

	fi, err := out.file.Stat()
	if err != nil {
		_ = out.file.Close()
		out.file = nil
		return err
	}

	out.isHeadWriteRequired = (fi.Size() == 0)

	return nil
}

// Save adds Resulter to the buffer and flushes buffer to the file if buffer length reached the limit.
func (out *BufferedCSV) Save(res Resulter) error {

	out.mux.Lock()
	defer out.mux.Unlock()

	if out.file == nil {
		// ignore, if Processor called Save() later than Close() was called.
		return nil
	}

	if out.isHeadWriteRequired {
		// applies only at the first Save() call.
		out.buf.WriteString(res.Header())
		out.isHeadWriteRequired = false
	}

	out.buf.WriteString(res.Result())
	out.lines++
	if out.lines < out.size {
		return nil
	}

	return out.flush()
}

func (out *BufferedCSV) flush() error {
	if out.buf.Len() == 0 {
		return nil
	}

	_, err := out.file.WriteString(out.buf.String())
	out.buf.Reset()
	out.lines = 0
	return err
}

// Close flushes to the output file unsaved buffer and closes file.
func (out *BufferedCSV) Close() error {
	out.mux.Lock()
	defer out.mux.Unlock()

	if out.file == nil {
		return nil
	}

	err := out.flush()
	if err == nil {
		err = out.file.Close()
	} else {
		// return error related to WriteString
		_ = out.file.Close()
	}

	out.file = nil
	return err
}

// DirImageStore implements ImageStore interface. Saves rendered images into directory
// as <seq>-<name>.original.png, <seq>-<name>.quantized.png and <seq>-<name>.white.png,
// where name is base name of the image source.
type DirImageStore struct {
	dir string
	seq int64
}

// NewDirImageStore creates directory if it does not exist and returns DirImageStore instance.
func NewDirImageStore(dir string) (*DirImageStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &DirImageStore{dir: dir}, nil
}

// Store implements interface ImageStore. Images absent in the analysis are skipped.
func (st *DirImageStore) Store(res *Analysis) error {

	prefix := fmt.Sprintf("%06d-%s", atomic.AddInt64(&st.seq, 1), baseName(res.Source))

	for _, f := range [...]struct {
		suffix string
		data   []byte
	}{
		{"original", res.OriginalImage},
		{"quantized", res.QuantizedImage},
		{"white", res.WhiteImage},
	} {
		if f.data == nil {
			continue
		}
		fname := filepath.Join(st.dir, prefix+"."+f.suffix+".png")
		if err := os.WriteFile(fname, f.data, 0644); err != nil {
			return err
		}
	}

	return nil
}

// baseName returns file name of URL or path without extension, safe to be used as file name.
func baseName(source string) string {
	if i := strings.IndexAny(source, "?#"); i >= 0 {
		source = source[:i]
	}
	name := path.Base(filepath.ToSlash(source))
	name = strings.TrimSuffix(name, path.Ext(name))

	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, name)

	if name == "" || strings.Trim(name, "_") == "" {
		return "image"
	}
	return name
}
