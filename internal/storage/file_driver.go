package storage

import (
	"fmt"
	"io"
	"os"
)

// FileDriver is the default Driver backed by a real *os.File.
type FileDriver struct {
	f    *os.File
	pos  int64
	size int64
}

// OpenFile opens path for the storage driver, creating it if create is
// true. directIO requests O_DIRECT on platforms that support it; see
// file_driver_linux.go / file_driver_other.go.
func OpenFile(path string, create bool, directIO bool) (*FileDriver, error) {
	flags := os.O_RDWR
	if create {
		flags |= os.O_CREATE
	}
	flags |= directIOFlag(directIO)

	f, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("storage: stat %s: %w", path, err)
	}

	return &FileDriver{f: f, size: info.Size()}, nil
}

func (d *FileDriver) Seek(pos int64) error {
	off, err := d.f.Seek(pos, io.SeekStart)
	if err != nil {
		return fmt.Errorf("storage: seek: %w", err)
	}
	d.pos = off
	return nil
}

func (d *FileDriver) Read(dst []byte) error {
	n, err := io.ReadFull(d.f, dst)
	d.pos += int64(n)
	if err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return ErrShortReadWrite
		}
		return fmt.Errorf("storage: read: %w", err)
	}
	return nil
}

func (d *FileDriver) Write(src []byte) error {
	n, err := d.f.Write(src)
	d.pos += int64(n)
	if d.pos > d.size {
		d.size = d.pos
	}
	if err != nil {
		return fmt.Errorf("storage: write: %w", err)
	}
	if n != len(src) {
		return ErrShortReadWrite
	}
	return nil
}

func (d *FileDriver) Flush() error {
	if err := d.f.Sync(); err != nil {
		return fmt.Errorf("storage: sync: %w", err)
	}
	return nil
}

func (d *FileDriver) Size() (int64, error) {
	return d.size, nil
}

func (d *FileDriver) Close() error {
	return d.f.Close()
}
