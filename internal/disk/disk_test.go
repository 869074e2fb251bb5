package disk

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"simplefs/internal/errs"
)

func TestOpenRejectsTooManyBlocks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.img")

	_, err := Open(path, MaxBlocks+1)
	if !errors.Is(err, errs.ErrDiskTooLarge) {
		t.Fatalf("Open(%d blocks) error = %v; want ErrDiskTooLarge", MaxBlocks+1, err)
	}
}

func TestReadWriteRoundTrip(t *testing.T) {
	dev := setupDisk(t, 10)

	out := make([]byte, BlockSize)
	for i := range out {
		out[i] = byte(i % 251)
	}

	if err := dev.Write(3, out); err != nil {
		t.Fatalf("Write error: %v", err)
	}

	in := make([]byte, BlockSize)
	if err := dev.Read(3, in); err != nil {
		t.Fatalf("Read error: %v", err)
	}

	if !bytes.Equal(in, out) {
		t.Errorf("Read returned different data than written")
	}

	if dev.Reads() != 1 || dev.Writes() != 1 {
		t.Errorf("counters = %d reads, %d writes; want 1 and 1", dev.Reads(), dev.Writes())
	}
}

func TestBoundsChecks(t *testing.T) {
	dev := setupDisk(t, 10)
	buf := make([]byte, BlockSize)

	if err := dev.Read(10, buf); !errors.Is(err, errs.ErrBlockOutOfRange) {
		t.Errorf("Read(10) error = %v; want ErrBlockOutOfRange", err)
	}
	if err := dev.Write(10, buf); !errors.Is(err, errs.ErrBlockOutOfRange) {
		t.Errorf("Write(10) error = %v; want ErrBlockOutOfRange", err)
	}

	short := make([]byte, BlockSize-1)
	if err := dev.Read(0, short); !errors.Is(err, errs.ErrBadBlockBuffer) {
		t.Errorf("Read with short buffer error = %v; want ErrBadBlockBuffer", err)
	}
	if err := dev.Write(0, short); !errors.Is(err, errs.ErrBadBlockBuffer) {
		t.Errorf("Write with short buffer error = %v; want ErrBadBlockBuffer", err)
	}
}

func TestFreshImageReadsZeroes(t *testing.T) {
	dev := setupDisk(t, 5)

	buf := make([]byte, BlockSize)
	if err := dev.Read(4, buf); err != nil {
		t.Fatalf("Read error: %v", err)
	}

	for i, b := range buf {
		if b != 0 {
			t.Fatalf("fresh image byte %d = %d; want 0", i, b)
		}
	}
}

func setupDisk(t *testing.T, blocks uint32) *Disk {
	t.Helper()

	dev, err := Open(filepath.Join(t.TempDir(), "test.img"), blocks)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	t.Cleanup(func() { dev.Close() })

	return dev
}
