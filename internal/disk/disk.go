package disk

import (
	"fmt"
	"os"

	"simplefs/internal/errs"
)

const (
	// BlockSize is the unit of all device I/O, in bytes.
	BlockSize = 4096
	// MaxBlocks caps the size of a disk image.
	MaxBlocks = 1000
)

// Disk emulates a block device on top of a regular file. Every read and
// write moves exactly one block.
type Disk struct {
	file   *os.File
	blocks uint32
	reads  uint64
	writes uint64
}

// Open creates or opens a disk image at path, sized to hold the given
// number of blocks.
func Open(path string, blocks uint32) (*Disk, error) {
	if blocks > MaxBlocks {
		return nil, fmt.Errorf("%w: %d > %d", errs.ErrDiskTooLarge, blocks, MaxBlocks)
	}

	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		return nil, err
	}

	if err := file.Truncate(int64(blocks) * BlockSize); err != nil {
		file.Close()
		return nil, err
	}

	return &Disk{file: file, blocks: blocks}, nil
}

// Blocks reports the number of blocks on the disk.
func (d *Disk) Blocks() uint32 {
	return d.blocks
}

// Read copies block index into buf, which must be exactly BlockSize long.
func (d *Disk) Read(index uint32, buf []byte) error {
	if err := d.check(index, buf); err != nil {
		return err
	}

	if _, err := d.file.ReadAt(buf, int64(index)*BlockSize); err != nil {
		return err
	}

	d.reads++
	return nil
}

// Write stores buf, which must be exactly BlockSize long, into block index.
func (d *Disk) Write(index uint32, buf []byte) error {
	if err := d.check(index, buf); err != nil {
		return err
	}

	if _, err := d.file.WriteAt(buf, int64(index)*BlockSize); err != nil {
		return err
	}

	d.writes++
	return nil
}

func (d *Disk) check(index uint32, buf []byte) error {
	if index >= d.blocks {
		return fmt.Errorf("%w: %d >= %d", errs.ErrBlockOutOfRange, index, d.blocks)
	}
	if len(buf) != BlockSize {
		return fmt.Errorf("%w: %d bytes", errs.ErrBadBlockBuffer, len(buf))
	}
	return nil
}

// Reads reports the cumulative block reads since Open.
func (d *Disk) Reads() uint64 {
	return d.reads
}

// Writes reports the cumulative block writes since Open.
func (d *Disk) Writes() uint64 {
	return d.writes
}

func (d *Disk) Close() error {
	return d.file.Close()
}
