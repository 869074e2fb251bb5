package bitmap

import (
	"fmt"

	"simplefs/internal/errs"
)

// Bitmap tracks which blocks of a mounted device are free. It lives only
// in memory: it is rebuilt from the inode table on every mount and is
// never persisted. A set bit means the block is free.
type Bitmap struct {
	data []uint8
	size uint32
}

func New(size uint32) *Bitmap {
	data := make([]uint8, (size+7)/8)
	return &Bitmap{data, size}
}

// Size reports the number of blocks the bitmap covers.
func (b *Bitmap) Size() uint32 {
	return b.size
}

// Free marks the block as available for allocation.
func (b *Bitmap) Free(index uint32) error {
	byteIndex, bitOffset, err := b.locate(index)
	if err != nil {
		return err
	}
	b.data[byteIndex] |= 1 << bitOffset
	return nil
}

// Reserve marks the block as in use.
func (b *Bitmap) Reserve(index uint32) error {
	byteIndex, bitOffset, err := b.locate(index)
	if err != nil {
		return err
	}
	b.data[byteIndex] &^= 1 << bitOffset
	return nil
}

// IsFree reports whether the block is available.
func (b *Bitmap) IsFree(index uint32) (bool, error) {
	byteIndex, bitOffset, err := b.locate(index)
	if err != nil {
		return false, err
	}
	return (b.data[byteIndex]>>bitOffset)&1 == 1, nil
}

// FindFree scans from block 0 for the first free block. The second return
// value is false when every block is in use.
func (b *Bitmap) FindFree() (uint32, bool) {
	for i := uint32(0); i < b.size; i++ {
		byteIndex, bitOffset := i/8, i%8
		if (b.data[byteIndex]>>bitOffset)&1 == 1 {
			return i, true
		}
	}
	return 0, false
}

func (b *Bitmap) locate(index uint32) (uint32, uint32, error) {
	if index >= b.size {
		return 0, 0, fmt.Errorf("%w: bitmap index %d >= %d", errs.ErrBlockOutOfRange, index, b.size)
	}
	return index / 8, index % 8, nil
}
