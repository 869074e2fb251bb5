package inodemanager

import (
	"fmt"

	"simplefs/internal/disk"
	"simplefs/internal/errs"
	"simplefs/internal/filesystem/inode"
)

// InodeManager addresses the inode table: fixed-size records packed into
// the blocks immediately after the superblock. Records are loaded and
// saved one table block at a time, never cached in bulk.
type InodeManager struct {
	dev         *disk.Disk
	inodeBlocks uint32
	inodes      uint32
}

func New(dev *disk.Disk, inodeBlocks, inodes uint32) *InodeManager {
	return &InodeManager{dev, inodeBlocks, inodes}
}

// Locate maps a global inode number to its table block and slot. The +1
// skips the superblock.
func Locate(number uint32) (blockIndex uint32, slot int) {
	return number/inode.InodesPerBlock + 1, int(number % inode.InodesPerBlock)
}

// Load reads the inode record for the given number. It fails if the
// number is out of range or the record is not valid.
func (im *InodeManager) Load(number uint32) (inode.Inode, error) {
	if number >= im.inodes {
		return inode.Inode{}, fmt.Errorf("%w: %d >= %d", errs.ErrInodeOutOfRange, number, im.inodes)
	}

	blockIndex, slot := Locate(number)

	buf := make([]byte, disk.BlockSize)
	if err := im.dev.Read(blockIndex, buf); err != nil {
		return inode.Inode{}, err
	}

	in := inode.DecodeSlot(buf, slot)
	if !in.Valid {
		return inode.Inode{}, fmt.Errorf("%w: %d", errs.ErrInodeNotValid, number)
	}

	return in, nil
}

// Save writes the inode record back to its table slot. The owning block
// is read, patched, and rewritten; slots sharing the block are preserved.
func (im *InodeManager) Save(number uint32, in inode.Inode) error {
	if number >= im.inodes {
		return fmt.Errorf("%w: %d >= %d", errs.ErrInodeOutOfRange, number, im.inodes)
	}

	blockIndex, slot := Locate(number)

	buf := make([]byte, disk.BlockSize)
	if err := im.dev.Read(blockIndex, buf); err != nil {
		return err
	}

	in.EncodeSlot(buf, slot)
	return im.dev.Write(blockIndex, buf)
}

// Allocate claims the first invalid slot in table order, persists it as a
// fresh valid record with zero size and no pointers, and returns its
// global inode number.
func (im *InodeManager) Allocate() (uint32, error) {
	buf := make([]byte, disk.BlockSize)

	for blockIndex := uint32(1); blockIndex <= im.inodeBlocks; blockIndex++ {
		if err := im.dev.Read(blockIndex, buf); err != nil {
			return 0, err
		}

		for slot := 0; slot < inode.InodesPerBlock; slot++ {
			if inode.DecodeSlot(buf, slot).Valid {
				continue
			}

			fresh := inode.Inode{Valid: true}
			fresh.EncodeSlot(buf, slot)
			if err := im.dev.Write(blockIndex, buf); err != nil {
				return 0, err
			}

			return (blockIndex-1)*inode.InodesPerBlock + uint32(slot), nil
		}
	}

	return 0, errs.ErrInodeTableFull
}

// ForEach calls fn for every valid inode in table order.
func (im *InodeManager) ForEach(fn func(number uint32, in inode.Inode) error) error {
	buf := make([]byte, disk.BlockSize)

	for blockIndex := uint32(1); blockIndex <= im.inodeBlocks; blockIndex++ {
		if err := im.dev.Read(blockIndex, buf); err != nil {
			return err
		}

		for slot := 0; slot < inode.InodesPerBlock; slot++ {
			in := inode.DecodeSlot(buf, slot)
			if !in.Valid {
				continue
			}

			number := (blockIndex-1)*inode.InodesPerBlock + uint32(slot)
			if err := fn(number, in); err != nil {
				return err
			}
		}
	}

	return nil
}
