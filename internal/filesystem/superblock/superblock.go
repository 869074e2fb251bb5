package superblock

import (
	"encoding/binary"
	"fmt"

	"simplefs/internal/errs"
	"simplefs/internal/filesystem/inode"
)

// MagicNumber identifies a formatted disk image.
const MagicNumber = 0xf0f03410

// Size is the length of the encoded superblock record at the start of
// block 0, in bytes.
const Size = 16

// Superblock is the metadata record describing the overall disk layout.
type Superblock struct {
	MagicNumber uint32
	Blocks      uint32
	InodeBlocks uint32
	Inodes      uint32
}

// New computes the layout for a device with the given block count: one
// tenth of the blocks, rounded up, are reserved for the inode table.
func New(blocks uint32) Superblock {
	inodeBlocks := InodeBlocksFor(blocks)

	return Superblock{
		MagicNumber: MagicNumber,
		Blocks:      blocks,
		InodeBlocks: inodeBlocks,
		Inodes:      inodeBlocks * inode.InodesPerBlock,
	}
}

// InodeBlocksFor returns ceil(blocks / 10), the format-time reservation rule.
func InodeBlocksFor(blocks uint32) uint32 {
	return (blocks + 9) / 10
}

// Decode reads the superblock record from the start of a block buffer.
func Decode(data []byte) Superblock {
	return Superblock{
		MagicNumber: binary.BigEndian.Uint32(data[0:4]),
		Blocks:      binary.BigEndian.Uint32(data[4:8]),
		InodeBlocks: binary.BigEndian.Uint32(data[8:12]),
		Inodes:      binary.BigEndian.Uint32(data[12:16]),
	}
}

// Encode writes the superblock record into the start of a block buffer.
func (s Superblock) Encode(data []byte) {
	binary.BigEndian.PutUint32(data[0:4], s.MagicNumber)
	binary.BigEndian.PutUint32(data[4:8], s.Blocks)
	binary.BigEndian.PutUint32(data[8:12], s.InodeBlocks)
	binary.BigEndian.PutUint32(data[12:16], s.Inodes)
}

// Validate cross-checks a superblock read from disk against the actual
// device size and the format-time derivation rules, guarding against a
// corrupted or foreign image.
func (s Superblock) Validate(deviceBlocks uint32) error {
	if s.MagicNumber != MagicNumber {
		return fmt.Errorf("%w: %#x", errs.ErrBadMagicNumber, s.MagicNumber)
	}
	if s.Blocks != deviceBlocks {
		return fmt.Errorf("%w: superblock has %d blocks, device has %d",
			errs.ErrCorruptSuperblock, s.Blocks, deviceBlocks)
	}
	if s.InodeBlocks != InodeBlocksFor(s.Blocks) {
		return fmt.Errorf("%w: %d inode blocks for %d blocks",
			errs.ErrCorruptSuperblock, s.InodeBlocks, s.Blocks)
	}
	if s.Inodes != s.InodeBlocks*inode.InodesPerBlock {
		return fmt.Errorf("%w: %d inodes for %d inode blocks",
			errs.ErrCorruptSuperblock, s.Inodes, s.InodeBlocks)
	}
	return nil
}
