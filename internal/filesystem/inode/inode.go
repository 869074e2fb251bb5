package inode

import (
	"encoding/binary"

	"simplefs/internal/disk"
)

const (
	// Size is the length of one encoded inode record, in bytes.
	Size = 32
	// InodesPerBlock is how many records fit in one inode-table block.
	InodesPerBlock = disk.BlockSize / Size
	// PointersPerInode is the length of the direct pointer array.
	PointersPerInode = 5
	// PointersPerBlock is how many pointers fit in an indirect block.
	PointersPerBlock = disk.BlockSize / 4
)

// MaxFileBlocks is the largest number of data blocks one inode can address.
const MaxFileBlocks = PointersPerInode + PointersPerBlock

// BlockPtr is a reference to a data block. The zero value means "absent":
// block 0 holds the superblock and can never be a data block, so 0 doubles
// as the on-disk sentinel for an unallocated pointer.
type BlockPtr uint32

func (p BlockPtr) IsNil() bool {
	return p == 0
}

func (p BlockPtr) Index() uint32 {
	return uint32(p)
}

// Inode describes one file: a validity flag, a byte size, and the block
// pointers its data stream resolves through.
type Inode struct {
	Valid    bool
	Size     uint32
	Direct   [PointersPerInode]BlockPtr
	Indirect BlockPtr
}

// Decode reads one inode record from a Size-byte slice.
func Decode(data []byte) Inode {
	var in Inode

	in.Valid = binary.BigEndian.Uint32(data[0:4]) != 0
	in.Size = binary.BigEndian.Uint32(data[4:8])
	for i := 0; i < PointersPerInode; i++ {
		offset := 8 + i*4
		in.Direct[i] = BlockPtr(binary.BigEndian.Uint32(data[offset : offset+4]))
	}
	in.Indirect = BlockPtr(binary.BigEndian.Uint32(data[28:32]))

	return in
}

// Encode writes the inode record into a Size-byte slice.
func (in Inode) Encode(data []byte) {
	var valid uint32
	if in.Valid {
		valid = 1
	}

	binary.BigEndian.PutUint32(data[0:4], valid)
	binary.BigEndian.PutUint32(data[4:8], in.Size)
	for i := 0; i < PointersPerInode; i++ {
		offset := 8 + i*4
		binary.BigEndian.PutUint32(data[offset:offset+4], uint32(in.Direct[i]))
	}
	binary.BigEndian.PutUint32(data[28:32], uint32(in.Indirect))
}

// DecodeSlot reads the record at the given slot of an inode-table block.
func DecodeSlot(block []byte, slot int) Inode {
	offset := slot * Size
	return Decode(block[offset : offset+Size])
}

// EncodeSlot writes the record into the given slot of an inode-table block.
func (in Inode) EncodeSlot(block []byte, slot int) {
	offset := slot * Size
	in.Encode(block[offset : offset+Size])
}

// DecodePointers reinterprets a raw data block as an indirect pointer array.
func DecodePointers(block []byte) []BlockPtr {
	pointers := make([]BlockPtr, PointersPerBlock)
	for i := range pointers {
		pointers[i] = BlockPtr(binary.BigEndian.Uint32(block[i*4 : i*4+4]))
	}
	return pointers
}

// EncodePointers packs an indirect pointer array back into a block buffer.
func EncodePointers(pointers []BlockPtr, block []byte) {
	for i, p := range pointers {
		binary.BigEndian.PutUint32(block[i*4:i*4+4], uint32(p))
	}
}
