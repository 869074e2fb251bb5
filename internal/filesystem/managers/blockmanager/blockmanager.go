package blockmanager

import (
	"simplefs/internal/disk"
	"simplefs/internal/filesystem/bitmap"
	"simplefs/internal/filesystem/inode"
)

// BlockManager resolves logical byte offsets within a file to physical
// blocks, walking the inode's direct pointers and then the indirect
// block's pointer array, and allocates blocks on demand during writes.
type BlockManager struct {
	dev    *disk.Disk
	bitmap *bitmap.Bitmap
}

func New(dev *disk.Disk, b *bitmap.Bitmap) *BlockManager {
	return &BlockManager{dev, b}
}

// Allocate claims the first free block, zeroes it on disk, and returns
// its pointer. A nil pointer with a nil error means the disk is full.
func (bm *BlockManager) Allocate() (inode.BlockPtr, error) {
	index, ok := bm.bitmap.FindFree()
	if !ok {
		return 0, nil
	}

	if err := bm.bitmap.Reserve(index); err != nil {
		return 0, err
	}

	if err := bm.dev.Write(index, make([]byte, disk.BlockSize)); err != nil {
		return 0, err
	}

	return inode.BlockPtr(index), nil
}

// Release zeroes the block's contents on disk and marks it free.
func (bm *BlockManager) Release(p inode.BlockPtr) error {
	if err := bm.dev.Write(p.Index(), make([]byte, disk.BlockSize)); err != nil {
		return err
	}
	return bm.bitmap.Free(p.Index())
}

// ReadAt copies up to len(p) bytes of the file's data stream into p,
// starting at the given byte offset. It walks every logical block the
// range covers, direct then indirect, and stops early at the inode's
// recorded size or at an unallocated pointer. A short count with a nil
// error is a short read, not a failure.
func (bm *BlockManager) ReadAt(in inode.Inode, p []byte, offset uint32) (int, error) {
	if offset >= in.Size {
		return 0, nil
	}
	if rest := in.Size - offset; uint32(len(p)) > rest {
		p = p[:rest]
	}

	var (
		read     int
		logical  = offset / disk.BlockSize
		pos      = offset % disk.BlockSize
		buf      = make([]byte, disk.BlockSize)
		indirect []inode.BlockPtr
	)

	for read < len(p) {
		ptr, err := bm.resolve(in, logical, &indirect)
		if err != nil {
			return read, err
		}
		if ptr.IsNil() {
			break
		}

		if err := bm.dev.Read(ptr.Index(), buf); err != nil {
			return read, err
		}

		read += copy(p[read:], buf[pos:])
		pos = 0
		logical++
	}

	return read, nil
}

// resolve maps a logical block index to its pointer. The indirect pointer
// array is loaded at most once per walk and cached in *indirect.
func (bm *BlockManager) resolve(in inode.Inode, logical uint32, indirect *[]inode.BlockPtr) (inode.BlockPtr, error) {
	if logical < inode.PointersPerInode {
		return in.Direct[logical], nil
	}
	if logical >= inode.MaxFileBlocks || in.Indirect.IsNil() {
		return 0, nil
	}

	if *indirect == nil {
		buf := make([]byte, disk.BlockSize)
		if err := bm.dev.Read(in.Indirect.Index(), buf); err != nil {
			return 0, err
		}
		*indirect = inode.DecodePointers(buf)
	}

	return (*indirect)[logical-inode.PointersPerInode], nil
}

// WriteAt copies p into the file's data stream starting at the given byte
// offset, allocating data blocks (and the indirect block itself on first
// use of the indirect range) on demand. Each touched block is
// read-modify-written, so bytes outside the written range survive.
// Running out of free blocks stops the walk with a short count and a nil
// error; the caller accounts for the bytes that did land. The inode is
// mutated in memory only; persisting it is the caller's job.
func (bm *BlockManager) WriteAt(in *inode.Inode, p []byte, offset uint32) (int, error) {
	var (
		written  int
		logical  = offset / disk.BlockSize
		pos      = offset % disk.BlockSize
		buf      = make([]byte, disk.BlockSize)
		indirect []inode.BlockPtr
	)

	for written < len(p) && logical < inode.MaxFileBlocks {
		ptr, err := bm.resolveForWrite(in, logical, &indirect)
		if err != nil {
			return written, err
		}
		if ptr.IsNil() {
			break
		}

		if err := bm.dev.Read(ptr.Index(), buf); err != nil {
			return written, err
		}

		n := copy(buf[pos:], p[written:])

		if err := bm.dev.Write(ptr.Index(), buf); err != nil {
			return written, err
		}

		written += n
		pos = 0
		logical++
	}

	return written, nil
}

// resolveForWrite resolves a logical block index, allocating the data
// block and, in the indirect range, the indirect block itself as needed.
// A nil pointer with a nil error means no free block was available.
func (bm *BlockManager) resolveForWrite(in *inode.Inode, logical uint32, indirect *[]inode.BlockPtr) (inode.BlockPtr, error) {
	if logical < inode.PointersPerInode {
		if !in.Direct[logical].IsNil() {
			return in.Direct[logical], nil
		}

		ptr, err := bm.Allocate()
		if err != nil || ptr.IsNil() {
			return 0, err
		}
		in.Direct[logical] = ptr
		return ptr, nil
	}

	if in.Indirect.IsNil() {
		ptr, err := bm.Allocate()
		if err != nil || ptr.IsNil() {
			return 0, err
		}
		in.Indirect = ptr
		// Freshly allocated indirect block is all zeroes on disk.
		*indirect = make([]inode.BlockPtr, inode.PointersPerBlock)
	} else if *indirect == nil {
		buf := make([]byte, disk.BlockSize)
		if err := bm.dev.Read(in.Indirect.Index(), buf); err != nil {
			return 0, err
		}
		*indirect = inode.DecodePointers(buf)
	}

	index := logical - inode.PointersPerInode
	if !(*indirect)[index].IsNil() {
		return (*indirect)[index], nil
	}

	ptr, err := bm.Allocate()
	if err != nil || ptr.IsNil() {
		return 0, err
	}

	(*indirect)[index] = ptr

	buf := make([]byte, disk.BlockSize)
	inode.EncodePointers(*indirect, buf)
	if err := bm.dev.Write(in.Indirect.Index(), buf); err != nil {
		return 0, err
	}

	return ptr, nil
}
