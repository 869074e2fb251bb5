package filesystem

import (
	"fmt"
	"io"

	"simplefs/internal/disk"
	"simplefs/internal/errs"
	"simplefs/internal/filesystem/bitmap"
	"simplefs/internal/filesystem/inode"
	"simplefs/internal/filesystem/managers/blockmanager"
	"simplefs/internal/filesystem/managers/inodemanager"
	"simplefs/internal/filesystem/superblock"
)

// FileSystem binds one mounted block device, a cached copy of its
// superblock, and the free-block bitmap rebuilt at mount time. The data
// model is a flat table of numbered inodes holding opaque byte streams.
// Exactly one caller may own a mounted FileSystem at a time; operations
// do not lock.
type FileSystem struct {
	dev        *disk.Disk
	superblock superblock.Superblock
	bitmap     *bitmap.Bitmap
	inodes     *inodemanager.InodeManager
	blocks     *blockmanager.BlockManager
}

func New() *FileSystem {
	return &FileSystem{}
}

// Mounted reports whether the file system currently owns a device. The
// bitmap exists exactly while mounted.
func (fs *FileSystem) Mounted() bool {
	return fs.bitmap != nil
}

// Format writes a fresh superblock to block 0 of the device and zeroes
// every remaining block. Destructive. The receiver must be unmounted.
func (fs *FileSystem) Format(dev *disk.Disk) error {
	if fs.Mounted() {
		return errs.ErrMounted
	}

	sb := superblock.New(dev.Blocks())

	buf := make([]byte, disk.BlockSize)
	sb.Encode(buf)
	if err := dev.Write(0, buf); err != nil {
		return err
	}

	empty := make([]byte, disk.BlockSize)
	for i := uint32(1); i < dev.Blocks(); i++ {
		if err := dev.Write(i, empty); err != nil {
			return err
		}
	}

	return nil
}

// Mount validates the device's superblock, caches it, and rebuilds the
// free-block bitmap by scanning the inode table: the superblock and
// inode-table blocks are reserved, then every block referenced by a
// valid inode, directly or through its indirect block.
func (fs *FileSystem) Mount(dev *disk.Disk) error {
	if fs.Mounted() {
		return errs.ErrMounted
	}

	buf := make([]byte, disk.BlockSize)
	if err := dev.Read(0, buf); err != nil {
		return err
	}

	sb := superblock.Decode(buf)
	if err := sb.Validate(dev.Blocks()); err != nil {
		return err
	}

	b := bitmap.New(dev.Blocks())
	for i := uint32(0); i < dev.Blocks(); i++ {
		b.Free(i)
	}
	for i := uint32(0); i <= sb.InodeBlocks; i++ {
		b.Reserve(i)
	}

	im := inodemanager.New(dev, sb.InodeBlocks, sb.Inodes)
	err := im.ForEach(func(number uint32, in inode.Inode) error {
		for _, ptr := range in.Direct {
			if ptr.IsNil() {
				continue
			}
			if err := b.Reserve(ptr.Index()); err != nil {
				return err
			}
		}

		if in.Indirect.IsNil() {
			return nil
		}
		if err := b.Reserve(in.Indirect.Index()); err != nil {
			return err
		}

		if err := dev.Read(in.Indirect.Index(), buf); err != nil {
			return err
		}
		for _, ptr := range inode.DecodePointers(buf) {
			if ptr.IsNil() {
				continue
			}
			if err := b.Reserve(ptr.Index()); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	fs.dev = dev
	fs.superblock = sb
	fs.bitmap = b
	fs.inodes = im
	fs.blocks = blockmanager.New(dev, b)

	return nil
}

// Unmount drops the bitmap and the device binding.
func (fs *FileSystem) Unmount() error {
	if !fs.Mounted() {
		return errs.ErrNotMounted
	}

	fs.dev = nil
	fs.superblock = superblock.Superblock{}
	fs.bitmap = nil
	fs.inodes = nil
	fs.blocks = nil

	return nil
}

// Create claims the first free inode-table slot and returns its number.
func (fs *FileSystem) Create() (uint32, error) {
	if !fs.Mounted() {
		return 0, errs.ErrNotMounted
	}
	return fs.inodes.Allocate()
}

// Remove frees every block the inode references, zeroing their contents
// on disk, then overwrites the inode slot with an invalid record. An I/O
// error aborts mid-scan without rolling back blocks already freed.
func (fs *FileSystem) Remove(number uint32) error {
	if !fs.Mounted() {
		return errs.ErrNotMounted
	}

	in, err := fs.inodes.Load(number)
	if err != nil {
		return err
	}

	for _, ptr := range in.Direct {
		if ptr.IsNil() {
			continue
		}
		if err := fs.blocks.Release(ptr); err != nil {
			return err
		}
	}

	if !in.Indirect.IsNil() {
		fs.bitmap.Free(in.Indirect.Index())

		buf := make([]byte, disk.BlockSize)
		if err := fs.dev.Read(in.Indirect.Index(), buf); err != nil {
			return err
		}
		for _, ptr := range inode.DecodePointers(buf) {
			if ptr.IsNil() {
				continue
			}
			if err := fs.blocks.Release(ptr); err != nil {
				return err
			}
		}

		if err := fs.dev.Write(in.Indirect.Index(), make([]byte, disk.BlockSize)); err != nil {
			return err
		}
	}

	return fs.inodes.Save(number, inode.Inode{})
}

// Stat returns the inode's recorded byte size.
func (fs *FileSystem) Stat(number uint32) (uint32, error) {
	if !fs.Mounted() {
		return 0, errs.ErrNotMounted
	}

	in, err := fs.inodes.Load(number)
	if err != nil {
		return 0, err
	}

	return in.Size, nil
}

// Read copies up to len(p) bytes from the inode's data stream at the
// given byte offset into p, returning the number of bytes copied. A
// short count is a success, not a failure.
func (fs *FileSystem) Read(number uint32, p []byte, offset uint32) (int, error) {
	if !fs.Mounted() {
		return 0, errs.ErrNotMounted
	}

	in, err := fs.inodes.Load(number)
	if err != nil {
		return 0, err
	}

	return fs.blocks.ReadAt(in, p, offset)
}

// Write copies p into the inode's data stream at the given byte offset,
// allocating blocks on demand, then updates the inode's size to cover
// the bytes that landed and persists it. Exhausting free space yields a
// short count with a nil error.
func (fs *FileSystem) Write(number uint32, p []byte, offset uint32) (int, error) {
	if !fs.Mounted() {
		return 0, errs.ErrNotMounted
	}

	in, err := fs.inodes.Load(number)
	if err != nil {
		return 0, err
	}

	written, werr := fs.blocks.WriteAt(&in, p, offset)

	// Size covers what was actually written; overwriting inside existing
	// data does not grow the file.
	if end := offset + uint32(written); end > in.Size {
		in.Size = end
	}
	if err := fs.inodes.Save(number, in); err != nil {
		return written, err
	}

	return written, werr
}

// Debug dumps the superblock and every valid inode to w.
func (fs *FileSystem) Debug(w io.Writer) error {
	if !fs.Mounted() {
		return errs.ErrNotMounted
	}

	fmt.Fprintf(w, "SuperBlock:\n")
	fmt.Fprintf(w, "    magic number is valid\n")
	fmt.Fprintf(w, "    %d blocks\n", fs.superblock.Blocks)
	fmt.Fprintf(w, "    %d inode blocks\n", fs.superblock.InodeBlocks)
	fmt.Fprintf(w, "    %d inodes\n", fs.superblock.Inodes)

	buf := make([]byte, disk.BlockSize)
	return fs.inodes.ForEach(func(number uint32, in inode.Inode) error {
		fmt.Fprintf(w, "Inode %d:\n", number)
		fmt.Fprintf(w, "    size: %d bytes\n", in.Size)

		fmt.Fprintf(w, "    direct blocks:")
		for _, ptr := range in.Direct {
			if !ptr.IsNil() {
				fmt.Fprintf(w, " %d", ptr.Index())
			}
		}
		fmt.Fprintf(w, "\n")

		if in.Indirect.IsNil() {
			return nil
		}

		fmt.Fprintf(w, "    indirect block: %d\n", in.Indirect.Index())
		if err := fs.dev.Read(in.Indirect.Index(), buf); err != nil {
			return err
		}
		fmt.Fprintf(w, "    indirect data blocks:")
		for _, ptr := range inode.DecodePointers(buf) {
			if !ptr.IsNil() {
				fmt.Fprintf(w, " %d", ptr.Index())
			}
		}
		fmt.Fprintf(w, "\n")
		return nil
	})
}
