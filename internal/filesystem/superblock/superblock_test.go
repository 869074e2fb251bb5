package superblock

import (
	"errors"
	"fmt"
	"testing"

	"simplefs/internal/errs"
)

func TestNewLayout(t *testing.T) {
	tests := []struct {
		blocks      uint32
		inodeBlocks uint32
		inodes      uint32
	}{
		{1, 1, 128},
		{10, 1, 128},
		{11, 2, 256},
		{25, 3, 384},
		{100, 10, 1280},
		{1000, 100, 12800},
	}

	for _, test := range tests {
		t.Run(fmt.Sprintf("%d blocks", test.blocks), func(t *testing.T) {
			sb := New(test.blocks)

			if sb.MagicNumber != MagicNumber {
				t.Errorf("MagicNumber = %#x; want %#x", sb.MagicNumber, uint32(MagicNumber))
			}
			if sb.InodeBlocks != test.inodeBlocks {
				t.Errorf("InodeBlocks = %d; want %d", sb.InodeBlocks, test.inodeBlocks)
			}
			if sb.Inodes != test.inodes {
				t.Errorf("Inodes = %d; want %d", sb.Inodes, test.inodes)
			}
		})
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	original := New(100)

	data := make([]byte, Size)
	original.Encode(data)
	decoded := Decode(data)

	if decoded != original {
		t.Errorf("round trip changed superblock: %+v -> %+v", original, decoded)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name         string
		sb           Superblock
		deviceBlocks uint32
		wantErr      error
	}{
		{"valid", New(100), 100, nil},
		{"bad magic", Superblock{MagicNumber: 0xdeadbeef, Blocks: 100, InodeBlocks: 10, Inodes: 1280}, 100, errs.ErrBadMagicNumber},
		{"device size mismatch", New(100), 50, errs.ErrCorruptSuperblock},
		{"bad inode block derivation", Superblock{MagicNumber: MagicNumber, Blocks: 100, InodeBlocks: 9, Inodes: 1152}, 100, errs.ErrCorruptSuperblock},
		{"bad inode count derivation", Superblock{MagicNumber: MagicNumber, Blocks: 100, InodeBlocks: 10, Inodes: 1000}, 100, errs.ErrCorruptSuperblock},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := test.sb.Validate(test.deviceBlocks)

			if test.wantErr == nil && err != nil {
				t.Errorf("Validate error: %v; want nil", err)
			}
			if test.wantErr != nil && !errors.Is(err, test.wantErr) {
				t.Errorf("Validate error = %v; want %v", err, test.wantErr)
			}
		})
	}
}
