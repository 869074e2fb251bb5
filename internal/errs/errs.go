package errs

import "fmt"

var ErrMounted = fmt.Errorf("file system is already mounted")
var ErrNotMounted = fmt.Errorf("file system is not mounted")
var ErrBadMagicNumber = fmt.Errorf("bad magic number")
var ErrCorruptSuperblock = fmt.Errorf("superblock does not match device")
var ErrInodeOutOfRange = fmt.Errorf("inode number out of range")
var ErrInodeNotValid = fmt.Errorf("inode is not valid")
var ErrInodeTableFull = fmt.Errorf("inode table is full")
var ErrBlockOutOfRange = fmt.Errorf("block index out of range")
var ErrBadBlockBuffer = fmt.Errorf("buffer is not one block long")
var ErrDiskTooLarge = fmt.Errorf("block count exceeds device maximum")
var ErrMissingArguments = fmt.Errorf("missing arguments")
var ErrUnknownCommand = fmt.Errorf("unknown command")
