package shell

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"simplefs/internal/disk"
	"simplefs/internal/errs"
	"simplefs/internal/filesystem"
)

// Shell is the interactive driver: it owns one disk image and one
// FileSystem and translates commands into facade calls.
type Shell struct {
	dev *disk.Disk
	fs  *filesystem.FileSystem
	in  io.Reader
	out io.Writer
}

func New(dev *disk.Disk, in io.Reader, out io.Writer) *Shell {
	return &Shell{
		dev: dev,
		fs:  filesystem.New(),
		in:  in,
		out: out,
	}
}

func (s *Shell) Run() error {
	scanner := bufio.NewScanner(s.in)
	errColor := color.New(color.FgRed)

	for {
		fmt.Fprint(s.out, "sfs> ")
		if !scanner.Scan() {
			break
		}

		parts := parseCommand(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		if parts[0] == "exit" || parts[0] == "quit" {
			break
		}

		if err := s.executeCommand(parts[0], parts[1:]); err != nil {
			errColor.Fprintf(s.out, "error: %v\n", err)
		}
	}

	fmt.Fprintf(s.out, "%d disk block reads\n", s.dev.Reads())
	fmt.Fprintf(s.out, "%d disk block writes\n", s.dev.Writes())

	return scanner.Err()
}

func (s *Shell) executeCommand(command string, args []string) error {
	switch command {
	case "format":
		if err := s.fs.Format(s.dev); err != nil {
			return err
		}
		fmt.Fprintln(s.out, "disk formatted.")
		return nil
	case "mount":
		if err := s.fs.Mount(s.dev); err != nil {
			return err
		}
		fmt.Fprintln(s.out, "disk mounted.")
		return nil
	case "unmount":
		if err := s.fs.Unmount(); err != nil {
			return err
		}
		fmt.Fprintln(s.out, "disk unmounted.")
		return nil
	case "debug":
		return s.fs.Debug(s.out)
	case "create":
		number, err := s.fs.Create()
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "created inode %d.\n", number)
		return nil
	case "remove":
		number, err := inodeArg(command, args)
		if err != nil {
			return err
		}
		if err := s.fs.Remove(number); err != nil {
			return err
		}
		fmt.Fprintf(s.out, "removed inode %d.\n", number)
		return nil
	case "stat":
		number, err := inodeArg(command, args)
		if err != nil {
			return err
		}
		size, err := s.fs.Stat(number)
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "inode %d has size %d bytes.\n", number, size)
		return nil
	case "cat":
		number, err := inodeArg(command, args)
		if err != nil {
			return err
		}
		return s.copyOut(number, s.out)
	case "copyin":
		if len(args) < 2 {
			return fmt.Errorf("%w - %s <file> <inode>", errs.ErrMissingArguments, command)
		}
		number, err := parseInodeNumber(args[1])
		if err != nil {
			return err
		}
		return s.copyIn(args[0], number)
	case "copyout":
		if len(args) < 2 {
			return fmt.Errorf("%w - %s <inode> <file>", errs.ErrMissingArguments, command)
		}
		number, err := parseInodeNumber(args[0])
		if err != nil {
			return err
		}
		file, err := os.Create(args[1])
		if err != nil {
			return err
		}
		defer file.Close()
		return s.copyOut(number, file)
	case "help":
		s.printHelp()
		return nil
	default:
		return fmt.Errorf("%w - %s", errs.ErrUnknownCommand, command)
	}
}

// copyIn streams a host file into the inode's data stream. A short write
// means the disk ran out of free blocks; the copy stops there.
func (s *Shell) copyIn(path string, number uint32) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	buf := make([]byte, disk.BlockSize)
	var offset uint32

	for {
		n, err := file.Read(buf)
		if n > 0 {
			written, werr := s.fs.Write(number, buf[:n], offset)
			if werr != nil {
				return werr
			}
			offset += uint32(written)
			if written < n {
				fmt.Fprintf(s.out, "disk is full: copied only %d bytes.\n", offset)
				return nil
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
	}

	fmt.Fprintf(s.out, "copied %d bytes to inode %d.\n", offset, number)
	return nil
}

func (s *Shell) copyOut(number uint32, w io.Writer) error {
	buf := make([]byte, disk.BlockSize)
	var offset uint32

	for {
		n, err := s.fs.Read(number, buf, offset)
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
		if _, err := w.Write(buf[:n]); err != nil {
			return err
		}
		offset += uint32(n)
	}
}

func (s *Shell) printHelp() {
	fmt.Fprintln(s.out, "commands:")
	fmt.Fprintln(s.out, "    format                 write a fresh file system to the disk")
	fmt.Fprintln(s.out, "    mount                  mount the disk")
	fmt.Fprintln(s.out, "    unmount                unmount the disk")
	fmt.Fprintln(s.out, "    debug                  dump superblock and inode table")
	fmt.Fprintln(s.out, "    create                 allocate a new inode")
	fmt.Fprintln(s.out, "    remove <inode>         remove an inode and its data")
	fmt.Fprintln(s.out, "    stat <inode>           print an inode's size")
	fmt.Fprintln(s.out, "    cat <inode>            print an inode's data")
	fmt.Fprintln(s.out, "    copyin <file> <inode>  copy a host file into an inode")
	fmt.Fprintln(s.out, "    copyout <inode> <file> copy an inode's data to a host file")
	fmt.Fprintln(s.out, "    help                   show this message")
	fmt.Fprintln(s.out, "    quit, exit             leave the shell")
}

func inodeArg(command string, args []string) (uint32, error) {
	if len(args) < 1 {
		return 0, fmt.Errorf("%w - %s <inode>", errs.ErrMissingArguments, command)
	}
	return parseInodeNumber(args[0])
}

func parseInodeNumber(arg string) (uint32, error) {
	number, err := strconv.ParseUint(arg, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("bad inode number %q: %w", arg, err)
	}
	return uint32(number), nil
}

// parseCommand splits a command line on whitespace, honoring single and
// double quotes so image paths may contain spaces.
func parseCommand(line string) []string {
	var args []string
	var current strings.Builder
	var quote rune
	inArg := false

	for _, c := range line {
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			} else {
				current.WriteRune(c)
			}
		case c == '"' || c == '\'':
			quote = c
			inArg = true
		case c == ' ' || c == '\t':
			if inArg {
				args = append(args, current.String())
				current.Reset()
				inArg = false
			}
		default:
			current.WriteRune(c)
			inArg = true
		}
	}

	if inArg {
		args = append(args, current.String())
	}
	return args
}
