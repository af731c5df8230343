package cmd

import (
	"strings"

	"github.com/c2h5oh/datasize"
	"github.com/grailbio/segio/errors"
	"github.com/spf13/pflag"
)

// sizeFlag is a byte count flag in datasize notation, e.g. 64KB.
type sizeFlag struct {
	datasize.ByteSize
	set bool
}

func (f *sizeFlag) String() string { return f.ByteSize.String() }

func (f *sizeFlag) Type() string { return "size" }

func (f *sizeFlag) Set(s string) error {
	if err := f.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(s)))); err != nil {
		return errors.E(errors.Invalid, "size", s, err)
	}
	f.set = true
	return nil
}

func (f *sizeFlag) int64() int64 { return int64(f.Bytes()) }

var _ pflag.Value = (*sizeFlag)(nil)

// viewFlags select how a composite view is opened and read.
type viewFlags struct {
	offset, length sizeFlag
	buffer         sizeFlag
	rate           string
	release        bool
	decompress     bool
}

func (f *viewFlags) register(flags *pflag.FlagSet) {
	flags.Var(&f.offset, "offset", "start of the window to read")
	flags.Var(&f.length, "length", "length of the window to read (default: to the end)")
	flags.Var(&f.buffer, "buffer", "read through a buffer of this size")
	flags.StringVar(&f.rate, "rate", "", "limit the read rate of each segment (low, medium, high, unlimited or a size per second)")
	flags.BoolVar(&f.release, "release", false, "close each segment as soon as it is consumed")
	flags.BoolVar(&f.decompress, "decompress", false, "uncompress the view if it starts with a gzip, bzip2, zstd or lz4 header")
}

// outFlags select where and how output is written.
type outFlags struct {
	path     string
	compress string
}

func (f *outFlags) register(flags *pflag.FlagSet) {
	flags.StringVarP(&f.path, "output", "o", "", "output path (default: stdout)")
	flags.StringVar(&f.compress, "compress", "", "compress output with gzip, zstd or lz4 (default: by output extension)")
}
