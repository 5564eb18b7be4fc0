package blockstore

import "github.com/syndtr/goleveldb/leveldb/opt"

var defaultOptions = opt.Options{
	Compression:            opt.NoCompression,
	BlockCacheCapacity:     64 * opt.MiB,
	WriteBuffer:            32 * opt.MiB,
	DisableSeeksCompaction: true,
}

// Options returns the opt.Options used to open the store's underlying
// leveldb database. Defined as a variable, as in the teacher, for the sake
// of testing.
var Options = func() *opt.Options {
	return &defaultOptions
}
