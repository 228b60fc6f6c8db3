package idgen

import (
	"github.com/jxskiss/base62"
	"github.com/pkg/errors"
)

// alphabet puts digits first so small ids read as plain numbers.
const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

var codec = base62.NewEncoding(alphabet)

// Encode renders id as a base62 short code over 0-9A-Za-z.
func Encode(id uint64) string {
	return string(codec.FormatUint(id))
}

// Decode parses a short code produced by Encode.
func Decode(code string) (uint64, error) {
	id, err := codec.ParseUint([]byte(code))
	if err != nil {
		return 0, errors.Wrapf(err, "decode short code %q", code)
	}

	return id, nil
}
