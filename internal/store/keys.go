package store

import (
	"fmt"
	"strconv"
	"strings"
)

// EncodeKey maps (owner, id) to the record key. The owner token is quoted
// with strconv.Quote, so any byte it contains (including '#' or '"') is
// escaped; an owner can therefore never alias another owner's key space.
// Everything after the final '#' is the decimal id.
func EncodeKey(owner string, id int) string {
	return strconv.Quote(owner) + "#" + strconv.Itoa(id)
}

// DecodeKey is the inverse of EncodeKey. It rejects anything EncodeKey could
// not have produced.
func DecodeKey(key string) (owner string, id int, err error) {
	i := strings.LastIndexByte(key, '#')
	if i < 0 {
		return "", 0, fmt.Errorf("malformed key %q: missing id separator", key)
	}
	owner, err = strconv.Unquote(key[:i])
	if err != nil {
		return "", 0, fmt.Errorf("malformed key %q: bad owner segment", key)
	}
	id, err = strconv.Atoi(key[i+1:])
	if err != nil || id <= 0 {
		return "", 0, fmt.Errorf("malformed key %q: bad id segment", key)
	}
	return owner, id, nil
}
