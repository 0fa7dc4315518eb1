// Package row implements the fixed-schema record serialised into every
// leaf cell: a uint32 id, a NUL-padded username, and a NUL-padded email.
package row

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

const (
	// UsernameMaxLen is the fixed width of the username field, in bytes.
	UsernameMaxLen = 32
	// EmailMaxLen is the fixed width of the email field, in bytes.
	EmailMaxLen = 255

	idSize       = 4
	idOffset     = 0
	usernameSize = UsernameMaxLen
	usernameOff  = idOffset + idSize
	emailSize    = EmailMaxLen
	emailOff     = usernameOff + usernameSize

	// Size is the serialised byte length of a Row: 4 + 32 + 255.
	Size = emailOff + emailSize
)

// Row is one record: {id, username, email}.
type Row struct {
	ID       uint32
	Username string
	Email    string
}

// Serialize writes r into dst, which must be exactly Size bytes. Username
// and email are NUL-padded to their fixed width; values longer than the
// field are truncated rather than rejected — callers at the prompt
// boundary are expected to reject over-length input before it gets here.
func Serialize(r Row, dst []byte) error {
	if len(dst) != Size {
		return fmt.Errorf("row.Serialize: dst has %d bytes, want %d", len(dst), Size)
	}
	for i := range dst {
		dst[i] = 0
	}
	binary.LittleEndian.PutUint32(dst[idOffset:idOffset+idSize], r.ID)
	copy(dst[usernameOff:usernameOff+usernameSize], []byte(r.Username))
	copy(dst[emailOff:emailOff+emailSize], []byte(r.Email))
	return nil
}

// Deserialize reads a Row out of src, which must be exactly Size bytes.
func Deserialize(src []byte) (Row, error) {
	if len(src) != Size {
		return Row{}, fmt.Errorf("row.Deserialize: src has %d bytes, want %d", len(src), Size)
	}
	id := binary.LittleEndian.Uint32(src[idOffset : idOffset+idSize])
	username := trimNUL(src[usernameOff : usernameOff+usernameSize])
	email := trimNUL(src[emailOff : emailOff+emailSize])
	return Row{ID: id, Username: username, Email: email}, nil
}

func trimNUL(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		return string(b[:i])
	}
	return string(b)
}
