package row

import "testing"

func TestSerializeDeserializeRoundTrip(t *testing.T) {
	r := Row{ID: 7, Username: "alice", Email: "alice@example.com"}
	buf := make([]byte, Size)
	if err := Serialize(r, buf); err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	got, err := Deserialize(buf)
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if got != r {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, r)
	}
}

func TestSerializeWrongDstSize(t *testing.T) {
	if err := Serialize(Row{}, make([]byte, Size-1)); err == nil {
		t.Errorf("expected error for undersized dst")
	}
}

func TestDeserializeWrongSrcSize(t *testing.T) {
	if _, err := Deserialize(make([]byte, Size+1)); err == nil {
		t.Errorf("expected error for oversized src")
	}
}

func TestSerializeFieldsAreNULPadded(t *testing.T) {
	buf := make([]byte, Size)
	if err := Serialize(Row{ID: 1, Username: "bob", Email: "b"}, buf); err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if buf[usernameOff+3] != 0 {
		t.Errorf("expected NUL padding after username, got 0x%X", buf[usernameOff+3])
	}
	if buf[emailOff+1] != 0 {
		t.Errorf("expected NUL padding after email, got 0x%X", buf[emailOff+1])
	}
}

func TestSerializeMaxLengthFields(t *testing.T) {
	username := make([]byte, UsernameMaxLen)
	for i := range username {
		username[i] = 'u'
	}
	email := make([]byte, EmailMaxLen)
	for i := range email {
		email[i] = 'e'
	}
	r := Row{ID: 99, Username: string(username), Email: string(email)}
	buf := make([]byte, Size)
	if err := Serialize(r, buf); err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	got, err := Deserialize(buf)
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if got.Username != r.Username || got.Email != r.Email {
		t.Errorf("max-length round trip mismatch: got %+v", got)
	}
}
