package session

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
)

const sessionVersionV1 = 1

// Session is one live token pair. Rows are immutable: rotation creates a
// new row rather than mutating in place.
type Session struct {
	AccessToken  string
	RefreshToken string
	AccountID    string
	Fingerprint  string
	CreatedAt    int64 // unix milliseconds
	ExpiresAt    int64 // unix milliseconds
}

func encodeSession(s *Session) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte(sessionVersionV1)
	for _, field := range []string{s.AccessToken, s.RefreshToken, s.AccountID, s.Fingerprint} {
		if err := writeString16(&buf, field); err != nil {
			return nil, err
		}
	}
	if err := binary.Write(&buf, binary.BigEndian, s.CreatedAt); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, s.ExpiresAt); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func decodeSession(data []byte) (*Session, error) {
	rd := bytes.NewReader(data)

	version, err := rd.ReadByte()
	if err != nil {
		return nil, errors.New("session record truncated")
	}
	if version != sessionVersionV1 {
		return nil, errors.New("session record version unsupported")
	}

	var s Session
	for _, field := range []*string{&s.AccessToken, &s.RefreshToken, &s.AccountID, &s.Fingerprint} {
		if *field, err = readString16(rd); err != nil {
			return nil, err
		}
	}
	if err = binary.Read(rd, binary.BigEndian, &s.CreatedAt); err != nil {
		return nil, errors.New("session record truncated")
	}
	if err = binary.Read(rd, binary.BigEndian, &s.ExpiresAt); err != nil {
		return nil, errors.New("session record truncated")
	}

	return &s, nil
}

func writeString16(buf *bytes.Buffer, s string) error {
	if len(s) > 65535 {
		return errors.New("session record field too long")
	}
	if err := binary.Write(buf, binary.BigEndian, uint16(len(s))); err != nil {
		return err
	}
	buf.WriteString(s)
	return nil
}

func readString16(rd *bytes.Reader) (string, error) {
	var n uint16
	if err := binary.Read(rd, binary.BigEndian, &n); err != nil {
		return "", errors.New("session record truncated")
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(rd, b); err != nil {
		return "", errors.New("session record truncated")
	}
	return string(b), nil
}
