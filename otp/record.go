package otp

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
)

const recordVersionV1 = 1

// Attempt failure reasons recorded in the audit trail.
const (
	ReasonExpired   = "expired"
	ReasonInvalid   = "invalid"
	ReasonThrottled = "throttled"
)

// Attempt is one verification submission. Appended once per VerifyCode
// outcome (except not-found) and never mutated afterwards.
type Attempt struct {
	Submitted string
	At        int64 // unix milliseconds
	Success   bool
	Reason    string // empty on success
}

// Record is the per-email OTP state. Code == "" means no live code.
type Record struct {
	Email       string
	Code        string
	GeneratedAt int64 // unix milliseconds, 0 when no live code
	Attempts    []Attempt
}

func encodeRecord(r *Record) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte(recordVersionV1)

	if err := writeString16(&buf, r.Email); err != nil {
		return nil, err
	}
	if err := writeString16(&buf, r.Code); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, r.GeneratedAt); err != nil {
		return nil, err
	}

	if len(r.Attempts) > 65535 {
		return nil, errors.New("otp record attempt list too long")
	}
	if err := binary.Write(&buf, binary.BigEndian, uint16(len(r.Attempts))); err != nil {
		return nil, err
	}
	for _, a := range r.Attempts {
		if err := writeString16(&buf, a.Submitted); err != nil {
			return nil, err
		}
		if err := binary.Write(&buf, binary.BigEndian, a.At); err != nil {
			return nil, err
		}
		if a.Success {
			buf.WriteByte(1)
		} else {
			buf.WriteByte(0)
		}
		if err := writeString16(&buf, a.Reason); err != nil {
			return nil, err
		}
	}

	return buf.Bytes(), nil
}

func decodeRecord(data []byte) (*Record, error) {
	rd := bytes.NewReader(data)

	version, err := rd.ReadByte()
	if err != nil {
		return nil, errors.New("otp record truncated")
	}
	if version != recordVersionV1 {
		return nil, errors.New("otp record version unsupported")
	}

	var r Record
	if r.Email, err = readString16(rd); err != nil {
		return nil, err
	}
	if r.Code, err = readString16(rd); err != nil {
		return nil, err
	}
	if err = binary.Read(rd, binary.BigEndian, &r.GeneratedAt); err != nil {
		return nil, errors.New("otp record truncated")
	}

	var count uint16
	if err = binary.Read(rd, binary.BigEndian, &count); err != nil {
		return nil, errors.New("otp record truncated")
	}
	r.Attempts = make([]Attempt, 0, count)
	for i := 0; i < int(count); i++ {
		var a Attempt
		if a.Submitted, err = readString16(rd); err != nil {
			return nil, err
		}
		if err = binary.Read(rd, binary.BigEndian, &a.At); err != nil {
			return nil, errors.New("otp record truncated")
		}
		flag, err := rd.ReadByte()
		if err != nil {
			return nil, errors.New("otp record truncated")
		}
		a.Success = flag == 1
		if a.Reason, err = readString16(rd); err != nil {
			return nil, err
		}
		r.Attempts = append(r.Attempts, a)
	}

	return &r, nil
}

func writeString16(buf *bytes.Buffer, s string) error {
	if len(s) > 65535 {
		return errors.New("otp record field too long")
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
		return "", errors.New("otp record truncated")
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(rd, b); err != nil {
		return "", errors.New("otp record truncated")
	}
	return string(b), nil
}
