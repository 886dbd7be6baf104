package model

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

var errInvalidBase64 = errors.New("invalid base64 image data")

// ImageData 请求中的图片，接受 base64 字符串或 0-255 的整数数组
type ImageData []byte

func (d *ImageData) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*d = nil
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		decoded, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return errInvalidBase64
		}
		*d = decoded
		return nil
	case '[':
		var ints []int
		if err := json.Unmarshal(data, &ints); err != nil {
			return fmt.Errorf("image byte list: %w", err)
		}
		out := make([]byte, len(ints))
		for i, v := range ints {
			if v < 0 || v > 255 {
				return fmt.Errorf("image byte list: value %d at %d out of range", v, i)
			}
			out[i] = byte(v)
		}
		*d = out
		return nil
	default:
		return fmt.Errorf("unsupported image data type: %s", data[:1])
	}
}

// ByteList 以整数数组输出的字节，对应 format=bytes
type ByteList []byte

func (b ByteList) MarshalJSON() ([]byte, error) {
	buf := make([]byte, 0, len(b)*4+2)
	buf = append(buf, '[')
	for i, v := range b {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = strconv.AppendUint(buf, uint64(v), 10)
	}
	return append(buf, ']'), nil
}
