package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCRC16(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want uint16
	}{
		{"empty", []byte{}, 0xFFFF},
		{"check string", []byte("123456789"), 0x6F91},
		{"header", []byte{5, MessageDest}, 0x9E81},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CRC16(tt.data))
		})
	}
}

func TestUpdateCRC16(t *testing.T) {
	data := []byte("123456789")
	for split := 0; split <= len(data); split++ {
		crc := UpdateCRC16(CRC16(data[:split]), data[split:])
		assert.Equal(t, uint16(0x6F91), crc, "split at %d", split)
	}
}

func TestCRC16Different(t *testing.T) {
	assert.NotEqual(t, CRC16([]byte{0x01, 0x02, 0x03}), CRC16([]byte{0x01, 0x02, 0x04}))
}
