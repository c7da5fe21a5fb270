// Package wiegand реализует разбор 26-битного формата Wiegand,
// в котором считыватели передают отсканированный код двери:
// ведущий бит чётности, 24 бита полезной нагрузки и замыкающий бит нечётности.
package wiegand

import (
	"errors"
	"math/bits"
	"strconv"
	"strings"
)

const (
	// PayloadMask выделяет 24 бита полезной нагрузки.
	PayloadMask = 0xFFFFFF
	// FrameBits — длина кадра в битах.
	FrameBits = 26
)

// ErrPayloadTooLarge возвращается при попытке закодировать значение шире 24 бит.
var ErrPayloadTooLarge = errors.New("wiegand: payload exceeds 24 bits")

// Decode извлекает 24-битный код из кадра, отбрасывая биты чётности.
// Чётность не проверяется: считыватель уже принял карту.
func Decode(frame uint64) uint32 {
	return uint32((frame >> 1) & PayloadMask)
}

// Encode упаковывает код в 26-битный кадр: ведущий бит дополняет
// старшие 12 бит до чётного числа единиц, замыкающий — младшие 12 бит до нечётного.
func Encode(code uint32) (uint32, error) {
	if code > PayloadMask {
		return 0, ErrPayloadTooLarge
	}
	high := code >> 12
	low := code & 0xFFF

	lead := uint32(bits.OnesCount32(high) % 2)
	trail := uint32(1 - bits.OnesCount32(low)%2)

	return lead<<25 | code<<1 | trail, nil
}

// ParityOK проверяет оба бита чётности кадра.
func ParityOK(frame uint32) bool {
	if frame>>FrameBits != 0 {
		return false
	}
	lead := frame >> 25
	trail := frame & 1
	code := Decode(uint64(frame))

	evenOK := (bits.OnesCount32(code>>12)+int(lead))%2 == 0
	oddOK := (bits.OnesCount32(code&0xFFF)+int(trail))%2 == 1
	return evenOK && oddOK
}

// Candidates возвращает коды для поиска токена в порядке приоритета:
// сначала декодированный из кадра Wiegand, затем исходная строка как есть.
// Нечисловой ввод даёт только исходную строку, пустой — nil.
func Candidates(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	frame, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return []string{raw}
	}

	decoded := strconv.FormatUint(uint64(Decode(frame)), 10)
	if decoded == raw {
		return []string{raw}
	}
	return []string{decoded, raw}
}
