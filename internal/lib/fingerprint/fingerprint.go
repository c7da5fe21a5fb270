// Package fingerprint строит укороченный отпечаток отсканированного кода
// для журнала доступа. Коды занимают всего 24 бита, поэтому отпечаток
// считается ключевым BLAKE2b: без ключа его нельзя обратить перебором.
package fingerprint

import (
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// Length задаёт число шестнадцатеричных символов в отпечатке.
const Length = 12

// Hasher вычисляет отпечатки кодов.
type Hasher struct {
	key []byte
}

// New создаёт Hasher. Ключ не длиннее 64 байт; пустой ключ допустим.
func New(key string) (*Hasher, error) {
	const op = "fingerprint.New"
	if len(key) > blake2b.Size {
		return nil, fmt.Errorf("%s: key longer than %d bytes", op, blake2b.Size)
	}
	return &Hasher{key: []byte(key)}, nil
}

// Of возвращает отпечаток кода. Для пустого кода — пустую строку.
func (h *Hasher) Of(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return ""
	}
	mac, err := blake2b.New256(h.key)
	if err != nil {
		// длина ключа проверена в New
		panic(err)
	}
	mac.Write([]byte(code))
	return hex.EncodeToString(mac.Sum(nil))[:Length]
}
