// Package password はArgon2idによるパスワードのハッシュ化と検証を提供する。
//
// ハッシュはPHC文字列形式でエンコードされる:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//
// ソルト・パラメータが文字列自体に埋め込まれるため、検証時に外部の
// 設定を参照する必要がない。呼び出しごとに新しいランダムソルトを
// 生成するため、同じ平文でも出力は毎回異なる。
package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

const algorithmID = "argon2id"

// Params はArgon2idのワークパラメータ。
type Params struct {
	MemoryKB    uint32
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultParams はデフォルトのワークパラメータを返す。
// RFC 9106のsecond recommended optionに準拠した値。
func DefaultParams() Params {
	return Params{
		MemoryKB:    64 * 1024,
		Time:        3,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	}
}

// Hasher はパスワードのハッシュ化と検証を行う。
// パラメータは生成時に固定され、以降イミュータブルとして扱う。
// 状態を持たないため複数ゴルーチンから同時に利用できる。
type Hasher struct {
	params Params
}

// NewHasher は指定パラメータのHasherを生成する。
func NewHasher(params Params) *Hasher {
	return &Hasher{params: params}
}

// NewDefaultHasher はデフォルトパラメータのHasherを生成する。
func NewDefaultHasher() *Hasher {
	return NewHasher(DefaultParams())
}

// Hash は平文パスワードをソルト付きでハッシュ化し、PHC文字列を返す。
// 呼び出しごとに暗号論的乱数でソルトを生成するため、同じ平文でも
// 出力は毎回異なる。乱数源が利用できない場合はエラーを返す。
func (h *Hasher) Hash(plaintext string) (string, error) {
	salt := make([]byte, h.params.SaltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	digest := argon2.IDKey(
		[]byte(plaintext),
		salt,
		h.params.Time,
		h.params.MemoryKB,
		h.params.Parallelism,
		h.params.KeyLength,
	)

	encoded := fmt.Sprintf(
		"$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		algorithmID,
		argon2.Version,
		h.params.MemoryKB,
		h.params.Time,
		h.params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(digest),
	)

	return encoded, nil
}

// Verify は平文パスワードがPHC文字列と一致するか検証する。
// 埋め込まれたソルトとパラメータで再計算し、定数時間比較で照合する。
// 正しい形式で不一致の場合は(false, nil)を返し、文字列自体が壊れて
// いる場合のみエラーを返す（このパッケージが生成したハッシュでは
// 発生しないはず）。
func (h *Hasher) Verify(plaintext, encoded string) (bool, error) {
	parsed, err := parsePHC(encoded)
	if err != nil {
		return false, err
	}

	computed := argon2.IDKey(
		[]byte(plaintext),
		parsed.salt,
		parsed.time,
		parsed.memoryKB,
		parsed.parallelism,
		uint32(len(parsed.digest)),
	)

	return subtle.ConstantTimeCompare(computed, parsed.digest) == 1, nil
}

type parsedPHC struct {
	memoryKB    uint32
	time        uint32
	parallelism uint8
	salt        []byte
	digest      []byte
}

// parsePHC はPHC文字列を分解する。
// 形式: $argon2id$v=19$m=..,t=..,p=..$<salt>$<hash>
func parsePHC(encoded string) (*parsedPHC, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" {
		return nil, errors.New("invalid PHC format")
	}
	if parts[1] != algorithmID {
		return nil, fmt.Errorf("unsupported algorithm: %q", parts[1])
	}

	if !strings.HasPrefix(parts[2], "v=") {
		return nil, errors.New("missing argon2 version")
	}
	version, err := strconv.Atoi(strings.TrimPrefix(parts[2], "v="))
	if err != nil {
		return nil, errors.New("invalid argon2 version")
	}
	if version != argon2.Version {
		return nil, fmt.Errorf("unsupported argon2 version: %d", version)
	}

	var p parsedPHC
	if err := parseParams(parts[3], &p); err != nil {
		return nil, err
	}

	p.salt, err = base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return nil, errors.New("invalid salt encoding")
	}
	if len(p.salt) == 0 {
		return nil, errors.New("empty salt")
	}

	p.digest, err = base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return nil, errors.New("invalid digest encoding")
	}
	if len(p.digest) == 0 {
		return nil, errors.New("empty digest")
	}

	return &p, nil
}

// parseParams は"m=..,t=..,p=.."形式のパラメータ部を分解する。
func parseParams(part string, out *parsedPHC) error {
	pairs := strings.Split(part, ",")
	if len(pairs) != 3 {
		return errors.New("invalid parameter format")
	}

	var memorySet, timeSet, parallelismSet bool
	for _, pair := range pairs {
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) != 2 {
			return errors.New("invalid parameter entry")
		}
		switch kv[0] {
		case "m":
			v, err := strconv.ParseUint(kv[1], 10, 32)
			if err != nil || v == 0 {
				return errors.New("invalid memory parameter")
			}
			out.memoryKB = uint32(v)
			memorySet = true
		case "t":
			v, err := strconv.ParseUint(kv[1], 10, 32)
			if err != nil || v == 0 {
				return errors.New("invalid time parameter")
			}
			out.time = uint32(v)
			timeSet = true
		case "p":
			v, err := strconv.ParseUint(kv[1], 10, 8)
			if err != nil || v == 0 {
				return errors.New("invalid parallelism parameter")
			}
			out.parallelism = uint8(v)
			parallelismSet = true
		default:
			return fmt.Errorf("unsupported parameter: %q", kv[0])
		}
	}

	if !memorySet || !timeSet || !parallelismSet {
		return errors.New("missing parameters")
	}

	return nil
}
