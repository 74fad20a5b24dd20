package service

import (
	"crypto/rand"
	"math/big"

	"github.com/google/uuid"
)

const (
	inviteCodeLength   = 6
	inviteCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	otpDigits          = "0123456789"
	otpLength          = 4
	// попыток сгенерировать уникальный invite code
	inviteCodeAttempts = 5
)

// NewID идентификатор вида prefix_<uuid v7>; v7 упорядочен по времени
func NewID(prefix string) string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return prefix + "_" + id.String()
}

// NewInviteCode шесть заглавных букв и цифр
func NewInviteCode() string {
	return randomString(inviteCodeLength, inviteCodeAlphabet)
}

// NewOTPCode четырёхзначный код, без ведущего нуля
func NewOTPCode() string {
	code := randomString(otpLength, otpDigits)
	if code[0] == '0' {
		code = "1" + code[1:]
	}
	return code
}

func randomString(length int, charset string) string {
	result := make([]byte, length)
	charsetLength := big.NewInt(int64(len(charset)))

	for i := range result {
		num, err := rand.Int(rand.Reader, charsetLength)
		if err != nil {
			// crypto/rand недоступен: берём символ из случайных байт uuid
			id := uuid.New()
			result[i] = charset[int(id[i%len(id)])%len(charset)]
			continue
		}
		result[i] = charset[num.Int64()]
	}

	return string(result)
}
