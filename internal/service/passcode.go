package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"sync"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"svcdir/internal/domain"
)

// PasscodeLength es la longitud fija de un passcode, en caracteres.
const PasscodeLength = 6

var (
	passcodeSpace = big.NewInt(1000000)
	hashCost      = bcrypt.DefaultCost
)

// GeneratePasscode devuelve un codigo uniforme en 000000-999999.
func GeneratePasscode() (string, error) {
	n, err := rand.Int(rand.Reader, passcodeSpace)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func validatePasscode(raw string) error {
	if raw == "" || utf8.RuneCountInString(raw) != PasscodeLength {
		return ErrInvalidCredential
	}
	return nil
}

// HashPasscode valida el formato y devuelve el hash bcrypt.
func HashPasscode(raw string) (string, error) {
	if err := validatePasscode(raw); err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(raw), hashCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPasscode compara raw contra el hash almacenado. Nunca consulta el
// passcode en claro.
func VerifyPasscode(identity domain.Identity, raw string) bool {
	if validatePasscode(raw) != nil {
		return false
	}
	if identity.PasscodeHash == "" {
		rejectPasscode(raw)
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(identity.PasscodeHash), []byte(raw)) == nil
}

// dummyPasscodeHash se calcula una vez con el mismo coste que los hashes reales.
var dummyPasscodeHash = sync.OnceValue(func() []byte {
	hash, err := bcrypt.GenerateFromPassword([]byte("000000"), hashCost)
	if err != nil {
		panic(fmt.Sprintf("dummy passcode hash: %v", err))
	}
	return hash
})

// rejectPasscode paga el coste de un bcrypt sin identidad detras, para que
// el rechazo de una identidad ausente tarde lo mismo que un passcode erroneo.
func rejectPasscode(raw string) {
	_ = bcrypt.CompareHashAndPassword(dummyPasscodeHash(), []byte(raw))
}
