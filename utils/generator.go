package utils

import (
	"math/rand"
	"strings"
	"time"
	"unicode"

	"github.com/anjiri1684/study_hub/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

const (
	codeSuffixLength = 4
	codeAttempts     = 20
	letterBytes      = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// codePrefix takes up to three letters of the subject name, "SUB" when it has none.
func codePrefix(name string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(name) {
		if r <= unicode.MaxASCII && unicode.IsLetter(r) {
			b.WriteRune(r)
			if b.Len() == 3 {
				break
			}
		}
	}
	if b.Len() == 0 {
		return "SUB"
	}
	return b.String()
}

// GenerateUniqueSubjectCode returns a code like "MAT-7QX2" that no subject uses yet.
func GenerateUniqueSubjectCode(tx *gorm.DB, name string) (string, error) {
	seededRand := rand.New(rand.NewSource(time.Now().UnixNano()))
	prefix := codePrefix(name)

	for i := 0; i < codeAttempts; i++ {
		b := make([]byte, codeSuffixLength)
		for i := range b {
			b[i] = letterBytes[seededRand.Intn(len(letterBytes))]
		}
		code := prefix + "-" + string(b)

		var count int64
		if err := tx.Model(&models.Subject{}).Where("code = ?", code).Count(&count).Error; err != nil {
			return "", errors.Wrap(err, "check subject code")
		}
		if count == 0 {
			return code, nil
		}
	}
	return "", errors.New("could not generate a unique subject code")
}
