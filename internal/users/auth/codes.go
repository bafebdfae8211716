// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/taibuivan/yamdb/internal/platform/constants"
)

// CodeGenerator produces a fresh plain-text confirmation code.
type CodeGenerator func() (string, error)

// NumericCode returns a random decimal code of [constants.ConfirmationCodeLength] digits.
func NumericCode() (string, error) {
	return gonanoid.Generate(constants.ConfirmationCodeAlphabet, constants.ConfirmationCodeLength)
}
