package handlers

import (
	"fmt"

	"github.com/LDFINA01/Jokester-Merch-Generator/internal/domain"
)

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), domain.ErrInvalidUpload)
}
