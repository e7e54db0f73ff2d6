package keyring

import (
	"fmt"

	"github.com/julianstephens/habitsync/internal/constants"
)

// Open returns the TokenStore for the configured backend.
func Open(backend, fileDir, filePassword string) (TokenStore, error) {
	switch backend {
	case "", constants.TokenBackendOS:
		return NewOSStore(), nil
	case constants.TokenBackendFile:
		return NewFileVault(fileDir, filePassword)
	default:
		return nil, fmt.Errorf("unknown token backend %q (want %q or %q)",
			backend, constants.TokenBackendOS, constants.TokenBackendFile)
	}
}
