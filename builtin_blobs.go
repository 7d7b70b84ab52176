package keyb

import "embed"

// assetsFS holds the built-in fallback blobs: the four KCL keyboard
// libraries DOSBox ships inside its own binary, and the 18 EGA*.CPX code
// page bundles indexed by cpiCatalog. Integrators who want the full FreeDOS
// keyboard.sys/keybrd2..4.sys and cpidos EGA*.CPX payloads replace the
// files under assets/ with the real ones; the engine itself only cares
// that whatever bytes are there parse as valid KCL/CPI containers.
//
//go:embed assets/*.sys assets/*.cpx
var assetsFS embed.FS

// builtinBlobs exposes assetsFS as a ResourceSource, the last-resort
// fallback openLayoutSource and loadCodePage fall through to after the
// caller-supplied Fileset misses.
type builtinBlobSource struct{}

func (builtinBlobSource) Open(name string) ([]byte, error) {
	data, err := assetsFS.ReadFile("assets/" + name)
	if err != nil {
		return nil, ErrFileNotFound
	}
	return data, nil
}

// BuiltinBlobs is the package-wide built-in ResourceSource.
var BuiltinBlobs ResourceSource = builtinBlobSource{}
