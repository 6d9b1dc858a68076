package registry

import (
	"fmt"
	"net/url"
	"path/filepath"

	"github.com/vplayer/vplayer/filesystem"
	"github.com/vplayer/vplayer/player"
	"github.com/vplayer/vplayer/where"
)

// Source describes what a player should open. Exactly one of Asset and URI is set.
type Source struct {
	// Asset is a path relative to the assets directory.
	Asset string `json:"asset,omitempty"`
	// PackageName scopes Asset to a bundled package.
	PackageName string `json:"packageName,omitempty"`
	URI         string `json:"uri,omitempty"`
	// FormatHint names the container or manifest format when the URI does not reveal it.
	FormatHint string `json:"formatHint,omitempty"`
}

func (s Source) String() string {
	if s.Asset != "" {
		if s.PackageName != "" {
			return fmt.Sprintf("asset:%s/%s", s.PackageName, s.Asset)
		}
		return "asset:" + s.Asset
	}
	return s.URI
}

// resolve returns the location to open and the engine variant that plays it.
// Assets and file URIs go to the decoder engine, everything else is streamed.
func (s Source) resolve() (string, player.Variant, error) {
	switch {
	case s.Asset != "" && s.URI != "":
		return "", 0, fmt.Errorf("%w: source has both asset and uri", player.ErrInvalidArgument)
	case s.Asset != "":
		path := s.assetPath()
		exists, err := filesystem.API().Exists(path)
		if err != nil {
			return "", 0, err
		}
		if !exists {
			return "", 0, fmt.Errorf("%w: %s", ErrAssetNotFound, path)
		}
		return path, player.VariantDecoder, nil
	case s.URI != "":
		u, err := url.Parse(s.URI)
		if err != nil {
			return "", 0, fmt.Errorf("%w: %w", player.ErrInvalidArgument, err)
		}
		switch u.Scheme {
		case "", "file":
			return s.URI, player.VariantDecoder, nil
		default:
			return s.URI, player.VariantStreaming, nil
		}
	default:
		return "", 0, fmt.Errorf("%w: empty source", player.ErrInvalidArgument)
	}
}

func (s Source) assetPath() string {
	if s.PackageName != "" {
		return filepath.Join(where.Assets(), "packages", s.PackageName, s.Asset)
	}
	return filepath.Join(where.Assets(), s.Asset)
}
