package catalog

import (
	_ "embed"
	"fmt"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/halfdome/devkit/pkg/errors"
)

// ArchiveEntry maps a path inside the extracted archive to its destination
// relative to the install prefix.
type ArchiveEntry struct {
	Src string `yaml:"src"`
	Dst string `yaml:"dst"`
}

// ArchiveSource is the verification record for a KindArchive component:
// where to download from and what digest to expect, per architecture.
type ArchiveSource struct {
	URL     map[string]string `yaml:"url"`
	SHA256  map[string]string `yaml:"sha256"`
	Strip   int               `yaml:"strip"`
	Entries []ArchiveEntry    `yaml:"entries"`
}

// ForArch returns the download URL and expected digest for the given
// architecture (GOARCH names).
func (s *ArchiveSource) ForArch(arch string) (url, sha256 string, err error) {
	url, ok := s.URL[arch]
	if !ok {
		return "", "", errors.Newf(errors.ErrDownload, "no release artifact for architecture %s", arch)
	}
	sha256, ok = s.SHA256[arch]
	if !ok {
		return "", "", errors.Newf(errors.ErrVerificationFailed, "no expected digest for architecture %s", arch)
	}
	return url, sha256, nil
}

// HostArch returns the GOARCH of the running host.
func HostArch() string {
	return runtime.GOARCH
}

//go:embed sources.yaml
var sourcesYAML []byte

func init() {
	sources := make(map[string]*ArchiveSource)
	if err := yaml.Unmarshal(sourcesYAML, &sources); err != nil {
		panic(fmt.Sprintf("catalog: invalid embedded sources manifest: %v", err))
	}

	for i := range components {
		if components[i].Kind != KindArchive {
			continue
		}
		src, ok := sources[components[i].ID]
		if !ok {
			panic(fmt.Sprintf("catalog: archive component %s missing from sources manifest", components[i].ID))
		}
		components[i].Archive = src
	}
}
