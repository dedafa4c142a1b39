package fs

import (
	"encoding/binary"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/chore/internal/core/domain"
	"go.trai.ch/chore/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Hasher = (*Hasher)(nil)

// Hasher fingerprints a command definition together with its input files.
type Hasher struct {
	walker *Walker
}

// NewHasher creates a new Hasher.
func NewHasher(walker *Walker) *Hasher {
	return &Hasher{walker: walker}
}

// ComputeFileHash computes the XXHash of a file's content.
func (h *Hasher) ComputeFileHash(path string) (uint64, error) {
	f, err := os.Open(path) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return 0, zerr.With(zerr.Wrap(err, domain.ErrFileOpenFailed.Error()), "path", path)
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	hasher := xxhash.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return 0, zerr.With(zerr.Wrap(err, domain.ErrFileHashFailed.Error()), "path", path)
	}

	return hasher.Sum64(), nil
}

// ComputeInputHash computes a single hash representing the command
// definition, the environment and the content of every input.
// Relative inputs are resolved against root.
func (h *Hasher) ComputeInputHash(cmd *domain.Command, env map[string]string, root string) (string, error) {
	hasher := xxhash.New()

	hashCommandDefinition(cmd, hasher)
	hashEnvironment(env, hasher)

	if err := h.hashInputFiles(cmd, root, hasher); err != nil {
		return "", err
	}

	return fmt.Sprintf("%016x", hasher.Sum64()), nil
}

// hashCommandDefinition hashes the name, steps, inputs, outputs and
// prerequisites. Every list ends with a section separator.
func hashCommandDefinition(cmd *domain.Command, hasher *xxhash.Digest) {
	writeField(hasher, cmd.Name.String())

	for _, step := range cmd.Steps {
		for _, arg := range step.Argv {
			writeField(hasher, arg)
		}
		writeField(hasher, ">"+step.Stdout)
	}
	_, _ = hasher.Write([]byte{0})

	for _, list := range [][]domain.InternedString{cmd.Inputs, cmd.Outputs, cmd.Prerequisites} {
		for _, item := range list {
			writeField(hasher, item.String())
		}
		_, _ = hasher.Write([]byte{0})
	}

	writeField(hasher, cmd.WorkingDir.String())
	hashEnvironment(cmd.Environment, hasher)
}

// hashEnvironment hashes environment variables in a deterministic order.
func hashEnvironment(env map[string]string, hasher *xxhash.Digest) {
	for _, k := range slices.Sorted(maps.Keys(env)) {
		_, _ = hasher.WriteString(k)
		_, _ = hasher.Write([]byte{'='})
		writeField(hasher, env[k])
	}
	_, _ = hasher.Write([]byte{0})
}

func writeField(hasher *xxhash.Digest, s string) {
	_, _ = hasher.WriteString(s)
	_, _ = hasher.Write([]byte{0})
}

func (h *Hasher) hashInputFiles(cmd *domain.Command, root string, hasher *xxhash.Digest) error {
	for _, input := range cmd.Inputs {
		path := input.String()
		if !filepath.IsAbs(path) {
			path = filepath.Join(root, path)
		}

		if err := h.hashInputPath(path, hasher); err != nil {
			return err
		}
	}
	return nil
}

// hashInputPath hashes a single input path, attempting glob resolution if path doesn't exist.
func (h *Hasher) hashInputPath(path string, hasher *xxhash.Digest) error {
	if _, err := os.Stat(path); err != nil {
		return h.tryGlobAndHash(path, hasher)
	}
	return h.hashPath(path, hasher)
}

// tryGlobAndHash resolves path as a glob pattern and hashes all matches.
func (h *Hasher) tryGlobAndHash(path string, hasher *xxhash.Digest) error {
	matches, globErr := filepath.Glob(path)
	if globErr == nil && len(matches) > 0 {
		for _, match := range matches {
			if err := h.hashPath(match, hasher); err != nil {
				return err
			}
		}
		return nil
	}
	return zerr.With(zerr.Wrap(domain.ErrInputNotFound, "failed to hash inputs"), "path", path)
}

func (h *Hasher) hashPath(path string, mainHasher io.Writer) error {
	info, err := os.Stat(path)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrPathStatFailed.Error()), "path", path)
	}

	if !info.IsDir() {
		return h.hashFile(path, mainHasher)
	}

	for filePath := range h.walker.WalkFiles(path, nil) {
		if err := h.hashFile(filePath, mainHasher); err != nil {
			return err
		}
	}
	return nil
}

func (h *Hasher) hashFile(path string, mainHasher io.Writer) error {
	_, _ = mainHasher.Write([]byte(path))
	_, _ = mainHasher.Write([]byte{0})

	hash, err := h.ComputeFileHash(path)
	if err != nil {
		return err
	}

	if err := binary.Write(mainHasher, binary.LittleEndian, hash); err != nil {
		return zerr.Wrap(err, domain.ErrWriteHashFailed.Error())
	}
	return nil
}
