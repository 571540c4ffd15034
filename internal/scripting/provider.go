package scripting

import (
	"crypto/sha1"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"

	"github.com/CalistaVerner/kalitech/internal/module"
)

// SourceProvider returns source text bytes for a module id, or (nil, nil)
// when the id does not exist (not an error — callers probe candidates).
type SourceProvider interface {
	Source(id module.ID) ([]byte, error)
	Exists(id module.ID) bool
}

// FSProvider resolves module ids against a filesystem root, joining the
// normalized id onto root with OS-appropriate separators.
type FSProvider struct {
	root string
}

// NewFSProvider creates a filesystem-backed source provider rooted at root.
func NewFSProvider(root string) *FSProvider {
	return &FSProvider{root: root}
}

func (p *FSProvider) path(id module.ID) string {
	clean := filepath.FromSlash(string(id))
	return filepath.Join(p.root, clean)
}

// Source reads the file backing id. A missing file returns (nil, nil) so
// candidate probing in the registry can move to the next candidate
// without treating "not found" as a hard error.
func (p *FSProvider) Source(id module.ID) ([]byte, error) {
	data, err := os.ReadFile(p.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}

// Exists reports whether a readable file backs id.
func (p *FSProvider) Exists(id module.ID) bool {
	info, err := os.Stat(p.path(id))
	return err == nil && !info.IsDir()
}

// BuiltinProvider serves source registered directly in-process, used for
// the @builtin/ namespace where modules ship compiled into the binary
// rather than read from disk.
type BuiltinProvider struct {
	sources map[module.ID][]byte
}

// NewBuiltinProvider creates a provider with no registered sources.
func NewBuiltinProvider() *BuiltinProvider {
	return &BuiltinProvider{sources: make(map[module.ID][]byte)}
}

// Register adds or replaces a builtin module's source text.
func (p *BuiltinProvider) Register(id module.ID, source string) {
	p.sources[id] = []byte(source)
}

func (p *BuiltinProvider) Source(id module.ID) ([]byte, error) {
	return p.sources[id], nil
}

func (p *BuiltinProvider) Exists(id module.ID) bool {
	_, ok := p.sources[id]
	return ok
}

// CompositeProvider dispatches to a builtin provider for ids under
// builtinPrefix and to a filesystem provider for everything else.
type CompositeProvider struct {
	builtinPrefix string
	builtins      SourceProvider
	files         SourceProvider
}

// NewCompositeProvider wires the builtin and filesystem providers together.
func NewCompositeProvider(builtinPrefix string, builtins, files SourceProvider) *CompositeProvider {
	return &CompositeProvider{builtinPrefix: builtinPrefix, builtins: builtins, files: files}
}

func (p *CompositeProvider) pick(id module.ID) SourceProvider {
	if strings.HasPrefix(string(id), p.builtinPrefix) {
		return p.builtins
	}
	return p.files
}

func (p *CompositeProvider) Source(id module.ID) ([]byte, error) { return p.pick(id).Source(id) }
func (p *CompositeProvider) Exists(id module.ID) bool            { return p.pick(id).Exists(id) }

// SHA1Hex returns the hex-encoded SHA-1 digest of data, used by the
// orchestrator's source-hash rebuild gate (spec §4.L).
func SHA1Hex(data []byte) string {
	sum := sha1.Sum(data)
	return hex.EncodeToString(sum[:])
}
